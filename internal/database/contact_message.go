package database

import (
	"database/sql"
	"fmt"
	"time"
)

// ContactMessage is a queued contact form submission
type ContactMessage struct {
	ID        int64
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

type ContactRepository interface {
	Insert(msg *ContactMessage) (int64, error)
	List() ([]*ContactMessage, error)
	Count() (int, error)
}

type contactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Insert queues one message and returns its id
func (r *contactRepository) Insert(msg *ContactMessage) (int64, error) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	res, err := r.db.Exec(`INSERT INTO contact_messages (
		name, email, subject, message, created_at
	) VALUES (?, ?, ?, ?, ?)`,
		msg.Name,
		msg.Email,
		msg.Subject,
		msg.Message,
		msg.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contact message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read contact message id: %w", err)
	}
	msg.ID = id
	return id, nil
}

// List returns every queued message, oldest first
func (r *contactRepository) List() ([]*ContactMessage, error) {
	rows, err := r.db.Query(`SELECT id, name, email, subject, message, created_at
		FROM contact_messages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact messages: %w", err)
	}
	defer rows.Close()

	var msgs []*ContactMessage
	for rows.Next() {
		msg := &ContactMessage{}
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Subject, &msg.Message, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// Count returns the number of queued messages
func (r *contactRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM contact_messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count contact messages: %w", err)
	}
	return n, nil
}
