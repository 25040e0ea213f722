package database

import (
	"database/sql"
	"fmt"
	"time"

	"flight_atlas/internal/models"
)

type VisitRepository interface {
	InsertBatch(visits []*models.Visit) error
	Recent(limit int) ([]*models.Visit, error)
	Prune(keep int) (int64, error)
}

type visitRepository struct {
	db *sql.DB
}

func NewVisitRepository(db *sql.DB) VisitRepository {
	return &visitRepository{db: db}
}

// InsertBatch inserts one or more visits in a single transaction
func (r *visitRepository) InsertBatch(visits []*models.Visit) error {
	if len(visits) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO visits (kind, code, name, timestamp) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range visits {
		ts := v.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := stmt.Exec(string(v.Kind), v.Code, v.Name, ts); err != nil {
			return fmt.Errorf("failed to insert visit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Recent returns the latest visit per (kind, code), newest first
func (r *visitRepository) Recent(limit int) ([]*models.Visit, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.Query(`SELECT v.kind, v.code, v.name, v.timestamp
		FROM visits v
		JOIN (SELECT MAX(id) AS id FROM visits GROUP BY kind, code) latest ON latest.id = v.id
		ORDER BY v.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []*models.Visit
	for rows.Next() {
		var (
			kind string
			name sql.NullString
			v    models.Visit
		)
		if err := rows.Scan(&kind, &v.Code, &name, &v.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		v.Kind = models.Kind(kind)
		v.Name = name.String
		visits = append(visits, &v)
	}
	return visits, rows.Err()
}

// Prune deletes all but the newest keep visits and returns how many rows
// were removed
func (r *visitRepository) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := r.db.Exec(`DELETE FROM visits WHERE id NOT IN (
		SELECT id FROM visits ORDER BY id DESC LIMIT ?
	)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune visits: %w", err)
	}
	return res.RowsAffected()
}
