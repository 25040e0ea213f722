package database

import (
	"path/filepath"
	"testing"
	"time"

	"flight_atlas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NotNil(t, db)

	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	return db
}

func TestNew(t *testing.T) {
	db := setupTestDB(t)
	assert.NotNil(t, db)
}

func TestNew_BadPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestContactRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := db.ContactRepository()

	msg := &ContactMessage{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Data looks stale"}
	id, err := repo.Insert(msg)
	require.NoError(t, err)
	assert.Equal(t, id, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())

	_, err = repo.Insert(&ContactMessage{Name: "Bob", Email: "bob@example.com", Subject: "2", Message: "m"})
	require.NoError(t, err)

	queued, err := repo.List()
	require.NoError(t, err)
	require.Len(t, queued, 2)
	assert.Equal(t, "Ada", queued[0].Name)
	assert.Equal(t, "Data looks stale", queued[0].Message)
	assert.Equal(t, "Bob", queued[1].Name)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVisitRepository_InsertBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := db.VisitRepository()

	now := time.Now()
	visits := []*models.Visit{
		{Kind: models.KindAirport, Code: "EGLL", Name: "Heathrow", Timestamp: now},
		{Kind: models.KindAirline, Code: "KLM", Name: "KLM", Timestamp: now.Add(time.Second)},
		{Kind: models.KindAirport, Code: "EGLL", Name: "Heathrow", Timestamp: now.Add(2 * time.Second)},
	}
	require.NoError(t, repo.InsertBatch(visits))

	recent, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "EGLL", recent[0].Code)
	assert.Equal(t, models.KindAirport, recent[0].Kind)
	assert.Equal(t, "KLM", recent[1].Code)

	recent, err = repo.Recent(1)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestVisitRepository_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := db.VisitRepository()

	// Empty batch should not error
	assert.NoError(t, repo.InsertBatch([]*models.Visit{}))

	recent, err := repo.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, recent)

	recent, err = repo.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestVisitRepository_Prune(t *testing.T) {
	db := setupTestDB(t)
	repo := db.VisitRepository()

	now := time.Now()
	var visits []*models.Visit
	for i, code := range []string{"EGLL", "EHAM", "KJFK", "LFPG"} {
		visits = append(visits, &models.Visit{Kind: models.KindAirport, Code: code, Timestamp: now.Add(time.Duration(i) * time.Second)})
	}
	require.NoError(t, repo.InsertBatch(visits))

	removed, err := repo.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	recent, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "LFPG", recent[0].Code)
	assert.Equal(t, "KJFK", recent[1].Code)

	removed, err = repo.Prune(2)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
