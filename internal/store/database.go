package store

import (
	"context"
	"fmt"

	"portfolio-backend/internal/db"
)

// DatabaseStore archives contact submissions in PostgreSQL
type DatabaseStore struct {
	db *db.DB
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

// SaveSubmission inserts a submission; re-saving the same id is a no-op
func (ds *DatabaseStore) SaveSubmission(ctx context.Context, sub Submission) error {
	if sub.ID == "" {
		return fmt.Errorf("submission id is required")
	}

	query := `
		INSERT INTO contact_submissions (id, submitted_at, name, email, phone, reason, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := ds.db.ExecContext(ctx, query, sub.ID, sub.Timestamp, sub.Name, sub.Email, sub.Phone, sub.Reason, sub.Message)
	if err != nil {
		return fmt.Errorf("failed to save contact submission: %w", err)
	}

	return nil
}
