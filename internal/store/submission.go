package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"portfolio-backend/internal/types"
)

// Submission is an archived contact form entry.
type Submission struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Reason    string    `json:"reason"`
	Message   string    `json:"message"`
}

func NewSubmission(c types.ContactSubmission, now time.Time) Submission {
	return Submission{
		ID:        uuid.NewString(),
		Timestamp: now.UTC(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Reason:    c.Reason,
		Message:   c.Message,
	}
}

// SubmissionArchive persists contact submissions.
type SubmissionArchive interface {
	SaveSubmission(ctx context.Context, sub Submission) error
}

// MultiArchive saves to every archive. A submission stored by at least one
// archive counts as saved; failures of the others are logged. The joined
// error is returned only when no archive took it.
type MultiArchive []SubmissionArchive

func (m MultiArchive) SaveSubmission(ctx context.Context, sub Submission) error {
	var errs []error
	saved, tried := 0, 0
	for _, a := range m {
		if a == nil {
			continue
		}
		tried++
		if err := a.SaveSubmission(ctx, sub); err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
	}
	if saved == 0 && tried > 0 {
		return errors.Join(errs...)
	}
	for _, err := range errs {
		slog.Warn("[store] submission kept in some archives only", "id", sub.ID, "error", err)
	}
	return nil
}
