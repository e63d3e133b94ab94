package repository

import (
	"context"
	"time"

	"github.com/fastygo/daybook/domain"
)

type JournalFilter struct {
	UserID      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

type JournalRepository interface {
	GetByID(ctx context.Context, userID, id string) (*domain.Journal, error)
	List(ctx context.Context, filter JournalFilter) ([]domain.Journal, error)
	Create(ctx context.Context, journal *domain.Journal) (*domain.Journal, error)
	// Update writes the journal row. A positive journal.Version must match the stored version.
	Update(ctx context.Context, journal *domain.Journal) error
	Delete(ctx context.Context, userID, id string) error

	InsertImages(ctx context.Context, journalID string, urls []string) ([]domain.JournalImage, error)
	DeleteImages(ctx context.Context, journalID string) error
	InsertTags(ctx context.Context, journalID string, labels []string) ([]domain.JournalTag, error)
	DeleteTags(ctx context.Context, journalID string) error
}
