package usecase

import (
	"context"
	"time"
)

// DeleteQueue parks object deletions that failed inline so a background sweeper can retry them.
type DeleteQueue interface {
	EnqueueObjectDelete(ctx context.Context, userID, key string, cause error) error
}

// Clock is the time source of a use case.
type Clock func() time.Time

// Page bounds a list query. A zero Limit selects the repository default.
type Page struct {
	Limit  int
	Offset int
}
