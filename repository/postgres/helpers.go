package postgres

import (
	"encoding/json"
	"time"

	"github.com/fastygo/daybook/repository"
)

const maxPageSize = 100

type scanner interface {
	Scan(dest ...interface{}) error
}

func marshalMap(data map[string]string) []byte {
	if len(data) == 0 {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return b
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullTimePtr(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

func nullBool(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return *b
}

// limitArg returns nil (LIMIT NULL, i.e. unbounded) for repository.NoLimit.
func limitArg(limit int) interface{} {
	if limit == repository.NoLimit {
		return nil
	}
	if limit <= 0 || limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
