package monitor

import "time"

// Status is the latest dependency snapshot served by /health.
type Status struct {
	PostgreSQL     bool      `json:"postgresql"`
	Redis          bool      `json:"redis"`
	Buffer         bool      `json:"buffer"`
	PendingDeletes int       `json:"pending_deletes"`
	Storage        bool      `json:"storage"`
	StoredObjects  int       `json:"stored_objects"`
	LastCheck      time.Time `json:"last_check"`
}

// Healthy reports whether the request path dependencies are reachable.
func (s Status) Healthy() bool {
	return s.PostgreSQL && s.Redis && s.Storage
}
