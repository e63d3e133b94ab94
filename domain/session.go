package domain

import "time"

// Session is the authenticated identity passed explicitly to every owner-scoped operation.
type Session struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Email     string            `json:"email,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// RequireUser returns the owner id or ErrNotAuthenticated when the session is missing.
func (s *Session) RequireUser() (string, error) {
	if s == nil || s.UserID == "" {
		return "", ErrNotAuthenticated
	}
	return s.UserID, nil
}
