package domain

import "time"

// Metadata keys a user may set on their profile.
const (
	MetaDisplayName = "display_name"
	MetaAvatarURL   = "avatar_url"
	MetaPhone       = "phone"
)

// ProfileKeys are the metadata keys accepted on profile updates.
var ProfileKeys = []string{MetaDisplayName, MetaAvatarURL, MetaPhone}

// User represents an authenticated identity in the platform.
type User struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"-"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if name := u.Metadata[MetaDisplayName]; name != "" {
		return name
	}
	return u.Email
}
