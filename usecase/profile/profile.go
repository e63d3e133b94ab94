package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/repository"
	"github.com/fastygo/daybook/usecase"
)

// Profile is the public view of a user.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

func (uc *UseCase) Get(ctx context.Context, session *domain.Session) (*Profile, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, usecase.Internal("failed to load profile", err)
	}
	return toProfile(user), nil
}

// Update merges the known profile keys into the user's metadata. Unknown keys
// are ignored and an empty value clears the key.
func (uc *UseCase) Update(ctx context.Context, session *domain.Session, metadata map[string]string) (*Profile, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, usecase.Internal("failed to load profile", err)
	}
	if user.Metadata == nil {
		user.Metadata = make(map[string]string)
	}
	for _, key := range domain.ProfileKeys {
		value, ok := metadata[key]
		if !ok {
			continue
		}
		if value = strings.TrimSpace(value); value == "" {
			delete(user.Metadata, key)
			continue
		}
		user.Metadata[key] = value
	}

	if err := uc.users.Upsert(ctx, user); err != nil {
		uc.logger.Error("profile update failed", zap.String("user_id", userID), zap.Error(err))
		return nil, usecase.Internal("failed to update profile", err)
	}
	return toProfile(user), nil
}

func toProfile(u *domain.User) *Profile {
	return &Profile{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName(),
		AvatarURL:   u.Metadata[domain.MetaAvatarURL],
		Phone:       u.Metadata[domain.MetaPhone],
	}
}
