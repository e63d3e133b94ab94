package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/daybook/domain"
	appLogger "github.com/fastygo/daybook/pkg/logger"
	"github.com/fastygo/daybook/repository"
	"github.com/fastygo/daybook/usecase"
)

const DefaultMaxUploadBytes = 5 << 20

// maxKeyAttempts bounds how many later millisecond stamps Upload tries when
// the user already has an object under the current one.
const maxKeyAttempts = 8

type UseCase struct {
	storage  repository.ObjectStorage
	queue    usecase.DeleteQueue
	maxBytes int
	now      usecase.Clock
	logger   *zap.Logger
}

// New builds the media use case. queue may be nil, in which case failed deletions are only reported.
func New(storage repository.ObjectStorage, queue usecase.DeleteQueue, maxBytes int, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UseCase{
		storage:  storage,
		queue:    queue,
		maxBytes: maxBytes,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source; used by tests.
func (uc *UseCase) WithClock(now usecase.Clock) *UseCase {
	uc.now = now
	return uc
}

// Upload stores an image under {userId}/{unixMillis}.jpg and returns its public URL.
// Existing objects are never overwritten.
func (uc *UseCase) Upload(ctx context.Context, session *domain.Session, contentType string, data []byte) (string, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", domain.NewError(domain.ErrCodeInvalid, "empty upload")
	}
	if len(data) > uc.maxBytes {
		return "", domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("upload exceeds %d bytes", uc.maxBytes))
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", domain.NewError(domain.ErrCodeInvalid, "only images can be uploaded")
	}

	millis := uc.now().UnixMilli()
	for attempt := 0; ; attempt++ {
		key := fmt.Sprintf("%s/%d.jpg", userID, millis)
		publicURL, err := uc.storage.Put(ctx, key, contentType, data)
		if err == nil {
			return publicURL, nil
		}
		// same user, same millisecond: move to the next free stamp
		if errors.Is(err, domain.ErrObjectExists) && attempt < maxKeyAttempts-1 {
			millis++
			continue
		}
		appLogger.FromContext(ctx, uc.logger).Error("image upload failed", zap.String("key", key), zap.Error(err))
		return "", usecase.Internal("failed to upload image", err)
	}
}

// Open reads a stored object by its storage-relative path.
func (uc *UseCase) Open(ctx context.Context, key string) (string, []byte, error) {
	contentType, data, err := uc.storage.Get(ctx, key)
	if err != nil {
		return "", nil, usecase.Internal("failed to read object", err)
	}
	return contentType, data, nil
}

// Delete removes an object the session user owns, addressed by its public URL.
func (uc *UseCase) Delete(ctx context.Context, session *domain.Session, publicURL string) error {
	userID, err := session.RequireUser()
	if err != nil {
		return err
	}
	return uc.Remove(ctx, userID, publicURL)
}

// Remove deletes the object behind publicURL on behalf of userID. Missing
// objects count as removed. When storage fails the key is queued for the
// background sweeper and only a failure to queue is returned.
func (uc *UseCase) Remove(ctx context.Context, userID, publicURL string) error {
	key, err := uc.ownedKey(userID, publicURL)
	if err != nil {
		return err
	}

	err = uc.storage.Delete(ctx, key)
	if err == nil || errors.Is(err, domain.ErrObjectNotFound) {
		return nil
	}
	appLogger.FromContext(ctx, uc.logger).Warn("object delete failed", zap.String("key", key), zap.Error(err))
	if uc.queue == nil {
		return usecase.Internal("failed to delete object", err)
	}
	if qErr := uc.queue.EnqueueObjectDelete(ctx, userID, key, err); qErr != nil {
		appLogger.FromContext(ctx, uc.logger).Error("failed to queue object delete", zap.String("key", key), zap.Error(qErr))
		return usecase.Internal("failed to delete object", errors.Join(err, qErr))
	}
	return nil
}

func (uc *UseCase) ownedKey(userID, publicURL string) (string, error) {
	key, err := uc.storage.KeyFromURL(publicURL)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(key, userID+"/") {
		return "", domain.NewError(domain.ErrCodeForbidden, "object belongs to another user")
	}
	return key, nil
}
