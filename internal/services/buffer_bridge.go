package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/internal/infrastructure/buffer"
	"github.com/fastygo/daybook/usecase"
)

// BufferBridge persists failed object deletions for the sweeper.
type BufferBridge struct {
	store  *buffer.Store
	logger *zap.Logger
}

func NewBufferBridge(store *buffer.Store, logger *zap.Logger) *BufferBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BufferBridge{store: store, logger: logger}
}

// EnqueueObjectDelete queues key for deletion unless it is already queued.
func (b *BufferBridge) EnqueueObjectDelete(ctx context.Context, userID, key string, cause error) error {
	if b == nil || b.store == nil || key == "" {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	queued, err := b.store.Contains(buffer.EntityObject, key)
	if err != nil {
		return err
	}
	if queued {
		return nil
	}

	item := buffer.Item{
		UserID:    userID,
		Entity:    buffer.EntityObject,
		Operation: buffer.OperationDelete,
		Key:       key,
		Priority:  3,
	}
	if cause != nil {
		item.LastError = cause.Error()
	}
	if err := b.store.Enqueue(item); err != nil {
		return err
	}
	b.logger.Info("object deletion queued", zap.String("key", key), zap.String("user_id", userID))
	return nil
}

var _ usecase.DeleteQueue = (*BufferBridge)(nil)
