package blob

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/internal/infrastructure/blobstore"
	"github.com/fastygo/daybook/repository"
)

type objectStorage struct {
	store   *blobstore.Store
	baseURL string
}

// NewObjectStorage exposes the bbolt blob store as ObjectStorage. Public URLs are baseURL + "/" + key.
func NewObjectStorage(store *blobstore.Store, baseURL string) repository.ObjectStorage {
	return &objectStorage{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *objectStorage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := s.store.Put(key, blobstore.Object{ContentType: contentType, Data: data}); err != nil {
		if errors.Is(err, blobstore.ErrExists) {
			return "", domain.ErrObjectExists
		}
		return "", err
	}
	return s.baseURL + "/" + key, nil
}

func (s *objectStorage) Get(ctx context.Context, key string) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	key, err := cleanKey(key)
	if err != nil {
		return "", nil, err
	}
	obj, err := s.store.Get(key)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return "", nil, domain.ErrObjectNotFound
		}
		return "", nil, err
	}
	return obj.ContentType, obj.Data, nil
}

func (s *objectStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	return s.store.Delete(key)
}

func (s *objectStorage) KeyFromURL(publicURL string) (string, error) {
	raw := strings.TrimSpace(publicURL)
	if !strings.HasPrefix(raw, s.baseURL+"/") {
		return "", domain.NewError(domain.ErrCodeInvalid, "url does not point to object storage")
	}
	rel := strings.TrimPrefix(raw, s.baseURL+"/")
	if i := strings.IndexAny(rel, "?#"); i >= 0 {
		rel = rel[:i]
	}
	unescaped, err := url.PathUnescape(rel)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInvalid, "malformed object url", err)
	}
	return cleanKey(unescaped)
}

// cleanKey rejects empty keys and any attempt to climb out of the bucket namespace.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", domain.NewError(domain.ErrCodeInvalid, "empty object key")
	}
	cleaned := path.Clean(key)
	if cleaned != key || strings.HasPrefix(cleaned, "..") {
		return "", domain.NewError(domain.ErrCodeInvalid, "invalid object key")
	}
	return cleaned, nil
}
