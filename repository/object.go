package repository

import "context"

// ObjectStorage stores uploaded binaries and exposes them under public URLs.
type ObjectStorage interface {
	// Put never overwrites; a taken key yields domain.ErrObjectExists.
	Put(ctx context.Context, key, contentType string, data []byte) (publicURL string, err error)
	Get(ctx context.Context, key string) (contentType string, data []byte, err error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL maps a public URL produced by Put back to its storage key.
	KeyFromURL(publicURL string) (string, error)
}
