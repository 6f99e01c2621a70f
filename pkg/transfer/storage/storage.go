// Package storage provides the blob file service behind attachment bytes
// and transfer archive artifacts. Files are addressed by an opaque key; the
// engine never interprets key contents.
package storage

import (
	"context"
	"io"
)

// Service is the capability the transfer engine needs from blob storage.
type Service interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, r io.Reader) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
