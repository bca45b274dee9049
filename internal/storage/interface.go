package storage

import (
	"context"
	"io"
)

// Storage addresses artifacts by slash-separated relative keys such as
// "pdf_images/142_NYC_TeamBuilding_PaidBy_JohnDoe.pdf".
type Storage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, data io.Reader) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
