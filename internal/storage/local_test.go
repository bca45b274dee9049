package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestLocalStorageUploadCreatesDirectories(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewLocalStorage(root)

	key := Key("downloaded_images", "142_NYC_TeamBuilding_PaidBy_JohnDoe.jpg")
	require.NoError(t, s.Upload(ctx, key, bytes.NewReader([]byte("jpeg"))))

	data, err := os.ReadFile(filepath.Join(root, "downloaded_images", "142_NYC_TeamBuilding_PaidBy_JohnDoe.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(got))
}

func TestLocalStorageFailedUploadLeavesNothing(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewLocalStorage(root)

	key := Key("barcodes", "Product_ABC.png")
	err := s.Upload(ctx, key, failingReader{})
	require.Error(t, err)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	entries, err := os.ReadDir(filepath.Join(root, "barcodes"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStorageOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage(t.TempDir())

	key := Key("pdf_images", "a.pdf")
	require.NoError(t, s.Upload(ctx, key, bytes.NewReader([]byte("first"))))
	require.NoError(t, s.Upload(ctx, key, bytes.NewReader([]byte("second"))))

	data, err := os.ReadFile(s.Path(key))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalStorageExistsIgnoresDirectories(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewLocalStorage(root)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "pdf_images", "x.pdf"), 0o755))
	exists, err := s.Exists(ctx, Key("pdf_images", "x.pdf"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorageDelete(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage(t.TempDir())

	key := Key("pdf_images", "a.pdf")
	require.NoError(t, s.Upload(ctx, key, bytes.NewReader([]byte("pdf"))))
	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorageCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewLocalStorage(t.TempDir())
	assert.ErrorIs(t, s.Upload(ctx, "a", bytes.NewReader(nil)), context.Canceled)
	_, err := s.Exists(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "pdf_images/a.pdf", Key("pdf_images", "a.pdf"))
	assert.Equal(t, "out/barcodes/x.png", Key("./out", "barcodes", "x.png"))
}
