package fetch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"github.com/atanko123/Scripts/internal/logger"
	"github.com/atanko123/Scripts/internal/storage"
	"github.com/atanko123/Scripts/pkg/errors"

	"github.com/rs/zerolog"
)

// Agent owns the lazily opened Session for one batch run.
type Agent struct {
	opener  Opener
	store   storage.Storage
	timeout time.Duration
	session Session
	openErr error
	closed  bool
	log     zerolog.Logger
}

func NewAgent(opener Opener, store storage.Storage, timeout time.Duration) *Agent {
	return &Agent{
		opener:  opener,
		store:   store,
		timeout: timeout,
		log:     logger.Get(),
	}
}

// EnsureSession opens the session on first use and returns the same one
// afterwards. A failed open is remembered so later rows fail fast.
func (a *Agent) EnsureSession(ctx context.Context) (Session, error) {
	if a.closed {
		return nil, errors.ErrSessionClosed
	}
	if a.session != nil {
		return a.session, nil
	}
	if a.openErr != nil {
		return nil, a.openErr
	}

	a.log.Info().Msg("Opening browser session")
	session, err := a.opener.Open(ctx)
	if err != nil {
		a.openErr = err
		a.log.Error().Err(err).Msg("Failed to open browser session")
		return nil, err
	}
	a.session = session
	return session, nil
}

// Fetch downloads url into the storage key. The payload is held in memory
// and written in one step, so the key never holds a partial file.
func (a *Agent) Fetch(ctx context.Context, url, key string) error {
	session, err := a.EnsureSession(ctx)
	if err != nil {
		return errors.NewFetchError(url, err)
	}

	fetchCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	data, err := session.Fetch(fetchCtx, url)
	if err != nil {
		return errors.NewFetchError(url, err)
	}
	if len(data) == 0 {
		return errors.NewFetchError(url, errors.ErrEmptyPayload)
	}
	if err := checkImage(data); err != nil {
		return errors.NewFetchError(url, err)
	}

	if err := a.store.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		return errors.NewFetchError(url, err)
	}

	a.log.Debug().Str("key", key).Int("bytes", len(data)).Msg("Fetched file")
	return nil
}

// Opened reports whether a session was created during this run.
func (a *Agent) Opened() bool {
	return a.session != nil
}

// Close tears the session down once. It is a no-op when nothing was opened.
func (a *Agent) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if a.session == nil {
		return nil
	}

	a.log.Info().Msg("Closing browser session")
	return a.session.Close()
}

// checkImage rejects payloads that are not a decodable image, such as a
// sign-in or quota page served in place of the file. Stored under the image
// key they would stop the row from ever being fetched again.
func checkImage(data []byte) error {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: got %s", errors.ErrUnsupportedImage, http.DetectContentType(data))
	}
	return nil
}
