package fetch

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/atanko123/Scripts/internal/config"
	"github.com/atanko123/Scripts/internal/storage"
	"github.com/atanko123/Scripts/pkg/errors"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	payloads map[string][]byte
	fail     map[string]error
	fetches  []string
	closes   int
	deadline bool
}

func (s *fakeSession) Fetch(ctx context.Context, url string) ([]byte, error) {
	s.fetches = append(s.fetches, url)
	_, s.deadline = ctx.Deadline()
	if err := s.fail[url]; err != nil {
		return nil, err
	}
	return s.payloads[url], nil
}

func (s *fakeSession) Close() error {
	s.closes++
	return nil
}

// blockingSession never answers until its context ends.
type blockingSession struct {
	fakeSession
}

func (s *blockingSession) Fetch(ctx context.Context, url string) ([]byte, error) {
	s.fetches = append(s.fetches, url)
	<-ctx.Done()
	return nil, ctx.Err()
}

func pngBytes(t *testing.T, shade uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.SetGray(1, 1, color.Gray{Y: shade})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type countingOpener struct {
	session *fakeSession
	err     error
	opens   int
}

func (o *countingOpener) Open(context.Context) (Session, error) {
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.session, nil
}

func TestAgentOpensLazilyAndOnce(t *testing.T) {
	ctx := context.Background()
	imgA, imgB := pngBytes(t, 10), pngBytes(t, 200)
	session := &fakeSession{payloads: map[string][]byte{"a": imgA, "b": imgB}}
	opener := &countingOpener{session: session}
	store := storage.NewLocalStorage(t.TempDir())
	agent := NewAgent(opener, store, time.Minute)

	assert.False(t, agent.Opened())
	assert.Equal(t, 0, opener.opens)

	require.NoError(t, agent.Fetch(ctx, "a", "downloaded_images/a.jpg"))
	require.NoError(t, agent.Fetch(ctx, "b", "downloaded_images/b.jpg"))

	assert.Equal(t, 1, opener.opens)
	assert.True(t, agent.Opened())
	assert.True(t, session.deadline)

	data, err := os.ReadFile(store.Path("downloaded_images/b.jpg"))
	require.NoError(t, err)
	assert.Equal(t, imgB, data)

	require.NoError(t, agent.Close())
	require.NoError(t, agent.Close())
	assert.Equal(t, 1, session.closes)

	_, err = agent.EnsureSession(ctx)
	assert.ErrorIs(t, err, errors.ErrSessionClosed)
}

func TestAgentCloseWithoutOpen(t *testing.T) {
	opener := &countingOpener{session: &fakeSession{}}
	agent := NewAgent(opener, storage.NewLocalStorage(t.TempDir()), time.Minute)

	require.NoError(t, agent.Close())
	assert.Equal(t, 0, opener.opens)
	assert.False(t, agent.Opened())
}

func TestAgentFetchFailureIsFetchError(t *testing.T) {
	ctx := context.Background()
	session := &fakeSession{fail: map[string]error{"bad": stderrors.New("404")}}
	store := storage.NewLocalStorage(t.TempDir())
	agent := NewAgent(&countingOpener{session: session}, store, time.Minute)

	err := agent.Fetch(ctx, "bad", "downloaded_images/bad.jpg")
	var fetchErr errors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "bad", fetchErr.URL)

	exists, err := store.Exists(ctx, "downloaded_images/bad.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAgentRejectsEmptyPayload(t *testing.T) {
	ctx := context.Background()
	session := &fakeSession{payloads: map[string][]byte{}}
	store := storage.NewLocalStorage(t.TempDir())
	agent := NewAgent(&countingOpener{session: session}, store, 0)

	err := agent.Fetch(ctx, "empty", "downloaded_images/empty.jpg")
	assert.ErrorIs(t, err, errors.ErrEmptyPayload)
	assert.False(t, session.deadline)

	exists, _ := store.Exists(ctx, "downloaded_images/empty.jpg")
	assert.False(t, exists)
}

func TestAgentRejectsNonImagePayload(t *testing.T) {
	ctx := context.Background()
	page := []byte("<!DOCTYPE html><html><body>Sign in to continue</body></html>")
	session := &fakeSession{payloads: map[string][]byte{"login": page}}
	store := storage.NewLocalStorage(t.TempDir())
	agent := NewAgent(&countingOpener{session: session}, store, time.Minute)

	err := agent.Fetch(ctx, "login", "downloaded_images/login.jpg")
	var fetchErr errors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, errors.ErrUnsupportedImage)
	assert.Contains(t, err.Error(), "text/html")

	exists, err := store.Exists(ctx, "downloaded_images/login.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAgentFetchTimeout(t *testing.T) {
	ctx := context.Background()
	session := &blockingSession{}
	store := storage.NewLocalStorage(t.TempDir())
	opener := OpenerFunc(func(context.Context) (Session, error) { return session, nil })
	agent := NewAgent(opener, store, 20*time.Millisecond)

	start := time.Now()
	err := agent.Fetch(ctx, "slow", "downloaded_images/slow.jpg")
	assert.Less(t, time.Since(start), 5*time.Second)

	var fetchErr errors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"slow"}, session.fetches)

	exists, err := store.Exists(ctx, "downloaded_images/slow.jpg")
	require.NoError(t, err)
	assert.False(t, exists)

	// The parent context is untouched, so the batch carries on.
	assert.NoError(t, ctx.Err())
	require.NoError(t, agent.Close())
}

func TestAgentRemembersOpenFailure(t *testing.T) {
	ctx := context.Background()
	opener := &countingOpener{err: stderrors.New("chrome not found")}
	agent := NewAgent(opener, storage.NewLocalStorage(t.TempDir()), time.Minute)

	assert.Error(t, agent.Fetch(ctx, "a", "downloaded_images/a.jpg"))
	assert.Error(t, agent.Fetch(ctx, "b", "downloaded_images/b.jpg"))
	assert.Equal(t, 1, opener.opens)
	assert.False(t, agent.Opened())
	require.NoError(t, agent.Close())
}

func TestOpenerFunc(t *testing.T) {
	session := &fakeSession{}
	var opener Opener = OpenerFunc(func(context.Context) (Session, error) { return session, nil })

	got, err := opener.Open(context.Background())
	require.NoError(t, err)
	assert.Same(t, session, got)
}

func TestDriveFileID(t *testing.T) {
	cases := map[string]string{
		"https://drive.google.com/file/d/1AbC-d_9/view?usp=sharing": "1AbC-d_9",
		"https://drive.google.com/open?id=XyZ_123":                  "XyZ_123",
		"https://drive.google.com/uc?export=download&id=q-1":        "q-1",
		"  1AbC-d_9  ": "1AbC-d_9",
	}
	for in, want := range cases {
		got, err := DriveFileID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := DriveFileID("https://example.com/photo.jpg")
	assert.ErrorIs(t, err, errors.ErrInvalidDriveURL)
	_, err = DriveFileID("")
	assert.ErrorIs(t, err, errors.ErrInvalidDriveURL)
}

func TestDriveURLs(t *testing.T) {
	assert.Equal(t, "https://drive.google.com/file/d/abc/view", DriveViewURL("abc"))
	assert.Equal(t, "https://drive.google.com/uc?export=download&id=abc", DriveDownloadURL("abc"))
}

func TestIsDownloadNavigation(t *testing.T) {
	assert.True(t, isDownloadNavigation(&rod.NavigationError{Reason: "net::ERR_ABORTED"}))
	assert.False(t, isDownloadNavigation(&rod.NavigationError{Reason: "net::ERR_NAME_NOT_RESOLVED"}))
	assert.False(t, isDownloadNavigation(stderrors.New("boom")))
}

func TestWaitForLoginReadsOneLinePerOpen(t *testing.T) {
	var out strings.Builder
	o := NewRodOpener(config.Default().Browser, strings.NewReader("\n\n"), &out)

	require.NoError(t, o.waitForLogin(context.Background()))
	require.NoError(t, o.waitForLogin(context.Background()))
	// Input exhausted counts as confirmation.
	require.NoError(t, o.waitForLogin(context.Background()))
	assert.Contains(t, out.String(), "Press Enter")
}

func TestWaitForLoginCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	o := NewRodOpener(config.Default().Browser, pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, o.waitForLogin(ctx), context.Canceled)

	// Closing the input releases the blocked reader.
	require.NoError(t, pw.Close())
}
