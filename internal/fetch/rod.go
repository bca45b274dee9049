package fetch

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/atanko123/Scripts/internal/config"
	"github.com/atanko123/Scripts/internal/logger"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

const confirmSelector = "#uc-download-link"

// RodOpener launches Chrome and waits for the user to log in by hand.
type RodOpener struct {
	cfg    config.BrowserConfig
	prompt *bufio.Reader
	out    io.Writer
	log    zerolog.Logger
}

// NewRodOpener reads login confirmations from prompt; nil skips the wait.
func NewRodOpener(cfg config.BrowserConfig, prompt io.Reader, out io.Writer) *RodOpener {
	o := &RodOpener{
		cfg: cfg,
		out: out,
		log: logger.Get(),
	}
	if prompt != nil {
		o.prompt = bufio.NewReader(prompt)
	}
	return o
}

func (o *RodOpener) Open(ctx context.Context) (Session, error) {
	downloadDir := o.cfg.DownloadDir
	if downloadDir == "" {
		dir, err := os.MkdirTemp("", "drive-batch-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create download dir: %w", err)
		}
		downloadDir = dir
	} else if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	l := launcher.New().Headless(o.cfg.Headless)
	if o.cfg.Bin != "" {
		l = l.Bin(o.cfg.Bin)
	}
	if o.cfg.UserDataDir != "" {
		l = l.UserDataDir(o.cfg.UserDataDir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: o.cfg.LoginURL})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("create page: %w", err)
	}

	s := &RodSession{
		cfg:         o.cfg,
		launcher:    l,
		browser:     browser,
		page:        page,
		downloadDir: downloadDir,
		ownsDir:     o.cfg.DownloadDir == "",
		log:         o.log,
	}

	if o.cfg.LoginPrompt && o.prompt != nil {
		if err := o.waitForLogin(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (o *RodOpener) waitForLogin(ctx context.Context) error {
	fmt.Fprintln(o.out, "Please log in to Google in the browser window.")
	fmt.Fprint(o.out, "Press Enter here once you are logged in... ")

	// A cancelled wait leaves this reader blocked on stdin until the next
	// line or process exit. The CLI exits right after a cancel.
	done := make(chan error, 1)
	go func() {
		_, err := o.prompt.ReadString('\n')
		if stderrors.Is(err, io.EOF) {
			err = nil
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// RodSession drives one Chrome tab and captures files through the
// browser download channel.
type RodSession struct {
	cfg         config.BrowserConfig
	launcher    *launcher.Launcher
	browser     *rod.Browser
	page        *rod.Page
	downloadDir string
	ownsDir     bool
	log         zerolog.Logger
}

func (s *RodSession) Fetch(ctx context.Context, link string) ([]byte, error) {
	id, err := DriveFileID(link)
	if err != nil {
		return nil, err
	}

	page := s.page.Context(ctx)
	log := s.log.With().Str("file_id", id).Logger()

	log.Debug().Str("url", DriveViewURL(id)).Msg("Opening file page")
	if err := s.navigate(page, DriveViewURL(id)); err != nil {
		return nil, fmt.Errorf("open file page: %w", err)
	}
	if err := waitLoad(page, s.cfg.NavigationTimeout); err != nil {
		return nil, fmt.Errorf("wait for file page: %w", err)
	}

	info, err := s.download(ctx, page, id, log)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(s.downloadDir, info.GUID)
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read downloaded file: %w", err)
	}
	return data, nil
}

// download requests the file and waits for Chrome to finish writing it.
// The download behaviour set for the wait is restored on every return.
func (s *RodSession) download(ctx context.Context, page *rod.Page, id string, log zerolog.Logger) (*proto.PageDownloadWillBegin, error) {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	wait := s.browser.Context(waitCtx).WaitDownload(s.downloadDir)

	abort := func(err error) (*proto.PageDownloadWillBegin, error) {
		cancel()
		wait()
		s.restoreDownloads()
		return nil, err
	}

	log.Debug().Str("url", DriveDownloadURL(id)).Msg("Requesting download")
	err := s.navigate(page, DriveDownloadURL(id))
	switch {
	case err == nil:
		// A page instead of a file: large files stop at a virus-scan
		// warning with a confirmation link.
		_ = waitLoad(page, s.cfg.ConfirmTimeout)
		if has, el, err := page.Has(confirmSelector); err == nil && has {
			log.Debug().Msg("Confirming large file download")
			if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
				return abort(fmt.Errorf("confirm download: %w", err))
			}
		}
	case isDownloadNavigation(err):
	default:
		return abort(fmt.Errorf("request download: %w", err))
	}

	info := wait()
	if err := ctx.Err(); err != nil {
		// wait restores through the cancelled context, which fails.
		s.restoreDownloads()
		return nil, fmt.Errorf("download did not finish: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("download did not start")
	}
	return info, nil
}

func (s *RodSession) navigate(page *rod.Page, url string) error {
	p := page.Timeout(s.cfg.NavigationTimeout)
	defer p.CancelTimeout()
	return p.Navigate(url)
}

func waitLoad(page *rod.Page, timeout time.Duration) error {
	p := page.Timeout(timeout)
	defer p.CancelTimeout()
	return p.WaitLoad()
}

func (s *RodSession) restoreDownloads() {
	err := proto.BrowserSetDownloadBehavior{
		Behavior: proto.BrowserSetDownloadBehaviorBehaviorDefault,
	}.Call(s.browser)
	if err != nil {
		s.log.Debug().Err(err).Msg("Failed to restore download behaviour")
	}
}

func (s *RodSession) Close() error {
	var err error
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
		if s.cfg.UserDataDir == "" {
			s.launcher.Cleanup()
		}
	}
	if s.ownsDir {
		_ = os.RemoveAll(s.downloadDir)
	}
	return err
}

// isDownloadNavigation reports the abort Chrome raises when a navigation
// turns into a file download.
func isDownloadNavigation(err error) bool {
	var navErr *rod.NavigationError
	return stderrors.As(err, &navErr) && navErr.Reason == "net::ERR_ABORTED"
}

var _ Session = (*RodSession)(nil)
