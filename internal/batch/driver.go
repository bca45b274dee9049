// Package batch walks a spreadsheet row by row and produces the missing
// artifacts for each row.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/atanko123/Scripts/internal/config"
	"github.com/atanko123/Scripts/internal/excel"
	"github.com/atanko123/Scripts/internal/fetch"
	"github.com/atanko123/Scripts/internal/gate"
	"github.com/atanko123/Scripts/internal/logger"
	"github.com/atanko123/Scripts/internal/mode"
	"github.com/atanko123/Scripts/internal/model"
	"github.com/atanko123/Scripts/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type PDFRenderer interface {
	Render(img []byte, header string) ([]byte, error)
}

type BarcodeRenderer interface {
	Render(code, label string) ([]byte, error)
}

type Publisher interface {
	PublishArtifact(ctx context.Context, event model.ArtifactEvent) error
}

type Option func(*Driver)

// WithMirror copies every new artifact to a second storage.
func WithMirror(mirror storage.Storage) Option {
	return func(d *Driver) { d.mirror = mirror }
}

// WithPublisher announces every new artifact.
func WithPublisher(p Publisher) Option {
	return func(d *Driver) { d.events = p }
}

type Driver struct {
	cfg      *config.Config
	store    storage.Storage
	gate     *gate.Gate
	agent    *fetch.Agent
	pdf      PDFRenderer
	barcodes BarcodeRenderer
	mirror   storage.Storage
	events   Publisher
	runID    string
	log      zerolog.Logger
}

func NewDriver(
	cfg *config.Config,
	store storage.Storage,
	opener fetch.Opener,
	pdf PDFRenderer,
	barcodes BarcodeRenderer,
	opts ...Option,
) *Driver {
	runID := uuid.NewString()
	d := &Driver{
		cfg:      cfg,
		store:    store,
		gate:     gate.New(store, cfg.Output),
		agent:    fetch.NewAgent(opener, store, cfg.Browser.FetchTimeout),
		pdf:      pdf,
		barcodes: barcodes,
		runID:    runID,
		log:      logger.Get().With().Str("run_id", runID).Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run visits every row once. Only an unreadable input is returned as an
// error; per-row failures are logged and counted. The browser session is
// closed before Run returns iff a row opened it.
func (d *Driver) Run(ctx context.Context, input mode.Resolved) (model.Summary, error) {
	summary := model.Summary{Mode: input.Mode}

	src, err := excel.Open(input.Path, input.Mode, d.cfg.Input.SkipRows)
	if err != nil {
		return summary, err
	}
	defer src.Close()

	d.log.Info().Str("input", input.Path).Str("mode", string(input.Mode)).Msg("Starting batch")

	runErr := d.loop(ctx, src, &summary)

	summary.SessionOpened = d.agent.Opened()
	if err := d.agent.Close(); err != nil {
		d.log.Warn().Err(err).Msg("Failed to close browser session")
	}
	summary.Invalid = src.Invalid()
	summary.Total += summary.Invalid

	d.logSummary(summary)
	return summary, runErr
}

func (d *Driver) loop(ctx context.Context, src *excel.Source, summary *model.Summary) error {
	for {
		if err := ctx.Err(); err != nil {
			d.log.Warn().Err(err).Msg("Batch interrupted")
			return err
		}

		row, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		summary.Total++
		var status model.RowStatus
		switch r := row.(type) {
		case model.DownloadRow:
			status = d.processDownload(ctx, r, summary)
		case model.BarcodeRow:
			status = d.processBarcode(ctx, r, summary)
		default:
			return fmt.Errorf("unexpected row type %T", row)
		}

		switch {
		case status == model.RowStatusSkipped:
			summary.Skipped++
		case status.IsFailure():
			summary.Failed++
		}
	}
}

func (d *Driver) processDownload(ctx context.Context, row model.DownloadRow, summary *model.Summary) model.RowStatus {
	key := gate.DownloadKey(row)
	log := d.log.With().
		Int("row", row.Index).
		Str("id", row.ID).
		Str("name", row.Name).
		Str("event", row.Event).
		Str("key", key).
		Logger()
	log.Info().Msg("Processing row")

	status := model.RowStatusSkipped

	needsFetch, err := d.gate.NeedsFetch(ctx, key)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check image")
		return model.RowStatusFetchFailed
	}

	if needsFetch {
		imagePath := d.gate.ImagePath(key)
		if err := d.agent.Fetch(ctx, row.URL, imagePath); err != nil {
			log.Error().Err(err).Str("url", row.URL).Msg("Download failed")
			return model.RowStatusFetchFailed
		}
		summary.Fetched++
		status = model.RowStatusFetched
		log.Info().Str("path", imagePath).Msg("Image saved")
		d.announce(ctx, model.ArtifactImage, key, imagePath, nil)
	}

	needsPDF, err := d.gate.NeedsPDF(ctx, key)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check pdf")
		return model.RowStatusRenderFailed
	}
	if !needsPDF {
		if status == model.RowStatusSkipped {
			log.Info().Msg("Skipping: image and pdf already exist")
		}
		return status
	}

	pdfPath, err := d.renderPDF(ctx, key, row.Participants)
	if err != nil {
		log.Error().Err(err).Msg("PDF generation failed")
		return model.RowStatusRenderFailed
	}
	summary.PDFGenerated++
	log.Info().Str("path", pdfPath).Str("header", row.Participants).Msg("PDF saved")
	return model.RowStatusRendered
}

func (d *Driver) renderPDF(ctx context.Context, key, header string) (string, error) {
	rc, err := d.store.Download(ctx, d.gate.ImagePath(key))
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	img, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	data, err := d.pdf.Render(img, header)
	if err != nil {
		return "", err
	}

	pdfPath := d.gate.PDFPath(key)
	if err := d.store.Upload(ctx, pdfPath, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to save pdf: %w", err)
	}
	d.announce(ctx, model.ArtifactPDF, key, pdfPath, data)
	return pdfPath, nil
}

func (d *Driver) processBarcode(ctx context.Context, row model.BarcodeRow, summary *model.Summary) model.RowStatus {
	key := gate.BarcodeKey(row)
	log := d.log.With().
		Int("row", row.Index).
		Str("name", row.Name).
		Str("code", row.Code).
		Str("key", key).
		Logger()
	log.Info().Msg("Processing row")

	needs, err := d.gate.NeedsBarcode(ctx, key)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check barcode")
		return model.RowStatusRenderFailed
	}
	if !needs {
		log.Info().Msg("Skipping: barcode already exists")
		return model.RowStatusSkipped
	}

	// The human-readable line under the bars is the encoded code itself.
	data, err := d.barcodes.Render(row.Code, row.Code)
	if err != nil {
		log.Error().Err(err).Msg("Barcode generation failed")
		return model.RowStatusRenderFailed
	}

	path := d.gate.BarcodePath(key)
	if err := d.store.Upload(ctx, path, bytes.NewReader(data)); err != nil {
		log.Error().Err(err).Msg("Failed to save barcode")
		return model.RowStatusRenderFailed
	}
	summary.BarcodesGenerated++
	log.Info().Str("path", path).Msg("Barcode saved")
	d.announce(ctx, model.ArtifactBarcode, key, path, data)
	return model.RowStatusRendered
}

// announce mirrors and publishes a new artifact. Neither step can fail the
// row; the local file is the source of truth.
func (d *Driver) announce(ctx context.Context, kind model.ArtifactKind, key, path string, data []byte) {
	if d.mirror != nil {
		if err := d.mirrorArtifact(ctx, path, data); err != nil {
			d.log.Warn().Err(err).Str("path", path).Msg("Failed to mirror artifact")
		}
	}

	if d.events != nil {
		event := model.ArtifactEvent{
			RunID:     d.runID,
			Kind:      kind,
			Key:       key,
			Path:      path,
			CreatedAt: time.Now().UTC(),
		}
		if err := d.events.PublishArtifact(ctx, event); err != nil {
			d.log.Warn().Err(err).Str("path", path).Msg("Failed to publish artifact event")
		}
	}
}

func (d *Driver) mirrorArtifact(ctx context.Context, path string, data []byte) error {
	if data == nil {
		rc, err := d.store.Download(ctx, path)
		if err != nil {
			return err
		}
		defer rc.Close()
		return d.mirror.Upload(ctx, path, rc)
	}
	return d.mirror.Upload(ctx, path, bytes.NewReader(data))
}

func (d *Driver) logSummary(s model.Summary) {
	event := d.log.Info().
		Str("mode", string(s.Mode)).
		Int("total", s.Total).
		Int("skipped", s.Skipped).
		Int("failed", s.Failed).
		Int("invalid", s.Invalid)

	if s.Mode == model.ModeBarcode {
		event.Int("generated", s.BarcodesGenerated).
			Str("barcodes_dir", d.cfg.Output.BarcodeDir).
			Msg("Barcode generation summary")
		return
	}

	event.Int("fetched", s.Fetched).
		Int("pdf_generated", s.PDFGenerated).
		Bool("session_opened", s.SessionOpened).
		Str("images_dir", d.cfg.Output.ImageDir).
		Str("pdf_dir", d.cfg.Output.PDFDir).
		Msg("Download summary")
}
