package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/atanko123/Scripts/internal/batch"
	"github.com/atanko123/Scripts/internal/config"
	"github.com/atanko123/Scripts/internal/fetch"
	"github.com/atanko123/Scripts/internal/logger"
	"github.com/atanko123/Scripts/internal/mode"
	"github.com/atanko123/Scripts/internal/queue"
	"github.com/atanko123/Scripts/internal/render"
	"github.com/atanko123/Scripts/internal/storage"
	"github.com/atanko123/Scripts/pkg/errors"

	"github.com/spf13/cobra"
)

type options struct {
	configPath    string
	headless      bool
	noLoginPrompt bool
	logLevel      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand(os.Stdin, os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand(stdin io.Reader, stdout io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "drive-batch [input.xlsx]",
		Short: "Download Drive images listed in a spreadsheet and render PDFs or barcodes",
		Long: `drive-batch reads a spreadsheet without a header row.

If the input is named Barcodes.xlsx each row is name, code and a Code128
PNG is written per row. Any other input is read as id, url, participants,
name, event, place: the Drive file is downloaded through a logged-in
browser session and a PDF with the participants as header is rendered.

Rows whose outputs already exist are skipped, so the tool can be re-run
after a failure.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return run(cmd, opts, input, stdin, stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to config file (default $CONFIG_PATH or config.yaml)")
	flags.BoolVar(&opts.headless, "headless", false, "run the browser without a window")
	flags.BoolVar(&opts.noLoginPrompt, "no-login-prompt", false, "do not wait for a manual login before downloading")
	flags.StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	return cmd
}

func run(cmd *cobra.Command, opts *options, input string, stdin io.Reader, stdout io.Writer) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}

	logger.InitWithWriter(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	log := logger.Get()

	resolved, err := mode.Detect(input, cfg.Input)
	if err != nil {
		log.Error().Err(err).Msg("Cannot resolve input")
		return err
	}
	log.Info().
		Str("version", cfg.App.Version).
		Str("input", resolved.Path).
		Str("mode", string(resolved.Mode)).
		Msg("Starting drive-batch")

	barcodes, err := render.NewBarcodeRenderer(cfg.Barcode)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize barcode renderer")
		return err
	}

	var driverOpts []batch.Option

	if cfg.Storage.S3.Enabled {
		mirror, err := storage.NewS3Storage(cfg)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize S3 mirror")
			return errors.NewConfigError("storage.s3", err)
		}
		driverOpts = append(driverOpts, batch.WithMirror(mirror))
		log.Info().Str("bucket", cfg.Storage.S3.Bucket).Str("prefix", cfg.Storage.S3.Prefix).Msg("Mirroring artifacts to S3")
	}

	if cfg.Redis.Enabled {
		redisClient, err := queue.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr()).Msg("Redis unavailable, artifact events disabled")
		} else {
			defer redisClient.Close()
			driverOpts = append(driverOpts, batch.WithPublisher(queue.NewProducer(redisClient, cfg.Redis.ArtifactQueue)))
			log.Info().Str("queue", cfg.Redis.ArtifactQueue).Msg("Publishing artifact events")
		}
	}

	driver := batch.NewDriver(
		cfg,
		storage.NewLocalStorage(cfg.Output.Root),
		fetch.NewRodOpener(cfg.Browser, stdin, stdout),
		render.NewPDFRenderer(cfg.PDF),
		barcodes,
		driverOpts...,
	)

	if _, err := driver.Run(ctx, resolved); err != nil {
		log.Error().Err(err).Bool("fatal", errors.IsFatal(err)).Msg("Batch aborted")
		return err
	}
	return nil
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	if opts.configPath != "" {
		if err := os.Setenv("CONFIG_PATH", opts.configPath); err != nil {
			return nil, errors.NewConfigError(opts.configPath, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		path := os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "config.yaml"
		}
		return nil, errors.NewConfigError(path, err)
	}

	flags := cmd.Flags()
	if flags.Changed("headless") {
		cfg.Browser.Headless = opts.headless
	}
	if opts.noLoginPrompt {
		cfg.Browser.LoginPrompt = false
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	return cfg, nil
}
