package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Browser BrowserConfig `yaml:"browser"`
	PDF     PDFConfig     `yaml:"pdf"`
	Barcode BarcodeConfig `yaml:"barcode"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Logging LoggingConfig `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type InputConfig struct {
	DefaultFile string `yaml:"default_file"`
	BarcodeFile string `yaml:"barcode_file"`
	SkipRows    int    `yaml:"skip_rows"`
}

type OutputConfig struct {
	Root       string `yaml:"root"`
	ImageDir   string `yaml:"image_dir"`
	PDFDir     string `yaml:"pdf_dir"`
	BarcodeDir string `yaml:"barcode_dir"`
}

type BrowserConfig struct {
	Bin               string        `yaml:"bin"`
	Headless          bool          `yaml:"headless"`
	LoginURL          string        `yaml:"login_url"`
	LoginPrompt       bool          `yaml:"login_prompt"`
	UserDataDir       string        `yaml:"user_data_dir"`
	DownloadDir       string        `yaml:"download_dir"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	ConfirmTimeout    time.Duration `yaml:"confirm_timeout"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`
}

type PDFConfig struct {
	HeaderFontSize float64 `yaml:"header_font_size"`
	HeaderHeight   float64 `yaml:"header_height"`
	HeaderBaseline float64 `yaml:"header_baseline"`
}

type BarcodeConfig struct {
	ModuleWidth   int     `yaml:"module_width"`
	BarHeight     int     `yaml:"bar_height"`
	QuietZone     int     `yaml:"quiet_zone"`
	LabelFontSize float64 `yaml:"label_font_size"`
	LabelOffset   int     `yaml:"label_offset"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type RedisConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	ArtifactQueue string `yaml:"artifact_queue"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "drive-batch",
			Version: "1.0.0",
		},
		Input: InputConfig{
			DefaultFile: "links.xlsx",
			BarcodeFile: "Barcodes.xlsx",
		},
		Output: OutputConfig{
			Root:       ".",
			ImageDir:   "downloaded_images",
			PDFDir:     "pdf_images",
			BarcodeDir: "barcodes",
		},
		Browser: BrowserConfig{
			LoginURL:          "https://accounts.google.com/",
			LoginPrompt:       true,
			NavigationTimeout: 60 * time.Second,
			ConfirmTimeout:    10 * time.Second,
			FetchTimeout:      2 * time.Minute,
		},
		PDF: PDFConfig{
			HeaderFontSize: 48,
			HeaderHeight:   108,
			HeaderBaseline: 80,
		},
		Barcode: BarcodeConfig{
			ModuleWidth:   2,
			BarHeight:     100,
			QuietZone:     20,
			LabelFontSize: 16,
			LabelOffset:   8,
		},
		Redis: RedisConfig{
			Host:          "localhost",
			Port:          6379,
			ArtifactQueue: "drive-batch:artifacts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads CONFIG_PATH (or config.yaml) over the defaults. A missing
// file is not an error; the tool runs with defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	return LoadFile(configPath)
}

func LoadFile(configPath string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Input.SkipRows < 0 {
		return fmt.Errorf("input.skip_rows must not be negative")
	}
	if c.Output.ImageDir == "" || c.Output.PDFDir == "" || c.Output.BarcodeDir == "" {
		return fmt.Errorf("output directories must not be empty")
	}
	if c.Browser.FetchTimeout <= 0 || c.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser timeouts must be positive")
	}
	if c.PDF.HeaderFontSize <= 0 || c.PDF.HeaderHeight <= 0 {
		return fmt.Errorf("pdf header sizes must be positive")
	}
	if c.Barcode.ModuleWidth <= 0 || c.Barcode.BarHeight <= 0 || c.Barcode.LabelFontSize <= 0 {
		return fmt.Errorf("barcode sizes must be positive")
	}
	if c.Storage.S3.Enabled && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("storage.s3.bucket is required when s3 is enabled")
	}
	return nil
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
