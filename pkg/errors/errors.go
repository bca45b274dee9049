package errors

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrMissingColumn     = errors.New("missing required column")
	ErrInvalidDriveURL   = errors.New("could not extract file id from url")
	ErrEmptyPayload      = errors.New("empty payload")
	ErrSessionClosed     = errors.New("session already closed")
	ErrEmptyCode         = errors.New("barcode code is empty")
	ErrUnsupportedImage  = errors.New("unsupported image format")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

// ConfigError means the configuration or the input file could not be resolved. Fatal.
type ConfigError struct {
	Path string
	Err  error
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("config error for '%s': %s", e.Path, e.Err.Error())
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// InputFormatError means the sheet is unreadable or lacks a column. Fatal.
type InputFormatError struct {
	Path    string
	Message string
	Err     error
}

func (e InputFormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("input format error in '%s': %s", e.Path, e.Message)
	}
	return fmt.Sprintf("input format error in '%s': %s - %s", e.Path, e.Message, e.Err.Error())
}

func (e InputFormatError) Unwrap() error {
	return e.Err
}

type FetchError struct {
	URL string
	Err error
}

func (e FetchError) Error() string {
	return fmt.Sprintf("fetch failed for '%s': %s", e.URL, e.Err.Error())
}

func (e FetchError) Unwrap() error {
	return e.Err
}

type EncodingError struct {
	Code string
	Err  error
}

func (e EncodingError) Error() string {
	return fmt.Sprintf("cannot encode '%s': %s", e.Code, e.Err.Error())
}

func (e EncodingError) Unwrap() error {
	return e.Err
}

type RenderError struct {
	Target string
	Err    error
}

func (e RenderError) Error() string {
	return fmt.Sprintf("render failed for '%s': %s", e.Target, e.Err.Error())
}

func (e RenderError) Unwrap() error {
	return e.Err
}

func NewConfigError(path string, err error) error {
	return ConfigError{Path: path, Err: err}
}

func NewInputFormatError(path, message string, err error) error {
	return InputFormatError{Path: path, Message: message, Err: err}
}

func NewFetchError(url string, err error) error {
	return FetchError{URL: url, Err: err}
}

func NewEncodingError(code string, err error) error {
	return EncodingError{Code: code, Err: err}
}

func NewRenderError(target string, err error) error {
	return RenderError{Target: target, Err: err}
}

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	var cfgErr ConfigError
	var fmtErr InputFormatError
	return errors.As(err, &cfgErr) || errors.As(err, &fmtErr)
}
