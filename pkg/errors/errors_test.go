package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(NewConfigError("July.xlsx", ErrFileNotFound)))
	assert.True(t, IsFatal(fmt.Errorf("open: %w", NewInputFormatError("July.xlsx", "no sheets", nil))))

	assert.False(t, IsFatal(NewFetchError("https://drive.google.com/file/d/x/view", ErrEmptyPayload)))
	assert.False(t, IsFatal(NewEncodingError("", ErrEmptyCode)))
	assert.False(t, IsFatal(NewRenderError("pdf_images/a.pdf", ErrUnsupportedImage)))
	assert.False(t, IsFatal(nil))
}

func TestUnwrap(t *testing.T) {
	err := fmt.Errorf("row 3: %w", NewEncodingError("", ErrEmptyCode))
	assert.True(t, errors.Is(err, ErrEmptyCode))

	var encErr EncodingError
	assert.True(t, errors.As(err, &encErr))
	assert.Equal(t, "", encErr.Code)
}

func TestInputFormatErrorMessage(t *testing.T) {
	err := NewInputFormatError("Barcodes.xlsx", "missing required column: code", nil)
	assert.Equal(t, "input format error in 'Barcodes.xlsx': missing required column: code", err.Error())

	wrapped := NewInputFormatError("a.xlsx", "failed to open workbook", ErrInvalidFileFormat)
	assert.Contains(t, wrapped.Error(), "invalid file format")
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidationError{Field: "url", Value: "", Message: "url is required"}
	assert.Equal(t, "validation failed for field 'url' with value '': url is required", err.Error())
	assert.False(t, IsFatal(err))
}
