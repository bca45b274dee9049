package excel

import (
	"github.com/atanko123/Scripts/internal/model"
	"github.com/atanko123/Scripts/pkg/errors"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateDownload(row model.DownloadRow) error {
	if row.URL == "" {
		return errors.ValidationError{
			Field:   "url",
			Value:   row.URL,
			Message: "url is required",
		}
	}
	return nil
}

func (v *Validator) ValidateBarcode(row model.BarcodeRow) error {
	if row.Name == "" {
		return errors.ValidationError{
			Field:   "name",
			Value:   row.Name,
			Message: "name cannot be empty",
		}
	}
	return nil
}
