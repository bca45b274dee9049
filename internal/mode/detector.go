// Package mode resolves which batch the input file drives.
package mode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atanko123/Scripts/internal/config"
	"github.com/atanko123/Scripts/internal/model"
	"github.com/atanko123/Scripts/pkg/errors"
)

type Resolved struct {
	Path string
	Mode model.Mode
}

// Detect picks the input file (arg, else the configured default) and its
// mode. The barcode layout is selected by the configured literal file name.
func Detect(arg string, cfg config.InputConfig) (Resolved, error) {
	path := strings.TrimSpace(arg)
	if path == "" {
		path = cfg.DefaultFile
	}
	if path == "" {
		return Resolved{}, errors.NewConfigError(path, fmt.Errorf("no input file given and no default configured"))
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Resolved{}, errors.NewConfigError(path, errors.ErrFileNotFound)
		}
		return Resolved{}, errors.NewConfigError(path, err)
	}
	if info.IsDir() {
		return Resolved{}, errors.NewConfigError(path, fmt.Errorf("input is a directory"))
	}

	m := model.ModeDownload
	if cfg.BarcodeFile != "" && strings.EqualFold(filepath.Base(path), cfg.BarcodeFile) {
		m = model.ModeBarcode
	}

	return Resolved{Path: path, Mode: m}, nil
}
