package excel

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/atanko123/Scripts/internal/model"
	"github.com/atanko123/Scripts/pkg/errors"
)

// DownloadParser reads id, url, participants, name, event, place. An empty
// id continues the numbering of the row above it.
type DownloadParser struct {
	validator *Validator
	lastID    string
}

func (p *DownloadParser) Columns() []string {
	return model.ModeDownload.Columns()
}

func (p *DownloadParser) MinColumns() int {
	return model.ModeDownload.MinColumns()
}

func (p *DownloadParser) Parse(cells []string, rowNum int) (model.Row, error) {
	id, err := p.resolveID(cell(cells, 0))
	if err != nil {
		return nil, err
	}
	p.lastID = id

	row := model.DownloadRow{
		Index:        rowNum,
		ID:           id,
		URL:          cell(cells, 1),
		Participants: cell(cells, 2),
		Name:         cell(cells, 3),
		Event:        cell(cells, 4),
		Place:        cell(cells, 5),
	}

	if err := p.validator.ValidateDownload(row); err != nil {
		return nil, err
	}
	return row, nil
}

func (p *DownloadParser) resolveID(raw string) (string, error) {
	if raw != "" {
		return normalizeID(raw), nil
	}
	if p.lastID == "" {
		return "1", nil
	}
	prev, err := strconv.Atoi(p.lastID)
	if err != nil {
		return "", errors.ValidationError{
			Field:   "id",
			Value:   raw,
			Message: fmt.Sprintf("empty id cannot follow non-numeric id '%s'", p.lastID),
		}
	}
	return strconv.Itoa(prev + 1), nil
}

// BarcodeParser reads name, code. The code is left for the renderer to
// reject so the failure is reported as an encoding error.
type BarcodeParser struct {
	validator *Validator
}

func (p *BarcodeParser) Columns() []string {
	return model.ModeBarcode.Columns()
}

func (p *BarcodeParser) MinColumns() int {
	return model.ModeBarcode.MinColumns()
}

func (p *BarcodeParser) Parse(cells []string, rowNum int) (model.Row, error) {
	row := model.BarcodeRow{
		Index: rowNum,
		Name:  cell(cells, 0),
		Code:  cell(cells, 1),
	}
	// Numbered from the first sheet row as 0, so reruns find files
	// named by earlier versions of the tool.
	if row.Name == "" {
		row.Name = fmt.Sprintf("barcode_%d", rowNum-1)
	}

	if err := p.validator.ValidateBarcode(row); err != nil {
		return nil, err
	}
	return row, nil
}

func cell(cells []string, idx int) string {
	if idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	return ""
}

// normalizeID turns spreadsheet numerics like "142.0" into "142".
func normalizeID(raw string) string {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return raw
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return raw
}
