package excel

import (
	"github.com/atanko123/Scripts/internal/model"
)

// RowParser turns the positional cells of one sheet row into a typed row.
type RowParser interface {
	Parse(cells []string, rowNum int) (model.Row, error)
	Columns() []string
	MinColumns() int
}

func NewRowParser(mode model.Mode) RowParser {
	switch mode {
	case model.ModeBarcode:
		return &BarcodeParser{validator: NewValidator()}
	default:
		return &DownloadParser{validator: NewValidator()}
	}
}
