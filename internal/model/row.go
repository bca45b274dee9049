package model

import "fmt"

type Mode string

const (
	ModeDownload Mode = "DOWNLOAD"
	ModeBarcode  Mode = "BARCODE"
)

// Columns returns the positional column names a sheet must carry in this mode.
func (m Mode) Columns() []string {
	switch m {
	case ModeBarcode:
		return []string{"name", "code"}
	default:
		return []string{"id", "url", "participants", "name", "event", "place"}
	}
}

// MinColumns is how many leading columns must exist somewhere in the sheet.
// Columns after that may be blank in every row; blank cells read as empty.
func (m Mode) MinColumns() int {
	switch m {
	case ModeBarcode:
		return 1
	default:
		return 2
	}
}

// Row is one sheet record. Index is the 1-based sheet row number.
type Row interface {
	RowIndex() int
}

type DownloadRow struct {
	Index        int
	ID           string
	URL          string
	Participants string
	Name         string
	Event        string
	Place        string
}

func (r DownloadRow) RowIndex() int { return r.Index }

func (r DownloadRow) String() string {
	return fmt.Sprintf("row %d (id=%s name=%s event=%s)", r.Index, r.ID, r.Name, r.Event)
}

type BarcodeRow struct {
	Index int
	Name  string
	Code  string
}

func (r BarcodeRow) RowIndex() int { return r.Index }

func (r BarcodeRow) String() string {
	return fmt.Sprintf("row %d (name=%s code=%s)", r.Index, r.Name, r.Code)
}
