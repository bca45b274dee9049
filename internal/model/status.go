package model

import "time"

type RowStatus string

const (
	RowStatusPending      RowStatus = "PENDING"
	RowStatusSkipped      RowStatus = "SKIPPED"
	RowStatusFetched      RowStatus = "FETCHED"
	RowStatusRendered     RowStatus = "RENDERED"
	RowStatusFetchFailed  RowStatus = "FETCH_FAILED"
	RowStatusRenderFailed RowStatus = "RENDER_FAILED"
	RowStatusInvalid      RowStatus = "INVALID"
)

// IsFailure reports whether the row ended in one of the failed states.
func (s RowStatus) IsFailure() bool {
	return s == RowStatusFetchFailed || s == RowStatusRenderFailed
}

type Summary struct {
	Mode              Mode `json:"mode"`
	Total             int  `json:"total"`
	Fetched           int  `json:"fetched"`
	Skipped           int  `json:"skipped"`
	PDFGenerated      int  `json:"pdf_generated"`
	BarcodesGenerated int  `json:"barcodes_generated"`
	Failed            int  `json:"failed"`
	Invalid           int  `json:"invalid"`
	SessionOpened     bool `json:"session_opened"`
}

type ArtifactKind string

const (
	ArtifactImage   ArtifactKind = "image"
	ArtifactPDF     ArtifactKind = "pdf"
	ArtifactBarcode ArtifactKind = "barcode"
)

type ArtifactEvent struct {
	RunID     string       `json:"run_id"`
	Kind      ArtifactKind `json:"kind"`
	Key       string       `json:"key"`
	Path      string       `json:"path"`
	CreatedAt time.Time    `json:"created_at"`
}
