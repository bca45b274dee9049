package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/atanko123/Scripts/internal/config"
	"github.com/atanko123/Scripts/pkg/errors"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/goregular"
)

const headerFont = "GoRegular"

// PDFRenderer lays a header line above an image on a single page sized to
// the image. The embedded TrueType font covers Latin Extended, so names
// like "Čuk Žiga" come out intact.
type PDFRenderer struct {
	fontSize float64
	header   float64
	baseline float64
}

func NewPDFRenderer(cfg config.PDFConfig) *PDFRenderer {
	return &PDFRenderer{
		fontSize: cfg.HeaderFontSize,
		header:   cfg.HeaderHeight,
		baseline: cfg.HeaderBaseline,
	}
}

// Render returns the PDF bytes. The image bytes are only read.
func (r *PDFRenderer) Render(img []byte, headerText string) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, errors.NewRenderError("pdf", fmt.Errorf("decode image: %w", err))
	}

	imageType, ok := map[string]string{"jpeg": "JPG", "png": "PNG", "gif": "GIF"}[format]
	if !ok {
		return nil, errors.NewRenderError("pdf", fmt.Errorf("%w: %s", errors.ErrUnsupportedImage, format))
	}

	width := float64(cfg.Width)
	height := float64(cfg.Height)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: width, Ht: height + r.header},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddUTF8FontFromBytes(headerFont, "", goregular.TTF)
	pdf.AddPage()

	pdf.SetFont(headerFont, "", r.fontSize)
	textWidth := pdf.GetStringWidth(headerText)
	pdf.Text((width-textWidth)/2, r.baseline, headerText)

	opts := fpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader("source", opts, bytes.NewReader(img))
	pdf.ImageOptions("source", 0, r.header, width, height, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.NewRenderError("pdf", err)
	}
	return buf.Bytes(), nil
}
