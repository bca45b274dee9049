package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"unicode"

	"github.com/atanko123/Scripts/internal/config"
	"github.com/atanko123/Scripts/pkg/errors"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// BarcodeRenderer draws a Code128 symbol with its label underneath on a
// white canvas.
type BarcodeRenderer struct {
	moduleWidth int
	barHeight   int
	quietZone   int
	labelOffset int
	face        font.Face
}

func NewBarcodeRenderer(cfg config.BarcodeConfig) (*BarcodeRenderer, error) {
	ttf, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse label font: %w", err)
	}
	face, err := opentype.NewFace(ttf, &opentype.FaceOptions{
		Size:    cfg.LabelFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load label font: %w", err)
	}

	return &BarcodeRenderer{
		moduleWidth: cfg.ModuleWidth,
		barHeight:   cfg.BarHeight,
		quietZone:   cfg.QuietZone,
		labelOffset: cfg.LabelOffset,
		face:        face,
	}, nil
}

// Render encodes code and returns PNG bytes. Invalid codes are
// EncodingErrors; drawing failures are RenderErrors.
func (r *BarcodeRenderer) Render(code, label string) ([]byte, error) {
	if code == "" {
		return nil, errors.NewEncodingError(code, errors.ErrEmptyCode)
	}
	for _, c := range code {
		if c > unicode.MaxASCII {
			return nil, errors.NewEncodingError(code, fmt.Errorf("character %q is outside the Code128 set", c))
		}
	}

	symbol, err := code128.Encode(code)
	if err != nil {
		return nil, errors.NewEncodingError(code, err)
	}

	barWidth := symbol.Bounds().Dx() * r.moduleWidth
	bars, err := barcode.Scale(symbol, barWidth, r.barHeight)
	if err != nil {
		return nil, errors.NewRenderError(label, err)
	}

	metrics := r.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	labelHeight := ascent + metrics.Descent.Ceil()
	labelWidth := font.MeasureString(r.face, label).Ceil()

	width := max(barWidth, labelWidth) + 2*r.quietZone
	height := r.quietZone + r.barHeight + r.labelOffset + labelHeight + r.quietZone

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	barOrigin := image.Pt((width-barWidth)/2, r.quietZone)
	draw.Draw(canvas, image.Rectangle{Min: barOrigin, Max: barOrigin.Add(bars.Bounds().Size())}, bars, bars.Bounds().Min, draw.Src)

	drawer := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: r.face,
		Dot:  fixed.P((width-labelWidth)/2, r.quietZone+r.barHeight+r.labelOffset+ascent),
	}
	drawer.DrawString(label)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, errors.NewRenderError(label, err)
	}
	return buf.Bytes(), nil
}
