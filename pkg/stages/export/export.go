// Package export implements the stage that encodes the composited canvas.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/draw"

	"github.com/user/layerpaint/pkg/pipeline"
	"github.com/user/layerpaint/pkg/ports"
)

// pdfImageName is the name the canvas is registered under in the PDF.
const pdfImageName = "canvas"

// Stage flattens the canvas and encodes it as PNG and optionally PDF.
type Stage struct {
	provider ports.SurfaceProvider
	logger   ports.Logger
}

// New creates an export Stage.
func New(provider ports.SurfaceProvider, logger ports.Logger) *Stage {
	return &Stage{
		provider: provider,
		logger:   logger.WithComponent("export"),
	}
}

// Execute implements pipeline.Stage.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExportInput) (pipeline.ExportResult, error) {
	result := pipeline.ExportResult{}

	if input.Image == nil {
		return result, fmt.Errorf("no image to export")
	}
	b := input.Image.Bounds()
	if b.Empty() {
		return result, fmt.Errorf("%w: image is %dx%d", ports.ErrInvalidDimension, b.Dx(), b.Dy())
	}

	img := Flatten(input.Image, input.Background)

	png, err := s.provider.EncodeImage(img)
	if err != nil {
		return result, fmt.Errorf("encode png: %w", err)
	}
	result.PNG = png
	s.logger.Debug("Encoded PNG (%d bytes)", len(png))

	if !input.PDF {
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	pdf, err := encodePDF(png, b.Dx(), b.Dy(), input.Title)
	if err != nil {
		return result, fmt.Errorf("encode pdf: %w", err)
	}
	result.PDF = pdf
	s.logger.Debug("Encoded PDF (%d bytes)", len(pdf))

	return result, nil
}

// Flatten draws img over a solid background. A nil background returns a
// copy of img anchored at the origin.
func Flatten(img image.Image, background color.Color) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if background == nil {
		draw.Draw(out, out.Rect, img, b.Min, draw.Src)
		return out
	}
	draw.Draw(out, out.Rect, image.NewUniform(background), image.Point{}, draw.Src)
	draw.Draw(out, out.Rect, img, b.Min, draw.Over)
	return out
}

// encodePDF places the PNG on a single page of the same size in points.
func encodePDF(png []byte, width, height int, title string) ([]byte, error) {
	w, h := float64(width), float64(height)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.SetCreator("layerpaint", true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(pdfImageName, opts, bytes.NewReader(png))
	pdf.ImageOptions(pdfImageName, 0, 0, w, h, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult] = (*Stage)(nil)
