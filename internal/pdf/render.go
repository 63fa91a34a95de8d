package pdf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"office-translator/internal/logger"
	"office-translator/internal/types"
)

const fontFamily = "Helvetica"

// FontMetrics measures strings with the same core font the renderer
// draws with, so layout decisions match the rendered output exactly.
type FontMetrics struct {
	doc *gofpdf.Fpdf
}

// NewFontMetrics returns metrics for the rendering font at geo.FontSize.
func NewFontMetrics(geo Geometry) *FontMetrics {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetFont(fontFamily, "", geo.FontSize)
	return &FontMetrics{doc: doc}
}

// TextWidth reports the rendered width of s in points. Runes outside the
// font's single-byte code page cannot be measured and yield an error;
// sanitized text never contains any.
func (m *FontMetrics) TextWidth(s string) (float64, error) {
	for _, r := range s {
		if r < 0x20 || r > 0xFF {
			return 0, fmt.Errorf("unmeasurable rune %q", r)
		}
	}
	return m.doc.GetStringWidth(s), nil
}

// Render draws layout ops into a fresh PDF document. Pages are created
// in op order; y positions are converted from the layout's bottom-origin
// coordinates to the drawing origin at the page top.
func Render(ops []TextOp, geo Geometry) ([]byte, error) {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetFont(fontFamily, "", geo.FontSize)
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(geo.Margin, geo.Margin, geo.Margin)

	current := -1
	for _, op := range ops {
		for current < op.Page {
			doc.AddPage()
			current++
		}
		doc.Text(op.X, geo.PageHeight-op.Y, op.Text)
	}
	if current < 0 {
		doc.AddPage()
	}

	if doc.Err() {
		return nil, types.NewAppError(types.ErrGeneration, "pdf drawing failed", doc.Error())
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, types.NewAppError(types.ErrGeneration, "failed to write pdf output", err)
	}
	return buf.Bytes(), nil
}

// Generate lays out translated text, renders it and validates the result.
// Returns the document bytes with its page count.
func Generate(text string, geo Geometry) ([]byte, int, error) {
	ops := Layout(text, NewFontMetrics(geo), geo)

	out, err := Render(ops, geo)
	if err != nil {
		return nil, 0, err
	}

	pages, err := Validate(out)
	if err != nil {
		return nil, 0, err
	}

	logger.Info("generated pdf document",
		logger.Int("pages", pages),
		logger.Int("textOps", len(ops)),
		logger.Int("bytes", len(out)))
	return out, pages, nil
}

// Validate runs a structural check over a produced document and returns
// its page count. The validator works on files, so the bytes take a
// round trip through a temp file.
func Validate(data []byte) (int, error) {
	tmp, err := os.CreateTemp("", "office-translator-*.pdf")
	if err != nil {
		return 0, types.NewAppError(types.ErrGeneration, "failed to create temp file for validation", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return 0, types.NewAppError(types.ErrGeneration, "failed to write temp file for validation", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, types.NewAppError(types.ErrGeneration, "failed to close temp file for validation", err)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ValidateFile(path, conf); err != nil {
		return 0, types.NewAppError(types.ErrGeneration, "generated pdf failed validation", err)
	}
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return 0, types.NewAppError(types.ErrGeneration, "failed to read generated pdf", err)
	}
	return ctx.PageCount, nil
}
