package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "Helvetica"

// FontMeasurer measures text with the core Helvetica metrics used by
// WritePDF, so wrapped lines match the printed output.
type FontMeasurer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func NewFontMeasurer() *FontMeasurer {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &FontMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *FontMeasurer) Width(text string, f Font) float64 {
	m.pdf.SetFont(fontFamily, string(f.Style), f.Size)
	return m.pdf.GetStringWidth(m.tr(text))
}

// WritePDF draws doc onto A4 pages. created stamps the document metadata so
// identical input gives identical bytes.
func WritePDF(w io.Writer, doc *Document, created time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCreator("cpd-tracker", true)
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			switch op.Kind {
			case OpText:
				if op.Text == "" {
					continue
				}
				pdf.SetFont(fontFamily, string(op.Font.Style), op.Font.Size)
				pdf.SetTextColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
				pdf.SetXY(op.X, op.Y)
				pdf.CellFormat(op.W, op.H, tr(op.Text), "", 0, string(op.Align), false, 0, "")
			case OpRule:
				pdf.SetDrawColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
				pdf.SetLineWidth(op.H)
				pdf.Line(op.X, op.Y, op.X+op.W, op.Y)
			}
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
