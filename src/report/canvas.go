package report

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

// Canvas is a page surface addressed in points from the top-left corner.
// Text is placed by its baseline and images by their top edge.
type Canvas interface {
	AddPage()
	SetFont(style string, size float64)
	Text(x, y float64, s string)
	TextRight(right, y float64, s string)
	Image(name string, png []byte, x, y, w, h float64)
}

// PDFCanvas draws onto a US Letter fpdf document.
type PDFCanvas struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func NewPDFCanvas() *PDFCanvas {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetTitle("Expense Tracker Report", true)
	return &PDFCanvas{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (c *PDFCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *PDFCanvas) SetFont(style string, size float64) {
	c.pdf.SetFont("Helvetica", style, size)
}

func (c *PDFCanvas) Text(x, y float64, s string) {
	c.pdf.Text(x, y, c.tr(s))
}

func (c *PDFCanvas) TextRight(right, y float64, s string) {
	s = c.tr(s)
	c.pdf.Text(right-c.pdf.GetStringWidth(s), y, s)
}

func (c *PDFCanvas) Image(name string, png []byte, x, y, w, h float64) {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	if info := c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png)); info == nil {
		return
	}
	c.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}

// Bytes finishes the document.
func (c *PDFCanvas) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
