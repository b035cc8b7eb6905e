package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth    = 190.0
	brandName    = "PRAVAH"
	brandTagline = "The Flow of Change"
)

// PDFExporter renders datasets into branded A4 documents.
type PDFExporter struct {
	now func() time.Time
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{now: time.Now}
}

// Render creates a PDF document with a header, summary fields and a table body.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf, tr := e.newDocument(data.Title)

	if len(data.Summary) > 0 {
		e.summary(pdf, tr, data.Summary)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(5, 150, 105)
	pdf.SetTextColor(255, 255, 255)
	colWidth := pageWidth / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(40, 40, 40)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, tr(truncate(row[header], 60)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}

// IDCard describes a student identity card.
type IDCard struct {
	StudentID  string
	Name       string
	ClassLevel string
	CenterName string
	Contact    string
	QRPNG      []byte
}

// RenderIDCard draws a card-sized identity card centred on an A4 page.
func (e *PDFExporter) RenderIDCard(card IDCard) ([]byte, error) {
	if card.StudentID == "" {
		return nil, fmt.Errorf("id card requires a student id")
	}
	pdf, tr := e.newDocument("Student Identity Card")

	const cardX, cardY, cardW, cardH = 55.0, 60.0, 100.0, 140.0
	pdf.SetDrawColor(200, 200, 200)
	pdf.Rect(cardX, cardY, cardW, cardH, "D")
	pdf.SetFillColor(5, 150, 105)
	pdf.Rect(cardX, cardY, cardW, 20, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.SetXY(cardX, cardY+6)
	pdf.CellFormat(cardW, 8, brandName, "", 0, "C", false, 0, "")

	pdf.SetTextColor(40, 40, 40)
	pdf.SetFont("Arial", "B", 13)
	pdf.SetXY(cardX, cardY+28)
	pdf.CellFormat(cardW, 8, tr(card.Name), "", 2, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{"Class: " + card.ClassLevel, card.CenterName, card.Contact} {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pdf.SetX(cardX)
		pdf.CellFormat(cardW, 6, tr(line), "", 2, "C", false, 0, "")
	}

	if len(card.QRPNG) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(card.QRPNG))
		pdf.ImageOptions("qr", cardX+25, cardY+70, 50, 50, false, opts, 0, "")
	}
	pdf.SetFont("Courier", "B", 11)
	pdf.SetXY(cardX, cardY+cardH-14)
	pdf.CellFormat(cardW, 8, "ID: "+tr(card.StudentID), "", 0, "C", false, 0, "")

	return output(pdf)
}

func (e *PDFExporter) newDocument(title string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	generated := e.now().Format("02 Jan 2006 15:04")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, fmt.Sprintf("Generated %s  -  Page %d/{nb}", generated, pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(6, 95, 70)
	pdf.CellFormat(0, 9, brandName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, brandTagline, "", 1, "C", false, 0, "")
	if title != "" {
		pdf.Ln(3)
		pdf.SetFont("Arial", "B", 14)
		pdf.SetTextColor(40, 40, 40)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)
	return pdf, tr
}

func (e *PDFExporter) summary(pdf *gofpdf.Fpdf, tr func(string) string, fields []Field) {
	for _, field := range fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 6, tr(field.Label), "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(pageWidth-50, 6, tr(field.Value), "", "", false)
	}
	pdf.Ln(4)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
