package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// LetterDocument carries the fields rendered into a signed letter PDF.
type LetterDocument struct {
	Letterhead        string
	LetterNumber      string
	LetterTypeName    string
	Recipient         string
	Subject           string
	Content           string
	LetterDate        time.Time
	SecretaryName     string
	SecretarySignedAt *time.Time
	ChairmanName      string
	ChairmanSignedAt  *time.Time
	QRCode            string
}

// LetterPDFRenderer renders outgoing letters into A4 documents.
type LetterPDFRenderer struct{}

// NewLetterPDFRenderer constructs a renderer.
func NewLetterPDFRenderer() *LetterPDFRenderer {
	return &LetterPDFRenderer{}
}

// Render produces the PDF bytes for a letter.
func (r *LetterPDFRenderer) Render(doc LetterDocument) ([]byte, error) {
	if doc.LetterNumber == "" {
		return nil, fmt.Errorf("pdf requires a letter number")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	if doc.Letterhead != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 8, strings.ToUpper(doc.Letterhead), "", 1, "C", false, 0, "")
		pdf.SetDrawColor(0, 0, 0)
		pdf.Line(20, pdf.GetY()+2, 190, pdf.GetY()+2)
		pdf.Ln(8)
	}

	pdf.SetFont("Arial", "B", 12)
	title := doc.LetterTypeName
	if title == "" {
		title = "SURAT"
	}
	pdf.CellFormat(0, 7, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Nomor: %s", doc.LetterNumber), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.CellFormat(0, 6, fmt.Sprintf("Tanggal: %s", doc.LetterDate.Format("02-01-2006")), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Kepada: %s", doc.Recipient), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Perihal: %s", doc.Subject), "", 1, "", false, 0, "")
	pdf.Ln(4)

	pdf.MultiCell(0, 6, doc.Content, "", "", false)
	pdf.Ln(10)

	r.signatureBlock(pdf, "Sekretaris", doc.SecretaryName, doc.SecretarySignedAt)
	r.signatureBlock(pdf, "Ketua", doc.ChairmanName, doc.ChairmanSignedAt)

	if doc.QRCode != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "I", 8)
		pdf.MultiCell(0, 4, fmt.Sprintf("Dokumen ini dapat diverifikasi melalui kode: %s", doc.QRCode), "", "", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render letter pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *LetterPDFRenderer) signatureBlock(pdf *gofpdf.Fpdf, role, name string, signedAt *time.Time) {
	if name == "" {
		return
	}
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, role+",", "", 1, "R", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Arial", "BU", 10)
	pdf.CellFormat(0, 5, name, "", 1, "R", false, 0, "")
	if signedAt != nil {
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 4, signedAt.Format("02-01-2006 15:04"), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}
