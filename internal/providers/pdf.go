package providers

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
)

// PDFRenderer lays a letter out on US Letter pages with the core Helvetica
// and Times fonts, so no font files are needed at runtime.
type PDFRenderer struct {
	Creator string
}

// NewPDFRenderer creates a PDF renderer
func NewPDFRenderer(creator string) *PDFRenderer {
	return &PDFRenderer{Creator: creator}
}

// Render implements delivery.Renderer
func (r *PDFRenderer) Render(a *artifact.Artifact, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(tr(a.Title), false)
	pdf.SetCreator(r.Creator, false)
	pdf.SetCreationDate(a.CreatedAt)
	pdf.SetMargins(25, 25, 25)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(a.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, a.CreatedAt.Format("January 2, 2006"), "", 1, "L", false, 0, "")
	if name := a.Field("recipientName"); name != "" {
		pdf.CellFormat(0, 5, tr("To: "+name), "", 1, "L", false, 0, "")
	}
	if addr := a.Field("recipientAddress"); addr != "" {
		pdf.MultiCell(0, 5, tr(addr), "", "L", false)
	}
	pdf.Ln(8)

	pdf.SetFont("Times", "", 12)
	pdf.MultiCell(0, 6, tr(a.Content), "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf for %s: %w", a.ID, err)
	}
	return nil
}
