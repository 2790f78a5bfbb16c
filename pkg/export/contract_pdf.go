package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/edunexia/portal-api/internal/models"
)

// ContractPDF renders an educational contract into a printable document.
// Rendering happens on demand; nothing is written to disk.
type ContractPDF struct{}

// NewContractPDF constructs the renderer.
func NewContractPDF() *ContractPDF {
	return &ContractPDF{}
}

// Render produces the PDF bytes for a contract.
func (e *ContractPDF) Render(detail *models.ContractDetail) ([]byte, error) {
	if detail == nil {
		return nil, fmt.Errorf("contract detail is nil")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("Contrato Educacional"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Contrato nº %s", detail.Number)), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Aluno", detail.StudentName},
		{"Curso", fmt.Sprintf("%s (%s)", detail.CourseName, detail.CourseCode)},
		{"Tipo", string(detail.Type)},
		{"Situação", string(detail.Status)},
		{"Polo", detail.Campus},
		{"Valor total", fmt.Sprintf("R$ %.2f", detail.TotalValue)},
		{"Parcelas", fmt.Sprintf("%d x R$ %.2f", detail.Installments, detail.InstallmentValue)},
		{"Desconto", fmt.Sprintf("%.1f%%", detail.DiscountPercent)},
		{"Forma de pagamento", detail.PaymentMethod},
		{"Vigência", fmt.Sprintf("%s a %s", detail.StartDate.Format("02/01/2006"), detail.EndDate.Format("02/01/2006"))},
	}

	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(55, 8, tr(row[0]), "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(125, 8, tr(row[1]), "1", 1, "", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render contract pdf: %w", err)
	}
	return buf.Bytes(), nil
}
