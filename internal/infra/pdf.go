package infra

// Thermal-receipt-style PDF rendering with go-pdf/fpdf: header, receipt
// number and timestamp, line item table, tax breakdown, bold total. Rendered
// documents are returned as bytes for the API response and also written to
// the storage path for reprints.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Jefferson1994/AppControlBarberias/internal/model"

	"github.com/go-pdf/fpdf"
)

// ReceiptRenderer renders printable receipts for completed sales.
type ReceiptRenderer struct {
	storagePath string
}

func NewReceiptRenderer(storagePath string) *ReceiptRenderer {
	return &ReceiptRenderer{storagePath: storagePath}
}

// RenderReceipt produces the PDF for a sale and archives a copy on disk.
func (r *ReceiptRenderer) RenderReceipt(sale *model.Sale, business *model.Business) ([]byte, error) {
	// 74mm × 105mm, close to thermal receipt paper.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, business.Name, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	title := "Sales Receipt"
	if sale.ReceiptKind == model.ReceiptFormalInvoice {
		title = "Invoice"
	}
	pdf.CellFormat(contentW, 5, title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, sale.ReceiptNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.IssuedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, line := range sale.Lines {
		name := line.ItemName
		if len(name) > 22 {
			name = name[:21] + "…"
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+line.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 5, "Subtotal:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, "$"+sale.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	if !sale.Tax.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Tax:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+sale.Tax.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+sale.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}

	if err := r.archive(sale, buf.Bytes()); err != nil {
		// The caller already has the bytes; a failed archive is not fatal.
		return buf.Bytes(), nil
	}
	return buf.Bytes(), nil
}

func (r *ReceiptRenderer) archive(sale *model.Sale, document []byte) error {
	if r.storagePath == "" {
		return nil
	}
	if err := os.MkdirAll(r.storagePath, 0755); err != nil {
		return err
	}
	fileName := fmt.Sprintf("receipt_%s.pdf", sale.ReceiptNumber)
	return os.WriteFile(filepath.Join(r.storagePath, fileName), document, 0644)
}
