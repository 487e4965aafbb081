package infra

// pdf.go — purchase order PDF generation using go-pdf/fpdf. A4 portrait:
// supplier header, order metadata, item table, bold total. The file is
// written to storagePath/po_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kantman01/ai-stock-management-sub000/internal/model"

	"github.com/go-pdf/fpdf"
)

// GeneratePurchaseOrderPDF renders a supplier order as a PDF document and
// returns the path to the generated file.
func GeneratePurchaseOrderPDF(order *model.SupplierOrder, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("po_%s.pdf", order.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Purchase Order", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Order %s", order.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, order.CreatedAt.Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	if order.Supplier != nil {
		pdf.CellFormat(contentW, 5, "Supplier: "+order.Supplier.Name, "", 1, "L", false, 0, "")
	}
	if order.AutoGenerated {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(contentW, 5, "Generated automatically by the replenishment system", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Item table ───────────────────────────────────────────────────────────
	col1 := contentW * 0.50 // product
	col2 := contentW * 0.14 // qty
	col3 := contentW * 0.18 // unit price
	col4 := contentW * 0.18 // line total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 7, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 7, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "Line total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range order.Items {
		name := item.ProductID.String()
		if item.Product != nil {
			name = item.Product.Name
		}
		if len(name) > 48 {
			name = name[:47] + "…"
		}
		pdf.CellFormat(col1, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, "$"+item.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+item.LineTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1+col2+col3, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 8, "$"+order.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	if order.Note != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 5, "Note: "+order.Note, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
