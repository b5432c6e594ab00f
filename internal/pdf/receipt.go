package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const (
	fallbackStoreName    = "Storefront"
	fallbackStoreAddress = "Digital Store"
	fallbackStorePhone   = "Customer Support"
)

type ReceiptLine struct {
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

func (l ReceiptLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Receipt struct {
	OrderID       string
	IssuedAt      time.Time
	StoreName     string
	StoreAddress  string
	StorePhone    string
	CustomerName  string
	CustomerEmail string
	Lines         []ReceiptLine
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	VAT           decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Render lays the receipt out on A4 and returns the PDF bytes.
func Render(r *Receipt) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetTitle("Receipt "+r.OrderID, true)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Arial", "I", 8)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	// store header
	doc.SetFont("Arial", "B", 18)
	doc.CellFormat(0, 10, tr(orDefault(r.StoreName, fallbackStoreName)), "", 1, "L", false, 0, "")
	doc.SetFont("Arial", "", 10)
	doc.CellFormat(0, 5, tr(orDefault(r.StoreAddress, fallbackStoreAddress)), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 5, tr(orDefault(r.StorePhone, fallbackStorePhone)), "", 1, "L", false, 0, "")
	doc.Ln(6)

	doc.SetFont("Arial", "B", 14)
	doc.CellFormat(0, 8, "RECEIPT", "", 1, "R", false, 0, "")
	doc.SetFont("Arial", "", 10)
	doc.CellFormat(0, 5, "Date: "+r.IssuedAt.Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")
	doc.CellFormat(0, 5, "Order #"+r.OrderID, "", 1, "R", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Arial", "B", 11)
	doc.CellFormat(0, 6, "Bill to", "", 1, "L", false, 0, "")
	doc.SetFont("Arial", "", 10)
	doc.CellFormat(0, 5, tr(r.CustomerName), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 5, tr(r.CustomerEmail), "", 1, "L", false, 0, "")
	doc.Ln(6)

	widths := []float64{90, 35, 25, 40}
	doc.SetFont("Arial", "B", 10)
	doc.SetFillColor(230, 230, 230)
	for i, h := range []string{"Product", "Unit Price", "Quantity", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		doc.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Arial", "", 10)
	for _, line := range r.Lines {
		doc.CellFormat(widths[0], 7, tr(line.ProductName), "1", 0, "L", false, 0, "")
		doc.CellFormat(widths[1], 7, money(line.UnitPrice), "1", 0, "R", false, 0, "")
		doc.CellFormat(widths[2], 7, fmt.Sprintf("%d", line.Quantity), "1", 0, "R", false, 0, "")
		doc.CellFormat(widths[3], 7, money(line.Total()), "1", 1, "R", false, 0, "")
	}
	doc.Ln(4)

	summary := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		doc.SetFont("Arial", style, 10)
		doc.CellFormat(widths[0]+widths[1]+widths[2], 6, label, "", 0, "R", false, 0, "")
		doc.CellFormat(widths[3], 6, value, "", 1, "R", false, 0, "")
	}
	summary("Subtotal", money(r.Subtotal), false)
	if r.Discount.IsPositive() {
		summary("Discount", "-"+money(r.Discount), false)
	}
	summary("VAT", money(r.VAT), false)
	summary("Total", money(r.Total), true)
	doc.Ln(4)

	doc.SetFont("Arial", "", 10)
	doc.CellFormat(0, 6, tr("Payment Method: "+r.PaymentMethod), "", 1, "L", false, 0, "")
	doc.Ln(8)
	doc.SetFont("Arial", "I", 11)
	doc.CellFormat(0, 6, "Thank you for your business!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
