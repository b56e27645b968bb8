package delivery

import (
	"bytes"
	"fmt"
	"time"

	"ticketing-backend/internal/model"

	"github.com/go-pdf/fpdf"
)

// TicketView 渲染票券所需的讀取視圖（票券 + 活動 + 客戶）
type TicketView struct {
	Ticket          *model.Ticket
	EventName       string
	VenueName       string
	PerformanceDate time.Time
	CustomerName    string
}

type Renderer interface {
	RenderTicket(view *TicketView) ([]byte, error)
}

type PDFRenderer struct{}

func NewPDFRenderer() Renderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) RenderTicket(view *TicketView) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, view.EventName)
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Ticket: %s", view.Ticket.TicketNumber))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Holder: %s", view.CustomerName))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", view.PerformanceDate.Format("2006-01-02 15:04")))
	pdf.Ln(8)
	if view.VenueName != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Venue: %s", view.VenueName))
		pdf.Ln(8)
	}
	if ref := view.Ticket.SeatRef(); !ref.IsZero() {
		pdf.Cell(0, 8, fmt.Sprintf("Seat: %s", ref.Key()))
		pdf.Ln(8)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Category: %s", view.Ticket.Category))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Price: %s", view.Ticket.Price.StringFixed(2)))
	pdf.Ln(12)

	pdf.SetFont("Courier", "", 9)
	pdf.Cell(0, 6, view.Ticket.Barcode)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket pdf: %w", err)
	}

	return buf.Bytes(), nil
}
