package model

// TicketDelivery 購買提交後的票券寄送任務：交易外、盡力而為，由 worker 消費
type TicketDelivery struct {
	TicketID       int    `json:"ticket_id"`
	OrderID        int    `json:"order_id"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
}
