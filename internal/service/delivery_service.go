package service

import (
	"context"
	"fmt"

	"ticketing-backend/internal/delivery"
	"ticketing-backend/internal/model"
	"ticketing-backend/internal/repository"
	"ticketing-backend/pkg/logger"

	"go.uber.org/zap"
)

type DeliveryService interface {
	// DeliverTicket 渲染 PDF 並寄出票券。購買已提交，這裡的失敗只影響寄送，不影響訂單。
	DeliverTicket(ctx context.Context, task *model.TicketDelivery) error
}

type DeliveryServiceImpl struct {
	ticketRepository repository.TicketRepository
	eventRepository  repository.EventRepository
	userRepository   repository.UserRepository
	renderer         delivery.Renderer
	sender           delivery.Sender
}

func NewDeliveryService(
	ticketRepository repository.TicketRepository,
	eventRepository repository.EventRepository,
	userRepository repository.UserRepository,
	renderer delivery.Renderer,
	sender delivery.Sender,
) DeliveryService {
	return &DeliveryServiceImpl{
		ticketRepository: ticketRepository,
		eventRepository:  eventRepository,
		userRepository:   userRepository,
		renderer:         renderer,
		sender:           sender,
	}
}

func (s *DeliveryServiceImpl) DeliverTicket(ctx context.Context, task *model.TicketDelivery) error {
	ticket, err := s.ticketRepository.FindByID(ctx, task.TicketID)
	if err != nil {
		return err
	}

	// 購買後、寄送前被取消的票不寄，也不需要重試
	if ticket.Status != model.TicketStatusPurchased {
		logger.WithComponent("worker").Info("skip delivery for non-purchased ticket",
			zap.Int("ticket_id", ticket.ID), zap.String("status", string(ticket.Status)))
		return nil
	}

	event, err := s.eventRepository.FindByID(ctx, ticket.EventID)
	if err != nil {
		return err
	}

	customer, err := s.userRepository.FindByID(ctx, ticket.CustomerID)
	if err != nil {
		return err
	}

	venueName := ""
	if event.VenueName != nil {
		venueName = *event.VenueName
	}

	view := &delivery.TicketView{
		Ticket:          ticket,
		EventName:       event.Name,
		VenueName:       venueName,
		PerformanceDate: ticket.PerformanceStart,
		CustomerName:    customer.Name,
	}

	pdf, err := s.renderer.RenderTicket(view)
	if err != nil {
		return fmt.Errorf("render ticket %s: %w", ticket.TicketNumber, err)
	}

	subject := fmt.Sprintf("Your ticket for %s", event.Name)
	body := fmt.Sprintf("Hi %s,\n\nYour ticket %s is attached.\n", customer.Name, ticket.TicketNumber)
	filename := fmt.Sprintf("ticket-%s.pdf", ticket.TicketNumber)

	if err := s.sender.Send(customer.Email, subject, body, pdf, filename); err != nil {
		return fmt.Errorf("send ticket %s: %w", ticket.TicketNumber, err)
	}

	return nil
}
