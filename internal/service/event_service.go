package service

import (
	"context"

	"ticketing-backend/internal/model"
	"ticketing-backend/internal/repository"

	"github.com/google/uuid"
)

type EventService interface {
	Create(ctx context.Context, organizerID int, req *model.CreateEventRequest) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	GetByID(ctx context.Context, id int) (*model.Event, error)
	Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error)
}

type EventServiceImpl struct {
	eventRepository repository.EventRepository
}

func NewEventService(eventRepository repository.EventRepository) EventService {
	return &EventServiceImpl{
		eventRepository: eventRepository,
	}
}

func (s *EventServiceImpl) Create(ctx context.Context, organizerID int, req *model.CreateEventRequest) (*model.Event, error) {
	event := &model.Event{
		EventID:     uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		VenueName:   req.VenueName,
		OrganizerID: organizerID,
		IsActive:    true,
	}
	return s.eventRepository.Create(ctx, event)
}

func (s *EventServiceImpl) List(ctx context.Context) ([]*model.Event, error) {
	return s.eventRepository.List(ctx)
}

func (s *EventServiceImpl) GetByID(ctx context.Context, id int) (*model.Event, error) {
	return s.eventRepository.FindByID(ctx, id)
}

func (s *EventServiceImpl) Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error) {
	return s.eventRepository.Update(ctx, id, params)
}
