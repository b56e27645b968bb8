package model

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          int        `json:"id" db:"id"`
	EventID     uuid.UUID  `json:"event_id" db:"event_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	VenueName   *string    `json:"venue_name,omitempty" db:"venue_name"`
	OrganizerID int        `json:"organizer_id" db:"organizer_id"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

type UpdateEventParams struct {
	Name        *string
	Description *string
	VenueName   *string
	IsActive    *bool
}

type CreateEventRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	VenueName   *string `json:"venue_name"`
}
