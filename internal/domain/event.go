package domain

import (
	"context"
	"time"
)

// Event represents an admin-managed event held at a venue.
// swagger:model Event
type Event struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	EventDate       time.Time `json:"event_date"`
	RSVPDeadline    time.Time `json:"rsvp_deadline"`
	MaxAttendees    int       `json:"max_attendees"`
	VenueID         string    `json:"venue_id"`
	CreatorID       string    `json:"creator_id"`
	CustomQuestions []string  `json:"custom_questions"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is set by the
// repository on create.
func NewEvent(name, description, venueID, creatorID string, eventDate, rsvpDeadline time.Time, maxAttendees int, customQuestions []string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Name:            name,
		Description:     description,
		VenueID:         venueID,
		CreatorID:       creatorID,
		EventDate:       eventDate,
		RSVPDeadline:    rsvpDeadline,
		MaxAttendees:    maxAttendees,
		CustomQuestions: customQuestions,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

// RSVPOpen reports whether RSVPs are still accepted at the given time.
func (e *Event) RSVPOpen(now time.Time) bool {
	return !now.After(e.RSVPDeadline)
}

// EventStats summarizes participation for an event.
// swagger:model EventStats
type EventStats struct {
	TotalParticipants int `json:"total_participants"`
	YesResponses      int `json:"yes_responses"`
	NoResponses       int `json:"no_responses"`
	MaybeResponses    int `json:"maybe_responses"`
	PendingResponses  int `json:"pending_responses"`
	CheckedIn         int `json:"checked_in"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	// ListUpcomingByUserID returns upcoming events the user participates in,
	// ordered by event date.
	ListUpcomingByUserID(ctx context.Context, userID string) ([]*Event, error)
	// GetCurrent returns the latest-dated event, or ErrNotFound when no
	// events exist.
	GetCurrent(ctx context.Context) (*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
	CountByVenueID(ctx context.Context, venueID string) (int, error)
}

// EventService defines event management operations.
type EventService interface {
	Create(ctx context.Context, event *Event) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	Update(ctx context.Context, event *Event) (*Event, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, eventID string) (*EventStats, error)
}
