package domain

import (
	"context"
	"time"
)

// Venue represents a physical location that hosts events.
// swagger:model Venue
type Venue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewVenue returns a new Venue with the given fields. ID is set by the
// repository on create.
func NewVenue(name, address, description string, capacity int, createdAt, updatedAt time.Time) *Venue {
	return &Venue{
		Name:        name,
		Address:     address,
		Description: description,
		Capacity:    capacity,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// VenueRepository defines the interface for venue storage.
type VenueRepository interface {
	Create(ctx context.Context, venue *Venue) error
	GetByID(ctx context.Context, id string) (*Venue, error)
	List(ctx context.Context) ([]*Venue, error)
	Update(ctx context.Context, venue *Venue) error
	// Delete removes a venue. Returns ErrVenueInUse when events still
	// reference it.
	Delete(ctx context.Context, id string) error
}

// VenueService defines venue management operations.
type VenueService interface {
	Create(ctx context.Context, venue *Venue) (*Venue, error)
	GetByID(ctx context.Context, id string) (*Venue, error)
	List(ctx context.Context) ([]*Venue, error)
	Update(ctx context.Context, venue *Venue) (*Venue, error)
	Delete(ctx context.Context, id string) error
}
