package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventgate/internal/domain"
)

type venueService struct {
	venueRepo domain.VenueRepository
	eventRepo domain.EventRepository
}

// NewVenueService creates a VenueService.
func NewVenueService(venueRepo domain.VenueRepository, eventRepo domain.EventRepository) domain.VenueService {
	return &venueService{venueRepo: venueRepo, eventRepo: eventRepo}
}

func validateVenue(v *domain.Venue) error {
	if strings.TrimSpace(v.Name) == "" || strings.TrimSpace(v.Address) == "" {
		return fmt.Errorf("%w: name and address are required", domain.ErrInvalidInput)
	}
	if v.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be greater than 0", domain.ErrInvalidInput)
	}
	return nil
}

func (s *venueService) Create(ctx context.Context, venue *domain.Venue) (*domain.Venue, error) {
	if err := validateVenue(venue); err != nil {
		return nil, err
	}
	now := time.Now()
	venue.CreatedAt = now
	venue.UpdatedAt = now
	if err := s.venueRepo.Create(ctx, venue); err != nil {
		return nil, fmt.Errorf("create venue: %w", err)
	}
	return venue, nil
}

func (s *venueService) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	return s.venueRepo.GetByID(ctx, id)
}

func (s *venueService) List(ctx context.Context) ([]*domain.Venue, error) {
	return s.venueRepo.List(ctx)
}

func (s *venueService) Update(ctx context.Context, venue *domain.Venue) (*domain.Venue, error) {
	existing, err := s.venueRepo.GetByID(ctx, venue.ID)
	if err != nil {
		return nil, err
	}
	if err := validateVenue(venue); err != nil {
		return nil, err
	}
	venue.CreatedAt = existing.CreatedAt
	venue.UpdatedAt = time.Now()
	if err := s.venueRepo.Update(ctx, venue); err != nil {
		return nil, fmt.Errorf("update venue: %w", err)
	}
	return venue, nil
}

func (s *venueService) Delete(ctx context.Context, id string) error {
	// A quick pre-check for a friendlier error; the RESTRICT foreign key is
	// the real guard.
	count, err := s.eventRepo.CountByVenueID(ctx, id)
	if err != nil {
		return fmt.Errorf("count venue events: %w", err)
	}
	if count > 0 {
		return domain.ErrVenueInUse
	}
	return s.venueRepo.Delete(ctx, id)
}
