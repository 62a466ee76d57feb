package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventgate/internal/domain"
)

type eventService struct {
	eventRepo       domain.EventRepository
	venueRepo       domain.VenueRepository
	participantRepo domain.ParticipantRepository
}

// NewEventService creates an EventService.
func NewEventService(
	eventRepo domain.EventRepository,
	venueRepo domain.VenueRepository,
	participantRepo domain.ParticipantRepository,
) domain.EventService {
	return &eventService{
		eventRepo:       eventRepo,
		venueRepo:       venueRepo,
		participantRepo: participantRepo,
	}
}

func validateEvent(e *domain.Event) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if e.EventDate.IsZero() || e.RSVPDeadline.IsZero() {
		return fmt.Errorf("%w: event date and RSVP deadline are required", domain.ErrInvalidInput)
	}
	if !e.RSVPDeadline.Before(e.EventDate) {
		return fmt.Errorf("%w: RSVP deadline must be before event date", domain.ErrInvalidInput)
	}
	if e.MaxAttendees <= 0 {
		return fmt.Errorf("%w: max attendees must be greater than 0", domain.ErrInvalidInput)
	}
	return nil
}

func (s *eventService) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	if _, err := s.venueRepo.GetByID(ctx, event.VenueID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: venue not found", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.CustomQuestions == nil {
		event.CustomQuestions = []string{}
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

func (s *eventService) List(ctx context.Context) ([]*domain.Event, error) {
	return s.eventRepo.List(ctx)
}

func (s *eventService) Update(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	existing, err := s.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	if event.VenueID != existing.VenueID {
		if _, err := s.venueRepo.GetByID(ctx, event.VenueID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: venue not found", domain.ErrInvalidInput)
			}
			return nil, fmt.Errorf("get venue: %w", err)
		}
	}
	event.CreatorID = existing.CreatorID
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = time.Now()
	if event.CustomQuestions == nil {
		event.CustomQuestions = []string{}
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	return s.eventRepo.Delete(ctx, id)
}

func (s *eventService) Stats(ctx context.Context, eventID string) (*domain.EventStats, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	total, err := s.participantRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	stats := &domain.EventStats{TotalParticipants: total}

	counts := []struct {
		status domain.RSVPStatus
		dest   *int
	}{
		{domain.RSVPYes, &stats.YesResponses},
		{domain.RSVPNo, &stats.NoResponses},
		{domain.RSVPMaybe, &stats.MaybeResponses},
		{domain.RSVPPending, &stats.PendingResponses},
	}
	for _, c := range counts {
		n, err := s.participantRepo.CountByRSVPStatus(ctx, eventID, c.status)
		if err != nil {
			return nil, fmt.Errorf("count %s responses: %w", c.status, err)
		}
		*c.dest = n
	}

	checkedIn, err := s.participantRepo.CountCheckedIn(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count checked in: %w", err)
	}
	stats.CheckedIn = checkedIn
	return stats, nil
}
