package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"eventgate/internal/domain"
)

// defaultEventDuration is used for the VEVENT end when events carry only a
// start date.
const defaultEventDuration = 2 * time.Hour

type calendarService struct {
	eventRepo domain.EventRepository
	venueRepo domain.VenueRepository
	baseURL   string
}

// NewCalendarService creates a CalendarService.
func NewCalendarService(eventRepo domain.EventRepository, venueRepo domain.VenueRepository, baseURL string) domain.CalendarService {
	return &calendarService{eventRepo: eventRepo, venueRepo: venueRepo, baseURL: baseURL}
}

func (s *calendarService) EventICS(ctx context.Context, eventID string) (string, []byte, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return "", nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	if err := s.addEvent(ctx, cal, event); err != nil {
		return "", nil, err
	}
	return parameterize(event.Name) + ".ics", []byte(cal.Serialize()), nil
}

func (s *calendarService) UserEventsICS(ctx context.Context, userID string) (string, []byte, error) {
	events, err := s.eventRepo.ListUpcomingByUserID(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("list events: %w", err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	for _, event := range events {
		if err := s.addEvent(ctx, cal, event); err != nil {
			return "", nil, err
		}
	}
	filename := fmt.Sprintf("my-events-%s.ics", time.Now().Format("20060102"))
	return filename, []byte(cal.Serialize()), nil
}

func (s *calendarService) addEvent(ctx context.Context, cal *ics.Calendar, event *domain.Event) error {
	entry := cal.AddEvent(event.ID)
	entry.SetDtStampTime(time.Now())
	entry.SetStartAt(event.EventDate)
	entry.SetEndAt(event.EventDate.Add(defaultEventDuration))
	entry.SetSummary(event.Name)
	if event.Description != "" {
		entry.SetDescription(event.Description)
	}
	if s.baseURL != "" {
		entry.SetURL(s.baseURL + "/events/" + event.ID)
	}

	venue, err := s.venueRepo.GetByID(ctx, event.VenueID)
	if err == nil {
		location := venue.Address
		if location == "" {
			location = venue.Name
		}
		entry.SetLocation(location)
	}
	return nil
}

// parameterize turns an event name into a URL-safe filename fragment.
func parameterize(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
