package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"eventgate/internal/domain"
)

func TestCalendarService_EventICS(t *testing.T) {
	event := &domain.Event{
		ID:          "e1",
		Name:        "Launch Party 2026!",
		Description: "Annual product launch",
		VenueID:     "v1",
		EventDate:   time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC),
	}
	eventRepo := &mockEventRepo{events: map[string]*domain.Event{"e1": event}}
	venueRepo := &mockVenueRepo{venues: map[string]*domain.Venue{
		"v1": {ID: "v1", Name: "Main Hall", Address: "1 Convention Way"},
	}}
	svc := NewCalendarService(eventRepo, venueRepo, "https://example.com")

	filename, data, err := svc.EventICS(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filename != "launch-party-2026.ics" {
		t.Errorf("unexpected filename %q", filename)
	}
	ics := string(data)
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"SUMMARY:Launch Party 2026!",
		"DESCRIPTION:Annual product launch",
		"LOCATION:1 Convention Way",
		"URL:https://example.com/events/e1",
		"END:VCALENDAR",
	} {
		if !strings.Contains(ics, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestCalendarService_EventICS_NoVenue(t *testing.T) {
	event := &domain.Event{
		ID:        "e1",
		Name:      "Launch Party",
		VenueID:   "gone",
		EventDate: time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC),
	}
	eventRepo := &mockEventRepo{events: map[string]*domain.Event{"e1": event}}
	svc := NewCalendarService(eventRepo, &mockVenueRepo{}, "https://example.com")

	_, data, err := svc.EventICS(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(data), "LOCATION") {
		t.Error("missing venue must not produce a LOCATION line")
	}
}

func TestCalendarService_EventICS_NotFound(t *testing.T) {
	svc := NewCalendarService(&mockEventRepo{events: map[string]*domain.Event{}}, &mockVenueRepo{}, "")
	if _, _, err := svc.EventICS(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCalendarService_UserEventsICS(t *testing.T) {
	eventRepo := &mockEventRepo{upcoming: map[string][]*domain.Event{
		"u1": {
			{ID: "e1", Name: "Launch Party", EventDate: time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC)},
			{ID: "e2", Name: "Holiday Mixer", EventDate: time.Date(2026, 12, 10, 19, 0, 0, 0, time.UTC)},
		},
	}}
	svc := NewCalendarService(eventRepo, &mockVenueRepo{}, "https://example.com")

	filename, data, err := svc.UserEventsICS(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantName := fmt.Sprintf("my-events-%s.ics", time.Now().Format("20060102"))
	if filename != wantName {
		t.Errorf("expected filename %q, got %q", wantName, filename)
	}
	ics := string(data)
	if !strings.Contains(ics, "SUMMARY:Launch Party") || !strings.Contains(ics, "SUMMARY:Holiday Mixer") {
		t.Error("expected both events in the calendar")
	}

	// No upcoming events still yields a valid, empty calendar.
	_, data, err = svc.UserEventsICS(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), "BEGIN:VCALENDAR") {
		t.Error("expected a valid calendar envelope")
	}
}

func TestParameterize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Launch Party 2026!", "launch-party-2026"},
		{"  Spaces   Everywhere  ", "spaces-everywhere"},
		{"Already-Clean", "already-clean"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := parameterize(tt.in); got != tt.want {
			t.Errorf("parameterize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
