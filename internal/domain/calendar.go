package domain

import "context"

// CalendarService serializes events to iCalendar files.
type CalendarService interface {
	// EventICS returns a download filename and an ICS document with one
	// VEVENT for the given event.
	EventICS(ctx context.Context, eventID string) (filename string, data []byte, err error)
	// UserEventsICS returns an ICS document with one VEVENT per upcoming
	// event the user participates in.
	UserEventsICS(ctx context.Context, userID string) (filename string, data []byte, err error)
}
