package domain

import "errors"

// Sentinel errors shared across services and repositories. Controllers map
// these onto HTTP status codes and error envelope codes.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the acting user is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned when the request fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateEmail is returned when a user email is already taken.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrDuplicateToken is returned when a generated check-in token collides
	// with an existing one. Callers retry with a fresh token.
	ErrDuplicateToken = errors.New("check-in token already in use")

	// ErrAlreadyParticipant is returned when a user already has a participant
	// record for the event.
	ErrAlreadyParticipant = errors.New("user is already a participant of this event")

	// ErrLastAdmin is returned when an operation would leave the system with
	// no admin users.
	ErrLastAdmin = errors.New("cannot demote or delete all admins")

	// ErrVenueInUse is returned when deleting a venue that still has events.
	ErrVenueInUse = errors.New("venue has existing events")

	// ErrDeadlinePassed is returned when an RSVP arrives after the event's
	// RSVP deadline.
	ErrDeadlinePassed = errors.New("RSVP deadline has passed")
)
