package domain

import (
	"context"
	"io"
	"time"
)

// ParticipantRole is a user's role within a specific event.
type ParticipantRole string

// Participant roles.
const (
	ParticipantRoleAttendee  ParticipantRole = "attendee"
	ParticipantRoleVendor    ParticipantRole = "vendor"
	ParticipantRoleOrganizer ParticipantRole = "organizer"
)

// ParseParticipantRole validates a participant role string from the boundary.
func ParseParticipantRole(s string) (ParticipantRole, bool) {
	switch ParticipantRole(s) {
	case ParticipantRoleAttendee, ParticipantRoleVendor, ParticipantRoleOrganizer:
		return ParticipantRole(s), true
	}
	return "", false
}

// Humanize returns the display form of the role (e.g. "Vendor").
func (r ParticipantRole) Humanize() string {
	switch r {
	case ParticipantRoleAttendee:
		return "Attendee"
	case ParticipantRoleVendor:
		return "Vendor"
	case ParticipantRoleOrganizer:
		return "Organizer"
	}
	return string(r)
}

// RSVPStatus is a participant's declared attendance intent.
type RSVPStatus string

// RSVP statuses. Pending is the baseline and never a target of an explicit
// transition.
const (
	RSVPPending RSVPStatus = "pending"
	RSVPYes     RSVPStatus = "yes"
	RSVPNo      RSVPStatus = "no"
	RSVPMaybe   RSVPStatus = "maybe"
)

// ParseRSVPResponse validates an RSVP status string from the boundary.
// Only explicit responses (yes/no/maybe) are accepted.
func ParseRSVPResponse(s string) (RSVPStatus, bool) {
	switch RSVPStatus(s) {
	case RSVPYes, RSVPNo, RSVPMaybe:
		return RSVPStatus(s), true
	}
	return "", false
}

// Humanize returns the display form of the status (e.g. "Maybe").
func (s RSVPStatus) Humanize() string {
	switch s {
	case RSVPPending:
		return "Pending"
	case RSVPYes:
		return "Yes"
	case RSVPNo:
		return "No"
	case RSVPMaybe:
		return "Maybe"
	}
	return string(s)
}

// CheckInMethod records how a participant was checked in.
type CheckInMethod string

// Check-in methods. The empty string means not checked in.
const (
	CheckInQRCode CheckInMethod = "qr_code"
	CheckInManual CheckInMethod = "manual"
	CheckInBulk   CheckInMethod = "bulk"
)

// Humanize returns the display form of the method (e.g. "QR Code").
func (m CheckInMethod) Humanize() string {
	switch m {
	case CheckInQRCode:
		return "QR Code"
	case CheckInManual:
		return "Manual Entry"
	case CheckInBulk:
		return "Bulk Check-in"
	}
	return string(m)
}

// EventParticipant links a User to an Event with role, RSVP, and check-in
// state. The (user_id, event_id) pair and the check-in token are unique.
// swagger:model EventParticipant
type EventParticipant struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	EventID       string            `json:"event_id"`
	Role          ParticipantRole   `json:"role"`
	RSVPStatus    RSVPStatus        `json:"rsvp_status"`
	RespondedAt   *time.Time        `json:"responded_at"`
	InvitedAt     *time.Time        `json:"invited_at"`
	Notes         string            `json:"notes"`
	RSVPAnswers   map[string]string `json:"rsvp_answers"`
	QRCodeToken   string            `json:"-"`
	CheckedInAt   *time.Time        `json:"checked_in_at"`
	CheckInMethod CheckInMethod     `json:"check_in_method,omitempty"`
	CheckedInByID string            `json:"checked_in_by_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewEventParticipant returns a pending attendee participant. The check-in
// token is assigned by the creating service; ID is set by the repository.
func NewEventParticipant(userID, eventID string, createdAt, updatedAt time.Time) *EventParticipant {
	return &EventParticipant{
		UserID:     userID,
		EventID:    eventID,
		Role:       ParticipantRoleAttendee,
		RSVPStatus: RSVPPending,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

// CheckedIn reports whether the participant has been checked in.
func (p *EventParticipant) CheckedIn() bool {
	return p.CheckedInAt != nil
}

// ParticipantWithUser bundles a participant with the owning user, for rosters,
// exports, and the check-in dashboard.
type ParticipantWithUser struct {
	Participant *EventParticipant `json:"participant"`
	User        *User             `json:"user"`
}

// ParticipantRepository defines storage operations for event participants.
type ParticipantRepository interface {
	// Create inserts the participant with its pre-assigned check-in token.
	// Returns ErrDuplicateToken on a token collision and ErrAlreadyParticipant
	// when the (user, event) pair already exists.
	Create(ctx context.Context, p *EventParticipant) error
	GetByID(ctx context.Context, id string) (*EventParticipant, error)
	GetByUserAndEvent(ctx context.Context, userID, eventID string) (*EventParticipant, error)
	// GetByCheckinTriple returns the participant matching all of token,
	// event ID, and participant ID, or ErrNotFound on any mismatch.
	GetByCheckinTriple(ctx context.Context, token, eventID, participantID string) (*EventParticipant, error)
	ListByEventID(ctx context.Context, eventID string) ([]*ParticipantWithUser, error)
	// UpdateRSVP applies an RSVP transition in one statement.
	UpdateRSVP(ctx context.Context, id string, status RSVPStatus, respondedAt time.Time, answers map[string]string) error
	UpdateRole(ctx context.Context, id string, role ParticipantRole, notes string) error
	// SetCheckin records a check-in in one atomic update, only when the
	// participant is not already checked in; a concurrent or repeated call
	// gets ErrNotFound and the original timestamp survives. checkedInBy is
	// nil for self-service QR check-ins.
	SetCheckin(ctx context.Context, id string, at time.Time, method CheckInMethod, checkedInBy *string) error
	// ClearCheckin clears checked_in_at, check_in_method, and checked_in_by
	// in one atomic update.
	ClearCheckin(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountByEventID(ctx context.Context, eventID string) (int, error)
	CountByRSVPStatus(ctx context.Context, eventID string, statuses ...RSVPStatus) (int, error)
	CountCheckedIn(ctx context.Context, eventID string) (int, error)
	// ListRecentCheckins returns the most recently checked-in participants,
	// newest first.
	ListRecentCheckins(ctx context.Context, eventID string, limit int) ([]*ParticipantWithUser, error)
}

// RSVPService applies RSVP state transitions for the acting user.
type RSVPService interface {
	// Respond applies a yes/no/maybe transition, creating the pending baseline
	// participant record first when none exists. Answers to the event's custom
	// questions are trimmed and empty ones dropped. Returns ErrDeadlinePassed
	// once the event's RSVP deadline is in the past.
	Respond(ctx context.Context, userID, eventID string, status RSVPStatus, answers map[string]string) (*EventParticipant, error)
	// Status returns the user's participant record for the event. When the
	// user has not been invited or responded, a transient pending record is
	// returned without being persisted.
	Status(ctx context.Context, userID, eventID string) (*EventParticipant, error)
}

// VerificationStatus is the outcome of a check-in verification.
type VerificationStatus string

// Verification outcomes. Invalid deliberately carries no detail about which
// of the three lookup fields mismatched.
const (
	VerificationReady            VerificationStatus = "ready"
	VerificationCheckedIn        VerificationStatus = "checked_in"
	VerificationAlreadyCheckedIn VerificationStatus = "already_checked_in"
	VerificationInvalid          VerificationStatus = "invalid"
)

// VerificationResult is the read-only outcome of verifying a check-in triple.
// swagger:model VerificationResult
type VerificationResult struct {
	Status      VerificationStatus `json:"status"`
	Message     string             `json:"message"`
	Participant *EventParticipant  `json:"participant,omitempty"`
	User        *User              `json:"user,omitempty"`
	Event       *Event             `json:"event,omitempty"`
}

// CheckinService implements the QR-token check-in flow.
type CheckinService interface {
	// Verify looks up the exact (token, event, participant) triple and never
	// mutates state.
	Verify(ctx context.Context, token, eventID, participantID string) (*VerificationResult, error)
	// Process performs a self-service QR check-in. Checking in an already
	// checked-in participant is not an error; the original timestamp is kept.
	Process(ctx context.Context, token, eventID, participantID string) (*VerificationResult, error)
	// ManualCheckin checks a participant in on their behalf, recording the
	// operator.
	ManualCheckin(ctx context.Context, participantID, operatorID string) (*EventParticipant, error)
	// BulkCheckin checks in the given participants of an event, skipping
	// already-checked-in rows, and returns the number checked in.
	BulkCheckin(ctx context.Context, eventID string, participantIDs []string, operatorID string) (int, error)
	// UndoCheckin clears all check-in fields. Not exposed to user-facing flows.
	UndoCheckin(ctx context.Context, participantID string) error
	Stats(ctx context.Context, eventID string) (*CheckinStats, error)
	// QRCodePNG renders the participant's check-in URL as a QR code image.
	QRCodePNG(ctx context.Context, participantID string) ([]byte, error)
}

// CheckinStats is the live check-in dashboard payload.
// swagger:model CheckinStats
type CheckinStats struct {
	CheckedInCount int             `json:"checked_in_count"`
	TotalRSVPed    int             `json:"total_rsvped"`
	RecentCheckins []RecentCheckin `json:"recent_checkins"`
}

// RecentCheckin is one row of the dashboard's recent check-in feed.
type RecentCheckin struct {
	Name   string `json:"name"`
	Time   string `json:"time"`
	Method string `json:"method"`
}

// QREncoder renders text content as a PNG QR code (infrastructure port).
type QREncoder interface {
	Encode(content string, size int) ([]byte, error)
}

// RosterService manages an event's participant roster.
type RosterService interface {
	// Add invites a user to the event with the given role, assigning the
	// check-in token.
	Add(ctx context.Context, eventID, userID string, role ParticipantRole, notes string) (*EventParticipant, error)
	UpdateRole(ctx context.Context, eventID, participantID string, role ParticipantRole, notes string) (*EventParticipant, error)
	Remove(ctx context.Context, eventID, participantID string) error
	List(ctx context.Context, eventID string) ([]*ParticipantWithUser, error)
	// BulkInvite invites the given users, skipping existing participants, and
	// sends best-effort invitation emails. Returns the number invited.
	BulkInvite(ctx context.Context, eventID string, userIDs []string) (int, error)
	// ExportCSV writes the event's participant roster as CSV.
	ExportCSV(ctx context.Context, eventID string, w io.Writer) error
}
