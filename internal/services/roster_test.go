package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"eventgate/internal/domain"
)

func newRosterFixture() (*mockParticipantRepo, *mockEventRepo, *mockUserRepo, *mockEmailService) {
	participantRepo := &mockParticipantRepo{
		byID: map[string]*domain.EventParticipant{
			"p1": {ID: "p1", UserID: "u1", EventID: "e1", Role: domain.ParticipantRoleAttendee},
		},
		byUserEvent: map[string]*domain.EventParticipant{
			"u1:e1": {ID: "p1", UserID: "u1", EventID: "e1"},
		},
	}
	eventRepo := &mockEventRepo{events: map[string]*domain.Event{
		"e1": {ID: "e1", Name: "Launch Party", EventDate: time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC)},
	}}
	userRepo := &mockUserRepo{users: map[string]*domain.User{
		"u1": {ID: "u1", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"},
		"u2": {ID: "u2", Email: "grace@example.com", FirstName: "Grace", LastName: "Hopper"},
	}}
	return participantRepo, eventRepo, userRepo, &mockEmailService{}
}

func TestRosterService_Add(t *testing.T) {
	t.Run("invites a user with role and notes", func(t *testing.T) {
		participantRepo, eventRepo, userRepo, emails := newRosterFixture()
		svc := NewRosterService(participantRepo, eventRepo, userRepo, emails, testLogger(), "https://example.com")

		got, err := svc.Add(context.Background(), "e1", "u2", domain.ParticipantRoleVendor, "booth 12")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Role != domain.ParticipantRoleVendor || got.Notes != "booth 12" {
			t.Errorf("unexpected participant %+v", got)
		}
		if got.InvitedAt == nil {
			t.Error("expected invited_at stamped")
		}
		if got.QRCodeToken == "" {
			t.Error("expected check-in token assigned")
		}
		if got.RSVPStatus != domain.RSVPPending {
			t.Errorf("new participants start pending, got %q", got.RSVPStatus)
		}
	})

	t.Run("duplicate participant", func(t *testing.T) {
		participantRepo, eventRepo, userRepo, emails := newRosterFixture()
		svc := NewRosterService(participantRepo, eventRepo, userRepo, emails, testLogger(), "https://example.com")

		if _, err := svc.Add(context.Background(), "e1", "u1", domain.ParticipantRoleAttendee, ""); !errors.Is(err, domain.ErrAlreadyParticipant) {
			t.Fatalf("expected ErrAlreadyParticipant, got %v", err)
		}
	})

	t.Run("unknown event or user", func(t *testing.T) {
		participantRepo, eventRepo, userRepo, emails := newRosterFixture()
		svc := NewRosterService(participantRepo, eventRepo, userRepo, emails, testLogger(), "https://example.com")

		if _, err := svc.Add(context.Background(), "missing", "u2", domain.ParticipantRoleAttendee, ""); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for event, got %v", err)
		}
		if _, err := svc.Add(context.Background(), "e1", "missing", domain.ParticipantRoleAttendee, ""); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for user, got %v", err)
		}
	})
}

func TestRosterService_UpdateRole(t *testing.T) {
	t.Run("updates role and notes", func(t *testing.T) {
		participantRepo, eventRepo, userRepo, emails := newRosterFixture()
		svc := NewRosterService(participantRepo, eventRepo, userRepo, emails, testLogger(), "https://example.com")

		got, err := svc.UpdateRole(context.Background(), "e1", "p1", domain.ParticipantRoleOrganizer, "runs registration")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Role != domain.ParticipantRoleOrganizer || got.Notes != "runs registration" {
			t.Errorf("unexpected participant %+v", got)
		}
		if len(participantRepo.roleUpdates) != 1 || participantRepo.roleUpdates[0].id != "p1" {
			t.Fatalf("expected role update for p1, got %v", participantRepo.roleUpdates)
		}
	})

	t.Run("participant of another event is not found", func(t *testing.T) {
		participantRepo, eventRepo, userRepo, emails := newRosterFixture()
		svc := NewRosterService(participantRepo, eventRepo, userRepo, emails, testLogger(), "https://example.com")

		if _, err := svc.UpdateRole(context.Background(), "e2", "p1", domain.ParticipantRoleVendor, ""); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if len(participantRepo.roleUpdates) != 0 {
			t.Error("cross-event update must not be applied")
		}
	})
}

func TestRosterService_Remove(t *testing.T) {
	t.Run("removes a participant", func(t *testing.T) {
		participantRepo, eventRepo, userRepo, emails := newRosterFixture()
		svc := NewRosterService(participantRepo, eventRepo, userRepo, emails, testLogger(), "https://example.com")

		if err := svc.Remove(context.Background(), "e1", "p1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(participantRepo.deleted) != 1 || participantRepo.deleted[0] != "p1" {
			t.Fatalf("expected p1 deleted, got %v", participantRepo.deleted)
		}
	})

	t.Run("participant of another event is not found", func(t *testing.T) {
		participantRepo, eventRepo, userRepo, emails := newRosterFixture()
		svc := NewRosterService(participantRepo, eventRepo, userRepo, emails, testLogger(), "https://example.com")

		if err := svc.Remove(context.Background(), "e2", "p1"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if len(participantRepo.deleted) != 0 {
			t.Error("cross-event removal must not be applied")
		}
	})
}

func TestRosterService_BulkInvite(t *testing.T) {
	t.Run("invites new users and skips existing or unknown", func(t *testing.T) {
		participantRepo, eventRepo, userRepo, emails := newRosterFixture()
		svc := NewRosterService(participantRepo, eventRepo, userRepo, emails, testLogger(), "https://example.com")

		// u1 is already a participant, u2 is new, "ghost" does not exist,
		// and u2 is listed twice.
		invited, err := svc.BulkInvite(context.Background(), "e1", []string{"u1", "u2", "ghost", "u2"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if invited != 1 {
			t.Fatalf("expected 1 invited, got %d", invited)
		}
		if len(participantRepo.created) != 1 || participantRepo.created[0].UserID != "u2" {
			t.Fatalf("expected only u2 created, got %v", participantRepo.created)
		}
		if len(emails.invitations) != 1 {
			t.Fatalf("expected 1 invitation email, got %d", len(emails.invitations))
		}
		inv := emails.invitations[0]
		if inv.Email != "grace@example.com" || inv.EventName != "Launch Party" {
			t.Errorf("unexpected invitation %+v", inv)
		}
		if inv.RSVPURL != "https://example.com/rsvp/events/e1" {
			t.Errorf("unexpected rsvp url %q", inv.RSVPURL)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		participantRepo, eventRepo, userRepo, emails := newRosterFixture()
		svc := NewRosterService(participantRepo, eventRepo, userRepo, emails, testLogger(), "https://example.com")

		if _, err := svc.BulkInvite(context.Background(), "missing", []string{"u2"}); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRosterService_ExportCSV(t *testing.T) {
	participantRepo, eventRepo, userRepo, emails := newRosterFixture()
	checkedInAt := time.Date(2026, 9, 15, 18, 45, 0, 0, time.UTC)
	participantRepo.roster = []*domain.ParticipantWithUser{
		{
			Participant: &domain.EventParticipant{
				ID: "p1", RSVPStatus: domain.RSVPYes, Role: domain.ParticipantRoleVendor,
				CheckedInAt: &checkedInAt, CheckInMethod: domain.CheckInManual,
			},
			User: &domain.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Company: "Analytical Engines", Phone: "555-0100"},
		},
		{
			Participant: &domain.EventParticipant{ID: "p2", RSVPStatus: domain.RSVPPending, Role: domain.ParticipantRoleAttendee},
			User:        &domain.User{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
		},
	}
	svc := NewRosterService(participantRepo, eventRepo, userRepo, emails, testLogger(), "https://example.com")

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), "e1", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	wantHeader := []string{"Name", "Email", "Company", "Phone", "RSVP Status", "Role", "Checked In", "Check-in Time"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Fatalf("unexpected header %v", records[0])
		}
	}
	row := records[1]
	if row[0] != "Ada Lovelace" || row[4] != "Yes" || row[5] != "Vendor" || row[6] != "Yes" || row[7] != "09/15/2026 06:45 PM" {
		t.Errorf("unexpected first row %v", row)
	}
	row = records[2]
	if row[4] != "Pending" || row[6] != "No" || row[7] != "" {
		t.Errorf("unexpected second row %v", row)
	}
}
