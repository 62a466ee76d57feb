package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"eventgate/internal/domain"
)

func newUserAdminService(userRepo *mockUserRepo, eventRepo *mockEventRepo, participantRepo *mockParticipantRepo, emails *mockEmailService) domain.UserAdminService {
	var emailSvc domain.EmailService
	if emails != nil {
		emailSvc = emails
	}
	return NewUserAdminService(userRepo, eventRepo, participantRepo, &mockHasher{}, emailSvc, testLogger(), "https://example.com")
}

func TestUserAdminService_Create(t *testing.T) {
	tests := []struct {
		name     string
		user     *domain.User
		password string
		repo     *mockUserRepo
		wantErr  error
	}{
		{
			name:     "missing required fields",
			user:     &domain.User{Email: "ada@example.com", FirstName: "Ada"},
			password: "secret123",
			repo:     &mockUserRepo{},
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "missing password",
			user:     &domain.User{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"},
			password: "",
			repo:     &mockUserRepo{},
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "duplicate email",
			user:     &domain.User{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"},
			password: "secret123",
			repo: &mockUserRepo{byEmail: map[string]*domain.User{
				"ada@example.com": {ID: "u1"},
			}},
			wantErr: domain.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newUserAdminService(tt.repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)
			_, err := svc.Create(context.Background(), tt.user, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("success defaults role and hashes password", func(t *testing.T) {
		repo := &mockUserRepo{}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		got, err := svc.Create(context.Background(), &domain.User{
			Email: "  Ada@Example.com ", FirstName: "Ada", LastName: "Lovelace",
		}, "secret123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Email != "ada@example.com" {
			t.Errorf("expected normalized email, got %q", got.Email)
		}
		if got.Role != domain.UserRoleAttendee {
			t.Errorf("expected attendee role, got %q", got.Role)
		}
		if got.Salt == "" || got.PasswordHash == "" {
			t.Error("expected salted password hash")
		}
		if len(repo.created) != 1 {
			t.Fatalf("expected 1 user created, got %d", len(repo.created))
		}
	})
}

func TestUserAdminService_Update(t *testing.T) {
	admin1 := &domain.User{ID: "a1", Email: "a1@example.com", Role: domain.UserRoleAdmin, PasswordHash: "hash", Salt: "salt"}
	admin2 := &domain.User{ID: "a2", Email: "a2@example.com", Role: domain.UserRoleAdmin, PasswordHash: "hash", Salt: "salt"}

	t.Run("self-demotion is forbidden", func(t *testing.T) {
		repo := &mockUserRepo{users: map[string]*domain.User{"a1": admin1, "a2": admin2}, adminCount: 2}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		update := &domain.User{ID: "a1", Email: "a1@example.com", Role: domain.UserRoleAttendee}
		if _, err := svc.Update(context.Background(), "a1", update); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if len(repo.updated) != 0 {
			t.Error("rejected update must not be persisted")
		}
	})

	t.Run("demoting the last admin is rejected", func(t *testing.T) {
		repo := &mockUserRepo{users: map[string]*domain.User{"a1": admin1}, adminCount: 1}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		update := &domain.User{ID: "a1", Email: "a1@example.com", Role: domain.UserRoleAttendee}
		if _, err := svc.Update(context.Background(), "other-admin", update); !errors.Is(err, domain.ErrLastAdmin) {
			t.Fatalf("expected ErrLastAdmin, got %v", err)
		}
	})

	t.Run("demotion succeeds with another admin remaining", func(t *testing.T) {
		repo := &mockUserRepo{users: map[string]*domain.User{"a1": admin1, "a2": admin2}, adminCount: 2}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		update := &domain.User{ID: "a2", Email: "a2@example.com", Role: domain.UserRoleAttendee}
		got, err := svc.Update(context.Background(), "a1", update)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Role != domain.UserRoleAttendee {
			t.Errorf("expected attendee role, got %q", got.Role)
		}
		if got.PasswordHash != "hash" || got.Salt != "salt" {
			t.Error("update must preserve the stored credentials")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := &mockUserRepo{users: map[string]*domain.User{}}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		if _, err := svc.Update(context.Background(), "a1", &domain.User{ID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestUserAdminService_Delete(t *testing.T) {
	admin1 := &domain.User{ID: "a1", Role: domain.UserRoleAdmin}
	attendee := &domain.User{ID: "u1", Role: domain.UserRoleAttendee}

	t.Run("self-deletion is forbidden", func(t *testing.T) {
		repo := &mockUserRepo{users: map[string]*domain.User{"a1": admin1}, adminCount: 1}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		if err := svc.Delete(context.Background(), "a1", "a1"); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("deleting the last admin is rejected", func(t *testing.T) {
		repo := &mockUserRepo{users: map[string]*domain.User{"a1": admin1}, adminCount: 1}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		if err := svc.Delete(context.Background(), "other", "a1"); !errors.Is(err, domain.ErrLastAdmin) {
			t.Fatalf("expected ErrLastAdmin, got %v", err)
		}
		if len(repo.deleted) != 0 {
			t.Error("rejected delete must not be persisted")
		}
	})

	t.Run("deletes an attendee", func(t *testing.T) {
		repo := &mockUserRepo{users: map[string]*domain.User{"a1": admin1, "u1": attendee}, adminCount: 1}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		if err := svc.Delete(context.Background(), "a1", "u1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(repo.deleted) != 1 || repo.deleted[0] != "u1" {
			t.Fatalf("expected u1 deleted, got %v", repo.deleted)
		}
	})
}

func TestUserAdminService_BulkAction(t *testing.T) {
	t.Run("empty target list is invalid", func(t *testing.T) {
		svc := newUserAdminService(&mockUserRepo{}, &mockEventRepo{}, &mockParticipantRepo{}, nil)
		if _, err := svc.BulkAction(context.Background(), "a1", domain.BulkActionDelete, []string{" ", ""}); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("delete excludes the actor", func(t *testing.T) {
		repo := &mockUserRepo{
			users: map[string]*domain.User{
				"a1": {ID: "a1", Role: domain.UserRoleAdmin},
				"u1": {ID: "u1", Role: domain.UserRoleAttendee},
				"u2": {ID: "u2", Role: domain.UserRoleAttendee},
			},
			adminCount: 1,
		}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		result, err := svc.BulkAction(context.Background(), "a1", domain.BulkActionDelete, []string{"a1", "u1", "u2", "u1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Processed != 2 {
			t.Fatalf("expected 2 processed, got %d", result.Processed)
		}
		for _, id := range repo.deleted {
			if id == "a1" {
				t.Error("actor must never be deleted by a bulk action")
			}
		}
	})

	t.Run("only the actor targeted is a no-op", func(t *testing.T) {
		repo := &mockUserRepo{users: map[string]*domain.User{"a1": {ID: "a1", Role: domain.UserRoleAdmin}}, adminCount: 1}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		result, err := svc.BulkAction(context.Background(), "a1", domain.BulkActionDelete, []string{"a1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Processed != 0 || len(repo.deleted) != 0 {
			t.Fatalf("expected no-op, got %+v deleted=%v", result, repo.deleted)
		}
	})

	t.Run("demoting every admin rejects the whole batch", func(t *testing.T) {
		repo := &mockUserRepo{
			users: map[string]*domain.User{
				"a1": {ID: "a1", Role: domain.UserRoleAdmin},
				"a2": {ID: "a2", Role: domain.UserRoleAdmin},
			},
			adminCount: 2,
		}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		_, err := svc.BulkAction(context.Background(), "actor", domain.BulkActionDemote, []string{"a1", "a2"})
		if !errors.Is(err, domain.ErrLastAdmin) {
			t.Fatalf("expected ErrLastAdmin, got %v", err)
		}
		if len(repo.updated) != 0 {
			t.Error("rejected batch must not apply any change")
		}
	})

	t.Run("promote skips users already admins", func(t *testing.T) {
		repo := &mockUserRepo{
			users: map[string]*domain.User{
				"a1": {ID: "a1", Role: domain.UserRoleAdmin},
				"u1": {ID: "u1", Role: domain.UserRoleAttendee},
			},
			adminCount: 1,
		}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		result, err := svc.BulkAction(context.Background(), "actor", domain.BulkActionPromote, []string{"a1", "u1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Processed != 1 {
			t.Fatalf("expected 1 processed, got %d", result.Processed)
		}
		if len(repo.updated) != 1 || repo.updated[0].ID != "u1" || repo.updated[0].Role != domain.UserRoleAdmin {
			t.Fatalf("expected u1 promoted, got %v", repo.updated)
		}
	})

	t.Run("send invites creates participants for the current event", func(t *testing.T) {
		userRepo := &mockUserRepo{
			users: map[string]*domain.User{
				"u1": {ID: "u1", Email: "ada@example.com", FirstName: "Ada"},
			},
		}
		eventRepo := &mockEventRepo{current: &domain.Event{
			ID: "e1", Name: "Launch Party", EventDate: time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC),
		}}
		participantRepo := &mockParticipantRepo{}
		emails := &mockEmailService{}
		svc := newUserAdminService(userRepo, eventRepo, participantRepo, emails)

		result, err := svc.BulkAction(context.Background(), "actor", domain.BulkActionSendInvites, []string{"u1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Processed != 1 {
			t.Fatalf("expected 1 processed, got %d", result.Processed)
		}
		if userRepo.users["u1"].InvitedAt == nil {
			t.Error("expected invited_at stamped")
		}
		if len(participantRepo.created) != 1 {
			t.Fatalf("expected 1 participant created, got %d", len(participantRepo.created))
		}
		if participantRepo.created[0].InvitedAt == nil {
			t.Error("expected participant invited_at stamped")
		}
		if len(emails.invitations) != 1 {
			t.Fatalf("expected 1 invitation email, got %d", len(emails.invitations))
		}
		inv := emails.invitations[0]
		if inv.EventDate != "09/15/2026" || inv.RSVPURL != "https://example.com/rsvp/events/e1" {
			t.Errorf("unexpected invitation data %+v", inv)
		}
	})

	t.Run("send invites with no current event still marks users", func(t *testing.T) {
		userRepo := &mockUserRepo{users: map[string]*domain.User{
			"u1": {ID: "u1", Email: "ada@example.com"},
		}}
		participantRepo := &mockParticipantRepo{}
		svc := newUserAdminService(userRepo, &mockEventRepo{}, participantRepo, nil)

		result, err := svc.BulkAction(context.Background(), "actor", domain.BulkActionSendInvites, []string{"u1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Processed != 1 {
			t.Fatalf("expected 1 processed, got %d", result.Processed)
		}
		if len(participantRepo.created) != 0 {
			t.Error("no participant should be created without a current event")
		}
	})
}

func TestUserAdminService_ImportCSV(t *testing.T) {
	t.Run("creates users and reports per-row errors", func(t *testing.T) {
		input := strings.Join([]string{
			"First Name,Last Name,Email,Phone,Company,Role,Text Capable,Password",
			"Ada,Lovelace,ada@example.com,555-0100,Analytical Engines,admin,yes,enginepass",
			"Grace,,grace@example.com,,,,,",
			"Alan,Turing,alan@example.com,,,bogus-role,no,",
		}, "\n")
		repo := &mockUserRepo{}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		result, err := svc.ImportCSV(context.Background(), strings.NewReader(input))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Created != 2 {
			t.Fatalf("expected 2 created, got %d", result.Created)
		}
		if len(result.Errors) != 1 {
			t.Fatalf("expected 1 row error, got %v", result.Errors)
		}
		want := "Row 3: Missing required fields (first_name, last_name, email)"
		if result.Errors[0] != want {
			t.Errorf("expected %q, got %q", want, result.Errors[0])
		}

		ada := repo.created[0]
		if ada.Role != domain.UserRoleAdmin || !ada.TextCapable || ada.Phone != "555-0100" {
			t.Errorf("unexpected imported user %+v", ada)
		}
		if ada.InvitedAt == nil {
			t.Error("imported users are marked invited")
		}
		if ada.PasswordHash != "hash:salt:enginepass" {
			t.Errorf("expected password from csv, got %q", ada.PasswordHash)
		}

		alan := repo.created[1]
		if alan.Role != domain.UserRoleAttendee {
			t.Errorf("unknown role must fall back to attendee, got %q", alan.Role)
		}
		if alan.TextCapable {
			t.Error("explicit no must disable text_capable")
		}
		if alan.PasswordHash != "hash:salt:"+defaultImportPassword {
			t.Errorf("expected default password, got %q", alan.PasswordHash)
		}
	})

	t.Run("duplicate email is a row error", func(t *testing.T) {
		input := strings.Join([]string{
			"first_name,last_name,email",
			"Ada,Lovelace,ada@example.com",
		}, "\n")
		repo := &mockUserRepo{byEmail: map[string]*domain.User{"ada@example.com": {ID: "u1"}}}
		svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

		result, err := svc.ImportCSV(context.Background(), strings.NewReader(input))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Created != 0 || len(result.Errors) != 1 {
			t.Fatalf("expected a single row error, got %+v", result)
		}
		if !strings.HasPrefix(result.Errors[0], "Row 2: ") {
			t.Errorf("row errors carry physical line numbers, got %q", result.Errors[0])
		}
	})

	t.Run("empty input fails on the header", func(t *testing.T) {
		svc := newUserAdminService(&mockUserRepo{}, &mockEventRepo{}, &mockParticipantRepo{}, nil)
		if _, err := svc.ImportCSV(context.Background(), strings.NewReader("")); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestUserAdminService_ExportCSV(t *testing.T) {
	invitedAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	repo := &mockUserRepo{list: []*domain.User{
		{
			FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
			Phone: "555-0100", Company: "Analytical Engines", Role: domain.UserRoleAdmin,
			InvitedAt: &invitedAt, CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
			Role: domain.UserRoleAttendee, CreatedAt: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		},
	}}
	svc := newUserAdminService(repo, &mockEventRepo{}, &mockParticipantRepo{}, nil)

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	wantHeader := []string{"First Name", "Last Name", "Email", "Phone", "Company", "Role", "RSVP Status", "Invited At", "Created At"}
	if fmt.Sprint(records[0]) != fmt.Sprint(wantHeader) {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[1][5] != "Admin" || records[1][6] != "N/A" || records[1][7] != "2026-03-01 09:30" {
		t.Errorf("unexpected first row %v", records[1])
	}
	if records[2][7] != "Never" || records[2][8] != "2026-02-03" {
		t.Errorf("unexpected second row %v", records[2])
	}
}

func TestParseBooleanish(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"true", true},
		{"1", true},
		{"Yes", true},
		{" Y ", true},
		{"no", false},
		{"0", false},
		{"false", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		if got := parseBooleanish(tt.in); got != tt.want {
			t.Errorf("parseBooleanish(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
