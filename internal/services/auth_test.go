package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventgate/internal/domain"
)

func newAuthService(userRepo *mockUserRepo) domain.AuthService {
	return NewAuthService(userRepo, &mockHasher{}, &mockTokenIssuer{}, time.Hour, testLogger())
}

func TestAuthService_SignUp(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		firstName string
		lastName  string
		repo      *mockUserRepo
		wantErr   error
	}{
		{
			name:      "invalid email",
			email:     "not-an-email",
			password:  "secret123",
			firstName: "Ada",
			lastName:  "Lovelace",
			repo:      &mockUserRepo{},
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name:      "short password",
			email:     "ada@example.com",
			password:  "short",
			firstName: "Ada",
			lastName:  "Lovelace",
			repo:      &mockUserRepo{},
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name:     "missing names",
			email:    "ada@example.com",
			password: "secret123",
			repo:     &mockUserRepo{},
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:      "duplicate email",
			email:     "ada@example.com",
			password:  "secret123",
			firstName: "Ada",
			lastName:  "Lovelace",
			repo: &mockUserRepo{byEmail: map[string]*domain.User{
				"ada@example.com": {ID: "u1"},
			}},
			wantErr: domain.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAuthService(tt.repo)
			_, err := svc.SignUp(context.Background(), tt.email, tt.password, tt.firstName, tt.lastName)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("success creates an attendee", func(t *testing.T) {
		repo := &mockUserRepo{}
		svc := newAuthService(repo)

		got, err := svc.SignUp(context.Background(), " Ada@Example.COM ", "secret123", " Ada ", " Lovelace ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Email != "ada@example.com" {
			t.Errorf("expected normalized email, got %q", got.Email)
		}
		if got.FirstName != "Ada" || got.LastName != "Lovelace" {
			t.Errorf("expected trimmed names, got %q %q", got.FirstName, got.LastName)
		}
		if got.Role != domain.UserRoleAttendee {
			t.Errorf("self-signup must create attendees, got %q", got.Role)
		}
		if got.Salt != "salt" || got.PasswordHash != "hash:salt:secret123" {
			t.Error("expected salted password hash")
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	user := &domain.User{
		ID: "u1", Email: "ada@example.com", Role: domain.UserRoleAttendee,
		Salt: "salt", PasswordHash: "hash:salt:secret123",
	}

	t.Run("success issues a token", func(t *testing.T) {
		repo := &mockUserRepo{byEmail: map[string]*domain.User{"ada@example.com": user}}
		svc := newAuthService(repo)

		token, got, err := svc.Login(context.Background(), "Ada@Example.com", "secret123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "token-u1" {
			t.Errorf("unexpected token %q", token)
		}
		if got.ID != "u1" {
			t.Errorf("unexpected user %+v", got)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := newAuthService(&mockUserRepo{byEmail: map[string]*domain.User{}})
		if _, _, err := svc.Login(context.Background(), "nobody@example.com", "secret123"); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := &mockUserRepo{byEmail: map[string]*domain.User{"ada@example.com": user}}
		svc := newAuthService(repo)
		// Same error as unknown email so nothing is disclosed.
		if _, _, err := svc.Login(context.Background(), "ada@example.com", "wrongpass"); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	t.Run("no-op when an admin exists", func(t *testing.T) {
		repo := &mockUserRepo{adminCount: 1}
		svc := newAuthService(repo)

		if err := svc.EnsureAdmin(context.Background(), "admin@example.com", "bootpass1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(repo.created) != 0 {
			t.Error("existing admin must not trigger a create")
		}
	})

	t.Run("creates the bootstrap admin", func(t *testing.T) {
		repo := &mockUserRepo{}
		svc := newAuthService(repo)

		if err := svc.EnsureAdmin(context.Background(), "Admin@Example.com", "bootpass1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(repo.created) != 1 {
			t.Fatalf("expected 1 user created, got %d", len(repo.created))
		}
		admin := repo.created[0]
		if admin.Email != "admin@example.com" || admin.Role != domain.UserRoleAdmin {
			t.Errorf("unexpected bootstrap admin %+v", admin)
		}
	})

	t.Run("no admin and no credentials is an error", func(t *testing.T) {
		svc := newAuthService(&mockUserRepo{})
		if err := svc.EnsureAdmin(context.Background(), "", ""); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("concurrent bootstrap loses the race quietly", func(t *testing.T) {
		repo := &mockUserRepo{createErr: domain.ErrDuplicateEmail}
		svc := newAuthService(repo)
		if err := svc.EnsureAdmin(context.Background(), "admin@example.com", "bootpass1"); err != nil {
			t.Fatalf("expected nil on duplicate email, got %v", err)
		}
	})
}
