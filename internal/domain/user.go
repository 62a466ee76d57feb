package domain

import (
	"context"
	"io"
	"time"
)

// UserRole is the application-level role of a user.
type UserRole string

// User roles.
const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleAttendee UserRole = "attendee"
)

// ParseUserRole validates a role string from the boundary. Only the closed
// set of roles is accepted.
func ParseUserRole(s string) (UserRole, bool) {
	switch UserRole(s) {
	case UserRoleAdmin, UserRoleAttendee:
		return UserRole(s), true
	}
	return "", false
}

// Humanize returns the display form of the role (e.g. "Admin").
func (r UserRole) Humanize() string {
	switch r {
	case UserRoleAdmin:
		return "Admin"
	case UserRoleAttendee:
		return "Attendee"
	}
	return string(r)
}

// User represents a registered user.
// swagger:model User
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Salt         string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone"`
	Company      string     `json:"company"`
	TextCapable  bool       `json:"text_capable"`
	Role         UserRole   `json:"role"`
	InvitedAt    *time.Time `json:"invited_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewUser returns a new attendee User with the given fields. ID is set by the
// repository on create.
func NewUser(email, firstName, lastName string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      UserRoleAttendee,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// FullName returns "First Last" for display and CSV export.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues session tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, role UserRole, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns the authenticated user
// ID and role.
type TokenVerifier interface {
	Verify(token string) (userID string, role UserRole, err error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role UserRole) (int, error)
}

// AuthService defines signup, login, and the admin bootstrap.
type AuthService interface {
	SignUp(ctx context.Context, email, password, firstName, lastName string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	// EnsureAdmin creates an admin account with the given credentials when no
	// admin exists. It is idempotent and safe to run at every startup.
	EnsureAdmin(ctx context.Context, email, password string) error
}

// BulkActionKind identifies a bulk user operation.
type BulkActionKind string

// Bulk user operations.
const (
	BulkActionDelete      BulkActionKind = "delete"
	BulkActionPromote     BulkActionKind = "promote_to_admin"
	BulkActionDemote      BulkActionKind = "demote_to_attendee"
	BulkActionSendInvites BulkActionKind = "send_invites"
)

// ParseBulkActionKind validates a bulk action string from the boundary.
func ParseBulkActionKind(s string) (BulkActionKind, bool) {
	switch BulkActionKind(s) {
	case BulkActionDelete, BulkActionPromote, BulkActionDemote, BulkActionSendInvites:
		return BulkActionKind(s), true
	}
	return "", false
}

// BulkActionResult reports the outcome of a bulk user operation.
// swagger:model BulkActionResult
type BulkActionResult struct {
	Processed int      `json:"processed"`
	Errors    []string `json:"errors"`
}

// CSVImportResult reports the outcome of a user CSV import.
// swagger:model CSVImportResult
type CSVImportResult struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

// UserAdminService defines admin-facing user management, bulk operations, and
// CSV import/export.
type UserAdminService interface {
	Create(ctx context.Context, user *User, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	// Update applies profile and role changes. The actor cannot demote
	// themselves, and the last admin cannot be demoted.
	Update(ctx context.Context, actorID string, user *User) (*User, error)
	// Delete removes a user. The actor cannot delete themselves, and the last
	// admin cannot be deleted.
	Delete(ctx context.Context, actorID, userID string) error
	// BulkAction applies kind to the target users. The actor is excluded from
	// destructive targets; if delete/demote would leave zero admins the whole
	// batch is rejected with ErrLastAdmin and nothing is applied.
	BulkAction(ctx context.Context, actorID string, kind BulkActionKind, userIDs []string) (*BulkActionResult, error)
	ImportCSV(ctx context.Context, r io.Reader) (*CSVImportResult, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}
