package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"eventgate/internal/domain"
)

// defaultImportPassword is assigned to imported users whose CSV row carries
// no password column.
const defaultImportPassword = "password123"

type userAdminService struct {
	userRepo        domain.UserRepository
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	hasher          domain.PasswordHasher
	emailService    domain.EmailService
	logger          *slog.Logger
	baseURL         string
}

// NewUserAdminService creates a UserAdminService.
func NewUserAdminService(
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	hasher domain.PasswordHasher,
	emailService domain.EmailService,
	logger *slog.Logger,
	baseURL string,
) domain.UserAdminService {
	return &userAdminService{
		userRepo:        userRepo,
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		hasher:          hasher,
		emailService:    emailService,
		logger:          logger,
		baseURL:         baseURL,
	}
}

func (s *userAdminService) Create(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" || user.FirstName == "" || user.LastName == "" {
		return nil, fmt.Errorf("%w: first name, last name, and email are required", domain.ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	if user.Role == "" {
		user.Role = domain.UserRoleAttendee
	}
	if err := s.setPassword(user, password); err != nil {
		return nil, err
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userAdminService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userAdminService) List(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userAdminService) Update(ctx context.Context, actorID string, user *domain.User) (*domain.User, error) {
	existing, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if existing.IsAdmin() && user.Role != domain.UserRoleAdmin {
		if user.ID == actorID {
			// No self-demotion, even with other admins around.
			return nil, domain.ErrForbidden
		}
		if err := s.requireOtherAdmin(ctx); err != nil {
			return nil, err
		}
	}
	user.PasswordHash = existing.PasswordHash
	user.Salt = existing.Salt
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *userAdminService) Delete(ctx context.Context, actorID, userID string) error {
	if userID == actorID {
		return domain.ErrForbidden
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		if err := s.requireOtherAdmin(ctx); err != nil {
			return err
		}
	}
	return s.userRepo.Delete(ctx, userID)
}

// requireOtherAdmin rejects removing admin rights from the last admin.
func (s *userAdminService) requireOtherAdmin(ctx context.Context) error {
	count, err := s.userRepo.CountByRole(ctx, domain.UserRoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count <= 1 {
		return domain.ErrLastAdmin
	}
	return nil
}

func (s *userAdminService) BulkAction(ctx context.Context, actorID string, kind domain.BulkActionKind, userIDs []string) (*domain.BulkActionResult, error) {
	targets := dedupe(userIDs)
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no users selected", domain.ErrInvalidInput)
	}

	switch kind {
	case domain.BulkActionDelete, domain.BulkActionDemote:
		// The actor is silently dropped from destructive target sets.
		targets = exclude(targets, actorID)
		if len(targets) == 0 {
			return &domain.BulkActionResult{Errors: []string{}}, nil
		}
		if err := s.checkAdminsRemain(ctx, targets); err != nil {
			return nil, err
		}
	}

	switch kind {
	case domain.BulkActionDelete:
		return s.bulkDelete(ctx, targets), nil
	case domain.BulkActionPromote:
		return s.bulkSetRole(ctx, targets, domain.UserRoleAdmin), nil
	case domain.BulkActionDemote:
		return s.bulkSetRole(ctx, targets, domain.UserRoleAttendee), nil
	case domain.BulkActionSendInvites:
		return s.bulkInvite(ctx, targets), nil
	}
	return nil, fmt.Errorf("%w: unknown bulk action %q", domain.ErrInvalidInput, kind)
}

// checkAdminsRemain rejects the whole batch when deleting or demoting the
// targets would leave zero admins.
func (s *userAdminService) checkAdminsRemain(ctx context.Context, targets []string) error {
	adminCount, err := s.userRepo.CountByRole(ctx, domain.UserRoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	targetedAdmins := 0
	for _, id := range targets {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return fmt.Errorf("get user: %w", err)
		}
		if user.IsAdmin() {
			targetedAdmins++
		}
	}
	if targetedAdmins >= adminCount {
		return domain.ErrLastAdmin
	}
	return nil
}

func (s *userAdminService) bulkDelete(ctx context.Context, targets []string) *domain.BulkActionResult {
	result := &domain.BulkActionResult{Errors: []string{}}
	for _, id := range targets {
		if err := s.userRepo.Delete(ctx, id); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("delete %s: %v", id, err))
			continue
		}
		result.Processed++
	}
	return result
}

func (s *userAdminService) bulkSetRole(ctx context.Context, targets []string, role domain.UserRole) *domain.BulkActionResult {
	result := &domain.BulkActionResult{Errors: []string{}}
	for _, id := range targets {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", id, err))
			continue
		}
		if user.Role == role {
			continue
		}
		user.Role = role
		user.UpdatedAt = time.Now()
		if err := s.userRepo.Update(ctx, user); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", id, err))
			continue
		}
		result.Processed++
	}
	return result
}

func (s *userAdminService) bulkInvite(ctx context.Context, targets []string) *domain.BulkActionResult {
	result := &domain.BulkActionResult{Errors: []string{}}

	event, err := s.eventRepo.GetCurrent(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		result.Errors = append(result.Errors, fmt.Sprintf("load current event: %v", err))
		return result
	}

	now := time.Now()
	for _, id := range targets {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", id, err))
			continue
		}
		if user.InvitedAt == nil {
			user.InvitedAt = &now
			user.UpdatedAt = now
			if err := s.userRepo.Update(ctx, user); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", id, err))
				continue
			}
		}
		if event != nil {
			if err := s.inviteToEvent(ctx, user, event, now); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", id, err))
				continue
			}
		}
		result.Processed++
	}
	return result
}

// inviteToEvent creates the pending participant record when missing and sends
// a best-effort invitation email.
func (s *userAdminService) inviteToEvent(ctx context.Context, user *domain.User, event *domain.Event, now time.Time) error {
	_, err := s.participantRepo.GetByUserAndEvent(ctx, user.ID, event.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get participant: %w", err)
	}
	participant := domain.NewEventParticipant(user.ID, event.ID, now, now)
	participant.InvitedAt = &now
	if err := createParticipantWithToken(ctx, s.participantRepo, participant); err != nil {
		return fmt.Errorf("create participant: %w", err)
	}

	if s.emailService != nil {
		data := &domain.InvitationEmailData{
			Email:     user.Email,
			FirstName: user.FirstName,
			EventName: event.Name,
			EventDate: event.EventDate.Format("01/02/2006"),
			RSVPURL:   s.baseURL + "/rsvp/events/" + event.ID,
		}
		if err := s.emailService.SendEventInvitation(ctx, data); err != nil {
			s.logger.ErrorContext(ctx, "invitation email failed", "user_id", user.ID, "event_id", event.ID, "err", err)
		}
	}
	return nil
}

// csvHeaderKey normalizes a CSV header cell: trimmed, lowercased, spaces
// collapsed to underscores.
func csvHeaderKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

// parseBooleanish interprets CSV truthy values. An absent value defaults to
// true.
func parseBooleanish(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return true
	}
	switch v {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

func (s *userAdminService) ImportCSV(ctx context.Context, r io.Reader) (*domain.CSVImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read CSV header", domain.ErrInvalidInput)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[csvHeaderKey(h)] = i
	}

	result := &domain.CSVImportResult{Errors: []string{}}
	line := 1 // header occupies the first line
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
			continue
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		firstName := field("first_name")
		lastName := field("last_name")
		email := strings.ToLower(field("email"))
		if firstName == "" || lastName == "" || email == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing required fields (first_name, last_name, email)", line))
			continue
		}

		now := time.Now()
		user := domain.NewUser(email, firstName, lastName, now, now)
		user.Phone = field("phone")
		user.Company = field("company")
		user.TextCapable = parseBooleanish(field("text_capable"))
		user.InvitedAt = &now
		if role, ok := domain.ParseUserRole(field("role")); ok {
			user.Role = role
		}

		password := field("password")
		if password == "" {
			password = defaultImportPassword
		}
		if err := s.setPassword(user, password); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
			continue
		}

		if err := s.userRepo.Create(ctx, user); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
			continue
		}
		result.Created++
	}
	return result, nil
}

func (s *userAdminService) ExportCSV(ctx context.Context, w io.Writer) error {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"First Name", "Last Name", "Email", "Phone", "Company", "Role", "RSVP Status", "Invited At", "Created At"}); err != nil {
		return err
	}
	for _, u := range users {
		invitedAt := "Never"
		if u.InvitedAt != nil {
			invitedAt = u.InvitedAt.Format("2006-01-02 15:04")
		}
		row := []string{
			u.FirstName,
			u.LastName,
			u.Email,
			u.Phone,
			u.Company,
			u.Role.Humanize(),
			// RSVPs are per event, so a whole-account export has no single status.
			"N/A",
			invitedAt,
			u.CreatedAt.Format("2006-01-02"),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (s *userAdminService) setPassword(user *domain.User, password string) error {
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Salt = salt
	user.PasswordHash = hash
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func exclude(ids []string, drop string) []string {
	var out []string
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
