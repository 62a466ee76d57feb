package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"eventgate/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockUserRepo struct {
	users      map[string]*domain.User
	byEmail    map[string]*domain.User
	list       []*domain.User
	created    []*domain.User
	createErr  error
	updated    []*domain.User
	updateErr  error
	deleted    []string
	deleteErr  error
	adminCount int
	countErr   error
	err        error
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.byEmail != nil {
		if _, ok := m.byEmail[user.Email]; ok {
			return domain.ErrDuplicateEmail
		}
	}
	user.ID = fmt.Sprintf("u%d", len(m.created)+1)
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, user)
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockUserRepo) CountByRole(ctx context.Context, role domain.UserRole) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.adminCount, nil
}

type mockEventRepo struct {
	events      map[string]*domain.Event
	current     *domain.Event
	upcoming    map[string][]*domain.Event
	venueCounts map[string]int
	created     []*domain.Event
	updated     []*domain.Event
	deleted     []string
	err         error
}

func (m *mockEventRepo) Create(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	event.ID = fmt.Sprintf("e%d", len(m.created)+1)
	m.created = append(m.created, event)
	return nil
}

func (m *mockEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (m *mockEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Event, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev)
	}
	return out, nil
}

func (m *mockEventRepo) ListUpcomingByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.upcoming[userID], nil
}

func (m *mockEventRepo) GetCurrent(ctx context.Context) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.current == nil {
		return nil, domain.ErrNotFound
	}
	return m.current, nil
}

func (m *mockEventRepo) Update(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	m.updated = append(m.updated, event)
	return nil
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockEventRepo) CountByVenueID(ctx context.Context, venueID string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.venueCounts[venueID], nil
}

type mockVenueRepo struct {
	venues    map[string]*domain.Venue
	list      []*domain.Venue
	created   []*domain.Venue
	createErr error
	updated   []*domain.Venue
	deleted   []string
	deleteErr error
	err       error
}

func (m *mockVenueRepo) Create(ctx context.Context, venue *domain.Venue) error {
	if m.createErr != nil {
		return m.createErr
	}
	venue.ID = fmt.Sprintf("v%d", len(m.created)+1)
	m.created = append(m.created, venue)
	return nil
}

func (m *mockVenueRepo) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.venues[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mockVenueRepo) List(ctx context.Context) ([]*domain.Venue, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

func (m *mockVenueRepo) Update(ctx context.Context, venue *domain.Venue) error {
	if m.err != nil {
		return m.err
	}
	m.updated = append(m.updated, venue)
	return nil
}

func (m *mockVenueRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type rsvpUpdate struct {
	id      string
	status  domain.RSVPStatus
	answers map[string]string
}

type checkinRecord struct {
	id          string
	at          time.Time
	method      domain.CheckInMethod
	checkedInBy *string
}

type roleUpdate struct {
	id    string
	role  domain.ParticipantRole
	notes string
}

type mockParticipantRepo struct {
	// mu guards byID and checkins so check-in tests can run concurrent
	// requests against a shared repo.
	mu sync.Mutex

	byID        map[string]*domain.EventParticipant
	byUserEvent map[string]*domain.EventParticipant // keyed "userID:eventID"

	// createErrs is popped once per Create call; a nil entry means success.
	createErrs   []error
	created      []*domain.EventParticipant
	createTokens []string

	rsvpUpdates []rsvpUpdate
	rsvpErr     error

	roleUpdates []roleUpdate

	checkins   []checkinRecord
	checkinErr error

	cleared  []string
	clearErr error

	deleted []string

	roster         []*domain.ParticipantWithUser
	recent         []*domain.ParticipantWithUser
	countByEvent   int
	statusCounts   map[domain.RSVPStatus]int
	countCheckedIn int

	err error
}

func (m *mockParticipantRepo) Create(ctx context.Context, p *domain.EventParticipant) error {
	m.createTokens = append(m.createTokens, p.QRCodeToken)
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if m.byUserEvent != nil {
		if _, ok := m.byUserEvent[p.UserID+":"+p.EventID]; ok {
			return domain.ErrAlreadyParticipant
		}
	}
	p.ID = fmt.Sprintf("p%d", len(m.created)+1)
	m.created = append(m.created, p)
	return nil
}

func (m *mockParticipantRepo) GetByID(ctx context.Context, id string) (*domain.EventParticipant, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockParticipantRepo) GetByUserAndEvent(ctx context.Context, userID, eventID string) (*domain.EventParticipant, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.byUserEvent[userID+":"+eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (m *mockParticipantRepo) GetByCheckinTriple(ctx context.Context, token, eventID, participantID string) (*domain.EventParticipant, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[participantID]
	if !ok || p.QRCodeToken != token || p.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockParticipantRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.ParticipantWithUser, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.roster, nil
}

func (m *mockParticipantRepo) UpdateRSVP(ctx context.Context, id string, status domain.RSVPStatus, respondedAt time.Time, answers map[string]string) error {
	if m.rsvpErr != nil {
		return m.rsvpErr
	}
	m.rsvpUpdates = append(m.rsvpUpdates, rsvpUpdate{id: id, status: status, answers: answers})
	return nil
}

func (m *mockParticipantRepo) UpdateRole(ctx context.Context, id string, role domain.ParticipantRole, notes string) error {
	m.roleUpdates = append(m.roleUpdates, roleUpdate{id: id, role: role, notes: notes})
	return nil
}

func (m *mockParticipantRepo) SetCheckin(ctx context.Context, id string, at time.Time, method domain.CheckInMethod, checkedInBy *string) error {
	if m.checkinErr != nil {
		return m.checkinErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byID[id]; ok {
		// First write wins, mirroring the NULL guard in the real update.
		if p.CheckedInAt != nil {
			return domain.ErrNotFound
		}
		ts := at
		p.CheckedInAt = &ts
		p.CheckInMethod = method
		if checkedInBy != nil {
			p.CheckedInByID = *checkedInBy
		}
	}
	m.checkins = append(m.checkins, checkinRecord{id: id, at: at, method: method, checkedInBy: checkedInBy})
	return nil
}

func (m *mockParticipantRepo) ClearCheckin(ctx context.Context, id string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = append(m.cleared, id)
	return nil
}

func (m *mockParticipantRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockParticipantRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.countByEvent, nil
}

func (m *mockParticipantRepo) CountByRSVPStatus(ctx context.Context, eventID string, statuses ...domain.RSVPStatus) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	total := 0
	for _, st := range statuses {
		total += m.statusCounts[st]
	}
	return total, nil
}

func (m *mockParticipantRepo) CountCheckedIn(ctx context.Context, eventID string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.countCheckedIn, nil
}

func (m *mockParticipantRepo) ListRecentCheckins(ctx context.Context, eventID string, limit int) ([]*domain.ParticipantWithUser, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.recent, nil
}

type mockHasher struct {
	saltErr error
	hashErr error
}

func (m *mockHasher) GenerateSalt() (string, error) {
	if m.saltErr != nil {
		return "", m.saltErr
	}
	return "salt", nil
}

func (m *mockHasher) Hash(salt, password string) (string, error) {
	if m.hashErr != nil {
		return "", m.hashErr
	}
	return "hash:" + salt + ":" + password, nil
}

func (m *mockHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+":"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

type mockTokenIssuer struct {
	err error
}

func (m *mockTokenIssuer) Issue(userID, email string, role domain.UserRole, expiry time.Duration) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "token-" + userID, nil
}

type mockEmailService struct {
	confirmations []*domain.RSVPConfirmationEmailData
	invitations   []*domain.InvitationEmailData
	err           error
}

func (m *mockEmailService) SendRSVPConfirmation(ctx context.Context, data *domain.RSVPConfirmationEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.confirmations = append(m.confirmations, data)
	return nil
}

func (m *mockEmailService) SendEventInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.invitations = append(m.invitations, data)
	return nil
}

type mockQREncoder struct {
	content string
	size    int
	png     []byte
	err     error
}

func (m *mockQREncoder) Encode(content string, size int) ([]byte, error) {
	m.content = content
	m.size = size
	if m.err != nil {
		return nil, m.err
	}
	return m.png, nil
}
