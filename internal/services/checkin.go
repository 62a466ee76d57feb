package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	"eventgate/internal/domain"
)

const (
	// checkinTokenBytes is the entropy of a check-in token before encoding.
	checkinTokenBytes = 16
	// tokenRetryLimit bounds the collision retry loop on token generation.
	tokenRetryLimit = 5

	qrCodeSize         = 256
	recentCheckinLimit = 10
)

type checkinService struct {
	participantRepo domain.ParticipantRepository
	eventRepo       domain.EventRepository
	userRepo        domain.UserRepository
	qrEncoder       domain.QREncoder
	baseURL         string
}

// NewCheckinService creates a CheckinService. baseURL is the public origin
// embedded in QR code check-in URLs.
func NewCheckinService(
	participantRepo domain.ParticipantRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	qrEncoder domain.QREncoder,
	baseURL string,
) domain.CheckinService {
	return &checkinService{
		participantRepo: participantRepo,
		eventRepo:       eventRepo,
		userRepo:        userRepo,
		qrEncoder:       qrEncoder,
		baseURL:         baseURL,
	}
}

// generateCheckinToken returns a fresh URL-safe random token.
func generateCheckinToken() (string, error) {
	buf := make([]byte, checkinTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// createParticipantWithToken inserts the participant, retrying with a fresh
// token on a unique-index collision. The token is assigned once and never
// regenerated for an existing participant.
func createParticipantWithToken(ctx context.Context, repo domain.ParticipantRepository, p *domain.EventParticipant) error {
	for attempt := 0; attempt < tokenRetryLimit; attempt++ {
		token, err := generateCheckinToken()
		if err != nil {
			return err
		}
		p.QRCodeToken = token
		err = repo.Create(ctx, p)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrDuplicateToken) {
			continue
		}
		return err
	}
	return fmt.Errorf("gave up generating a unique check-in token after %d attempts", tokenRetryLimit)
}

func (s *checkinService) Verify(ctx context.Context, token, eventID, participantID string) (*domain.VerificationResult, error) {
	p, err := s.participantRepo.GetByCheckinTriple(ctx, token, eventID, participantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return invalidResult(), nil
		}
		return nil, fmt.Errorf("look up participant: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, p.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	user, err := s.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if p.CheckedIn() {
		return &domain.VerificationResult{
			Status:      domain.VerificationAlreadyCheckedIn,
			Message:     fmt.Sprintf("Already checked in at %s", p.CheckedInAt.Format("03:04 PM")),
			Participant: p,
			User:        user,
			Event:       event,
		}, nil
	}
	return &domain.VerificationResult{
		Status:      domain.VerificationReady,
		Message:     "Ready to check in",
		Participant: p,
		User:        user,
		Event:       event,
	}, nil
}

func (s *checkinService) Process(ctx context.Context, token, eventID, participantID string) (*domain.VerificationResult, error) {
	result, err := s.Verify(ctx, token, eventID, participantID)
	if err != nil {
		return nil, err
	}
	if result.Status != domain.VerificationReady {
		// Invalid stays invalid; already checked in is idempotent, keeping
		// the original timestamp.
		return result, nil
	}

	now := time.Now()
	if err := s.participantRepo.SetCheckin(ctx, result.Participant.ID, now, domain.CheckInQRCode, nil); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Lost the race to a concurrent check-in; report the stored state.
			return s.Verify(ctx, token, eventID, participantID)
		}
		return nil, fmt.Errorf("record check-in: %w", err)
	}
	result.Participant.CheckedInAt = &now
	result.Participant.CheckInMethod = domain.CheckInQRCode
	result.Status = domain.VerificationCheckedIn
	result.Message = "Successfully checked in"
	return result, nil
}

func (s *checkinService) ManualCheckin(ctx context.Context, participantID, operatorID string) (*domain.EventParticipant, error) {
	p, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	if p.CheckedIn() {
		return p, nil
	}

	now := time.Now()
	if err := s.participantRepo.SetCheckin(ctx, p.ID, now, domain.CheckInManual, &operatorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// A concurrent check-in got there first; return its record.
			return s.participantRepo.GetByID(ctx, participantID)
		}
		return nil, fmt.Errorf("record check-in: %w", err)
	}
	p.CheckedInAt = &now
	p.CheckInMethod = domain.CheckInManual
	p.CheckedInByID = operatorID
	return p, nil
}

func (s *checkinService) BulkCheckin(ctx context.Context, eventID string, participantIDs []string, operatorID string) (int, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get event: %w", err)
	}

	count := 0
	now := time.Now()
	for _, id := range participantIDs {
		p, err := s.participantRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return count, fmt.Errorf("get participant: %w", err)
		}
		// Only rows belonging to this event; already-checked-in rows keep
		// their original timestamp.
		if p.EventID != eventID || p.CheckedIn() {
			continue
		}
		if err := s.participantRepo.SetCheckin(ctx, p.ID, now, domain.CheckInBulk, &operatorID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return count, fmt.Errorf("record check-in: %w", err)
		}
		count++
	}
	return count, nil
}

func (s *checkinService) UndoCheckin(ctx context.Context, participantID string) error {
	if err := s.participantRepo.ClearCheckin(ctx, participantID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("clear check-in: %w", err)
	}
	return nil
}

func (s *checkinService) Stats(ctx context.Context, eventID string) (*domain.CheckinStats, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	checkedIn, err := s.participantRepo.CountCheckedIn(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count checked in: %w", err)
	}
	rsvped, err := s.participantRepo.CountByRSVPStatus(ctx, eventID, domain.RSVPYes, domain.RSVPMaybe)
	if err != nil {
		return nil, fmt.Errorf("count rsvped: %w", err)
	}
	recent, err := s.participantRepo.ListRecentCheckins(ctx, eventID, recentCheckinLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent check-ins: %w", err)
	}

	feed := make([]domain.RecentCheckin, 0, len(recent))
	for _, pw := range recent {
		entry := domain.RecentCheckin{
			Name:   pw.User.FullName(),
			Method: pw.Participant.CheckInMethod.Humanize(),
		}
		if pw.Participant.CheckedInAt != nil {
			entry.Time = pw.Participant.CheckedInAt.Format("03:04 PM")
		}
		feed = append(feed, entry)
	}
	return &domain.CheckinStats{
		CheckedInCount: checkedIn,
		TotalRSVPed:    rsvped,
		RecentCheckins: feed,
	}, nil
}

func (s *checkinService) QRCodePNG(ctx context.Context, participantID string) ([]byte, error) {
	p, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	content := fmt.Sprintf("%s/checkin/verify?token=%s&event=%s&participant=%s",
		s.baseURL, url.QueryEscape(p.QRCodeToken), url.QueryEscape(p.EventID), url.QueryEscape(p.ID))
	png, err := s.qrEncoder.Encode(content, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

func invalidResult() *domain.VerificationResult {
	return &domain.VerificationResult{
		Status:  domain.VerificationInvalid,
		Message: "Invalid QR code or check-in link",
	}
}
