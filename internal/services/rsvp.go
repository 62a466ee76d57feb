package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"eventgate/internal/domain"
)

type rsvpService struct {
	participantRepo domain.ParticipantRepository
	eventRepo       domain.EventRepository
	userRepo        domain.UserRepository
	emailService    domain.EmailService
	logger          *slog.Logger
}

// NewRSVPService creates an RSVPService. emailService may be nil, in which
// case no confirmation emails are sent.
func NewRSVPService(
	participantRepo domain.ParticipantRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.RSVPService {
	return &rsvpService{
		participantRepo: participantRepo,
		eventRepo:       eventRepo,
		userRepo:        userRepo,
		emailService:    emailService,
		logger:          logger,
	}
}

func (s *rsvpService) Respond(ctx context.Context, userID, eventID string, status domain.RSVPStatus, answers map[string]string) (*domain.EventParticipant, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// RSVP writes are rejected once the deadline passes, with no admin
	// bypass.
	now := time.Now()
	if !event.RSVPOpen(now) {
		return nil, domain.ErrDeadlinePassed
	}

	participant, err := s.participantRepo.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get participant: %w", err)
		}
		// First response: create the pending baseline record, then apply the
		// transition.
		participant = domain.NewEventParticipant(userID, eventID, now, now)
		if err := createParticipantWithToken(ctx, s.participantRepo, participant); err != nil {
			return nil, fmt.Errorf("create participant: %w", err)
		}
	}

	// Answers are optional: a status-only re-RSVP keeps whatever answers are
	// already stored.
	cleaned := participant.RSVPAnswers
	if len(answers) > 0 {
		cleaned = cleanAnswers(answers, len(event.CustomQuestions))
	} else if cleaned == nil {
		cleaned = map[string]string{}
	}
	if err := s.participantRepo.UpdateRSVP(ctx, participant.ID, status, now, cleaned); err != nil {
		return nil, fmt.Errorf("update rsvp: %w", err)
	}
	participant.RSVPStatus = status
	participant.RespondedAt = &now
	participant.RSVPAnswers = cleaned

	s.sendConfirmation(ctx, userID, event, status)
	return participant, nil
}

func (s *rsvpService) Status(ctx context.Context, userID, eventID string) (*domain.EventParticipant, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	participant, err := s.participantRepo.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Not yet a participant: report the pending baseline without
			// persisting anything.
			now := time.Now()
			return domain.NewEventParticipant(userID, eventID, now, now), nil
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return participant, nil
}

// cleanAnswers trims answers to the event's custom questions and keeps only
// non-empty ones, keyed by question index.
func cleanAnswers(answers map[string]string, questionCount int) map[string]string {
	cleaned := map[string]string{}
	for key, value := range answers {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= questionCount {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		cleaned[key] = value
	}
	return cleaned
}

// sendConfirmation delivers the RSVP confirmation email. Delivery failures
// are logged and swallowed; they never fail the RSVP itself.
func (s *rsvpService) sendConfirmation(ctx context.Context, userID string, event *domain.Event, status domain.RSVPStatus) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "rsvp confirmation: load user failed", "user_id", userID, "err", err)
		return
	}
	data := &domain.RSVPConfirmationEmailData{
		Email:     user.Email,
		FirstName: user.FirstName,
		EventName: event.Name,
		Status:    status.Humanize(),
	}
	if err := s.emailService.SendRSVPConfirmation(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "rsvp confirmation email failed", "user_id", userID, "event_id", event.ID, "err", err)
	}
}
