package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"eventgate/internal/domain"
)

// checkinTimeFormat is the display format for check-in timestamps in exports
// (MM/DD/YYYY hh:mm AM/PM).
const checkinTimeFormat = "01/02/2006 03:04 PM"

type rosterService struct {
	participantRepo domain.ParticipantRepository
	eventRepo       domain.EventRepository
	userRepo        domain.UserRepository
	emailService    domain.EmailService
	logger          *slog.Logger
	baseURL         string
}

// NewRosterService creates a RosterService.
func NewRosterService(
	participantRepo domain.ParticipantRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	baseURL string,
) domain.RosterService {
	return &rosterService{
		participantRepo: participantRepo,
		eventRepo:       eventRepo,
		userRepo:        userRepo,
		emailService:    emailService,
		logger:          logger,
		baseURL:         baseURL,
	}
}

func (s *rosterService) Add(ctx context.Context, eventID, userID string, role domain.ParticipantRole, notes string) (*domain.EventParticipant, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	participant := domain.NewEventParticipant(userID, eventID, now, now)
	participant.Role = role
	participant.Notes = notes
	participant.InvitedAt = &now
	if err := createParticipantWithToken(ctx, s.participantRepo, participant); err != nil {
		if errors.Is(err, domain.ErrAlreadyParticipant) {
			return nil, domain.ErrAlreadyParticipant
		}
		return nil, fmt.Errorf("create participant: %w", err)
	}
	return participant, nil
}

func (s *rosterService) UpdateRole(ctx context.Context, eventID, participantID string, role domain.ParticipantRole, notes string) (*domain.EventParticipant, error) {
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if participant.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	if err := s.participantRepo.UpdateRole(ctx, participantID, role, notes); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	participant.Role = role
	participant.Notes = notes
	return participant, nil
}

func (s *rosterService) Remove(ctx context.Context, eventID, participantID string) error {
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return err
	}
	if participant.EventID != eventID {
		return domain.ErrNotFound
	}
	return s.participantRepo.Delete(ctx, participantID)
}

func (s *rosterService) List(ctx context.Context, eventID string) ([]*domain.ParticipantWithUser, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.participantRepo.ListByEventID(ctx, eventID)
}

func (s *rosterService) BulkInvite(ctx context.Context, eventID string, userIDs []string) (int, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}

	invited := 0
	now := time.Now()
	for _, userID := range dedupe(userIDs) {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return invited, fmt.Errorf("get user: %w", err)
		}
		if _, err := s.participantRepo.GetByUserAndEvent(ctx, userID, eventID); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return invited, fmt.Errorf("get participant: %w", err)
		}

		participant := domain.NewEventParticipant(userID, eventID, now, now)
		participant.InvitedAt = &now
		if err := createParticipantWithToken(ctx, s.participantRepo, participant); err != nil {
			if errors.Is(err, domain.ErrAlreadyParticipant) {
				continue
			}
			return invited, fmt.Errorf("create participant: %w", err)
		}
		invited++

		if s.emailService != nil {
			data := &domain.InvitationEmailData{
				Email:     user.Email,
				FirstName: user.FirstName,
				EventName: event.Name,
				EventDate: event.EventDate.Format("01/02/2006"),
				RSVPURL:   s.baseURL + "/rsvp/events/" + event.ID,
			}
			if err := s.emailService.SendEventInvitation(ctx, data); err != nil {
				s.logger.ErrorContext(ctx, "invitation email failed", "user_id", userID, "event_id", eventID, "err", err)
			}
		}
	}
	return invited, nil
}

func (s *rosterService) ExportCSV(ctx context.Context, eventID string, w io.Writer) error {
	participants, err := s.List(ctx, eventID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Name", "Email", "Company", "Phone", "RSVP Status", "Role", "Checked In", "Check-in Time"}); err != nil {
		return err
	}
	for _, pw := range participants {
		checkedIn := "No"
		checkinTime := ""
		if pw.Participant.CheckedIn() {
			checkedIn = "Yes"
			checkinTime = pw.Participant.CheckedInAt.Format(checkinTimeFormat)
		}
		row := []string{
			pw.User.FullName(),
			pw.User.Email,
			pw.User.Company,
			pw.User.Phone,
			pw.Participant.RSVPStatus.Humanize(),
			pw.Participant.Role.Humanize(),
			checkedIn,
			checkinTime,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
