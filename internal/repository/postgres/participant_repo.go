package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventgate/internal/domain"
)

type participantRepository struct {
	DB *sql.DB
}

// NewParticipantRepository creates a ParticipantRepository backed by PostgreSQL.
func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{DB: db}
}

const participantColumns = `id, user_id, event_id, role, rsvp_status, responded_at, invited_at, notes, rsvp_answers, qr_code_token, checked_in_at, check_in_method, checked_in_by_id, created_at, updated_at`

func scanParticipant(row interface{ Scan(...any) error }) (*domain.EventParticipant, error) {
	p := &domain.EventParticipant{}
	var answers []byte
	var method, checkedInBy sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.EventID, &p.Role, &p.RSVPStatus,
		&p.RespondedAt, &p.InvitedAt, &p.Notes, &answers, &p.QRCodeToken,
		&p.CheckedInAt, &method, &checkedInBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &p.RSVPAnswers); err != nil {
			return nil, fmt.Errorf("decode rsvp answers: %w", err)
		}
	}
	if p.RSVPAnswers == nil {
		p.RSVPAnswers = map[string]string{}
	}
	p.CheckInMethod = domain.CheckInMethod(method.String)
	p.CheckedInByID = checkedInBy.String
	return p, nil
}

func (r *participantRepository) Create(ctx context.Context, p *domain.EventParticipant) error {
	answers, err := json.Marshal(p.RSVPAnswers)
	if err != nil {
		return fmt.Errorf("encode rsvp answers: %w", err)
	}
	query := `
		INSERT INTO event_participants (user_id, event_id, role, rsvp_status, responded_at, invited_at, notes, rsvp_answers, qr_code_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err = r.DB.QueryRowContext(ctx, query,
		p.UserID, p.EventID, p.Role, p.RSVPStatus, p.RespondedAt, p.InvitedAt,
		p.Notes, answers, p.QRCodeToken, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err, "event_participants_qr_code_token_key") {
			return domain.ErrDuplicateToken
		}
		if isUniqueViolation(err, "event_participants_user_id_event_id_key") {
			return domain.ErrAlreadyParticipant
		}
		return err
	}
	return nil
}

func (r *participantRepository) GetByID(ctx context.Context, id string) (*domain.EventParticipant, error) {
	query := `SELECT ` + participantColumns + ` FROM event_participants WHERE id = $1`
	p, err := scanParticipant(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) GetByUserAndEvent(ctx context.Context, userID, eventID string) (*domain.EventParticipant, error) {
	query := `SELECT ` + participantColumns + ` FROM event_participants WHERE user_id = $1 AND event_id = $2`
	p, err := scanParticipant(r.DB.QueryRowContext(ctx, query, userID, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) GetByCheckinTriple(ctx context.Context, token, eventID, participantID string) (*domain.EventParticipant, error) {
	// All three fields must match; a miss carries no detail about which one
	// differed.
	query := `SELECT ` + participantColumns + ` FROM event_participants WHERE qr_code_token = $1 AND event_id = $2 AND id = $3`
	p, err := scanParticipant(r.DB.QueryRowContext(ctx, query, token, eventID, participantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

const participantWithUserQuery = `
	SELECT ep.id, ep.user_id, ep.event_id, ep.role, ep.rsvp_status, ep.responded_at, ep.invited_at, ep.notes, ep.rsvp_answers, ep.qr_code_token, ep.checked_in_at, ep.check_in_method, ep.checked_in_by_id, ep.created_at, ep.updated_at,
	       u.id, u.email, u.first_name, u.last_name, u.phone, u.company, u.text_capable, u.role
	FROM event_participants ep
	JOIN users u ON u.id = ep.user_id
`

func scanParticipantWithUser(rows *sql.Rows) (*domain.ParticipantWithUser, error) {
	p := &domain.EventParticipant{}
	u := &domain.User{}
	var answers []byte
	var method, checkedInBy sql.NullString
	err := rows.Scan(&p.ID, &p.UserID, &p.EventID, &p.Role, &p.RSVPStatus,
		&p.RespondedAt, &p.InvitedAt, &p.Notes, &answers, &p.QRCodeToken,
		&p.CheckedInAt, &method, &checkedInBy, &p.CreatedAt, &p.UpdatedAt,
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.Company, &u.TextCapable, &u.Role)
	if err != nil {
		return nil, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &p.RSVPAnswers); err != nil {
			return nil, fmt.Errorf("decode rsvp answers: %w", err)
		}
	}
	if p.RSVPAnswers == nil {
		p.RSVPAnswers = map[string]string{}
	}
	p.CheckInMethod = domain.CheckInMethod(method.String)
	p.CheckedInByID = checkedInBy.String
	return &domain.ParticipantWithUser{Participant: p, User: u}, nil
}

func (r *participantRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.ParticipantWithUser, error) {
	query := participantWithUserQuery + `
	WHERE ep.event_id = $1
	ORDER BY u.last_name, u.first_name
	`
	return r.queryParticipantsWithUser(ctx, query, eventID)
}

func (r *participantRepository) ListRecentCheckins(ctx context.Context, eventID string, limit int) ([]*domain.ParticipantWithUser, error) {
	query := participantWithUserQuery + `
	WHERE ep.event_id = $1 AND ep.checked_in_at IS NOT NULL
	ORDER BY ep.checked_in_at DESC
	LIMIT $2
	`
	return r.queryParticipantsWithUser(ctx, query, eventID, limit)
}

func (r *participantRepository) UpdateRSVP(ctx context.Context, id string, status domain.RSVPStatus, respondedAt time.Time, answers map[string]string) error {
	encoded, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode rsvp answers: %w", err)
	}
	query := `
		UPDATE event_participants
		SET rsvp_status = $2, responded_at = $3, rsvp_answers = $4, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, id, status, respondedAt, encoded)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *participantRepository) UpdateRole(ctx context.Context, id string, role domain.ParticipantRole, notes string) error {
	query := `
		UPDATE event_participants
		SET role = $2, notes = $3, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, id, role, notes)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *participantRepository) SetCheckin(ctx context.Context, id string, at time.Time, method domain.CheckInMethod, checkedInBy *string) error {
	// The NULL guard makes concurrent check-ins first-write-wins: the losing
	// request matches zero rows and the original timestamp survives.
	query := `
		UPDATE event_participants
		SET checked_in_at = $2, check_in_method = $3, checked_in_by_id = $4, updated_at = NOW()
		WHERE id = $1 AND checked_in_at IS NULL
	`
	res, err := r.DB.ExecContext(ctx, query, id, at, method, checkedInBy)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *participantRepository) ClearCheckin(ctx context.Context, id string) error {
	query := `
		UPDATE event_participants
		SET checked_in_at = NULL, check_in_method = NULL, checked_in_by_id = NULL, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *participantRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM event_participants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *participantRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_participants WHERE event_id = $1`, eventID).Scan(&count)
	return count, err
}

func (r *participantRepository) CountByRSVPStatus(ctx context.Context, eventID string, statuses ...domain.RSVPStatus) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_participants WHERE event_id = $1 AND rsvp_status = ANY($2)`,
		eventID, statusArray(statuses)).Scan(&count)
	return count, err
}

func (r *participantRepository) CountCheckedIn(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_participants WHERE event_id = $1 AND checked_in_at IS NOT NULL`,
		eventID).Scan(&count)
	return count, err
}

func (r *participantRepository) queryParticipantsWithUser(ctx context.Context, query string, args ...any) ([]*domain.ParticipantWithUser, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.ParticipantWithUser
	for rows.Next() {
		pw, err := scanParticipantWithUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, pw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if result == nil {
		result = []*domain.ParticipantWithUser{}
	}
	return result, nil
}

func statusArray(statuses []domain.RSVPStatus) any {
	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}
	return pq.Array(ss)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
