package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"eventgate/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository creates an EventRepository backed by PostgreSQL.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `id, name, description, event_date, rsvp_deadline, max_attendees, venue_id, creator_id, custom_questions, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var questions []byte
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.EventDate, &e.RSVPDeadline,
		&e.MaxAttendees, &e.VenueID, &e.CreatorID, &questions, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &e.CustomQuestions); err != nil {
			return nil, fmt.Errorf("decode custom questions: %w", err)
		}
	}
	if e.CustomQuestions == nil {
		e.CustomQuestions = []string{}
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	questions, err := json.Marshal(e.CustomQuestions)
	if err != nil {
		return fmt.Errorf("encode custom questions: %w", err)
	}
	query := `
		INSERT INTO events (name, description, event_date, rsvp_deadline, max_attendees, venue_id, creator_id, custom_questions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.Description, e.EventDate, e.RSVPDeadline, e.MaxAttendees,
		e.VenueID, e.CreatorID, questions, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY event_date`
	return r.queryEvents(ctx, query)
}

func (r *eventRepository) ListUpcomingByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `
		SELECT e.id, e.name, e.description, e.event_date, e.rsvp_deadline, e.max_attendees, e.venue_id, e.creator_id, e.custom_questions, e.created_at, e.updated_at
		FROM events e
		JOIN event_participants ep ON ep.event_id = e.id
		WHERE ep.user_id = $1 AND e.event_date >= NOW()
		ORDER BY e.event_date
	`
	return r.queryEvents(ctx, query, userID)
}

// GetCurrent returns the latest-dated event, whether or not it is upcoming.
func (r *eventRepository) GetCurrent(ctx context.Context) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY event_date DESC LIMIT 1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	questions, err := json.Marshal(e.CustomQuestions)
	if err != nil {
		return fmt.Errorf("encode custom questions: %w", err)
	}
	query := `
		UPDATE events
		SET name = $2, description = $3, event_date = $4, rsvp_deadline = $5,
		    max_attendees = $6, venue_id = $7, custom_questions = $8, updated_at = $9
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Name, e.Description, e.EventDate, e.RSVPDeadline,
		e.MaxAttendees, e.VenueID, questions, e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	// event_participants rows cascade with the event.
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) CountByVenueID(ctx context.Context, venueID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE venue_id = $1`, venueID).Scan(&count)
	return count, err
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}
