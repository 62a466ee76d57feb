package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventgate/internal/domain"
)

type venueRepository struct {
	DB *sql.DB
}

// NewVenueRepository creates a VenueRepository backed by PostgreSQL.
func NewVenueRepository(db *sql.DB) domain.VenueRepository {
	return &venueRepository{DB: db}
}

func (r *venueRepository) Create(ctx context.Context, v *domain.Venue) error {
	query := `
		INSERT INTO venues (name, address, description, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		v.Name, v.Address, v.Description, v.Capacity, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	if isUniqueViolation(err, "venues_name_key") {
		return domain.ErrInvalidInput
	}
	return err
}

func (r *venueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	query := `
		SELECT id, name, address, description, capacity, created_at, updated_at
		FROM venues
		WHERE id = $1
	`
	v := &domain.Venue{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&v.ID, &v.Name, &v.Address, &v.Description, &v.Capacity, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *venueRepository) List(ctx context.Context) ([]*domain.Venue, error) {
	query := `
		SELECT id, name, address, description, capacity, created_at, updated_at
		FROM venues
		ORDER BY name
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []*domain.Venue
	for rows.Next() {
		v := &domain.Venue{}
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.Description, &v.Capacity, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if venues == nil {
		venues = []*domain.Venue{}
	}
	return venues, nil
}

func (r *venueRepository) Update(ctx context.Context, v *domain.Venue) error {
	query := `
		UPDATE venues
		SET name = $2, address = $3, description = $4, capacity = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, v.ID, v.Name, v.Address, v.Description, v.Capacity, v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "venues_name_key") {
			return domain.ErrInvalidInput
		}
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

func (r *venueRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		// events.venue_id is ON DELETE RESTRICT.
		if isForeignKeyViolation(err) {
			return domain.ErrVenueInUse
		}
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
