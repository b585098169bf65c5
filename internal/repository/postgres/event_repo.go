package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventbookingsystem/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, name, description, category, venue, price, image_url, start_time, capacity, reserved_count, owner_id, version, created_at, updated_at`

func scanEvent(row interface{ Scan(dest ...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull, categoryNull, imageNull sql.NullString
	var capacityNull sql.NullInt64
	err := row.Scan(
		&e.ID, &e.Name, &descNull, &categoryNull, &e.Venue, &e.Price, &imageNull,
		&e.StartTime, &capacityNull, &e.ReservedCount, &e.OwnerID, &e.Version,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if descNull.Valid {
		e.Description = descNull.String
	}
	if categoryNull.Valid {
		e.Category = categoryNull.String
	}
	if imageNull.Valid {
		e.ImageURL = imageNull.String
	}
	if capacityNull.Valid {
		c := int(capacityNull.Int64)
		e.Capacity = &c
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, description, category, venue, price, image_url, start_time, capacity, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var capacity any
	if e.Capacity != nil {
		capacity = *e.Capacity
	}
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.Description, e.Category, e.Venue, e.Price, e.ImageURL,
		e.StartTime, capacity, e.OwnerID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams, category string) ([]*domain.Event, int, error) {
	where := ""
	countArgs := []any{}
	listArgs := []any{params.PageSize, params.Offset()}
	if category != "" {
		where = ` WHERE category = $1`
		countArgs = append(countArgs, category)
		listArgs = []any{category, params.PageSize, params.Offset()}
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := "$1", "$2"
	if category != "" {
		limit, offset = "$2", "$3"
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events` + where + `
		ORDER BY start_time ASC
		LIMIT ` + limit + ` OFFSET ` + offset + `
	`
	rows, err := r.DB.QueryContext(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) Update(ctx context.Context, eventID string, update domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{eventID}

	add := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.Venue != nil {
		add("venue", *update.Venue)
	}
	if update.Price != nil {
		add("price", *update.Price)
	}
	if update.ImageURL != nil {
		add("image_url", *update.ImageURL)
	}
	if update.StartTime != nil {
		add("start_time", *update.StartTime)
	}
	if update.ClearCapacity {
		setClauses = append(setClauses, "capacity = NULL")
	} else if update.Capacity != nil {
		add("capacity", *update.Capacity)
	}

	query := `UPDATE events SET `
	for i, clause := range setClauses {
		if i > 0 {
			query += ", "
		}
		query += clause
	}
	query += ` WHERE id = $1 RETURNING ` + eventColumns

	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// UpdateReservedCount performs the compare-and-swap write on the event's
// reservation counter. The WHERE clause on version makes the check-and-write
// atomic at the store; zero rows affected means another writer got there
// first and the caller must re-read before trying again.
func (r *eventRepository) UpdateReservedCount(ctx context.Context, eventID string, reservedCount int, version int64) error {
	query := `
		UPDATE events
		SET reserved_count = $2, version = version + 1, updated_at = $3
		WHERE id = $1 AND version = $4
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, reservedCount, time.Now(), version)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrVersionMismatch
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
