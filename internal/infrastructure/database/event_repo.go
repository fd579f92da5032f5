package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hypebot/internal/domain"
	"hypebot/internal/domain/entities"
	"hypebot/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	if event.MessageID == "" {
		return storeErr("create event", errors.New("message id is required"))
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (name, description, location, organizer, thumbnail_url, creator_id,
			scheduled_at, message_id, reminder_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		event.Name, event.Description, event.Location, event.Organizer, event.ThumbnailURL,
		event.CreatorID, timeToTimestamptz(event.ScheduledAt), event.MessageID, int16(event.ReminderSent),
	)
	var (
		id        int64
		createdAt = timeToTimestamptz(event.CreatedAt)
	)
	if err := row.Scan(&id, &createdAt); err != nil {
		return storeErr("create event", err)
	}
	event.ID = uint(id)
	event.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (*entities.Event, error) {
	return r.findOne(ctx, "get event by id",
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, int64(id))
}

// FindByName returns the earliest event called name.
func (r *EventRepository) FindByName(ctx context.Context, name string) (*entities.Event, error) {
	return r.findOne(ctx, "get event by name",
		`SELECT `+eventColumns+` FROM events WHERE name = $1 ORDER BY scheduled_at, id LIMIT 1`, name)
}

func (r *EventRepository) FindByMessageID(ctx context.Context, messageID string) (*entities.Event, error) {
	return r.findOne(ctx, "get event by message id",
		`SELECT `+eventColumns+` FROM events WHERE message_id = $1 ORDER BY scheduled_at, id LIMIT 1`, messageID)
}

func (r *EventRepository) findOne(ctx context.Context, op, query string, arg any) (*entities.Event, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, storeErr(op, err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[eventRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, storeErr(op, err)
	}
	e := eventToDomain(row)
	return &e, nil
}

func (r *EventRepository) ListOrderedByTime(ctx context.Context) ([]entities.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY scheduled_at, id`)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[eventRow])
	if err != nil {
		return nil, storeErr("list events", err)
	}
	out := make([]entities.Event, len(list))
	for i := range list {
		out[i] = eventToDomain(list[i])
	}
	return out, nil
}

// SetReminderSent only raises the flag; a missing row is not an error.
func (r *EventRepository) SetReminderSent(ctx context.Context, id uint, flag entities.ReminderFlag) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE events SET reminder_sent = $2 WHERE id = $1 AND reminder_sent < $2`,
		int64(id), int16(flag))
	if err != nil {
		return storeErr("set reminder sent", err)
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, int64(id)); err != nil {
		return storeErr("delete event", err)
	}
	return nil
}

func (r *EventRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	return &domain.StoreError{Op: op, Err: fmt.Errorf("postgres: %w", err)}
}
