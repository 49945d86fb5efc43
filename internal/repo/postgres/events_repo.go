package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportnest/sportnest/internal/domain/event"
	"github.com/sportnest/sportnest/internal/observability"
)

type EventsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEventsRepo(pool *pgxpool.Pool, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *EventsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// registered count rides along on every read so handlers never need a second query.
const eventColumns = `
	e.id,
	e.name,
	e.description,
	e.venue,
	e.facilities,
	e.requested_items,
	e.date,
	e.start_time,
	e.end_time,
	e.capacity,
	e.registration_fee,
	e.status,
	e.submitter_id,
	(SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id) AS registered_count,
	e.created_at,
	e.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var e event.Event
	var status string
	var itemsRaw []byte

	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.Venue,
		&e.Facilities,
		&itemsRaw,
		&e.Date,
		&e.StartTime,
		&e.EndTime,
		&e.Capacity,
		&e.RegistrationFee,
		&status,
		&e.SubmitterID,
		&e.RegisteredCount,
		&e.CreatedAt,
		&e.UpdatedAt,
	)

	if err != nil {
		return event.Event{}, err
	}

	e.Status = event.Status(status)

	if len(itemsRaw) > 0 {
		if err := json.Unmarshal(itemsRaw, &e.RequestedItems); err != nil {
			return event.Event{}, err
		}
	}

	return e, nil
}

func (r *EventsRepo) Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
	e := event.NewFromCreateRequest(req)

	items, err := json.Marshal(e.RequestedItems)
	if err != nil {
		return event.Event{}, err
	}

	err = r.observe("events.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO events
				(id, name, description, venue, facilities, requested_items, date, start_time, end_time,
				 capacity, registration_fee, status, submitter_id, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6::jsonb,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
			e.ID, e.Name, e.Description, e.Venue, e.Facilities, string(items), e.Date, e.StartTime, e.EndTime,
			e.Capacity, e.RegistrationFee, string(e.Status), e.SubmitterID, e.CreatedAt, e.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	var e event.Event
	var err error

	err = r.observe("events.get_by_id", func() error {
		var scanErr error
		e, scanErr = scanEvent(r.pool.QueryRow(ctx,
			`SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}

	return e, nil
}

// ListApproved is the public listing: approved events only, date ascending.
func (r *EventsRepo) ListApproved(ctx context.Context, filter event.ListApprovedFilter) ([]event.Event, int, error) {
	query := `SELECT ` + eventColumns + `, COUNT(*) OVER() AS total
		FROM events e
		WHERE e.status = 'approved'`

	var args []interface{}
	argPos := 1

	if filter.Query != nil && *filter.Query != "" {
		query += fmt.Sprintf(" AND (e.name ILIKE $%d OR e.venue ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+*filter.Query+"%")
		argPos++
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY e.date ASC, e.id ASC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	return r.queryEventsWithTotal(ctx, "events.list_approved", query, args)
}

// ListBySubmitter returns a member's own events, any status, newest first.
func (r *EventsRepo) ListBySubmitter(ctx context.Context, submitterID string) ([]event.Event, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("events.list_by_submitter", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT `+eventColumns+` FROM events e
			 WHERE e.submitter_id = $1
			 ORDER BY e.created_at DESC, e.id ASC`, submitterID)
		return err
	})

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]event.Event, 0)

	for rows.Next() {
		e, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, e)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

// ListForModeration is the admin view: any status, searchable, sortable, paginated.
func (r *EventsRepo) ListForModeration(ctx context.Context, filter event.ModerationFilter) ([]event.Event, int, error) {
	query := `SELECT ` + eventColumns + `, COUNT(*) OVER() AS total FROM events e`

	var conds []string
	var args []interface{}
	argPos := 1

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("e.status = $%d", argPos))
		args = append(args, string(*filter.Status))
		argPos++
	}

	if filter.Query != nil && *filter.Query != "" {
		conds = append(conds, fmt.Sprintf("(e.name ILIKE $%d OR e.venue ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*filter.Query+"%")
		argPos++
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// sort column is whitelisted; never interpolate raw input
	col := "e.date"
	switch filter.Sort {
	case "name":
		col = "e.name"
	case "capacity":
		col = "e.capacity"
	}

	dir := "ASC"
	if filter.Order == "desc" {
		dir = "DESC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	query += fmt.Sprintf(" ORDER BY %s %s, e.id ASC LIMIT $%d OFFSET $%d", col, dir, argPos, argPos+1)
	args = append(args, limit, (page-1)*limit)

	return r.queryEventsWithTotal(ctx, "events.list_for_moderation", query, args)
}

func (r *EventsRepo) queryEventsWithTotal(ctx context.Context, op, query string, args []interface{}) ([]event.Event, int, error) {
	var rows pgx.Rows
	var err error

	err = r.observe(op, func() error {
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})

	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]event.Event, 0)
	total := 0

	for rows.Next() {
		var e event.Event
		var status string
		var itemsRaw []byte
		var t int

		err = rows.Scan(
			&e.ID,
			&e.Name,
			&e.Description,
			&e.Venue,
			&e.Facilities,
			&itemsRaw,
			&e.Date,
			&e.StartTime,
			&e.EndTime,
			&e.Capacity,
			&e.RegistrationFee,
			&status,
			&e.SubmitterID,
			&e.RegisteredCount,
			&e.CreatedAt,
			&e.UpdatedAt,
			&t,
		)

		if err != nil {
			return nil, 0, err
		}

		e.Status = event.Status(status)
		if len(itemsRaw) > 0 {
			if err = json.Unmarshal(itemsRaw, &e.RequestedItems); err != nil {
				return nil, 0, err
			}
		}

		total = t
		out = append(out, e)
	}

	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return out, total, nil
}

// SetStatus is the moderation transition. Any current status is accepted;
// re-applying the same status is a no-op update.
func (r *EventsRepo) SetStatus(ctx context.Context, id string, status event.Status) (event.Event, error) {
	var err error

	err = r.observe("events.set_status", func() error {
		tag, execErr := r.pool.Exec(ctx,
			`UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`,
			id, string(status),
		)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return event.ErrNotFound
		}
		return nil
	})

	if err != nil {
		return event.Event{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *EventsRepo) Update(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error) {
	items, err := json.Marshal(req.RequestedItems)
	if err != nil {
		return event.Event{}, err
	}

	err = r.observe("events.update", func() error {
		tag, execErr := r.pool.Exec(ctx,
			`UPDATE events
				SET name = $2,
					description = $3,
					venue = $4,
					facilities = $5,
					requested_items = $6::jsonb,
					date = $7,
					start_time = $8,
					end_time = $9,
					capacity = $10,
					registration_fee = $11,
					updated_at = NOW()
			 WHERE id = $1`,
			id, req.Name, req.Description, req.Venue, req.Facilities, string(items),
			req.Date, req.StartTime, req.EndTime, req.Capacity, req.RegistrationFee,
		)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return event.ErrNotFound
		}
		return nil
	})

	if err != nil {
		return event.Event{}, err
	}

	return r.GetByID(ctx, id)
}

// Delete removes the event and its registrations in one transaction.
func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	return r.observe("events.delete", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if _, err = tx.Exec(ctx, `DELETE FROM registrations WHERE event_id = $1`, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return event.ErrNotFound
		}

		return tx.Commit(ctx)
	})
}
