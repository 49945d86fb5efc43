package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportnest/sportnest/internal/domain/event"
	"github.com/sportnest/sportnest/internal/domain/registration"
	"github.com/sportnest/sportnest/internal/observability"
)

type RegistrationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRegistrationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RegistrationsRepo {
	return &RegistrationsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *RegistrationsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *RegistrationsRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return repo.pool.BeginTx(ctx, pgx.TxOptions{})
}

// CreateTx performs the capacity check and the insert inside the caller's
// transaction. The event row is locked first, so two registrations racing
// for the last slot serialize and the loser sees the event full.
func (repo *RegistrationsRepo) CreateTx(ctx context.Context, tx pgx.Tx, req registration.CreateRegistrationRequest) (res registration.Result, err error) {
	var capacity int
	var current int

	err = repo.observe("registrations.create_tx.capacity_lock", func() error {
		return tx.QueryRow(ctx, `
		SELECT e.capacity,
			(SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id) AS current
		FROM events e
		WHERE e.id = $1
		FOR UPDATE
	`, req.EventID).Scan(&capacity, &current)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = event.ErrNotFound
		}

		return
	}

	if current >= capacity {
		err = event.ErrEventFull
		return
	}

	reg := registration.NewFromCreateRequest(req)

	err = repo.observe("registrations.create_tx.insert", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO registrations (id, event_id, name, email, phone, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, reg.ID, reg.EventID, reg.Name, reg.Email, reg.Phone, reg.CreatedAt)
		return e
	})

	if err != nil {
		return
	}

	res = registration.Result{
		Registration:    reg,
		RegisteredCount: current + 1,
		Capacity:        capacity,
	}
	return
}

// Create wraps CreateTx in its own transaction for callers that have nothing
// else to enqueue alongside the registration.
func (repo *RegistrationsRepo) Create(ctx context.Context, req registration.CreateRegistrationRequest) (res registration.Result, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	res, err = repo.CreateTx(ctx, tx, req)

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	return
}

func (repo *RegistrationsRepo) ListByEvent(ctx context.Context, eventID string) (regs []registration.Registration, err error) {
	var rows pgx.Rows

	err = repo.observe("registrations.list_by_event", func() error {
		rows, err = repo.pool.Query(ctx,
			`
	SELECT id, event_id, name, email, phone, created_at
	FROM registrations
	WHERE event_id = $1
	ORDER BY created_at ASC, id ASC
	`,
			eventID,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	regs = make([]registration.Registration, 0)

	for rows.Next() {
		var r registration.Registration

		e := rows.Scan(&r.ID, &r.EventID, &r.Name, &r.Email, &r.Phone, &r.CreatedAt)

		if e != nil {
			err = e
			return
		}
		regs = append(regs, r)
	}

	if e := rows.Err(); e != nil {
		err = e
		return
	}

	// distinguish "no registrations yet" from "no such event"
	if len(regs) == 0 {
		var dummy string

		err = repo.observe("registrations.list_by_event.check_event_exists", func() error {
			return repo.pool.QueryRow(ctx, `SELECT id FROM events WHERE id = $1`, eventID).Scan(&dummy)
		})

		if errors.Is(err, pgx.ErrNoRows) {
			err = event.ErrNotFound
			return
		}

		if err != nil {
			return
		}
	}

	return
}

func (repo *RegistrationsRepo) CountForEvent(ctx context.Context, eventID string) (int, error) {
	var total int
	err := repo.observe("registrations.count_for_event", func() error {
		return repo.pool.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&total)
	})
	return total, err
}
