package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportnest/sportnest/internal/domain/coach"
	"github.com/sportnest/sportnest/internal/observability"
)

type CoachesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCoachesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CoachesRepo {
	return &CoachesRepo{pool: pool, prom: prom}
}

func (r *CoachesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CoachesRepo) Create(ctx context.Context, req coach.CreateCoachRequest) (coach.Coach, error) {
	c := coach.NewFromCreateRequest(req)

	err := r.observe("coaches.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO coaches (id, name, specialty, email, phone, salary, hired_at, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			c.ID, c.Name, c.Specialty, c.Email, c.Phone, c.Salary, c.HiredAt, c.CreatedAt, c.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return coach.Coach{}, err
	}

	return c, nil
}

func (r *CoachesRepo) List(ctx context.Context) ([]coach.Coach, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("coaches.list", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, name, specialty, email, phone, salary, hired_at, created_at, updated_at
			 FROM coaches ORDER BY name ASC, id ASC`)
		return err
	})

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]coach.Coach, 0)

	for rows.Next() {
		var c coach.Coach
		if err := rows.Scan(&c.ID, &c.Name, &c.Specialty, &c.Email, &c.Phone, &c.Salary, &c.HiredAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (r *CoachesRepo) GetByID(ctx context.Context, id string) (coach.Coach, error) {
	var c coach.Coach

	err := r.observe("coaches.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, specialty, email, phone, salary, hired_at, created_at, updated_at
			 FROM coaches WHERE id = $1`, id,
		).Scan(&c.ID, &c.Name, &c.Specialty, &c.Email, &c.Phone, &c.Salary, &c.HiredAt, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return coach.Coach{}, coach.ErrNotFound
		}
		return coach.Coach{}, err
	}

	return c, nil
}

func (r *CoachesRepo) Update(ctx context.Context, id string, req coach.UpdateCoachRequest) (coach.Coach, error) {
	var c coach.Coach

	err := r.observe("coaches.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE coaches
				SET name = $2, specialty = $3, email = $4, phone = $5, salary = $6, hired_at = $7, updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, name, specialty, email, phone, salary, hired_at, created_at, updated_at`,
			id, req.Name, req.Specialty, req.Email, req.Phone, req.Salary, req.HiredAt,
		).Scan(&c.ID, &c.Name, &c.Specialty, &c.Email, &c.Phone, &c.Salary, &c.HiredAt, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return coach.Coach{}, coach.ErrNotFound
		}
		return coach.Coach{}, err
	}

	return c, nil
}

func (r *CoachesRepo) Delete(ctx context.Context, id string) error {
	return r.observe("coaches.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM coaches WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return coach.ErrNotFound
		}

		return nil
	})
}
