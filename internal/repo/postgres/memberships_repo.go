package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportnest/sportnest/internal/domain/plan"
	"github.com/sportnest/sportnest/internal/observability"
)

type MembershipsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewMembershipsRepo(pool *pgxpool.Pool, prom *observability.Prom) *MembershipsRepo {
	return &MembershipsRepo{pool: pool, prom: prom}
}

func (r *MembershipsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *MembershipsRepo) ListPlans(ctx context.Context) ([]plan.Plan, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("plans.list", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, name, duration_days, price, perks, created_at
			 FROM plans
			 ORDER BY duration_days ASC`)
		return err
	})

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]plan.Plan, 0)

	for rows.Next() {
		var p plan.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.DurationDays, &p.Price, &p.Perks, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *MembershipsRepo) GetPlan(ctx context.Context, id string) (plan.Plan, error) {
	var p plan.Plan

	err := r.observe("plans.get", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, duration_days, price, perks, created_at FROM plans WHERE id = $1`, id,
		).Scan(&p.ID, &p.Name, &p.DurationDays, &p.Price, &p.Perks, &p.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plan.Plan{}, plan.ErrPlanNotFound
		}
		return plan.Plan{}, err
	}

	return p, nil
}

// Choose replaces the member's current membership with a fresh one on the
// given plan, starting now.
func (r *MembershipsRepo) Choose(ctx context.Context, memberID, planID string) (plan.Membership, error) {
	p, err := r.GetPlan(ctx, planID)
	if err != nil {
		return plan.Membership{}, err
	}

	now := time.Now().UTC()
	m := plan.Membership{
		ID:        uuid.NewString(),
		MemberID:  memberID,
		PlanID:    p.ID,
		PlanName:  p.Name,
		StartedAt: now,
		ExpiresAt: now.AddDate(0, 0, p.DurationDays),
		UpdatedAt: now,
	}

	err = r.observe("memberships.choose", func() error {
		tx, txErr := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if txErr != nil {
			return txErr
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if _, txErr = tx.Exec(ctx, `DELETE FROM memberships WHERE member_id = $1`, memberID); txErr != nil {
			return txErr
		}

		_, txErr = tx.Exec(ctx,
			`INSERT INTO memberships (id, member_id, plan_id, started_at, expires_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			m.ID, m.MemberID, m.PlanID, m.StartedAt, m.ExpiresAt, m.UpdatedAt,
		)
		if txErr != nil {
			return txErr
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return plan.Membership{}, err
	}

	return m, nil
}

// Renew extends the membership by one plan period. An expired membership
// restarts from now instead of stacking onto the lapsed expiry.
func (r *MembershipsRepo) Renew(ctx context.Context, memberID string) (plan.Membership, error) {
	current, err := r.GetForMember(ctx, memberID)
	if err != nil {
		return plan.Membership{}, err
	}

	p, err := r.GetPlan(ctx, current.PlanID)
	if err != nil {
		return plan.Membership{}, err
	}

	now := time.Now().UTC()

	base := current.ExpiresAt
	if base.Before(now) {
		base = now
	}

	newExpiry := base.AddDate(0, 0, p.DurationDays)

	err = r.observe("memberships.renew", func() error {
		tag, execErr := r.pool.Exec(ctx,
			`UPDATE memberships SET expires_at = $2, updated_at = NOW() WHERE member_id = $1`,
			memberID, newExpiry,
		)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return plan.ErrNoMembership
		}
		return nil
	})

	if err != nil {
		return plan.Membership{}, err
	}

	current.ExpiresAt = newExpiry
	current.UpdatedAt = now
	return current, nil
}

func (r *MembershipsRepo) GetForMember(ctx context.Context, memberID string) (plan.Membership, error) {
	var m plan.Membership

	err := r.observe("memberships.get_for_member", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT m.id, m.member_id, m.plan_id, p.name, m.started_at, m.expires_at, m.updated_at
			 FROM memberships m
			 JOIN plans p ON p.id = m.plan_id
			 WHERE m.member_id = $1`,
			memberID,
		).Scan(&m.ID, &m.MemberID, &m.PlanID, &m.PlanName, &m.StartedAt, &m.ExpiresAt, &m.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plan.Membership{}, plan.ErrNoMembership
		}
		return plan.Membership{}, err
	}

	return m, nil
}
