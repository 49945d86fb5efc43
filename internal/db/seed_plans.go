package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportnest/sportnest/internal/domain/plan"
)

// EnsureDefaultPlans inserts the stock membership plans if the table is empty.
func EnsureDefaultPlans(ctx context.Context, pool *pgxpool.Pool) error {
	var count int

	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM plans`).Scan(&count)

	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	now := time.Now().UTC()

	defaults := []plan.Plan{
		{ID: uuid.NewString(), Name: "Monthly", DurationDays: 30, Price: 25, Perks: []string{"club access", "open training sessions"}, CreatedAt: now},
		{ID: uuid.NewString(), Name: "Quarterly", DurationDays: 90, Price: 65, Perks: []string{"club access", "open training sessions", "guest passes"}, CreatedAt: now},
		{ID: uuid.NewString(), Name: "Annual", DurationDays: 365, Price: 220, Perks: []string{"club access", "open training sessions", "guest passes", "priority event registration"}, CreatedAt: now},
	}

	for _, p := range defaults {
		_, err = pool.Exec(ctx,
			`INSERT INTO plans (id, name, duration_days, price, perks, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			p.ID, p.Name, p.DurationDays, p.Price, p.Perks, p.CreatedAt,
		)

		if err != nil {
			return err
		}
	}

	return nil
}
