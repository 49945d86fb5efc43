package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportnest/sportnest/internal/domain/report"
	"github.com/sportnest/sportnest/internal/observability"
)

// ReportsRepo produces the one summary aggregate every renderer consumes.
type ReportsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewReportsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ReportsRepo {
	return &ReportsRepo{pool: pool, prom: prom}
}

func (r *ReportsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func rangeConds(filter report.Filter, argPos *int, args *[]interface{}) []string {
	var conds []string

	if filter.From != nil {
		conds = append(conds, fmt.Sprintf("e.date >= $%d", *argPos))
		*args = append(*args, *filter.From)
		*argPos++
	}

	if filter.To != nil {
		conds = append(conds, fmt.Sprintf("e.date <= $%d", *argPos))
		*args = append(*args, *filter.To)
		*argPos++
	}

	return conds
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (r *ReportsRepo) Summary(ctx context.Context, filter report.Filter) (report.Summary, error) {
	out := report.Summary{GeneratedAt: time.Now().UTC()}

	if err := r.statusCounts(ctx, filter, &out); err != nil {
		return report.Summary{}, err
	}
	if err := r.monthly(ctx, filter, &out); err != nil {
		return report.Summary{}, err
	}
	if err := r.topVenues(ctx, filter, &out); err != nil {
		return report.Summary{}, err
	}
	if err := r.eventRows(ctx, filter, &out); err != nil {
		return report.Summary{}, err
	}

	// KPI totals derive from the already-computed pieces where possible;
	// capacity/registrations/revenue need the approved rollup.
	out.KPIs.Events = out.StatusCounts.Pending + out.StatusCounts.Approved + out.StatusCounts.Rejected
	out.KPIs.Approved = out.StatusCounts.Approved

	if err := r.approvedTotals(ctx, filter, &out); err != nil {
		return report.Summary{}, err
	}

	return out, nil
}

func (r *ReportsRepo) statusCounts(ctx context.Context, filter report.Filter, out *report.Summary) error {
	var args []interface{}
	argPos := 1
	conds := rangeConds(filter, &argPos, &args)

	query := `SELECT e.status, COUNT(*) FROM events e` + whereClause(conds) + ` GROUP BY e.status`

	return r.observe("reports.status_counts", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var status string
			var n int
			if err := rows.Scan(&status, &n); err != nil {
				return err
			}
			switch status {
			case "pending":
				out.StatusCounts.Pending = n
			case "approved":
				out.StatusCounts.Approved = n
			case "rejected":
				out.StatusCounts.Rejected = n
			}
		}
		return rows.Err()
	})
}

func (r *ReportsRepo) monthly(ctx context.Context, filter report.Filter, out *report.Summary) error {
	var args []interface{}
	argPos := 1
	conds := rangeConds(filter, &argPos, &args)

	query := `
		SELECT to_char(date_trunc('month', e.date), 'YYYY-MM') AS month,
			COUNT(*) AS events,
			COALESCE(SUM(e.capacity), 0) AS capacity,
			COALESCE(SUM(rc.cnt), 0) AS registrations
		FROM events e
		LEFT JOIN (
			SELECT event_id, COUNT(*) AS cnt FROM registrations GROUP BY event_id
		) rc ON rc.event_id = e.id` + whereClause(conds) + `
		GROUP BY 1
		ORDER BY 1 ASC`

	return r.observe("reports.monthly", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out.Monthly = make([]report.MonthlyBucket, 0)

		for rows.Next() {
			var b report.MonthlyBucket
			if err := rows.Scan(&b.Month, &b.Events, &b.Capacity, &b.Registrations); err != nil {
				return err
			}
			out.Monthly = append(out.Monthly, b)
		}
		return rows.Err()
	})
}

func (r *ReportsRepo) topVenues(ctx context.Context, filter report.Filter, out *report.Summary) error {
	var args []interface{}
	argPos := 1
	conds := rangeConds(filter, &argPos, &args)

	query := `SELECT e.venue, COUNT(*) FROM events e` + whereClause(conds) + `
		GROUP BY e.venue
		ORDER BY COUNT(*) DESC, e.venue ASC
		LIMIT 5`

	return r.observe("reports.top_venues", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out.TopVenues = make([]report.VenueCount, 0, 5)

		for rows.Next() {
			var v report.VenueCount
			if err := rows.Scan(&v.Venue, &v.Events); err != nil {
				return err
			}
			out.TopVenues = append(out.TopVenues, v)
		}
		return rows.Err()
	})
}

func (r *ReportsRepo) eventRows(ctx context.Context, filter report.Filter, out *report.Summary) error {
	var args []interface{}
	argPos := 1
	conds := rangeConds(filter, &argPos, &args)

	status := "approved"
	if filter.Status != nil && *filter.Status != "" {
		status = *filter.Status
	}
	conds = append(conds, fmt.Sprintf("e.status = $%d", argPos))
	args = append(args, status)
	argPos++

	query := `
		SELECT e.id, e.name, e.venue, to_char(e.date, 'YYYY-MM-DD'), e.capacity,
			(SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id)
		FROM events e` + whereClause(conds) + `
		ORDER BY e.date ASC, e.id ASC
		LIMIT ` + fmt.Sprintf("%d", report.MaxEventRows)

	return r.observe("reports.event_rows", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out.Events = make([]report.EventRatio, 0)

		for rows.Next() {
			var e report.EventRatio
			if err := rows.Scan(&e.ID, &e.Name, &e.Venue, &e.Date, &e.Capacity, &e.Registrations); err != nil {
				return err
			}
			if e.Capacity > 0 {
				e.FillRatio = float64(e.Registrations) / float64(e.Capacity)
			}
			out.Events = append(out.Events, e)
		}
		return rows.Err()
	})
}

func (r *ReportsRepo) approvedTotals(ctx context.Context, filter report.Filter, out *report.Summary) error {
	var args []interface{}
	argPos := 1
	conds := rangeConds(filter, &argPos, &args)
	conds = append(conds, "e.status = 'approved'")

	query := `
		SELECT COALESCE(SUM(e.capacity), 0),
			COALESCE(SUM(rc.cnt), 0),
			COALESCE(SUM(e.registration_fee * COALESCE(rc.cnt, 0)), 0)
		FROM events e
		LEFT JOIN (
			SELECT event_id, COUNT(*) AS cnt FROM registrations GROUP BY event_id
		) rc ON rc.event_id = e.id` + whereClause(conds)

	return r.observe("reports.approved_totals", func() error {
		row := r.pool.QueryRow(ctx, query, args...)

		var capacity, regs int
		var revenue float64

		if err := row.Scan(&capacity, &regs, &revenue); err != nil {
			if err == pgx.ErrNoRows {
				return nil
			}
			return err
		}

		out.KPIs.Capacity = capacity
		out.KPIs.Registrations = regs
		out.KPIs.FeeRevenue = revenue
		return nil
	})
}
