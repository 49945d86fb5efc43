package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportnest/sportnest/internal/domain/sponsorship"
	"github.com/sportnest/sportnest/internal/observability"
)

type SponsorshipsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSponsorshipsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SponsorshipsRepo {
	return &SponsorshipsRepo{pool: pool, prom: prom}
}

func (r *SponsorshipsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *SponsorshipsRepo) Create(ctx context.Context, req sponsorship.ApplyRequest) (sponsorship.Sponsorship, error) {
	s := sponsorship.NewFromApplyRequest(req)

	err := r.observe("sponsorships.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO sponsorships (id, company, contact_email, amount, message, status, submitter_id, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			s.ID, s.Company, s.ContactEmail, s.Amount, s.Message, string(s.Status), s.SubmitterID, s.CreatedAt, s.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return sponsorship.Sponsorship{}, err
	}

	return s, nil
}

func (r *SponsorshipsRepo) List(ctx context.Context, status *sponsorship.Status) ([]sponsorship.Sponsorship, error) {
	query := `SELECT id, company, contact_email, amount, message, status, submitter_id, created_at, updated_at
		FROM sponsorships`

	var conds []string
	var args []interface{}

	if status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(*status))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY created_at DESC, id ASC"

	var rows pgx.Rows
	var err error

	err = r.observe("sponsorships.list", func() error {
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]sponsorship.Sponsorship, 0)

	for rows.Next() {
		var s sponsorship.Sponsorship
		var st string
		if err := rows.Scan(&s.ID, &s.Company, &s.ContactEmail, &s.Amount, &s.Message, &st, &s.SubmitterID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Status = sponsorship.Status(st)
		out = append(out, s)
	}

	return out, rows.Err()
}

// SetStatus mirrors event moderation: free transition between states.
func (r *SponsorshipsRepo) SetStatus(ctx context.Context, id string, status sponsorship.Status) (sponsorship.Sponsorship, error) {
	var s sponsorship.Sponsorship
	var st string

	err := r.observe("sponsorships.set_status", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE sponsorships
				SET status = $2, updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, company, contact_email, amount, message, status, submitter_id, created_at, updated_at`,
			id, string(status),
		).Scan(&s.ID, &s.Company, &s.ContactEmail, &s.Amount, &s.Message, &st, &s.SubmitterID, &s.CreatedAt, &s.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sponsorship.Sponsorship{}, sponsorship.ErrNotFound
		}
		return sponsorship.Sponsorship{}, err
	}

	s.Status = sponsorship.Status(st)
	return s, nil
}
