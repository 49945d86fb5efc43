package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportnest/sportnest/internal/domain/player"
	"github.com/sportnest/sportnest/internal/observability"
)

type PlayersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPlayersRepo(pool *pgxpool.Pool, prom *observability.Prom) *PlayersRepo {
	return &PlayersRepo{pool: pool, prom: prom}
}

func (r *PlayersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *PlayersRepo) Create(ctx context.Context, req player.CreatePlayerRequest) (player.Player, error) {
	p := player.NewFromCreateRequest(req)

	err := r.observe("players.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO players (id, name, position, team, member_id, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			p.ID, p.Name, p.Position, p.Team, p.MemberID, p.CreatedAt, p.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return player.Player{}, err
	}

	return p, nil
}

// List returns the roster, optionally narrowed to one team.
func (r *PlayersRepo) List(ctx context.Context, team *string) ([]player.Player, error) {
	query := `SELECT id, name, position, team, member_id, created_at, updated_at FROM players`
	var args []interface{}

	if team != nil && *team != "" {
		query += ` WHERE team = $1`
		args = append(args, *team)
	}

	query += ` ORDER BY team ASC, name ASC, id ASC`

	var rows pgx.Rows
	var err error

	err = r.observe("players.list", func() error {
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]player.Player, 0)

	for rows.Next() {
		var p player.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Position, &p.Team, &p.MemberID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *PlayersRepo) GetByID(ctx context.Context, id string) (player.Player, error) {
	var p player.Player

	err := r.observe("players.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, position, team, member_id, created_at, updated_at FROM players WHERE id = $1`, id,
		).Scan(&p.ID, &p.Name, &p.Position, &p.Team, &p.MemberID, &p.CreatedAt, &p.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return player.Player{}, player.ErrNotFound
		}
		return player.Player{}, err
	}

	return p, nil
}

func (r *PlayersRepo) Update(ctx context.Context, id string, req player.UpdatePlayerRequest) (player.Player, error) {
	var p player.Player

	err := r.observe("players.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE players
				SET name = $2, position = $3, team = $4, member_id = $5, updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, name, position, team, member_id, created_at, updated_at`,
			id, req.Name, req.Position, req.Team, req.MemberID,
		).Scan(&p.ID, &p.Name, &p.Position, &p.Team, &p.MemberID, &p.CreatedAt, &p.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return player.Player{}, player.ErrNotFound
		}
		return player.Player{}, err
	}

	return p, nil
}

func (r *PlayersRepo) Delete(ctx context.Context, id string) error {
	return r.observe("players.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return player.ErrNotFound
		}

		return nil
	})
}
