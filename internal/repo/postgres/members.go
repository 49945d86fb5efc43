package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sportnest/sportnest/internal/domain/member"
)

var ErrMemberNotFound = errors.New("member not found")
var ErrEmailAlreadyUsed = errors.New("email already used")

type MembersRepo struct {
	pool *pgxpool.Pool
}

func NewMembersRepo(pool *pgxpool.Pool) *MembersRepo {
	return &MembersRepo{pool: pool}
}

func (r *MembersRepo) Create(ctx context.Context, email, passwordHash, name, role string) (member.Member, error) {
	now := time.Now().UTC()

	m := member.Member{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO members (id, email, password_hash, name, role, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.Email, m.PasswordHash, m.Name, m.Role, m.CreatedAt, m.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return member.Member{}, ErrEmailAlreadyUsed
		}
		return member.Member{}, err
	}

	return m, nil
}

func (r *MembersRepo) GetByEmail(ctx context.Context, email string) (member.Member, error) {
	var m member.Member

	err := r.pool.QueryRow(
		ctx,
		`SELECT id, email, password_hash, name, role, created_at, updated_at
         FROM members
         WHERE email = $1`,
		email,
	).Scan(
		&m.ID,
		&m.Email,
		&m.PasswordHash,
		&m.Name,
		&m.Role,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member.Member{}, ErrMemberNotFound
		}

		return member.Member{}, err
	}
	return m, nil
}

func (r *MembersRepo) GetByID(ctx context.Context, id string) (member.Member, error) {
	var m member.Member

	err := r.pool.QueryRow(
		ctx,
		`SELECT id, email, password_hash, name, role, created_at, updated_at
         FROM members
         WHERE id = $1`,
		id,
	).Scan(
		&m.ID,
		&m.Email,
		&m.PasswordHash,
		&m.Name,
		&m.Role,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member.Member{}, ErrMemberNotFound
		}

		return member.Member{}, err
	}
	return m, nil
}
