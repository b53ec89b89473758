package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobtrackerhub/internal/domain"
)

// ErrDuplicateEmail indica violacion del indice unico sobre email.
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateResetToken(ctx context.Context, id, token string, expiresAt time.Time) error
	// ConsumeResetToken actualiza el password y limpia el reset token en un
	// solo UPDATE, solo si el token coincide y no expiró. Devuelve
	// pgx.ErrNoRows cuando el token ya fue usado, no coincide o expiró.
	ConsumeResetToken(ctx context.Context, id, token, newPasswordHash string) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, email, name, password_hash, security_question, security_answer_hash, reset_token, reset_token_expires, created_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, name, password_hash, security_question, security_answer_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.SecurityQuestion,
		user.SecurityAnswerHash,
		user.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) UpdateResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET reset_token = $2, reset_token_expires = $3
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, token, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) ConsumeResetToken(ctx context.Context, id, token, newPasswordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $3, reset_token = NULL, reset_token_expires = NULL
		WHERE id = $1 AND reset_token = $2 AND reset_token_expires > now()
	`
	tag, err := r.pool.Exec(ctx, query, id, token, newPasswordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) scanOne(row pgx.Row) (domain.User, error) {
	var (
		u           domain.User
		resetToken  *string
		resetExpiry *time.Time
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.SecurityQuestion,
		&u.SecurityAnswerHash,
		&resetToken,
		&resetExpiry,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	if resetToken != nil {
		u.ResetToken = *resetToken
	}
	u.ResetTokenExpires = resetExpiry
	return u, nil
}
