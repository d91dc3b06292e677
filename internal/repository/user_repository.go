package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/auth-service/internal/domain"
)

// Store failure vocabulary shared by all backends.
var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrFingerprintConflict means the stored fingerprint changed between
	// read and write; the caller lost a rotation race.
	ErrFingerprintConflict = errors.New("refresh fingerprint changed concurrently")
)

// UserRepository is the identity record store. The auth subsystem consumes
// it only through this narrow surface.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateRefreshFingerprint overwrites the stored fingerprint; nil clears it.
	UpdateRefreshFingerprint(ctx context.Context, id string, fingerprint *string) error
	// CompareAndSwapRefreshFingerprint replaces the fingerprint only when the
	// stored value still equals previous, serializing concurrent rotations.
	CompareAndSwapRefreshFingerprint(ctx context.Context, id, previous, next string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const uniqueViolation = "23505"

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, theme)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Theme,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, theme, refresh_fingerprint, created_at, updated_at
        FROM users WHERE id=$1`

	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, theme, refresh_fingerprint, created_at, updated_at
        FROM users WHERE email=$1`

	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) UpdateRefreshFingerprint(ctx context.Context, id string, fingerprint *string) error {
	const query = `
        UPDATE users SET refresh_fingerprint=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, fingerprint, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) CompareAndSwapRefreshFingerprint(ctx context.Context, id, previous, next string) error {
	const query = `
        UPDATE users SET refresh_fingerprint=$1, updated_at=NOW()
        WHERE id=$2 AND refresh_fingerprint=$3`

	cmd, err := r.pool.Exec(ctx, query, next, id, previous)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrFingerprintConflict
	}
	return nil
}

func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Theme,
		&user.RefreshFingerprint,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
