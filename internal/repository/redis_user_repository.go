package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/auth-service/internal/domain"
)

// redisUserRepository keeps identity records as Redis hashes keyed by id,
// with a separate email index key. It exists for deployments that want the
// identity store as a plain key/value-by-identity service.
type redisUserRepository struct {
	client *redis.Client
}

// NewRedisUserRepository returns a Redis-backed implementation.
func NewRedisUserRepository(client *redis.Client) UserRepository {
	return &redisUserRepository{client: client}
}

func userKey(id string) string     { return "user:" + id }
func emailKey(email string) string { return "user:email:" + email }

func (r *redisUserRepository) now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (r *redisUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	// The email index is the uniqueness guard; claiming it first keeps the
	// record write race-free.
	claimed, err := r.client.SetNX(ctx, emailKey(user.Email), user.ID, 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return ErrDuplicateEmail
	}

	fields := map[string]interface{}{
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"role":          string(user.Role),
		"theme":         string(user.Theme),
		"created_at":    now.Format(time.RFC3339Nano),
		"updated_at":    now.Format(time.RFC3339Nano),
	}
	if user.RefreshFingerprint != nil {
		fields["refresh_fingerprint"] = *user.RefreshFingerprint
	}
	if err := r.client.HSet(ctx, userKey(user.ID), fields).Err(); err != nil {
		// Roll the index claim back so the email is not burned.
		_ = r.client.Del(ctx, emailKey(user.Email)).Err()
		return err
	}
	return nil
}

func (r *redisUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	fields, err := r.client.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return hydrateUser(id, fields), nil
}

func (r *redisUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	id, err := r.client.Get(ctx, emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *redisUserRepository) UpdateRefreshFingerprint(ctx context.Context, id string, fingerprint *string) error {
	key := userKey(id)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	if fingerprint == nil {
		pipe := r.client.TxPipeline()
		pipe.HDel(ctx, key, "refresh_fingerprint")
		pipe.HSet(ctx, key, "updated_at", r.now())
		_, err = pipe.Exec(ctx)
		return err
	}
	return r.client.HSet(ctx, key,
		"refresh_fingerprint", *fingerprint,
		"updated_at", r.now(),
	).Err()
}

func (r *redisUserRepository) CompareAndSwapRefreshFingerprint(ctx context.Context, id, previous, next string) error {
	key := userKey(id)

	swap := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, "refresh_fingerprint").Result()
		if errors.Is(err, redis.Nil) {
			return ErrFingerprintConflict
		}
		if err != nil {
			return err
		}
		if current != previous {
			return ErrFingerprintConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "refresh_fingerprint", next, "updated_at", r.now())
			return nil
		})
		return err
	}

	for i := 0; i < 3; i++ {
		err := r.client.Watch(ctx, swap, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return ErrFingerprintConflict
}

func hydrateUser(id string, fields map[string]string) *domain.User {
	user := &domain.User{
		ID:           id,
		Name:         fields["name"],
		Email:        fields["email"],
		PasswordHash: fields["password_hash"],
		Role:         domain.Role(fields["role"]),
		Theme:        domain.Theme(fields["theme"]),
	}
	if fp, ok := fields["refresh_fingerprint"]; ok {
		user.RefreshFingerprint = &fp
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		user.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["updated_at"]); err == nil {
		user.UpdatedAt = ts
	}
	return user
}
