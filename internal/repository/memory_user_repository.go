package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/auth-service/internal/domain"
)

// memoryUserRepository is a process-local store used for local development
// and tests. It applies the same uniqueness and compare-and-swap semantics
// as the durable backends.
type memoryUserRepository struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	emails map[string]string
}

// NewMemoryUserRepository returns an in-memory implementation.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		users:  make(map[string]*domain.User),
		emails: make(map[string]string),
	}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.emails[user.Email]; exists {
		return ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = cloneUser(user)
	r.emails[user.Email] = user.ID
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(r.users[id]), nil
}

func (r *memoryUserRepository) UpdateRefreshFingerprint(_ context.Context, id string, fingerprint *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if fingerprint == nil {
		user.RefreshFingerprint = nil
	} else {
		fp := *fingerprint
		user.RefreshFingerprint = &fp
	}
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryUserRepository) CompareAndSwapRefreshFingerprint(_ context.Context, id, previous, next string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if user.RefreshFingerprint == nil || *user.RefreshFingerprint != previous {
		return ErrFingerprintConflict
	}
	fp := next
	user.RefreshFingerprint = &fp
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func cloneUser(user *domain.User) *domain.User {
	clone := *user
	if user.RefreshFingerprint != nil {
		fp := *user.RefreshFingerprint
		clone.RefreshFingerprint = &fp
	}
	return &clone
}
