package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/corvid89/taskhub/internal/domain/user"
	"github.com/corvid89/taskhub/internal/repo/postgres"
	"github.com/google/uuid"
)

type UsersRepo struct {
	mu      sync.RWMutex
	byID    map[string]user.User
	byEmail map[string]string
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		byID:    make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(email)

	if _, exists := r.byEmail[key]; exists {
		return user.User{}, postgres.ErrEmailTaken
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.byID[u.ID] = u
	r.byEmail[key] = u.ID

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return r.byID[id], nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

// Remove deletes a user outright. Only tests use it, to simulate a token
// whose subject no longer exists.
func (r *UsersRepo) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return
	}

	delete(r.byID, id)
	delete(r.byEmail, strings.ToLower(u.Email))
}
