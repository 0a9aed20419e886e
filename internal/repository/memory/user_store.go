package memory

import (
	"context"
	"sync"
	"time"

	"chatbot/internal/model/auth"
	"chatbot/internal/pkg/id"
	authRepo "chatbot/internal/repository/auth"
)

// UserStore 内存版用户存储
type UserStore struct {
	mu      sync.RWMutex
	users   map[string]*auth.User
	byEmail map[string]string
}

var _ authRepo.UserStore = (*UserStore)(nil)

// NewUserStore 创建内存用户存储
func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[string]*auth.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) Create(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = authRepo.NormalizeEmail(user.Email)
	if _, exists := s.byEmail[user.Email]; exists {
		return authRepo.ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = id.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	s.users[user.ID] = &stored
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *UserStore) FindByID(_ context.Context, userID string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, authRepo.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	s.mu.RLock()
	userID, ok := s.byEmail[authRepo.NormalizeEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, authRepo.ErrUserNotFound
	}
	return s.FindByID(ctx, userID)
}

func (s *UserStore) UpdateLastLoginAt(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return authRepo.ErrUserNotFound
	}
	user.LastLoginAt = &at
	user.UpdatedAt = at
	return nil
}
