package router_test

import (
	"context"
	"go-auth-api/model"
	"go-auth-api/repository"
	"sync"
	"time"
)

// memStore backs all three repositories with maps so the full HTTP flow runs without Postgres.
type memStore struct {
	mu     sync.Mutex
	users  map[int]model.User
	tokens map[string]model.RefreshToken
	audit  []*model.AuditEntry
	nextID int
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[int]model.User),
		tokens: make(map[string]model.RefreshToken),
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

type memUsers struct{ *memStore }

func (s memUsers) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = s.id()
	user.CreatedAt, user.UpdatedAt = time.Now(), time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s memUsers) GetUserByID(_ context.Context, id int) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s memUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s memUsers) UpdateProfile(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Email, u.Name, u.UpdatedAt = user.Email, user.Name, time.Now()
	s.users[user.ID] = u
	return nil
}

func (s memUsers) UpdatePassword(_ context.Context, userID int, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	s.users[userID] = u
	return nil
}

type memTokens struct{ *memStore }

func (s memTokens) Create(_ context.Context, token *model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token.ID = s.id()
	token.CreatedAt = time.Now()
	s.tokens[token.TokenHash] = *token
	return nil
}

func (s memTokens) GetByTokenHash(_ context.Context, tokenHash string) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s memTokens) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenHash)
	return nil
}

type memAudit struct{ *memStore }

func (s memAudit) Create(_ context.Context, entry *model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.id()
	entry.Timestamp = time.Now()
	s.audit = append(s.audit, entry)
	return nil
}

func (s memAudit) ListByUser(_ context.Context, userID, limit, offset int) ([]*model.AuditEntry, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.AuditEntry
	for i := len(s.audit) - 1; i >= 0; i-- {
		if s.audit[i].UserID == userID {
			out = append(out, s.audit[i])
		}
	}
	total := len(out)
	if offset > total {
		offset = total
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (s memAudit) ListAll(ctx context.Context, limit, offset int) ([]*model.AuditEntry, int, error) {
	return nil, 0, nil
}

func (s memAudit) Search(ctx context.Context, term string, limit, offset int) ([]*model.AuditEntry, int, error) {
	return nil, 0, nil
}

func (s memAudit) LoginStats(_ context.Context, userID int) (*model.LoginStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &model.LoginStats{}
	for _, e := range s.audit {
		if e.UserID != userID {
			continue
		}
		switch e.Action {
		case model.ActionLoginSuccess:
			stats.TotalLogins++
			ts := e.Timestamp
			stats.LastLogin = &ts
		case model.ActionLoginFailed:
			stats.FailedAttempts++
		}
	}
	return stats, nil
}

func (s *memStore) actions() []model.AuditAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditAction, 0, len(s.audit))
	for _, e := range s.audit {
		out = append(out, e.Action)
	}
	return out
}
