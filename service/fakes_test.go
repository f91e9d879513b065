package service

import (
	"context"
	"go-auth-api/model"
	"go-auth-api/repository"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeCacheClient is an in-memory ICacheClient. Expiry is driven by the test through expire.
type fakeCacheClient struct {
	mu   sync.Mutex
	vals map[string]string
}

func newFakeCacheClient() *fakeCacheClient {
	return &fakeCacheClient{vals: make(map[string]string)}
}

func (c *fakeCacheClient) Get(ctx context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vals[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (c *fakeCacheClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals[key] = cacheString(value)
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeCacheClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.vals[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	c.vals[key] = cacheString(value)
	return redis.NewBoolResult(true, nil)
}

func (c *fakeCacheClient) expire(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vals, key)
}

func cacheString(value interface{}) string {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	}
	return ""
}

// fakeUserRepo is an in-memory credential store with the same unique-email semantics as the users table.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: make(map[int]model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.rows[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id int) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.rows[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, u := range f.rows {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	current.Email = user.Email
	current.Name = user.Name
	current.UpdatedAt = time.Now()
	f.rows[user.ID] = current
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, userID int, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.rows[userID]
	if !ok {
		return repository.ErrNotFound
	}
	current.PasswordHash = passwordHash
	f.rows[userID] = current
	return nil
}

func (f *fakeUserRepo) delete(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
}

func (f *fakeUserRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]model.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: make(map[string]model.RefreshToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[token.TokenHash]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	token.ID = f.nextID
	token.CreatedAt = time.Now()
	f.rows[token.TokenHash] = *token
	return nil
}

func (f *fakeTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTokenRepo) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, tokenHash)
	return nil
}

func (f *fakeTokenRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeAuditRepo keeps entries in insertion order.
type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*model.AuditEntry
}

func (f *fakeAuditRepo) Create(_ context.Context, entry *model.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = len(f.entries) + 1
	entry.Timestamp = time.Now()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) ListByUser(_ context.Context, userID, limit, offset int) ([]*model.AuditEntry, int, error) {
	return f.page(func(e *model.AuditEntry) bool { return e.UserID == userID }, limit, offset)
}

func (f *fakeAuditRepo) ListAll(_ context.Context, limit, offset int) ([]*model.AuditEntry, int, error) {
	return f.page(func(*model.AuditEntry) bool { return true }, limit, offset)
}

func (f *fakeAuditRepo) Search(_ context.Context, _ string, limit, offset int) ([]*model.AuditEntry, int, error) {
	return f.page(func(*model.AuditEntry) bool { return true }, limit, offset)
}

func (f *fakeAuditRepo) LoginStats(_ context.Context, userID int) (*model.LoginStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &model.LoginStats{}
	for _, e := range f.entries {
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

func (f *fakeAuditRepo) page(match func(*model.AuditEntry) bool, limit, offset int) ([]*model.AuditEntry, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*model.AuditEntry
	for _, e := range f.entries {
		if match(e) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := len(matched)
	if offset >= total {
		return []*model.AuditEntry{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (f *fakeAuditRepo) all() []*model.AuditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.AuditEntry(nil), f.entries...)
}

func (f *fakeAuditRepo) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = nil
}
