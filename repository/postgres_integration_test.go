package repository_test

import (
	"context"
	"database/sql"
	"go-auth-api/db"
	"go-auth-api/model"
	"go-auth-api/repository"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL, migrates it and empties every table.
// Without the variable the integration tests are skipped.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres integration test")
	}

	require.NoError(t, db.Migrate(url))

	conn, err := sql.Open("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Exec(`TRUNCATE users, refresh_tokens, audit_log RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return conn
}

func TestPostgres_UserAndTokenLifecycle(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(conn)
	tokens := repository.NewTokenRepository(conn)

	name := "A"
	user := &model.User{Email: "a@x.com", PasswordHash: "hash", Name: &name}
	require.NoError(t, users.CreateUser(ctx, user))
	assert.Positive(t, user.ID)

	err := users.CreateUser(ctx, &model.User{Email: "a@x.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	other := &model.User{Email: "b@x.com", PasswordHash: "hash"}
	require.NoError(t, users.CreateUser(ctx, other))
	other.Email = "a@x.com"
	assert.ErrorIs(t, users.UpdateProfile(ctx, other), repository.ErrDuplicate)

	token := &model.RefreshToken{UserID: user.ID, TokenHash: "f00d", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, tokens.Create(ctx, token))

	got, err := tokens.GetByTokenHash(ctx, "f00d")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, tokens.DeleteByTokenHash(ctx, "f00d"))
	require.NoError(t, tokens.DeleteByTokenHash(ctx, "f00d"))
	_, err = tokens.GetByTokenHash(ctx, "f00d")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// tokens go with their user
	require.NoError(t, tokens.Create(ctx, &model.RefreshToken{UserID: user.ID, TokenHash: "beef", ExpiresAt: time.Now().Add(time.Hour)}))
	_, err = conn.Exec(`DELETE FROM users WHERE id = $1`, user.ID)
	require.NoError(t, err)
	_, err = tokens.GetByTokenHash(ctx, "beef")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPostgres_AuditLog(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(conn)
	audit := repository.NewAuditRepository(conn)

	user := &model.User{Email: "carol@x.com", PasswordHash: "hash"}
	require.NoError(t, users.CreateUser(ctx, user))

	desc := func(s string) *string { return &s }
	for _, e := range []*model.AuditEntry{
		{UserID: user.ID, Action: model.ActionLoginFailed, Description: desc("Invalid password provided")},
		{UserID: user.ID, Action: model.ActionLoginSuccess, Description: desc("User logged in successfully")},
		{UserID: model.UnknownUserID, Action: model.ActionLoginFailed, Description: desc("Failed login attempt for non-existent email: x@y.z")},
		{UserID: user.ID, Action: model.ActionLogout, Description: desc("User logged out successfully")},
	} {
		require.NoError(t, audit.Create(ctx, e))
	}

	entries, total, err := audit.ListByUser(ctx, user.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActionLogout, entries[0].Action)
	require.NotNil(t, entries[0].UserEmail)
	assert.Equal(t, "carol@x.com", *entries[0].UserEmail)

	entries, total, err = audit.Search(ctx, "CAROL", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, entries, 3)

	_, total, err = audit.ListAll(ctx, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	stats, err := audit.LoginStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalLogins)
	assert.Equal(t, 1, stats.FailedAttempts)
	assert.NotNil(t, stats.LastLogin)
}
