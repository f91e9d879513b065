package service

import (
	"context"
	"errors"
	"fmt"
	"go-auth-api/logger"
	"go-auth-api/metrics"
	"go-auth-api/model"
	"go-auth-api/repository"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the minimum number of characters of a new password.
const MinPasswordLength = 6

// LoginResult is the token pair minted by a successful login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
}

// SessionService runs the authentication lifecycle over the credential, refresh token and audit stores.
// It holds no mutable state of its own.
type SessionService struct {
	users  repository.IUserRepository
	tokens repository.ITokenRepository
	audit  AuditRecorder
	codec  *TokenCodec
	hasher PasswordHasher
	cache  *ProfileCache
}

// NewSessionService wires the session service. cache may be nil.
func NewSessionService(
	users repository.IUserRepository,
	tokens repository.ITokenRepository,
	audit AuditRecorder,
	codec *TokenCodec,
	hasher PasswordHasher,
	cache *ProfileCache,
) *SessionService {
	return &SessionService{
		users:  users,
		tokens: tokens,
		audit:  audit,
		codec:  codec,
		hasher: hasher,
		cache:  cache,
	}
}

// Register creates a user. It audits a login success for the new user but issues no tokens;
// the client logs in separately.
func (s *SessionService) Register(ctx context.Context, email, password, name string, client model.ClientInfo) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalidInput("Email and password are required")
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, repository.ErrNotFound):
		return nil, internal("look up user by email", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, internal("hash password", err)
	}

	user := &model.User{Email: email, PasswordHash: hash}
	if name != "" {
		user.Name = &name
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, internal("create user", err)
	}

	s.audit.Record(ctx, user.ID, model.ActionLoginSuccess, "User registered and logged in successfully", client)
	return user, nil
}

// Login verifies the credentials and mints a token pair, persisting the refresh token.
// Every call records exactly one audit entry.
func (s *SessionService) Login(ctx context.Context, email, password string, client model.ClientInfo) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		s.audit.Record(ctx, model.UnknownUserID, model.ActionLoginFailed, "Failed login attempt: no email provided", client)
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeInvalidCredentials).Inc()
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.audit.Record(ctx, model.UnknownUserID, model.ActionLoginFailed,
				fmt.Sprintf("Failed login attempt for non-existent email: %s", email), client)
			metrics.LoginAttempts.WithLabelValues(metrics.OutcomeInvalidCredentials).Inc()
			return nil, ErrInvalidCredentials
		}
		s.audit.Record(ctx, model.UnknownUserID, model.ActionLoginFailed,
			fmt.Sprintf("Login aborted: credential lookup failed for email: %s", email), client)
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, internal("look up user by email", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		s.audit.Record(ctx, user.ID, model.ActionLoginFailed, "Invalid password provided", client)
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeInvalidCredentials).Inc()
		return nil, ErrInvalidCredentials
	}

	result, err := s.issueSession(ctx, user)
	if err != nil {
		s.audit.Record(ctx, user.ID, model.ActionLoginFailed, "Login aborted: could not issue session", client)
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	s.audit.Record(ctx, user.ID, model.ActionLoginSuccess, "User logged in successfully", client)
	metrics.LoginAttempts.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return result, nil
}

func (s *SessionService) issueSession(ctx context.Context, user *model.User) (*LoginResult, error) {
	access, err := s.codec.IssueAccess(user)
	if err != nil {
		return nil, internal("issue access token", err)
	}
	refresh, expiresAt, err := s.codec.IssueRefresh(user)
	if err != nil {
		return nil, internal("issue refresh token", err)
	}

	row := &model.RefreshToken{
		UserID:    user.ID,
		TokenHash: HashToken(refresh),
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return nil, internal("store refresh token", err)
	}
	return &LoginResult{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a stored, unexpired refresh token for a new access token.
// The refresh token itself is not rotated.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		metrics.RefreshRequests.WithLabelValues(metrics.OutcomeMissing).Inc()
		return "", ErrMissingToken
	}

	hash := HashToken(refreshToken)
	claims, err := s.codec.Verify(refreshToken, model.KindRefresh)
	if err != nil {
		// a token that no longer verifies is dead; drop its row if there is one
		if derr := s.tokens.DeleteByTokenHash(ctx, hash); derr != nil {
			logger.Log.WithError(derr).Warn("Failed to delete unverifiable refresh token")
		}
		metrics.RefreshRequests.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	stored, err := s.tokens.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RefreshRequests.WithLabelValues(metrics.OutcomeInvalid).Inc()
			return "", fmt.Errorf("%w: refresh token revoked", ErrInvalidToken)
		}
		metrics.RefreshRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return "", internal("look up refresh token", err)
	}
	if stored.UserID != claims.UserID {
		metrics.RefreshRequests.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return "", fmt.Errorf("%w: refresh token owner mismatch", ErrInvalidToken)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RefreshRequests.WithLabelValues(metrics.OutcomeInvalid).Inc()
			return "", ErrUserNotFound
		}
		metrics.RefreshRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return "", internal("look up user by id", err)
	}

	access, err := s.codec.IssueAccess(user)
	if err != nil {
		metrics.RefreshRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return "", internal("issue access token", err)
	}
	metrics.RefreshRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return access, nil
}

// Logout revokes the given refresh token, if any, and audits the logout when the caller is known.
// It never fails; a token that is already gone is fine.
func (s *SessionService) Logout(ctx context.Context, refreshToken string, caller *model.AuthenticatedCaller, client model.ClientInfo) {
	if refreshToken != "" {
		if err := s.tokens.DeleteByTokenHash(ctx, HashToken(refreshToken)); err != nil {
			logger.Log.WithError(err).Warn("Failed to delete refresh token on logout")
		}
	}
	if caller != nil && caller.UserID > 0 {
		s.audit.Record(ctx, caller.UserID, model.ActionLogout, "User logged out successfully", client)
	}
}

// Me returns the caller's public profile, served from the profile cache when possible.
func (s *SessionService) Me(ctx context.Context, caller model.AuthenticatedCaller) (*model.PublicUser, error) {
	if caller.UserID <= 0 {
		return nil, ErrUnauthenticated
	}
	if profile, ok := s.cache.Get(ctx, caller.UserID); ok {
		return profile, nil
	}

	user, err := s.lookupCaller(ctx, caller)
	if err != nil {
		return nil, err
	}
	profile := user.Public()
	s.cache.Set(ctx, profile)
	return &profile, nil
}

// UpdateProfile changes the caller's name and/or email. Empty arguments mean "leave unchanged".
func (s *SessionService) UpdateProfile(ctx context.Context, caller model.AuthenticatedCaller, name, email string, client model.ClientInfo) (*model.PublicUser, error) {
	if caller.UserID <= 0 {
		return nil, ErrUnauthenticated
	}
	user, err := s.lookupCaller(ctx, caller)
	if err != nil {
		return nil, err
	}

	var changes []string
	if name != "" && name != user.DisplayName() {
		changes = append(changes, fmt.Sprintf(`name from "%s" to "%s"`, user.DisplayName(), name))
		user.Name = &name
	}

	email = strings.TrimSpace(email)
	if email != "" && email != user.Email {
		owner, err := s.users.GetUserByEmail(ctx, email)
		switch {
		case err == nil && owner.ID != user.ID:
			return nil, ErrEmailTaken
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, internal("look up user by email", err)
		}
		changes = append(changes, fmt.Sprintf(`email from "%s" to "%s"`, user.Email, email))
		user.Email = email
	}

	if len(changes) == 0 {
		return nil, ErrNoChanges
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, internal("update profile", err)
	}
	s.cache.Invalidate(ctx, user.ID)

	s.audit.Record(ctx, user.ID, model.ActionProfileUpdate, "Profile updated: "+strings.Join(changes, ", "), client)
	profile := user.Public()
	return &profile, nil
}

// ChangePassword replaces the caller's password after verifying the current one.
// Malformed input is rejected before any lookup or mutation.
func (s *SessionService) ChangePassword(ctx context.Context, caller model.AuthenticatedCaller, currentPassword, newPassword string, client model.ClientInfo) error {
	if caller.UserID <= 0 {
		return ErrUnauthenticated
	}
	if currentPassword == "" || newPassword == "" {
		return invalidInput("Current and new password are required")
	}
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return invalidInput(fmt.Sprintf("New password must be at least %d characters", MinPasswordLength))
	}

	user, err := s.lookupCaller(ctx, caller)
	if err != nil {
		return err
	}

	if !s.hasher.Compare(user.PasswordHash, currentPassword) {
		s.audit.Record(ctx, user.ID, model.ActionLoginFailed, "Failed password change: incorrect current password", client)
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return internal("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return internal("update password", err)
	}

	s.audit.Record(ctx, user.ID, model.ActionPasswordChange, "Password changed successfully", client)
	return nil
}

func (s *SessionService) lookupCaller(ctx context.Context, caller model.AuthenticatedCaller) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal("look up user by id", err)
	}
	return user, nil
}
