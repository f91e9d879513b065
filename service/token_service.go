package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"go-auth-api/logger"
	"go-auth-api/model"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failures. The session service folds all of them into ErrInvalidToken.
var (
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenMalformed        = errors.New("token malformed")
)

// TokenCodec issues and verifies HS256 access and refresh tokens.
// Each kind has its own secret and lifetime.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// IssueAccess signs a short-lived token carrying the user's id and email.
func (c *TokenCodec) IssueAccess(user *model.User) (string, error) {
	token, _, err := c.issue(user, model.KindAccess, user.Email)
	return token, err
}

// IssueRefresh signs a long-lived token carrying only the user's id, and returns its expiry.
func (c *TokenCodec) IssueRefresh(user *model.User) (string, time.Time, error) {
	return c.issue(user, model.KindRefresh, "")
}

func (c *TokenCodec) issue(user *model.User, kind model.TokenKind, email string) (string, time.Time, error) {
	secret, ttl := c.secretFor(kind)
	issuedAt := c.now()
	expiresAt := issuedAt.Add(ttl)

	claims := &model.AppClaims{
		UserID:    user.ID,
		Email:     email,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to sign JWT")
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature, expiry and kind of a token and returns its claims.
func (c *TokenCodec) Verify(tokenString string, kind model.TokenKind) (*model.AppClaims, error) {
	secret, _ := c.secretFor(kind)
	claims := &model.AppClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrTokenSignatureInvalid
	default:
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if claims.TokenType != kind {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrTokenMalformed, kind, claims.TokenType)
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing user id", ErrTokenMalformed)
	}
	return claims, nil
}

func (c *TokenCodec) secretFor(kind model.TokenKind) ([]byte, time.Duration) {
	if kind == model.KindRefresh {
		return c.refreshSecret, c.refreshTTL
	}
	return c.accessSecret, c.accessTTL
}

// HashToken is the form a refresh token is stored and looked up in.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
