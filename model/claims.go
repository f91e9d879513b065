package model

import "github.com/golang-jwt/jwt/v5"

// TokenKind distinguishes the two signed token families.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// AppClaims is the payload of both token kinds. Email is only set on access tokens.
type AppClaims struct {
	UserID    int       `json:"id"`
	Email     string    `json:"email,omitempty"`
	TokenType TokenKind `json:"typ"`
	jwt.RegisteredClaims
}
