package handler

import (
	"go-auth-api/model"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "[::ffff:10.0.0.7]:4321"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	assert.Equal(t, "::ffff:10.0.0.7", clientIP(req, false))
	assert.Equal(t, "203.0.113.9", clientIP(req, true))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "::ffff:10.0.0.7", clientIP(req, true))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientIP(req, false))
}

func TestRefreshTokenFrom(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(""))
	assert.Equal(t, "", refreshTokenFrom(req, nil))
	assert.Equal(t, "body", refreshTokenFrom(req, &model.RefreshRequest{RefreshToken: "body"}))

	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "cookie"})
	assert.Equal(t, "cookie", refreshTokenFrom(req, &model.RefreshRequest{RefreshToken: "body"}))
}

func TestBearerToken(t *testing.T) {
	testCases := map[string]struct {
		header string
		want   string
		ok     bool
	}{
		"valid":         {"Bearer abc", "abc", true},
		"lowercase":     {"bearer abc", "abc", true},
		"missing":       {"", "", false},
		"wrong scheme":  {"Basic abc", "", false},
		"no token":      {"Bearer", "", false},
		"extra segment": {"Bearer a b", "", false},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			got, ok := bearerToken(req)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
