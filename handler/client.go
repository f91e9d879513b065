package handler

import (
	"go-auth-api/model"
	"net"
	"net/http"
	"strings"
)

// RefreshCookieName is the cookie carrying the raw refresh token.
const RefreshCookieName = "jid"

// clientInfo extracts the audit metadata of a request. X-Forwarded-For is only honoured behind a trusted proxy.
func clientInfo(r *http.Request, trustProxy bool) model.ClientInfo {
	return model.ClientInfo{
		IP:        clientIP(r, trustProxy),
		UserAgent: r.UserAgent(),
	}
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func setRefreshCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// refreshTokenFrom reads the refresh token from the cookie, falling back to the JSON body.
func refreshTokenFrom(r *http.Request, body *model.RefreshRequest) string {
	if c, err := r.Cookie(RefreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if body != nil {
		return body.RefreshToken
	}
	return ""
}
