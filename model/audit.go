package model

import "time"

// AuditAction is the closed set of events written to the audit log.
type AuditAction string

const (
	ActionLoginSuccess   AuditAction = "LOGIN_SUCCESS"
	ActionLoginFailed    AuditAction = "LOGIN_FAILED"
	ActionLogout         AuditAction = "LOGOUT"
	ActionProfileUpdate  AuditAction = "PROFILE_UPDATE"
	ActionPasswordChange AuditAction = "PASSWORD_CHANGE"
)

// Valid reports whether a is one of the known actions.
func (a AuditAction) Valid() bool {
	switch a {
	case ActionLoginSuccess, ActionLoginFailed, ActionLogout, ActionProfileUpdate, ActionPasswordChange:
		return true
	default:
		return false
	}
}

// UnknownUserID attributes an audit entry to no user, e.g. a login for an email that does not exist.
const UnknownUserID = 0

// AuditEntry is an immutable audit log row. UserID is a weak reference to users.id.
type AuditEntry struct {
	ID          int         `json:"id"`
	UserID      int         `json:"user_id"`
	UserEmail   *string     `json:"user_email,omitempty"`
	Action      AuditAction `json:"action"`
	Description *string     `json:"description"`
	IPAddress   *string     `json:"ip_address"`
	UserAgent   *string     `json:"user_agent"`
	Timestamp   time.Time   `json:"timestamp"`
}

// AuditPage is one page of audit entries, newest first, plus the unpaged total.
type AuditPage struct {
	Logs  []*AuditEntry `json:"logs"`
	Total int           `json:"total"`
}

// LoginStats aggregates a user's login history from the audit log.
type LoginStats struct {
	TotalLogins    int        `json:"totalLogins"`
	LastLogin      *time.Time `json:"lastLogin"`
	FailedAttempts int        `json:"failedAttempts"`
}
