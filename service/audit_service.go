package service

import (
	"context"
	"go-auth-api/logger"
	"go-auth-api/metrics"
	"go-auth-api/model"
	"go-auth-api/repository"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200

	auditWriteTimeout = 5 * time.Second

	// column widths of audit_log
	maxIPLength        = 45
	maxUserAgentLength = 500
)

// AuditRecorder appends security events. Recording never fails from the caller's point of view.
type AuditRecorder interface {
	Record(ctx context.Context, userID int, action model.AuditAction, description string, client model.ClientInfo)
}

// AuditService writes and reads the audit log.
type AuditService struct {
	repo repository.IAuditRepository
}

func NewAuditService(repo repository.IAuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record persists one entry. Store failures are logged and counted, never returned,
// and a cancelled request does not abort the write.
func (s *AuditService) Record(ctx context.Context, userID int, action model.AuditAction, description string, client model.ClientInfo) {
	entry := &model.AuditEntry{
		UserID:      userID,
		Action:      action,
		Description: optional(description),
		IPAddress:   optional(truncate(NormalizeIP(client.IP), maxIPLength)),
		UserAgent:   optional(truncate(client.UserAgent, maxUserAgentLength)),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if err := s.repo.Create(ctx, entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID,
			"action":  action,
		}).WithError(err).Error("Failed to record audit entry")
	}
}

// ByUser returns one page of a user's entries, newest first.
func (s *AuditService) ByUser(ctx context.Context, userID, limit, offset int) (*model.AuditPage, error) {
	limit, offset = normalizePage(limit, offset)
	logs, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, internal("list audit entries by user", err)
	}
	return &model.AuditPage{Logs: logs, Total: total}, nil
}

func (s *AuditService) All(ctx context.Context, limit, offset int) (*model.AuditPage, error) {
	limit, offset = normalizePage(limit, offset)
	logs, total, err := s.repo.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, internal("list audit entries", err)
	}
	return &model.AuditPage{Logs: logs, Total: total}, nil
}

func (s *AuditService) Search(ctx context.Context, term string, limit, offset int) (*model.AuditPage, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, invalidInput("Search term is required")
	}
	limit, offset = normalizePage(limit, offset)
	logs, total, err := s.repo.Search(ctx, term, limit, offset)
	if err != nil {
		return nil, internal("search audit entries", err)
	}
	return &model.AuditPage{Logs: logs, Total: total}, nil
}

func (s *AuditService) LoginStats(ctx context.Context, userID int) (*model.LoginStats, error) {
	stats, err := s.repo.LoginStats(ctx, userID)
	if err != nil {
		return nil, internal("login stats", err)
	}
	return stats, nil
}

// NormalizeIP strips the IPv4-mapped IPv6 prefix so "::ffff:1.2.3.4" is stored as "1.2.3.4".
func NormalizeIP(ip string) string {
	const mapped = "::ffff:"
	if len(ip) > len(mapped) && strings.EqualFold(ip[:len(mapped)], mapped) {
		return ip[len(mapped):]
	}
	return ip
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// truncate cuts s to at most max characters and drops invalid UTF-8 the store would reject.
func truncate(s string, max int) string {
	s = strings.ToValidUTF8(s, "")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
