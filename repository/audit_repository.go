package repository

import (
	"context"
	"database/sql"
	"fmt"
	"go-auth-api/logger"
	"go-auth-api/model"
	"strings"

	"github.com/sirupsen/logrus"
)

// IAuditRepository is the append-only audit store. There is no update or delete.
type IAuditRepository interface {
	Create(ctx context.Context, entry *model.AuditEntry) error
	ListByUser(ctx context.Context, userID, limit, offset int) ([]*model.AuditEntry, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]*model.AuditEntry, int, error)
	Search(ctx context.Context, term string, limit, offset int) ([]*model.AuditEntry, int, error)
	LoginStats(ctx context.Context, userID int) (*model.LoginStats, error)
}

type AuditRepository struct {
	DB *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{DB: db}
}

const selectAuditEntries = `
		SELECT a.id, a.user_id, u.email, a.action, a.description, a.ip_address, a.user_agent, a."timestamp"
		FROM audit_log a
		LEFT JOIN users u ON u.id = a.user_id`

const auditOrder = `
		ORDER BY a."timestamp" DESC, a.id DESC`

// Create appends an entry and fills its ID and Timestamp.
func (r *AuditRepository) Create(ctx context.Context, entry *model.AuditEntry) error {
	if !entry.Action.Valid() {
		return fmt.Errorf("unknown audit action %q", entry.Action)
	}

	query := `INSERT INTO audit_log (user_id, action, description, ip_address, user_agent) VALUES ($1, $2, $3, $4, $5) RETURNING id, "timestamp"`
	err := r.DB.QueryRowContext(ctx, query,
		entry.UserID, string(entry.Action), entry.Description, entry.IPAddress, entry.UserAgent,
	).Scan(&entry.ID, &entry.Timestamp)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id": entry.UserID,
			"action":  entry.Action,
		}).WithError(err).Error("Failed to execute create audit entry query")
		return err
	}
	return nil
}

// ListByUser returns one page of a user's entries, newest first, and the user's total entry count.
func (r *AuditRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]*model.AuditEntry, int, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to list audit entries by user")

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM audit_log WHERE user_id = $1`, userID).Scan(&total); err != nil {
		log.WithError(err).Error("Failed to count audit entries by user")
		return nil, 0, err
	}

	query := selectAuditEntries + `
		WHERE a.user_id = $1` + auditOrder + `
		LIMIT $2 OFFSET $3`
	entries, err := r.query(ctx, log, query, userID, limit, offset)
	return entries, total, err
}

func (r *AuditRepository) ListAll(ctx context.Context, limit, offset int) ([]*model.AuditEntry, int, error) {
	log := logger.Log.WithFields(logrus.Fields{"limit": limit, "offset": offset})
	log.Info("Executing query to list all audit entries")

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM audit_log`).Scan(&total); err != nil {
		log.WithError(err).Error("Failed to count audit entries")
		return nil, 0, err
	}

	query := selectAuditEntries + auditOrder + `
		LIMIT $1 OFFSET $2`
	entries, err := r.query(ctx, log, query, limit, offset)
	return entries, total, err
}

// Search matches term case-insensitively against the action, the description, and the owning user's email.
func (r *AuditRepository) Search(ctx context.Context, term string, limit, offset int) ([]*model.AuditEntry, int, error) {
	log := logger.Log.WithField("term", term)
	log.Info("Executing query to search audit entries")

	pattern := "%" + escapeLike(term) + "%"
	where := `
		WHERE a.action ILIKE $1 OR a.description ILIKE $1 OR u.email ILIKE $1`

	var total int
	countQuery := `SELECT count(*) FROM audit_log a LEFT JOIN users u ON u.id = a.user_id` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		log.WithError(err).Error("Failed to count audit search results")
		return nil, 0, err
	}

	query := selectAuditEntries + where + auditOrder + `
		LIMIT $2 OFFSET $3`
	entries, err := r.query(ctx, log, query, pattern, limit, offset)
	return entries, total, err
}

// LoginStats counts successful and failed logins and finds the latest success.
func (r *AuditRepository) LoginStats(ctx context.Context, userID int) (*model.LoginStats, error) {
	query := `
		SELECT
			count(*) FILTER (WHERE action = 'LOGIN_SUCCESS'),
			max("timestamp") FILTER (WHERE action = 'LOGIN_SUCCESS'),
			count(*) FILTER (WHERE action = 'LOGIN_FAILED')
		FROM audit_log
		WHERE user_id = $1`

	stats := &model.LoginStats{}
	var last sql.NullTime
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&stats.TotalLogins, &last, &stats.FailedAttempts); err != nil {
		logger.Log.WithField("user_id", userID).WithError(err).Error("Failed to execute login stats query")
		return nil, err
	}
	if last.Valid {
		t := last.Time
		stats.LastLogin = &t
	}
	return stats, nil
}

func (r *AuditRepository) query(ctx context.Context, log *logrus.Entry, query string, args ...interface{}) ([]*model.AuditEntry, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to execute audit entries query")
		return nil, err
	}
	defer rows.Close()

	entries := make([]*model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserEmail, &e.Action, &e.Description, &e.IPAddress, &e.UserAgent, &e.Timestamp); err != nil {
			log.WithError(err).Error("Failed to scan audit entry row")
			return nil, err
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		log.WithError(err).Error("Failed to iterate audit entry rows")
		return nil, err
	}
	return entries, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
