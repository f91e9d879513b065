package handler

import (
	"context"
	"go-auth-api/common"
	"go-auth-api/model"
	"go-auth-api/service"
	"net/http"
	"strconv"
)

// AuditReader is the read side of the audit log.
type AuditReader interface {
	ByUser(ctx context.Context, userID, limit, offset int) (*model.AuditPage, error)
	LoginStats(ctx context.Context, userID int) (*model.LoginStats, error)
}

type AuditHandler struct {
	audit AuditReader
}

func NewAuditHandler(audit AuditReader) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// ListMine godoc
// @Summary      Own audit trail
// @Description  Returns the authenticated user's audit entries, newest first.
// @Tags         audit
// @Produce      json
// @Param        limit   query     int  false  "Page size (default 50, max 200)"
// @Param        offset  query     int  false  "Entries to skip"
// @Success      200     {object}  model.AuditPage
// @Failure      400     {object}  common.AppError
// @Failure      401     {object}  common.AppError
// @Security     BearerAuth
// @Router       /auth/audit [get]
func (h *AuditHandler) ListMine(w http.ResponseWriter, r *http.Request) *common.AppError {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		return sessionError(service.ErrUnauthenticated)
	}

	limit, appErr := queryInt(r, "limit")
	if appErr != nil {
		return appErr
	}
	offset, appErr := queryInt(r, "offset")
	if appErr != nil {
		return appErr
	}

	page, err := h.audit.ByUser(r.Context(), caller.UserID, limit, offset)
	if err != nil {
		return sessionError(err)
	}

	common.WriteJSON(w, http.StatusOK, page)
	return nil
}

// Stats godoc
// @Summary      Own login statistics
// @Description  Successful login count, latest successful login and failed attempt count of the authenticated user.
// @Tags         audit
// @Produce      json
// @Success      200  {object}  model.LoginStats
// @Failure      401  {object}  common.AppError
// @Security     BearerAuth
// @Router       /auth/audit/stats [get]
func (h *AuditHandler) Stats(w http.ResponseWriter, r *http.Request) *common.AppError {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		return sessionError(service.ErrUnauthenticated)
	}

	stats, err := h.audit.LoginStats(r.Context(), caller.UserID)
	if err != nil {
		return sessionError(err)
	}

	common.WriteJSON(w, http.StatusOK, stats)
	return nil
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, *common.AppError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.NewKindError(http.StatusBadRequest, "InvalidInput", "Query parameter "+name+" must be an integer", nil)
	}
	return n, nil
}
