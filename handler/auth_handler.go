package handler

import (
	"context"
	"errors"
	"go-auth-api/common"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/service"
	"net/http"

	"github.com/sirupsen/logrus"
)

// SessionManager is the session service as seen by the HTTP layer.
type SessionManager interface {
	Register(ctx context.Context, email, password, name string, client model.ClientInfo) (*model.User, error)
	Login(ctx context.Context, email, password string, client model.ClientInfo) (*service.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string, caller *model.AuthenticatedCaller, client model.ClientInfo)
	Me(ctx context.Context, caller model.AuthenticatedCaller) (*model.PublicUser, error)
	UpdateProfile(ctx context.Context, caller model.AuthenticatedCaller, name, email string, client model.ClientInfo) (*model.PublicUser, error)
	ChangePassword(ctx context.Context, caller model.AuthenticatedCaller, currentPassword, newPassword string, client model.ClientInfo) error
}

type AuthHandler struct {
	sessions     SessionManager
	cookieSecure bool
	trustProxy   bool
}

func NewAuthHandler(sessions SessionManager, cookieSecure, trustProxy bool) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookieSecure: cookieSecure, trustProxy: trustProxy}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a user account. No tokens are issued; call /auth/login afterwards.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user  body      model.RegisterRequest  true  "Registration data"
// @Success      200   {object}  model.MessageResponse
// @Failure      400   {object}  common.AppError
// @Failure      500   {object}  common.AppError
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	log := logger.Log.WithField("email", req.Email)
	log.Info("Register request received")

	user, err := h.sessions.Register(r.Context(), req.Email, req.Password, req.Name, clientInfo(r, h.trustProxy))
	if err != nil {
		return sessionError(err)
	}

	log.WithField("user_id", user.ID).Info("User registered")
	common.WriteJSON(w, http.StatusOK, model.MessageResponse{Message: "registered"})
	return nil
}

// Login godoc
// @Summary      Log in
// @Description  Verifies credentials and returns an access and refresh token. The refresh token is also set as the httpOnly "jid" cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      model.LoginRequest  true  "Login credentials"
// @Success      200          {object}  model.TokenPairResponse
// @Failure      400          {object}  common.AppError
// @Failure      500          {object}  common.AppError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	result, err := h.sessions.Login(r.Context(), req.Email, req.Password, clientInfo(r, h.trustProxy))
	if err != nil {
		return sessionError(err)
	}

	setRefreshCookie(w, result.RefreshToken, h.cookieSecure)
	common.WriteJSON(w, http.StatusOK, model.TokenPairResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
	return nil
}

// Refresh godoc
// @Summary      Refresh the access token
// @Description  Exchanges the refresh token from the "jid" cookie or the request body for a new access token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  body      model.RefreshRequest  false  "Refresh token, if not sent as a cookie"
// @Success      200    {object}  model.AccessTokenResponse
// @Failure      401    {object}  common.AppError
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	// the cookie wins, so the body is only read when there is none
	var body model.RefreshRequest
	if c, err := r.Cookie(RefreshCookieName); err != nil || c.Value == "" {
		if appErr := common.DecodeOptional(r, &body); appErr != nil {
			return appErr
		}
	}

	accessToken, err := h.sessions.Refresh(r.Context(), refreshTokenFrom(r, &body))
	if err != nil {
		logger.Log.WithError(err).Debug("Refresh rejected")
		if errors.Is(err, service.ErrUserNotFound) {
			return common.NewKindError(http.StatusUnauthorized, "UserNotFound", "User not found", nil)
		}
		return sessionError(err)
	}

	common.WriteJSON(w, http.StatusOK, model.AccessTokenResponse{AccessToken: accessToken})
	return nil
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the refresh token from the "jid" cookie or the request body and clears the cookie. Never fails.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  body      model.RefreshRequest  false  "Refresh token, if not sent as a cookie"
// @Success      200    {object}  model.MessageResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var body model.RefreshRequest
	// a malformed body only means there is no token in it
	_ = common.DecodeOptional(r, &body)

	var caller *model.AuthenticatedCaller
	if c, ok := CallerFromContext(r.Context()); ok {
		caller = &c
	}

	h.sessions.Logout(r.Context(), refreshTokenFrom(r, &body), caller, clientInfo(r, h.trustProxy))

	clearRefreshCookie(w, h.cookieSecure)
	common.WriteJSON(w, http.StatusOK, model.MessageResponse{Message: "logged out"})
	return nil
}

// Me godoc
// @Summary      Current user
// @Description  Returns the public profile of the authenticated user.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  model.PublicUser
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		return sessionError(service.ErrUnauthenticated)
	}

	profile, err := h.sessions.Me(r.Context(), caller)
	if err != nil {
		return sessionError(err)
	}

	common.WriteJSON(w, http.StatusOK, profile)
	return nil
}

// UpdateProfile godoc
// @Summary      Update profile
// @Description  Changes the name and/or email of the authenticated user. Omitted fields are left unchanged.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        profile  body      model.UpdateProfileRequest  true  "Fields to change"
// @Success      200      {object}  model.ProfileUpdateResponse
// @Failure      400      {object}  common.AppError
// @Failure      401      {object}  common.AppError
// @Failure      404      {object}  common.AppError
// @Security     BearerAuth
// @Router       /auth/profile [put]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) *common.AppError {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		return sessionError(service.ErrUnauthenticated)
	}

	var req model.UpdateProfileRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":      caller.UserID,
		"change_name":  req.Name != "",
		"change_email": req.Email != "",
	}).Info("Profile update request received")

	profile, err := h.sessions.UpdateProfile(r.Context(), caller, req.Name, req.Email, clientInfo(r, h.trustProxy))
	if err != nil {
		return sessionError(err)
	}

	common.WriteJSON(w, http.StatusOK, model.ProfileUpdateResponse{
		Message: "Profile updated successfully",
		User:    *profile,
	})
	return nil
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Replaces the password of the authenticated user. The new password needs at least 6 characters.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        passwords  body      model.ChangePasswordRequest  true  "Current and new password"
// @Success      200        {object}  model.MessageResponse
// @Failure      400        {object}  common.AppError
// @Failure      401        {object}  common.AppError
// @Failure      404        {object}  common.AppError
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		return sessionError(service.ErrUnauthenticated)
	}

	var req model.ChangePasswordRequest
	if appErr := common.DecodeOptional(r, &req); appErr != nil {
		return appErr
	}

	err := h.sessions.ChangePassword(r.Context(), caller, req.CurrentPassword, req.NewPassword, clientInfo(r, h.trustProxy))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return common.NewKindError(http.StatusBadRequest, "InvalidCredentials", "Current password is incorrect", nil)
		}
		return sessionError(err)
	}

	common.WriteJSON(w, http.StatusOK, model.MessageResponse{Message: "Password changed successfully"})
	return nil
}
