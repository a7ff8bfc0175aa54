package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventscape/internal/delivery/http/helpers"
	"eventscape/internal/delivery/http/middleware"
	"eventscape/internal/domain"
)

// RegisterRequest is the request body for POST /auth/register
type RegisterRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"display_name"`
}

// Validate implements Validator.
func (s RegisterRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Email) == "" {
		errs = append(errs, "email is required")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse is the response body for POST /auth/login
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      *domain.User `json:"user"`
}

// RegisterSuccessResponse is the success response envelope for POST /auth/register (201).
type RegisterSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// LoginSuccessResponse is the success response envelope for POST /auth/login (200).
type LoginSuccessResponse struct {
	Data  LoginResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AuthController handles registration and session endpoints.
type AuthController struct {
	Logger       *slog.Logger
	Service      domain.AuthService
	SessionTTL   time.Duration
	SecureCookie bool
}

// NewAuthController creates an AuthController. Session cookies live for ttl and
// are marked Secure when secure is set.
func NewAuthController(logger *slog.Logger, svc domain.AuthService, ttl time.Duration, secure bool) *AuthController {
	return &AuthController{
		Logger:       logger,
		Service:      svc,
		SessionTTL:   ttl,
		SecureCookie: secure,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Create an account with email and password (at least 8 characters). Display name is optional.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} controllers.RegisterSuccessResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. Returns a JWT and the user, and sets it as the session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} controllers.LoginSuccessResponse "data contains token, token_type, and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	http.SetCookie(w, c.sessionCookie(token, int(c.SessionTTL.Seconds())))
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token, TokenType: "Bearer", User: user})
}

// LogoutResponse is the response body for POST /auth/logout
type LogoutResponse struct {
	LoggedOut bool `json:"logged_out"`
}

// Logout godoc
// @Summary Log out
// @Description Clears the session cookie. Bearer tokens stay valid until they expire.
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.logged_out is true"
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, c.sessionCookie("", -1))
	helpers.WriteJSONSuccess(w, http.StatusOK, LogoutResponse{LoggedOut: true})
}

func (c *AuthController) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
