package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/PhilHem/go-totp-auth/backend/auth"
	"github.com/PhilHem/go-totp-auth/backend/models"

	"github.com/go-playground/validator/v10"
)

// AuthService is the authentication state machine behind the API.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	SetupTwoFactor(ctx context.Context, user *models.User) (*auth.Enrollment, error)
	QRCode(e *auth.Enrollment) (string, error)
	VerifyTwoFactorSetup(ctx context.Context, user *models.User, code string) error
	VerifyTwoFactorLogin(ctx context.Context, userID uint, code string) (*models.User, string, error)
}

type AuthHandler struct {
	svc      AuthService
	validate *validator.Validate
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries an established session.
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// TwoFactorRequiredResponse answers a correct password on a 2FA account.
type TwoFactorRequiredResponse struct {
	RequiresTwoFactor bool `json:"requiresTwoFactor"`
	UserID            uint `json:"userId"`
}

type UserResponse struct {
	User *models.User `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Registration failed")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Registration failed")
		return
	}

	user, token, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Login failed")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "Login failed")
		return
	}

	if result.RequiresTwoFactor {
		writeJSON(w, http.StatusOK, TwoFactorRequiredResponse{RequiresTwoFactor: true, UserID: result.UserID})
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{User: result.User, Token: result.Token})
}

// Me returns the user resolved from the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, user *models.User) {
	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

// Message is the SPA's backend connectivity check.
func Message(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Hello from the backend!"})
}
