package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/PhilHem/go-totp-auth/backend/auth"
	"github.com/PhilHem/go-totp-auth/backend/models"
)

// SetupResponse holds a pending secret and two renderings of its provisioning URI.
type SetupResponse struct {
	Secret     string `json:"secret"`
	QRCode     string `json:"qrCode"`
	OtpauthURL string `json:"otpauthUrl"`
}

// VerifyRequest carries a TOTP code in the "token" field.
type VerifyRequest struct {
	Token string `json:"token"`
}

type VerifyLoginRequest struct {
	UserID UserID `json:"userId"`
	Token  string `json:"token"`
}

// UserID accepts a JSON number or a numeric string. Anything else decodes to 0,
// which never matches a user.
type UserID uint

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	n, err := strconv.ParseUint(string(data), 10, 0)
	if err != nil {
		*id = 0
		return nil
	}
	*id = UserID(n)
	return nil
}

// Setup2FA generates and stores a new pending secret for the current user.
func (h *AuthHandler) Setup2FA(w http.ResponseWriter, r *http.Request, user *models.User) {
	enrollment, err := h.svc.SetupTwoFactor(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to setup 2FA")
		return
	}

	qrCode, err := h.svc.QRCode(enrollment)
	if err != nil {
		slog.Error("failed to generate QR code", "source", "mfa", "user_id", user.ID, "error", err.Error())
		writeError(w, http.StatusBadRequest, "Failed to setup 2FA")
		return
	}

	writeJSON(w, http.StatusOK, SetupResponse{
		Secret:     enrollment.Secret,
		QRCode:     qrCode,
		OtpauthURL: enrollment.URL,
	})
}

// Verify2FA enables 2FA once the user proves possession of the pending secret.
func (h *AuthHandler) Verify2FA(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to verify 2FA")
		return
	}

	err := h.svc.VerifyTwoFactorSetup(r.Context(), user, req.Token)
	switch {
	case errors.Is(err, auth.ErrInvalidTwoFactorCode):
		writeError(w, http.StatusBadRequest, "Invalid 2FA token")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "Failed to verify 2FA")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "2FA enabled successfully"})
}

// VerifyLogin2FA completes a login that answered requiresTwoFactor.
func (h *AuthHandler) VerifyLogin2FA(w http.ResponseWriter, r *http.Request) {
	var req VerifyLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to verify 2FA token")
		return
	}

	user, token, err := h.svc.VerifyTwoFactorLogin(r.Context(), uint(req.UserID), req.Token)
	switch {
	case errors.Is(err, auth.ErrUserNotFoundOrNoTwoFactor):
		writeError(w, http.StatusBadRequest, "Invalid user or 2FA not setup")
		return
	case errors.Is(err, auth.ErrInvalidTwoFactorCode):
		writeError(w, http.StatusBadRequest, "Invalid 2FA token")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "Failed to verify 2FA token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: user, Token: token})
}
