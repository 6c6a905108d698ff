package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/PhilHem/go-totp-auth/backend/database"
	"github.com/PhilHem/go-totp-auth/backend/models"
)

// UserStore is the credential store the service runs against.
type UserStore interface {
	Create(ctx context.Context, email, password string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	SetTwoFactorSecret(ctx context.Context, id uint, secret string) error
	EnableTwoFactor(ctx context.Context, id uint) error
}

// LoginResult is either a session (User and Token set) or a pending 2FA
// challenge (RequiresTwoFactor and UserID set, no token).
type LoginResult struct {
	User              *models.User
	Token             string
	RequiresTwoFactor bool
	UserID            uint
}

type Service struct {
	store  UserStore
	hasher PasswordHasher
	totp   *TOTP
	tokens *TokenIssuer
	guard  *Guard
}

func NewService(store UserStore, hasher PasswordHasher, t *TOTP, tokens *TokenIssuer) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		totp:   t,
		tokens: tokens,
		guard:  NewGuard(tokens, store),
	}
}

// Guard returns the resolver used for requests that need an established identity.
func (s *Service) Guard() *Guard {
	return s.guard
}

func (s *Service) Register(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.store.Create(ctx, email, password)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			slog.Warn("registration failed: email exists", "source", "auth", "email", email)
			return nil, "", fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
		}
		slog.Error("registration failed: store error", "source", "auth", "error", err.Error())
		return nil, "", fmt.Errorf("%w: %w: %v", ErrRegistrationFailed, ErrStoreUnavailable, err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		slog.Error("registration failed: token error", "source", "auth", "user_id", user.ID, "error", err.Error())
		return nil, "", fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	slog.Info("user registered", "source", "auth", "user_id", user.ID, "email", email)
	return user, token, nil
}

// Login checks a password. Unknown email and wrong password both return
// ErrInvalidCredentials. Accounts with 2FA enabled never get a token here.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			slog.Warn("login failed: user not found", "source", "auth", "email", email)
			return nil, ErrInvalidCredentials
		}
		slog.Error("login failed: store error", "source", "auth", "error", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		slog.Warn("login failed: invalid password", "source", "auth", "email", email)
		return nil, ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		slog.Info("login pending 2FA", "source", "auth", "user_id", user.ID)
		return &LoginResult{RequiresTwoFactor: true, UserID: user.ID}, nil
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", "source", "auth", "user_id", user.ID, "email", email)
	return &LoginResult{User: user, Token: token, UserID: user.ID}, nil
}

// SetupTwoFactor stores a new secret for user right away. 2FA stays disabled
// until VerifyTwoFactorSetup succeeds; calling again replaces the pending secret.
func (s *Service) SetupTwoFactor(ctx context.Context, user *models.User) (*Enrollment, error) {
	enrollment, err := s.totp.GenerateSecret(user.Email)
	if err != nil {
		slog.Error("failed to generate MFA secret", "source", "mfa", "user_id", user.ID, "error", err.Error())
		return nil, err
	}

	if err := s.store.SetTwoFactorSecret(ctx, user.ID, enrollment.Secret); err != nil {
		slog.Error("failed to store MFA secret", "source", "mfa", "user_id", user.ID, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	secret := enrollment.Secret
	user.TwoFactorSecret = &secret

	slog.Info("MFA setup started", "source", "mfa", "user_id", user.ID)
	return enrollment, nil
}

// QRCode renders an enrollment for display.
func (s *Service) QRCode(e *Enrollment) (string, error) {
	return s.totp.QRCode(e)
}

// VerifyTwoFactorSetup checks code against the user's stored secret and
// enables 2FA on success. Repeating it once enabled changes nothing.
func (s *Service) VerifyTwoFactorSetup(ctx context.Context, user *models.User, code string) error {
	if !user.HasTwoFactorSecret() || !s.totp.Verify(*user.TwoFactorSecret, code) {
		slog.Warn("MFA enable failed: invalid code", "source", "mfa", "user_id", user.ID)
		return ErrInvalidTwoFactorCode
	}

	if err := s.store.EnableTwoFactor(ctx, user.ID); err != nil {
		slog.Error("failed to enable MFA", "source", "mfa", "user_id", user.ID, "error", err.Error())
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	user.TwoFactorEnabled = true

	slog.Info("MFA enabled", "source", "mfa", "user_id", user.ID)
	return nil
}

// VerifyTwoFactorLogin completes a login left pending by Login. It is the only
// way a 2FA-enabled account obtains a token.
func (s *Service) VerifyTwoFactorLogin(ctx context.Context, userID uint, code string) (*models.User, string, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			slog.Warn("MFA verification failed: unknown user", "source", "mfa", "user_id", userID)
			return nil, "", ErrUserNotFoundOrNoTwoFactor
		}
		slog.Error("MFA verification failed: store error", "source", "mfa", "error", err.Error())
		return nil, "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !user.HasTwoFactorSecret() {
		slog.Warn("MFA verification failed: no secret", "source", "mfa", "user_id", user.ID)
		return nil, "", ErrUserNotFoundOrNoTwoFactor
	}

	if !s.totp.Verify(*user.TwoFactorSecret, code) {
		slog.Warn("MFA verification failed: invalid code", "source", "mfa", "user_id", user.ID)
		return nil, "", ErrInvalidTwoFactorCode
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	slog.Info("MFA verification successful", "source", "mfa", "user_id", user.ID)
	return user, token, nil
}

func (s *Service) ResolveCurrentUser(ctx context.Context, token string) (*models.User, error) {
	return s.guard.Resolve(ctx, token)
}
