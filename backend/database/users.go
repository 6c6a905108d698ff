package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PhilHem/go-totp-auth/backend/models"

	"gorm.io/gorm"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUserNotFound   = errors.New("user not found")
)

// Hasher turns a plaintext password into a storable digest.
type Hasher interface {
	Hash(password string) (string, error)
}

// UserStore persists users. Every method touches at most one row.
type UserStore struct {
	db     *gorm.DB
	hasher Hasher
}

func NewUserStore(db *gorm.DB, hasher Hasher) *UserStore {
	return &UserStore{db: db, hasher: hasher}
}

// Create hashes password and inserts a new user. The unique index on email
// decides concurrent registrations for the same address.
func (s *UserStore) Create(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Email: email, PasswordHash: hash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// SetTwoFactorSecret overwrites any stored secret, verified or not.
func (s *UserStore) SetTwoFactorSecret(ctx context.Context, id uint, secret string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("two_factor_secret", secret)
	if res.Error != nil {
		return fmt.Errorf("update two_factor_secret: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserStore) EnableTwoFactor(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("two_factor_enabled", true)
	if res.Error != nil {
		return fmt.Errorf("update two_factor_enabled: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List returns all users ordered by id.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return fmt.Errorf("query user: %w", err)
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
