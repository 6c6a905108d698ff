package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/PhilHem/go-totp-auth/backend/database"
	"github.com/PhilHem/go-totp-auth/backend/models"
)

// UserFinder loads a user by id.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// Guard turns a bearer token into the user it was issued for.
type Guard struct {
	tokens *TokenIssuer
	users  UserFinder
}

func NewGuard(tokens *TokenIssuer, users UserFinder) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Resolve returns ErrUnauthenticated for a missing or invalid token and for
// tokens whose user no longer exists.
func (g *Guard) Resolve(ctx context.Context, token string) (*models.User, error) {
	userID, err := g.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return user, nil
}
