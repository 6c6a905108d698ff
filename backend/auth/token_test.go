package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTokenSecret = "test-secret-key-32-chars-long!!!"

func newTestIssuer(t *testing.T, ttl time.Duration) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testTokenSecret, "go-totp-auth", ttl)
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", "go-totp-auth", 0)
	assert.Error(t, err)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	issuer := newTestIssuer(t, 0)

	token, err := issuer.Issue(7)
	require.NoError(t, err)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
}

func TestIssue_UniquePerCall(t *testing.T) {
	issuer := newTestIssuer(t, 0)

	a, err := issuer.Issue(7)
	require.NoError(t, err)
	b, err := issuer.Issue(7)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestIssue_NoExpiryByDefault(t *testing.T) {
	issuer := newTestIssuer(t, 0)
	token, err := issuer.Issue(7)
	require.NoError(t, err)

	claims := new(Claims)
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)

	// far in the future the token still verifies
	issuer.Now = func() time.Time { return time.Now().Add(10 * 365 * 24 * time.Hour) }
	_, err = issuer.Verify(token)
	assert.NoError(t, err)
}

func TestVerify_Expired(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)
	token, err := issuer.Issue(7)
	require.NoError(t, err)

	issuer.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// RED: Tampered, foreign, malformed and missing tokens are all rejected
func TestVerify_Rejects(t *testing.T) {
	issuer := newTestIssuer(t, 0)
	valid, err := issuer.Issue(7)
	require.NoError(t, err)

	other, err := NewTokenIssuer("another-secret-key-32-chars-long", "go-totp-auth", 0)
	require.NoError(t, err)
	foreign, err := other.Issue(7)
	require.NoError(t, err)

	wrongIssuer, err := NewTokenIssuer(testTokenSecret, "someone-else", 0)
	require.NoError(t, err)
	misissued, err := wrongIssuer.Issue(7)
	require.NoError(t, err)

	noUser, err := issuer.Issue(0)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:           7,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "go-totp-auth"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"foreign":      foreign,
		"wrong issuer": misissued,
		"no user":      noUser,
		"alg none":     unsigned,
		"tampered":     tampered,
	} {
		_, err := issuer.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}
