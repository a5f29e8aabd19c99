package auth

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/identity"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/ledger"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/wallet"
)

func newTokens() *TokenService {
	return NewTokenService(TokenConfig{Issuer: "test", Secret: "access-secret", RefreshSecret: "refresh-secret", AccessTTL: time.Minute, RefreshTTL: time.Hour})
}

func TestIssueAndParse(t *testing.T) {
	ts := newTokens()
	pair, err := ts.IssuePair("user-1", RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(60), pair.ExpiresIn)

	claims, err := ts.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, RoleUser, claims.Role)

	_, err = ts.ParseAccess(pair.RefreshToken)
	assert.Error(t, err, "refresh token is signed with a different secret")

	_, err = ts.ParseAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSameSecretStillChecksTokenType(t *testing.T) {
	ts := NewTokenService(TokenConfig{Secret: "one", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	pair, err := ts.IssuePair("v-1", RoleVendor)
	require.NoError(t, err)

	_, err = ts.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestExpiredAccessToken(t *testing.T) {
	ts := newTokens()
	issued := time.Now().Add(-2 * time.Minute)
	ts.now = func() time.Time { return issued }
	pair, err := ts.IssuePair("user-1", RoleUser)
	require.NoError(t, err)

	ts.now = time.Now
	_, err = ts.ParseAccess(pair.AccessToken)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	access, _, err := ts.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	claims, err := ts.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, claims.Role)
}

func TestLoginUserReturnsWallet(t *testing.T) {
	ctx := context.Background()
	ids := identity.NewService(identity.NewMemoryRepository())
	wallets := wallet.NewService(wallet.NewMemoryRepository(), ledger.NewInMemory())
	svc := NewService(ids, wallets, newTokens())

	u, err := ids.RegisterUser(ctx, identity.UserRegistration{Username: "asha", Email: "a@example.com", Phone: "9876543210", Password: "secret123"})
	require.NoError(t, err)
	w, err := wallets.Open(ctx, wallet.OpenInput{OwnerType: ledger.OwnerUser, OwnerID: u.ID, InitialBalance: decimal.Zero})
	require.NoError(t, err)

	sess, err := svc.LoginUser(ctx, "9876543210", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.AccountID)
	assert.Equal(t, w.WalletID, sess.WalletID)
	assert.NotEmpty(t, sess.Tokens.AccessToken)

	_, err = svc.LoginUser(ctx, "asha", "wrong-pass1")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	_, err = svc.LoginVendor(ctx, "asha", "secret123")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}
