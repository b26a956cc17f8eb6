package service

import (
	"context"
	"testing"
	"time"

	"digilinex/config"
	"digilinex/internal/auth"
	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture() (*memUOW, *AuthService) {
	u := newMemUOW()
	cfg := &config.JWTConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "test",
	}
	log := quietLog()
	return u, NewAuthService(cfg, u, NewReferralService(u, log), log)
}

func TestRegisterCreatesWalletsAndCode(t *testing.T) {
	u, svc := newAuthFixture()
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, RegisterInput{
		Email: " Jane@Example.com ", Username: "jane", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, domain.RankStarter, user.Rank)
	assert.NotEmpty(t, pair.AccessToken)

	wallets, err := u.Store().Wallets().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, wallets, len(domain.Purposes)*len(domain.Currencies))

	_, err = u.Store().Referrals().GetCodeByUser(ctx, user.ID)
	assert.NoError(t, err)

	_, _, err = svc.Register(ctx, RegisterInput{Email: "jane@example.com", Username: "jane2", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailExists)
	_, _, err = svc.Register(ctx, RegisterInput{Email: "j2@example.com", Username: "jane", Password: "password123"})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestRegisterWithReferralCode(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()

	ref, _, err := svc.Register(ctx, RegisterInput{Email: "ref@example.com", Username: "ref", Password: "password123"})
	require.NoError(t, err)
	code, err := svc.referrals.GetOrCreateCode(ctx, ref.ID)
	require.NoError(t, err)

	user, _, err := svc.Register(ctx, RegisterInput{
		Email: "new@example.com", Username: "newbie", Password: "password123", ReferralCode: code.Code,
	})
	require.NoError(t, err)
	require.NotNil(t, user.ReferredByID)
	assert.Equal(t, ref.ID, *user.ReferredByID)
}

func TestLogin(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()
	_, _, err := svc.Register(ctx, RegisterInput{Email: "sam@example.com", Username: "sam", Password: "password123"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "SAM@example.com", "password123")
	assert.NoError(t, err, "email is case-insensitive")
	_, _, err = svc.Login(ctx, "sam", "password123")
	assert.NoError(t, err)
	_, _, err = svc.Login(ctx, "sam", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	_, _, err = svc.AdminLogin(ctx, "sam", "password123")
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestAdminLogin(t *testing.T) {
	u, svc := newAuthFixture()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-admin"), bcrypt.MinCost)
	require.NoError(t, err)
	u.addUser(models.User{Username: "root", Email: "root@example.com", Role: domain.RoleAdmin, PasswordHash: string(hash)})

	user, pair, err := svc.AdminLogin(context.Background(), "root@example.com", "s3cret-admin")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())

	claims, err := auth.ParseAccessToken(svc.cfg, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestLoginWithGoogle(t *testing.T) {
	u, svc := newAuthFixture()
	ctx := context.Background()

	user, _, isNew, err := svc.LoginWithGoogle(ctx, GoogleProfile{ID: "g-1", Email: "Pat@Example.com", Name: "Pat Smith"}, "")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "pat-smith", user.Username)
	assert.Equal(t, "pat@example.com", user.Email)

	again, _, isNew, err := svc.LoginWithGoogle(ctx, GoogleProfile{ID: "g-1", Email: "pat@example.com"}, "")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, user.ID, again.ID)

	existing, _, err := svc.Register(ctx, RegisterInput{Email: "lee@example.com", Username: "lee", Password: "password123"})
	require.NoError(t, err)
	linked, _, isNew, err := svc.LoginWithGoogle(ctx, GoogleProfile{ID: "g-2", Email: "lee@example.com", Picture: "https://img"}, "")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, existing.ID, linked.ID)

	stored, err := u.Store().Users().GetByGoogleID(ctx, "g-2")
	require.NoError(t, err)
	assert.Equal(t, "https://img", stored.AvatarURL)
}

func TestChangePasswordAndRefresh(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()
	user, pair, err := svc.Register(ctx, RegisterInput{Email: "kim@example.com", Username: "kim", Password: "password123"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "nope", "newpassword1"), ErrInvalidCreds)
	require.NoError(t, svc.ChangePassword(ctx, user.ID, "password123", "newpassword1"))

	_, _, err = svc.Login(ctx, "kim", "newpassword1")
	assert.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
