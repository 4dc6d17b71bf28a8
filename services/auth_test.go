package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nssc-portal/middleware"
	"nssc-portal/models"
)

func TestAuth_CreateAccountSeedsPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.auth()

	user, err := auth.CreateAccount(ctx, NewAccount{Email: " Asha@Example.com ", Password: "Secret@123", DisplayName: "Asha"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.UID)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, models.RoleCandidate, user.Role)
	assert.NotEqual(t, "Secret@123", user.Password)

	var perms []models.Permission
	require.NoError(t, env.db.Where("user_id = ?", user.ID).Find(&perms).Error)
	assert.Len(t, perms, len(models.DefaultPermissions(models.RoleCandidate)))

	_, err = auth.CreateAccount(ctx, NewAccount{Email: "asha@example.com", Password: "Other@1234"})
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestAuth_SignInIssuesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.auth()

	user, err := auth.CreateAccount(ctx, NewAccount{Email: "a@b.com", Password: "Secret@123"})
	require.NoError(t, err)

	session, err := auth.SignIn(ctx, "a@b.com", "Secret@123", LoginMeta{IP: "10.0.0.1", Device: "test"})
	require.NoError(t, err)

	claims, err := middleware.ParseJWT("test-secret", session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.UID, claims.UID)
	assert.Equal(t, user.ID, claims.UserID)
	assert.NotEmpty(t, claims.ID)

	var tracking []models.LoginTracking
	require.NoError(t, env.db.Find(&tracking).Error)
	require.Len(t, tracking, 1)
	assert.Equal(t, "10.0.0.1", tracking[0].IPAddress)
	assert.Equal(t, user.UID, tracking[0].UID)
	assert.Equal(t, models.RoleCandidate, tracking[0].Role)
}

func TestAuth_SignInFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.auth()

	_, err := auth.SignIn(ctx, "nobody@b.com", "x", LoginMeta{})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = auth.CreateAccount(ctx, NewAccount{Email: "off@b.com", Password: "Secret@123", Status: models.AccountInactive})
	require.NoError(t, err)
	_, err = auth.SignIn(ctx, "off@b.com", "Secret@123", LoginMeta{})
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestAuth_LockoutAfterThreeFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.auth()
	start := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	auth.now = fixedClock(start)

	_, err := auth.CreateAccount(ctx, NewAccount{Email: "a@b.com", Password: "Secret@123"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = auth.SignIn(ctx, "a@b.com", "wrong", LoginMeta{})
		assert.ErrorIs(t, err, ErrWrongPassword)
	}

	_, err = auth.SignIn(ctx, "a@b.com", "Secret@123", LoginMeta{})
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	auth.now = fixedClock(start.Add(2 * time.Minute))
	_, err = auth.SignIn(ctx, "a@b.com", "Secret@123", LoginMeta{})
	assert.NoError(t, err)
}

func TestAuth_ExpiredBlockStartsCountingAgain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.auth()
	start := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	auth.now = fixedClock(start)

	_, err := auth.CreateAccount(ctx, NewAccount{Email: "a@b.com", Password: "Secret@123"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = auth.SignIn(ctx, "a@b.com", "wrong", LoginMeta{})
		require.ErrorIs(t, err, ErrWrongPassword)
	}

	auth.now = fixedClock(start.Add(2 * time.Minute))
	_, err = auth.SignIn(ctx, "a@b.com", "wrong", LoginMeta{})
	assert.ErrorIs(t, err, ErrWrongPassword)
	_, err = auth.SignIn(ctx, "a@b.com", "Secret@123", LoginMeta{})
	assert.NoError(t, err, "one miss after the block expired does not block again")

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "a@b.com").First(&user).Error)
	assert.False(t, user.IsBlocked)
	assert.Zero(t, user.FailedLoginAttempts)
}

func TestAuth_SignOutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.auth()

	_, err := auth.CreateAccount(ctx, NewAccount{Email: "a@b.com", Password: "Secret@123"})
	require.NoError(t, err)
	session, err := auth.SignIn(ctx, "a@b.com", "Secret@123", LoginMeta{})
	require.NoError(t, err)
	claims, err := middleware.ParseJWT("test-secret", session.Token)
	require.NoError(t, err)

	revoked, err := auth.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, auth.SignOut(ctx, claims.ID, claims.ExpiresAt.Time))
	revoked, err = auth.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuth_UpdateDisplayNameAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.auth()

	user, err := auth.CreateAccount(ctx, NewAccount{Email: "a@b.com", Password: "Secret@123"})
	require.NoError(t, err)

	require.NoError(t, auth.UpdateDisplayName(ctx, user.UID, "  Asha Patil "))
	got, err := auth.GetUser(ctx, user.UID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Patil", got.DisplayName)

	assert.ErrorIs(t, auth.UpdateDisplayName(ctx, "missing", "x"), ErrUserNotFound)

	require.NoError(t, auth.DeleteAccount(ctx, user.UID))
	_, err = auth.GetUser(ctx, user.UID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthErrorMessage(t *testing.T) {
	assert.Equal(t, "This email address is already in use by another account.", AuthErrorMessage(ErrEmailInUse))
	assert.Equal(t, "Incorrect password. Please try again.", AuthErrorMessage(ErrWrongPassword))
	assert.Equal(t, "No user found with this email. Please sign up first.", AuthErrorMessage(ErrUserNotFound))
	assert.Equal(t, "This user account has been disabled.", AuthErrorMessage(ErrUserDisabled))
	assert.Equal(t, "An unknown error occurred. Please try again.", AuthErrorMessage(errBoom))
}
