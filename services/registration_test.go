package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nssc-portal/models"
)

func validRegistration() Registration {
	return Registration{
		FirstName:        "Asha",
		LastName:         "Patil",
		DOB:              "2001-04-12",
		Gender:           "female",
		Email:            "asha@example.com",
		PrimaryMobile:    "9876543210",
		SecurityQuestion: "First school?",
		SecurityAnswer:   "Model High",
		Password:         "Secret@123",
		ConfirmPassword:  "Secret@123",
	}
}

func verifyEmail(t *testing.T, otp *OTPService, email string) {
	t.Helper()
	ctx := context.Background()
	otp.generate = func() string { return "654321" }
	require.NoError(t, otp.Send(ctx, email))
	require.NoError(t, otp.Verify(ctx, email, "654321"))
}

func TestRegister_RequiresVerifiedEmail(t *testing.T) {
	env := newTestEnv(t)
	reg := NewRegistrationService(env.auth(), env.otp(), env.docs, nil)

	_, err := reg.Register(context.Background(), validRegistration())
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRegister_CreatesAccountAndProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	otp := env.otp()
	verifyEmail(t, otp, "asha@example.com")
	reg := NewRegistrationService(env.auth(), otp, env.docs, nil)

	out, err := reg.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}[0-9A-Z]{8}$`), out.ProfileID)

	snap, err := env.docs.Get(ctx, models.CollectionUsers, out.UID)
	require.NoError(t, err)
	var profile models.CandidateProfile
	require.NoError(t, snap.DataTo(&profile))
	assert.Equal(t, out.ProfileID, profile.ProfileID)
	assert.Equal(t, "Asha Patil", profile.FullName())
	assert.Equal(t, "9876543210", profile.PrimaryMobile)
	assert.False(t, profile.ProfileLocked)

	user, err := env.auth().SignIn(ctx, "asha@example.com", "Secret@123", LoginMeta{})
	require.NoError(t, err)
	assert.True(t, user.User.IsEmailVerified)

	_, err = reg.Register(ctx, validRegistration())
	assert.Error(t, err, "the otp is consumed and the email is taken")
}

func TestRegister_RemovesAccountWhenProfileWriteFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	otp := env.otp()
	verifyEmail(t, otp, "asha@example.com")
	reg := NewRegistrationService(env.auth(), otp, &flakyDocs{DocumentStore: env.docs, setErr: errBoom}, nil)

	_, err := reg.Register(ctx, validRegistration())
	assert.ErrorIs(t, err, errBoom)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)

	verified, err := otp.IsVerified(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.True(t, verified, "a failed registration can be retried")
}
