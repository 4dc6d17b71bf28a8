package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nssc-portal/models"
	"nssc-portal/store"
)

var testToday = time.Date(2025, 9, 1, 9, 30, 0, 0, time.UTC)

func seedProfile(t *testing.T, docs store.DocumentStore) {
	t.Helper()
	profile := models.NewCandidateProfile(testUID, testEmail)
	profile.FirstName = "Asha"
	profile.MiddleName = "R"
	profile.LastName = "Patil"
	data := map[string]any{
		"uid":            profile.UID,
		"email":          profile.Email,
		"firstName":      profile.FirstName,
		"middleName":     profile.MiddleName,
		"lastName":       profile.LastName,
		"qualifications": []any{},
		"profileLocked":  false,
	}
	_, err := docs.Set(context.Background(), models.CollectionUsers, testUID, data)
	require.NoError(t, err)
}

func newApplicationService(env *testEnv) *ApplicationService {
	svc := NewApplicationService(env.docs, nil)
	svc.now = fixedClock(testToday)
	return svc
}

func TestApplication_ApplySequencesIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedProfile(t, env.docs)
	svc := newApplicationService(env)

	first, err := svc.Apply(ctx, testUID, "2025-26")
	require.NoError(t, err)
	assert.Equal(t, "202509C329110/CC/2025/01", first.ApplicationID)
	assert.Equal(t, models.ApplicationPending, first.Status)
	assert.Equal(t, models.ApplicationAmount, first.Amount)
	assert.Equal(t, models.CourseCategoryNSSC, first.CourseCategory)

	second, err := svc.Apply(ctx, testUID, "2025-26")
	require.NoError(t, err)
	assert.Equal(t, "202509C329110/CC/2025/02", second.ApplicationID)

	apps, err := svc.List(ctx, testUID)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, first.ID, apps[0].ID)

	got, err := svc.Get(ctx, testUID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ApplicationID, got.ApplicationID)
}

func TestApplication_ApplyRejectsUnknownYear(t *testing.T) {
	env := newTestEnv(t)
	seedProfile(t, env.docs)
	svc := newApplicationService(env)

	_, err := svc.Apply(context.Background(), testUID, "2019-20")
	assert.ErrorIs(t, err, ErrInvalidRegistrationYear)
	assert.Equal(t, []string{"2025-26", "2026-27", "2027-28", "2028-29", "2029-30"}, svc.RegistrationYears())
}

func TestApplication_ListWithoutProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := newApplicationService(env)

	apps, err := svc.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, apps)

	_, err = svc.Get(context.Background(), "nobody", "x")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestApplication_Slip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedProfile(t, env.docs)
	svc := newApplicationService(env)

	app, err := svc.Apply(ctx, testUID, "2026-27")
	require.NoError(t, err)

	slip, err := svc.Slip(ctx, testUID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentSlip{
		Name:             "ASHA R PATIL",
		ApplicationID:    "202509C329110/CC/2026/01",
		AdmissionSession: "2026-27",
		CourseType:       "National Skill Sector Council",
		Fee:              "2000.00",
	}, slip)

	_, err = svc.Slip(ctx, testUID, "missing")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestApplication_UpdateStatusOnlyFromBooked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedProfile(t, env.docs)
	svc := newApplicationService(env)

	app, err := svc.Apply(ctx, testUID, "2025-26")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, testUID, app.ID, models.ApplicationVerified, "")
	assert.ErrorIs(t, err, ErrInvalidTransition, "pending applications have nothing to review")

	err = svc.updateApplication(ctx, testUID, app.ID, func(a *models.Application) error {
		a.Status = models.ApplicationAppointmentBooked
		a.Documents = []models.ApplicationDocument{{ID: "pan", Status: models.DocumentPending}}
		return nil
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, testUID, app.ID, models.ApplicationPending, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := svc.UpdateStatus(ctx, testUID, app.ID, models.ApplicationRefillRequired, "PAN card is blurred")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRefillRequired, updated.Status)
	assert.Equal(t, "PAN card is blurred", updated.Remarks)
	assert.Equal(t, models.DocumentRejected, updated.Documents[0].Status)
	assert.True(t, updated.Bookable())

	_, err = svc.UpdateStatus(ctx, testUID, "missing", models.ApplicationVerified, "")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}
