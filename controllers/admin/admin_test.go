package adminController_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	adminController "nssc-portal/controllers/admin"
	"nssc-portal/database"
	"nssc-portal/middleware"
	"nssc-portal/models"
	adminRoutes "nssc-portal/routers/adminRoutes"
	"nssc-portal/services"
	"nssc-portal/store"
	"nssc-portal/wizard"
)

const secret = "test-secret"

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	app   *fiber.App
	auth  *services.AuthService
	docs  *store.GormStore
	admin string
	staff string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.RunMigrations(db, zap.NewNop()))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	docs := store.NewGormStore(db, store.NewRedisNotifier(rdb, nil), nil)
	auth := services.NewAuthService(db, rdb, secret, bcrypt.MinCost, nil)
	apps := services.NewApplicationService(docs, nil)
	admin := services.NewAdminService(db, auth, apps, docs, nil)
	settings := services.NewSettingsService(docs, nil)

	app := fiber.New()
	adminRoutes.SetupAdminRoutes(app, adminController.New(admin, settings, zap.NewNop()), middleware.JWTMiddleware(secret, auth), db)

	h := &harness{app: app, auth: auth, docs: docs}
	h.admin = h.token(t, "admin@example.com", models.RoleAdmin)
	h.staff = h.token(t, "staff@example.com", models.RoleStaff)
	return h
}

func (h *harness) token(t *testing.T, email, role string) string {
	t.Helper()
	user, err := h.auth.CreateAccount(context.Background(), services.NewAccount{Email: email, Password: "Secret@123", Role: role})
	require.NoError(t, err)
	token, _, err := middleware.GenerateJWT(secret, user, time.Hour)
	require.NoError(t, err)
	return token
}

func (h *harness) do(t *testing.T, method, path string, body any, token string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestGlobalSettings(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(t, http.MethodGet, "/settings/global", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"activeThemeName":"default","navbarThemeName":"default","activeFont":"Inter"}`, string(body.Data))

	update := models.GlobalSettings{ActiveThemeName: "ocean", NavbarThemeName: "dark", ActiveFont: "Roboto"}

	status, _ = h.do(t, http.MethodPut, "/admin/settings/global", update, h.staff)
	assert.Equal(t, fiber.StatusForbidden, status, "staff cannot manage settings")

	status, body = h.do(t, http.MethodPut, "/admin/settings/global", map[string]string{"activeThemeName": "ocean"}, h.admin)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, string(body.Data), `"activeFont"`)

	status, _ = h.do(t, http.MethodPut, "/admin/settings/global", update, h.admin)
	require.Equal(t, fiber.StatusOK, status)

	status, body = h.do(t, http.MethodGet, "/settings/global", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"activeThemeName":"ocean","navbarThemeName":"dark","activeFont":"Roboto"}`, string(body.Data))
}

func TestCreateUserAndListCandidates(t *testing.T) {
	h := newHarness(t)
	newUser := services.NewUser{
		FirstName: "Asha", LastName: "Patil", Email: "asha@example.com",
		Password: "Secret@123", Role: models.RoleCandidate, Status: models.AccountActive,
	}

	status, _ := h.do(t, http.MethodPost, "/admin/users", newUser, h.staff)
	assert.Equal(t, fiber.StatusForbidden, status)

	invalid := newUser
	invalid.Role = "owner"
	status, body := h.do(t, http.MethodPost, "/admin/users", invalid, h.admin)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.NotContains(t, string(body.Data), "Secret@123", "passwords are not echoed")

	status, body = h.do(t, http.MethodPost, "/admin/users", newUser, h.admin)
	require.Equal(t, fiber.StatusCreated, status, body.Message)

	status, body = h.do(t, http.MethodPost, "/admin/users", newUser, h.admin)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "This email address is already in use by another account.", body.Message)

	status, body = h.do(t, http.MethodGet, "/admin/candidates?page=1&limit=10", nil, h.staff)
	require.Equal(t, fiber.StatusOK, status)
	var page struct {
		Candidates []services.CandidateSummary `json:"candidates"`
		Pagination struct {
			Total int64 `json:"total"`
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &page))
	require.Len(t, page.Candidates, 1)
	assert.Equal(t, "Asha Patil", page.Candidates[0].Name)
	assert.Equal(t, int64(1), page.Pagination.Total)
	assert.Equal(t, 10, page.Pagination.Limit)

	status, _ = h.do(t, http.MethodGet, "/admin/candidates?limit=500", nil, h.staff)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = h.do(t, http.MethodGet, "/admin/candidates/unknown", nil, h.staff)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = h.do(t, http.MethodGet, "/admin/dashboard", nil, h.staff)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestReviewApplication(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	apps := []models.Application{
		{ID: "booked", ApplicationID: "202509C329110/CC/2025/01", Status: models.ApplicationAppointmentBooked,
			Documents: []models.ApplicationDocument{{ID: "aadhaar", Status: models.DocumentPending}}},
		{ID: "pending", ApplicationID: "202509C329110/CC/2025/02", Status: models.ApplicationPending},
	}
	data, err := wizard.ToMap(models.CandidateProfile{UID: "cand-1", Email: "c@example.com", AppliedCourses: apps})
	require.NoError(t, err)
	_, err = h.docs.Set(ctx, models.CollectionUsers, "cand-1", data)
	require.NoError(t, err)

	path := "/admin/candidates/cand-1/applications/booked/status"

	status, body := h.do(t, http.MethodPatch, path, map[string]string{"status": "Rejected"}, h.staff)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, string(body.Data), `"remarks"`)

	status, _ = h.do(t, http.MethodPatch, path, map[string]string{"status": "Pending"}, h.staff)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, body = h.do(t, http.MethodPatch, path, map[string]string{"status": "Verified"}, h.staff)
	require.Equal(t, fiber.StatusOK, status, body.Message)
	var reviewed models.Application
	require.NoError(t, json.Unmarshal(body.Data, &reviewed))
	assert.Equal(t, models.ApplicationVerified, reviewed.Status)
	assert.Equal(t, models.DocumentVerified, reviewed.Documents[0].Status)

	status, _ = h.do(t, http.MethodPatch, "/admin/candidates/cand-1/applications/pending/status", map[string]string{"status": "Verified"}, h.staff)
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = h.do(t, http.MethodPatch, "/admin/candidates/cand-1/applications/missing/status", map[string]string{"status": "Verified"}, h.staff)
	assert.Equal(t, fiber.StatusNotFound, status)
}
