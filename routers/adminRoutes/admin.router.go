package adminRoutes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	adminControllers "nssc-portal/controllers/admin"
	"nssc-portal/middleware"
	"nssc-portal/models"
	adminValidators "nssc-portal/validators/admin"
)

func SetupAdminRoutes(app *fiber.App, ctl *adminControllers.Controller, requireAuth fiber.Handler, db *gorm.DB) {
	app.Get("/settings/global", ctl.GetSettings)

	admin := app.Group("/admin", requireAuth, middleware.RequireRole(models.RoleAdmin, models.RoleStaff))

	canView := middleware.CheckPermissionMiddleware(db, models.PermViewCandidates)
	canReview := middleware.CheckPermissionMiddleware(db, models.PermReviewApplications)
	canCreate := middleware.CheckPermissionMiddleware(db, models.PermCreateUsers)
	canManage := middleware.CheckPermissionMiddleware(db, models.PermManageSettings)

	admin.Get("/dashboard", canView, ctl.Dashboard)
	admin.Get("/candidates", canView, adminValidators.Pagination(), ctl.Candidates)
	admin.Get("/candidates/:uid", canView, ctl.Candidate)
	admin.Patch("/candidates/:uid/applications/:id/status", canReview, adminValidators.ReviewApplication(), ctl.ReviewApplication)
	admin.Post("/users", canCreate, adminValidators.CreateUser(), ctl.CreateUser)
	admin.Put("/settings/global", canManage, adminValidators.Settings(), ctl.UpdateSettings)
}
