package candidateRoutes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	candidateControllers "nssc-portal/controllers/candidate"
	"nssc-portal/middleware"
	"nssc-portal/models"
	appointmentValidators "nssc-portal/validators/appointment"
	profileValidators "nssc-portal/validators/profile"
)

func SetupCandidateRoutes(app *fiber.App, ctl *candidateControllers.Controller, requireAuth fiber.Handler, db *gorm.DB) {
	candidate := app.Group("/candidate", requireAuth, middleware.RequireRole(models.RoleCandidate, models.RoleAdmin))

	canView := middleware.CheckPermissionMiddleware(db, models.PermViewProfile)
	canEdit := middleware.CheckPermissionMiddleware(db, models.PermEditProfile)
	canApply := middleware.CheckPermissionMiddleware(db, models.PermApply)
	canBook := middleware.CheckPermissionMiddleware(db, models.PermBookAppointment)

	profile := candidate.Group("/profile")
	profile.Get("/", canView, ctl.GetProfile)
	profile.Get("/stream", canView, ctl.StreamProfile)
	profile.Post("/steps/:step", canEdit, profileValidators.Step(), ctl.SubmitStep)
	profile.Post("/steps/:step/back", canEdit, profileValidators.Step(), ctl.Retreat)
	profile.Post("/qualifications/preview", profileValidators.Qualification(), ctl.PreviewQualification)
	profile.Post("/qualifications", canEdit, profileValidators.Qualification(), ctl.AddQualification)
	profile.Delete("/qualifications/:index", canEdit, profileValidators.QualificationIndex(), ctl.RemoveQualification)
	profile.Post("/assets/:kind", canEdit, profileValidators.Asset(), ctl.UploadAsset)

	applications := candidate.Group("/applications")
	applications.Get("/years", canApply, ctl.RegistrationYears)
	applications.Get("/", canView, ctl.ListApplications)
	applications.Post("/", canApply, appointmentValidators.Apply(), ctl.Apply)
	applications.Get("/:id", canView, ctl.GetApplication)
	applications.Get("/:id/slip", canView, ctl.Slip)

	appointments := candidate.Group("/appointments")
	appointments.Get("/calendar", canBook, ctl.Calendar)
	appointments.Post("/documents", canBook, appointmentValidators.Upload(), ctl.UploadDocument)
	appointments.Post("/", canBook, appointmentValidators.Booking(), ctl.Book)
}
