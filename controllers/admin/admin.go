package adminController

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nssc-portal/middleware"
	"nssc-portal/models"
	"nssc-portal/services"
	"nssc-portal/store"
	"nssc-portal/utils"
	adminValidator "nssc-portal/validators/admin"
)

type Controller struct {
	admin    *services.AdminService
	settings *services.SettingsService
	log      *zap.Logger
}

func New(admin *services.AdminService, settings *services.SettingsService, log *zap.Logger) *Controller {
	return &Controller{admin: admin, settings: settings, log: log.Named("admin")}
}

func (ctl *Controller) Dashboard(c *fiber.Ctx) error {
	stats, err := ctl.admin.Dashboard(c.UserContext())
	if err != nil {
		ctl.log.Error("loading dashboard failed", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load dashboard!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", stats)
}

// Candidates lists candidate profiles with pagination
func (ctl *Controller) Candidates(c *fiber.Ctx) error {
	reqData := c.Locals("validatedPage").(*adminValidator.PageRequest)
	_, page, limit := utils.Pagination(reqData.Page, reqData.Limit)

	candidates, total, err := ctl.admin.Candidates(c.UserContext(), page, limit)
	if err != nil {
		ctl.log.Error("listing candidates failed", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch candidates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Candidates fetched successfully!", fiber.Map{
		"candidates": candidates,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

func (ctl *Controller) Candidate(c *fiber.Ctx) error {
	profile, err := ctl.admin.Candidate(c.UserContext(), c.Params("uid"))
	if errors.Is(err, store.ErrNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Candidate not found!", nil)
	}
	if err != nil {
		ctl.log.Error("loading candidate failed", zap.String("uid", c.Params("uid")), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch candidate!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Candidate fetched successfully!", profile)
}

func (ctl *Controller) CreateUser(c *fiber.Ctx) error {
	reqData := c.Locals("validatedNewUser").(*services.NewUser)

	user, err := ctl.admin.CreateUser(c.UserContext(), *reqData)
	if errors.Is(err, services.ErrEmailInUse) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, services.AuthErrorMessage(err), nil)
	}
	if err != nil {
		ctl.log.Error("creating user failed", zap.String("email", reqData.Email), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created successfully!", user)
}

// ReviewApplication records the verification decision for a booked application.
func (ctl *Controller) ReviewApplication(c *fiber.Ctx) error {
	reqData := c.Locals("validatedReview").(*adminValidator.ReviewRequest)
	uid, id := c.Params("uid"), c.Params("id")

	app, err := ctl.admin.Review(c.UserContext(), uid, id, reqData.Status, reqData.Remarks)
	switch {
	case err == nil:
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Application status updated!", app)
	case errors.Is(err, services.ErrApplicationNotFound), errors.Is(err, store.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Application not found!", nil)
	case errors.Is(err, services.ErrInvalidTransition):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Only applications with a booked appointment can be reviewed!", nil)
	default:
		ctl.log.Error("reviewing application failed", zap.String("uid", uid), zap.String("applicationId", id), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update application!", nil)
	}
}

func (ctl *Controller) GetSettings(c *fiber.Ctx) error {
	settings, err := ctl.settings.Get(c.UserContext())
	if err != nil {
		ctl.log.Error("loading settings failed", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch settings!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Settings fetched successfully!", settings)
}

func (ctl *Controller) UpdateSettings(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSettings").(*models.GlobalSettings)

	settings, err := ctl.settings.Update(c.UserContext(), *reqData)
	if err != nil {
		ctl.log.Error("updating settings failed", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update settings!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Settings updated successfully!", settings)
}
