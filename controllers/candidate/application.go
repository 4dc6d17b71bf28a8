package candidateController

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nssc-portal/middleware"
	"nssc-portal/services"
	"nssc-portal/store"
	appointmentValidator "nssc-portal/validators/appointment"
)

func (ctl *Controller) RegistrationYears(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Registration years fetched successfully!", ctl.applications.RegistrationYears())
}

func (ctl *Controller) ListApplications(c *fiber.Ctx) error {
	uid, _ := currentUser(c)

	apps, err := ctl.applications.List(c.UserContext(), uid)
	if err != nil {
		ctl.log.Error("listing applications failed", zap.String("uid", uid), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch applications!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Applications fetched successfully!", apps)
}

func (ctl *Controller) GetApplication(c *fiber.Ctx) error {
	uid, _ := currentUser(c)

	app, err := ctl.applications.Get(c.UserContext(), uid, c.Params("id"))
	if err != nil {
		return ctl.applicationFailed(c, uid, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Application fetched successfully!", app)
}

// Apply creates a Pending application for the chosen registration year.
func (ctl *Controller) Apply(c *fiber.Ctx) error {
	uid, _ := currentUser(c)
	reqData := c.Locals("validatedApply").(*appointmentValidator.ApplyRequest)

	app, err := ctl.applications.Apply(c.UserContext(), uid, reqData.RegistrationYear)
	if errors.Is(err, services.ErrInvalidRegistrationYear) {
		return middleware.ValidationErrorResponse(c, map[string]string{"registrationYear": "Select a valid registration year!"}, reqData)
	}
	if err != nil {
		return ctl.applicationFailed(c, uid, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Application submitted successfully!", app)
}

// Slip returns the payment confirmation for an application.
func (ctl *Controller) Slip(c *fiber.Ctx) error {
	uid, _ := currentUser(c)

	slip, err := ctl.applications.Slip(c.UserContext(), uid, c.Params("id"))
	if err != nil {
		return ctl.applicationFailed(c, uid, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment slip fetched successfully!", slip)
}

func (ctl *Controller) applicationFailed(c *fiber.Ctx, uid string, err error) error {
	switch {
	case errors.Is(err, services.ErrApplicationNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Application not found!", nil)
	case errors.Is(err, store.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Complete your profile before applying!", nil)
	case errors.Is(err, services.ErrNotBookable):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "An appointment cannot be booked for this application!", nil)
	default:
		ctl.log.Error("application request failed", zap.String("uid", uid), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}
}
