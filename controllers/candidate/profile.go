package candidateController

import (
	"encoding/json"
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nssc-portal/middleware"
	"nssc-portal/models"
	"nssc-portal/services"
	"nssc-portal/store"
	"nssc-portal/wizard"
)

const dashboardPath = "/candidate/dashboard"

type Controller struct {
	profiles     *services.ProfileService
	applications *services.ApplicationService
	appointments *services.AppointmentService
	log          *zap.Logger
}

func New(profiles *services.ProfileService, applications *services.ApplicationService, appointments *services.AppointmentService, log *zap.Logger) *Controller {
	return &Controller{profiles: profiles, applications: applications, appointments: appointments, log: log.Named("candidate")}
}

func currentUser(c *fiber.Ctx) (uid, email string) {
	uid, _ = c.Locals("uid").(string)
	if claims := middleware.CurrentClaims(c); claims != nil {
		email = claims.Email
	}
	return uid, email
}

func lockedResponse(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusConflict, false, "Your profile is locked and can no longer be edited!", fiber.Map{"redirect": dashboardPath})
}

func isBadJSON(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// GetProfile opens the wizard at ?step=N, or where the candidate left off.
func (ctl *Controller) GetProfile(c *fiber.Ctx) error {
	uid, email := currentUser(c)

	seq, profile, err := ctl.profiles.Open(c.UserContext(), uid, email, c.Query("step"))
	if errors.Is(err, wizard.ErrProfileLocked) {
		return lockedResponse(c)
	}
	if err != nil {
		ctl.log.Error("opening profile failed", zap.String("uid", uid), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load profile!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", fiber.Map{
		"step":       seq.Current(),
		"totalSteps": seq.Total(),
		"steps":      wizard.StepNames(),
		"location":   seq.Location(services.ProfileBase),
		"profile":    profile,
	})
}

// SubmitStep validates and saves one wizard step. The final step locks the profile.
func (ctl *Controller) SubmitStep(c *fiber.Ctx) error {
	uid, email := currentUser(c)
	step := c.Locals("step").(int)

	result, err := ctl.profiles.SubmitStep(c.UserContext(), uid, email, step, c.Body())
	switch {
	case err == nil:
		message := "Profile step saved!"
		if result.Finalized {
			message = "Profile submitted and locked!"
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
	case errors.Is(err, wizard.ErrValidationFailed):
		return middleware.ValidationErrorResponse(c, result.FieldErrors, result.Values)
	case errors.Is(err, wizard.ErrProfileLocked):
		return lockedResponse(c)
	case errors.Is(err, wizard.ErrStepNotReached):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Complete the earlier steps first!", result)
	case errors.Is(err, wizard.ErrUnknownStep), isBadJSON(err):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	case errors.Is(err, services.ErrSnapshotFailed), errors.Is(err, services.ErrFinalizeIncomplete):
		ctl.log.Error("finalizing profile failed", zap.String("uid", uid), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Could not lock your profile right now. Please try again.", nil)
	default:
		ctl.log.Error("saving profile step failed", zap.String("uid", uid), zap.Int("step", step), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save profile!", nil)
	}
}

// Retreat moves the wizard back one step.
func (ctl *Controller) Retreat(c *fiber.Ctx) error {
	uid, email := currentUser(c)
	step := c.Locals("step").(int)

	result, err := ctl.profiles.Retreat(c.UserContext(), uid, email, step)
	switch {
	case err == nil:
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Moved to previous step!", result)
	case errors.Is(err, wizard.ErrFirstStep):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Already at the first step!", result)
	case errors.Is(err, wizard.ErrStepNotReached):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Complete the earlier steps first!", result)
	case errors.Is(err, wizard.ErrProfileLocked):
		return lockedResponse(c)
	default:
		ctl.log.Error("retreating profile step failed", zap.String("uid", uid), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}
}

// PreviewQualification returns the derived percentage and class grade.
func (ctl *Controller) PreviewQualification(c *fiber.Ctx) error {
	entry := c.Locals("validatedQualification").(*models.QualificationEntry)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Derived fields calculated!", wizard.DeriveFields(*entry))
}

func (ctl *Controller) AddQualification(c *fiber.Ctx) error {
	uid, _ := currentUser(c)
	entry := c.Locals("validatedQualification").(*models.QualificationEntry)

	list, fieldErrors, err := ctl.profiles.AddQualification(c.UserContext(), uid, *entry)
	switch {
	case err == nil:
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Qualification added!", list)
	case errors.Is(err, wizard.ErrValidationFailed):
		return middleware.ValidationErrorResponse(c, fieldErrors, wizard.ApplyDerived(*entry))
	case errors.Is(err, wizard.ErrProfileLocked):
		return lockedResponse(c)
	case errors.Is(err, store.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Profile not found!", nil)
	default:
		ctl.log.Error("adding qualification failed", zap.String("uid", uid), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add qualification!", nil)
	}
}

func (ctl *Controller) RemoveQualification(c *fiber.Ctx) error {
	uid, _ := currentUser(c)
	index := c.Locals("index").(int)

	list, err := ctl.profiles.RemoveQualification(c.UserContext(), uid, index)
	switch {
	case err == nil:
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Qualification removed!", list)
	case errors.Is(err, services.ErrIndexOutOfRange), errors.Is(err, store.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Qualification not found!", nil)
	case errors.Is(err, wizard.ErrProfileLocked):
		return lockedResponse(c)
	default:
		ctl.log.Error("removing qualification failed", zap.String("uid", uid), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove qualification!", nil)
	}
}

// UploadAsset stores the candidate photo or signature.
func (ctl *Controller) UploadAsset(c *fiber.Ctx) error {
	uid, _ := currentUser(c)
	kind := c.Locals("assetKind").(string)
	file := c.Locals("assetFile").(*multipart.FileHeader)

	stored, err := ctl.profiles.UploadAsset(c.UserContext(), uid, kind, file)
	if err != nil {
		return ctl.uploadFailed(c, uid, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "File uploaded successfully!", stored)
}

func (ctl *Controller) uploadFailed(c *fiber.Ctx, uid string, err error) error {
	switch {
	case errors.Is(err, store.ErrUnsupportedFileType), errors.Is(err, store.ErrFileTooLarge), errors.Is(err, store.ErrEmptyFile):
		return middleware.ValidationErrorResponse(c, map[string]string{"file": err.Error()}, nil)
	case errors.Is(err, services.ErrUnknownAsset), errors.Is(err, wizard.ErrUnknownDocument):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	case errors.Is(err, store.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Profile not found!", nil)
	default:
		ctl.log.Error("file upload failed", zap.String("uid", uid), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to upload file!", nil)
	}
}
