package appointmentValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"nssc-portal/middleware"
	"nssc-portal/services"
	"nssc-portal/validators"
	"nssc-portal/wizard"
)

type ApplyRequest struct {
	RegistrationYear string `json:"registrationYear" validate:"required"`
}

// Apply validator middleware
func Apply() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ApplyRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.RegistrationYear = strings.TrimSpace(reqData.RegistrationYear)

		if errors := validators.Struct(reqData); !errors.OK() {
			return middleware.ValidationErrorResponse(c, errors, reqData)
		}

		c.Locals("validatedApply", reqData)
		return c.Next()
	}
}

// Booking checks the request shape. Document, date and slot rules are enforced
// by replaying the appointment wizard.
func Booking() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.BookingRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.ApplicationID = strings.TrimSpace(reqData.ApplicationID)
		reqData.Details.FullName = strings.TrimSpace(reqData.Details.FullName)
		reqData.Details.LastName = strings.TrimSpace(reqData.Details.LastName)
		reqData.Details.DOB = strings.TrimSpace(reqData.Details.DOB)
		reqData.Details.Course = strings.ToLower(strings.TrimSpace(reqData.Details.Course))
		reqData.Details.Section = strings.ToUpper(strings.TrimSpace(reqData.Details.Section))

		errors := validators.Struct(reqData)

		if reqData.ApplicationID == "" {
			errors["applicationId"] = "Application is required!"
		}
		if len(reqData.Documents) == 0 {
			errors["documents"] = "Select at least one document!"
		}
		if strings.TrimSpace(reqData.Date) == "" {
			errors["date"] = "Date is required!"
		}
		if strings.TrimSpace(reqData.Slot) == "" {
			errors["slot"] = "Time slot is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors, reqData)
		}

		c.Locals("validatedBooking", reqData)
		return c.Next()
	}
}

// Upload validates a checklist document upload.
func Upload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		errors := make(map[string]string)

		docType := c.FormValue("documentType")
		if _, ok := wizard.DocumentLabel(docType); !ok {
			errors["documentType"] = "Unknown document type!"
		}

		file, err := c.FormFile("file")
		if err != nil {
			errors["file"] = "File is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors, fiber.Map{"documentType": docType})
		}

		c.Locals("documentType", docType)
		c.Locals("documentFile", file)
		return c.Next()
	}
}
