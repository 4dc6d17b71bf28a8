package candidateController

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"nssc-portal/middleware"
	"nssc-portal/services"
	"nssc-portal/wizard"
)

var bookingErrorFields = []struct {
	err   error
	field string
}{
	{wizard.ErrNoDocumentsSelected, "documents"},
	{wizard.ErrUnknownDocument, "documents"},
	{wizard.ErrUploadsIncomplete, "uploads"},
	{wizard.ErrEmptyUpload, "uploads"},
	{wizard.ErrDocumentNotSelected, "uploads"},
	{wizard.ErrDateUnavailable, "date"},
	{wizard.ErrSlotUnavailable, "slot"},
	{wizard.ErrBookingIncomplete, "slot"},
}

// Calendar lists the document catalogue and the bookable dates with their slots.
func (ctl *Controller) Calendar(c *fiber.Ctx) error {
	cal := ctl.appointments.Calendar()
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Appointment calendar fetched successfully!", fiber.Map{
		"documents": wizard.DocumentCatalogue(),
		"slots":     cal.Table(),
	})
}

func (ctl *Controller) UploadDocument(c *fiber.Ctx) error {
	uid, _ := currentUser(c)
	docType := c.Locals("documentType").(string)
	file := c.Locals("documentFile").(*multipart.FileHeader)

	ref, err := ctl.appointments.Upload(c.UserContext(), uid, docType, file)
	if err != nil {
		return ctl.uploadFailed(c, uid, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Document uploaded successfully!", ref)
}

// Book confirms the appointment for an application.
func (ctl *Controller) Book(c *fiber.Ctx) error {
	uid, _ := currentUser(c)
	reqData := c.Locals("validatedBooking").(*services.BookingRequest)

	app, err := ctl.appointments.Book(c.UserContext(), uid, *reqData)
	if err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Appointment booked successfully!", app)
	}
	var detailsErr *services.DetailsError
	if errors.As(err, &detailsErr) {
		return middleware.ValidationErrorResponse(c, detailsErr.Fields, reqData)
	}
	for _, f := range bookingErrorFields {
		if errors.Is(err, f.err) {
			return middleware.ValidationErrorResponse(c, map[string]string{f.field: capitalize(f.err.Error())}, reqData)
		}
	}
	return ctl.applicationFailed(c, uid, err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "!"
}
