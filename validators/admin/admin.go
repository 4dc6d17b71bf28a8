package adminValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"nssc-portal/middleware"
	"nssc-portal/models"
	"nssc-portal/services"
	"nssc-portal/validators"
)

type ReviewRequest struct {
	Status  string `json:"status" validate:"required,oneof=Verified Rejected 'Refill Required'"`
	Remarks string `json:"remarks" validate:"max=500"`
}

type PageRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// CreateUser validator middleware
func CreateUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.NewUser)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Email = strings.TrimSpace(reqData.Email)

		if errors := validators.Struct(reqData); !errors.OK() {
			echo := *reqData
			echo.Password = ""
			return middleware.ValidationErrorResponse(c, errors, echo)
		}

		c.Locals("validatedNewUser", reqData)
		return c.Next()
	}
}

// ReviewApplication validator middleware
func ReviewApplication() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ReviewRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Remarks = strings.TrimSpace(reqData.Remarks)

		errors := validators.Struct(reqData)
		if reqData.Status != models.ApplicationVerified && reqData.Remarks == "" {
			errors.Add("remarks", "Remarks are required when an application is not verified!")
		}
		if !errors.OK() {
			return middleware.ValidationErrorResponse(c, errors, reqData)
		}

		c.Locals("validatedReview", reqData)
		return c.Next()
	}
}

// Pagination validator middleware
func Pagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PageRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)
		if reqData.Page < 0 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit < 0 || reqData.Limit > 100 {
			errors["limit"] = "Limit must be between 1 and 100!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors, reqData)
		}

		c.Locals("validatedPage", reqData)
		return c.Next()
	}
}

// Settings validator middleware
func Settings() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(models.GlobalSettings)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validators.Struct(reqData); !errors.OK() {
			return middleware.ValidationErrorResponse(c, errors, reqData)
		}

		c.Locals("validatedSettings", reqData)
		return c.Next()
	}
}
