package authValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"nssc-portal/middleware"
	"nssc-portal/services"
	"nssc-portal/validators"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric,len=6"`
}

type DisplayNameRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=2,max=60"`
}

// Register validator middleware
func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.Registration)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Email = strings.TrimSpace(reqData.Email)

		if errors := validators.Struct(reqData); !errors.OK() {
			echo := *reqData
			echo.Password, echo.ConfirmPassword, echo.SecurityAnswer = "", "", ""
			return middleware.ValidationErrorResponse(c, errors, echo)
		}

		c.Locals("validatedRegistration", reqData)
		return c.Next()
	}
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Email = strings.TrimSpace(reqData.Email)

		if errors := validators.Struct(reqData); !errors.OK() {
			return middleware.ValidationErrorResponse(c, errors, fiber.Map{"email": reqData.Email})
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}

// SendOTP validator middleware
func SendOTP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(OTPRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Email = strings.TrimSpace(reqData.Email)

		if errors := validators.Struct(reqData); !errors.OK() {
			return middleware.ValidationErrorResponse(c, errors, reqData)
		}

		c.Locals("validatedOTP", reqData)
		return c.Next()
	}
}

// VerifyOTP validates OTP request data
func VerifyOTP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(VerifyOTPRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Email = strings.TrimSpace(reqData.Email)
		reqData.Code = strings.TrimSpace(reqData.Code)

		if errors := validators.Struct(reqData); !errors.OK() {
			return middleware.ValidationErrorResponse(c, errors, fiber.Map{"email": reqData.Email})
		}

		c.Locals("validatedVerifyOTP", reqData)
		return c.Next()
	}
}

// UpdateDisplayName validator middleware
func UpdateDisplayName() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DisplayNameRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.DisplayName = strings.TrimSpace(reqData.DisplayName)

		if errors := validators.Struct(reqData); !errors.OK() {
			return middleware.ValidationErrorResponse(c, errors, reqData)
		}

		c.Locals("validatedDisplayName", reqData)
		return c.Next()
	}
}
