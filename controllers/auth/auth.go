package authController

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nssc-portal/mailer"
	"nssc-portal/middleware"
	"nssc-portal/services"
	authValidator "nssc-portal/validators/auth"
)

type Controller struct {
	auth         *services.AuthService
	otp          *services.OTPService
	registration *services.RegistrationService
	log          *zap.Logger
}

func New(auth *services.AuthService, otp *services.OTPService, registration *services.RegistrationService, log *zap.Logger) *Controller {
	return &Controller{auth: auth, otp: otp, registration: registration, log: log.Named("auth")}
}

func (ctl *Controller) SendOTP(c *fiber.Ctx) error {
	reqData := c.Locals("validatedOTP").(*authValidator.OTPRequest)

	err := ctl.otp.Send(c.UserContext(), reqData.Email)
	var sendErr *mailer.SendError
	switch {
	case err == nil:
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OTP sent successfully!", fiber.Map{"email": reqData.Email})
	case errors.Is(err, mailer.ErrMissingAPIKey):
		ctl.log.Error("email service is not configured", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Email service is not configured. Please contact support.", nil)
	case errors.As(err, &sendErr):
		ctl.log.Error("sending otp failed", zap.String("provider", sendErr.Provider), zap.Int("statusCode", sendErr.StatusCode), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, sendErr.Message, nil)
	case errors.Is(err, services.ErrEmailInUse):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, services.AuthErrorMessage(err), nil)
	default:
		ctl.log.Error("sending otp failed", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send OTP!", nil)
	}
}

func (ctl *Controller) VerifyOTP(c *fiber.Ctx) error {
	reqData := c.Locals("validatedVerifyOTP").(*authValidator.VerifyOTPRequest)

	switch err := ctl.otp.Verify(c.UserContext(), reqData.Email, reqData.Code); {
	case err == nil:
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OTP verified successfully!", fiber.Map{"email": reqData.Email, "verified": true})
	case errors.Is(err, services.ErrInvalidOTP):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid OTP!", nil)
	case errors.Is(err, services.ErrOTPExpired):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "OTP has expired!", nil)
	case errors.Is(err, services.ErrOTPLocked):
		return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many incorrect attempts. Please request a new OTP.", nil)
	default:
		ctl.log.Error("verifying otp failed", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify OTP!", nil)
	}
}

func (ctl *Controller) Register(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRegistration").(*services.Registration)

	registered, err := ctl.registration.Register(c.UserContext(), *reqData)
	switch {
	case err == nil:
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Registration successful!", registered)
	case errors.Is(err, services.ErrEmailNotVerified):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please verify your email with the OTP first!", nil)
	case errors.Is(err, services.ErrEmailInUse):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, services.AuthErrorMessage(err), nil)
	default:
		ctl.log.Error("registration failed", zap.String("email", reqData.Email), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register!", nil)
	}
}

func (ctl *Controller) Login(c *fiber.Ctx) error {
	reqData := c.Locals("validatedLogin").(*authValidator.LoginRequest)

	session, err := ctl.auth.SignIn(c.UserContext(), reqData.Email, reqData.Password, services.LoginMeta{
		IP:     c.IP(),
		Device: c.Get(fiber.HeaderUserAgent),
	})
	switch {
	case err == nil:
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", session)
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrWrongPassword):
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, services.AuthErrorMessage(err), nil)
	case errors.Is(err, services.ErrUserDisabled):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, services.AuthErrorMessage(err), nil)
	case errors.Is(err, services.ErrTooManyAttempts):
		return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false, services.AuthErrorMessage(err), nil)
	default:
		ctl.log.Error("sign in failed", zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, services.AuthErrorMessage(err), nil)
	}
}

func (ctl *Controller) Logout(c *fiber.Ctx) error {
	claims := middleware.CurrentClaims(c)
	if claims == nil || claims.ExpiresAt == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
	}

	if err := ctl.auth.SignOut(c.UserContext(), claims.ID, claims.ExpiresAt.Time); err != nil {
		ctl.log.Error("sign out failed", zap.String("uid", claims.UID), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to sign out!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Signed out successfully!", nil)
}

func (ctl *Controller) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("uid").(string)

	user, err := ctl.auth.GetUser(c.UserContext(), uid)
	if errors.Is(err, services.ErrUserNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, services.AuthErrorMessage(err), nil)
	}
	if err != nil {
		ctl.log.Error("loading user failed", zap.String("uid", uid), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load user!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully!", user)
}

func (ctl *Controller) UpdateDisplayName(c *fiber.Ctx) error {
	uid, _ := c.Locals("uid").(string)
	reqData := c.Locals("validatedDisplayName").(*authValidator.DisplayNameRequest)

	err := ctl.auth.UpdateDisplayName(c.UserContext(), uid, reqData.DisplayName)
	if errors.Is(err, services.ErrUserNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, services.AuthErrorMessage(err), nil)
	}
	if err != nil {
		ctl.log.Error("updating display name failed", zap.String("uid", uid), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update display name!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Display name updated!", reqData)
}
