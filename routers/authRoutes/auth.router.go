package authRoutes

import (
	"github.com/gofiber/fiber/v2"

	authControllers "nssc-portal/controllers/auth"
	authValidators "nssc-portal/validators/auth"
)

func SetupAuthRoutes(app *fiber.App, ctl *authControllers.Controller, requireAuth fiber.Handler) {
	authGroup := app.Group("/auth")

	authGroup.Post("/otp/send", authValidators.SendOTP(), ctl.SendOTP)
	authGroup.Post("/otp/verify", authValidators.VerifyOTP(), ctl.VerifyOTP)
	authGroup.Post("/register", authValidators.Register(), ctl.Register)
	authGroup.Post("/login", authValidators.Login(), ctl.Login)
	authGroup.Post("/logout", requireAuth, ctl.Logout)
	authGroup.Get("/me", requireAuth, ctl.Me)
	authGroup.Patch("/me/display-name", requireAuth, authValidators.UpdateDisplayName(), ctl.UpdateDisplayName)
}
