package fileRoutes

import (
	"github.com/gofiber/fiber/v2"

	filesControllers "nssc-portal/controllers/files"
)

// SetupFileRoutes serves stored uploads through their signed portal links.
func SetupFileRoutes(app *fiber.App, ctl *filesControllers.Controller) {
	app.Get("/files/*", ctl.Open)
}
