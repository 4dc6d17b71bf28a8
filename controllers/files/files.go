package filesController

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nssc-portal/middleware"
	"nssc-portal/store"
)

type Controller struct {
	files store.FileStore
	links store.FileLinks
	log   *zap.Logger
}

func New(files store.FileStore, links store.FileLinks, log *zap.Logger) *Controller {
	return &Controller{files: files, links: links, log: log.Named("files")}
}

// Open exchanges a permanent file link for a short-lived download URL.
func (ctl *Controller) Open(c *fiber.Ctx) error {
	object, err := ctl.links.Object(c.Params("*"), c.Query("token"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Invalid file link!", nil)
	}

	url, err := ctl.files.PresignedURL(c.UserContext(), object)
	if errors.Is(err, store.ErrFileNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "File not found!", nil)
	}
	if err != nil {
		ctl.log.Error("presigning file failed", zap.String("object", object), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "File storage is unavailable right now!", nil)
	}
	return c.Redirect(url, fiber.StatusFound)
}
