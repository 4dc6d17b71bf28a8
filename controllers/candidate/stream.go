package candidateController

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"nssc-portal/middleware"
	"nssc-portal/store"
)

const streamKeepAlive = 15 * time.Second

// StreamProfile pushes every newer version of the candidate document as a
// server-sent event. A reconnecting client sends Last-Event-ID and only gets
// versions past it.
func (ctl *Controller) StreamProfile(c *fiber.Ctx) error {
	uid, email := currentUser(c)
	lastVersion, _ := strconv.ParseInt(c.Get("Last-Event-ID"), 10, 64)

	_, current, err := ctl.profiles.Load(c.UserContext(), uid, email)
	if err != nil {
		ctl.log.Error("loading profile for stream failed", zap.String("uid", uid), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load profile!", nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	from := lastVersion
	if current.Version > from {
		from = current.Version
	}
	updates, unsubscribe, err := ctl.profiles.Watch(ctx, uid, from)
	if err != nil {
		cancel()
		ctl.log.Error("subscribing to profile failed", zap.String("uid", uid), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to open profile stream!", nil)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	log := ctl.log.With(zap.String("uid", uid))
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer unsubscribe()

		if current.Version > lastVersion {
			if err := writeSnapshot(w, current); err != nil {
				return
			}
		}

		ticker := time.NewTicker(streamKeepAlive)
		defer ticker.Stop()
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				if err := writeSnapshot(w, snap); err != nil {
					log.Debug("profile stream closed", zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					log.Debug("profile stream closed", zap.Error(err))
					return
				}
			}
		}
	}))
	return nil
}

func writeSnapshot(w *bufio.Writer, snap store.Snapshot) error {
	payload, err := json.Marshal(fiber.Map{"version": snap.Version, "profile": snap.Data})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %d\nevent: profile\ndata: %s\n\n", snap.Version, payload); err != nil {
		return err
	}
	return w.Flush()
}
