// Package webapi exposes a read-only admin surface next to the TCP protocol:
// liveness and a few counters. It never touches account balances.
package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ifbank/ifbank/pkg/account"
	"github.com/ifbank/ifbank/pkg/session"
)

// NewApp builds the admin fiber app.
func NewApp(store *account.Store, sessions *session.Registry) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"accounts":        store.Count(),
			"active_sessions": sessions.Count(),
		})
	})

	return app
}
