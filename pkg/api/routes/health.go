package routes

import (
	"github.com/gofiber/fiber/v2"
)

func Health(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Health != nil {
			if err := deps.Health(c.Context()); err != nil {
				c.Status(fiber.StatusInternalServerError)
				return c.SendString(err.Error())
			}
		}

		return c.SendString("OK")
	}
}

// QueueStats renders the rmq queue overview
func QueueStats(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Queue == nil {
			return errorResponse(c, fiber.StatusNotFound, "queues_unavailable", "No queue connection configured")
		}

		queues, err := deps.Queue.GetOpenQueues()
		if err != nil {
			return errorResponse(c, fiber.StatusInternalServerError, "internal_error", err.Error())
		}

		stats, err := deps.Queue.CollectStats(queues)
		if err != nil {
			return errorResponse(c, fiber.StatusInternalServerError, "internal_error", err.Error())
		}

		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(stats.GetHtml(c.Query("layout"), c.Query("refresh")))
	}
}
