package routes

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
)

func errorResponse(c *fiber.Ctx, status int, code string, message string) error {
	c.Status(status)
	return c.JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

func parseMode(c *fiber.Ctx) (ctdf.TransportType, bool) {
	mode, err := ctdf.ParseTransportType(c.Params("mode"))
	if err != nil {
		errorResponse(c, fiber.StatusBadRequest, "invalid_mode", err.Error())
		return "", false
	}
	return mode, true
}

// reduce serialises a value through sheriff keeping only the given groups
func reduce(value interface{}, groups ...string) (string, error) {
	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, value)
	if err != nil {
		return "", err
	}

	reducedBytes, err := json.Marshal(reduced)
	if err != nil {
		return "", err
	}

	return string(reducedBytes), nil
}

func sendJSONString(c *fiber.Ctx, body string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(body)
}
