package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const APIVersionNumber = "1.0.0"

func APIVersion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": APIVersionNumber,
	})
}

func DatasetVersionRouter(router fiber.Router, deps *Dependencies) {
	router.Get("/", func(c *fiber.Ctx) error {
		mode, ok := parseMode(c)
		if !ok {
			return nil
		}

		version, err := deps.Store.GetDatasetVersion(c.Context(), mode)
		if err != nil {
			log.Error().Err(err).Str("mode", string(mode)).Msg("Failed to load dataset version")
			return errorResponse(c, fiber.StatusInternalServerError, "internal_error", "Could not load dataset version")
		}
		if version == nil {
			return errorResponse(c, fiber.StatusNotFound, "dataset_unavailable", fmt.Sprintf("No %s dataset has been published", mode))
		}

		return c.JSON(version)
	})
}
