package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
)

func StationsRouter(router fiber.Router, deps *Dependencies) {
	router.Get("/:slug", func(c *fiber.Ctx) error {
		return getStation(c, deps)
	})
}

func getStation(c *fiber.Ctx, deps *Dependencies) error {
	slug := ctdf.StationSlug(c.Params("slug"))

	station, err := deps.Store.GetStation(c.Context(), slug)
	if err != nil {
		log.Error().Err(err).Str("station", slug).Msg("Failed to load station")
		return errorResponse(c, fiber.StatusInternalServerError, "internal_error", "Could not load station")
	}
	if station == nil {
		return errorResponse(c, fiber.StatusNotFound, "station_not_found", fmt.Sprintf("Could not find station %s", slug))
	}

	body, err := reduce(station, "basic")
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "internal_error", "Sheriff could not reduce station")
	}

	return sendJSONString(c, body)
}
