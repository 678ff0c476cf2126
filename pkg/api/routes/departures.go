package routes

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/departures"
)

const defaultWindowHours = 2

func DeparturesRouter(router fiber.Router, deps *Dependencies) {
	router.Get("/:origin/:destination", func(c *fiber.Ctx) error {
		return getDepartures(c, deps)
	})
}

func getDepartures(c *fiber.Ctx, deps *Dependencies) error {
	mode, ok := parseMode(c)
	if !ok {
		return nil
	}

	hours := defaultWindowHours
	if hoursQuery := c.Query("hours"); hoursQuery != "" {
		parsed, err := strconv.Atoi(hoursQuery)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "invalid_window", "Parameter hours should be an integer")
		}
		hours = parsed
	}
	if err := departures.ValidateWindow(hours); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid_window", err.Error())
	}

	origin := departures.NormaliseIdentifier(mode, c.Params("origin"))
	destination := departures.NormaliseIdentifier(mode, c.Params("destination"))
	now := deps.now()

	// Cached windows are bucketed to the minute
	cacheKey := fmt.Sprintf("departures:%s:%s:%s:%d:%s", mode, origin, destination, hours, now.Format("200601021504"))
	if cached, found := deps.cacheGet(c.Context(), cacheKey); found {
		c.Set("X-Cache", "HIT")
		return sendJSONString(c, cached)
	}

	result, err := departures.QueryRoute(c.Context(), deps.Store, mode, origin, destination, hours, now)
	switch {
	case errors.Is(err, departures.ErrOriginNotFound):
		return errorResponse(c, fiber.StatusNotFound, "origin_not_found", fmt.Sprintf("Could not find origin %s", origin))
	case errors.Is(err, departures.ErrDestinationUnreachable):
		return errorResponse(c, fiber.StatusNotFound, "destination_unreachable", fmt.Sprintf("No direct service from %s to %s", origin, destination))
	case errors.Is(err, departures.ErrInvalidWindow):
		return errorResponse(c, fiber.StatusBadRequest, "invalid_window", err.Error())
	case err != nil:
		log.Error().Err(err).Str("origin", origin).Str("destination", destination).Msg("Failed to query route")
		return errorResponse(c, fiber.StatusInternalServerError, "internal_error", "Could not query departures")
	}

	body, err := reduce(result, "basic")
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "internal_error", "Sheriff could not reduce departures")
	}

	deps.cacheSet(c.Context(), mode, cacheKey, body)

	return sendJSONString(c, body)
}
