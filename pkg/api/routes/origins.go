package routes

import (
	"fmt"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"github.com/seqtransit/seqtransit/pkg/departures"
)

type originDestination struct {
	Destination *ctdf.Stop `json:"destination" groups:"basic"`
	Departures  int        `json:"departures" groups:"basic"`
}

type originSummary struct {
	Origin       *ctdf.Stop          `json:"origin" groups:"basic"`
	Destinations []originDestination `json:"destinations" groups:"basic"`
	Departures   int                 `json:"departures" groups:"basic"`
}

func OriginsRouter(router fiber.Router, deps *Dependencies) {
	router.Get("/", func(c *fiber.Ctx) error {
		return listOrigins(c, deps)
	})
	router.Get("/:origin", func(c *fiber.Ctx) error {
		return getOrigin(c, deps)
	})
}

func listOrigins(c *fiber.Ctx, deps *Dependencies) error {
	mode, ok := parseMode(c)
	if !ok {
		return nil
	}

	cacheKey := fmt.Sprintf("origins:%s", mode)
	if cached, found := deps.cacheGet(c.Context(), cacheKey); found {
		c.Set("X-Cache", "HIT")
		return sendJSONString(c, cached)
	}

	origins, err := deps.Store.ListOrigins(c.Context(), mode)
	if err != nil {
		log.Error().Err(err).Str("mode", string(mode)).Msg("Failed to list origins")
		return errorResponse(c, fiber.StatusInternalServerError, "internal_error", "Could not list origins")
	}

	sort.SliceStable(origins, func(i, j int) bool {
		return origins[i].Name < origins[j].Name
	})

	body, err := reduce(origins, "basic")
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "internal_error", "Sheriff could not reduce origins")
	}

	deps.cacheSet(c.Context(), mode, cacheKey, body)

	return sendJSONString(c, body)
}

func getOrigin(c *fiber.Ctx, deps *Dependencies) error {
	mode, ok := parseMode(c)
	if !ok {
		return nil
	}

	identifier := departures.NormaliseIdentifier(mode, c.Params("origin"))

	dataset, err := deps.Store.GetOriginDataset(c.Context(), mode, identifier)
	if err != nil {
		log.Error().Err(err).Str("origin", identifier).Msg("Failed to load origin")
		return errorResponse(c, fiber.StatusInternalServerError, "internal_error", "Could not load origin")
	}
	if dataset == nil {
		return errorResponse(c, fiber.StatusNotFound, "origin_not_found", fmt.Sprintf("Could not find origin %s", identifier))
	}

	summary := originSummary{
		Origin:     dataset.Origin,
		Departures: dataset.DepartureCount(),
	}
	for _, route := range dataset.Routes {
		summary.Destinations = append(summary.Destinations, originDestination{
			Destination: route.Destination,
			Departures:  len(route.Departures),
		})
	}
	sort.Slice(summary.Destinations, func(i, j int) bool {
		return summary.Destinations[i].Destination.Name < summary.Destinations[j].Destination.Name
	})

	body, err := reduce(summary, "basic")
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "internal_error", "Sheriff could not reduce origin")
	}

	return sendJSONString(c, body)
}
