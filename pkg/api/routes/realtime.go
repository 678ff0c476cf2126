package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/formats/gtfs"
)

const protobufContentType = "application/x-protobuf"

func RealtimeRouter(router fiber.Router, deps *Dependencies) {
	router.Get("/", func(c *fiber.Ctx) error {
		return getRealtime(c, deps)
	})
}

// realtimePredicate prefers the route id prefix of the published version and falls back
// to the exact set of routes it was generated from
func realtimePredicate(version *ctdf.DatasetVersion, prefix string) gtfs.RoutePredicate {
	if version != nil && version.RouteIDPrefix != "" {
		return gtfs.PrefixPredicate(version.RouteIDPrefix)
	}
	if version != nil && len(version.RouteIDs) > 0 {
		return gtfs.SetPredicate(version.RouteIDs)
	}
	if prefix != "" {
		return gtfs.PrefixPredicate(prefix)
	}
	return nil
}

func getRealtime(c *fiber.Ctx, deps *Dependencies) error {
	mode, ok := parseMode(c)
	if !ok {
		return nil
	}

	dataset := deps.dataset(mode)
	if dataset == nil || dataset.RealtimeSource == "" || deps.Realtime == nil {
		return errorResponse(c, fiber.StatusNotFound, "realtime_unavailable", fmt.Sprintf("No realtime feed configured for %s", mode))
	}

	cacheKey := fmt.Sprintf("realtime:%s", mode)
	if cached, found := deps.cacheGet(c.Context(), cacheKey); found {
		c.Set("X-Cache", "HIT")
		c.Set(fiber.HeaderContentType, protobufContentType)
		return c.SendString(cached)
	}

	version, err := deps.Store.GetDatasetVersion(c.Context(), mode)
	if err != nil {
		log.Error().Err(err).Str("mode", string(mode)).Msg("Failed to load dataset version")
		return errorResponse(c, fiber.StatusInternalServerError, "internal_error", "Could not load dataset version")
	}

	keep := realtimePredicate(version, dataset.RealtimeRouteIDPrefix())
	if keep == nil {
		return errorResponse(c, fiber.StatusServiceUnavailable, "dataset_unavailable", fmt.Sprintf("No %s dataset has been published", mode))
	}

	feed, err := deps.Realtime.Fetch(c.Context(), dataset.RealtimeSource, dataset.Timeout(), dataset.SourceAuthentication)
	if err != nil {
		log.Error().Err(err).Str("mode", string(mode)).Msg("Failed to fetch realtime feed")
		return errorResponse(c, fiber.StatusBadGateway, "upstream_error", "Could not fetch realtime feed")
	}

	filtered, err := gtfs.FilterFeed(feed, keep)
	if err != nil {
		log.Error().Err(err).Str("mode", string(mode)).Msg("Failed to filter realtime feed")
		return errorResponse(c, fiber.StatusBadGateway, "upstream_error", "Realtime feed could not be decoded")
	}

	deps.cacheSet(c.Context(), mode, cacheKey, string(filtered))

	c.Set(fiber.HeaderContentType, protobufContentType)
	return c.Send(filtered)
}
