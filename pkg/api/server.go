package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/seqtransit/seqtransit/pkg/api/routes"
)

func NewApp(deps *routes.Dependencies) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	webApp.Get("health", routes.Health(deps))

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)
	group.Get("queues/stats", routes.QueueStats(deps))

	routes.StationsRouter(group.Group("/train/stations"), deps)

	modeGroup := group.Group("/:mode")

	routes.DeparturesRouter(modeGroup.Group("/departures"), deps)
	routes.OriginsRouter(modeGroup.Group("/origins"), deps)
	routes.RealtimeRouter(modeGroup.Group("/realtime"), deps)
	routes.DatasetVersionRouter(modeGroup.Group("/version"), deps)

	return webApp
}

func SetupServer(listen string, deps *routes.Dependencies) error {
	return NewApp(deps).Listen(listen)
}
