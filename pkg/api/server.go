package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/api/routes"
)

const shutdownTimeout = 5 * time.Second

func NewApp(store routes.SpeedStore) *fiber.App {
	webApp := fiber.New(fiber.Config{
		AppName:               "routespeed",
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.ShapesRouter(group.Group("/shapes"), store)

	return webApp
}

// SetupServer serves the API on listen until ctx is cancelled.
func SetupServer(ctx context.Context, listen string, store routes.SpeedStore) error {
	webApp := NewApp(store)

	go func() {
		<-ctx.Done()
		if err := webApp.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error().Err(err).Msg("Failed to shut down web API")
		}
	}()

	log.Info().Str("listen", listen).Msg("Starting web API")
	return webApp.Listen(listen)
}
