package routes

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/export"
	"github.com/travigo/routespeed/pkg/util"
)

// SpeedStore is the read side of a results database.
type SpeedStore interface {
	Shapes(ctx context.Context) ([]*export.ShapeRecord, error)
	Segments(ctx context.Context, shapeID string) ([]*export.SegmentRecord, error)
	Observations(ctx context.Context, shapeID string, query export.ObservationQuery) ([]*export.ObservationRecord, error)
}

type shapesHandler struct {
	store SpeedStore
}

func ShapesRouter(router fiber.Router, store SpeedStore) {
	handler := &shapesHandler{store: store}

	router.Get("/", handler.listShapes)
	router.Get("/:identifier", handler.getShape)
	router.Get("/:identifier/observations", handler.listObservations)
}

func responseGroups(c *fiber.Ctx) []string {
	if c.QueryBool("detailed", false) {
		return []string{"basic", "detailed"}
	}
	return []string{"basic"}
}

func sendError(c *fiber.Ctx, status int, message string) error {
	c.Status(status)
	return c.JSON(fiber.Map{
		"error": message,
	})
}

func sendReduced(c *fiber.Ctx, data interface{}) error {
	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: responseGroups(c),
	}, data)
	if err != nil {
		log.Error().Err(err).Str("path", c.Path()).Msg("Sheriff could not reduce response")
		return sendError(c, fiber.StatusInternalServerError, "Could not reduce response")
	}

	return c.JSON(reduced)
}

func (h *shapesHandler) listShapes(c *fiber.Ctx) error {
	shapes, err := h.store.Shapes(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list shapes")
		return sendError(c, fiber.StatusInternalServerError, "Could not list shapes")
	}

	return sendReduced(c, shapes)
}

func (h *shapesHandler) getShape(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	segments, err := h.store.Segments(c.UserContext(), identifier)
	if err != nil {
		log.Error().Err(err).Str("shape", identifier).Msg("Failed to load segments")
		return sendError(c, fiber.StatusInternalServerError, "Could not load segments")
	}
	if len(segments) == 0 {
		return sendError(c, fiber.StatusNotFound, "Could not find Shape matching Shape Identifier")
	}

	routeMiles := 0.0
	for _, segment := range segments {
		routeMiles += segment.DistanceMiles
	}

	return sendReduced(c, &shapeResponse{
		ShapeID:    identifier,
		RouteMiles: routeMiles,
		Segments:   segments,
	})
}

type shapeResponse struct {
	ShapeID    string                  `json:"shape_id" groups:"basic,detailed"`
	RouteMiles float64                 `json:"route_miles" groups:"basic,detailed"`
	Segments   []*export.SegmentRecord `json:"segments" groups:"basic,detailed"`
}

func (h *shapesHandler) listObservations(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	query := export.ObservationQuery{
		TripID:  c.Query("trip"),
		Date:    c.Query("date"),
		DayType: c.Query("day_type"),
	}

	observations, err := h.store.Observations(c.UserContext(), identifier, query)
	if err != nil {
		log.Error().Err(err).Str("shape", identifier).Msg("Failed to load observations")
		return sendError(c, fiber.StatusInternalServerError, "Could not load observations")
	}

	if c.QueryBool("valid_only", false) {
		util.InPlaceFilter(&observations, func(observation *export.ObservationRecord) bool {
			return observation.Flag == "" && !observation.Terminal
		})
	}

	return sendReduced(c, observations)
}
