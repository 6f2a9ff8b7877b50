package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/zenithcode/zenith-api/internal/service"
	"github.com/zenithcode/zenith-api/internal/utils"
)

// StatsHandler wires read-only statistics routes.
type StatsHandler struct {
	service service.StatsService
	logger  zerolog.Logger
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(service service.StatsService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  logger.With().Str("component", "stats_handler").Logger(),
	}
}

// Register attaches statistics endpoints to the router group.
func (h *StatsHandler) Register(router fiber.Router) {
	router.Get("/categories", h.categories)
}

func (h *StatsHandler) categories(c *fiber.Ctx) error {
	stats, err := h.service.CategoryStats(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("stats request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "category stats retrieved", stats)
}
