package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/zenithcode/zenith-api/internal/dto"
	"github.com/zenithcode/zenith-api/internal/repository"
	"github.com/zenithcode/zenith-api/internal/service"
	"github.com/zenithcode/zenith-api/internal/utils"
)

// LevelSubmissionHandler wires timed level session HTTP routes.
type LevelSubmissionHandler struct {
	service service.LevelSessionService
	logger  zerolog.Logger
}

// NewLevelSubmissionHandler constructs the handler.
func NewLevelSubmissionHandler(service service.LevelSessionService, logger zerolog.Logger) *LevelSubmissionHandler {
	return &LevelSubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "level_submission_handler").Logger(),
	}
}

// RegisterProblemRoutes attaches the session grading endpoints that live
// under the problems group.
func (h *LevelSubmissionHandler) RegisterProblemRoutes(router fiber.Router) {
	router.Post("/levels/:level/submit", h.submit)
	router.Get("/levels/:level/submit", h.status)
}

// RegisterSubmissionRoutes attaches session listing and creation under the
// submissions group. Must be registered before parameterised sibling routes.
func (h *LevelSubmissionHandler) RegisterSubmissionRoutes(router fiber.Router) {
	router.Get("/level", h.list)
	router.Post("/level", h.start)
}

func (h *LevelSubmissionHandler) start(c *fiber.Ctx) error {
	var payload dto.StartLevelRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Start(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "level session started", session)
}

func (h *LevelSubmissionHandler) submit(c *fiber.Ctx) error {
	level := c.Params("level")

	var payload dto.SubmitLevelRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	summary, err := h.service.Submit(c.Context(), userIDFromContext(c), level, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "level submission recorded", summary)
}

func (h *LevelSubmissionHandler) status(c *fiber.Ctx) error {
	level := c.Params("level")
	language := c.Query("language")
	category := c.Query("category")
	if language == "" || category == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "language and category are required")
	}

	session, err := h.service.Status(c.Context(), userIDFromContext(c), level, language, category)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "level session status", session)
}

func (h *LevelSubmissionHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := repository.LevelSubmissionQuery{
		UserID:   userIDFromContext(c),
		Level:    c.Query("level"),
		Category: c.Query("category"),
		Language: c.Query("language"),
		Status:   c.Query("status"),
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	}

	sessions, total, err := h.service.List(c.Context(), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendPaged(c, "level submissions retrieved", sessions, dto.ListMeta{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *LevelSubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNoProblemsForLevel):
		return utils.SendError(c, fiber.StatusNotFound, "no problems found for the requested level")
	case errors.Is(err, service.ErrLevelAlreadySubmitted):
		return utils.SendError(c, fiber.StatusBadRequest, "level session has already been submitted")
	case errors.Is(err, service.ErrInvalidLevel):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid level")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("level session request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
