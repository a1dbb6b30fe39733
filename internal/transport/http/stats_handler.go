package http

import (
	"github.com/Belkadi-Amine23/mystore/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type StatsHandler struct {
	statsService service.StatsService
	logger       *zap.Logger
}

func NewStatsHandler(statsService service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		logger:       logger,
	}
}

func (h *StatsHandler) Report(c *fiber.Ctx) error {
	report, err := h.statsService.Report(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(report)
}
