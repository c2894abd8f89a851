package handler

import (
	"context"
	"net/http"
	"time"

	"shiftbot/internal/domain"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Pinger проверка доступности хранилища для /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type APIHandler struct {
	*StatsHandler
	pinger Pinger
}

// NewAPIHandler собирает обработчики ops API. pinger может быть nil
// для хранилища в памяти.
func NewAPIHandler(statsUseCase domain.StatsUseCase, pinger Pinger, logger *logrus.Logger) *APIHandler {
	return &APIHandler{
		StatsHandler: NewStatsHandler(statsUseCase, logger),
		pinger:       pinger,
	}
}

// Register регистрирует маршруты. Без token доступен только /health.
func (h *APIHandler) Register(e *echo.Echo, token string) {
	e.GET("/health", h.Health)

	if token == "" {
		h.logger.Warn("OPS_TOKEN is empty, ops endpoints are disabled")
		return
	}

	ops := e.Group("", OpsAuthMiddleware(token))
	ops.GET("/stats/orgs", h.GetOrgStats)
	ops.GET("/stats/dates", h.GetOpenDates)
	ops.GET("/shifts", h.GetShifts)
}

// Health проверяет соединение с базой данных.
func (h *APIHandler) Health(c echo.Context) error {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.PingContext(ctx); err != nil {
			h.logRequest(c, "health").WithError(err).Error("Database ping failed")
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
