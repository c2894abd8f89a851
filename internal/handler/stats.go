package handler

import (
	"net/http"

	"shiftbot/internal/domain"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// StatsHandler обрабатывает HTTP-запросы панели администратора.
type StatsHandler struct {
	*BaseHandler
	statsUseCase domain.StatsUseCase
}

// NewStatsHandler создает новый экземпляр StatsHandler.
func NewStatsHandler(statsUseCase domain.StatsUseCase, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{
		BaseHandler:  NewBaseHandler(logger),
		statsUseCase: statsUseCase,
	}
}

// GetOrgStats возвращает сводку по каждой org.
func (h *StatsHandler) GetOrgStats(c echo.Context) error {
	logEntry := h.logRequest(c, "get_org_stats")

	stats, err := h.statsUseCase.GetOrgStats(c.Request().Context())
	if err != nil {
		logEntry.WithError(err).Error("Failed to get org stats")
		return c.JSON(getHTTPStatusCode(err), toKindErrorResponse(err))
	}

	logEntry.WithField("stats_count", len(stats)).Info("Org stats retrieved")
	return c.JSON(http.StatusOK, map[string]interface{}{
		"stats": toOrgStatDTOs(stats),
	})
}

// GetOpenDates возвращает даты с открытыми сменами, ?org= сужает выборку.
func (h *StatsHandler) GetOpenDates(c echo.Context) error {
	org := orgParam(c)
	logEntry := h.logRequest(c, "get_open_dates").WithField("org", c.QueryParam("org"))

	dates, err := h.statsUseCase.ListOpenDates(c.Request().Context(), org)
	if err != nil {
		logEntry.WithError(err).Error("Failed to get open dates")
		return c.JSON(getHTTPStatusCode(err), toKindErrorResponse(err))
	}

	logEntry.WithField("dates_count", len(dates)).Info("Open dates retrieved")
	return c.JSON(http.StatusOK, map[string]interface{}{
		"dates": toDateCountDTOs(dates),
	})
}

// GetShifts возвращает открытые смены на ?date=YYYY-MM-DD.
func (h *StatsHandler) GetShifts(c echo.Context) error {
	org := orgParam(c)
	logEntry := h.logRequest(c, "get_shifts").WithFields(logrus.Fields{
		"date": c.QueryParam("date"),
		"org":  c.QueryParam("org"),
	})

	date, err := domain.ParseISODate(c.QueryParam("date"))
	if err != nil {
		logEntry.WithError(err).Warn("Invalid date parameter")
		return c.JSON(http.StatusBadRequest, toErrorResponse("INVALID_REQUEST", "date must be YYYY-MM-DD"))
	}

	shifts, err := h.statsUseCase.ListOpenShifts(c.Request().Context(), date, org)
	if err != nil {
		logEntry.WithError(err).Error("Failed to list shifts")
		return c.JSON(getHTTPStatusCode(err), toKindErrorResponse(err))
	}

	logEntry.WithField("shifts_count", len(shifts)).Info("Shifts retrieved")
	return c.JSON(http.StatusOK, map[string]interface{}{
		"date":   date.Format(domain.DateLayout),
		"shifts": toShiftDTOs(shifts),
	})
}

func orgParam(c echo.Context) *domain.Org {
	raw := c.QueryParam("org")
	if raw == "" {
		return nil
	}
	org := domain.Org(raw)
	return &org
}
