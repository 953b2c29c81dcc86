package handler

import (
	"net/http"

	"github.com/dushixiang/tradenote/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	logger           *zap.Logger
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(logger *zap.Logger, analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		logger:           logger,
		analyticsService: analyticsService,
	}
}

// Overview returns the account-wide aggregate stats.
// GET /api/analytics/overview
func (h *AnalyticsHandler) Overview(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	stats, err := h.analyticsService.Overview(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// SetupStats breaks performance down per setup code.
// GET /api/analytics/setups
func (h *AnalyticsHandler) SetupStats(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	stats, err := h.analyticsService.SetupStats(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"setup_stats": stats,
	})
}

// TimeframeStats breaks performance down per entry timeframe.
// GET /api/analytics/timeframes
func (h *AnalyticsHandler) TimeframeStats(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	stats, err := h.analyticsService.TimeframeStats(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"timeframe_stats": stats,
	})
}

// WeeklySeries returns per-week buckets, oldest first.
// GET /api/analytics/weekly?weeks=12
func (h *AnalyticsHandler) WeeklySeries(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	weeks := cast.ToInt(c.QueryParam("weeks"))
	series, err := h.analyticsService.WeeklySeries(ctx, userID, weeks)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"weekly_data": series,
	})
}

// MonthlySeries returns per-calendar-month buckets, oldest first.
// GET /api/analytics/monthly?months=12
func (h *AnalyticsHandler) MonthlySeries(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	months := cast.ToInt(c.QueryParam("months"))
	series, err := h.analyticsService.MonthlySeries(ctx, userID, months)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"monthly_data": series,
	})
}

// SymbolStats breaks performance down per traded symbol.
// GET /api/analytics/symbols
func (h *AnalyticsHandler) SymbolStats(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	stats, err := h.analyticsService.SymbolStats(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"symbol_stats": stats,
	})
}

// Drawdown returns the equity-curve drawdown scan.
// GET /api/analytics/drawdown
func (h *AnalyticsHandler) Drawdown(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	stats, err := h.analyticsService.Drawdown(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AnalyticsHandler) RegisterRoutes(g *echo.Group) {
	analytics := g.Group("/analytics")

	analytics.GET("/overview", h.Overview)
	analytics.GET("/setups", h.SetupStats)
	analytics.GET("/timeframes", h.TimeframeStats)
	analytics.GET("/weekly", h.WeeklySeries)
	analytics.GET("/monthly", h.MonthlySeries)
	analytics.GET("/symbols", h.SymbolStats)
	analytics.GET("/drawdown", h.Drawdown)
}
