package handler

import (
	"net/http"
	"time"

	"github.com/dushixiang/tradenote/internal/service"
	"github.com/dushixiang/tradenote/internal/xe"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type NewsHandler struct {
	logger      *zap.Logger
	newsService *service.NewsService
}

func NewNewsHandler(logger *zap.Logger, newsService *service.NewsService) *NewsHandler {
	return &NewsHandler{
		logger:      logger,
		newsService: newsService,
	}
}

// List returns the cached economic calendar.
// GET /api/news
func (h *NewsHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	events, err := h.newsService.GetNews(ctx)
	if err != nil {
		h.logger.Error("failed to load news", zap.Error(err))
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
	})
}

// Range filters the calendar by date.
// GET /api/news/range?start=2026-08-01&end=2026-08-31
func (h *NewsHandler) Range(c echo.Context) error {
	ctx := c.Request().Context()

	start, err := time.Parse("2006-01-02", c.QueryParam("start"))
	if err != nil {
		return xe.ErrInvalidParams
	}
	end, err := time.Parse("2006-01-02", c.QueryParam("end"))
	if err != nil {
		return xe.ErrInvalidParams
	}

	events, err := h.newsService.GetRange(ctx, start, end)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
	})
}

// Upcoming returns the next ten events.
// GET /api/news/upcoming
func (h *NewsHandler) Upcoming(c echo.Context) error {
	ctx := c.Request().Context()

	events, err := h.newsService.Upcoming(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
	})
}

// InvalidateCache drops the calendar cache.
// DELETE /api/news/cache
func (h *NewsHandler) InvalidateCache(c echo.Context) error {
	h.newsService.InvalidateCache()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "cache invalidated",
	})
}

func (h *NewsHandler) RegisterRoutes(g *echo.Group) {
	news := g.Group("/news")

	news.GET("", h.List)
	news.GET("/range", h.Range)
	news.GET("/upcoming", h.Upcoming)
	news.DELETE("/cache", h.InvalidateCache)
}
