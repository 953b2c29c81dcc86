package handler

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/repo"
	"github.com/dushixiang/tradenote/internal/service"
	"github.com/dushixiang/tradenote/internal/xe"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

type TradeHandler struct {
	logger       *zap.Logger
	tradeService *service.TradeService
}

func NewTradeHandler(logger *zap.Logger, tradeService *service.TradeService) *TradeHandler {
	return &TradeHandler{
		logger:       logger,
		tradeService: tradeService,
	}
}

// List returns one page of the caller's trades.
// GET /api/trades
func (h *TradeHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	q := repo.TradeQuery{
		UserID:    userID,
		SetupName: models.SetupName(c.QueryParam("setup_name")),
		DayType:   models.DayType(c.QueryParam("day_type")),
		Symbol:    c.QueryParam("symbol"),
		Status:    models.TradeStatus(c.QueryParam("status")),
		SortBy:    c.QueryParam("sort_by"),
		SortDesc:  c.QueryParam("order") != "asc",
		Page:      cast.ToInt(c.QueryParam("page")),
		Limit:     cast.ToInt(c.QueryParam("limit")),
	}

	if v := c.QueryParam("start_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return xe.ErrInvalidParams
		}
		q.StartTime = &t
	}
	if v := c.QueryParam("end_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return xe.ErrInvalidParams
		}
		q.EndTime = &t
	}

	page, err := h.tradeService.ListTrades(ctx, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Get returns one trade.
// GET /api/trades/:id
func (h *TradeHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	trade, err := h.tradeService.GetTrade(ctx, userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// Create journals a new trade. Accepts JSON or multipart with screenshots
// under the "images" field.
// POST /api/trades
func (h *TradeHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	var req service.CreateTradeRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.tradeService.CreateTrade(ctx, userID, req, formImages(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, trade)
}

// Update applies a partial update; new screenshots are appended.
// PUT /api/trades/:id
func (h *TradeHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	var req service.UpdateTradeRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.tradeService.UpdateTrade(ctx, userID, c.Param("id"), req, formImages(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// Delete removes a trade and its screenshots.
// DELETE /api/trades/:id
func (h *TradeHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	if err := h.tradeService.DeleteTrade(ctx, userID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "trade deleted",
	})
}

// DailyPerformance summarises one day, today by default.
// GET /api/trades/performance/daily?date=2026-08-28
func (h *TradeHandler) DailyPerformance(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	day := time.Now()
	if v := c.QueryParam("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return xe.ErrInvalidParams
		}
		day = parsed
	}

	summary, err := h.tradeService.DailyPerformance(ctx, userID, day)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// MonthlyPerformance summarises one calendar month, the current one by default.
// GET /api/trades/performance/monthly?year=2026&month=8
func (h *TradeHandler) MonthlyPerformance(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	ref := time.Now()
	if year, month := cast.ToInt(c.QueryParam("year")), cast.ToInt(c.QueryParam("month")); year > 0 && month >= 1 && month <= 12 {
		ref = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, ref.Location())
	}

	summary, err := h.tradeService.MonthlyPerformance(ctx, userID, ref)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// QuarterlyPerformance summarises one quarter, the current one by default.
// GET /api/trades/performance/quarterly?year=2026&quarter=3
func (h *TradeHandler) QuarterlyPerformance(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	ref := time.Now()
	if year, quarter := cast.ToInt(c.QueryParam("year")), cast.ToInt(c.QueryParam("quarter")); year > 0 && quarter >= 1 && quarter <= 4 {
		ref = time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, ref.Location())
	}

	summary, err := h.tradeService.QuarterlyPerformance(ctx, userID, ref)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func formImages(c echo.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File["images"]
}

func (h *TradeHandler) RegisterRoutes(g *echo.Group) {
	trades := g.Group("/trades")

	trades.GET("", h.List)
	trades.POST("", h.Create)
	trades.GET("/performance/daily", h.DailyPerformance)
	trades.GET("/performance/monthly", h.MonthlyPerformance)
	trades.GET("/performance/quarterly", h.QuarterlyPerformance)
	trades.GET("/:id", h.Get)
	trades.PUT("/:id", h.Update)
	trades.DELETE("/:id", h.Delete)
}
