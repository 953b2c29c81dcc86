package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strings"
	"time"

	"github.com/dushixiang/tradenote/internal/config"
	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/repo"
	"github.com/dushixiang/tradenote/internal/telegram"
	"github.com/dushixiang/tradenote/internal/xe"
	"github.com/dushixiang/tradenote/pkg/metrics"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TradeService owns the journal entries: create, update, delete, list, plus
// the calendar performance windows. The three derived fields (pnl, pnl
// percentage, risk-reward ratio) are always computed here, never accepted
// from the client.
type TradeService struct {
	logger *zap.Logger

	*orz.Service
	*repo.TradeRepo

	storage *StorageService
	tg      *telegram.Telegram
	conf    *config.Config
}

func NewTradeService(logger *zap.Logger, db *gorm.DB, conf *config.Config, storage *StorageService, tg *telegram.Telegram) *TradeService {
	return &TradeService{
		logger:    logger,
		Service:   orz.NewService(db),
		TradeRepo: repo.NewTradeRepo(db),
		storage:   storage,
		tg:        tg,
		conf:      conf,
	}
}

type CreateTradeRequest struct {
	SetupName      models.SetupName      `json:"setup_name" form:"setup_name" validate:"required,oneof=QML TJL1 TJL2 SBR RBS"`
	DayType        models.DayType        `json:"day_type" form:"day_type" validate:"required,oneof=GBS RSD FBR"`
	EntryTimeframe models.EntryTimeframe `json:"entry_timeframe" form:"entry_timeframe" validate:"required,oneof=M5 M15 H1 H4 D1"`
	Symbol         string                `json:"symbol" form:"symbol" validate:"required,max=20"`
	Direction      models.Direction      `json:"direction" form:"direction" validate:"required,oneof=LONG SHORT"`
	Status         models.TradeStatus    `json:"status" form:"status" validate:"omitempty,oneof=OPEN CLOSED CANCELLED"`

	EntryPrice   float64 `json:"entry_price" form:"entry_price" validate:"required,gt=0"`
	ExitPrice    float64 `json:"exit_price" form:"exit_price" validate:"required,gt=0"`
	PositionSize float64 `json:"position_size" form:"position_size" validate:"required,gt=0"`
	StopLoss     float64 `json:"stop_loss" form:"stop_loss" validate:"required,gt=0"`
	TakeProfit   float64 `json:"take_profit" form:"take_profit" validate:"required,gt=0"`

	EntryTime time.Time `json:"entry_time" form:"entry_time" validate:"required"`
	ExitTime  time.Time `json:"exit_time" form:"exit_time" validate:"required"`

	TakeProfitReason string                 `json:"take_profit_reason" form:"take_profit_reason" validate:"max=500"`
	Notes            string                 `json:"notes" form:"notes" validate:"max=1000"`
	Tags             []string               `json:"tags" form:"tags"`
	MarketCondition  models.MarketCondition `json:"market_condition" form:"market_condition" validate:"omitempty,oneof=TRENDING RANGING VOLATILE SIDEWAYS"`
	RiskAmount       float64                `json:"risk_amount" form:"risk_amount" validate:"gte=0"`
	RiskPercentage   float64                `json:"risk_percentage" form:"risk_percentage" validate:"gte=0"`
}

// UpdateTradeRequest carries only the fields the client wants to change.
type UpdateTradeRequest struct {
	SetupName      *models.SetupName      `json:"setup_name" form:"setup_name" validate:"omitempty,oneof=QML TJL1 TJL2 SBR RBS"`
	DayType        *models.DayType        `json:"day_type" form:"day_type" validate:"omitempty,oneof=GBS RSD FBR"`
	EntryTimeframe *models.EntryTimeframe `json:"entry_timeframe" form:"entry_timeframe" validate:"omitempty,oneof=M5 M15 H1 H4 D1"`
	Symbol         *string                `json:"symbol" form:"symbol" validate:"omitempty,max=20"`
	Direction      *models.Direction      `json:"direction" form:"direction" validate:"omitempty,oneof=LONG SHORT"`
	Status         *models.TradeStatus    `json:"status" form:"status" validate:"omitempty,oneof=OPEN CLOSED CANCELLED"`

	EntryPrice   *float64 `json:"entry_price" form:"entry_price" validate:"omitempty,gt=0"`
	ExitPrice    *float64 `json:"exit_price" form:"exit_price" validate:"omitempty,gt=0"`
	PositionSize *float64 `json:"position_size" form:"position_size" validate:"omitempty,gt=0"`
	StopLoss     *float64 `json:"stop_loss" form:"stop_loss" validate:"omitempty,gt=0"`
	TakeProfit   *float64 `json:"take_profit" form:"take_profit" validate:"omitempty,gt=0"`

	EntryTime *time.Time `json:"entry_time" form:"entry_time"`
	ExitTime  *time.Time `json:"exit_time" form:"exit_time"`

	TakeProfitReason *string                 `json:"take_profit_reason" form:"take_profit_reason" validate:"omitempty,max=500"`
	Notes            *string                 `json:"notes" form:"notes" validate:"omitempty,max=1000"`
	Tags             []string                `json:"tags" form:"tags"`
	MarketCondition  *models.MarketCondition `json:"market_condition" form:"market_condition" validate:"omitempty,oneof=TRENDING RANGING VOLATILE SIDEWAYS"`
	RiskAmount       *float64                `json:"risk_amount" form:"risk_amount" validate:"omitempty,gte=0"`
	RiskPercentage   *float64                `json:"risk_percentage" form:"risk_percentage" validate:"omitempty,gte=0"`
}

// TradePage is one page of the trade listing.
type TradePage struct {
	Trades      []models.Trade `json:"trades"`
	TotalTrades int64          `json:"total_trades"`
	TotalPages  int            `json:"total_pages"`
	CurrentPage int            `json:"current_page"`
}

// CreateTrade stores a new journal entry with freshly computed metrics.
func (s *TradeService) CreateTrade(ctx context.Context, userID string, req CreateTradeRequest, files []*multipart.FileHeader) (*models.Trade, error) {
	images, err := s.storage.SaveImages(files)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.TradeStatusClosed
	}

	m := metrics.Compute(req.EntryPrice, req.ExitPrice, req.PositionSize,
		string(req.Direction), req.StopLoss, req.TakeProfit)

	trade := models.Trade{
		ID:     ulid.Make().String(),
		UserID: userID,

		SetupName:      req.SetupName,
		DayType:        req.DayType,
		EntryTimeframe: req.EntryTimeframe,
		Symbol:         strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Direction:      req.Direction,
		Status:         status,

		EntryPrice:   req.EntryPrice,
		ExitPrice:    req.ExitPrice,
		PositionSize: req.PositionSize,
		StopLoss:     req.StopLoss,
		TakeProfit:   req.TakeProfit,

		Pnl:             m.Pnl,
		PnlPercentage:   m.PnlPercentage,
		RiskRewardRatio: m.RiskRewardRatio,

		EntryTime: req.EntryTime,
		ExitTime:  req.ExitTime,

		TakeProfitReason: req.TakeProfitReason,
		Notes:            req.Notes,
		Tags:             req.Tags,
		MarketCondition:  req.MarketCondition,
		RiskAmount:       req.RiskAmount,
		RiskPercentage:   req.RiskPercentage,
		Images:           images,
	}

	if err := s.TradeRepo.Create(ctx, &trade); err != nil {
		s.storage.RemoveImages(images)
		return nil, err
	}

	s.logger.Info("trade created",
		zap.String("trade_id", trade.ID),
		zap.String("user_id", userID),
		zap.String("symbol", trade.Symbol),
		zap.Float64("pnl", trade.Pnl))

	s.notifyTrade(&trade)
	return &trade, nil
}

// UpdateTrade applies a partial update. Metrics are recomputed only when a
// price input changed; otherwise the stored values stand.
func (s *TradeService) UpdateTrade(ctx context.Context, userID, id string, req UpdateTradeRequest, files []*multipart.FileHeader) (*models.Trade, error) {
	trade, err := s.FindByUserAndID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xe.ErrTradeNotFound
		}
		return nil, err
	}

	if req.SetupName != nil {
		trade.SetupName = *req.SetupName
	}
	if req.DayType != nil {
		trade.DayType = *req.DayType
	}
	if req.EntryTimeframe != nil {
		trade.EntryTimeframe = *req.EntryTimeframe
	}
	if req.Symbol != nil {
		trade.Symbol = strings.ToUpper(strings.TrimSpace(*req.Symbol))
	}
	if req.Direction != nil {
		trade.Direction = *req.Direction
	}
	if req.Status != nil {
		trade.Status = *req.Status
	}
	if req.EntryPrice != nil {
		trade.EntryPrice = *req.EntryPrice
	}
	if req.ExitPrice != nil {
		trade.ExitPrice = *req.ExitPrice
	}
	if req.PositionSize != nil {
		trade.PositionSize = *req.PositionSize
	}
	if req.StopLoss != nil {
		trade.StopLoss = *req.StopLoss
	}
	if req.TakeProfit != nil {
		trade.TakeProfit = *req.TakeProfit
	}
	if req.EntryTime != nil {
		trade.EntryTime = *req.EntryTime
	}
	if req.ExitTime != nil {
		trade.ExitTime = *req.ExitTime
	}
	if req.TakeProfitReason != nil {
		trade.TakeProfitReason = *req.TakeProfitReason
	}
	if req.Notes != nil {
		trade.Notes = *req.Notes
	}
	if req.Tags != nil {
		trade.Tags = req.Tags
	}
	if req.MarketCondition != nil {
		trade.MarketCondition = *req.MarketCondition
	}
	if req.RiskAmount != nil {
		trade.RiskAmount = *req.RiskAmount
	}
	if req.RiskPercentage != nil {
		trade.RiskPercentage = *req.RiskPercentage
	}

	if req.EntryPrice != nil || req.ExitPrice != nil || req.PositionSize != nil || req.Direction != nil {
		m := metrics.Compute(trade.EntryPrice, trade.ExitPrice, trade.PositionSize,
			string(trade.Direction), trade.StopLoss, trade.TakeProfit)
		trade.Pnl = m.Pnl
		trade.PnlPercentage = m.PnlPercentage
		trade.RiskRewardRatio = m.RiskRewardRatio
	}

	if len(files) > 0 {
		images, err := s.storage.SaveImages(files)
		if err != nil {
			return nil, err
		}
		trade.Images = append(trade.Images, images...)
	}

	if err := s.TradeRepo.Save(ctx, &trade); err != nil {
		return nil, err
	}

	s.logger.Info("trade updated",
		zap.String("trade_id", trade.ID),
		zap.String("user_id", userID))
	return &trade, nil
}

// DeleteTrade removes the row and its stored screenshots.
func (s *TradeService) DeleteTrade(ctx context.Context, userID, id string) error {
	trade, err := s.FindByUserAndID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrTradeNotFound
		}
		return err
	}

	if err := s.TradeRepo.DeleteById(ctx, trade.ID); err != nil {
		return err
	}

	s.storage.RemoveImages(trade.Images)
	s.logger.Info("trade deleted",
		zap.String("trade_id", id),
		zap.String("user_id", userID))
	return nil
}

func (s *TradeService) GetTrade(ctx context.Context, userID, id string) (*models.Trade, error) {
	trade, err := s.FindByUserAndID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xe.ErrTradeNotFound
		}
		return nil, err
	}
	return &trade, nil
}

func (s *TradeService) ListTrades(ctx context.Context, q repo.TradeQuery) (*TradePage, error) {
	trades, total, err := s.FindPage(ctx, q)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit < 1 {
		limit = 20
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	return &TradePage{
		Trades:      trades,
		TotalTrades: total,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage: page,
	}, nil
}

// PerformanceSummary aggregates one calendar window.
type PerformanceSummary struct {
	Period      string         `json:"period"`
	TotalTrades int            `json:"total_trades"`
	Wins        int            `json:"wins"`
	Losses      int            `json:"losses"`
	TotalPnl    float64        `json:"total_pnl"`
	WinRate     float64        `json:"win_rate"`
	Trades      []models.Trade `json:"trades,omitempty"`
}

// DailyPerformance summarises today's trades regardless of status, so an
// open position still shows up in the day view.
func (s *TradeService) DailyPerformance(ctx context.Context, userID string, now time.Time) (*PerformanceSummary, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)

	trades, err := s.FindByUserWithinRange(ctx, userID, "", start, end)
	if err != nil {
		return nil, err
	}
	summary := summarize(trades, start.Format("2006-01-02"))
	summary.Trades = nil
	return summary, nil
}

// MonthlyPerformance summarises the closed trades of the current calendar
// month, trades included.
func (s *TradeService) MonthlyPerformance(ctx context.Context, userID string, now time.Time) (*PerformanceSummary, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	trades, err := s.FindByUserWithinRange(ctx, userID, models.TradeStatusClosed, start, end)
	if err != nil {
		return nil, err
	}
	return summarize(trades, start.Format("2006-01")), nil
}

// QuarterlyPerformance summarises the closed trades of the current quarter,
// trades included.
func (s *TradeService) QuarterlyPerformance(ctx context.Context, userID string, now time.Time) (*PerformanceSummary, error) {
	quarter := (int(now.Month()) - 1) / 3
	start := time.Date(now.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 3, 0).Add(-time.Nanosecond)

	trades, err := s.FindByUserWithinRange(ctx, userID, models.TradeStatusClosed, start, end)
	if err != nil {
		return nil, err
	}
	return summarize(trades, fmt.Sprintf("%d-Q%d", now.Year(), quarter+1)), nil
}

func summarize(trades []models.Trade, period string) *PerformanceSummary {
	summary := &PerformanceSummary{
		Period: period,
		Trades: trades,
	}
	if summary.Trades == nil {
		summary.Trades = []models.Trade{}
	}
	summary.TotalTrades = len(trades)
	for _, t := range trades {
		summary.TotalPnl += t.Pnl
		if t.Pnl > 0 {
			summary.Wins++
		} else if t.Pnl < 0 {
			summary.Losses++
		}
	}
	if summary.TotalTrades > 0 {
		summary.WinRate = math.Round(float64(summary.Wins)/float64(summary.TotalTrades)*100*100) / 100
	}
	summary.TotalPnl = math.Round(summary.TotalPnl*100) / 100
	return summary
}

func (s *TradeService) notifyTrade(trade *models.Trade) {
	if s.tg == nil || !s.conf.Telegram.Enabled || s.conf.Telegram.ChatID == "" {
		return
	}
	msg := fmt.Sprintf("*%s* %s %s\nPnL: %.2f (%.2f%%)",
		trade.Symbol, trade.Direction, trade.SetupName, trade.Pnl, trade.PnlPercentage)
	if err := s.tg.Notify(s.conf.Telegram.ChatID, msg); err != nil {
		s.logger.Warn("telegram notify failed", zap.Error(err))
	}
}
