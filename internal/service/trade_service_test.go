package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dushixiang/tradenote/internal/config"
	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/xe"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.User{}, models.Trade{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestTradeService(t *testing.T) *TradeService {
	t.Helper()
	logger := zap.NewNop()
	conf := &config.Config{}
	conf.Upload.Dir = t.TempDir()
	storage := NewStorageService(logger, conf)
	return NewTradeService(logger, newTestDB(t), conf, storage, nil)
}

func journalTrade(t *testing.T, s *TradeService, userID string) *models.Trade {
	t.Helper()
	entry := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	trade, err := s.CreateTrade(context.Background(), userID, CreateTradeRequest{
		SetupName:      models.SetupQML,
		DayType:        models.DayTypeGBS,
		EntryTimeframe: models.TimeframeH1,
		Symbol:         "eurusd",
		Direction:      models.DirectionLong,
		EntryPrice:     100,
		ExitPrice:      110,
		PositionSize:   10,
		StopLoss:       95,
		TakeProfit:     115,
		EntryTime:      entry,
		ExitTime:       entry.Add(2 * time.Hour),
	}, nil)
	if err != nil {
		t.Fatalf("create trade: %v", err)
	}
	return trade
}

func TestCreateTradeComputesMetrics(t *testing.T) {
	s := newTestTradeService(t)
	trade := journalTrade(t, s, "user-1")

	if trade.Pnl != 100 {
		t.Errorf("Pnl = %v, want 100", trade.Pnl)
	}
	if trade.PnlPercentage != 10 {
		t.Errorf("PnlPercentage = %v, want 10", trade.PnlPercentage)
	}
	if trade.RiskRewardRatio != 3 {
		t.Errorf("RiskRewardRatio = %v, want 3", trade.RiskRewardRatio)
	}
	if trade.Symbol != "EURUSD" {
		t.Errorf("Symbol = %q, want uppercased", trade.Symbol)
	}
	if trade.Status != models.TradeStatusClosed {
		t.Errorf("Status = %q, want default CLOSED", trade.Status)
	}
}

func TestUpdateTradeRecomputesOnDirectionFlip(t *testing.T) {
	s := newTestTradeService(t)
	created := journalTrade(t, s, "user-1")

	direction := models.DirectionShort
	updated, err := s.UpdateTrade(context.Background(), "user-1", created.ID, UpdateTradeRequest{
		Direction: &direction,
	}, nil)
	if err != nil {
		t.Fatalf("update trade: %v", err)
	}

	if updated.Pnl != -100 {
		t.Errorf("Pnl = %v, want -100 after flipping to SHORT", updated.Pnl)
	}
	if updated.PnlPercentage != -10 {
		t.Errorf("PnlPercentage = %v, want -10", updated.PnlPercentage)
	}

	stored, err := s.GetTrade(context.Background(), "user-1", created.ID)
	if err != nil {
		t.Fatalf("get trade: %v", err)
	}
	if stored.Pnl != -100 {
		t.Errorf("stored Pnl = %v, want -100", stored.Pnl)
	}
}

func TestUpdateTradeStopLossOnlyKeepsStoredMetrics(t *testing.T) {
	s := newTestTradeService(t)
	created := journalTrade(t, s, "user-1")

	// with the new stop a fresh computation would give RRR 1.5, not 3
	stopLoss := 90.0
	updated, err := s.UpdateTrade(context.Background(), "user-1", created.ID, UpdateTradeRequest{
		StopLoss: &stopLoss,
	}, nil)
	if err != nil {
		t.Fatalf("update trade: %v", err)
	}

	if updated.StopLoss != 90 {
		t.Errorf("StopLoss = %v, want 90", updated.StopLoss)
	}
	if updated.RiskRewardRatio != 3 {
		t.Errorf("RiskRewardRatio = %v, want the stored 3 to survive a stop-loss-only edit", updated.RiskRewardRatio)
	}
	if updated.Pnl != 100 || updated.PnlPercentage != 10 {
		t.Errorf("Pnl/PnlPercentage = %v/%v, want untouched 100/10", updated.Pnl, updated.PnlPercentage)
	}

	stored, err := s.GetTrade(context.Background(), "user-1", created.ID)
	if err != nil {
		t.Fatalf("get trade: %v", err)
	}
	if stored.RiskRewardRatio != 3 {
		t.Errorf("stored RiskRewardRatio = %v, want 3", stored.RiskRewardRatio)
	}
}

func TestUpdateTradeRecomputesOnEntryPriceChange(t *testing.T) {
	s := newTestTradeService(t)
	created := journalTrade(t, s, "user-1")

	entryPrice := 105.0
	updated, err := s.UpdateTrade(context.Background(), "user-1", created.ID, UpdateTradeRequest{
		EntryPrice: &entryPrice,
	}, nil)
	if err != nil {
		t.Fatalf("update trade: %v", err)
	}

	if updated.Pnl != 50 {
		t.Errorf("Pnl = %v, want 50 after entry moved to 105", updated.Pnl)
	}
	// |115-105| / |105-95| = 1
	if updated.RiskRewardRatio != 1 {
		t.Errorf("RiskRewardRatio = %v, want 1", updated.RiskRewardRatio)
	}
}

func TestUpdateTradeWrongOwnerIsNotFound(t *testing.T) {
	s := newTestTradeService(t)
	created := journalTrade(t, s, "user-1")

	notes := "mine now"
	_, err := s.UpdateTrade(context.Background(), "user-2", created.ID, UpdateTradeRequest{
		Notes: &notes,
	}, nil)
	if !errors.Is(err, xe.ErrTradeNotFound) {
		t.Fatalf("err = %v, want trade-not-found for another user's trade", err)
	}
}

func TestSummarize(t *testing.T) {
	trades := []models.Trade{
		{Pnl: 100},
		{Pnl: -40},
		{Pnl: 60},
		{Pnl: 0},
	}

	summary := summarize(trades, "2026-08")
	if summary.Period != "2026-08" {
		t.Errorf("period: got %q", summary.Period)
	}
	if summary.TotalTrades != 4 {
		t.Errorf("total trades: got %d", summary.TotalTrades)
	}
	if summary.Wins != 2 || summary.Losses != 1 {
		t.Errorf("wins/losses: got %d/%d", summary.Wins, summary.Losses)
	}
	if summary.TotalPnl != 120 {
		t.Errorf("total pnl: got %v", summary.TotalPnl)
	}
	if summary.WinRate != 50 {
		t.Errorf("win rate: got %v", summary.WinRate)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := summarize(nil, "2026-08-28")
	if summary.TotalTrades != 0 || summary.WinRate != 0 || summary.TotalPnl != 0 {
		t.Errorf("got %+v", summary)
	}
	if summary.Trades == nil {
		t.Error("trades should marshal as an empty array, not null")
	}
}

func TestSummarizeRoundsPnlAndWinRate(t *testing.T) {
	trades := []models.Trade{
		{Pnl: 10.005},
		{Pnl: 20.001},
		{Pnl: -5.0004},
	}

	summary := summarize(trades, "p")
	if summary.TotalPnl != 25.01 {
		t.Errorf("total pnl: got %v", summary.TotalPnl)
	}
	// 2 wins of 3 trades
	if summary.WinRate != 66.67 {
		t.Errorf("win rate: got %v", summary.WinRate)
	}
}
