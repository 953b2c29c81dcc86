package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dushixiang/tradenote/internal/analytics"
	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/repo"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AnalyticsService serves the aggregation views. Every view is computed over
// the caller's closed trades; the math itself lives in internal/analytics.
type AnalyticsService struct {
	logger *zap.Logger

	*orz.Service
	*repo.TradeRepo

	now func() time.Time
}

func NewAnalyticsService(logger *zap.Logger, db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{
		logger:    logger,
		Service:   orz.NewService(db),
		TradeRepo: repo.NewTradeRepo(db),
		now:       time.Now,
	}
}

func (s *AnalyticsService) Overview(ctx context.Context, userID string) (*analytics.OverviewStats, error) {
	trades, err := s.FindClosedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load closed trades: %w", err)
	}
	stats := analytics.Overview(trades)
	return &stats, nil
}

func (s *AnalyticsService) SetupStats(ctx context.Context, userID string) (map[models.SetupName]analytics.GroupStats, error) {
	trades, err := s.FindClosedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load closed trades: %w", err)
	}
	return analytics.SetupStats(trades), nil
}

func (s *AnalyticsService) TimeframeStats(ctx context.Context, userID string) (map[models.EntryTimeframe]analytics.GroupStats, error) {
	trades, err := s.FindClosedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load closed trades: %w", err)
	}
	return analytics.TimeframeStats(trades), nil
}

func (s *AnalyticsService) WeeklySeries(ctx context.Context, userID string, weeks int) ([]analytics.WeeklyBucket, error) {
	trades, err := s.FindClosedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load closed trades: %w", err)
	}
	return analytics.WeeklySeries(trades, s.now(), weeks), nil
}

func (s *AnalyticsService) MonthlySeries(ctx context.Context, userID string, months int) ([]analytics.MonthlyBucket, error) {
	trades, err := s.FindClosedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load closed trades: %w", err)
	}
	return analytics.MonthlySeries(trades, s.now(), months), nil
}

func (s *AnalyticsService) SymbolStats(ctx context.Context, userID string) (map[string]analytics.SymbolStats, error) {
	trades, err := s.FindClosedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load closed trades: %w", err)
	}
	return analytics.BySymbol(trades), nil
}

func (s *AnalyticsService) Drawdown(ctx context.Context, userID string) (*analytics.DrawdownStats, error) {
	trades, err := s.FindClosedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load closed trades: %w", err)
	}
	stats := analytics.Drawdown(trades)
	return &stats, nil
}
