package repo

import (
	"context"
	"strings"
	"time"

	"github.com/dushixiang/tradenote/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewTradeRepo(db *gorm.DB) *TradeRepo {
	return &TradeRepo{
		Repository: orz.NewRepository[models.Trade, string](db),
	}
}

type TradeRepo struct {
	orz.Repository[models.Trade, string]
}

// TradeQuery filters and pages the owner-scoped trade listing.
type TradeQuery struct {
	UserID    string
	SetupName models.SetupName
	DayType   models.DayType
	Symbol    string // case-insensitive substring
	Status    models.TradeStatus
	StartTime *time.Time
	EndTime   *time.Time
	SortBy    string // whitelisted column, default entry_time
	SortDesc  bool
	Page      int
	Limit     int
}

var sortableColumns = map[string]string{
	"entry_time": "entry_time",
	"exit_time":  "exit_time",
	"pnl":        "pnl",
	"symbol":     "symbol",
	"created_at": "created_at",
}

// FindPage returns one page of a user's trades plus the unpaged total.
func (r TradeRepo) FindPage(ctx context.Context, q TradeQuery) ([]models.Trade, int64, error) {
	db := r.GetDB(ctx)

	scope := db.Table(r.GetTableName()).Where("user_id = ?", q.UserID)
	if q.SetupName != "" {
		scope = scope.Where("setup_name = ?", q.SetupName)
	}
	if q.DayType != "" {
		scope = scope.Where("day_type = ?", q.DayType)
	}
	if q.Symbol != "" {
		scope = scope.Where("symbol LIKE ?", "%"+strings.ToUpper(q.Symbol)+"%")
	}
	if q.Status != "" {
		scope = scope.Where("status = ?", q.Status)
	}
	if q.StartTime != nil {
		scope = scope.Where("entry_time >= ?", q.StartTime)
	}
	if q.EndTime != nil {
		scope = scope.Where("entry_time <= ?", q.EndTime)
	}

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortableColumns[q.SortBy]
	if !ok {
		column = "entry_time"
	}
	order := column + " ASC"
	if q.SortDesc {
		order = column + " DESC"
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 20
	}

	var trades []models.Trade
	err := scope.Order(order).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&trades).Error
	return trades, total, err
}

// FindByUserAndID fetches one trade, scoped to its owner.
func (r TradeRepo) FindByUserAndID(ctx context.Context, userID, id string) (models.Trade, error) {
	db := r.GetDB(ctx)
	var trade models.Trade
	err := db.Table(r.GetTableName()).
		Where("id = ? AND user_id = ?", id, userID).
		First(&trade).Error
	return trade, err
}

// FindClosedByUser returns every CLOSED trade of one user, the input of all
// aggregation views.
func (r TradeRepo) FindClosedByUser(ctx context.Context, userID string) ([]models.Trade, error) {
	var trades []models.Trade
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("user_id = ? AND status = ?", userID, models.TradeStatusClosed).
		Find(&trades).Error
	return trades, err
}

// FindByUserWithinRange returns a user's trades whose entry time falls within
// [start, end]. Status filters only when non-empty.
func (r TradeRepo) FindByUserWithinRange(ctx context.Context, userID string, status models.TradeStatus, start, end time.Time) ([]models.Trade, error) {
	db := r.GetDB(ctx)
	scope := db.Table(r.GetTableName()).
		Where("user_id = ? AND entry_time >= ? AND entry_time <= ?", userID, start, end)
	if status != "" {
		scope = scope.Where("status = ?", status)
	}
	var trades []models.Trade
	err := scope.Find(&trades).Error
	return trades, err
}
