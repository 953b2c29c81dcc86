package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SetupName is one of the five discretionary trade pattern codes.
type SetupName string

const (
	SetupQML  SetupName = "QML"
	SetupTJL1 SetupName = "TJL1"
	SetupTJL2 SetupName = "TJL2"
	SetupSBR  SetupName = "SBR"
	SetupRBS  SetupName = "RBS"
)

// AllSetupNames returns every setup code in declaration order.
func AllSetupNames() []SetupName {
	return []SetupName{SetupQML, SetupTJL1, SetupTJL2, SetupSBR, SetupRBS}
}

// DayType classifies the overall market-day character.
type DayType string

const (
	DayTypeGBS DayType = "GBS"
	DayTypeRSD DayType = "RSD"
	DayTypeFBR DayType = "FBR"
)

// EntryTimeframe is the chart timeframe the entry was taken on.
type EntryTimeframe string

const (
	TimeframeM5  EntryTimeframe = "M5"
	TimeframeM15 EntryTimeframe = "M15"
	TimeframeH1  EntryTimeframe = "H1"
	TimeframeH4  EntryTimeframe = "H4"
	TimeframeD1  EntryTimeframe = "D1"
)

// AllEntryTimeframes returns every timeframe code in declaration order.
func AllEntryTimeframes() []EntryTimeframe {
	return []EntryTimeframe{TimeframeM5, TimeframeM15, TimeframeH1, TimeframeH4, TimeframeD1}
}

type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

type TradeStatus string

const (
	TradeStatusOpen      TradeStatus = "OPEN"
	TradeStatusClosed    TradeStatus = "CLOSED"
	TradeStatusCancelled TradeStatus = "CANCELLED"
)

type MarketCondition string

const (
	MarketTrending MarketCondition = "TRENDING"
	MarketRanging  MarketCondition = "RANGING"
	MarketVolatile MarketCondition = "VOLATILE"
	MarketSideways MarketCondition = "SIDEWAYS"
)

// TradeImage is one attached screenshot, stored as JSON on the trade row.
type TradeImage struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	Path         string    `json:"path"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Trade is a single journalled discretionary trade. Pnl, PnlPercentage and
// RiskRewardRatio are derived from the price fields via pkg/metrics and must
// be recomputed whenever entry/exit price, position size or direction change.
type Trade struct {
	ID     string `gorm:"primaryKey;type:varchar(26)" json:"id"`
	UserID string `gorm:"type:varchar(26);not null;index" json:"user_id"`

	SetupName      SetupName      `gorm:"type:varchar(10);not null;index" json:"setup_name"`
	DayType        DayType        `gorm:"type:varchar(10);not null" json:"day_type"`
	EntryTimeframe EntryTimeframe `gorm:"type:varchar(10);not null" json:"entry_timeframe"`
	Symbol         string         `gorm:"type:varchar(20);not null;index" json:"symbol"`
	Direction      Direction      `gorm:"type:varchar(10);not null" json:"direction"`
	Status         TradeStatus    `gorm:"type:varchar(10);not null;default:'CLOSED';index" json:"status"`

	EntryPrice   float64 `gorm:"type:decimal(20,8);not null" json:"entry_price"`
	ExitPrice    float64 `gorm:"type:decimal(20,8);not null" json:"exit_price"`
	PositionSize float64 `gorm:"type:decimal(20,8);not null" json:"position_size"`
	StopLoss     float64 `gorm:"type:decimal(20,8);not null" json:"stop_loss"`
	TakeProfit   float64 `gorm:"type:decimal(20,8);not null" json:"take_profit"`

	Pnl             float64 `gorm:"type:decimal(20,8);not null" json:"pnl"`
	PnlPercentage   float64 `gorm:"type:decimal(10,4);not null" json:"pnl_percentage"`
	RiskRewardRatio float64 `gorm:"type:decimal(10,4);not null" json:"risk_reward_ratio"`

	EntryTime time.Time `gorm:"not null;index" json:"entry_time"`
	ExitTime  time.Time `gorm:"not null" json:"exit_time"`

	TakeProfitReason string                          `gorm:"type:varchar(500)" json:"take_profit_reason"`
	Notes            string                          `gorm:"type:varchar(1000)" json:"notes"`
	Tags             datatypes.JSONSlice[string]     `json:"tags"`
	MarketCondition  MarketCondition                 `gorm:"type:varchar(10)" json:"market_condition"`
	RiskAmount       float64                         `gorm:"type:decimal(20,8)" json:"risk_amount"`
	RiskPercentage   float64                         `gorm:"type:decimal(10,4)" json:"risk_percentage"`
	Images           datatypes.JSONSlice[TradeImage] `json:"images"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Trade) TableName() string {
	return "trades"
}

// Duration is the holding time between entry and exit.
func (t *Trade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}
