// Package analytics produces the reporting views over a user's closed
// trades. Every function is pure over its input slice: callers fetch the
// trades, the functions only aggregate. Numeric outputs are rounded to two
// decimal places; empty input always yields zero values, never an error.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/dushixiang/tradenote/internal/models"
)

// OverviewStats are the headline numbers across all closed trades.
type OverviewStats struct {
	TotalTrades int     `json:"total_trades"`
	WinRate     float64 `json:"win_rate"`
	TotalPnl    float64 `json:"total_pnl"`
	AveragePnl  float64 `json:"average_pnl"`
	BestTrade   float64 `json:"best_trade"`
	WorstTrade  float64 `json:"worst_trade"`
	AverageRRR  float64 `json:"average_rrr"`
	TotalWins   int     `json:"total_wins"`
	TotalLosses int     `json:"total_losses"`
}

// GroupStats describe one setup or timeframe bucket.
type GroupStats struct {
	TotalTrades int     `json:"total_trades"`
	WinRate     float64 `json:"win_rate"`
	TotalPnl    float64 `json:"total_pnl"`
	AveragePnl  float64 `json:"average_pnl"`
}

// SymbolStats describe one traded symbol.
type SymbolStats struct {
	TotalTrades int     `json:"total_trades"`
	TotalPnl    float64 `json:"total_pnl"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`
	AveragePnl  float64 `json:"average_pnl"`
}

// WeeklyBucket is one 7-day window, labelled by its start date.
type WeeklyBucket struct {
	Week        string  `json:"week"`
	TotalTrades int     `json:"total_trades"`
	WinRate     float64 `json:"win_rate"`
	TotalPnl    float64 `json:"total_pnl"`
}

// MonthlyBucket is one calendar month, labelled YYYY-MM.
type MonthlyBucket struct {
	Month       string  `json:"month"`
	TotalTrades int     `json:"total_trades"`
	WinRate     float64 `json:"win_rate"`
	TotalPnl    float64 `json:"total_pnl"`
}

// DrawdownStats describe the peak-to-trough decline of cumulative P&L.
// CurrentDrawdown is the value at the end of the scan, not the maximum.
type DrawdownStats struct {
	MaxDrawdown           float64 `json:"max_drawdown"`
	MaxDrawdownPercentage float64 `json:"max_drawdown_percentage"`
	Peak                  float64 `json:"peak"`
	CurrentDrawdown       float64 `json:"current_drawdown"`
}

// Overview aggregates the headline statistics.
func Overview(trades []models.Trade) OverviewStats {
	if len(trades) == 0 {
		return OverviewStats{}
	}

	stats := OverviewStats{
		TotalTrades: len(trades),
		BestTrade:   trades[0].Pnl,
		WorstTrade:  trades[0].Pnl,
	}

	var totalPnl, totalRRR float64
	for _, t := range trades {
		totalPnl += t.Pnl
		totalRRR += t.RiskRewardRatio
		if t.Pnl > 0 {
			stats.TotalWins++
		} else if t.Pnl < 0 {
			stats.TotalLosses++
		}
		if t.Pnl > stats.BestTrade {
			stats.BestTrade = t.Pnl
		}
		if t.Pnl < stats.WorstTrade {
			stats.WorstTrade = t.Pnl
		}
	}

	n := float64(len(trades))
	stats.WinRate = round2(float64(stats.TotalWins) / n * 100)
	stats.TotalPnl = round2(totalPnl)
	stats.AveragePnl = round2(totalPnl / n)
	stats.BestTrade = round2(stats.BestTrade)
	stats.WorstTrade = round2(stats.WorstTrade)
	stats.AverageRRR = round2(totalRRR / n)
	return stats
}

// SetupStats buckets trades by setup code. Every one of the five codes is
// present in the result, zero-filled when no trade matches.
func SetupStats(trades []models.Trade) map[models.SetupName]GroupStats {
	stats := make(map[models.SetupName]GroupStats, len(models.AllSetupNames()))
	for _, setup := range models.AllSetupNames() {
		stats[setup] = groupStats(trades, func(t models.Trade) bool {
			return t.SetupName == setup
		})
	}
	return stats
}

// TimeframeStats buckets trades by entry timeframe, with the same
// all-keys-present guarantee as SetupStats.
func TimeframeStats(trades []models.Trade) map[models.EntryTimeframe]GroupStats {
	stats := make(map[models.EntryTimeframe]GroupStats, len(models.AllEntryTimeframes()))
	for _, tf := range models.AllEntryTimeframes() {
		stats[tf] = groupStats(trades, func(t models.Trade) bool {
			return t.EntryTimeframe == tf
		})
	}
	return stats
}

func groupStats(trades []models.Trade, match func(models.Trade) bool) GroupStats {
	var stats GroupStats
	var totalPnl float64
	wins := 0
	for _, t := range trades {
		if !match(t) {
			continue
		}
		stats.TotalTrades++
		totalPnl += t.Pnl
		if t.Pnl > 0 {
			wins++
		}
	}
	if stats.TotalTrades == 0 {
		return stats
	}
	n := float64(stats.TotalTrades)
	stats.WinRate = round2(float64(wins) / n * 100)
	stats.TotalPnl = round2(totalPnl)
	stats.AveragePnl = round2(totalPnl / n)
	return stats
}

// WeeklySeries produces `weeks` consecutive 7-day windows ending at now,
// aligned to calendar-day boundaries and ordered oldest first. A window
// covers 00:00:00 of its start day through 23:59:59.999999999 of day 6.
func WeeklySeries(trades []models.Trade, now time.Time, weeks int) []WeeklyBucket {
	if weeks <= 0 {
		weeks = 12
	}

	buckets := make([]WeeklyBucket, 0, weeks)
	for i := 0; i < weeks; i++ {
		weekStart := startOfDay(now.AddDate(0, 0, -i*7))
		weekEnd := endOfDay(weekStart.AddDate(0, 0, 6))

		bucket := WeeklyBucket{Week: weekStart.Format("2006-01-02")}
		bucket.TotalTrades, bucket.WinRate, bucket.TotalPnl = windowStats(trades, weekStart, weekEnd)

		// computed newest first, emitted oldest first
		buckets = append([]WeeklyBucket{bucket}, buckets...)
	}
	return buckets
}

// MonthlySeries produces `months` consecutive calendar months ending at the
// month of now, ordered oldest first and keyed YYYY-MM.
func MonthlySeries(trades []models.Trade, now time.Time, months int) []MonthlyBucket {
	if months <= 0 {
		months = 12
	}

	buckets := make([]MonthlyBucket, 0, months)
	for i := 0; i < months; i++ {
		monthStart := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

		bucket := MonthlyBucket{Month: monthStart.Format("2006-01")}
		bucket.TotalTrades, bucket.WinRate, bucket.TotalPnl = windowStats(trades, monthStart, monthEnd)

		buckets = append([]MonthlyBucket{bucket}, buckets...)
	}
	return buckets
}

func windowStats(trades []models.Trade, start, end time.Time) (total int, winRate, totalPnl float64) {
	wins := 0
	for _, t := range trades {
		if t.EntryTime.Before(start) || t.EntryTime.After(end) {
			continue
		}
		total++
		totalPnl += t.Pnl
		if t.Pnl > 0 {
			wins++
		}
	}
	if total > 0 {
		winRate = round2(float64(wins) / float64(total) * 100)
	}
	return total, winRate, round2(totalPnl)
}

// BySymbol groups trades by symbol. Keys are dynamic: only traded symbols
// appear. A trade with pnl == 0 counts as a loss.
func BySymbol(trades []models.Trade) map[string]SymbolStats {
	totals := make(map[string]SymbolStats)
	for _, t := range trades {
		stats := totals[t.Symbol]
		stats.TotalTrades++
		stats.TotalPnl += t.Pnl
		if t.Pnl > 0 {
			stats.Wins++
		} else {
			stats.Losses++
		}
		totals[t.Symbol] = stats
	}

	for symbol, stats := range totals {
		n := float64(stats.TotalTrades)
		stats.WinRate = round2(float64(stats.Wins) / n * 100)
		stats.AveragePnl = round2(stats.TotalPnl / n)
		stats.TotalPnl = round2(stats.TotalPnl)
		totals[symbol] = stats
	}
	return totals
}

// Drawdown scans trades in entry-time order, tracking the running cumulative
// P&L, its peak, and the decline from that peak. The input order does not
// matter; a sorted copy is scanned.
func Drawdown(trades []models.Trade) DrawdownStats {
	ordered := make([]models.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EntryTime.Before(ordered[j].EntryTime)
	})

	var peak, currentDrawdown, maxDrawdown, runningTotal float64
	for _, t := range ordered {
		runningTotal += t.Pnl
		if runningTotal > peak {
			peak = runningTotal
			currentDrawdown = 0
		} else {
			currentDrawdown = peak - runningTotal
			if currentDrawdown > maxDrawdown {
				maxDrawdown = currentDrawdown
			}
		}
	}

	maxDrawdownPercentage := 0.0
	if peak > 0 {
		maxDrawdownPercentage = maxDrawdown / peak * 100
	}

	return DrawdownStats{
		MaxDrawdown:           round2(maxDrawdown),
		MaxDrawdownPercentage: round2(maxDrawdownPercentage),
		Peak:                  round2(peak),
		CurrentDrawdown:       round2(currentDrawdown),
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
