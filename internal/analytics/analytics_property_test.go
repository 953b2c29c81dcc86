package analytics

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dushixiang/tradenote/internal/models"
)

func tradesFromPnls(pnls []float64) []models.Trade {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trades := make([]models.Trade, len(pnls))
	for i, pnl := range pnls {
		trades[i] = closedTrade(pnl, base.Add(time.Duration(i)*time.Hour))
	}
	return trades
}

func pnlSliceGen() gopter.Gen {
	return gen.SliceOf(gen.Float64Range(-10000, 10000))
}

// Property: drawdown is a function of the entry-time order, so any
// permutation of the input slice must produce the same result.
func TestProperty_DrawdownIgnoresInputOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("drawdown invariant under permutation", prop.ForAll(
		func(pnls []float64, seed int64) bool {
			trades := tradesFromPnls(pnls)
			want := Drawdown(trades)

			// deterministic pseudo-shuffle driven by the seed
			shuffled := make([]models.Trade, len(trades))
			copy(shuffled, trades)
			s := uint64(seed)
			for i := len(shuffled) - 1; i > 0; i-- {
				s = s*6364136223846793005 + 1442695040888963407
				j := int(s % uint64(i+1))
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			}

			return Drawdown(shuffled) == want
		},
		pnlSliceGen(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// Property: drawdown outputs are never negative and the maximum drawdown is
// at least the final drawdown and never exceeds the peak-to-trough range.
func TestProperty_DrawdownBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("drawdown fields are consistent", prop.ForAll(
		func(pnls []float64) bool {
			dd := Drawdown(tradesFromPnls(pnls))
			if dd.MaxDrawdown < 0 || dd.CurrentDrawdown < 0 || dd.Peak < 0 {
				return false
			}
			// rounding may separate the two by at most half a cent
			return dd.MaxDrawdown >= dd.CurrentDrawdown-0.01
		},
		pnlSliceGen(),
	))

	properties.TestingRun(t)
}

// Property: win rate stays within [0, 100] and wins+losses never exceed the
// trade count (break-even trades are neither).
func TestProperty_OverviewCounts(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("overview counts are consistent", prop.ForAll(
		func(pnls []float64) bool {
			o := Overview(tradesFromPnls(pnls))
			if o.WinRate < 0 || o.WinRate > 100 {
				return false
			}
			if o.TotalWins+o.TotalLosses > o.TotalTrades {
				return false
			}
			return o.TotalTrades == len(pnls)
		},
		pnlSliceGen(),
	))

	properties.TestingRun(t)
}

// Property: the weekly series always has exactly the requested number of
// buckets in ascending label order, whatever the trades look like.
func TestProperty_WeeklySeriesShape(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	properties.Property("bucket count and ordering", prop.ForAll(
		func(pnls []float64, weeks int) bool {
			series := WeeklySeries(tradesFromPnls(pnls), now, weeks)
			if len(series) != weeks {
				return false
			}
			for i := 1; i < len(series); i++ {
				if series[i-1].Week >= series[i].Week {
					return false
				}
			}
			return true
		},
		pnlSliceGen(),
		gen.IntRange(1, 52),
	))

	properties.TestingRun(t)
}
