package metrics

import (
	"math"
	"testing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		entry      float64
		exit       float64
		size       float64
		direction  string
		stopLoss   float64
		takeProfit float64
		want       Metrics
	}{
		{
			name:  "long winner",
			entry: 100, exit: 110, size: 10,
			direction: DirectionLong, stopLoss: 95, takeProfit: 115,
			want: Metrics{Pnl: 100, PnlPercentage: 10, RiskRewardRatio: 3},
		},
		{
			name:  "short winner",
			entry: 100, exit: 90, size: 5,
			direction: DirectionShort, stopLoss: 105, takeProfit: 90,
			want: Metrics{Pnl: 50, PnlPercentage: 10, RiskRewardRatio: 2},
		},
		{
			name:  "long loser",
			entry: 50, exit: 45, size: 2,
			direction: DirectionLong, stopLoss: 48, takeProfit: 56,
			want: Metrics{Pnl: -10, PnlPercentage: -10, RiskRewardRatio: 3},
		},
		{
			name:  "short loser",
			entry: 200, exit: 210, size: 1,
			direction: DirectionShort, stopLoss: 220, takeProfit: 180,
			want: Metrics{Pnl: -10, PnlPercentage: -5, RiskRewardRatio: 1},
		},
		{
			name:  "zero risk distance guards RRR",
			entry: 100, exit: 110, size: 10,
			direction: DirectionLong, stopLoss: 100, takeProfit: 115,
			want: Metrics{Pnl: 100, PnlPercentage: 10, RiskRewardRatio: 0},
		},
		{
			name:  "zero cost guards pnl percentage",
			entry: 0, exit: 10, size: 10,
			direction: DirectionLong, stopLoss: 0, takeProfit: 5,
			want: Metrics{Pnl: 100, PnlPercentage: 0, RiskRewardRatio: 0},
		},
		{
			name:  "zero position size",
			entry: 100, exit: 110, size: 0,
			direction: DirectionLong, stopLoss: 95, takeProfit: 115,
			want: Metrics{Pnl: 0, PnlPercentage: 0, RiskRewardRatio: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.entry, tt.exit, tt.size, tt.direction, tt.stopLoss, tt.takeProfit)
			if !almostEqual(got.Pnl, tt.want.Pnl) {
				t.Errorf("Pnl = %v, want %v", got.Pnl, tt.want.Pnl)
			}
			if !almostEqual(got.PnlPercentage, tt.want.PnlPercentage) {
				t.Errorf("PnlPercentage = %v, want %v", got.PnlPercentage, tt.want.PnlPercentage)
			}
			if !almostEqual(got.RiskRewardRatio, tt.want.RiskRewardRatio) {
				t.Errorf("RiskRewardRatio = %v, want %v", got.RiskRewardRatio, tt.want.RiskRewardRatio)
			}
		})
	}
}

func TestComputeNeverNonFinite(t *testing.T) {
	inputs := [][6]float64{
		{0, 0, 0, 0, 0, 0},
		{0, 100, 50, 0, 200, 0},
		{100, 100, 0, 100, 100, 0},
	}
	for _, in := range inputs {
		for _, dir := range []string{DirectionLong, DirectionShort} {
			m := Compute(in[0], in[1], in[2], dir, in[3], in[4])
			for _, v := range []float64{m.Pnl, m.PnlPercentage, m.RiskRewardRatio} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Errorf("Compute(%v, %s) produced non-finite value %v", in, dir, v)
				}
			}
		}
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
