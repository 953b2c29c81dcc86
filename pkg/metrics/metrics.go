// Package metrics computes the derived performance fields of a journalled
// trade from its raw price inputs. It is pure: no persistence, no clock.
package metrics

import "math"

const (
	DirectionLong  = "LONG"
	DirectionShort = "SHORT"
)

// Metrics are the three derived fields stored on a trade.
type Metrics struct {
	Pnl             float64 `json:"pnl"`
	PnlPercentage   float64 `json:"pnl_percentage"`
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
}

// Compute derives P&L, P&L percentage and risk-reward ratio. Inputs must
// already be parsed to numbers; the caller owns validation.
//
// Zero denominators are not errors: a zero-cost position yields a 0 P&L
// percentage and a zero risk distance yields a 0 RRR.
func Compute(entryPrice, exitPrice, positionSize float64, direction string, stopLoss, takeProfit float64) Metrics {
	var pnl float64
	if direction == DirectionLong {
		pnl = (exitPrice - entryPrice) * positionSize
	} else {
		pnl = (entryPrice - exitPrice) * positionSize
	}

	pnlPercentage := 0.0
	if cost := entryPrice * positionSize; cost != 0 {
		pnlPercentage = pnl / cost * 100
	}

	rrr := 0.0
	if risk := math.Abs(entryPrice - stopLoss); risk > 0 {
		rrr = math.Abs(takeProfit-entryPrice) / risk
	}

	return Metrics{
		Pnl:             pnl,
		PnlPercentage:   pnlPercentage,
		RiskRewardRatio: rrr,
	}
}
