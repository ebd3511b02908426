// Package valuation holds the pure portfolio math: aggregate totals,
// profit, per-asset performance ranking, and target progress. Nothing
// here touches storage or the clock except through arguments.
package valuation

import (
	"time"

	"cryptofolio/internal/domain/entity"
)

// Summary is the computed valuation of one portfolio snapshot.
type Summary struct {
	TotalInvested  float64       `json:"totalInvested"`
	TotalCurrent   float64       `json:"totalCurrent"`
	Profit         float64       `json:"profit"`
	ProfitPct      float64       `json:"profitPct"`
	TargetProgress float64       `json:"targetProgress"`
	BestPerformer  *Performance  `json:"bestPerformer,omitempty"`
	WorstPerformer *Performance  `json:"worstPerformer,omitempty"`
}

// Performance is one asset's return relative to its cost basis.
type Performance struct {
	AssetID   string  `json:"assetId"`
	Symbol    string  `json:"symbol"`
	ReturnPct float64 `json:"returnPct"`
}

// Aggregate computes invested/current totals and profit for a snapshot.
// ProfitPct is 0 when nothing is invested.
func Aggregate(p *entity.Portfolio) Summary {
	var invested, current float64
	for i := range p.Assets {
		a := &p.Assets[i]
		invested += a.Quantity * a.BuyPrice
		current += a.Quantity * a.CurrentPrice
	}
	profit := current - invested
	pct := 0.0
	if invested != 0 {
		pct = profit / invested * 100
	}
	return Summary{
		TotalInvested:  invested,
		TotalCurrent:   current,
		Profit:         profit,
		ProfitPct:      pct,
		TargetProgress: TargetProgress(p.TargetAmount, current),
	}
}

// RankPerformers returns the best and worst performing assets by
// (current-buy)/buy. Assets with a zero buy price have no defined
// return and are skipped. Ties keep the first-encountered asset.
// Both results are nil when no asset is rankable.
func RankPerformers(assets []entity.Asset) (best, worst *Performance) {
	for i := range assets {
		a := &assets[i]
		if a.BuyPrice == 0 {
			continue
		}
		ret := (a.CurrentPrice - a.BuyPrice) / a.BuyPrice * 100
		perf := &Performance{AssetID: a.ID, Symbol: a.Symbol, ReturnPct: ret}
		if best == nil || ret > best.ReturnPct {
			best = perf
		}
		if worst == nil || ret < worst.ReturnPct {
			worst = perf
		}
	}
	return best, worst
}

// TargetProgress is currentValue/target as a percentage, or 0 for an
// unset target (no division fault, no metric).
func TargetProgress(target, current float64) float64 {
	if target <= 0 {
		return 0
	}
	return current / target * 100
}

// Summarize computes the full valuation summary for a portfolio.
func Summarize(p *entity.Portfolio) Summary {
	s := Aggregate(p)
	s.BestPerformer, s.WorstPerformer = RankPerformers(p.Assets)
	return s
}

// Recompute refreshes the portfolio's denormalized totals and its
// last-updated instant. Every mutating operation calls this before
// persisting, so the stored totals never go stale.
func Recompute(p *entity.Portfolio, now time.Time) {
	s := Aggregate(p)
	p.TotalInvestedValue = s.TotalInvested
	p.TotalCurrentValue = s.TotalCurrent
	p.LastUpdated = now
}
