package entity

import (
	"strings"
	"time"
)

// Asset is one holding inside a Portfolio. Assets never exist on their
// own; they are embedded in the owning portfolio document.
//
// Quantity and BuyPrice are non-negative. CurrentPrice is always set
// after creation: it defaults to BuyPrice when the caller omits it.
// Symbol is stored upper-cased; duplicate symbols across wallets are
// legal distinct holdings.
type Asset struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Quantity     float64   `json:"quantity"`
	BuyPrice     float64   `json:"buyPrice"`
	CurrentPrice float64   `json:"currentPrice"`
	Wallet       string    `json:"wallet,omitempty"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// NormalizeSymbol returns the canonical stored form of an asset symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Portfolio is the aggregate root for holdings. TotalInvestedValue and
// TotalCurrentValue are denormalized sums over Assets and must be
// recomputed before every persist (valuation.Recompute).
type Portfolio struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	Name               string    `json:"name"`
	Assets             []Asset   `json:"assets"`
	TotalInvestedValue float64   `json:"totalInvestedValue"`
	TotalCurrentValue  float64   `json:"totalCurrentValue"`
	TargetAmount       float64   `json:"targetAmount"`
	Currency           string    `json:"currency"`
	LastUpdated        time.Time `json:"lastUpdated"`
	CreatedAt          time.Time `json:"createdAt"`
}

// FindAsset returns the index of the asset with the given id, or -1.
func (p *Portfolio) FindAsset(assetID string) int {
	for i := range p.Assets {
		if p.Assets[i].ID == assetID {
			return i
		}
	}
	return -1
}

// RemoveAsset deletes the asset with the given id and reports whether
// it was present.
func (p *Portfolio) RemoveAsset(assetID string) bool {
	i := p.FindAsset(assetID)
	if i < 0 {
		return false
	}
	p.Assets = append(p.Assets[:i], p.Assets[i+1:]...)
	return true
}

// Symbols returns the distinct set of asset symbols, first-seen order.
// A symbol held in several wallets appears once.
func (p *Portfolio) Symbols() []string {
	seen := make(map[string]struct{}, len(p.Assets))
	out := make([]string, 0, len(p.Assets))
	for i := range p.Assets {
		sym := p.Assets[i].Symbol
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}
