package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"cryptofolio/internal/domain/entity"
	"cryptofolio/internal/domain/repository"
	"cryptofolio/internal/domain/valuation"
	"cryptofolio/internal/pricing"
)

// PortfolioService orchestrates portfolio CRUD, asset mutations, and
// price sync. Every operation takes the caller's resolved identity and
// enforces ownership itself; nothing here trusts ambient state.
//
// Mutations are read-modify-recompute-write against one portfolio
// document. Concurrent writers to the same portfolio race at
// last-writer-wins granularity; there is no optimistic concurrency
// token in this design.
type PortfolioService struct {
	Repo   repository.PortfolioRepository
	Quotes pricing.QuoteProvider
	Logger *logrus.Logger

	now   func() time.Time
	newID func() string
}

func NewPortfolioService(repo repository.PortfolioRepository, quotes pricing.QuoteProvider, logger *logrus.Logger) *PortfolioService {
	return &PortfolioService{
		Repo:   repo,
		Quotes: quotes,
		Logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// loadOwned fetches a portfolio and enforces that callerID owns it.
// NotFound and Forbidden stay distinct all the way to the boundary.
func (s *PortfolioService) loadOwned(callerID, portfolioID string) (*entity.Portfolio, error) {
	p, err := s.Repo.GetByID(portfolioID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.UserID != callerID {
		return nil, ErrForbidden
	}
	return p, nil
}

// List returns all portfolios owned by the caller, a best-effort
// snapshot that never blocks writers.
func (s *PortfolioService) List(callerID string) ([]entity.Portfolio, error) {
	return s.Repo.ListByUser(callerID)
}

// Get returns one owned portfolio.
func (s *PortfolioService) Get(callerID, portfolioID string) (*entity.Portfolio, error) {
	return s.loadOwned(callerID, portfolioID)
}

type CreatePortfolioInput struct {
	Name         string
	TargetAmount float64
	Currency     string
}

func (s *PortfolioService) Create(callerID string, in CreatePortfolioInput) (*entity.Portfolio, error) {
	if in.TargetAmount < 0 {
		return nil, Validation("targetAmount", "cannot be negative")
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	p := &entity.Portfolio{
		UserID:       callerID,
		Name:         in.Name,
		Assets:       []entity.Asset{},
		TargetAmount: in.TargetAmount,
		Currency:     currency,
	}
	valuation.Recompute(p, s.now())
	if err := s.Repo.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

type UpdatePortfolioInput struct {
	Name         *string
	TargetAmount *float64
	Currency     *string
}

func (s *PortfolioService) Update(callerID, portfolioID string, in UpdatePortfolioInput) (*entity.Portfolio, error) {
	p, err := s.loadOwned(callerID, portfolioID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, Validation("name", "cannot be empty")
		}
		p.Name = *in.Name
	}
	if in.TargetAmount != nil {
		if *in.TargetAmount < 0 {
			return nil, Validation("targetAmount", "cannot be negative")
		}
		p.TargetAmount = *in.TargetAmount
	}
	if in.Currency != nil && *in.Currency != "" {
		p.Currency = *in.Currency
	}
	valuation.Recompute(p, s.now())
	if err := s.Repo.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a portfolio and, with it, every embedded asset.
func (s *PortfolioService) Delete(callerID, portfolioID string) error {
	if _, err := s.loadOwned(callerID, portfolioID); err != nil {
		return err
	}
	if err := s.Repo.Delete(portfolioID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

type AddAssetInput struct {
	Symbol       string
	Name         string
	Quantity     float64
	BuyPrice     float64
	CurrentPrice *float64
	Wallet       string
}

// AddAsset appends a holding. CurrentPrice defaults to BuyPrice when
// omitted, so a freshly added asset always carries a price.
func (s *PortfolioService) AddAsset(callerID, portfolioID string, in AddAssetInput) (*entity.Portfolio, error) {
	p, err := s.loadOwned(callerID, portfolioID)
	if err != nil {
		return nil, err
	}

	symbol := entity.NormalizeSymbol(in.Symbol)
	if symbol == "" {
		return nil, Validation("symbol", "is required")
	}
	if in.Quantity < 0 {
		return nil, Validation("quantity", "cannot be negative")
	}
	if in.BuyPrice < 0 {
		return nil, Validation("buyPrice", "cannot be negative")
	}
	current := in.BuyPrice
	if in.CurrentPrice != nil {
		if *in.CurrentPrice < 0 {
			return nil, Validation("currentPrice", "cannot be negative")
		}
		current = *in.CurrentPrice
	}

	now := s.now()
	p.Assets = append(p.Assets, entity.Asset{
		ID:           s.newID(),
		Symbol:       symbol,
		Name:         in.Name,
		Quantity:     in.Quantity,
		BuyPrice:     in.BuyPrice,
		CurrentPrice: current,
		Wallet:       in.Wallet,
		LastUpdated:  now,
	})

	valuation.Recompute(p, now)
	if err := s.Repo.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateAssetInput is the whitelist of updatable asset fields. Absent
// pointers leave the field untouched; the handler rejects unknown keys
// before this is ever built.
type UpdateAssetInput struct {
	Symbol       *string
	Name         *string
	Quantity     *float64
	BuyPrice     *float64
	CurrentPrice *float64
	Wallet       *string
}

func (s *PortfolioService) UpdateAsset(callerID, portfolioID, assetID string, in UpdateAssetInput) (*entity.Portfolio, error) {
	p, err := s.loadOwned(callerID, portfolioID)
	if err != nil {
		return nil, err
	}
	i := p.FindAsset(assetID)
	if i < 0 {
		return nil, ErrNotFound
	}
	a := &p.Assets[i]

	if in.Symbol != nil {
		sym := entity.NormalizeSymbol(*in.Symbol)
		if sym == "" {
			return nil, Validation("symbol", "cannot be empty")
		}
		a.Symbol = sym
	}
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, Validation("quantity", "cannot be negative")
		}
		a.Quantity = *in.Quantity
	}
	if in.BuyPrice != nil {
		if *in.BuyPrice < 0 {
			return nil, Validation("buyPrice", "cannot be negative")
		}
		a.BuyPrice = *in.BuyPrice
	}
	if in.CurrentPrice != nil {
		if *in.CurrentPrice < 0 {
			return nil, Validation("currentPrice", "cannot be negative")
		}
		a.CurrentPrice = *in.CurrentPrice
	}
	if in.Wallet != nil {
		a.Wallet = *in.Wallet
	}

	now := s.now()
	a.LastUpdated = now
	valuation.Recompute(p, now)
	if err := s.Repo.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PortfolioService) DeleteAsset(callerID, portfolioID, assetID string) (*entity.Portfolio, error) {
	p, err := s.loadOwned(callerID, portfolioID)
	if err != nil {
		return nil, err
	}
	if !p.RemoveAsset(assetID) {
		return nil, ErrNotFound
	}
	valuation.Recompute(p, s.now())
	if err := s.Repo.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

// SyncPrices reconciles asset prices against the quote provider. The
// distinct symbol set goes out in one batched call; assets whose
// symbol comes back quoted get the new price, the rest are left
// untouched, and partial coverage is still success. If the provider
// call itself fails, nothing is written.
func (s *PortfolioService) SyncPrices(ctx context.Context, callerID, portfolioID string) (*entity.Portfolio, error) {
	p, err := s.loadOwned(callerID, portfolioID)
	if err != nil {
		return nil, err
	}

	symbols := p.Symbols()
	quotes, err := s.Quotes.Quotes(ctx, symbols)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("portfolio_id", portfolioID).Warn("quote provider call failed")
		}
		return nil, ErrUpstreamUnavailable
	}

	now := s.now()
	updated := 0
	for i := range p.Assets {
		a := &p.Assets[i]
		if price, ok := quotes[a.Symbol]; ok {
			a.CurrentPrice = price
			a.LastUpdated = now
			updated++
		}
	}

	valuation.Recompute(p, now)
	if err := s.Repo.Update(p); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"portfolio_id": portfolioID,
			"symbols":      len(symbols),
			"updated":      updated,
		}).Info("price sync applied")
	}
	return p, nil
}
