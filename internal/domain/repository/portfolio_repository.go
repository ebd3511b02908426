package repository

import "cryptofolio/internal/domain/entity"

// PortfolioRepository defines the interface for portfolio persistence.
// Implementations must write each portfolio (assets included) as one
// document per call: concurrent writers race at last-writer-wins
// granularity, never at partial-field granularity.
type PortfolioRepository interface {
	Create(p *entity.Portfolio) error
	GetByID(id string) (*entity.Portfolio, error)
	ListByUser(userID string) ([]entity.Portfolio, error)
	Update(p *entity.Portfolio) error
	Delete(id string) error
}
