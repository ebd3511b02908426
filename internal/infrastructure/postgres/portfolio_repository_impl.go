package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cryptofolio/internal/domain/entity"
	"cryptofolio/internal/domain/repository"
)

// PortfolioRepository persists each portfolio as one row with the
// asset list in a JSONB column. Every Update rewrites the whole
// document, which gives the single-document atomicity the service
// layer relies on (last-writer-wins between concurrent mutations).
type PortfolioRepository struct {
	pool *pgxpool.Pool
}

func NewPortfolioRepository(pool *pgxpool.Pool) *PortfolioRepository {
	return &PortfolioRepository{pool: pool}
}

func (r *PortfolioRepository) Create(p *entity.Portfolio) error {
	ctx := context.Background()
	assets, err := marshalAssets(p.Assets)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO portfolios
			(user_id, name, assets, total_invested_value, total_current_value,
			 target_amount, currency, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, p.UserID, p.Name, assets, p.TotalInvestedValue, p.TotalCurrentValue,
		p.TargetAmount, p.Currency, p.LastUpdated)

	return row.Scan(&p.ID, &p.CreatedAt)
}

func (r *PortfolioRepository) GetByID(id string) (*entity.Portfolio, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, selectPortfolio+` WHERE id = $1`, id)
	p, err := scanPortfolio(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PortfolioRepository) ListByUser(userID string) ([]entity.Portfolio, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, selectPortfolio+` WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Portfolio, 0)
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PortfolioRepository) Update(p *entity.Portfolio) error {
	ctx := context.Background()
	assets, err := marshalAssets(p.Assets)
	if err != nil {
		return err
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE portfolios
		SET name = $1, assets = $2, total_invested_value = $3,
		    total_current_value = $4, target_amount = $5, currency = $6,
		    last_updated = $7
		WHERE id = $8
	`, p.Name, assets, p.TotalInvestedValue, p.TotalCurrentValue,
		p.TargetAmount, p.Currency, p.LastUpdated, p.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the portfolio row; embedded assets go with it.
func (r *PortfolioRepository) Delete(id string) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `DELETE FROM portfolios WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

const selectPortfolio = `
	SELECT id, user_id, name, assets, total_invested_value, total_current_value,
	       target_amount, currency, last_updated, created_at
	FROM portfolios`

func scanPortfolio(row pgx.Row) (*entity.Portfolio, error) {
	p := &entity.Portfolio{}
	var assets []byte
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &assets,
		&p.TotalInvestedValue, &p.TotalCurrentValue, &p.TargetAmount,
		&p.Currency, &p.LastUpdated, &p.CreatedAt); err != nil {
		return nil, err
	}
	if len(assets) > 0 {
		if err := json.Unmarshal(assets, &p.Assets); err != nil {
			return nil, err
		}
	}
	if p.Assets == nil {
		p.Assets = []entity.Asset{}
	}
	return p, nil
}

func marshalAssets(assets []entity.Asset) ([]byte, error) {
	if assets == nil {
		assets = []entity.Asset{}
	}
	return json.Marshal(assets)
}

var _ repository.PortfolioRepository = (*PortfolioRepository)(nil)
