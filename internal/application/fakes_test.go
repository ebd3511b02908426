package application

import (
	"context"
	"errors"
	"fmt"

	"cryptofolio/internal/domain/entity"
	"cryptofolio/internal/domain/repository"
)

// memUserRepo is an in-memory UserRepository for service tests.
type memUserRepo struct {
	seq   int
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(u *entity.User) error {
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByResetTokenHash(hash string) (*entity.User, error) {
	if hash == "" {
		return nil, repository.ErrNotFound
	}
	for _, u := range r.users {
		if u.ResetTokenHash == hash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) Update(u *entity.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

// memPortfolioRepo is an in-memory PortfolioRepository. updates counts
// committed writes so tests can assert nothing was persisted.
type memPortfolioRepo struct {
	seq        int
	portfolios map[string]*entity.Portfolio
	updates    int
}

func newMemPortfolioRepo() *memPortfolioRepo {
	return &memPortfolioRepo{portfolios: map[string]*entity.Portfolio{}}
}

func clonePortfolio(p *entity.Portfolio) *entity.Portfolio {
	cp := *p
	cp.Assets = append([]entity.Asset(nil), p.Assets...)
	return &cp
}

func (r *memPortfolioRepo) Create(p *entity.Portfolio) error {
	r.seq++
	p.ID = fmt.Sprintf("pf-%d", r.seq)
	r.portfolios[p.ID] = clonePortfolio(p)
	return nil
}

func (r *memPortfolioRepo) GetByID(id string) (*entity.Portfolio, error) {
	p, ok := r.portfolios[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePortfolio(p), nil
}

func (r *memPortfolioRepo) ListByUser(userID string) ([]entity.Portfolio, error) {
	var out []entity.Portfolio
	for _, p := range r.portfolios {
		if p.UserID == userID {
			out = append(out, *clonePortfolio(p))
		}
	}
	return out, nil
}

func (r *memPortfolioRepo) Update(p *entity.Portfolio) error {
	if _, ok := r.portfolios[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.portfolios[p.ID] = clonePortfolio(p)
	r.updates++
	return nil
}

func (r *memPortfolioRepo) Delete(id string) error {
	if _, ok := r.portfolios[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.portfolios, id)
	return nil
}

// fakePublisher records published email jobs and can be told to fail.
type fakePublisher struct {
	jobs []any
	fail bool
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.jobs = append(p.jobs, body)
	return nil
}

// fakeQuotes serves a fixed quote table, or fails outright.
type fakeQuotes struct {
	quotes map[string]float64
	err    error
	calls  [][]string
}

func (q *fakeQuotes) Quotes(_ context.Context, symbols []string) (map[string]float64, error) {
	q.calls = append(q.calls, append([]string(nil), symbols...))
	if q.err != nil {
		return nil, q.err
	}
	out := map[string]float64{}
	for _, s := range symbols {
		if v, ok := q.quotes[s]; ok {
			out[s] = v
		}
	}
	return out, nil
}

func isValidation(err error) bool {
	_, ok := AsValidation(err)
	return ok
}
