package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "cryptofolio/internal/application"
	"cryptofolio/internal/domain/entity"
	"cryptofolio/internal/domain/repository"
)

type stubPortfolioRepo struct {
	byID map[string]*entity.Portfolio
}

func (r *stubPortfolioRepo) Create(p *entity.Portfolio) error {
	p.ID = "pf-1"
	r.byID[p.ID] = p
	return nil
}

func (r *stubPortfolioRepo) GetByID(id string) (*entity.Portfolio, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	cp.Assets = append([]entity.Asset(nil), p.Assets...)
	return &cp, nil
}

func (r *stubPortfolioRepo) ListByUser(userID string) ([]entity.Portfolio, error) {
	var out []entity.Portfolio
	for _, p := range r.byID {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPortfolioRepo) Update(p *entity.Portfolio) error {
	if _, ok := r.byID[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *stubPortfolioRepo) Delete(id string) error {
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubQuotes struct{ err error }

func (q *stubQuotes) Quotes(_ context.Context, symbols []string) (map[string]float64, error) {
	if q.err != nil {
		return nil, q.err
	}
	out := map[string]float64{}
	for _, s := range symbols {
		out[s] = 100
	}
	return out, nil
}

// newTestRouter mounts portfolio routes behind a stub identity
// middleware so boundary status mapping can be exercised directly.
func newTestRouter(repo *stubPortfolioRepo, quotes *stubQuotes, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := app.NewPortfolioService(repo, quotes, logger)
	h := NewPortfolioHandler(svc, logger)

	r := gin.New()
	auth := func(c *gin.Context) { c.Set("userID", userID) }
	r.POST("/api/portfolios", auth, h.Create)
	r.GET("/api/portfolios/:id", auth, h.Get)
	r.PUT("/api/portfolios/:id/assets/:assetId", auth, h.UpdateAsset)
	r.DELETE("/api/portfolios/:id", auth, h.Delete)
	r.POST("/api/portfolios/:id/sync-prices", auth, h.SyncPrices)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedPortfolio(repo *stubPortfolioRepo, userID string) *entity.Portfolio {
	p := &entity.Portfolio{
		ID:     "pf-1",
		UserID: userID,
		Name:   "Main",
		Assets: []entity.Asset{
			{ID: "asset-1", Symbol: "BTC", Quantity: 1, BuyPrice: 30000, CurrentPrice: 30000},
		},
	}
	repo.byID[p.ID] = p
	return p
}

func TestCreatePortfolioEndpoint(t *testing.T) {
	repo := &stubPortfolioRepo{byID: map[string]*entity.Portfolio{}}
	r := newTestRouter(repo, &stubQuotes{}, "user-1")

	w := do(r, http.MethodPost, "/api/portfolios", `{"name":"Main","targetAmount":50000}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var env struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	if !env.Success || env.Data["name"] != "Main" {
		t.Errorf("envelope = %+v", env)
	}

	w = do(r, http.MethodPost, "/api/portfolios", `{"targetAmount":1}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing name: status = %d, want 400", w.Code)
	}
}

func TestOwnershipStatusMapping(t *testing.T) {
	repo := &stubPortfolioRepo{byID: map[string]*entity.Portfolio{}}
	seedPortfolio(repo, "owner")

	// Stranger sees 403 on an existing portfolio, 404 on a missing one.
	r := newTestRouter(repo, &stubQuotes{}, "stranger")
	if w := do(r, http.MethodGet, "/api/portfolios/pf-1", ""); w.Code != http.StatusForbidden {
		t.Errorf("foreign portfolio: status = %d, want 403", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/portfolios/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing portfolio: status = %d, want 404", w.Code)
	}
	if w := do(r, http.MethodDelete, "/api/portfolios/pf-1", ""); w.Code != http.StatusForbidden {
		t.Errorf("foreign delete: status = %d, want 403", w.Code)
	}
}

func TestUpdateAssetRejectsUnknownFields(t *testing.T) {
	repo := &stubPortfolioRepo{byID: map[string]*entity.Portfolio{}}
	seedPortfolio(repo, "user-1")
	r := newTestRouter(repo, &stubQuotes{}, "user-1")

	w := do(r, http.MethodPut, "/api/portfolios/pf-1/assets/asset-1", `{"quantity":2,"bogus":true}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: status = %d, want 400: %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPut, "/api/portfolios/pf-1/assets/asset-1", `{"quantity":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("valid update: status = %d: %s", w.Code, w.Body.String())
	}
}

func TestSyncPricesUpstreamStatus(t *testing.T) {
	repo := &stubPortfolioRepo{byID: map[string]*entity.Portfolio{}}
	seedPortfolio(repo, "user-1")
	r := newTestRouter(repo, &stubQuotes{err: errors.New("down")}, "user-1")

	if w := do(r, http.MethodPost, "/api/portfolios/pf-1/sync-prices", ""); w.Code != http.StatusBadGateway {
		t.Errorf("upstream failure: status = %d, want 502", w.Code)
	}

	ok := newTestRouter(repo, &stubQuotes{}, "user-1")
	if w := do(ok, http.MethodPost, "/api/portfolios/pf-1/sync-prices", ""); w.Code != http.StatusOK {
		t.Errorf("sync: status = %d, want 200", w.Code)
	}
}
