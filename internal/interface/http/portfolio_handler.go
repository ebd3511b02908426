package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "cryptofolio/internal/application"
	"cryptofolio/internal/domain/entity"
	"cryptofolio/internal/domain/valuation"
	"cryptofolio/pkg/response"
	"cryptofolio/pkg/validation"
)

type PortfolioHandler struct {
	Svc    *app.PortfolioService
	Logger *logrus.Logger
}

func NewPortfolioHandler(svc *app.PortfolioService, logger *logrus.Logger) *PortfolioHandler {
	return &PortfolioHandler{Svc: svc, Logger: logger}
}

type createPortfolioRequest struct {
	Name         string  `json:"name" binding:"required"`
	TargetAmount float64 `json:"targetAmount" binding:"omitempty,gte=0"`
	Currency     string  `json:"currency"`
}

type updatePortfolioRequest struct {
	Name         *string  `json:"name"`
	TargetAmount *float64 `json:"targetAmount"`
	Currency     *string  `json:"currency"`
}

type addAssetRequest struct {
	Symbol       string   `json:"symbol" binding:"required"`
	Name         string   `json:"name"`
	Quantity     float64  `json:"quantity" binding:"gte=0"`
	BuyPrice     float64  `json:"buyPrice" binding:"gte=0"`
	CurrentPrice *float64 `json:"currentPrice"`
	Wallet       string   `json:"wallet"`
}

// updateAssetRequest is the full whitelist of updatable asset fields.
// The decoder rejects unknown keys so a typo or an attempt to write
// id/lastUpdated fails loudly instead of being dropped.
type updateAssetRequest struct {
	Symbol       *string  `json:"symbol"`
	Name         *string  `json:"name"`
	Quantity     *float64 `json:"quantity"`
	BuyPrice     *float64 `json:"buyPrice"`
	CurrentPrice *float64 `json:"currentPrice"`
	Wallet       *string  `json:"wallet"`
}

type portfolioView struct {
	entity.Portfolio
	Summary valuation.Summary `json:"summary"`
}

func (h *PortfolioHandler) List(c *gin.Context) {
	list, err := h.Svc.List(c.GetString("userID"))
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	views := make([]portfolioView, 0, len(list))
	for i := range list {
		views = append(views, portfolioView{
			Portfolio: list[i],
			Summary:   valuation.Summarize(&list[i]),
		})
	}
	response.Success(c, http.StatusOK, views, "portfolios", map[string]any{"count": len(views)})
}

func (h *PortfolioHandler) Create(c *gin.Context) {
	var req createPortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.Create(c.GetString("userID"), app.CreatePortfolioInput{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		Currency:     req.Currency,
	})
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "portfolio created", nil)
}

// Get returns one portfolio together with its computed valuation.
func (h *PortfolioHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.GetString("userID"), c.Param("id"))
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"portfolio": p,
		"summary":   valuation.Summarize(p),
	}, "portfolio", nil)
}

func (h *PortfolioHandler) Update(c *gin.Context) {
	var req updatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.Update(c.GetString("userID"), c.Param("id"), app.UpdatePortfolioInput{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		Currency:     req.Currency,
	})
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "portfolio updated", nil)
}

func (h *PortfolioHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.GetString("userID"), c.Param("id")); err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "portfolio deleted", nil)
}

func (h *PortfolioHandler) AddAsset(c *gin.Context) {
	var req addAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.AddAsset(c.GetString("userID"), c.Param("id"), app.AddAssetInput{
		Symbol:       req.Symbol,
		Name:         req.Name,
		Quantity:     req.Quantity,
		BuyPrice:     req.BuyPrice,
		CurrentPrice: req.CurrentPrice,
		Wallet:       req.Wallet,
	})
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "asset added", nil)
}

func (h *PortfolioHandler) UpdateAsset(c *gin.Context) {
	var req updateAssetRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"payload": err.Error()})
		return
	}
	p, err := h.Svc.UpdateAsset(c.GetString("userID"), c.Param("id"), c.Param("assetId"), app.UpdateAssetInput{
		Symbol:       req.Symbol,
		Name:         req.Name,
		Quantity:     req.Quantity,
		BuyPrice:     req.BuyPrice,
		CurrentPrice: req.CurrentPrice,
		Wallet:       req.Wallet,
	})
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "asset updated", nil)
}

func (h *PortfolioHandler) DeleteAsset(c *gin.Context) {
	p, err := h.Svc.DeleteAsset(c.GetString("userID"), c.Param("id"), c.Param("assetId"))
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "asset removed", nil)
}

func (h *PortfolioHandler) SyncPrices(c *gin.Context) {
	p, err := h.Svc.SyncPrices(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "prices synced", nil)
}
