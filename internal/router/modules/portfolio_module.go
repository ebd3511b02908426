package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"cryptofolio/internal/container"
	"cryptofolio/internal/domain/repository"
	handlers "cryptofolio/internal/interface/http"
	"cryptofolio/internal/interface/middleware"
	"cryptofolio/pkg/helpers"
)

// PortfolioModule wires portfolio and asset routes. Everything here
// requires a session.
type PortfolioModule struct {
	Handler *handlers.PortfolioHandler
	Users   repository.UserRepository
	JWT     *helpers.JWTManager
}

func NewPortfolioModule(h *handlers.PortfolioHandler, users repository.UserRepository, jwt *helpers.JWTManager) *PortfolioModule {
	return &PortfolioModule{Handler: h, Users: users, JWT: jwt}
}

func (m *PortfolioModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Users, m.JWT, container.GetLogger()))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	// Sync hits the external quote provider, so it gets its own
	// tighter per-user window on top of the group limits.
	syncLimiter := middleware.RateLimit(container.GetRedis(), 20, time.Minute, middleware.KeyByUserID(), nil)
	{
		auth.GET("/portfolios", m.Handler.List)
		auth.POST("/portfolios", m.Handler.Create)
		auth.GET("/portfolios/:id", m.Handler.Get)
		auth.PUT("/portfolios/:id", m.Handler.Update)
		auth.DELETE("/portfolios/:id", m.Handler.Delete)

		auth.POST("/portfolios/:id/assets", m.Handler.AddAsset)
		auth.PUT("/portfolios/:id/assets/:assetId", m.Handler.UpdateAsset)
		auth.DELETE("/portfolios/:id/assets/:assetId", m.Handler.DeleteAsset)

		auth.POST("/portfolios/:id/sync-prices", syncLimiter, m.Handler.SyncPrices)
	}
}
