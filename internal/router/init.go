package router

import (
	app "cryptofolio/internal/application"
	"cryptofolio/internal/container"
	"cryptofolio/internal/domain/repository"
	pginfra "cryptofolio/internal/infrastructure/postgres"
	handlers "cryptofolio/internal/interface/http"
	"cryptofolio/internal/router/modules"
)

type moduleDeps struct {
	Users      repository.UserRepository
	Portfolios repository.PortfolioRepository

	AuthSvc      *app.AuthService
	PortfolioSvc *app.PortfolioService

	AuthHandler      *handlers.AuthHandler
	PortfolioHandler *handlers.PortfolioHandler
}

func buildDeps() moduleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	users := pginfra.NewUserRepository(container.GetPGPool())
	portfolios := pginfra.NewPortfolioRepository(container.GetPGPool())

	// A nil *RabbitPublisher must stay a nil interface for the
	// service's mail-disabled checks to work.
	var pub app.EmailPublisher
	if rp := container.GetRabbitPub(); rp != nil {
		pub = rp
	}

	authSvc := app.NewAuthService(
		users,
		container.GetJWT(),
		pub,
		container.GetGCS(),
		cfg.GCSBucket,
		logger,
		cfg.ResetTokenTTL,
		cfg.ResetPasswordURL,
		cfg.MailSendEnabled,
	)
	portfolioSvc := app.NewPortfolioService(portfolios, container.GetQuotes(), logger)

	return moduleDeps{
		Users:            users,
		Portfolios:       portfolios,
		AuthSvc:          authSvc,
		PortfolioSvc:     portfolioSvc,
		AuthHandler:      handlers.NewAuthHandler(authSvc, logger),
		PortfolioHandler: handlers.NewPortfolioHandler(portfolioSvc, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildDeps()
	jwt := container.GetJWT()
	r.Add(modules.NewAuthModule(deps.AuthHandler, deps.Users, jwt))
	r.Add(modules.NewPortfolioModule(deps.PortfolioHandler, deps.Users, jwt))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
