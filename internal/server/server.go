// Package server wires repositories, services and handlers into an echo instance.
package server

import (
	"net/http"

	"github.com/abdusco/shortlink/internal/auth"
	"github.com/abdusco/shortlink/internal/config"
	"github.com/abdusco/shortlink/internal/db"
	"github.com/abdusco/shortlink/internal/handler"
	"github.com/abdusco/shortlink/internal/logger"
	"github.com/abdusco/shortlink/internal/repo"
	"github.com/abdusco/shortlink/internal/shortlink"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

const bodyLimit = "1M"

func New(cfg config.Config, database *db.DB) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(middleware.RequestID())
	e.Use(logger.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(bodyLimit))

	usersRepo := repo.NewUsersRepo(database.Database)
	linksRepo := repo.NewLinksRepo(database.Database)

	authenticator := auth.NewAuthenticator(
		usersRepo,
		auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		cfg.Auth.BcryptCost,
	)

	allocator := shortlink.NewAllocator(linksRepo, cfg.Links.CodeLength)
	service := shortlink.NewService(linksRepo, usersRepo, allocator)
	resolver := shortlink.NewResolver(linksRepo, cfg.Redirect.Protocol(), cfg.Redirect.Domain())

	log.Info().
		Str("protocol", cfg.Redirect.Protocol()).
		Str("domain", cfg.Redirect.Domain()).
		Msg("redirect fallback configured")

	authHandler := handler.NewAuthHandler(authenticator)
	linkHandler := handler.NewLinkHandler(service)
	dashboardHandler := handler.NewDashboardHandler(service)
	redirectHandler := handler.NewRedirectHandler(resolver)

	e.GET("/health", func(c echo.Context) error {
		if err := database.PingContext(c.Request().Context()); err != nil {
			log.Error().Err(err).Msg("health check failed")
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/redirects/:code", redirectHandler.Redirect)

	links := api.Group("/links", auth.NewAuthMiddleware(authenticator.Tokens()))
	links.POST("", linkHandler.CreateLink)
	links.GET("", linkHandler.ListLinks)
	links.GET("/stats", dashboardHandler.Stats)
	links.GET("/:id", linkHandler.GetLink)
	links.PUT("/:id", linkHandler.UpdateLink)
	links.DELETE("/:id", linkHandler.DeleteLink)

	// Parameterized route (must be last)
	e.GET("/:code", redirectHandler.Visit)

	return e
}
