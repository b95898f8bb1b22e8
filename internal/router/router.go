package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"                     // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware" // echo's stock middleware (CORS, security headers, body limit)
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iliyamo/movie-show-catalog/internal/config"
	"github.com/iliyamo/movie-show-catalog/internal/handler"    // import the handlers that implement the catalog API
	"github.com/iliyamo/movie-show-catalog/internal/middleware" // import middleware for rate limiting, caching, logging and metrics
	"github.com/iliyamo/movie-show-catalog/internal/service"
)

// BasePath is the mount point of the catalog resource.
const BasePath = "/api/movies-shows"

// Deps collects everything the HTTP layer needs.  Limiter and Cache may be
// nil, which disables rate limiting and response caching respectively.
type Deps struct {
	Config    config.Config
	RateLimit config.RateLimitConfig
	Limiter   middleware.Limiter
	Cache     *middleware.ResponseCache
	Catalog   *service.CatalogService
	Logger    zerolog.Logger
}

// New builds the Echo instance with global middleware and all routes.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.NewErrorHandler(d.Config.IsDevelopment())

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(middleware.Metrics())
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     d.Config.AllowedOrigins,
		AllowMethods:     []string{echo.GET, echo.HEAD, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit("10M"))

	RegisterRoutes(e, d.Catalog)
	RegisterCatalog(e, handler.NewEntryHandler(d.Catalog),
		middleware.NewRateLimit(d.RateLimit, d.Limiter),
		d.Cache.Middleware(),
	)
	return e
}

// RegisterRoutes registers the operational endpoints: health checks at the
// root and under the catalog base path, and Prometheus metrics.  None of
// them are rate limited.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	health := handler.Health(db)
	e.GET("/health", health)
	e.GET(BasePath+"/health", health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterCatalog registers the CRUD endpoints under BasePath behind the
// given middleware (rate limit, then response cache).
func RegisterCatalog(e *echo.Echo, h *handler.EntryHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group(BasePath, mw...)
	g.GET("", h.List)
	g.GET("/", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.POST("/", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
