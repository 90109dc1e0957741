package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MarcoPoloResearchLab/ecofinds/internal/auth"
	"github.com/MarcoPoloResearchLab/ecofinds/internal/catalog"
	"github.com/MarcoPoloResearchLab/ecofinds/internal/metrics"
	"github.com/MarcoPoloResearchLab/ecofinds/internal/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errMissingVerifier     = errors.New("identity verifier dependency required")
	errMissingUserService  = errors.New("user service dependency required")
	errMissingCatalog      = errors.New("catalog service dependency required")
	errMissingAllowedHosts = errors.New("at least one allowed cors origin required")
)

type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (auth.Identity, error)
}

type UserService interface {
	Resolve(ctx context.Context, identity auth.Identity) (users.UserID, error)
	Profile(ctx context.Context, id users.UserID) (users.Profile, error)
}

type CatalogService interface {
	CreateProduct(ctx context.Context, owner users.UserID, input catalog.CreateProductInput) (catalog.ProductID, error)
	ListProducts(ctx context.Context, filter catalog.ListFilter) ([]catalog.Listing, error)
}

type Dependencies struct {
	Verifier       IdentityVerifier
	Users          UserService
	Catalog        CatalogService
	Metrics        *metrics.Collector
	MetricsHandler http.Handler
	HealthCheck    func(ctx context.Context) error
	AllowedOrigins []string
	Logger         *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Verifier == nil {
		return nil, errMissingVerifier
	}
	if deps.Users == nil {
		return nil, errMissingUserService
	}
	if deps.Catalog == nil {
		return nil, errMissingCatalog
	}
	allowedOrigins := deps.AllowedOrigins
	if allowedOrigins == nil {
		allowedOrigins = []string{"*"}
	}
	if len(allowedOrigins) == 0 {
		return nil, errMissingAllowedHosts
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestContext(logger))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}
	router.Use(corsMiddleware(allowedOrigins))

	handler := &httpHandler{
		verifier:    deps.Verifier,
		users:       deps.Users,
		catalog:     deps.Catalog,
		healthCheck: deps.HealthCheck,
		logger:      logger,
	}

	router.GET("/products", handler.handleListProducts)
	router.POST("/products", handler.requireUser(handler.handleCreateProduct))
	router.GET("/profile", handler.requireUser(handler.handleProfile))
	router.GET("/healthz", handler.handleHealth)
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	return router, nil
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
		MaxAge:       12 * time.Hour,
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}

type httpHandler struct {
	verifier    IdentityVerifier
	users       UserService
	catalog     CatalogService
	healthCheck func(ctx context.Context) error
	logger      *zap.Logger
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	if h.healthCheck != nil {
		if err := h.healthCheck(c.Request.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
