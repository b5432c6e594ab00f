package server

import (
	"context"
	"net/http"
	"storefront-api/internal/config"
	"storefront-api/internal/handler"
	"storefront-api/internal/metrics"
	appmw "storefront-api/internal/middleware"
	"storefront-api/internal/model"
	"storefront-api/internal/service"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type Services struct {
	Auth     service.AuthService
	Stores   service.StoreService
	Products service.ProductService
	Checkout service.CheckoutService
	History  service.OrderHistoryService
	Receipts service.ReceiptService
}

type Server struct {
	echo           *echo.Echo
	cfg            *config.Config
	metrics        *metrics.Metrics
	authHandler    *handler.AuthHandler
	storeHandler   *handler.StoreHandler
	productHandler *handler.ProductHandler
	orderHandler   *handler.OrderHandler
	receiptHandler *handler.ReceiptHandler
}

func NewServer(cfg *config.Config, services Services, m *metrics.Metrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(appmw.RequestLogger())
	e.Use(appmw.Metrics(m))
	e.Use(middleware.CORS())
	if cfg.HTTP.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: cfg.HTTP.RequestTimeout,
		}))
	}
	if cfg.HTTP.RateLimit > 0 {
		e.Use(rateLimiter(cfg.HTTP))
	}

	s := &Server{
		echo:           e,
		cfg:            cfg,
		metrics:        m,
		authHandler:    handler.NewAuthHandler(services.Auth),
		storeHandler:   handler.NewStoreHandler(services.Stores),
		productHandler: handler.NewProductHandler(services.Products),
		orderHandler:   handler.NewOrderHandler(services.Checkout, services.History),
		receiptHandler: handler.NewReceiptHandler(services.Receipts),
	}

	s.setupRoutes()
	return s
}

func rateLimiter(cfg config.HTTPServer) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     cfg.RateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"message": "unable to identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	})
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	auth := appmw.JWTAuth(s.cfg.Auth)
	business := appmw.RequireRole(model.RoleBusiness)

	// -------- auth --------
	api.POST("/auth/register", s.authHandler.Register)
	api.POST("/auth/login", s.authHandler.Login)

	// -------- stores --------
	stores := api.Group("/stores", auth)
	stores.POST("", s.storeHandler.CreateStore)
	stores.GET("/mine", s.storeHandler.ListMyStores)

	// -------- products --------
	products := api.Group("/products")
	products.GET("", s.productHandler.List)
	products.GET("/all", s.productHandler.ListAll)
	products.GET("/:id", s.productHandler.Get)
	products.POST("", s.productHandler.Create, auth, business)
	products.PUT("/:id", s.productHandler.Update, auth, business)
	products.DELETE("/:id", s.productHandler.Delete, auth, business)

	// -------- orders --------
	orders := api.Group("/orders", auth)
	orders.POST("/checkout", s.orderHandler.Checkout)
	orders.GET("/history", s.orderHandler.History)

	// -------- receipts --------
	api.GET("/receipts", s.receiptHandler.List, auth)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
