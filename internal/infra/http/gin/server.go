package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"hotelfront/internal/infra/config"
	"hotelfront/internal/infra/obs"
)

const serviceName = "hotelfront"

type HotelsHTTP interface {
	List(c *gin.Context)
	Search(c *gin.Context)
	Get(c *gin.Context)
	Locations(c *gin.Context)
	Create(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	Checkout(c *gin.Context)
	Get(c *gin.Context)
	ListForUser(c *gin.Context)
}

type PaymentsHTTP interface {
	CreateCheckoutSession(c *gin.Context)
	CheckoutStatus(c *gin.Context)
}

type ReviewsHTTP interface {
	Submit(c *gin.Context)
}

type SessionsHTTP interface {
	Open(c *gin.Context)
	Get(c *gin.Context)
	Dispatch(c *gin.Context)
	Close(c *gin.Context)
}

type Handlers struct {
	Hotels         HotelsHTTP
	Booking        BookingHTTP
	Payments       PaymentsHTTP
	Reviews        ReviewsHTTP
	Sessions       SessionsHTTP
	AuthMiddleware gin.HandlerFunc
	Metrics        *obs.Metrics
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.Tracing(serviceName))
	router.Use(obsMW.LoggerMiddleware())
	if h.Metrics != nil {
		router.Use(h.Metrics.HTTP())
	}
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if h.Metrics != nil {
		router.GET("/metrics", h.Metrics.Handler())
	}

	api := router.Group("/api/v1")
	api.GET("/navigation", Navigation)

	private := api.Group("")
	private.Use(RequireAuth)
	if h.Hotels != nil {
		private.GET("/hotels", h.Hotels.List)
		private.GET("/hotels/search", h.Hotels.Search)
		private.GET("/hotels/locations", h.Hotels.Locations)
		private.GET("/locations", h.Hotels.Locations)
		private.GET("/hotels/:id", h.Hotels.Get)
		private.POST("/hotels", h.Hotels.Create)
	}
	if h.Booking != nil {
		private.POST("/bookings", h.Booking.Create)
		private.POST("/bookings/checkout", h.Booking.Checkout)
		private.GET("/bookings/user/:userId", h.Booking.ListForUser)
		private.GET("/bookings/:id", h.Booking.Get)
	}
	if h.Payments != nil {
		private.POST("/payments/create-checkout-session", h.Payments.CreateCheckoutSession)
		private.GET("/payments/checkout-session", h.Payments.CheckoutStatus)
	}
	if h.Reviews != nil {
		private.POST("/reviews", h.Reviews.Submit)
	}
	if h.Sessions != nil {
		browse := private.Group("/browse/sessions")
		browse.POST("", h.Sessions.Open)
		browse.GET("/:id", h.Sessions.Get)
		browse.POST("/:id/events", h.Sessions.Dispatch)
		browse.DELETE("/:id", h.Sessions.Close)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", obs.RequestIDHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
