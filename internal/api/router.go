package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"room-booking-backend/config"
	"room-booking-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()
	if cfg.RequestIPHeader != "" {
		r.TrustedPlatform = cfg.RequestIPHeader
	}

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	r.Use(cors.New(corsConfig), mw.Metrics())

	// Rate limit per client IP, burst of half a second's worth.
	burst := int(cfg.RateLimitPerSec / 2)
	if burst < 1 {
		burst = 1
	}
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), burst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	responses := mw.NewResponseCache(ttl)
	caching := responses.Read()
	flush := responses.Invalidate()

	r.GET("/healthz", handler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/rooms", caching, handler.GetRooms)
		api.GET("/categories", caching, handler.GetCategories)
		api.GET("/occupancy", caching, handler.GetOccupancy)
		api.GET("/occupancy/hourly", caching, handler.GetHourlyOccupancy)
		api.GET("/availability", caching, handler.GetAvailability)

		api.GET("/bookings", caching, handler.ListBookings)
		api.POST("/bookings", flush, handler.CreateBooking)
		api.DELETE("/bookings/:id", flush, handler.DeleteBooking)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
