package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
	"github.com/hwangseoul-netizen/tention-mini/pkg/logger"
	"github.com/hwangseoul-netizen/tention-mini/pkg/middleware"
)

// RouterConfig contains the handlers and middleware settings for NewRouter
type RouterConfig struct {
	Health  *HealthHandler
	Slots   *SlotHandler
	Profile *ProfileHandler
	Live    *LiveHandler

	CORS   middleware.CORSConfig
	Logger *logger.Logger
	// Limiter guards mutating routes; nil disables rate limiting
	Limiter   middleware.Limiter
	RateLimit middleware.RateLimitConfig
}

// NewRouter registers every route on a fresh gin engine
func NewRouter(cfg *RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(&middleware.AccessLogConfig{
			Logger:    cfg.Logger,
			SkipPaths: []string{"/health", "/api/v1/live"},
		}),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.Actor(domain.Me),
	)

	r.GET("/health", cfg.Health.Health)

	mutating := []gin.HandlerFunc{}
	if cfg.Limiter != nil {
		mutating = append(mutating, middleware.RateLimiter(cfg.Limiter, cfg.RateLimit))
	}
	guard := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, mutating...), h)
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/meta", cfg.Slots.Meta)
		v1.GET("/host/theme", cfg.Slots.Theme)

		slots := v1.Group("/slots")
		slots.GET("", cfg.Slots.List)
		slots.POST("", guard(cfg.Slots.Create)...)
		slots.GET("/:id", cfg.Slots.Get)
		slots.GET("/:id/activity", cfg.Slots.Activity)
		slots.POST("/:id/join", guard(cfg.Slots.Join)...)
		slots.POST("/:id/leave", guard(cfg.Slots.Leave)...)
		slots.POST("/:id/arrive", guard(cfg.Slots.Arrive)...)
		slots.POST("/:id/extend", guard(cfg.Slots.Extend)...)
		slots.POST("/:id/share", guard(cfg.Slots.Share)...)

		me := v1.Group("/me")
		me.GET("/slots", cfg.Slots.Joined)
		me.GET("/profile", cfg.Profile.Get)
		me.PUT("/profile", guard(cfg.Profile.Update)...)

		if cfg.Live != nil {
			v1.GET("/live", cfg.Live.Stream)
		}
	}

	return r
}
