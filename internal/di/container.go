package di

import (
	"context"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hwangseoul-netizen/tention-mini/internal/activity"
	"github.com/hwangseoul-netizen/tention-mini/internal/catalog"
	"github.com/hwangseoul-netizen/tention-mini/internal/domain"
	"github.com/hwangseoul-netizen/tention-mini/internal/dto"
	"github.com/hwangseoul-netizen/tention-mini/internal/events"
	"github.com/hwangseoul-netizen/tention-mini/internal/handler"
	"github.com/hwangseoul-netizen/tention-mini/internal/host"
	"github.com/hwangseoul-netizen/tention-mini/internal/live"
	"github.com/hwangseoul-netizen/tention-mini/internal/query"
	"github.com/hwangseoul-netizen/tention-mini/internal/service"
	"github.com/hwangseoul-netizen/tention-mini/internal/store"
	"github.com/hwangseoul-netizen/tention-mini/pkg/config"
	"github.com/hwangseoul-netizen/tention-mini/pkg/logger"
	"github.com/hwangseoul-netizen/tention-mini/pkg/middleware"
)

// Container holds all dependencies for the slot API
type Container struct {
	Config *config.Config

	// Infrastructure
	Store      *store.Store
	Ledger     *activity.MemoryLedger
	Publisher  events.Publisher
	Dispatcher *events.Dispatcher
	Hub        *live.Hub
	Ticker     *store.Ticker
	Bridge     host.Bridge
	Limiter    middleware.Limiter

	// Services
	SlotService    service.SlotService
	ProfileService service.ProfileService

	// Handlers
	HealthHandler  *handler.HealthHandler
	SlotHandler    *handler.SlotHandler
	ProfileHandler *handler.ProfileHandler
	LiveHandler    *handler.LiveHandler

	Router *gin.Engine

	redisClient *redis.Client
	hubCancel   context.CancelFunc
	closeOnce   sync.Once
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config *config.Config
	Logger *logger.Logger
	// Seed replaces the starter catalog when non-nil
	Seed []domain.Slot
	// Clock drives the countdown; nil means wall-clock time
	Clock clockwork.Clock
	// Publisher replaces the configured events backend when non-nil
	Publisher events.Publisher
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *ContainerConfig) (*Container, error) {
	appCfg := cfg.Config
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	defaults, err := Defaults(&appCfg.Query)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: appCfg}

	seed := cfg.Seed
	if seed == nil {
		seed = catalog.Generate()
	}
	c.Store = store.New(seed)
	c.Ledger = activity.NewMemoryLedger(activity.DefaultPerSlotLimit)

	c.Bridge, err = host.New(host.Options{
		Platform:  host.Platform(appCfg.Host.Platform),
		TextColor: appCfg.Host.TextColor,
		BaseURL:   appCfg.Host.ShareBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create host bridge: %w", err)
	}

	if appCfg.Events.Backend == "redis" || (appCfg.RateLimit.Enabled && appCfg.RateLimit.Backend == "redis") {
		c.redisClient = redis.NewClient(redisOptions(&appCfg.Redis))
	}

	// Events: configured backend plus the live hub
	liveCfg := live.DefaultConfig()
	// resolved through the slot service so the feed and the list share defaults
	liveCfg.Resolve = func(f query.Filter) (query.Filter, error) {
		return c.SlotService.ResolveFilter(f)
	}
	c.Hub = live.NewHub(c.Store.Snapshot, func(slots []domain.Slot, actor string) any {
		return dto.NewSlotCards(slots, actor)
	}, liveCfg)

	backend := cfg.Publisher
	if backend == nil {
		backend, err = c.newPublisher(ctx)
		if err != nil {
			c.closeRedis()
			return nil, err
		}
	}
	c.Publisher = events.Fanout(backend, c.Hub)
	c.Dispatcher = events.NewDispatcher(c.Publisher, &events.DispatcherConfig{
		BufferSize:     appCfg.Events.BufferSize,
		PublishTimeout: appCfg.Events.PublishTimeout,
	})

	// Services
	c.SlotService, err = service.NewSlotService(&service.SlotServiceConfig{
		Store:    c.Store,
		Ledger:   c.Ledger,
		Emitter:  c.Dispatcher,
		Bridge:   c.Bridge,
		Defaults: defaults,
	})
	if err != nil {
		c.closeRedis()
		return nil, err
	}
	c.ProfileService = service.NewProfileService()

	c.Ticker = store.NewTicker(c.Store, cfg.Clock, &store.TickerConfig{Interval: appCfg.Tick.Interval})
	c.Ticker.OnTick(c.SlotService.OnTick)
	c.Ticker.OnTick(c.Hub.PublishTick)

	// Rate limiting
	rateCfg := middleware.DefaultRateLimitConfig()
	if appCfg.RateLimit.Enabled {
		rateCfg.RequestsPerSecond = appCfg.RateLimit.RequestsPerSecond
		rateCfg.BurstSize = appCfg.RateLimit.Burst
		if appCfg.RateLimit.Backend == "redis" {
			c.Limiter = middleware.NewRedisRateLimiter(c.redisClient, rateCfg)
		} else {
			c.Limiter = middleware.NewLocalRateLimiter(rateCfg)
		}
	}

	// Handlers
	c.HealthHandler = handler.NewHealthHandler(appCfg.App.Version, map[string]handler.StatsFunc{
		"slots":  func() any { return c.Store.Len() },
		"ticker": func() any { return c.Ticker.Stats() },
		"events": func() any { return c.Dispatcher.Stats() },
		"live":   func() any { return c.Hub.Stats() },
	})
	c.SlotHandler = handler.NewSlotHandler(c.SlotService)
	c.ProfileHandler = handler.NewProfileHandler(c.ProfileService)
	c.LiveHandler = handler.NewLiveHandler(c.Hub, c.SlotService)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = appCfg.CORS.AllowOrigins

	c.Router = handler.NewRouter(&handler.RouterConfig{
		Health:    c.HealthHandler,
		Slots:     c.SlotHandler,
		Profile:   c.ProfileHandler,
		Live:      c.LiveHandler,
		CORS:      corsCfg,
		Logger:    log,
		Limiter:   c.Limiter,
		RateLimit: rateCfg,
	})

	return c, nil
}

// Defaults turns the configured browse defaults into a normalized filter
func Defaults(cfg *config.QueryConfig) (query.Filter, error) {
	f := query.Defaults()
	if cfg.DefaultCity != "" {
		f.City = domain.CityCode(cfg.DefaultCity)
	}
	if cfg.DefaultRadius != 0 {
		f.Radius = cfg.DefaultRadius
	}
	if cfg.DefaultDuration != 0 {
		f.MinDuration = cfg.DefaultDuration
	}
	if cfg.DefaultSort != "" {
		f.Sort = query.SortOrder(cfg.DefaultSort)
	}

	normalized, err := f.Normalize()
	if err != nil {
		return query.Filter{}, fmt.Errorf("invalid query defaults: %w", err)
	}
	return normalized, nil
}

func (c *Container) newPublisher(ctx context.Context) (events.Publisher, error) {
	cfg := c.Config
	switch cfg.Events.Backend {
	case "redis":
		if err := c.redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return events.NewRedisPublisherWithClient(c.redisClient, cfg.Events.Topic), nil
	case "kafka":
		pub, err := events.NewKafkaPublisher(events.KafkaOptions{
			Brokers:  cfg.Kafka.Brokers,
			ClientID: cfg.Kafka.ClientID,
			Topic:    cfg.Events.Topic,
		})
		if err != nil {
			return nil, err
		}
		return pub, nil
	default:
		return events.NoopPublisher{}, nil
	}
}

func redisOptions(cfg *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// Start launches the background workers: event dispatch, the live hub and the countdown
func (c *Container) Start(ctx context.Context) error {
	if err := c.Dispatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event dispatcher: %w", err)
	}

	hubCtx, cancel := context.WithCancel(ctx)
	c.hubCancel = cancel
	go c.Hub.Start(hubCtx)

	if err := c.Ticker.Start(ctx); err != nil {
		cancel()
		c.Dispatcher.Stop()
		return fmt.Errorf("failed to start ticker: %w", err)
	}
	return nil
}

// Close stops the workers and releases connections. Safe to call more than once.
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.Ticker.Stop()
		if c.hubCancel != nil {
			c.hubCancel()
		}
		if cerr := c.Dispatcher.Close(); cerr != nil {
			err = cerr
			logger.Warn("failed to close event publisher", zap.Error(cerr))
		}
		if local, ok := c.Limiter.(*middleware.LocalRateLimiter); ok {
			local.Stop()
		}
		c.closeRedis()
	})
	return err
}

func (c *Container) closeRedis() {
	if c.redisClient == nil {
		return
	}
	if err := c.redisClient.Close(); err != nil {
		logger.Warn("failed to close redis client", zap.Error(err))
	}
	c.redisClient = nil
}
