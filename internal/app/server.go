// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"laptoppro-service/internal/config"
	"laptoppro-service/internal/db"
	"laptoppro-service/internal/domain/reminder"
	authHandler "laptoppro-service/internal/handlers/auth"
	customerHandler "laptoppro-service/internal/handlers/customer"
	healthHandler "laptoppro-service/internal/handlers/health"
	productHandler "laptoppro-service/internal/handlers/product"
	reminderHandler "laptoppro-service/internal/handlers/reminder"
	saleHandler "laptoppro-service/internal/handlers/sale"
	ticketHandler "laptoppro-service/internal/handlers/ticket"
	wsHandler "laptoppro-service/internal/handlers/websocket"
	"laptoppro-service/internal/middleware"
	"laptoppro-service/internal/pkg/cache"
	"laptoppro-service/internal/pkg/jwt"
	"laptoppro-service/internal/pkg/messaging"
	"laptoppro-service/internal/pkg/queue"
	"laptoppro-service/internal/pkg/ratelimit"
	"laptoppro-service/internal/pkg/session"
	"laptoppro-service/internal/repository"
	"laptoppro-service/internal/repository/memory"
	"laptoppro-service/internal/repository/postgres"
	authUsecase "laptoppro-service/internal/service/auth"
	customersvc "laptoppro-service/internal/service/customer"
	productsvc "laptoppro-service/internal/service/product"
	remindersvc "laptoppro-service/internal/service/reminder"
	salesvc "laptoppro-service/internal/service/sale"
	ticketsvc "laptoppro-service/internal/service/ticket"
	"laptoppro-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg        config.AppConfig
	logger     *zap.Logger
	store      repository.Store
	redis      *redis.Client
	components *components
	httpServer *http.Server
}

// components is everything built on top of a store and a Redis client.
type components struct {
	handlers    *Handlers
	hub         *websocket.Hub
	dispatcher  *remindersvc.Dispatcher
	authService *authUsecase.AuthService
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// Prepare connects to storage and Redis, applies migrations, builds the
// services and starts the background workers bound to ctx.
func (s *Server) Prepare(ctx context.Context) error {
	store, err := s.openStore(ctx)
	if err != nil {
		return err
	}
	s.store = store

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return err
	}
	s.redis = redisClient
	s.logger.Info("connected to redis", zap.String("addr", s.cfg.RedisAddr))

	comps, err := wire(s.cfg, store, redisClient, s.logger)
	if err != nil {
		return err
	}
	s.components = comps

	// ----- Bootstrap admin -----
	adminCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := comps.authService.EnsureAdminExists(adminCtx, s.cfg.AdminUsername, s.cfg.AdminPassword); err != nil {
		s.logger.Error("failed to initialize admin", zap.Error(err))
	}

	// ----- Workers -----
	go comps.hub.Run(ctx)
	if s.cfg.ReminderDispatch {
		go comps.dispatcher.Run(ctx)
	} else {
		s.logger.Info("reminder dispatch disabled")
	}

	// ----- HTTP -----
	if !s.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RecoveryMiddleware(s.logger),
		middleware.LoggingMiddleware(s.logger),
		middleware.CORSMiddleware(s.cfg.CORSOrigin),
	)
	SetupRouter(engine, comps.handlers)

	s.httpServer = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run serves HTTP until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains HTTP and releases the pool and Redis client.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.redis != nil {
		s.redis.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
	return err
}

func (s *Server) openStore(ctx context.Context) (repository.Store, error) {
	switch s.cfg.StoreDriver {
	case config.StoreDriverMemory:
		s.logger.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore(), nil

	case config.StoreDriverPostgres:
		pool, err := db.ConnectDB(ctx, db.PostgresConfig{URL: s.cfg.DatabaseURL, MaxConns: s.cfg.DBMaxConns})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		s.logger.Info("connected to postgres", zap.Int32("max_conns", pool.Config().MaxConns))

		if s.cfg.AutoMigrate {
			if err := db.Migrate(ctx, pool, s.logger); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return postgres.NewDB(pool, s.cfg.DBLockTimeout), nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", s.cfg.StoreDriver)
	}
}

// wire builds services and handlers over store and redisClient.
func wire(cfg config.AppConfig, store repository.Store, redisClient *redis.Client, logger *zap.Logger) (*components, error) {
	jwtManager, err := jwt.LoadAndBuild(cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("failed to load JWT manager: %w", err)
	}

	blacklist := session.NewBlacklist(redisClient)
	hub := websocket.NewHub(jwtManager.Verifier, blacklist, logger)
	reminderQueue := queue.NewDelayedQueue(redisClient, reminder.Queue)
	productCache := cache.NewProductCache(redisClient, cfg.ProductCacheTTL, logger)
	rateLimiter := ratelimit.NewRateLimiter(redisClient)
	bot := messaging.NewBotClient(cfg.BotURL, 10*time.Second)

	// ----- Services -----
	authService := authUsecase.NewAuthService(store, jwtManager, rateLimiter, blacklist, logger)
	customerService := customersvc.NewCustomerService(store, logger)
	scheduler := remindersvc.NewScheduler(reminderQueue, logger)
	ticketService := ticketsvc.NewTicketService(store, customerService, scheduler, hub, logger)
	saleService := salesvc.NewSaleService(store, customerService, productCache, hub, logger)
	productService := productsvc.NewProductService(store, productCache, logger)
	dispatcher := remindersvc.NewDispatcher(reminderQueue, store, bot, hub, cfg.ReminderPollInterval, logger)

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:     authHandler.NewAuthHandler(authService, logger),
		TicketHandler:   ticketHandler.NewTicketHandler(ticketService),
		SaleHandler:     saleHandler.NewSaleHandler(saleService),
		ProductHandler:  productHandler.NewProductHandler(productService),
		CustomerHandler: customerHandler.NewCustomerHandler(customerService),
		ReminderHandler: reminderHandler.NewReminderHandler(ticketService),
		HealthHandler: healthHandler.NewHealthHandler(map[string]healthHandler.Pinger{
			"store": store,
			"redis": healthHandler.PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}),
		}, logger),
		WSHandler:      wsHandler.NewWebSocketHandler(hub, cfg.CORSOrigin, logger),
		AuthMiddleware: middleware.NewAuthMiddleware(jwtManager.Verifier, blacklist),
	}

	return &components{
		handlers:    handlers,
		hub:         hub,
		dispatcher:  dispatcher,
		authService: authService,
	}, nil
}
