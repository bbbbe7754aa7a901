package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go-blindbox-store/internal/cart"
	"go-blindbox-store/internal/config"
	"go-blindbox-store/internal/handler"
	"go-blindbox-store/internal/middleware"
	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/notify"
	"go-blindbox-store/internal/repository"
	"go-blindbox-store/internal/service"
	"go-blindbox-store/internal/ws"
	"go-blindbox-store/pkg/database"
	"go-blindbox-store/pkg/jwt"
	"go-blindbox-store/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	log := logger.Must(logger.Config{
		IsDevelopment:     cfg.IsDevelopment(),
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.Postgres, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	// AutoMigrate keeps the schema in step with the models
	if err := db.AutoMigrate(
		&model.Privilege{}, &model.Role{}, &model.User{},
		&model.Product{}, &model.ProductOption{}, &model.CodeMapping{},
		&model.StockMovement{}, &model.Order{}, &model.OrderItem{},
	); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get database handle", zap.Error(err))
	}
	reportDB := sqlx.NewDb(sqlDB, "postgres")

	// 3. Repositories and seed data
	store := repository.NewStore(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	reportRepo := repository.NewReportRepo(reportDB)

	seedPrivilegesRolesAndAdmin(ctx, cfg.Seed, privilegeRepo, roleRepo, userRepo, log)

	// 4. Setup WebSocket Hub and notifiers
	wsHub := ws.NewHub(log)
	go wsHub.Run(ctx)

	notifiers := notify.Multi{notify.NewHubNotifier(wsHub, log)}
	var kafkaNotifier *notify.KafkaNotifier
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaNotifier = notify.NewKafkaNotifier(notify.KafkaConfig{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryAttempts: cfg.Kafka.RetryAttempts,
			WriteTimeout:  5 * time.Second,
		}, log)
		notifiers = append(notifiers, kafkaNotifier)
		log.Info("kafka notifications enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// 5. Cart persistence
	var carts cart.Store = cart.NewMemoryStore()
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		carts = cart.NewRedisStore(redisClient)
		log.Info("carts stored in redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		log.Warn("REDIS_ADDR not set, carts are kept in memory")
	}

	// 6. Dependency Injection (Wiring Layers)
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)

	authService := service.NewAuthService(userRepo, roleRepo, tokens, notifiers, cfg.JWT.IdleTime, log)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo, log)
	dashService := service.NewDashboardService(reportRepo, cfg.Store.LowStockThreshold)
	ledger := service.NewStockLedger(store, notifiers, log)
	resolver := service.NewCodeResolver(store, notifiers, log)
	productService := service.NewProductService(store, notifiers, log)
	cartService := service.NewCartService(store, carts, log)
	checkoutService := service.NewCheckoutService(store, carts, notifiers, log)
	orderService := service.NewOrderService(store, notifiers, log)

	handlers := &handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Role:      handler.NewRoleHandler(roleRepo, privilegeRepo),
		Dashboard: handler.NewDashboardHandler(dashService),
		Product:   handler.NewProductHandler(productService),
		Scan:      handler.NewScanHandler(resolver),
		Stock:     handler.NewStockHandler(ledger),
		Cart:      handler.NewCartHandler(cartService),
		Order:     handler.NewOrderHandler(checkoutService, orderService),
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Blind Box Store v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})
	handler.RegisterRoutes(app.Group("/api/v1"), handlers, middleware.RequireAuth(authService))
	handler.RegisterWebSocket(app, wsHub)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()
	log.Info("server started", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.AppEnv))

	<-ctx.Done()

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if kafkaNotifier != nil {
		if err := kafkaNotifier.Close(); err != nil {
			log.Warn("kafka notifier close", zap.Error(err))
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("database close", zap.Error(err))
	}

	log.Info("server exited")
}
