package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/paperman/internal/cache"
	"github.com/Skotchmaster/paperman/internal/config"
	"github.com/Skotchmaster/paperman/internal/events"
	"github.com/Skotchmaster/paperman/internal/httpserver"
	"github.com/Skotchmaster/paperman/internal/identity"
	"github.com/Skotchmaster/paperman/internal/jobs"
	"github.com/Skotchmaster/paperman/internal/notify"
	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/internal/search"
	"github.com/Skotchmaster/paperman/internal/service"
	"github.com/Skotchmaster/paperman/pkg/db"
	"github.com/Skotchmaster/paperman/pkg/logging"
	"github.com/Skotchmaster/paperman/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/paperman/pkg/middleware/logging"
	"github.com/Skotchmaster/paperman/pkg/tracing"
)

func main() {
	cfg := config.MustLoad()

	logger, logCloser := logging.NewWithFile(cfg.LogLevel, logging.FileOptions{Path: cfg.LogFile})
	defer logCloser.Close()
	slog.SetDefault(logger)
	loc := cfg.Location()

	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shutdownTracing, err := tracing.Setup(initCtx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		log.Fatalf("tracing init error: %v", err)
	}

	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	store := repo.New(gdb)
	if err := store.Migrate(initCtx); err != nil {
		log.Fatalf("migrate error: %v", err)
	}

	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		log.Fatalf("snowflake node error: %v", err)
	}

	var idp identity.Provider = identity.NewLocal(store)
	if cfg.IdentityProvider == "firebase" {
		idp = identity.NewFirebase(cfg.FirebaseURL, cfg.FirebaseAPIKey)
	}

	bus := events.NewBus()

	var kafkaSink *events.KafkaSink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink = events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err := bus.SubscribeAsync(events.TopicAll, kafkaSink.Handle); err != nil {
			log.Fatalf("kafka subscribe error: %v", err)
		}
	}

	redisClient, err := cfg.Redis.New(initCtx)
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	var stockCache cache.Cache = cache.Nop{}
	if redisClient != nil {
		stockCache = cache.NewRedis(redisClient, cfg.ServiceName+":")
	}

	var searcher service.ProductSearcher
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		idx := search.New(es, cfg.ESIndex)
		if err := idx.EnsureIndex(initCtx); err != nil {
			logger.Warn("search_index_unavailable", "index", cfg.ESIndex, "error", err)
		}
		if err := subscribeSearchIndex(bus, idx, logger); err != nil {
			log.Fatalf("search subscribe error: %v", err)
		}
		searcher = idx
	}

	stock := service.NewStockService(store, stockCache, searcher, cfg.LowStockThreshold, cfg.StockCacheTTL)
	if err := subscribeStockCache(bus, stock, logger); err != nil {
		log.Fatalf("stock cache subscribe error: %v", err)
	}

	var notifier *notify.Notifier
	if cfg.SMTPEnabled() {
		sender := notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.MailFrom)
		notifier, err = notify.NewNotifier(cfg.NotifyWorkers, cfg.NotifyQueue, sender, cfg.MailTo, logger)
		if err != nil {
			log.Fatalf("notifier init error: %v", err)
		}
		if err := subscribeLeadMail(bus, notifier, logger); err != nil {
			log.Fatalf("mail subscribe error: %v", err)
		}
	}

	auth := &service.AuthService{
		Repo:          store,
		Identity:      idp,
		JWTSecret:     []byte(cfg.JWTSecret),
		RefreshSecret: []byte(cfg.JWTRefreshSecret),
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}
	if created, err := auth.EnsureAdmin(initCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("bootstrap admin error: %v", err)
	} else if created {
		logger.Info("admin_created", "email", cfg.AdminEmail)
	}

	scheduler := jobs.New(loc, logger)
	if notifier != nil {
		if err := scheduler.Add(cfg.CronLowStock, "low_stock_digest", jobs.LowStockDigest(stock, notifier, cfg.LowStockThreshold)); err != nil {
			log.Fatalf("cron low stock: %v", err)
		}
	}
	if err := scheduler.Add(cfg.CronTokenPurge, "purge_refresh_tokens", jobs.PurgeTokens(auth, logger)); err != nil {
		log.Fatalf("cron token purge: %v", err)
	}
	scheduler.Start()

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(tracing.Middleware(cfg.ServiceName))
	e.Use(loggingmw.RequestLogger(logger))
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, csrf.DefaultConfig().HeaderName},
			ExposeHeaders:    []string{echo.HeaderContentDisposition, csrf.DefaultConfig().HeaderName},
		}))
	}

	var csrfCfg *csrf.Config
	if cfg.CSRFEnabled {
		c := csrf.DefaultConfig()
		c.Secure = cfg.CookieSecure
		csrfCfg = &c
	}

	httpserver.Register(e, &httpserver.Deps{
		Health:    &httpserver.HealthHTTP{DB: gdb},
		Auth:      &httpserver.AuthHTTP{Svc: auth, SecureCookie: cfg.CookieSecure},
		Category:  &httpserver.CategoryHTTP{Svc: service.NewCategoryService(store, bus)},
		Product:   &httpserver.ProductHTTP{Svc: service.NewProductService(store, bus)},
		Inventory: &httpserver.InventoryHTTP{Svc: service.NewInventoryService(store, bus, loc)},
		Customer:  &httpserver.CustomerHTTP{Svc: service.NewCustomerService(store, bus)},
		Lead:      &httpserver.LeadHTTP{Svc: service.NewLeadService(store, bus, node)},
		User:      &httpserver.UserHTTP{Svc: service.NewUserService(store, bus, loc)},
		Stock:     &httpserver.StockHTTP{Svc: stock},
		Dashboard: &httpserver.DashboardHTTP{Svc: service.NewDashboardService(store, loc)},
		JWTSecret: []byte(cfg.JWTSecret),
		CSRF:      csrfCfg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	scheduler.Stop(ctx)
	if notifier != nil {
		notifier.Close()
	}
	bus.Wait()
	if kafkaSink != nil {
		if err := kafkaSink.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis_close_failed", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_failed", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("tracing_shutdown_failed", "error", err)
	}

	logger.Info("shutdown_complete")
}
