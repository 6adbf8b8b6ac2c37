package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"support-assistant/internal/audit"
	"support-assistant/internal/auth"
	"support-assistant/internal/compose"
	"support-assistant/internal/config"
	"support-assistant/internal/enrich"
	"support-assistant/internal/genai"
	"support-assistant/internal/httpapi"
	"support-assistant/internal/loyalty"
	"support-assistant/internal/metrics"
	"support-assistant/internal/order"
	"support-assistant/pkg/logger"
	"support-assistant/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	warnMissingCredentials(cfg, log)

	m := metrics.New(prometheus.DefaultRegisterer)

	gen := genai.NewClient(cfg.Gemini, log, m)
	orderClient := order.NewClient(cfg.Order)
	loyaltyClient := loyalty.NewClient(cfg.Loyalty)

	gatewayOpts := []enrich.Option{enrich.WithMetrics(m)}
	if cfg.HasRedis() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		gatewayOpts = append(gatewayOpts, enrich.WithCache(rdb, cfg.Redis.CacheTTL))
		log.Info("enrichment cache enabled", "addr", cfg.RedisAddr(), "ttl", cfg.Redis.CacheTTL)
	}
	gateway := enrich.NewGateway(orderClient, loyaltyClient, log, gatewayOpts...)

	var auditRepo audit.Repository = audit.NewMemoryRepo()
	if cfg.HasDB() {
		db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		auditRepo = audit.NewPostgresRepo(db)
		log.Info("audit trail backed by postgres", "host", cfg.DB.Host, "db", cfg.DB.Name)
	}

	h := httpapi.Handlers{
		Gen:      gen,
		Gateway:  gateway,
		Composer: compose.New(gen, cfg.Support, log),
		Audit:    audit.NewService(auditRepo),
	}

	var authManager *auth.Manager
	if cfg.HasAuth() {
		authManager, err = auth.NewManager(cfg.Auth)
		if err != nil {
			log.Error("auth init failed", "err", err)
			os.Exit(1)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(cors.Default())

	registerRoutes(r, h, authManager)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

// warnMissingCredentials logs which outbound integrations are disabled.
// Missing credentials are not fatal: the affected endpoints answer with a
// fixed configuration error instead.
func warnMissingCredentials(cfg config.Config, log *slog.Logger) {
	if !cfg.HasGeminiKey() {
		log.Warn("GEMINI_API_KEY not set; generation endpoints will return a configuration error")
	}
	if !cfg.HasOrderToken() {
		log.Warn("ORDER_API_TOKEN not set; order lookups will return a configuration error")
	}
	if !cfg.HasLoyaltyCredentials() {
		log.Warn("loyalty credentials not set; customer lookups will return a configuration error")
	}
	if !cfg.HasAuth() {
		log.Warn("JWT_SECRET not set; admin endpoints are disabled")
	}
}
