package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dserve-api/alerts"
	"dserve-api/config"
	"dserve-api/events"
	"dserve-api/handlers"
	"dserve-api/inventory"
	"dserve-api/logger"
	"dserve-api/metrics"
	"dserve-api/middleware"
	"dserve-api/ordernumber"
	"dserve-api/orders"
	"dserve-api/routes"
	"dserve-api/session"
	"dserve-api/store"
	"dserve-api/store/gormstore"
	"dserve-api/store/pgstore"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.App.Env, cfg.App.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("graceful shutdown complete")
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	if cfg.Driver == "postgres" {
		return pgstore.Open(ctx, cfg.DSN)
	}
	return gormstore.Open(cfg.DSN)
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()
	log.Info("store ready", "driver", cfg.Database.Driver)

	if n, err := store.SeedUsers(ctx, st, cfg.Bootstrap.DefaultPassword); err != nil {
		return err
	} else if n > 0 {
		log.Warn("seeded default users, change their passwords", "count", n)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Order numbers
	var counter ordernumber.Counter = st
	if cfg.Redis.URL != "" {
		rdb, err := ordernumber.DialRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		counter = ordernumber.NewRedisCounter(rdb)
		log.Info("order counter on redis")
	}
	seq := ordernumber.NewSequencer(counter, time.Now)
	start, end := ordernumber.DayBounds(time.Now())
	today, err := st.ListOrders(ctx, store.OrderFilter{From: start, To: end})
	if err != nil {
		return err
	}
	highest, err := seq.Seed(ctx, today)
	if err != nil {
		return err
	}
	log.Info("order counter seeded", "day", ordernumber.DayKey(start), "max", highest)

	// Alerts
	var notifier alerts.Notifier = alerts.NewLogNotifier(log)
	if cfg.Telegram.Token != "" {
		bot, err := alerts.DialTelegram(cfg.Telegram.Token)
		if err != nil {
			return err
		}
		notifier = alerts.NewTelegramNotifier(bot, cfg.Telegram.AdminChatID)
		log.Info("telegram alerts enabled", "bot", bot.Self.UserName)
	}
	watcher := alerts.NewWatcher(st, notifier, alerts.WatcherConfig{
		Interval: cfg.Alerts.Interval,
		Cooldown: cfg.Alerts.Cooldown,
	}, log, m)

	// Events
	var publisher events.Publisher = events.Nop{}
	if cfg.AMQP.URL != "" {
		p, err := events.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
		log.Info("order events on amqp", "exchange", cfg.AMQP.Exchange)
	}

	mode, err := inventory.ParseMode(cfg.Inventory.DeductionMode)
	if err != nil {
		return err
	}
	resolver := inventory.NewResolver(mode, log)
	reconciler := inventory.NewReconciler(resolver, inventory.Options{
		AllowNegative: cfg.Inventory.AllowNegative,
		MaxRetries:    cfg.Inventory.MaxRetries,
	}, log, m)

	orderSvc := orders.NewService(orders.Deps{
		Store:      st,
		Sequencer:  seq,
		Reconciler: reconciler,
		Watcher:    watcher,
		Publisher:  publisher,
		Metrics:    m,
		Logger:     log,
	})

	auth := middleware.NewAuth(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	h := handlers.New(handlers.Deps{
		Store:      st,
		Orders:     orderSvc,
		Reconciler: reconciler,
		Checker:    inventory.NewChecker(st, resolver),
		Sessions:   session.NewPersistent(st),
		Watcher:    watcher,
		Auth:       auth,
		Logger:     log,
	})

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(), middleware.RequestID(), middleware.RequestLogger(log, m))
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = metrics.Handler(reg)
	}
	routes.SetupRoutes(r, h, auth, metricsHandler)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server started", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return watcher.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
