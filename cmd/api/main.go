package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/api"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/api/handler"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/api/middleware"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/application"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/config"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/booking"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/infrastructure/postgres"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/infrastructure/rabbitmq"
	redisinfra "github.com/MinhTruong204/movie-booking-system-sub000/internal/infrastructure/redis"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/clock"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/logger"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/metrics"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/worker"
)

func main() {
	cfg := config.Load()
	logger.Set(logger.NewLogger(cfg.App.Env))
	defer func() { _ = logger.Sync() }()

	m := metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.RunMigrations(db.DB, cfg.App.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// Redis
	rc := redisinfra.NewClient(&cfg.Redis)
	defer rc.Close()
	if err := redisinfra.Ping(ctx, rc); err != nil {
		logger.Fatal("Redis接続に失敗", zap.Error(err))
	}
	seatCache := redisinfra.NewSeatCache(rc)
	lockManager := redisinfra.NewLockManager(rc, m)

	// イベント配信（未設定なら無効）
	var publisher booking.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Fatal("RabbitMQ接続に失敗", zap.Error(err))
		}
		defer p.Close()
		publisher = p
	}

	clk := clock.Real{}
	policy := application.PolicyFromConfig(&cfg.Booking)

	txManager := postgres.NewTxManager(db)
	seatRepo := postgres.NewSeatStatusRepository(db)
	showtimeRepo := postgres.NewShowtimeRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	discounts := postgres.NewDiscountRepository(db, clk)

	holdService := application.NewSeatHoldService(txManager, seatRepo, showtimeRepo, seatCache, policy, clk, m)
	seatMapService := application.NewSeatMapService(seatRepo, showtimeRepo, seatCache, clk)
	bookingService := application.NewBookingService(application.BookingServiceDeps{
		TxManager:  txManager,
		Bookings:   bookingRepo,
		Seats:      seatRepo,
		Showtimes:  showtimeRepo,
		Users:      postgres.NewUserRepository(db),
		Promotions: discounts,
		Vouchers:   discounts,
		Loyalty:    discounts,
		Membership: discounts,
		Publisher:  publisher,
		Cache:      seatCache,
		Policy:     policy,
		Clock:      clk,
		Metrics:    m,
	})
	cleanupService := application.NewCleanupService(holdService, bookingService, m)
	reaper := worker.NewReaper(cleanupService, lockManager, cfg.Booking.ReaperInterval)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(cfg.Metrics))
	handler.RegisterRoutes(e, handler.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
			"redis":    func(ctx context.Context) error { return redisinfra.Ping(ctx, rc) },
		}),
		Hold:    handler.NewHoldHandler(holdService),
		SeatMap: handler.NewSeatMapHandler(seatMapService),
		Booking: handler.NewBookingHandler(bookingService),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("サーバー起動", zap.String("port", cfg.Server.Port), zap.String("env", cfg.App.Env))
		if err := e.Start(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("サーバー起動エラー: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		reaper.Start(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("サーバーをシャットダウンしています...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		reaper.Stop()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("サーバー停止時にエラー", zap.Error(err))
		return
	}
	logger.Info("サーバーが正常にシャットダウンしました")
}
