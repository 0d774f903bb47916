package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpadp "p2p-lending-engine/internal/adapter/http"
	idemp "p2p-lending-engine/internal/adapter/middleware"
	"p2p-lending-engine/internal/adapter/messaging"
	"p2p-lending-engine/internal/adapter/repository/mysql"
	"p2p-lending-engine/internal/config"
	"p2p-lending-engine/internal/engine"
	"p2p-lending-engine/internal/infrastructure/cache"
	"p2p-lending-engine/internal/infrastructure/db"
	"p2p-lending-engine/internal/usecase/approval"
	"p2p-lending-engine/internal/usecase/funding"
	"p2p-lending-engine/internal/usecase/loan"
	"p2p-lending-engine/internal/usecase/repayment"
	"p2p-lending-engine/internal/usecase/wallet"
	"p2p-lending-engine/internal/worker"
	"p2p-lending-engine/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		zap.L().Fatal("service stopped with error", zap.Error(err))
	}
	zap.L().Info("all systems closed without errors")
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.InitLogger(cfg); err != nil {
		return err
	}
	defer func() { _ = zap.L().Sync() }()

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb, append(mysql.Models(), &messaging.OutboxEvent{})...); err != nil {
		return err
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	settings := cfg.Engine()
	tx := mysql.NewGormUoW(gdb)
	outbox := messaging.NewOutboxPublisher(gdb)

	loans := loan.NewUsecase(tx, settings, engine.SystemClock)
	approvals := approval.NewUsecase(tx, settings, engine.SystemClock)
	wallets := wallet.NewUsecase(tx, outbox, settings, engine.SystemClock)
	fundings := funding.NewUsecase(tx, outbox, settings, engine.SystemClock)
	repayments := repayment.NewUsecase(tx, outbox, settings, engine.SystemClock)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())
	httpadp.RegisterRoutes(e, httpadp.Handlers{
		Health: httpadp.NewHandler().
			WithCheck("mysql", db.Ping(gdb)).
			WithCheck("redis", cache.Ping(rdb)),
		Loans:     httpadp.NewLoanHandler(loans),
		Approvals: httpadp.NewApprovalHandler(approvals),
		Funding:   httpadp.NewFundingHandler(fundings, repayments),
		Wallets:   httpadp.NewWalletHandler(wallets),
	}, idemp.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	g, gctx := errgroup.WithContext(ctx)

	sweeper := worker.NewOverdueSweeper(repayments, cfg.SweepWorkers, cfg.SweepBatch)
	g.Go(func() error {
		worker.Run(gctx, sweeper, cfg.SweepInterval)
		return nil
	})

	if len(cfg.KafkaBrokers) > 0 {
		writer := messaging.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		relay := worker.NewOutboxRelay(messaging.NewKafkaRelay(outbox, writer, messaging.DefaultBatchSize)).
			WithPurge(outbox, cfg.OutboxRetention)
		g.Go(func() error {
			defer writer.Close()
			worker.Run(gctx, relay, cfg.OutboxRelayInterval)
			return nil
		})
	} else {
		zap.L().Warn("KAFKA_BROKERS not set, events stay in the outbox table")
	}

	g.Go(func() error {
		addr := ":" + cfg.AppPort
		zap.L().Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
