package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sezam-club/sezam/internal/config"
	"github.com/sezam-club/sezam/internal/db"
	"github.com/sezam-club/sezam/internal/httpapi"
	"github.com/sezam-club/sezam/internal/journal"
	"github.com/sezam-club/sezam/internal/logging"
	"github.com/sezam-club/sezam/internal/metrics"
	"github.com/sezam-club/sezam/internal/sezam/service"
	"github.com/sezam-club/sezam/internal/sezam/store/sqlite"
	"github.com/sezam-club/sezam/internal/vk"
)

func main() {
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "sezam-server")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	defer dbConn.Close()

	writer := db.NewWorker(dbConn)
	defer writer.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, dbConn, db.SeedDevOptions{}); err != nil {
			logger.Fatal("seed dev", zap.Error(err))
		}
	}

	// Stores
	memberStore := sqlite.NewMemberStore(dbConn, writer)
	ledgerStore := sqlite.NewLedgerStore(dbConn, writer)
	doorStore := sqlite.NewDoorStore(dbConn)
	journalStore := sqlite.NewJournalStore(dbConn, writer)

	// Metrics + journal
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	jrnl := journal.New(journalStore, logger, journal.Config{
		MinLevel:      journal.ParseLevel(cfg.JournalLevel),
		Ceiling:       cfg.JournalCeiling,
		EvictFraction: cfg.JournalEvictFraction,
	}, collector)

	// Gateway + services
	gateway := vk.New(vk.Config{
		Token:             cfg.VKToken,
		APIVersion:        cfg.VKAPIVersion,
		RequestsPerSecond: cfg.VKRateLimit,
	}, logger)

	ledger := service.NewLedger(ledgerStore, cfg.LedgerLockWait)
	door := service.NewDoorSignal(doorStore, cfg.DoorPollInterval, collector)
	auth := service.NewAuthorizer(memberStore)
	roster := service.NewRoster(memberStore)

	bot := service.NewBot(ledger, auth, door, gateway, service.BotConfig{
		CommandPhrases: cfg.CommandPhrases,
		GrantedReply:   cfg.GrantedReply,
		DeniedReply:    cfg.DeniedReply,
	}, jrnl.For("bot"), collector)

	router := service.NewRouter(service.RouterConfig{
		Secret:           cfg.WebSecret,
		ConfirmResponse:  cfg.ConfirmResponse,
		StatusWaitBudget: cfg.StatusWaitBudget,
	}, bot, door, roster, jrnl.For("router"), collector)

	resolver := service.NewLinkResolver(memberStore, gateway, cfg.ResolveInterval, jrnl.For("resolver"))
	resolver.Start(ctx)
	defer resolver.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:   logger,
		Addr:     cfg.HTTPAddr,
		Router:   router,
		Journal:  jrnl,
		Registry: registry,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
