package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/morra-backend/internal/game"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/config"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/database"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/escrow"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/identity"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/middleware"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/morra"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/pubsub"
	pkgws "github.com/kollektive-hackathon/morra-backend/internal/pkg/ws"
	"github.com/kollektive-hackathon/morra-backend/internal/wallet"
	"github.com/kollektive-hackathon/morra-backend/internal/ws"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(viper.New(), "./.env")
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupZerolog(cfg.LogLevel)

	db := setupDb(cfg)
	verifier := setupVerifier(ctx, cfg)

	var pubsubClient *pubsub.Client
	if cfg.GoogleProjectId != "" {
		pubsubClient, err = pubsub.NewClient(ctx, cfg.GoogleProjectId)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize pubsub")
		}
		defer func() { _ = pubsubClient.Close() }()
	} else {
		log.Warn().Msg("GOOGLE_PROJECT_ID not set, events stay local")
	}

	apiRouter := setupApiRouter(ctx, cfg, db, verifier, pubsubClient)

	server := &http.Server{
		Addr:         cfg.Port,
		Handler:      apiRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Error during shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Port).Msg("Morra API listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func setupDb(cfg config.Config) *gorm.DB {
	db, err := database.Connect(postgres.Open(cfg.DbUrl), database.Options{
		MaxOpenConns:    cfg.DbMaxOpenConns,
		ConnMaxLifetime: time.Minute * 10,
		ConnectAttempts: cfg.DbConnectAttempts,
		AutoMigrate:     cfg.DbAutoMigrate,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	return db
}

func setupVerifier(ctx context.Context, cfg config.Config) identity.Verifier {
	if cfg.AuthMode == config.AuthModeHeader {
		log.Warn().Msg("AUTH_MODE=header trusts the bearer value as the party id")
		return identity.HeaderVerifier{}
	}

	verifier, err := identity.NewFirebaseVerifier(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize firebase")
	}
	return verifier
}

func setupApiRouter(ctx context.Context, cfg config.Config, db *gorm.DB, verifier identity.Verifier, pubsubClient *pubsub.Client) *gin.Engine {
	apiRouter := gin.Default()
	routerGroup := apiRouter.Group("/morra-api")

	middleware.RegisterGlobalMiddleware(apiRouter, cfg.AllowedOrigins)

	clock := quartz.NewReal()
	ledger := escrow.NewGormLedger(db, clock)
	hub := pkgws.NewNotificationHub()
	auth := middleware.VerifyAuthToken(verifier)

	ws.RegisterRoutes(routerGroup, hub, auth, cfg.AllowedOrigins)
	wallet.RegisterRoutesAndSubscriptions(ctx, routerGroup, wallet.Dependencies{
		Ledger:               ledger,
		Hub:                  hub,
		Auth:                 auth,
		AdminSecret:          cfg.AdminSecret,
		Pubsub:               pubsubClient,
		DepositsSubscription: cfg.DepositsSubscription,
	})
	game.RegisterRoutes(routerGroup, game.Dependencies{
		Db:       db,
		Machine:  morra.NewMachine(cfg.Policy, clock, ledger),
		Ledger:   ledger,
		Auth:     auth,
		Notifier: game.NewNotifier(hub, pubsubClient, cfg.EventsTopic),
	})

	return apiRouter
}

func setupZerolog(level zerolog.Level) {
	zerolog.LevelFieldName = "severity"
	zerolog.TimestampFieldName = "time"
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(level)
}
