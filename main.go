package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/kev1N916/trial-bot/api"
	"github.com/kev1N916/trial-bot/database"
	"github.com/kev1N916/trial-bot/integrations"
	"github.com/kev1N916/trial-bot/internal/bot"
	"github.com/kev1N916/trial-bot/internal/dialog"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

func newLogger() *zap.Logger {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if levelStr == "" {
		levelStr = "debug"
	}
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      true,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}

func loadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.path", "bot.db")
	viper.SetDefault("conversations.backend", "sqlite")
	viper.SetDefault("conversations.file", "data/conversations.json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			zap.L().Fatal("Error reading config file", zap.Error(err))
		}
		zap.L().Warn("No config file found, using defaults and environment")
	}
}

func newConversationStore(backend string, db *gorm.DB) database.ConversationStore {
	switch backend {
	case "memory":
		return database.NewMemoryConversationStore()
	case "file":
		path := viper.GetString("conversations.file")
		zap.L().Info("Using file conversation store", zap.String("path", path))
		return database.NewFileConversationStore(path)
	case "sqlite":
		return &database.GormConversationStore{DB: db}
	default:
		zap.L().Fatal("Unknown conversations.backend", zap.String("backend", backend))
		return nil
	}
}

func main() {
	logger := newLogger()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	loadConfig()

	db := database.Init(viper.GetString("database.path"))
	sqlDB, _ := db.DB()

	conversations := newConversationStore(viper.GetString("conversations.backend"), db)

	agentClient, err := integrations.NewAgentClient(viper.GetString("agent.base_url"))
	if err != nil {
		zap.L().Fatal("Failed to initialise agent client", zap.Error(err))
	}

	hooks := &bot.Hooks{
		Sprints:       &database.SprintStore{DB: db},
		Conversations: conversations,
		Agent:         agentClient,
	}

	if viper.GetString("google.calendar.calendar_id") != "" {
		calClient, err := integrations.NewCalendarClient(context.Background())
		if err != nil {
			zap.L().Fatal("Failed to initialise Google Calendar client", zap.Error(err))
		}
		hooks.Calendar = calClient
		zap.L().Info("Successfully authenticated with Google Calendar API.")
	}

	engine := dialog.NewEngine(
		dialog.WithForwarder(hooks),
		dialog.WithObserver(hooks),
		dialog.WithLogger(logger.Named("dialog")),
	)

	connector := integrations.NewConnectorClient(
		viper.GetString("bot.app_id"),
		viper.GetString("bot.app_password"),
		viper.GetString("bot.tenant_id"),
	)

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	api.RegisterRoutes(router, &api.Handler{
		Engine:        engine,
		Conversations: conversations,
		Messenger:     connector,
	})

	port := viper.GetString("server.port")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	zap.L().Info("Starting server", zap.String("port", port))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	var once sync.Once

	cleanup := func(reason string) {
		zap.L().Info("Shutdown initiated", zap.String("reason", reason))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		zap.L().Info("Shutting down HTTP server...")
		if err := srv.Shutdown(ctx); err != nil {
			zap.L().Error("Error shutting down server", zap.Error(err))
		} else {
			zap.L().Info("HTTP server shut down gracefully.")
		}

		if sqlDB != nil {
			if err := sqlDB.Close(); err != nil {
				zap.L().Error("Error closing database", zap.Error(err))
			} else {
				zap.L().Info("Database connection closed.")
			}
		}
		close(done)
	}

	go func() {
		sig := <-sigCh
		once.Do(func() {
			cleanup(sig.String())
		})

		// if a second signal is caught, exit immediately
		go func() {
			<-sigCh
			zap.L().Info("Second interrupt signal received. Exiting immediately.")
			os.Exit(1)
		}()
	}()

	<-done
	zap.L().Info("Exiting...")
}
