package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/aliskhannn/mcq-bank-bot/internal/bank"
	"github.com/aliskhannn/mcq-bank-bot/internal/config"
	"github.com/aliskhannn/mcq-bank-bot/internal/delivery/telegram"
	"github.com/aliskhannn/mcq-bank-bot/internal/infra/filestore"
	"github.com/aliskhannn/mcq-bank-bot/internal/infra/postgres"
	"github.com/aliskhannn/mcq-bank-bot/internal/infra/sqlite"
	"github.com/aliskhannn/mcq-bank-bot/internal/logger"
	"github.com/aliskhannn/mcq-bank-bot/internal/parser"
)

func main() {
	// Load .env before reading configuration; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		zl.Fatal("failed to create bot", zap.Error(err))
	}

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{
			Command:     "practice",
			Description: "Начать тренировку",
		},
		{
			Command:     "import",
			Description: "Загрузить вопросы из текста",
		},
		{
			Command:     "stats",
			Description: "Статистика банка вопросов",
		},
		{
			Command:     "cancel",
			Description: "Отменить текущее действие",
		},
		{
			Command:     "help",
			Description: "Помощь",
		},
	}

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		zl.Warn("failed to set bot commands", zap.Error(err))
	}

	zl.Info("authorized", zap.String("account", bot.Self.UserName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := newStore(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to open question store", zap.Error(err))
	}
	defer cleanup()

	questionBank := bank.New(ctx, store, zl)
	zl.Info("question bank loaded", zap.Int("size", questionBank.Size()))

	handler := telegram.NewHandler(bot, zl, parser.New(), questionBank)
	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zl.Fatal("handler stopped", zap.Error(err))
	}

	zl.Info("shutdown signal received")
}

// newStore opens the configured storage driver.
func newStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (bank.Store, func(), error) {
	noop := func() {}

	switch cfg.Storage.Driver {
	case config.DriverFile:
		return filestore.New(cfg.Storage.FilePath, zl), noop, nil

	case config.DriverSQLite:
		store, err := sqlite.New(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	case config.DriverPostgres:
		dsn, err := cfg.Storage.DSN()
		if err != nil {
			return nil, nil, err
		}

		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.Storage.MaxConnections),
			MaxConnLifetime: cfg.Storage.MaxConnLifetime,
		})
		if err != nil {
			return nil, nil, err
		}

		store, err := postgres.NewStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}
