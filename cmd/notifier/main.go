package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"health_notification_engine/internal/app"
	"health_notification_engine/internal/domain/notify"
	"health_notification_engine/internal/domain/rule"
	"health_notification_engine/internal/infra/clock"
	"health_notification_engine/internal/infra/config"
	"health_notification_engine/internal/infra/console"
	"health_notification_engine/internal/infra/logger"
	"health_notification_engine/internal/infra/scheduler"
	"health_notification_engine/internal/infra/storage"
	"health_notification_engine/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Health Notification Engine starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Store: %s", cfg.LogLevel, cfg.Environment, cfg.StoreDriver)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("FATAL: Invalid TIMEZONE %q: %v", cfg.Timezone, err)
	}

	// Initialize persistent store
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("FATAL: Could not open persistent store: %v", err)
	}
	defer store.Close()
	log.Info("Persistent store opened.")

	// Initialize repositories
	ruleRepo := storage.NewKVRuleRepository(store)
	stateRepo := storage.NewKVStateRepository(store)
	scheduleRepo := storage.NewKVScheduleRepository(store)

	// Initialize notification sink
	sink, err := buildSink(cfg, log)
	if err != nil {
		log.Fatalf("FATAL: Could not initialize notification sink: %v", err)
	}

	// Initialize predicate registry with the default rule conditions
	registry := rule.NewPredicateRegistry()
	rule.RegisterDefaults(registry)

	engine := app.NewEngineService(
		ruleRepo,
		stateRepo,
		scheduleRepo,
		sink,
		clock.NewSystem(loc),
		registry,
		rand.New(rand.NewSource(time.Now().UnixNano())),
		log,
	)
	log.Info("Notification engine initialized.")

	// Best-effort OS-level pre-scheduling of armed slots; the tick loop
	// below remains authoritative either way.
	engine.PreArmOSSchedules()

	tickScheduler := scheduler.NewTickScheduler(engine, log, cfg.TickCronSpec, loc)
	if err := tickScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start slot tick scheduler: %v", err)
	}

	// Feed a simulated context update so the demo produces output without
	// a real app reporting facts.
	if cfg.Environment == "development" {
		_, err := engine.UpdateContext(map[string]any{
			rule.FactCaffeineSlowMetab: true,
			rule.FactUVSensitive:       true,
			rule.FactUVIndex:           7.0,
			rule.FactLastWaterAt:       time.Now().In(loc).Add(-5 * time.Hour).Format(time.RFC3339),
		})
		if err != nil {
			log.Errorf("Demo context update failed: %v", err)
		}
	}

	log.Info("Application setup complete. Engine is running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	tickScheduler.Stop()
	log.Info("Application shut down gracefully.")
}

func openStore(cfg *config.AppConfig) (storage.KVStore, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverBolt:
		return storage.NewBoltStore(cfg.BoltPath)
	case config.StoreDriverPostgres:
		return storage.NewPostgresStore(cfg.DatabaseURL)
	case config.StoreDriverMemory:
		return storage.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func buildSink(cfg *config.AppConfig, log *logrus.Logger) (notify.Sink, error) {
	if cfg.TelegramToken == "" {
		log.Info("No TELEGRAM_TOKEN configured, using console sink.")
		return console.NewSink(log), nil
	}

	bot, err := telebot.NewBot(telebot.Settings{
		Token: cfg.TelegramToken,
		OnError: func(err error, _ telebot.Context) {
			log.Errorf("Telegram sink error: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	log.Infof("Telegram sink initialized (chat %d).", cfg.TelegramChatID)
	return telegram.NewSink(bot, cfg.TelegramChatID), nil
}
