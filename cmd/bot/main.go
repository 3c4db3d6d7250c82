package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mindbuddy/internal/config"
	"mindbuddy/internal/logging"
	"mindbuddy/internal/scheduler"
	"mindbuddy/internal/session"
	"mindbuddy/internal/storage"
	"mindbuddy/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatalf("invalid bot config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFilePath)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := storage.NewSink(ctx, storage.Options{
		Backend:       cfg.StorageBackend,
		FilePath:      cfg.StatePath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		RedisKey:      cfg.RedisKey,
	})
	if err != nil {
		logger.Warnf("⚠️ storage backend %q unavailable, running in memory: %v", cfg.StorageBackend, err)
		sink = storage.NoopSink{}
	}
	if c, ok := sink.(interface{ Close() error }); ok {
		defer func() { _ = c.Close() }()
	}

	loc := cfg.Location()
	sess := session.New(
		session.WithSink(sink),
		session.WithClock(func() time.Time { return time.Now().In(loc) }),
		session.WithLogger(logger.Named("session")),
	)
	sess.Load(ctx)

	replies := session.NewReplyScheduler(cfg.ReplyDelayMin, cfg.ReplyDelayMax, rand.New(rand.NewSource(time.Now().UnixNano())))

	bot, err := telegram.New(cfg.TelegramBotToken, sess, replies, cfg.MessageParseMode, cfg.OwnerChatID, logger.Named("telegram"))
	if err != nil {
		logger.Fatalf("failed to create bot: %v", err)
	}

	sim := scheduler.New(sess, cfg.NotifyInterval, rand.New(rand.NewSource(time.Now().UnixNano())), logger.Named("notify"),
		scheduler.WithDelivery(bot.Notify),
		scheduler.WithLocation(loc),
	)
	if err := sim.Start(); err != nil {
		logger.Fatalf("failed to start notification simulator: %v", err)
	}
	defer sim.Stop()

	bot.Start(ctx)
	logger.Info("👋 shutting down")
}
