package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"teamgraph/backend/internal/discord"
	"teamgraph/backend/internal/graph"
	"teamgraph/backend/pkg/config"
	"teamgraph/backend/pkg/logger"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting Discord collector...")

	if cfg.DiscordBotToken == "" {
		log.Fatal("DISCORD_BOT_TOKEN is required")
	}
	if cfg.DiscordGuildID == "" {
		log.Fatal("DISCORD_GUILD_ID is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer driver.Close(context.Background())

	graphRepo := graph.NewRepository(driver)
	if err := graphRepo.EnsureConstraints(ctx); err != nil {
		log.Warn("Failed to ensure graph constraints", zap.Error(err))
	}

	dg, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		log.Fatal("Failed to create Discord session", zap.Error(err))
	}

	collector := discord.NewCollector(dg, graphRepo, cfg.DiscordMessagesPerChannel, log)
	snap, err := collector.Collect(ctx, cfg.DiscordGuildID)
	if err != nil {
		log.Fatal("Failed to collect guild", zap.String("guild_id", cfg.DiscordGuildID), zap.Error(err))
	}

	log.Info("Collector finished",
		zap.String("guild_id", cfg.DiscordGuildID),
		zap.Int("users", len(snap.Users)),
		zap.Int("threads", len(snap.Threads)),
	)
}
