package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lllllllleong/translatorbot/internal/services"
	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
)

type botConfig struct {
	Token string `env:"DISCORD_TOKEN,required"`
}

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
}

func main() {
	if err := run(); err != nil {
		slog.Error("Bot stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// LoadConfig also loads .env, so it runs before the bot config is parsed.
	cfg, err := services.LoadConfig()
	if err != nil {
		return err
	}
	botCfg, err := env.ParseAs[botConfig]()
	if err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	orchestrator, err := services.NewOrchestrator(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize translator: %w", err)
	}
	defer orchestrator.Close()

	session, err := discordgo.New("Bot " + botCfg.Token)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsNone

	b := &bot{orchestrator: orchestrator}
	session.AddHandler(b.onInteraction)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Logged in.", "user", r.User.String(), "userId", r.User.ID)
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	defer session.Close()

	if _, err := session.ApplicationCommandBulkOverwrite(session.State.User.ID, "", commands()); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	<-ctx.Done()
	slog.Info("Shutting down.")
	return nil
}
