package commands

// Command to run the Telegram terminal
// Initializes configuration and the backend client
// Starts the command handler and the watchlist monitor
// Implements graceful shutdown for proper termination

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	bot "jetpump-terminal/bots_terminal"
	"jetpump-terminal/internal/clients_api/jetpump"
	"jetpump-terminal/internal/infra/config"
	logging "jetpump-terminal/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram terminal (command handler + watchlist monitor)",
	Long:  `Run the complete terminal: the Telegram command handler with the live trading screen and the background watchlist price monitor.`,
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.LogError("Failed to load config", zap.Error(err))
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := os.MkdirAll(cfg.App.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	client := jetpump.NewClient(cfg.API.BaseURL)
	if cfg.API.InitData != "" {
		client.SetCredential(cfg.API.InitData)
	} else {
		logging.LogWarn("API_INIT_DATA not provided, backend requests will be unauthorized")
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logging.LogError("Failed to create Telegram bot", zap.Error(err))
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logging.LogInfo("Authorized on Telegram", zap.String("username", botAPI.Self.UserName))

	handler := bot.NewHandler(botAPI, client, cfg)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		handler.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		handler.RunWatchMonitor(ctx)
	}()

	logging.LogSuccess("Terminal is running", zap.String("status", "active"))

	<-ctx.Done()
	logging.LogInfo("Shutdown signal received, gracefully stopping...")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.LogSuccess("Terminal stopped gracefully")
	case <-time.After(10 * time.Second):
		logging.LogWarn("Timeout waiting for shutdown, forcing exit")
	}

	return nil
}
