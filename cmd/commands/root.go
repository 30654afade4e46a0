package commands

// Root command for Cobra CLI
// Registers all subcommands (bot, tokens, wallet)

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jetpump-terminal",
	Short: "JetPump Terminal - Telegram bot for trading tokens on the JetPump launchpad",
	Long: `JetPump Terminal is a Go-based Telegram bot front-end for the JetPump trading
backend: token lists and search, a live trading screen with price charts,
wallet management, positions, referrals and watchlist price alerts.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(walletCmd)
}
