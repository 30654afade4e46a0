package commands

// Wallet commands for the terminal CLI: show the custodial wallet and
// generate a keypair locally without touching the backend.

import (
	"context"
	"fmt"
	"time"

	"jetpump-terminal/internal/clients_api/jetpump"
	"jetpump-terminal/internal/format"
	"jetpump-terminal/internal/infra/config"
	"jetpump-terminal/internal/solkey"

	"github.com/spf13/cobra"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show the custodial wallet address and balance",
	RunE:  runWallet,
}

var walletGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a Solana keypair locally and print it",
	RunE:  runWalletGenerate,
}

func init() {
	walletCmd.AddCommand(walletGenCmd)
}

func runWallet(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client := jetpump.NewClient(cfg.API.BaseURL)
	if cfg.API.InitData != "" {
		client.SetCredential(cfg.API.InitData)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	wallet, err := client.GetWallet(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Address: %s\n", wallet.Address)
	fmt.Printf("Balance: %s SOL\n", format.Amount(wallet.Balance))
	return nil
}

func runWalletGenerate(cmd *cobra.Command, args []string) error {
	kp, err := solkey.Generate()
	if err != nil {
		return err
	}

	fmt.Printf("Address:     %s\n", kp.Address)
	fmt.Printf("Private key: %s\n", kp.Export())
	fmt.Println("\nInstall it with /import in the bot, or keep it offline.")
	return nil
}
