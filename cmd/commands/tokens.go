package commands

// One-off market commands for the terminal CLI, useful for checking the
// backend without a Telegram round-trip.

import (
	"context"
	"fmt"
	"time"

	"jetpump-terminal/internal/audit"
	"jetpump-terminal/internal/clients_api/jetpump"
	"jetpump-terminal/internal/format"
	"jetpump-terminal/internal/infra/config"

	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [address]",
	Short: "List tokens, or show one token's market data",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTokens,
}

func runTokens(cmd *cobra.Command, args []string) error {
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

	if len(args) == 1 {
		info, err := client.GetTokenInfo(ctx, args[0])
		if err != nil {
			return err
		}
		printToken(info)
		return nil
	}

	resp, err := client.GetTokens(ctx)
	if err != nil {
		return err
	}

	for _, info := range resp.Data {
		badge := audit.Assess(info.Token.MintAuthority, info.Token.FreezeAuthority)
		line := fmt.Sprintf("%-10s %s %s", info.Token.Symbol, badge.String(), info.Token.Address)
		if info.Metrics != nil {
			line += fmt.Sprintf("  MC $%s", format.MarketCap(info.Metrics.MarketCap, 1))
		}
		fmt.Println(line)
	}
	return nil
}

func printToken(info *jetpump.TokenInfo) {
	badge := audit.Assess(info.Token.MintAuthority, info.Token.FreezeAuthority)
	fmt.Printf("%s (%s)  %s\n", info.Token.Name, info.Token.Symbol, badge.String())
	fmt.Printf("Address:    %s\n", info.Token.Address)
	if m := info.Metrics; m != nil {
		fmt.Printf("Price:      %s SOL ($%s)\n", format.TokenPrice(m.PriceSOL), format.TokenPrice(m.PriceUSD))
		fmt.Printf("Market cap: $%s\n", format.MarketCap(m.MarketCap, 1))
		fmt.Printf("Liquidity:  $%s\n", format.MarketCap(m.Liquidity.USD, 1))
		fmt.Printf("Vol 24h:    $%s (%d buys / %d sells)\n",
			format.MarketCap(m.Volume.H24, 1), m.Txns.H24.Buys, m.Txns.H24.Sells)
	} else {
		fmt.Println("No market data indexed yet.")
	}
	if age := format.TimeElapsed(info.Token.CreatedAt); age != "" {
		fmt.Printf("Age:        %s\n", age)
	}
}
