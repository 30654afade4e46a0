package bot

// Message builders. Everything here is pure text assembly so it can be
// tested without a live bot.

import (
	"fmt"
	"strings"

	"jetpump-terminal/internal/audit"
	"jetpump-terminal/internal/clients_api/jetpump"
	"jetpump-terminal/internal/format"
)

// renderTokenList builds the /tokens answer, one line per token.
func renderTokenList(tokens []jetpump.TokenInfo) string {
	if len(tokens) == 0 {
		return "No tokens listed right now."
	}

	var b strings.Builder
	b.WriteString("<b>Tokens</b>\n\n")
	for i, info := range tokens {
		badge := audit.Assess(info.Token.MintAuthority, info.Token.FreezeAuthority)
		b.WriteString(fmt.Sprintf("%d. %s <b>%s</b> (%s)", i+1, badge.Emoji(), info.Token.Symbol, info.Token.Name))
		if info.Metrics != nil {
			b.WriteString(fmt.Sprintf(" — MC $%s", format.MarketCap(info.Metrics.MarketCap, 1)))
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("   <code>%s</code>\n", info.Token.Address))
	}
	b.WriteString("\nOpen one with /token {address}")
	return b.String()
}

// renderTokenCard builds the token screen message.
func renderTokenCard(info *jetpump.TokenInfo, balance float64, settings jetpump.UserSettings) string {
	badge := audit.Assess(info.Token.MintAuthority, info.Token.FreezeAuthority)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> (%s) %s %s\n", info.Token.Name, info.Token.Symbol, badge.Emoji(), badge.String()))
	b.WriteString(fmt.Sprintf("<code>%s</code>\n\n", info.Token.Address))

	if m := info.Metrics; m != nil {
		b.WriteString(fmt.Sprintf("Price: %s SOL ($%s)\n", format.TokenPrice(m.PriceSOL), format.TokenPrice(m.PriceUSD)))
		b.WriteString(fmt.Sprintf("Market cap: $%s\n", format.MarketCap(m.MarketCap, 1)))
		b.WriteString(fmt.Sprintf("Liquidity: $%s\n", format.MarketCap(m.Liquidity.USD, 1)))
		b.WriteString(fmt.Sprintf("Vol 24h: $%s | Txns 24h: %d buys / %d sells\n",
			format.MarketCap(m.Volume.H24, 1), m.Txns.H24.Buys, m.Txns.H24.Sells))
		if age := format.TimeElapsed(info.Token.CreatedAt); age != "" {
			b.WriteString(fmt.Sprintf("Age: %s\n", age))
		}
	} else {
		b.WriteString("No market data indexed yet.\n")
	}

	b.WriteString(fmt.Sprintf("\nYour balance: %s %s\n", format.Amount(balance), info.Token.Symbol))
	b.WriteString(fmt.Sprintf("Buy %s SOL | Sell %s%% | Fee %s | Slip %s%%\n",
		settings.Buy, settings.Sell, settings.Fee, settings.Slippage))
	b.WriteString("Adjust with /buy /sell /fee /slip")
	return b.String()
}

// renderHistoryEntry formats one trade for the screen's history block.
func renderHistoryEntry(e jetpump.TxHistoryEntry) string {
	arrow := "🟩 BUY"
	if e.TxType == "sell" {
		arrow = "🟥 SELL"
	}

	if e.Status == "error" {
		reason := strings.ReplaceAll(e.ErrorType, "_", " ")
		return fmt.Sprintf("%s failed (%s)", arrow, reason)
	}

	line := fmt.Sprintf("%s %s SOL", arrow, format.Amount(e.AmountSOL))
	if e.AmountTokens > 0 {
		line += fmt.Sprintf(" for %s tokens", format.Amount(e.AmountTokens))
	}
	if e.PricePerToken > 0 {
		line += fmt.Sprintf(" @ %s", format.TokenPrice(e.PricePerToken))
	}
	if age := format.TimeElapsed(e.Timestamp); age != "" {
		line += fmt.Sprintf(" (%s ago)", age)
	}
	return line
}

// renderWallet builds the /wallet answer.
func renderWallet(w *jetpump.WalletData) string {
	return fmt.Sprintf(
		"<b>Wallet</b>\n<code>%s</code>\n\nBalance: %s SOL\n\nDeposit by sending SOL to the address above.\n/withdraw {address} {amount} to move funds out.",
		w.Address, format.Amount(w.Balance))
}

// renderPositions builds the /positions answer from both lists.
func renderPositions(open, closed []jetpump.Position) string {
	if len(open) == 0 && len(closed) == 0 {
		return "No positions yet."
	}

	var b strings.Builder
	if len(open) > 0 {
		b.WriteString("<b>Open positions</b>\n")
		for _, p := range open {
			b.WriteString(renderPosition(p))
		}
	}
	if len(closed) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("<b>Closed positions</b>\n")
		for _, p := range closed {
			b.WriteString(renderPosition(p))
		}
	}
	return b.String()
}

func renderPosition(p jetpump.Position) string {
	sign := ""
	if p.PnLSOL > 0 {
		sign = "+"
	}
	return fmt.Sprintf("• <b>%s</b>: %s tokens, %s%s SOL (%s%.1f%%)\n",
		p.TokenSymbol, format.Amount(p.Amount), sign, format.Amount(p.PnLSOL), sign, p.PnLPercent)
}

// renderReferral builds the /referral answer.
func renderReferral(r *jetpump.ReferralData) string {
	return fmt.Sprintf(
		"<b>Referral</b>\n\nCode: <code>%s</code>\nCommission: %.1f%%\nInvited: %d",
		r.Code, r.CommissionPercent, r.InvitedCount)
}

// renderWithdrawals builds the withdrawal history answer.
func renderWithdrawals(list []jetpump.Withdrawal) string {
	if len(list) == 0 {
		return "No withdrawals yet."
	}

	var b strings.Builder
	b.WriteString("<b>Withdrawals</b>\n\n")
	for _, wd := range list {
		b.WriteString(fmt.Sprintf("• %s SOL to <code>%s</code> — %s",
			format.Amount(wd.Amount), format.ShortAddress(wd.Address, 4), wd.Status))
		if age := format.TimeElapsed(wd.CreatedAt); age != "" {
			b.WriteString(fmt.Sprintf(" (%s ago)", age))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderWatchlist builds the /watchlist answer.
func renderWatchlist(symbols []string) string {
	if len(symbols) == 0 {
		return "Watchlist is empty. Add a token with /watch {address}."
	}
	return "<b>Watchlist</b>\n• " + strings.Join(symbols, "\n• ")
}
