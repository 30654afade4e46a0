package bot

// Command handlers without screen state: market lookups, trading defaults,
// positions, referral and the watchlist commands.

import (
	"context"
	"fmt"
	"time"

	"jetpump-terminal/internal/clients_api/jetpump"
	storage "jetpump-terminal/internal/infra/fs"
	log "jetpump-terminal/internal/infra/log"
	"jetpump-terminal/internal/numinput"
	"jetpump-terminal/internal/solkey"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (h *Handler) handleTokens(ctx context.Context, message *tgbotapi.Message) {
	rctx, cancel := requestCtx(ctx)
	defer cancel()

	resp, err := h.api.GetTokens(rctx)
	if err != nil {
		h.reply(message, "Could not load the token list, try again later.")
		return
	}

	h.replyHTML(message, renderTokenList(resp.Data))
}

func (h *Handler) handleSearch(ctx context.Context, message *tgbotapi.Message, address string) {
	if err := solkey.ValidateAddress(address); err != nil {
		h.reply(message, "That does not look like a token address.")
		return
	}

	rctx, cancel := requestCtx(ctx)
	defer cancel()

	info, err := h.api.SearchToken(rctx, address)
	if err != nil {
		h.reply(message, "Token not found.")
		return
	}

	h.replyHTML(message, renderTokenCard(info, 0, jetpump.DefaultSettings())+
		"\n\nOpen the trading screen with /token "+info.Token.Address)
}

// handleSettingChange sanitizes one trading default and persists the full
// settings row. fee and buy are decimals, slip and sell are integers in
// [1,100].
func (h *Handler) handleSettingChange(ctx context.Context, message *tgbotapi.Message, field, raw string) {
	var value string
	switch field {
	case "fee", "buy":
		v, _, ok := numinput.SanitizeDecimal(raw, numinput.NoCaretHint)
		if !ok || v == "" {
			h.reply(message, "Enter a decimal amount, like 0.01")
			return
		}
		value = v
	case "slip", "sell":
		v, _, ok := numinput.SanitizeInteger(raw)
		if !ok {
			h.reply(message, "Enter a whole percent between 1 and 100")
			return
		}
		value = numinput.CommitInteger(v)
	}

	rctx, cancel := requestCtx(ctx)
	defer cancel()

	settings, err := h.api.GetSettings(rctx)
	if err != nil {
		defaults := jetpump.DefaultSettings()
		settings = &defaults
	}

	switch field {
	case "fee":
		settings.Fee = value
	case "buy":
		settings.Buy = value
	case "slip":
		settings.Slippage = value
	case "sell":
		settings.Sell = value
	}

	updated, err := h.api.UpdateSettings(rctx, *settings)
	if err != nil {
		h.reply(message, "Could not save settings, try again later.")
		return
	}

	// A mounted screen must trade with the new values immediately.
	h.mu.Lock()
	s := h.screens[message.Chat.ID]
	h.mu.Unlock()
	if s != nil {
		if err := s.controller.UpdateSettings(rctx, *updated); err != nil {
			log.LogWarn("Screen settings refresh failed", zap.Error(err))
		}
	}

	h.reply(message, fmt.Sprintf("Saved. Buy %s SOL | Sell %s%% | Fee %s | Slip %s%%",
		updated.Buy, updated.Sell, updated.Fee, updated.Slippage))
}

func (h *Handler) handlePositions(ctx context.Context, message *tgbotapi.Message) {
	rctx, cancel := requestCtx(ctx)
	defer cancel()

	// The two lists are independent; show whatever loaded.
	var open, closed []jetpump.Position
	if resp, err := h.api.GetOpenPositions(rctx); err == nil {
		open = resp.Data
	} else {
		log.LogWarn("Open positions fetch failed", zap.Error(err))
	}
	if resp, err := h.api.GetClosedPositions(rctx); err == nil {
		closed = resp.Data
	} else {
		log.LogWarn("Closed positions fetch failed", zap.Error(err))
	}

	h.replyHTML(message, renderPositions(open, closed))
}

func (h *Handler) handleReferral(ctx context.Context, message *tgbotapi.Message) {
	rctx, cancel := requestCtx(ctx)
	defer cancel()

	referral, err := h.api.GetReferral(rctx)
	if err != nil {
		h.reply(message, "Could not load referral data.")
		return
	}

	h.replyHTML(message, renderReferral(referral))
}

func (h *Handler) handleWatch(ctx context.Context, message *tgbotapi.Message, address string) {
	rctx, cancel := requestCtx(ctx)
	defer cancel()

	info, err := h.api.GetTokenInfo(rctx, address)
	if err != nil {
		h.reply(message, "Token not found.")
		return
	}

	entry := storage.WatchEntry{
		TokenAddress: info.Token.Address,
		Symbol:       info.Token.Symbol,
		AddedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if info.Metrics != nil {
		entry.LastPriceSOL = info.Metrics.PriceSOL
	}

	if err := h.watchlists.Add(message.Chat.ID, entry); err != nil {
		log.LogError("Watchlist add failed", zap.Error(err))
		h.reply(message, "Could not update the watchlist.")
		return
	}

	h.reply(message, fmt.Sprintf("Watching %s. You will hear about moves over %.0f%%.",
		info.Token.Symbol, h.cfg.App.WatchMovePct))
}

func (h *Handler) handleUnwatch(message *tgbotapi.Message, address string) {
	if err := h.watchlists.Remove(message.Chat.ID, address); err != nil {
		log.LogError("Watchlist remove failed", zap.Error(err))
		h.reply(message, "Could not update the watchlist.")
		return
	}
	h.reply(message, "Removed from the watchlist.")
}

func (h *Handler) handleWatchlist(message *tgbotapi.Message) {
	entries, err := h.watchlists.Load(message.Chat.ID)
	if err != nil {
		log.LogError("Watchlist load failed", zap.Error(err))
		h.reply(message, "Could not load the watchlist.")
		return
	}

	symbols := make([]string, 0, len(entries))
	for _, e := range entries {
		symbols = append(symbols, fmt.Sprintf("%s <code>%s</code>", e.Symbol, e.TokenAddress))
	}
	h.replyHTML(message, renderWatchlist(symbols))
}
