package bot

// The trading screen. Opening a token mounts a tokenview.Controller for the
// chat: it polls the snapshot, rides the live metrics feed and carries trade
// submissions. One screen per chat; opening another token replaces it.

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"jetpump-terminal/internal/clients_api/gateway"
	"jetpump-terminal/internal/features/tg_charts"
	"jetpump-terminal/internal/features/tokenview"
	log "jetpump-terminal/internal/infra/log"
	"jetpump-terminal/internal/solkey"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Callback actions on the screen keyboard.
const (
	cbBuy     = "screen:buy"
	cbSell    = "screen:sell"
	cbChart   = "screen:chart"
	cbRefresh = "screen:refresh"
	cbClose   = "screen:close"
)

func screenKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🟩 Buy", cbBuy),
			tgbotapi.NewInlineKeyboardButtonData("🟥 Sell", cbSell),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Chart", cbChart),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", cbRefresh),
			tgbotapi.NewInlineKeyboardButtonData("✖ Close", cbClose),
		),
	)
}

func (h *Handler) handleTokenScreen(ctx context.Context, message *tgbotapi.Message, address string) {
	if err := solkey.ValidateAddress(address); err != nil {
		h.reply(message, "That does not look like a token address.")
		return
	}

	chatID := message.Chat.ID

	// Replace any screen the chat already has.
	h.mu.Lock()
	if old := h.screens[chatID]; old != nil {
		delete(h.screens, chatID)
		h.mu.Unlock()
		old.controller.Unmount()
	} else {
		h.mu.Unlock()
	}

	controller := tokenview.New(h.api, h.gatewayConfig(), nil)
	controller.SetPollInterval(pollInterval(h.cfg.App.PollInterval))
	controller.Mount(ctx, address)

	snap := controller.Snapshot()
	if snap.Token == nil {
		controller.Unmount()
		h.reply(message, "Token not found.")
		return
	}

	h.mu.Lock()
	h.screens[chatID] = &screen{
		controller: controller,
		token:      address,
		symbol:     snap.Token.Token.Symbol,
	}
	h.mu.Unlock()

	msg := tgbotapi.NewMessage(chatID, renderTokenCard(snap.Token, snap.Balance, snap.Settings))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = screenKeyboard()
	h.send(msg)
}

func (h *Handler) handleCloseScreen(message *tgbotapi.Message) {
	h.mu.Lock()
	s := h.screens[message.Chat.ID]
	delete(h.screens, message.Chat.ID)
	h.mu.Unlock()

	if s == nil {
		h.reply(message, "No screen is open.")
		return
	}

	s.controller.Unmount()
	h.reply(message, fmt.Sprintf("Closed %s.", s.symbol))
}

func (h *Handler) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID

	h.mu.Lock()
	s := h.screens[chatID]
	h.mu.Unlock()

	if s == nil {
		h.answerCallback(query.ID, "Screen is gone, open it again with /token")
		return
	}

	switch query.Data {
	case cbBuy:
		h.submitFromCallback(query, s, true)

	case cbSell:
		h.submitFromCallback(query, s, false)

	case cbChart:
		h.answerCallback(query.ID, "")
		h.sendChart(chatID, s)

	case cbRefresh:
		h.answerCallback(query.ID, "")
		snap := s.controller.Snapshot()
		if snap.Token == nil {
			h.sendText(chatID, "No data yet, try again in a moment.")
			return
		}
		text := renderTokenCard(snap.Token, snap.Balance, snap.Settings)
		if len(snap.History) > 0 {
			text += "\n\n<b>Recent trades</b>"
			limit := len(snap.History)
			if limit > 5 {
				limit = 5
			}
			for _, e := range snap.History[:limit] {
				text += "\n" + renderHistoryEntry(e)
			}
		}
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = screenKeyboard()
		h.send(msg)

	case cbClose:
		h.mu.Lock()
		delete(h.screens, chatID)
		h.mu.Unlock()
		s.controller.Unmount()
		h.answerCallback(query.ID, "Closed")
		h.sendText(chatID, fmt.Sprintf("Closed %s.", s.symbol))
	}
}

func (h *Handler) submitFromCallback(query *tgbotapi.CallbackQuery, s *screen, buy bool) {
	var err error
	if buy {
		err = s.controller.SubmitBuy()
	} else {
		err = s.controller.SubmitSell()
	}

	switch {
	case err == nil:
		h.answerCallback(query.ID, "Submitted, waiting for the result")
	case errors.Is(err, gateway.ErrSubmitInFlight):
		h.answerCallback(query.ID, "Previous trade still pending")
	case errors.Is(err, gateway.ErrNotSubscribed):
		h.answerCallback(query.ID, "Live channel is down, reopen the screen")
	default:
		log.LogError("Trade submit failed", zap.Error(err))
		h.answerCallback(query.ID, "Submit failed")
	}
}

func (h *Handler) sendChart(chatID int64, s *screen) {
	snap := s.controller.Snapshot()
	if len(snap.Prices) < 2 {
		h.sendText(chatID, "Not enough price history yet, wait for a few updates.")
		return
	}

	chartsDir := filepath.Join(h.cfg.App.DataDir, "charts")
	path, err := tg_charts.GeneratePriceChart(chartsDir, s.symbol, snap.Prices)
	if err != nil {
		log.LogError("Chart render failed", zap.String("token", s.token), zap.Error(err))
		h.sendText(chatID, "Could not render the chart.")
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	photo.Caption = fmt.Sprintf("%s, last %d updates", s.symbol, len(snap.Prices))
	h.send(photo)
}

func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.LogDebug("Callback answer failed", zap.Error(err))
	}
}

func (h *Handler) sendText(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) sendHTMLText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	h.send(msg)
}
