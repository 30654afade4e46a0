package bot

// Package bot contains the Telegram terminal: the command loop, the token
// trading screen and the watchlist monitor.

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"jetpump-terminal/internal/clients_api/gateway"
	"jetpump-terminal/internal/clients_api/jetpump"
	"jetpump-terminal/internal/features/tokenview"
	"jetpump-terminal/internal/infra/config"
	storage "jetpump-terminal/internal/infra/fs"
	log "jetpump-terminal/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Handler owns the bot's runtime state: one mounted token screen per chat
// and the shared API client.
type Handler struct {
	bot        *tgbotapi.BotAPI
	api        *jetpump.Client
	cfg        *config.Config
	watchlists *storage.Watchlists

	allowed map[int64]bool

	mu      sync.Mutex
	screens map[int64]*screen
}

// screen is one chat's mounted token view.
type screen struct {
	controller *tokenview.Controller
	token      string
	symbol     string
}

// NewHandler wires the bot against the API client and config.
func NewHandler(botAPI *tgbotapi.BotAPI, api *jetpump.Client, cfg *config.Config) *Handler {
	allowed := make(map[int64]bool, len(cfg.Telegram.AllowedChats))
	for _, c := range cfg.Telegram.AllowedChats {
		if id, err := strconv.ParseInt(strings.TrimSpace(c), 10, 64); err == nil {
			allowed[id] = true
		}
	}

	return &Handler{
		bot:        botAPI,
		api:        api,
		cfg:        cfg,
		watchlists: storage.NewWatchlists(cfg.App.DataDir),
		allowed:    allowed,
		screens:    make(map[int64]*screen),
	}
}

func (h *Handler) chatAllowed(chatID int64) bool {
	if len(h.allowed) == 0 {
		return true
	}
	return h.allowed[chatID]
}

// Run processes updates until ctx is cancelled. Blocking.
func (h *Handler) Run(ctx context.Context) {
	log.LogInfo("Starting command handler", zap.Int("allowed_chats", len(h.allowed)))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			h.unmountAll()
			return
		case update, ok := <-updates:
			if !ok {
				h.unmountAll()
				return
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		if h.chatAllowed(update.CallbackQuery.Message.Chat.ID) {
			h.handleCallback(ctx, update.CallbackQuery)
		}
		return
	}

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	chatID := update.Message.Chat.ID
	if !h.chatAllowed(chatID) {
		return
	}

	command := update.Message.Command()
	args := strings.TrimSpace(update.Message.CommandArguments())

	log.LogDebug("Received command",
		zap.String("command", command),
		zap.String("args", args),
		zap.Int64("chatID", chatID))

	switch command {
	case "start", "help":
		h.handleHelp(update.Message)

	case "tokens":
		h.handleTokens(ctx, update.Message)

	case "search":
		if args == "" {
			h.reply(update.Message, "Usage: /search {address}")
			return
		}
		h.handleSearch(ctx, update.Message, args)

	case "token":
		if args == "" {
			h.reply(update.Message, "Usage: /token {address}")
			return
		}
		h.handleTokenScreen(ctx, update.Message, args)

	case "close":
		h.handleCloseScreen(update.Message)

	case "fee", "slip", "buy", "sell":
		if args == "" {
			h.reply(update.Message, "Usage: /"+command+" {value}")
			return
		}
		h.handleSettingChange(ctx, update.Message, command, args)

	case "wallet":
		h.handleWallet(ctx, update.Message)

	case "export":
		h.handleExport(ctx, update.Message)

	case "genwallet":
		h.handleGenerateWallet(ctx, update.Message)

	case "import":
		if args == "" {
			h.reply(update.Message, "Usage: /import {base58 private key}")
			return
		}
		h.handleImportWallet(ctx, update.Message, args)

	case "withdraw":
		h.handleWithdraw(ctx, update.Message, args)

	case "withdrawals":
		h.handleWithdrawals(ctx, update.Message)

	case "positions":
		h.handlePositions(ctx, update.Message)

	case "referral":
		h.handleReferral(ctx, update.Message)

	case "watch":
		if args == "" {
			h.reply(update.Message, "Usage: /watch {address}")
			return
		}
		h.handleWatch(ctx, update.Message, args)

	case "unwatch":
		if args == "" {
			h.reply(update.Message, "Usage: /unwatch {address}")
			return
		}
		h.handleUnwatch(update.Message, args)

	case "watchlist":
		h.handleWatchlist(update.Message)
	}
}

func (h *Handler) handleHelp(message *tgbotapi.Message) {
	helpText := "" +
		"<b>JetPump terminal</b>\n\n" +
		"Market:\n" +
		"• /tokens - listed tokens\n" +
		"• /search {address} - find a token\n" +
		"• /token {address} - open the trading screen\n" +
		"• /close - leave the trading screen\n\n" +
		"Trading defaults:\n" +
		"• /buy {sol} /sell {percent} /fee {sol} /slip {percent}\n\n" +
		"Wallet:\n" +
		"• /wallet - address and balance\n" +
		"• /withdraw {address} {amount} - send SOL out\n" +
		"• /withdrawals - withdrawal history\n" +
		"• /export /import {key} /genwallet\n\n" +
		"Other:\n" +
		"• /positions /referral\n" +
		"• /watch {address} /unwatch {address} /watchlist"

	msg := tgbotapi.NewMessage(message.Chat.ID, helpText)
	msg.ParseMode = tgbotapi.ModeHTML
	h.send(msg)
}

// reply sends plain text as an answer to the given message.
func (h *Handler) reply(message *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID
	h.send(msg)
}

// replyHTML sends HTML-formatted text as an answer.
func (h *Handler) replyHTML(message *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyToMessageID = message.MessageID
	h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		log.LogError("Failed to send message", zap.Error(err))
	}
}

func (h *Handler) unmountAll() {
	h.mu.Lock()
	screens := h.screens
	h.screens = make(map[int64]*screen)
	h.mu.Unlock()

	for chatID, s := range screens {
		s.controller.Unmount()
		log.LogInfo("Screen unmounted on shutdown", zap.Int64("chat_id", chatID))
	}
}

// gatewayConfig builds the per-session gateway config from app config.
func (h *Handler) gatewayConfig() gateway.Config {
	return gateway.Config{
		URL:        h.cfg.Gateway.URL,
		Credential: h.cfg.API.InitData,
	}
}

// requestCtx bounds one command's backend calls.
func requestCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 30*time.Second)
}
