package bot

// Wallet command handlers: balance, export, import, generate, withdrawals.

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"jetpump-terminal/internal/clients_api/jetpump"
	log "jetpump-terminal/internal/infra/log"
	"jetpump-terminal/internal/solkey"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (h *Handler) handleWallet(ctx context.Context, message *tgbotapi.Message) {
	rctx, cancel := requestCtx(ctx)
	defer cancel()

	wallet, err := h.api.GetWallet(rctx)
	if err != nil {
		h.reply(message, "Could not load the wallet.")
		return
	}

	h.replyHTML(message, renderWallet(wallet))
}

func (h *Handler) handleExport(ctx context.Context, message *tgbotapi.Message) {
	rctx, cancel := requestCtx(ctx)
	defer cancel()

	export, err := h.api.ExportWallet(rctx)
	if err != nil {
		h.reply(message, "Could not export the wallet.")
		return
	}

	// The key goes out in a separate message so the user can delete it
	// right after copying.
	h.replyHTML(message, "Private key below. <b>Delete the message once you saved it.</b>")
	msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("<code>%s</code>", export.PrivateKey))
	msg.ParseMode = tgbotapi.ModeHTML
	h.send(msg)
}

// handleGenerateWallet creates a keypair locally and installs it as the
// custodial wallet, then shows the key exactly once.
func (h *Handler) handleGenerateWallet(ctx context.Context, message *tgbotapi.Message) {
	kp, err := solkey.Generate()
	if err != nil {
		log.LogError("Keypair generation failed", zap.Error(err))
		h.reply(message, "Could not generate a wallet.")
		return
	}

	rctx, cancel := requestCtx(ctx)
	defer cancel()

	wallet, err := h.api.SetNewWallet(rctx, kp.Export())
	if err != nil {
		h.reply(message, "Generated a keypair but could not install it. Nothing changed.")
		return
	}

	h.replyHTML(message, fmt.Sprintf(
		"New wallet installed.\n<code>%s</code>\n\nPrivate key follows. <b>Save it now, it is not shown again.</b>",
		wallet.Address))
	msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("<code>%s</code>", kp.Export()))
	msg.ParseMode = tgbotapi.ModeHTML
	h.send(msg)
}

func (h *Handler) handleImportWallet(ctx context.Context, message *tgbotapi.Message, privateKey string) {
	rctx, cancel := requestCtx(ctx)
	defer cancel()

	wallet, err := h.api.SetNewWallet(rctx, privateKey)
	if err != nil {
		if errors.Is(err, solkey.ErrInvalidPrivateKey) {
			h.reply(message, "That private key is not valid. Expected the base58 64-byte form.")
			return
		}
		h.reply(message, "Could not import the wallet.")
		return
	}

	h.replyHTML(message, fmt.Sprintf("Wallet replaced.\n<code>%s</code>", wallet.Address))
}

// handleWithdraw validates locally against the last known balance before
// anything reaches the backend.
func (h *Handler) handleWithdraw(ctx context.Context, message *tgbotapi.Message, args string) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		h.reply(message, "Usage: /withdraw {address} {amount}")
		return
	}
	address := parts[0]
	amount, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		h.reply(message, "Amount must be a number, like 0.5")
		return
	}

	rctx, cancel := requestCtx(ctx)
	defer cancel()

	wallet, err := h.api.GetWallet(rctx)
	if err != nil {
		h.reply(message, "Could not check the balance, try again later.")
		return
	}

	status, err := h.api.Withdraw(rctx, address, amount, wallet.Balance)
	if err != nil {
		switch {
		case errors.Is(err, jetpump.ErrAmountNotPositive):
			h.reply(message, jetpump.ErrAmountNotPositive.Error())
		case errors.Is(err, jetpump.ErrInsufficientBalance):
			h.reply(message, jetpump.ErrInsufficientBalance.Error())
		case errors.Is(err, solkey.ErrInvalidAddress):
			h.reply(message, "That address is not a valid wallet address.")
		default:
			h.reply(message, "Withdrawal failed, try again later.")
		}
		return
	}

	if status.Success {
		h.reply(message, fmt.Sprintf("Withdrawal of %s SOL submitted.", parts[1]))
	} else {
		h.reply(message, "Withdrawal rejected: "+status.Message)
	}
}

func (h *Handler) handleWithdrawals(ctx context.Context, message *tgbotapi.Message) {
	rctx, cancel := requestCtx(ctx)
	defer cancel()

	resp, err := h.api.GetWithdrawals(rctx)
	if err != nil {
		h.reply(message, "Could not load withdrawal history.")
		return
	}

	h.replyHTML(message, renderWithdrawals(resp.Data))
}
