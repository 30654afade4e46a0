package bot

// Watchlist monitor: a background loop that re-prices every watched token
// and messages the chat when a price moved past the configured threshold
// since the last alert. Background fetches retry on transient failures;
// user-triggered commands never do.

import (
	"context"
	"fmt"
	"math"
	"time"

	"jetpump-terminal/internal/clients_api/jetpump"
	"jetpump-terminal/internal/format"
	storage "jetpump-terminal/internal/infra/fs"
	log "jetpump-terminal/internal/infra/log"
	"jetpump-terminal/internal/infra/retry"

	"go.uber.org/zap"
)

func pollInterval(seconds int) time.Duration {
	if seconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(seconds) * time.Second
}

// RunWatchMonitor blocks until ctx is cancelled.
func (h *Handler) RunWatchMonitor(ctx context.Context) {
	interval := pollInterval(h.cfg.App.WatchInterval)
	log.LogInfo("Starting watch monitor",
		zap.Duration("interval", interval),
		zap.Float64("move_pct", h.cfg.App.WatchMovePct))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.LogInfo("Watch monitor stopped")
			return
		case <-ticker.C:
			h.checkWatchlists(ctx)
		}
	}
}

func (h *Handler) checkWatchlists(ctx context.Context) {
	chats, err := h.watchlists.Chats()
	if err != nil {
		log.LogError("Watchlist scan failed", zap.Error(err))
		return
	}

	for _, chatID := range chats {
		entries, err := h.watchlists.Load(chatID)
		if err != nil {
			log.LogWarn("Watchlist load failed", zap.Int64("chat_id", chatID), zap.Error(err))
			continue
		}

		for _, entry := range entries {
			if ctx.Err() != nil {
				return
			}
			h.checkEntry(ctx, chatID, entry)
		}
	}
}

func (h *Handler) checkEntry(ctx context.Context, chatID int64, entry storage.WatchEntry) {
	var info *jetpump.TokenInfo
	err := retry.Do(ctx, retry.Options{MaxRetries: 2, BaseDelay: time.Second}, func() error {
		var err error
		rctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		info, err = h.api.GetTokenInfo(rctx, entry.TokenAddress)
		return err
	})
	if err != nil {
		log.LogDebug("Watch refresh failed",
			zap.String("token", entry.TokenAddress),
			zap.Error(err))
		return
	}
	if info.Metrics == nil {
		return
	}

	price := info.Metrics.PriceSOL
	if entry.LastPriceSOL == 0 {
		// No anchor yet; set one silently.
		h.watchlists.UpdateAnchor(chatID, entry.TokenAddress, price)
		return
	}

	movePct := (price - entry.LastPriceSOL) / entry.LastPriceSOL * 100
	if math.Abs(movePct) < h.cfg.App.WatchMovePct {
		return
	}

	emoji, word := "📈", "up"
	if movePct < 0 {
		emoji, word = "📉", "down"
	}
	text := fmt.Sprintf("%s <b>%s</b> is %s %.1f%%\nPrice: %s SOL\n<code>%s</code>",
		emoji, entry.Symbol, word, math.Abs(movePct),
		format.TokenPrice(price), entry.TokenAddress)

	h.sendHTMLText(chatID, text)

	if err := h.watchlists.UpdateAnchor(chatID, entry.TokenAddress, price); err != nil {
		log.LogWarn("Anchor update failed", zap.String("token", entry.TokenAddress), zap.Error(err))
	}

	log.LogInfo("Watch alert sent",
		zap.Int64("chat_id", chatID),
		zap.String("token", entry.TokenAddress),
		zap.Float64("move_pct", movePct))
}
