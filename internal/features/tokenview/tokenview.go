package tokenview

// Package tokenview drives the token trading screen. A Controller owns the
// screen's state: the fetched snapshot, the live metrics feed, the user's
// balance and trade history for the token, and the buy/sell submission path.
// Rendering is left to the caller; Snapshot returns a copy to draw from.

import (
	"context"
	"strings"
	"sync"
	"time"

	"jetpump-terminal/internal/clients_api/gateway"
	"jetpump-terminal/internal/clients_api/jetpump"
	"jetpump-terminal/internal/infra/log"

	"go.uber.org/zap"
)

// MaxPricePoints caps the in-memory price series used by the chart.
const MaxPricePoints = 100

// DefaultPollInterval is how often the snapshot is re-fetched while the
// screen is mounted.
const DefaultPollInterval = 15 * time.Second

// Trade failure classifications shown in the history list.
const (
	FailInsufficientBalance = "insufficient_balance"
	FailSlippage            = "slippage"
	FailLowLiquidity        = "low_liquidity"
	FailUnknown             = "unknown"
)

// PricePoint is one chart sample.
type PricePoint struct {
	Time     time.Time
	PriceSOL float64
	PriceUSD float64
}

// State is the renderable screen state. All slices are copies.
type State struct {
	Token    *jetpump.TokenInfo
	Settings jetpump.UserSettings
	Balance  float64
	History  []jetpump.TxHistoryEntry
	Prices   []PricePoint

	LiveLiquidityUSD float64
	LastLiveUpdate   time.Time
	SubmitInFlight   bool
}

// Updated fires after every state change, on the goroutine that caused it.
// The handler must not call back into the Controller.
type Updated func(State)

// Controller runs one mounted token screen.
type Controller struct {
	api       *jetpump.Client
	gwConfig  gateway.Config
	onUpdated Updated

	pollInterval time.Duration

	mu       sync.Mutex
	token    string
	state    State
	session  *gateway.Session
	lastLive time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Controller bound to the API client and gateway config.
func New(api *jetpump.Client, gwConfig gateway.Config, onUpdated Updated) *Controller {
	return &Controller{
		api:          api,
		gwConfig:     gwConfig,
		onUpdated:    onUpdated,
		pollInterval: DefaultPollInterval,
	}
}

// SetPollInterval overrides the refresh cadence. Call before Mount.
func (c *Controller) SetPollInterval(d time.Duration) { c.pollInterval = d }

// Mount loads the screen for tokenAddress and opens its live session.
// The four initial fetches are independent and land in any order; each
// writes its own piece of state. A fetch failure leaves that piece at its
// zero value and the screen still mounts, possibly on polling alone; the
// caller inspects Snapshot to tell an empty screen from a loaded one.
func (c *Controller) Mount(ctx context.Context, tokenAddress string) {
	c.mu.Lock()
	if c.token != "" {
		c.mu.Unlock()
		c.Unmount()
		c.mu.Lock()
	}
	c.token = tokenAddress
	c.state = State{Settings: jetpump.DefaultSettings()}
	c.lastLive = time.Time{}
	c.mu.Unlock()

	var fetchWg sync.WaitGroup
	fetchWg.Add(4)

	go func() {
		defer fetchWg.Done()
		info, err := c.api.GetTokenInfo(ctx, tokenAddress)
		if err != nil {
			log.LogWarn("Token info fetch failed", zap.String("token", tokenAddress), zap.Error(err))
			return
		}
		c.applyPolledInfo(info)
	}()
	go func() {
		defer fetchWg.Done()
		settings, err := c.api.GetSettings(ctx)
		if err != nil {
			log.LogWarn("Settings fetch failed", zap.Error(err))
			return
		}
		c.withState(func(s *State) { s.Settings = *settings })
	}()
	go func() {
		defer fetchWg.Done()
		bal, err := c.api.GetTokenBalance(ctx, tokenAddress)
		if err != nil {
			log.LogWarn("Balance fetch failed", zap.String("token", tokenAddress), zap.Error(err))
			return
		}
		c.withState(func(s *State) { s.Balance = bal.Balance })
	}()
	go func() {
		defer fetchWg.Done()
		hist, err := c.api.GetTokenTransactions(ctx, tokenAddress)
		if err != nil {
			log.LogWarn("History fetch failed", zap.String("token", tokenAddress), zap.Error(err))
			return
		}
		c.withState(func(s *State) { s.History = mergeHistory(s.History, hist.Data) })
	}()
	fetchWg.Wait()

	session, err := gateway.Connect(ctx, tokenAddress, c.gwConfig, gateway.Callbacks{
		OnMetrics:  c.onLiveMetrics,
		OnTxStatus: c.onTxStatus,
		OnClosed: func(err error) {
			if err != nil {
				log.LogWarn("Live session dropped", zap.String("token", tokenAddress), zap.Error(err))
			}
		},
	})
	if err != nil {
		// The screen still works from polling alone.
		log.LogWarn("Live session unavailable", zap.String("token", tokenAddress), zap.Error(err))
	} else {
		c.mu.Lock()
		c.session = session
		c.mu.Unlock()
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go c.pollLoop(pollCtx, tokenAddress)

	log.LogSuccess("Token screen mounted", zap.String("token", tokenAddress))
}

// Unmount closes the live session and stops polling. Deterministic: when it
// returns nothing touches the state anymore.
func (c *Controller) Unmount() {
	c.mu.Lock()
	session := c.session
	cancel := c.cancel
	token := c.token
	c.session = nil
	c.cancel = nil
	c.token = ""
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if session != nil {
		session.Close()
	}
	c.wg.Wait()

	if token != "" {
		log.LogInfo("Token screen unmounted", zap.String("token", token))
	}
}

// Snapshot returns a copy of the current screen state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyStateLocked()
}

func (c *Controller) copyStateLocked() State {
	s := c.state
	s.History = append([]jetpump.TxHistoryEntry(nil), c.state.History...)
	s.Prices = append([]PricePoint(nil), c.state.Prices...)
	if c.session != nil {
		s.SubmitInFlight = c.session.SubmitInFlight()
	}
	return s
}

// withState mutates state under the lock and notifies the listener.
func (c *Controller) withState(mutate func(*State)) {
	c.mu.Lock()
	mutate(&c.state)
	snap := c.copyStateLocked()
	cb := c.onUpdated
	c.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

func (c *Controller) pollLoop(ctx context.Context, tokenAddress string) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := c.api.GetTokenInfo(ctx, tokenAddress)
			if err != nil {
				log.LogDebug("Poll refresh failed", zap.String("token", tokenAddress), zap.Error(err))
				continue
			}
			c.applyPolledInfo(info)
		}
	}
}

// applyPolledInfo merges a fetched snapshot. A polled metrics row older than
// the last live update is stale for price purposes: the identity and pool
// fields are still taken, but the kept metrics must not re-enter the price
// series or the chart fills up with copies of the last live sample.
func (c *Controller) applyPolledInfo(info *jetpump.TokenInfo) {
	c.withState(func(s *State) {
		stale := false
		if info.Metrics != nil && !c.lastLive.IsZero() {
			if ts, err := parseTimestamp(info.Metrics.Timestamp); err == nil && ts.Before(c.lastLive) {
				stale = true
				if s.Token != nil {
					info.Metrics = s.Token.Metrics
				} else {
					info.Metrics = nil
				}
			}
		}
		s.Token = info
		if stale || info.Metrics == nil {
			return
		}
		appendPrice(&s.Prices, PricePoint{
			Time:     metricsTime(info.Metrics.Timestamp),
			PriceSOL: info.Metrics.PriceSOL,
			PriceUSD: info.Metrics.PriceUSD,
		})
	})
}

func (c *Controller) onLiveMetrics(m gateway.MetricsUpdate) {
	ts := metricsTime(m.Metrics.Timestamp)

	c.withState(func(s *State) {
		c.lastLive = ts
		s.LastLiveUpdate = ts
		s.LiveLiquidityUSD = m.Metrics.LiquidityUSD
		if s.Token != nil && s.Token.Metrics != nil {
			s.Token.Metrics.PriceSOL = m.Metrics.TokenPriceSOL
			s.Token.Metrics.PriceUSD = m.Metrics.TokenPriceUSD
			s.Token.Metrics.Liquidity.USD = m.Metrics.LiquidityUSD
			s.Token.Metrics.Timestamp = m.Metrics.Timestamp
		}
		appendPrice(&s.Prices, PricePoint{
			Time:     ts,
			PriceSOL: m.Metrics.TokenPriceSOL,
			PriceUSD: m.Metrics.TokenPriceUSD,
		})
	})
}

// onTxStatus folds a trade outcome into screen state. Success rewrites the
// balance to the server-reported value and prepends a synthesized history
// entry; error prepends a failure entry; pending is logged only.
func (c *Controller) onTxStatus(st gateway.TxStatus) {
	switch st.Status {
	case gateway.TxStatusPending:
		log.LogInfo("Trade pending", zap.String("token", c.currentToken()))
		return

	case gateway.TxStatusSuccess:
		c.withState(func(s *State) {
			if st.TokenBalance != nil {
				s.Balance = *st.TokenBalance
			}
			entry := jetpump.TxHistoryEntry{
				TxHash:    st.TxID,
				TxType:    st.TxType,
				Status:    "success",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			}
			if st.AmountSOL != nil {
				entry.AmountSOL = *st.AmountSOL
			}
			if st.AmountTokens != nil {
				entry.AmountTokens = *st.AmountTokens
			}
			if st.PricePerToken != nil {
				entry.PricePerToken = *st.PricePerToken
			}
			s.History = prependEntry(s.History, entry)
		})
		log.LogSuccess("Trade confirmed", zap.String("token", c.currentToken()), zap.String("tx", st.TxID))

	case gateway.TxStatusError:
		c.withState(func(s *State) {
			s.History = prependEntry(s.History, jetpump.TxHistoryEntry{
				TxType:    st.TxType,
				Status:    "error",
				ErrorType: ClassifyError(st.ErrorType),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
		})
		log.LogError("Trade failed",
			zap.String("token", c.currentToken()),
			zap.String("error_type", st.ErrorType))
	}
}

func (c *Controller) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SubmitBuy submits a buy for the amount in the current settings.
func (c *Controller) SubmitBuy() error {
	return c.submit(gateway.TradeBuy, func(s jetpump.UserSettings) string { return s.Buy })
}

// SubmitSell submits a sell for the percent in the current settings.
func (c *Controller) SubmitSell() error {
	return c.submit(gateway.TradeSell, func(s jetpump.UserSettings) string { return s.Sell })
}

func (c *Controller) submit(tradeType string, amount func(jetpump.UserSettings) string) error {
	c.mu.Lock()
	session := c.session
	settings := c.state.Settings
	token := c.token
	c.mu.Unlock()

	if session == nil {
		return gateway.ErrNotSubscribed
	}

	return session.SubmitTrade(gateway.TradeIntent{
		Type:         tradeType,
		TokenAddress: token,
		Amount:       amount(settings),
		Fee:          settings.Fee,
		Slippage:     settings.Slippage,
		Timestamp:    time.Now().UnixMilli(),
	})
}

// UpdateSettings persists new trading defaults and adopts the server's copy.
func (c *Controller) UpdateSettings(ctx context.Context, settings jetpump.UserSettings) error {
	updated, err := c.api.UpdateSettings(ctx, settings)
	if err != nil {
		return err
	}
	c.withState(func(s *State) { s.Settings = *updated })
	return nil
}

// ClassifyError maps a gateway error tag onto the display classification.
func ClassifyError(errorType string) string {
	tag := strings.ToLower(errorType)
	switch {
	case strings.Contains(tag, "insufficient"), strings.Contains(tag, "balance"):
		return FailInsufficientBalance
	case strings.Contains(tag, "slippage"):
		return FailSlippage
	case strings.Contains(tag, "liquidity"):
		return FailLowLiquidity
	default:
		return FailUnknown
	}
}

// appendPrice adds a sample and trims the series to MaxPricePoints.
func appendPrice(series *[]PricePoint, p PricePoint) {
	s := append(*series, p)
	if len(s) > MaxPricePoints {
		s = s[len(s)-MaxPricePoints:]
	}
	*series = s
}

// prependEntry puts a synthesized entry at the head of the history list.
func prependEntry(history []jetpump.TxHistoryEntry, entry jetpump.TxHistoryEntry) []jetpump.TxHistoryEntry {
	out := make([]jetpump.TxHistoryEntry, 0, len(history)+1)
	out = append(out, entry)
	return append(out, history...)
}

// mergeHistory reconciles a fetched history with locally synthesized
// entries. Fetched rows win on hash collision; hashless synthesized failures
// are kept at the head.
func mergeHistory(local, fetched []jetpump.TxHistoryEntry) []jetpump.TxHistoryEntry {
	seen := make(map[string]bool, len(fetched))
	for _, e := range fetched {
		if e.TxHash != "" {
			seen[e.TxHash] = true
		}
	}

	out := make([]jetpump.TxHistoryEntry, 0, len(local)+len(fetched))
	for _, e := range local {
		if e.TxHash == "" && e.Status == "error" {
			out = append(out, e)
		}
	}
	for _, e := range local {
		if e.TxHash != "" && !seen[e.TxHash] {
			out = append(out, e)
		}
	}
	return append(out, fetched...)
}

func parseTimestamp(s string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func metricsTime(s string) time.Time {
	if t, err := parseTimestamp(s); err == nil {
		return t
	}
	return time.Now().UTC()
}
