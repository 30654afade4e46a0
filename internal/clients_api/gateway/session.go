package gateway

// Package gateway contains the real-time session client. One Session serves
// one token screen: it subscribes to the token's metrics feed on connect,
// delivers validated events to callbacks and carries trade submissions. A
// Session never reconnects; when the connection drops the screen that owns
// it is expected to open a fresh one.

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"jetpump-terminal/internal/infra/log"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultGatewayURL is the production gateway endpoint.
const DefaultGatewayURL = "wss://sol.jetpump.org/ws"

// submitTimeout bounds how long the in-flight guard holds when the gateway
// never answers a submission.
const submitTimeout = 30 * time.Second

// Session states.
const (
	StateIdle int32 = iota
	StateConnecting
	StateSubscribed
	StateClosed
)

// ErrSubmitInFlight is returned while a previous trade submission has not
// reached a terminal tx_status yet.
var ErrSubmitInFlight = fmt.Errorf("trade submission already in flight")

// ErrNotSubscribed is returned for submissions on a session that is not
// connected and subscribed.
var ErrNotSubscribed = fmt.Errorf("session not subscribed")

// Callbacks receive validated events. Handlers run on the session's read
// goroutine; none are invoked after Close returns.
type Callbacks struct {
	OnMetrics  func(MetricsUpdate)
	OnTxStatus func(TxStatus)
	OnResponse func([]byte)
	// OnClosed fires once when the read loop ends, whether by Close or by a
	// transport failure. err is nil on clean close.
	OnClosed func(err error)
}

// Config configures a Session.
type Config struct {
	URL          string // gateway endpoint, DefaultGatewayURL if empty
	Credential   string // Telegram init data, sent on the dial request
	WriteTimeout time.Duration
	DialTimeout  time.Duration
}

// Session is a live connection scoped to one token.
type Session struct {
	tokenAddress string
	cfg          Config
	callbacks    Callbacks

	conn   *websocket.Conn
	connMu sync.Mutex

	state atomic.Int32

	// inFlight guards trade submissions: one at a time, cleared by a
	// terminal tx_status or by submitTimeout.
	inFlight     atomic.Bool
	inFlightSeq  atomic.Uint64
	submitTimers sync.Mutex
	submitTimer  *time.Timer

	closed   atomic.Bool
	done     chan struct{}
	wg       sync.WaitGroup
	closeErr error
}

// Connect dials the gateway, announces the token and subscribes to its
// metrics feed. The returned Session is live; events flow to the callbacks
// until Close.
func Connect(ctx context.Context, tokenAddress string, cfg Config, callbacks Callbacks) (*Session, error) {
	if tokenAddress == "" {
		return nil, fmt.Errorf("token address required")
	}
	if cfg.URL == "" {
		cfg.URL = DefaultGatewayURL
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	s := &Session{
		tokenAddress: tokenAddress,
		cfg:          cfg,
		callbacks:    callbacks,
		done:         make(chan struct{}),
	}
	s.state.Store(StateConnecting)

	dialer := websocket.Dialer{HandshakeTimeout: cfg.DialTimeout}
	header := http.Header{}
	header.Set("ngrok-skip-browser-warning", "true")
	if cfg.Credential != "" {
		header.Set("Authorization", "tma "+cfg.Credential)
	}

	conn, _, err := dialer.DialContext(ctx, cfg.URL, header)
	if err != nil {
		s.state.Store(StateClosed)
		return nil, fmt.Errorf("gateway dial: %w", err)
	}
	s.conn = conn

	// Announce the token and ask for its metrics stream. Both frames go out
	// before any event is read, matching the screen-mount sequence.
	ref := tokenRef{TokenAddress: tokenAddress}
	if err := s.writeEvent(EventMessage, ref); err != nil {
		conn.Close()
		s.state.Store(StateClosed)
		return nil, fmt.Errorf("gateway announce: %w", err)
	}
	if err := s.writeEvent(EventSubscribeToken, ref); err != nil {
		conn.Close()
		s.state.Store(StateClosed)
		return nil, fmt.Errorf("gateway subscribe: %w", err)
	}

	s.state.Store(StateSubscribed)
	log.LogInfo("Gateway session opened", zap.String("token", tokenAddress), zap.String("url", cfg.URL))

	s.wg.Add(1)
	go s.readLoop()

	return s, nil
}

// State returns the current session state.
func (s *Session) State() int32 { return s.state.Load() }

// TokenAddress returns the token this session is scoped to.
func (s *Session) TokenAddress() string { return s.tokenAddress }

// SubmitTrade sends a trade intent. While a previous submission has not seen
// a terminal tx_status the call is rejected with ErrSubmitInFlight; there is
// no queueing. The guard also releases itself after submitTimeout so a lost
// answer cannot wedge the screen.
func (s *Session) SubmitTrade(intent TradeIntent) error {
	if s.state.Load() != StateSubscribed {
		return ErrNotSubscribed
	}
	if intent.TokenAddress != s.tokenAddress {
		return fmt.Errorf("trade for %s on session for %s", intent.TokenAddress, s.tokenAddress)
	}
	if intent.Type != TradeBuy && intent.Type != TradeSell {
		return fmt.Errorf("unknown trade type %q", intent.Type)
	}
	if intent.Timestamp == 0 {
		intent.Timestamp = time.Now().UnixMilli()
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrSubmitInFlight
	}
	seq := s.inFlightSeq.Add(1)

	if err := s.writeEvent(EventSubmitTx, intent); err != nil {
		s.releaseGuard(seq)
		return fmt.Errorf("submit trade: %w", err)
	}

	s.armSubmitTimeout(seq)

	log.LogInfo("Trade submitted",
		zap.String("token", intent.TokenAddress),
		zap.String("type", intent.Type),
		zap.String("amount", intent.Amount))
	return nil
}

// releaseGuard clears the in-flight flag if seq is still the active
// submission. A stale timeout firing after the next submission started must
// not release the newer guard.
func (s *Session) releaseGuard(seq uint64) {
	if s.inFlightSeq.Load() == seq {
		s.inFlight.Store(false)
	}
	s.submitTimers.Lock()
	if s.submitTimer != nil {
		s.submitTimer.Stop()
		s.submitTimer = nil
	}
	s.submitTimers.Unlock()
}

func (s *Session) armSubmitTimeout(seq uint64) {
	s.submitTimers.Lock()
	defer s.submitTimers.Unlock()
	if s.submitTimer != nil {
		s.submitTimer.Stop()
	}
	s.submitTimer = time.AfterFunc(submitTimeout, func() {
		if s.inFlightSeq.Load() == seq && s.inFlight.CompareAndSwap(true, false) {
			log.LogWarn("Trade submission timed out waiting for tx_status",
				zap.String("token", s.tokenAddress))
		}
	})
}

// SubmitInFlight reports whether a submission is awaiting its terminal
// status. Advisory only; SubmitTrade does its own check atomically.
func (s *Session) SubmitInFlight() bool { return s.inFlight.Load() }

func (s *Session) writeEvent(event string, data interface{}) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("connection closed")
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return s.conn.WriteJSON(struct {
		Event string      `json:"event"`
		Data  interface{} `json:"data"`
	}{Event: event, Data: data})
}

// readLoop reads, validates and dispatches inbound events until the
// connection ends.
func (s *Session) readLoop() {
	defer s.wg.Done()

	var loopErr error
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				// Clean close.
			default:
				loopErr = err
				log.LogWarn("Gateway connection lost", zap.String("token", s.tokenAddress), zap.Error(err))
			}
			break
		}

		ev, err := decodeEvent(raw)
		if err != nil {
			log.LogDebug("Dropping malformed gateway event", zap.Error(err))
			continue
		}

		s.dispatch(ev)
	}

	s.state.Store(StateClosed)
	s.closeErr = loopErr
	if s.callbacks.OnClosed != nil {
		select {
		case <-s.done:
			// Close() was called; it owns the final callback ordering and
			// no callback may run after it returns.
		default:
			s.callbacks.OnClosed(loopErr)
		}
	}
}

func (s *Session) dispatch(ev *Event) {
	switch ev.Kind {
	case EventMetricsUpdate:
		// Events for other tokens are dropped; the gateway multiplexes and
		// a late unsubscribe can leak a frame from a previous screen.
		if ev.Metrics.TokenAddress != s.tokenAddress {
			return
		}
		if s.callbacks.OnMetrics != nil {
			s.callbacks.OnMetrics(*ev.Metrics)
		}

	case EventTxStatus:
		if ev.TxStatus.Terminal() {
			s.releaseGuard(s.inFlightSeq.Load())
		}
		if s.callbacks.OnTxStatus != nil {
			s.callbacks.OnTxStatus(*ev.TxStatus)
		}

	case EventResponse:
		log.LogDebug("Gateway response", zap.ByteString("data", ev.Response))
		if s.callbacks.OnResponse != nil {
			s.callbacks.OnResponse(ev.Response)
		}
	}
}

// Close shuts the session down. It is idempotent and deterministic: when it
// returns, the read loop has exited and no callback will fire again.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.submitTimers.Lock()
	if s.submitTimer != nil {
		s.submitTimer.Stop()
		s.submitTimer = nil
	}
	s.submitTimers.Unlock()

	s.wg.Wait()
	s.state.Store(StateClosed)
	log.LogInfo("Gateway session closed", zap.String("token", s.tokenAddress))
	return nil
}
