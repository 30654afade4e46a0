package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "TokenAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// testGateway is an in-process gateway: it upgrades, records outbound frames
// from the session and lets tests push inbound frames.
type testGateway struct {
	t        *testing.T
	srv      *httptest.Server
	mu       sync.Mutex
	conn     *websocket.Conn
	received []envelope
	ready    chan struct{}
	header   http.Header
}

func newTestGateway(t *testing.T) *testGateway {
	g := &testGateway{t: t, ready: make(chan struct{})}
	upgrader := websocket.Upgrader{}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.header = r.Header.Clone()
		g.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		g.mu.Lock()
		g.conn = conn
		g.mu.Unlock()
		close(g.ready)

		for {
			var env envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			g.mu.Lock()
			g.received = append(g.received, env)
			g.mu.Unlock()
		}
	}))
	t.Cleanup(g.srv.Close)
	return g
}

func (g *testGateway) url() string {
	return "ws" + strings.TrimPrefix(g.srv.URL, "http")
}

func (g *testGateway) push(t *testing.T, event string, data interface{}) {
	t.Helper()
	select {
	case <-g.ready:
	case <-time.After(2 * time.Second):
		t.Fatal("gateway never accepted a connection")
	}
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	g.mu.Lock()
	defer g.mu.Unlock()
	require.NoError(t, g.conn.WriteJSON(envelope{Event: event, Data: raw}))
}

func (g *testGateway) frames() []envelope {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]envelope, len(g.received))
	copy(out, g.received)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestConnectSubscribesToToken(t *testing.T) {
	g := newTestGateway(t)

	s, err := Connect(context.Background(), testToken,
		Config{URL: g.url(), Credential: "init-data"}, Callbacks{})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, StateSubscribed, s.State())

	waitFor(t, func() bool { return len(g.frames()) >= 2 })
	frames := g.frames()
	assert.Equal(t, EventMessage, frames[0].Event)
	assert.Equal(t, EventSubscribeToken, frames[1].Event)

	var ref tokenRef
	require.NoError(t, json.Unmarshal(frames[1].Data, &ref))
	assert.Equal(t, testToken, ref.TokenAddress)

	g.mu.Lock()
	auth := g.header.Get("Authorization")
	g.mu.Unlock()
	assert.Equal(t, "tma init-data", auth)
}

func TestMetricsDeliveredAndFiltered(t *testing.T) {
	g := newTestGateway(t)

	var mu sync.Mutex
	var got []MetricsUpdate
	s, err := Connect(context.Background(), testToken, Config{URL: g.url()}, Callbacks{
		OnMetrics: func(m MetricsUpdate) {
			mu.Lock()
			got = append(got, m)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	defer s.Close()

	// A frame for another token must be dropped.
	g.push(t, EventMetricsUpdate, MetricsUpdate{
		TokenAddress: "OtherToken",
		Metrics:      MetricsValues{TokenPriceSOL: 9},
	})
	g.push(t, EventMetricsUpdate, MetricsUpdate{
		TokenAddress: testToken,
		Metrics:      MetricsValues{TokenPriceSOL: 0.5, TokenPriceUSD: 75, LiquidityUSD: 1000, Timestamp: "2025-08-01T10:00:00Z"},
	})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})
	mu.Lock()
	assert.Equal(t, testToken, got[0].TokenAddress)
	assert.Equal(t, 0.5, got[0].Metrics.TokenPriceSOL)
	mu.Unlock()
}

func TestSubmitGuardClearedByTerminalStatus(t *testing.T) {
	g := newTestGateway(t)

	var mu sync.Mutex
	var statuses []TxStatus
	s, err := Connect(context.Background(), testToken, Config{URL: g.url()}, Callbacks{
		OnTxStatus: func(st TxStatus) {
			mu.Lock()
			statuses = append(statuses, st)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	defer s.Close()

	intent := TradeIntent{
		Type:         TradeBuy,
		TokenAddress: testToken,
		Amount:       "0.01",
		Fee:          "0.01",
		Slippage:     "25",
	}
	require.NoError(t, s.SubmitTrade(intent))

	// Second submission is rejected while the first is in flight.
	assert.ErrorIs(t, s.SubmitTrade(intent), ErrSubmitInFlight)

	// pending does not clear the guard.
	g.push(t, EventTxStatus, TxStatus{Status: TxStatusPending})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(statuses) == 1
	})
	assert.ErrorIs(t, s.SubmitTrade(intent), ErrSubmitInFlight)

	// success does.
	bal := 123.0
	g.push(t, EventTxStatus, TxStatus{Status: TxStatusSuccess, TokenBalance: &bal, TxType: TradeBuy})
	waitFor(t, func() bool { return !s.SubmitInFlight() })

	require.NoError(t, s.SubmitTrade(intent))
}

func TestSubmitGuardClearedByErrorStatus(t *testing.T) {
	g := newTestGateway(t)

	s, err := Connect(context.Background(), testToken, Config{URL: g.url()}, Callbacks{})
	require.NoError(t, err)
	defer s.Close()

	intent := TradeIntent{Type: TradeSell, TokenAddress: testToken, Amount: "25", Fee: "0.01", Slippage: "25"}
	require.NoError(t, s.SubmitTrade(intent))

	g.push(t, EventTxStatus, TxStatus{Status: TxStatusError, ErrorType: "slippage"})
	waitFor(t, func() bool { return !s.SubmitInFlight() })
}

func TestSubmitRejectsBadIntents(t *testing.T) {
	g := newTestGateway(t)

	s, err := Connect(context.Background(), testToken, Config{URL: g.url()}, Callbacks{})
	require.NoError(t, err)
	defer s.Close()

	err = s.SubmitTrade(TradeIntent{Type: TradeBuy, TokenAddress: "WrongToken", Amount: "1"})
	assert.Error(t, err)

	err = s.SubmitTrade(TradeIntent{Type: "short", TokenAddress: testToken, Amount: "1"})
	assert.Error(t, err)

	// Neither rejection consumed the guard.
	assert.False(t, s.SubmitInFlight())
}

func TestCloseIsDeterministic(t *testing.T) {
	g := newTestGateway(t)

	var mu sync.Mutex
	callbacksAfterClose := 0
	closedBy := make(chan struct{}, 1)
	var s *Session

	var closeDone bool
	s, err := Connect(context.Background(), testToken, Config{URL: g.url()}, Callbacks{
		OnMetrics: func(MetricsUpdate) {
			mu.Lock()
			if closeDone {
				callbacksAfterClose++
			}
			mu.Unlock()
		},
		OnClosed: func(error) { closedBy <- struct{}{} },
	})
	require.NoError(t, err)

	require.NoError(t, s.Close())
	mu.Lock()
	closeDone = true
	mu.Unlock()

	assert.Equal(t, StateClosed, s.State())
	require.NoError(t, s.Close(), "Close is idempotent")

	assert.ErrorIs(t, s.SubmitTrade(TradeIntent{Type: TradeBuy, TokenAddress: testToken}), ErrNotSubscribed)

	// OnClosed must not fire for a local Close.
	select {
	case <-closedBy:
		t.Fatal("OnClosed fired for deliberate Close")
	case <-time.After(100 * time.Millisecond):
	}

	mu.Lock()
	assert.Zero(t, callbacksAfterClose)
	mu.Unlock()
}

func TestOnClosedFiresOnTransportLoss(t *testing.T) {
	g := newTestGateway(t)

	closed := make(chan error, 1)
	s, err := Connect(context.Background(), testToken, Config{URL: g.url()}, Callbacks{
		OnClosed: func(err error) { closed <- err },
	})
	require.NoError(t, err)
	defer s.Close()

	select {
	case <-g.ready:
	case <-time.After(2 * time.Second):
		t.Fatal("no connection")
	}
	g.mu.Lock()
	g.conn.Close()
	g.mu.Unlock()

	select {
	case err := <-closed:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("OnClosed never fired")
	}
	assert.Equal(t, StateClosed, s.State())
}

func TestMalformedEventsAreDropped(t *testing.T) {
	g := newTestGateway(t)

	var mu sync.Mutex
	events := 0
	s, err := Connect(context.Background(), testToken, Config{URL: g.url()}, Callbacks{
		OnMetrics: func(MetricsUpdate) {
			mu.Lock()
			events++
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	defer s.Close()

	// Unknown event name, bad status, missing address: all dropped.
	g.push(t, "totally_unknown", map[string]string{"x": "y"})
	g.push(t, EventTxStatus, map[string]string{"status": "weird"})
	g.push(t, EventMetricsUpdate, map[string]interface{}{"metrics": map[string]float64{}})

	g.push(t, EventMetricsUpdate, MetricsUpdate{TokenAddress: testToken})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return events == 1
	})
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		kind    string
	}{
		{"metrics", `{"event":"token_metrics_update","data":{"token_address":"T","metrics":{"token_price_sol":1}}}`, false, EventMetricsUpdate},
		{"tx success", `{"event":"tx_status","data":{"status":"success","token_balance":5}}`, false, EventTxStatus},
		{"tx pending", `{"event":"tx_status","data":{"status":"pending"}}`, false, EventTxStatus},
		{"response", `{"event":"response","data":{"ok":true}}`, false, EventResponse},
		{"unknown event", `{"event":"nope","data":{}}`, true, ""},
		{"bad status", `{"event":"tx_status","data":{"status":"half"}}`, true, ""},
		{"metrics no address", `{"event":"token_metrics_update","data":{"metrics":{}}}`, true, ""},
		{"not json", `garbage`, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := decodeEvent([]byte(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ev.Kind)
		})
	}
}

func TestTxStatusTerminal(t *testing.T) {
	assert.True(t, TxStatus{Status: TxStatusSuccess}.Terminal())
	assert.True(t, TxStatus{Status: TxStatusError}.Terminal())
	assert.False(t, TxStatus{Status: TxStatusPending}.Terminal())
}
