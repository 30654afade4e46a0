package gateway

// Wire events for the JetPump real-time gateway. Every frame is a JSON
// envelope {"event": <name>, "data": <payload>}.

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Outbound event names.
const (
	EventMessage        = "message"
	EventSubscribeToken = "subscribe_token_metrics"
	EventSubmitTx       = "submit_tx"
)

// Inbound event names.
const (
	EventMetricsUpdate = "token_metrics_update"
	EventTxStatus      = "tx_status"
	EventResponse      = "response"
)

// Trade submission types.
const (
	TradeBuy  = "buy"
	TradeSell = "sell"
)

// tx_status discriminator values.
const (
	TxStatusSuccess = "success"
	TxStatusError   = "error"
	TxStatusPending = "pending"
)

var ErrMalformedEvent = errors.New("malformed gateway event")

// envelope is the outer frame of every gateway message.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// tokenRef is the payload of the message and subscribe_token_metrics events.
type tokenRef struct {
	TokenAddress string `json:"token_address"`
}

// TradeIntent is the payload of submit_tx. Amount, Fee and Slippage are
// decimal strings taken verbatim from the user's settings; Amount is SOL for
// a buy and a percent of held balance for a sell.
type TradeIntent struct {
	Type         string `json:"type"`
	TokenAddress string `json:"token_address"`
	Amount       string `json:"amount"`
	Fee          string `json:"fee"`
	Slippage     string `json:"slippage"`
	Timestamp    int64  `json:"timestamp"`
}

// MetricsUpdate is a live price/liquidity delta for one token.
type MetricsUpdate struct {
	TokenAddress string        `json:"token_address"`
	Metrics      MetricsValues `json:"metrics"`
}

// MetricsValues carries the live-updated metric fields. Timestamp orders
// live deltas against polled snapshots.
type MetricsValues struct {
	TokenPriceSOL float64 `json:"token_price_sol"`
	TokenPriceUSD float64 `json:"token_price_usd"`
	LiquidityUSD  float64 `json:"liquidity_usd"`
	Timestamp     string  `json:"timestamp"`
}

// TxStatus reports the outcome of a trade submission. Fields beyond Status
// are populated on success; ErrorType classifies failures.
type TxStatus struct {
	Status        string   `json:"status"`
	TokenBalance  *float64 `json:"token_balance,omitempty"`
	AmountSOL     *float64 `json:"amount_sol,omitempty"`
	AmountTokens  *float64 `json:"amount_tokens,omitempty"`
	PricePerToken *float64 `json:"price_per_token_sol,omitempty"`
	TxType        string   `json:"tx_type,omitempty"`
	ErrorType     string   `json:"error_type,omitempty"`
	TxID          string   `json:"txId,omitempty"`
}

// Terminal reports whether this status ends a submission. pending is
// informational and terminates nothing.
func (s TxStatus) Terminal() bool {
	return s.Status == TxStatusSuccess || s.Status == TxStatusError
}

// Event is a decoded inbound gateway event. Exactly one payload field is
// set, matched by Kind.
type Event struct {
	Kind     string
	Metrics  *MetricsUpdate
	TxStatus *TxStatus
	Response json.RawMessage
}

// decodeEvent parses and validates one inbound frame. Unknown event names
// and payloads that fail validation are rejected, never silently coerced.
func decodeEvent(raw []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch env.Event {
	case EventMetricsUpdate:
		var m MetricsUpdate
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, fmt.Errorf("%w: token_metrics_update: %v", ErrMalformedEvent, err)
		}
		if m.TokenAddress == "" {
			return nil, fmt.Errorf("%w: token_metrics_update missing token_address", ErrMalformedEvent)
		}
		return &Event{Kind: EventMetricsUpdate, Metrics: &m}, nil

	case EventTxStatus:
		var s TxStatus
		if err := json.Unmarshal(env.Data, &s); err != nil {
			return nil, fmt.Errorf("%w: tx_status: %v", ErrMalformedEvent, err)
		}
		switch s.Status {
		case TxStatusSuccess, TxStatusError, TxStatusPending:
		default:
			return nil, fmt.Errorf("%w: tx_status has unknown status %q", ErrMalformedEvent, s.Status)
		}
		return &Event{Kind: EventTxStatus, TxStatus: &s}, nil

	case EventResponse:
		return &Event{Kind: EventResponse, Response: env.Data}, nil

	default:
		return nil, fmt.Errorf("%w: unknown event %q", ErrMalformedEvent, env.Event)
	}
}
