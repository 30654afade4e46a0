package jetpump

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jetpump-terminal/internal/solkey"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	// The breaker gets in the way of tests that exercise repeated failures.
	c.circuitBreaker = nil
	return c
}

func TestRequestHeaders(t *testing.T) {
	var gotAuth, gotNgrok string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotNgrok = r.Header.Get("ngrok-skip-browser-warning")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	})

	c.SetCredential("query_id=abc&user=def")
	_, err := c.GetTokens(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tma query_id=abc&user=def", gotAuth)
	assert.Equal(t, "true", gotNgrok)
}

func TestNoCredentialOmitsAuthHeader(t *testing.T) {
	var sawAuth bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := c.GetTokens(context.Background())
	require.NoError(t, err)
	assert.False(t, sawAuth)

	c.SetCredential("x")
	c.ClearCredential()
	_, err = c.GetTokens(context.Background())
	require.NoError(t, err)
	assert.False(t, sawAuth)
}

func TestGetTokenInfoRoundTrip(t *testing.T) {
	payload := TokenInfo{
		Token: TokenData{
			ID:              7,
			Address:         "So11111111111111111111111111111111111111112",
			Name:            "Wrapped SOL",
			Symbol:          "SOL",
			MintAuthority:   "null",
			FreezeAuthority: "null",
			Status:          "active",
		},
		Metrics: &MetricsData{
			PriceSOL:  0.0000021,
			PriceUSD:  0.00031,
			MarketCap: 45200,
			Liquidity: LiquidityData{USD: 10500},
			Txns:      TransactionsData{H24: TxCounts{Buys: 12, Sells: 4}},
		},
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token/So11111111111111111111111111111111111111112", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	})

	info, err := c.GetTokenInfo(context.Background(), "So11111111111111111111111111111111111111112")
	require.NoError(t, err)
	assert.Equal(t, "SOL", info.Token.Symbol)
	require.NotNil(t, info.Metrics)
	assert.Equal(t, 12, info.Metrics.Txns.H24.Buys)
	assert.Nil(t, info.Pool)
}

func TestAPIErrorSurfacesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"token not found"}`))
	})

	_, err := c.SearchToken(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (404)")
	assert.Contains(t, err.Error(), "token not found")
}

func TestNonJSONErrorIsFlagged(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("<html>tunnel interstitial</html>"))
	})

	_, err := c.GetWallet(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-JSON response")
}

func TestUpdateSettingsPostsBody(t *testing.T) {
	var got UserSettings
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/my/settings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(got)
	})

	want := UserSettings{Fee: "0.02", Slippage: "30", Buy: "0.5", Sell: "50"}
	updated, err := c.UpdateSettings(context.Background(), want)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, want, *updated)
}

func TestValidateWithdraw(t *testing.T) {
	kp, err := solkey.Generate()
	require.NoError(t, err)

	tests := []struct {
		name    string
		address string
		amount  float64
		balance float64
		wantErr string
	}{
		{"zero amount", kp.Address, 0, 5, "Amount must be greater than 0"},
		{"negative amount", kp.Address, -1, 5, "Amount must be greater than 0"},
		{"over balance", kp.Address, 5.01, 5, "Insufficient balance"},
		{"bad address", "not-an-address", 1, 5, "invalid Solana address"},
		{"exact balance ok", kp.Address, 5, 5, ""},
		{"normal ok", kp.Address, 0.25, 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWithdraw(tt.address, tt.amount, tt.balance)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestWithdrawRejectedLocally(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	kp, err := solkey.Generate()
	require.NoError(t, err)

	_, err = c.Withdraw(context.Background(), kp.Address, 10, 1)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.False(t, called, "rejected withdrawal must not reach the backend")
}

func TestSetNewWalletValidatesKey(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.SetNewWallet(context.Background(), "junk")
	assert.Error(t, err)
	assert.False(t, called)
}
