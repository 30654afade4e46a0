package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jetpump-terminal/internal/infra/config"
)

// fakeTelegram stands in for the bot API so handlers can run in tests.
// It records the text of every sendMessage call.
type fakeTelegram struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeTelegram) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	copy(out, f.sent)
	return out
}

func newTestHandler(t *testing.T) (*Handler, *fakeTelegram) {
	t.Helper()
	f := &fakeTelegram{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")

		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			f.mu.Lock()
			f.sent = append(f.sent, r.FormValue("text"))
			f.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]interface{}{
				"ok":     true,
				"result": map[string]interface{}{"message_id": 1},
			})
			return
		}

		// getMe and everything else.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     true,
			"result": map[string]interface{}{"id": 1, "is_bot": true, "first_name": "test"},
		})
	}))
	t.Cleanup(srv.Close)

	botAPI, err := tgbotapi.NewBotAPIWithAPIEndpoint("TEST-TOKEN", srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.DataDir = t.TempDir()
	cfg.App.PollInterval = 15

	return NewHandler(botAPI, nil, cfg), f
}

func TestTokenScreenRejectsMalformedAddress(t *testing.T) {
	h, f := newTestHandler(t)

	msg := &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: 42}}

	// The API client is nil: reaching the mount path would panic, so a
	// reply proves the address was rejected before any fetch started.
	h.handleTokenScreen(context.Background(), msg, "definitely-not-base58")

	sent := f.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "token address")

	h.mu.Lock()
	assert.Empty(t, h.screens)
	h.mu.Unlock()
}

func TestChatAllowlist(t *testing.T) {
	h, _ := newTestHandler(t)

	// No allowlist: every chat passes.
	assert.True(t, h.chatAllowed(1))

	h.allowed = map[int64]bool{42: true}
	assert.True(t, h.chatAllowed(42))
	assert.False(t, h.chatAllowed(43))
}
