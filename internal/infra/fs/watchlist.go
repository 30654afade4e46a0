package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	logging "jetpump-terminal/internal/infra/log"

	"go.uber.org/zap"
)

// WatchEntry is one watched token for one chat. LastPriceSOL is the price
// at the last alert (or at add time) and anchors the move-percent check.
type WatchEntry struct {
	TokenAddress string  `json:"token_address"`
	Symbol       string  `json:"symbol"`
	LastPriceSOL float64 `json:"last_price_sol"`
	AddedAt      string  `json:"added_at"`
}

type watchlistFile struct {
	Entries []WatchEntry `json:"entries"`
}

// Watchlists stores per-chat watchlists as JSON files under dataDir.
// Safe for concurrent use.
type Watchlists struct {
	dataDir string
	mu      sync.Mutex
}

// NewWatchlists creates the store rooted at dataDir.
func NewWatchlists(dataDir string) *Watchlists {
	return &Watchlists{dataDir: dataDir}
}

func (w *Watchlists) path(chatID int64) string {
	return filepath.Join(w.dataDir, "watchlists", "chat_"+strconv.FormatInt(chatID, 10)+".json")
}

// Load returns the chat's watchlist. A missing or empty file is an empty
// list, not an error.
func (w *Watchlists) Load(chatID int64) ([]WatchEntry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadLocked(chatID)
}

func (w *Watchlists) loadLocked(chatID int64) ([]WatchEntry, error) {
	filePath := w.path(chatID)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return []WatchEntry{}, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist file: %w", err)
	}

	if strings.TrimSpace(string(data)) == "" || strings.TrimSpace(string(data)) == "{}" {
		return []WatchEntry{}, nil
	}

	var f watchlistFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist JSON: %w", err)
	}

	return f.Entries, nil
}

func (w *Watchlists) saveLocked(chatID int64, entries []WatchEntry) error {
	filePath := w.path(chatID)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create watchlist directory: %w", err)
	}

	data, err := json.MarshalIndent(watchlistFile{Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal watchlist JSON: %w", err)
	}

	tempFilePath := filePath + ".tmp"
	if err := os.WriteFile(tempFilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary watchlist file: %w", err)
	}
	if err := os.Rename(tempFilePath, filePath); err != nil {
		os.Remove(tempFilePath)
		return fmt.Errorf("failed to rename temporary watchlist file: %w", err)
	}

	return nil
}

// Add puts a token on the chat's watchlist. Re-adding an existing token
// refreshes its anchor price.
func (w *Watchlists) Add(chatID int64, entry WatchEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries, err := w.loadLocked(chatID)
	if err != nil {
		return err
	}

	replaced := false
	for i := range entries {
		if entries[i].TokenAddress == entry.TokenAddress {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}

	if err := w.saveLocked(chatID, entries); err != nil {
		return err
	}

	logging.LogInfo("Watchlist updated",
		zap.Int64("chat_id", chatID),
		zap.String("token", entry.TokenAddress),
		zap.Int("count", len(entries)))
	return nil
}

// Remove drops a token from the chat's watchlist. Removing an absent token
// is a no-op.
func (w *Watchlists) Remove(chatID int64, tokenAddress string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries, err := w.loadLocked(chatID)
	if err != nil {
		return err
	}

	out := entries[:0]
	for _, e := range entries {
		if e.TokenAddress != tokenAddress {
			out = append(out, e)
		}
	}
	if len(out) == len(entries) {
		return nil
	}

	return w.saveLocked(chatID, out)
}

// UpdateAnchor rewrites the anchor price of one watched token after an
// alert fired.
func (w *Watchlists) UpdateAnchor(chatID int64, tokenAddress string, priceSOL float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries, err := w.loadLocked(chatID)
	if err != nil {
		return err
	}

	for i := range entries {
		if entries[i].TokenAddress == tokenAddress {
			entries[i].LastPriceSOL = priceSOL
			return w.saveLocked(chatID, entries)
		}
	}
	return nil
}

// Chats lists every chat ID that has a stored watchlist.
func (w *Watchlists) Chats() ([]int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Join(w.dataDir, "watchlists")
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlists directory: %w", err)
	}

	var chats []int64
	for _, f := range files {
		name := f.Name()
		if !strings.HasPrefix(name, "chat_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, "chat_"), ".json"), 10, 64)
		if err != nil {
			continue
		}
		chats = append(chats, id)
	}
	return chats, nil
}
