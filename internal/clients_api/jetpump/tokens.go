package jetpump

// Token resource operations: list, lookup, search, per-user balance and
// transaction history.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// GetTokens returns the token list for the index screen.
func (c *Client) GetTokens(ctx context.Context) (*TokensResponse, error) {
	respBody, err := c.MakeRequest(ctx, "GET", "/token/list", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}

	var tokensResp TokensResponse
	if err := json.Unmarshal(respBody, &tokensResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tokens response: %w", err)
	}

	return &tokensResp, nil
}

// GetTokenInfo returns one token with its pool and metrics.
func (c *Client) GetTokenInfo(ctx context.Context, address string) (*TokenInfo, error) {
	respBody, err := c.MakeRequest(ctx, "GET", "/token/"+url.PathEscape(address), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get token info: %w", err)
	}

	var info TokenInfo
	if err := json.Unmarshal(respBody, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token info: %w", err)
	}

	return &info, nil
}

// SearchToken resolves an address typed on the search screen. The backend
// answers 404 for unknown addresses, which surfaces here as an API error.
func (c *Client) SearchToken(ctx context.Context, address string) (*TokenInfo, error) {
	respBody, err := c.MakeRequest(ctx, "GET", "/token/"+url.PathEscape(address)+"/search", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search token: %w", err)
	}

	var info TokenInfo
	if err := json.Unmarshal(respBody, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search response: %w", err)
	}

	return &info, nil
}

// GetTokenBalance returns the caller's held balance of one token.
func (c *Client) GetTokenBalance(ctx context.Context, address string) (*TokenBalance, error) {
	respBody, err := c.MakeRequest(ctx, "GET", "/token/"+url.PathEscape(address)+"/balance", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get token balance: %w", err)
	}

	var balance TokenBalance
	if err := json.Unmarshal(respBody, &balance); err != nil {
		return nil, fmt.Errorf("failed to unmarshal balance response: %w", err)
	}

	return &balance, nil
}

// GetTokenTransactions returns the caller's trades in one token, newest first.
func (c *Client) GetTokenTransactions(ctx context.Context, address string) (*TxHistoryResponse, error) {
	respBody, err := c.MakeRequest(ctx, "GET", "/token/"+url.PathEscape(address)+"/transactions", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get token transactions: %w", err)
	}

	var history TxHistoryResponse
	if err := json.Unmarshal(respBody, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transactions response: %w", err)
	}

	return &history, nil
}
