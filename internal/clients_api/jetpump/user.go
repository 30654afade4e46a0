package jetpump

// User resource operations: trading defaults, referral stats and positions.

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetSettings returns the caller's stored trading defaults.
func (c *Client) GetSettings(ctx context.Context) (*UserSettings, error) {
	respBody, err := c.MakeRequest(ctx, "GET", "/my/settings", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings UserSettings
	if err := json.Unmarshal(respBody, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings response: %w", err)
	}

	return &settings, nil
}

// UpdateSettings persists trading defaults. The last successful write wins;
// there is no merge with concurrent server-side changes.
func (c *Client) UpdateSettings(ctx context.Context, settings UserSettings) (*UserSettings, error) {
	respBody, err := c.MakeRequest(ctx, "POST", "/my/settings", settings)
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	var updated UserSettings
	if err := json.Unmarshal(respBody, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings response: %w", err)
	}

	return &updated, nil
}

// GetReferral returns the caller's referral program stats.
func (c *Client) GetReferral(ctx context.Context) (*ReferralData, error) {
	respBody, err := c.MakeRequest(ctx, "GET", "/my/referral", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get referral data: %w", err)
	}

	var referral ReferralData
	if err := json.Unmarshal(respBody, &referral); err != nil {
		return nil, fmt.Errorf("failed to unmarshal referral response: %w", err)
	}

	return &referral, nil
}

// GetOpenPositions returns positions that still hold a token balance.
func (c *Client) GetOpenPositions(ctx context.Context) (*PositionsResponse, error) {
	return c.getPositions(ctx, "/my/positions/open")
}

// GetClosedPositions returns fully exited positions.
func (c *Client) GetClosedPositions(ctx context.Context) (*PositionsResponse, error) {
	return c.getPositions(ctx, "/my/positions/closed")
}

func (c *Client) getPositions(ctx context.Context, endpoint string) (*PositionsResponse, error) {
	respBody, err := c.MakeRequest(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}

	var positions PositionsResponse
	if err := json.Unmarshal(respBody, &positions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal positions response: %w", err)
	}

	return &positions, nil
}
