package jetpump

// Wallet resource operations: balance, export, replace, withdrawals.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jetpump-terminal/internal/solkey"
)

// Withdraw validation errors. The messages are shown to the user verbatim.
var (
	ErrAmountNotPositive   = errors.New("Amount must be greater than 0")
	ErrInsufficientBalance = errors.New("Insufficient balance")
)

// GetWallet returns the custodial wallet address and SOL balance.
func (c *Client) GetWallet(ctx context.Context) (*WalletData, error) {
	respBody, err := c.MakeRequest(ctx, "GET", "/my/wallet", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	var wallet WalletData
	if err := json.Unmarshal(respBody, &wallet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet response: %w", err)
	}

	return &wallet, nil
}

// ExportWallet returns the custodial wallet's private key.
func (c *Client) ExportWallet(ctx context.Context) (*WalletExport, error) {
	respBody, err := c.MakeRequest(ctx, "GET", "/my/wallet/export", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to export wallet: %w", err)
	}

	var export WalletExport
	if err := json.Unmarshal(respBody, &export); err != nil {
		return nil, fmt.Errorf("failed to unmarshal export response: %w", err)
	}

	return &export, nil
}

// SetNewWallet replaces the custodial wallet with the given private key.
// The key is validated locally before it leaves the process.
func (c *Client) SetNewWallet(ctx context.Context, privateKey string) (*WalletData, error) {
	if _, err := solkey.Import(privateKey); err != nil {
		return nil, err
	}

	respBody, err := c.MakeRequest(ctx, "POST", "/my/wallet/set-new-wallet", SetWalletRequest{PrivateKey: privateKey})
	if err != nil {
		return nil, fmt.Errorf("failed to set new wallet: %w", err)
	}

	var wallet WalletData
	if err := json.Unmarshal(respBody, &wallet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet response: %w", err)
	}

	return &wallet, nil
}

// GetWithdrawals returns the caller's withdrawal history.
func (c *Client) GetWithdrawals(ctx context.Context) (*WithdrawalsResponse, error) {
	respBody, err := c.MakeRequest(ctx, "GET", "/my/wallet/withdraw", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawals: %w", err)
	}

	var withdrawals WithdrawalsResponse
	if err := json.Unmarshal(respBody, &withdrawals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal withdrawals response: %w", err)
	}

	return &withdrawals, nil
}

// ValidateWithdraw checks a withdrawal before submission. balance is the
// last wallet balance the caller saw.
func ValidateWithdraw(address string, amount, balance float64) error {
	if amount <= 0 {
		return ErrAmountNotPositive
	}
	if amount > balance {
		return ErrInsufficientBalance
	}
	return solkey.ValidateWalletAddress(address)
}

// Withdraw validates and submits a withdrawal.
func (c *Client) Withdraw(ctx context.Context, address string, amount, balance float64) (*StatusResponse, error) {
	if err := ValidateWithdraw(address, amount, balance); err != nil {
		return nil, err
	}

	respBody, err := c.MakeRequest(ctx, "POST", "/my/wallet/withdraw", WithdrawRequest{Address: address, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("failed to submit withdrawal: %w", err)
	}

	var status StatusResponse
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal withdraw response: %w", err)
	}

	return &status, nil
}
