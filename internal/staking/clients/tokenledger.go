package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"stakeyard/pkg/domain"
)

// TokenLedgerClient talks to the fungible token service that holds the
// reward supply.
type TokenLedgerClient struct {
	baseURL string
	http    *http.Client
}

// NewTokenLedgerClient builds a token ledger client against baseURL.
func NewTokenLedgerClient(baseURL string, timeout time.Duration) (*TokenLedgerClient, error) {
	if baseURL == "" {
		return nil, errors.New("token ledger base URL is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &TokenLedgerClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// ContractExists reports whether the token contract account exists.
func (c *TokenLedgerClient) ContractExists(ctx context.Context, contract domain.AccountName) (bool, error) {
	return c.exists(ctx, "/v1/contracts/"+url.PathEscape(contract.String()))
}

// SymbolExists reports whether the contract issues the given symbol at the
// given precision.
func (c *TokenLedgerClient) SymbolExists(ctx context.Context, contract domain.AccountName, sym domain.Symbol) (bool, error) {
	path := fmt.Sprintf("/v1/contracts/%s/symbols/%s",
		url.PathEscape(contract.String()), url.PathEscape(sym.String()))
	return c.exists(ctx, path)
}

type tokenTransferRequest struct {
	To       string `json:"to"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

// Transfer pays amount out of the reward pool to the user.
func (c *TokenLedgerClient) Transfer(ctx context.Context, to domain.AccountName, amount domain.Asset, memo string) error {
	raw, err := json.Marshal(tokenTransferRequest{
		To:       to.String(),
		Quantity: amount.String(),
		Memo:     memo,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transfers", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("transfer %s to %s: %w", amount, to, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("transfer %s to %s: unexpected status %d", amount, to, resp.StatusCode)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	return nil
}

func (c *TokenLedgerClient) exists(ctx context.Context, path string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
