package economy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Client talks to a balance provider over HTTP/JSON:
//
//	GET  {base}/v1/accounts/{buyer_id}/balance   -> {"balance": "12.34"}
//	POST {base}/v1/accounts/{buyer_id}/withdraw  <- {"amount": "10"}
//
// Wrap it in Bounded so every call carries a timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type withdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (c *Client) GetBalance(ctx context.Context, buyerID string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/v1/accounts/%s/balance", c.baseURL, url.PathEscape(buyerID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build balance request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("balance provider returned status %d", resp.StatusCode)
	}

	var body balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode balance response: %w", err)
	}
	return body.Balance, nil
}

func (c *Client) Withdraw(ctx context.Context, buyerID string, amount decimal.Decimal) error {
	endpoint := fmt.Sprintf("%s/v1/accounts/%s/withdraw", c.baseURL, url.PathEscape(buyerID))

	payload, err := json.Marshal(withdrawRequest{Amount: amount})
	if err != nil {
		return fmt.Errorf("failed to encode withdraw request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build withdraw request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("withdraw request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("balance provider returned status %d", resp.StatusCode)
	}
	return nil
}
