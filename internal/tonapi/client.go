package tonapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tonpad/deposit-backend/internal/models"
)

// ErrUpstreamUnavailable marks any transport, auth, rate-limit or timeout
// failure talking to tonapi. Callers must treat it as transient and skip the
// current reconciliation attempt; the next sweep retries implicitly.
var ErrUpstreamUnavailable = errors.New("tonapi: upstream unavailable")

const defaultTimeout = 10 * time.Second

type Client struct {
	base  string
	token string
	http  *http.Client
}

func New(base, token string, client ...*http.Client) *Client {
	c := &Client{base: base, token: token, http: &http.Client{Timeout: defaultTimeout}}
	if len(client) > 0 {
		c.http = client[0]
	}
	return c
}

// wire types for /v2/blockchain/accounts/{account}/transactions
type txPage struct {
	Transactions []wireTx `json:"transactions"`
}

type wireTx struct {
	Hash  string       `json:"hash"`
	InMsg *wireMessage `json:"in_msg"`
}

type wireMessage struct {
	Source string `json:"source"`
	Value  int64  `json:"value"`
}

// RecentIncoming fetches the most recent incoming transfers for account, in
// the order tonapi returns them. Outgoing-only transactions (no in_msg or no
// source) are dropped.
func (c *Client) RecentIncoming(ctx context.Context, account string, limit int) ([]models.Transfer, error) {
	endpoint := fmt.Sprintf("%s/v2/blockchain/accounts/%s/transactions?limit=%s",
		c.base, url.PathEscape(account), strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("tonapi: create req: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var page txPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decode response: %s", ErrUpstreamUnavailable, err)
	}

	transfers := make([]models.Transfer, 0, len(page.Transactions))
	for _, tx := range page.Transactions {
		if tx.InMsg == nil || tx.InMsg.Source == "" {
			continue
		}
		transfers = append(transfers, models.Transfer{
			Sender:    tx.InMsg.Source,
			ValueNano: tx.InMsg.Value,
			Hash:      tx.Hash,
		})
	}
	return transfers, nil
}

// wire type for /v2/rates
type ratePage struct {
	Rates map[string]struct {
		Prices map[string]float64 `json:"prices"`
	} `json:"rates"`
}

// USDPrice returns the current USD price of a currency from /v2/rates.
func (c *Client) USDPrice(ctx context.Context, currency string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v2/rates?tokens=%s&currencies=usd", c.base, url.QueryEscape(currency))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("tonapi: create req: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var page ratePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return 0, fmt.Errorf("%w: decode response: %s", ErrUpstreamUnavailable, err)
	}

	entry, ok := page.Rates[currency]
	if !ok {
		return 0, fmt.Errorf("tonapi: no rate for %s", currency)
	}
	price, ok := entry.Prices["USD"]
	if !ok {
		return 0, fmt.Errorf("tonapi: no usd price for %s", currency)
	}
	return price, nil
}
