package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"support-assistant/internal/config"

	"github.com/go-resty/resty/v2"
)

// ErrNotConfigured means no auth token was supplied; order lookups are
// disabled for this deployment.
var ErrNotConfigured = errors.New("order: auth token not configured")

const summaryPath = "/orders/pharmacy/orderSummary"

// Summary is the order record returned by the provider.
//
// Code and Message carry the provider's business-level status: an HTTP 200
// with anything other than code 200 / "Data found." is a miss, not a hit.
type Summary struct {
	Code               int     `json:"code"`
	Message            string  `json:"message"`
	CancellationReason *string `json:"cancellationReason"`
	Items              []Item  `json:"orderItemDetails"`

	// Raw preserves the provider payload byte-for-byte for branches that
	// return it verbatim.
	Raw json.RawMessage `json:"-"`
}

type Item struct {
	Name              string `json:"name"`
	SKU               string `json:"sku"`
	RequestedQuantity int    `json:"requestedQuantity"`
	ApprovedQuantity  int    `json:"approvedQuantity"`
}

// Found reports the provider's business-level success signal.
func (s Summary) Found() bool {
	return s.Code == 200 && s.Message == "Data found."
}

// Client fetches order summaries.
type Client struct {
	rc    *resty.Client
	token string
}

func NewClient(cfg config.OrderConfig) *Client {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("accept", "*/*")
	return &Client{rc: rc, token: strings.TrimSpace(cfg.AuthToken)}
}

// Configured reports whether the client holds an auth token.
func (c *Client) Configured() bool { return c.token != "" }

// GetSummary fetches the summary for one order ID. It returns an error for
// transport failures, non-2xx statuses and undecodable bodies; business-level
// "not found" is reported through Summary.Found, not through the error.
func (c *Client) GetSummary(ctx context.Context, orderID string) (Summary, error) {
	if c.token == "" {
		return Summary{}, ErrNotConfigured
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetQueryParam("orderId", orderID).
		Get(summaryPath)
	if err != nil {
		return Summary{}, fmt.Errorf("order: http: %w", err)
	}
	if resp.IsError() {
		return Summary{}, fmt.Errorf("order: unexpected status %d", resp.StatusCode())
	}

	raw := resp.Body()
	var s Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return Summary{}, fmt.Errorf("order: decode response: %w", err)
	}
	s.Raw = append(json.RawMessage(nil), raw...)
	return s, nil
}
