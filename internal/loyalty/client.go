package loyalty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"support-assistant/internal/config"

	"github.com/go-resty/resty/v2"
)

// ErrNotConfigured means the API-key/access-token header pair is missing;
// customer lookups are disabled for this deployment.
var ErrNotConfigured = errors.New("loyalty: credentials not configured")

const (
	customerPath     = "/loyalty/customer"
	transactionsPath = "/loyalty/transactions"

	headerAPIKey      = "APIKey"
	headerAccessToken = "AccessToken"
)

// Customer is the loyalty profile for one mobile number.
type Customer struct {
	Name             string  `json:"Name"`
	Tier             string  `json:"Tier"`
	AvailableCredits float64 `json:"AvailableCredits"`
	EarnedCredits    float64 `json:"EarnedCredits"`
	ExpiredCredits   float64 `json:"ExpiredCredits"`
}

// Transaction is one entry of the customer's credit history.
type Transaction struct {
	BusinessUnit     string  `json:"BusinessUnit"`
	AvailableCredits float64 `json:"AvailableCredits"`
	EarnedCredits    float64 `json:"EarnedCredits"`
	TransactionDate  string  `json:"TransactionDate"`
}

type customerResponse struct {
	Success      bool     `json:"Success"`
	CustomerData Customer `json:"CustomerData"`
}

type transactionsResponse struct {
	Success         bool          `json:"Success"`
	TransactionData []Transaction `json:"TransactionData"`
}

// Client fetches customer profiles and transaction history.
type Client struct {
	rc          *resty.Client
	apiKey      string
	accessToken string
}

func NewClient(cfg config.LoyaltyConfig) *Client {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)
	return &Client{
		rc:          rc,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		accessToken: strings.TrimSpace(cfg.AccessToken),
	}
}

// Configured reports whether both credential headers are available.
func (c *Client) Configured() bool { return c.apiKey != "" && c.accessToken != "" }

// GetCustomer fetches the loyalty profile for a mobile number. A Success:false
// body returns ok=false with no error; transport and decode failures error.
func (c *Client) GetCustomer(ctx context.Context, mobile string) (Customer, bool, error) {
	var out customerResponse
	if err := c.get(ctx, customerPath, mobile, &out); err != nil {
		return Customer{}, false, err
	}
	if !out.Success {
		return Customer{}, false, nil
	}
	return out.CustomerData, true, nil
}

// GetTransactions fetches the credit history for a mobile number.
func (c *Client) GetTransactions(ctx context.Context, mobile string) ([]Transaction, bool, error) {
	var out transactionsResponse
	if err := c.get(ctx, transactionsPath, mobile, &out); err != nil {
		return nil, false, err
	}
	if !out.Success {
		return nil, false, nil
	}
	return out.TransactionData, true, nil
}

func (c *Client) get(ctx context.Context, path, mobile string, into any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader(headerAPIKey, c.apiKey).
		SetHeader(headerAccessToken, c.accessToken).
		SetQueryParam("mobileNumber", mobile).
		Get(path)
	if err != nil {
		return fmt.Errorf("loyalty: http: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("loyalty: unexpected status %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), into); err != nil {
		return fmt.Errorf("loyalty: decode response: %w", err)
	}
	return nil
}
