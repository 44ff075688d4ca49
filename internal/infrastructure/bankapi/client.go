package bankapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL = "https://api.bank.example"
	defaultTimeout = 30 * time.Second

	clientInfoPath = "/personal/client-info"
	statementPath  = "/personal/statement"
	webhookPath    = "/personal/webhook"
)

// Client handles communication with the upstream statement API. It does not
// throttle itself; callers are responsible for spacing statement requests
// (the upstream allows one request per account per interval).
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new statement API client. An empty baseURL selects the
// production endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
	}
}

// ClientInfo represents the upstream client profile with its accounts.
type ClientInfo struct {
	ClientID   string    `json:"clientId"`
	Name       string    `json:"name"`
	WebhookURL string    `json:"webHookUrl"`
	Accounts   []Account `json:"accounts"`
}

// Account represents one upstream financial account.
type Account struct {
	ID           string   `json:"id"`
	SendID       string   `json:"sendId"`
	Balance      int64    `json:"balance"` // minor units
	CreditLimit  int64    `json:"creditLimit"`
	Type         string   `json:"type"` // account subtype label, e.g. "black"
	CurrencyCode int      `json:"currencyCode"`
	MaskedPan    []string `json:"maskedPan"`
	IBAN         string   `json:"iban"`
}

// StatementItem is one ledger entry as delivered by the upstream, either in a
// statement page or a webhook push.
type StatementItem struct {
	ID              string `json:"id"`
	Time            int64  `json:"time"` // unix seconds
	Description     string `json:"description"`
	MCC             int    `json:"mcc"`
	OriginalMCC     int    `json:"originalMcc"`
	Hold            bool   `json:"hold"`
	Amount          int64  `json:"amount"` // signed, minor units
	OperationAmount int64  `json:"operationAmount"`
	CurrencyCode    int    `json:"currencyCode"`
	CommissionRate  int64  `json:"commissionRate"`
	CashbackAmount  int64  `json:"cashbackAmount"`
	Balance         int64  `json:"balance"` // resulting balance snapshot
}

// OccurredAt returns the item timestamp as time.Time.
func (i *StatementItem) OccurredAt() time.Time {
	return time.Unix(i.Time, 0).UTC()
}

type errorResponse struct {
	ErrorDescription string `json:"errorDescription"`
}

// GetClientInfo fetches the client profile and account list for a token.
func (c *Client) GetClientInfo(ctx context.Context, token string) (*ClientInfo, error) {
	body, err := c.do(ctx, http.MethodGet, clientInfoPath, token, nil)
	if err != nil {
		return nil, err
	}

	var info ClientInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client info: %w", err)
	}

	return &info, nil
}

// GetStatement fetches statement items for one account over [from, to].
// The upstream rejects ranges longer than its maximum span; range planning is
// the caller's job.
func (c *Client) GetStatement(ctx context.Context, token, accountID string, from, to time.Time) ([]StatementItem, error) {
	path := fmt.Sprintf("%s/%s/%d/%d", statementPath, accountID, from.Unix(), to.Unix())

	body, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}

	var items []StatementItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statement: %w", err)
	}

	return items, nil
}

// SetWebhook registers a push callback URL for the token upstream.
func (c *Client) SetWebhook(ctx context.Context, token, url string) error {
	payload, err := json.Marshal(map[string]string{"webHookUrl": url})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	_, err = c.do(ctx, http.MethodPost, webhookPath, token, payload)
	return err
}

func (c *Client) do(ctx context.Context, method, path, token string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Token", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		_ = json.Unmarshal(body, &errResp)
		return nil, classifyStatus(resp.StatusCode, errResp.ErrorDescription)
	}

	return body, nil
}
