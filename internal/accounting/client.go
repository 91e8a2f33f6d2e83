package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	pkgerrors "github.com/MagnumMax/skyluxse-sub003/pkg/errors"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
)

const ordersPath = "/api/v1/orders"

var (
	errBaseURLRequired = errors.New("accounting base URL is required")
	errLoggerRequired  = errors.New("accounting logger is required")
)

// LineItem is one priced row on a sales order.
type LineItem struct {
	Name    string          `json:"name" validate:"required"`
	Code    string          `json:"code,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
	Taxable bool            `json:"taxable"`
}

// CreateOrderRequest is the sales order sent to the accounting system.
type CreateOrderRequest struct {
	CustomerID   string            `json:"customerId" validate:"required"`
	LineItems    []LineItem        `json:"lineItems" validate:"min=1,dive"`
	CustomFields map[string]string `json:"customFields,omitempty"`
}

// Order is the accounting system's view of a created sales order.
type Order struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client wraps the accounting HTTP API behind a single operation. The
// accounting system stays opaque; callers see orders in and ids out.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	retries  int
	validate *validator.Validate
	logg     *logger.Logger
}

func NewClient(cfg config.AccountingConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.TransportRetries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
		retries:  retries,
		validate: validator.New(),
		logg:     logg,
	}, nil
}

// CreateOrder posts a sales order. Transport-level failures and 5xx responses
// are retried a bounded number of times; 4xx responses are permanent and
// reported as non-retryable coded errors.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sales order")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshaling sales order")
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		order, retryable, err := c.post(ctx, body)
		if err == nil {
			return order, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "accounting request canceled")
		default:
		}
	}
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, body []byte) (*Order, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ordersPath, bytes.NewReader(body))
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building accounting request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, true, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accounting request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var order Order
		if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding accounting response")
		}
		return &order, false, nil
	case resp.StatusCode >= 500:
		drain(resp.Body)
		return nil, true, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("accounting returned %d", resp.StatusCode))
	default:
		detail := readDetail(resp.Body)
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("accounting rejected order: %d %s", resp.StatusCode, detail))
	}
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 4096))
}

func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
