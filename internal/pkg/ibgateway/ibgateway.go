// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package ibgateway provides an API client for the IBKR Client Portal Gateway.
//
// The Client Portal Gateway runs locally (typically on https://localhost:5000)
// and exposes a REST API over HTTPS with a self-signed certificate, so TLS
// verification is skipped for the configured host. The gateway owns the
// session with IBKR; this client only issues read requests:
//
//	/iserver/auth/status          Session/connectivity check
//	/iserver/secdef/search        Symbol to contract id resolution
//	/iserver/marketdata/history   Historical OHLCV bars
//	/portfolio/accounts           Managed accounts
//	/portfolio/{id}/summary       Account summary tags
//	/portfolio/{id}/positions/0   Open positions
//	/iserver/account/orders       Live orders
//
// The history endpoint is paced by the gateway; requests rejected with
// HTTP 429 are retried with exponential backoff. All other failures are
// returned to the caller.
package ibgateway

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/bufdev/twsctl/internal/pkg/backoff"
)

const (
	// apiPathPrefix is the path prefix of all Client Portal API endpoints.
	apiPathPrefix = "/v1/api"
	// requestTimeout is the per-request HTTP timeout.
	requestTimeout = 30 * time.Second
	// maxHistoryAttempts is the maximum number of attempts for a history request.
	maxHistoryAttempts = 5
	// initialRetryDelay is the initial delay before the first retry.
	initialRetryDelay = time.Second
	// maxRetryDelay is the maximum delay between retries.
	maxRetryDelay = 10 * time.Second
)

// Client is the interface for talking to the Client Portal Gateway.
type Client interface {
	// AuthStatus returns the gateway session status.
	//
	// A transport-level error here means the gateway is not reachable at all.
	AuthStatus(ctx context.Context) (*AuthStatus, error)
	// ResolveContract resolves a symbol to a contract id.
	//
	// secType is "STK" for stocks or "IND" for indices. When multiple
	// contracts match, the one listed on the given exchange is preferred.
	// Returns 0 with a nil error if the gateway knows no such contract.
	ResolveContract(ctx context.Context, symbol string, secType string, exchange string) (int64, error)
	// HistoricalBars fetches OHLCV bars for a contract.
	//
	// The period (e.g. "40y", "1y") extends backward from end, barSize is a
	// gateway bar parameter (e.g. "1w", "1d", "1h"), and rthOnly restricts
	// bars to regular trading hours. An empty result is not an error.
	HistoricalBars(ctx context.Context, conid int64, end time.Time, period string, barSize string, rthOnly bool) ([]Bar, error)
	// Accounts returns the accounts managed by the gateway session.
	Accounts(ctx context.Context) ([]Account, error)
	// AccountSummary returns the summary tag map for an account.
	AccountSummary(ctx context.Context, accountID string) (Summary, error)
	// Positions returns the open positions of an account.
	Positions(ctx context.Context, accountID string) ([]Position, error)
	// LiveOrders returns the live orders of the session.
	LiveOrders(ctx context.Context) ([]Order, error)
}

// NewClient creates a new Client Portal Gateway client. The logger is required.
func NewClient(logger *slog.Logger, host string, port int) Client {
	// The gateway serves a self-signed certificate; certificate verification
	// is disabled for this localhost connection only.
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	// The gateway tracks the session with a cookie.
	jar, _ := cookiejar.New(nil)
	return &client{
		baseURL: fmt.Sprintf("https://%s:%d%s", host, port, apiPathPrefix),
		httpClient: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
			Jar:       jar,
		},
		logger: logger,
	}
}

// AuthStatus is the gateway session status.
type AuthStatus struct {
	// Authenticated reports whether the gateway session is authenticated with IBKR.
	Authenticated bool `json:"authenticated"`
	// Connected reports whether the gateway is connected to the IBKR backend.
	Connected bool `json:"connected"`
	// Competing reports whether another session is competing for the connection.
	Competing bool `json:"competing"`
}

// Account is one account managed by the gateway session.
type Account struct {
	// ID is the account identifier (e.g. "U1234567").
	ID string `json:"id"`
	// AccountID duplicates ID in some gateway versions.
	AccountID string `json:"accountId"`
	// DisplayName is the user-visible account name.
	DisplayName string `json:"displayName"`
	// Currency is the base currency of the account.
	Currency string `json:"currency"`
}

// Identifier returns the account identifier, whichever field the gateway populated.
func (a Account) Identifier() string {
	if a.AccountID != "" {
		return a.AccountID
	}
	return a.ID
}

// SummaryValue is one account summary tag value.
type SummaryValue struct {
	// Amount is the numeric value of the tag.
	Amount float64 `json:"amount"`
	// Currency is the currency of the amount, if monetary.
	Currency string `json:"currency"`
}

// Summary maps lowercase summary tag names (e.g. "netliquidation",
// "totalcashvalue", "cushion") to their values.
type Summary map[string]SummaryValue

// Position is one open position of an account.
type Position struct {
	// Conid is the contract id of the instrument.
	Conid int64 `json:"conid"`
	// ContractDesc is the ticker/description of the instrument.
	ContractDesc string `json:"contractDesc"`
	// Position is the quantity held (negative for shorts).
	Position float64 `json:"position"`
	// AvgCost is the average cost per unit.
	AvgCost float64 `json:"avgCost"`
	// MktPrice is the current market price.
	MktPrice float64 `json:"mktPrice"`
	// MktValue is the current market value of the position.
	MktValue float64 `json:"mktValue"`
	// UnrealizedPnl is the unrealized profit and loss.
	UnrealizedPnl float64 `json:"unrealizedPnl"`
	// Currency is the currency of the monetary fields.
	Currency string `json:"currency"`
}

// Order is one live order of the session.
type Order struct {
	// OrderID is the gateway order id.
	OrderID int64 `json:"orderId"`
	// Ticker is the instrument symbol.
	Ticker string `json:"ticker"`
	// Side is "BUY" or "SELL".
	Side string `json:"side"`
	// OrderType is the order type (e.g. "Limit").
	OrderType string `json:"orderType"`
	// TotalSize is the order quantity.
	TotalSize float64 `json:"totalSize"`
	// Price is the order price, if applicable.
	Price float64 `json:"price"`
	// Status is the order status (e.g. "Submitted").
	Status string `json:"status"`
}

// Bar is one OHLCV bar returned by the history endpoint.
type Bar struct {
	// Time is the interval start.
	Time time.Time
	// Open is the opening price.
	Open float64
	// High is the highest price of the interval.
	High float64
	// Low is the lowest price of the interval.
	Low float64
	// Close is the closing price.
	Close float64
	// Volume is the traded volume of the interval.
	Volume float64
}

// *** PRIVATE ***

type client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// historyResponse is the JSON response of the marketdata/history endpoint.
type historyResponse struct {
	Symbol string       `json:"symbol"`
	Data   []historyBar `json:"data"`
}

// historyBar is one bar in the history response. T is epoch milliseconds.
type historyBar struct {
	T int64   `json:"t"`
	O float64 `json:"o"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	C float64 `json:"c"`
	V float64 `json:"v"`
}

// secdefResult is one result of the secdef/search endpoint.
// Conid is a number in current gateway versions but was a string in older
// ones, so it is decoded as a json.Number.
type secdefResult struct {
	Conid json.Number `json:"conid"`
	// Description is the listing exchange of the contract.
	Description string `json:"description"`
	Symbol      string `json:"symbol"`
}

func (c *client) AuthStatus(ctx context.Context) (*AuthStatus, error) {
	var status AuthStatus
	if err := c.getJSON(ctx, "/iserver/auth/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *client) ResolveContract(ctx context.Context, symbol string, secType string, exchange string) (int64, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("name", "false")
	query.Set("secType", secType)
	var results []secdefResult
	if err := c.getJSON(ctx, "/iserver/secdef/search", query, &results); err != nil {
		return 0, fmt.Errorf("resolving contract for %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	// Prefer the contract listed on the requested exchange; fall back to the
	// first result, which the gateway ranks as the primary listing.
	chosen := results[0]
	for _, result := range results {
		if result.Description == exchange {
			chosen = result
			break
		}
	}
	conid, err := chosen.Conid.Int64()
	if err != nil {
		return 0, fmt.Errorf("parsing conid %q for %s: %w", chosen.Conid.String(), symbol, err)
	}
	return conid, nil
}

func (c *client) HistoricalBars(ctx context.Context, conid int64, end time.Time, period string, barSize string, rthOnly bool) ([]Bar, error) {
	query := url.Values{}
	query.Set("conid", fmt.Sprintf("%d", conid))
	query.Set("period", period)
	query.Set("bar", barSize)
	// startTime anchors the request; the period extends backward from it.
	query.Set("startTime", end.UTC().Format("20060102-15:04:05"))
	if rthOnly {
		query.Set("outsideRth", "false")
	} else {
		query.Set("outsideRth", "true")
	}
	// The gateway paces history requests and answers 429 when called too
	// quickly; wait and retry.
	response, err := backoff.Retry(ctx, maxHistoryAttempts, initialRetryDelay, maxRetryDelay,
		func(ctx context.Context, attempt int) (*historyResponse, bool, error) {
			if attempt > 0 {
				c.logger.Info("retrying history request", "conid", conid, "attempt", attempt+1)
			}
			var response historyResponse
			if err := c.getJSON(ctx, "/iserver/marketdata/history", query, &response); err != nil {
				var statusErr *statusError
				if errors.As(err, &statusErr) && statusErr.statusCode == http.StatusTooManyRequests {
					c.logger.Warn("gateway pacing limit hit, will retry", "conid", conid)
					return nil, true, err
				}
				return nil, false, err
			}
			return &response, false, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("fetching history for conid %d: %w", conid, err)
	}
	bars := make([]Bar, 0, len(response.Data))
	for _, h := range response.Data {
		bars = append(bars, Bar{
			Time:   time.UnixMilli(h.T).UTC(),
			Open:   h.O,
			High:   h.H,
			Low:    h.L,
			Close:  h.C,
			Volume: h.V,
		})
	}
	return bars, nil
}

func (c *client) Accounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := c.getJSON(ctx, "/portfolio/accounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *client) AccountSummary(ctx context.Context, accountID string) (Summary, error) {
	var summary Summary
	if err := c.getJSON(ctx, "/portfolio/"+url.PathEscape(accountID)+"/summary", nil, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (c *client) Positions(ctx context.Context, accountID string) ([]Position, error) {
	// Page 0 covers the first 100 positions, which is enough for this tool's
	// display purposes.
	var positions []Position
	if err := c.getJSON(ctx, "/portfolio/"+url.PathEscape(accountID)+"/positions/0", nil, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

func (c *client) LiveOrders(ctx context.Context) ([]Order, error) {
	var response struct {
		Orders []Order `json:"orders"`
	}
	if err := c.getJSON(ctx, "/iserver/account/orders", nil, &response); err != nil {
		return nil, err
	}
	return response.Orders, nil
}

// getJSON issues a GET request against the gateway and decodes the JSON response into v.
func (c *client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &statusError{statusCode: resp.StatusCode, body: string(body)}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response from %s: %w", path, err)
	}
	return nil
}

// statusError is a non-200 response from the gateway.
type statusError struct {
	statusCode int
	body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.statusCode, e.body)
}
