// Copyright 2026 Peter Edge
//
// All rights reserved.

package ibgateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuthStatus(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/api/iserver/auth/status", r.URL.Path)
		fmt.Fprint(w, `{"authenticated": true, "connected": true, "competing": false}`)
	}))
	status, err := client.AuthStatus(context.Background())
	require.NoError(t, err)
	require.True(t, status.Authenticated)
	require.True(t, status.Connected)
	require.False(t, status.Competing)
}

func TestResolveContractPrefersExchange(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/api/iserver/secdef/search", r.URL.Path)
		require.Equal(t, "TSLA", r.URL.Query().Get("symbol"))
		require.Equal(t, "STK", r.URL.Query().Get("secType"))
		fmt.Fprint(w, `[
			{"conid": 76792991, "description": "NASDAQ", "symbol": "TSLA"},
			{"conid": 123, "description": "NYSE", "symbol": "TSLA"}
		]`)
	}))
	conid, err := client.ResolveContract(context.Background(), "TSLA", "STK", "NYSE")
	require.NoError(t, err)
	require.Equal(t, int64(123), conid)

	// With no listing on the requested exchange, the first result wins.
	conid, err = client.ResolveContract(context.Background(), "TSLA", "STK", "SMART")
	require.NoError(t, err)
	require.Equal(t, int64(76792991), conid)
}

func TestResolveContractNotFound(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	conid, err := client.ResolveContract(context.Background(), "NOPE", "STK", "SMART")
	require.NoError(t, err)
	require.Zero(t, conid)
}

func TestResolveContractStringConid(t *testing.T) {
	t.Parallel()
	// Older gateway versions serve conid as a JSON string.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"conid": "265598", "description": "NASDAQ", "symbol": "AAPL"}]`)
	}))
	conid, err := client.ResolveContract(context.Background(), "AAPL", "STK", "NASDAQ")
	require.NoError(t, err)
	require.Equal(t, int64(265598), conid)
}

func TestHistoricalBars(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/api/iserver/marketdata/history", r.URL.Path)
		require.Equal(t, "265598", r.URL.Query().Get("conid"))
		require.Equal(t, "1y", r.URL.Query().Get("period"))
		require.Equal(t, "1h", r.URL.Query().Get("bar"))
		require.Equal(t, "false", r.URL.Query().Get("outsideRth"))
		require.Equal(t, "20250101-00:00:00", r.URL.Query().Get("startTime"))
		fmt.Fprint(w, `{"symbol": "AAPL", "data": [
			{"t": 1704189600000, "o": 185.5, "h": 186.0, "l": 185.0, "c": 185.75, "v": 12345}
		]}`)
	}))
	end := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	bars, err := client.HistoricalBars(context.Background(), 265598, end, "1y", "1h", true)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	require.Equal(t, time.UnixMilli(1704189600000).UTC(), bars[0].Time)
	require.Equal(t, 185.5, bars[0].Open)
	require.Equal(t, 185.75, bars[0].Close)
	require.Equal(t, 12345.0, bars[0].Volume)
}

func TestHistoricalBarsEmpty(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"symbol": "AAPL", "data": []}`)
	}))
	bars, err := client.HistoricalBars(context.Background(), 1, time.Now(), "40y", "1w", true)
	require.NoError(t, err)
	require.Empty(t, bars)
}

func TestHistoricalBarsRetriesPacing(t *testing.T) {
	t.Parallel()
	var requests int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		// The gateway paces history requests; the first attempt is rejected.
		if requests == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"symbol": "AAPL", "data": [{"t": 1704189600000, "o": 1, "h": 1, "l": 1, "c": 1, "v": 1}]}`)
	}))
	bars, err := client.HistoricalBars(context.Background(), 1, time.Now(), "1y", "1h", true)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	require.Equal(t, 2, requests)
}

func TestHistoricalBarsNonRetryableError(t *testing.T) {
	t.Parallel()
	var requests int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	_, err := client.HistoricalBars(context.Background(), 1, time.Now(), "1y", "1h", true)
	require.Error(t, err)
	require.Equal(t, 1, requests)
}

func TestAccountEndpoints(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/api/portfolio/accounts":
			fmt.Fprint(w, `[{"id": "U1234567", "displayName": "Main", "currency": "EUR"}]`)
		case "/v1/api/portfolio/U1234567/summary":
			fmt.Fprint(w, `{"netliquidation": {"amount": 100000.5, "currency": "EUR"}, "cushion": {"amount": 0.9}}`)
		case "/v1/api/portfolio/U1234567/positions/0":
			fmt.Fprint(w, `[{"conid": 265598, "contractDesc": "AAPL", "position": 10, "mktValue": 1850, "currency": "USD"}]`)
		case "/v1/api/iserver/account/orders":
			fmt.Fprint(w, `{"orders": [{"orderId": 1, "ticker": "MSFT", "side": "BUY", "status": "Submitted"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	ctx := context.Background()

	accounts, err := client.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, "U1234567", accounts[0].Identifier())

	summary, err := client.AccountSummary(ctx, "U1234567")
	require.NoError(t, err)
	require.Equal(t, 100000.5, summary["netliquidation"].Amount)
	require.Equal(t, 0.9, summary["cushion"].Amount)

	positions, err := client.Positions(ctx, "U1234567")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	require.Equal(t, "AAPL", positions[0].ContractDesc)

	orders, err := client.LiveOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "MSFT", orders[0].Ticker)
}

// newTestClient starts a TLS test server (the gateway always serves HTTPS
// with a self-signed certificate) and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.Handler) Client {
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)
	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(serverURL.Port())
	require.NoError(t, err)
	return NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)), serverURL.Hostname(), port)
}
