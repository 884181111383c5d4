// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package twsctlaccount builds the account overview, position, and order
// views shown by the account command.
package twsctlaccount

import (
	"fmt"
	"math"

	"github.com/bufdev/twsctl/internal/pkg/ibgateway"
	"github.com/dustin/go-humanize"
)

// Summary tag names served by the gateway.
const (
	tagNetLiquidation = "netliquidation"
	tagTotalCashValue = "totalcashvalue"
	tagCushion        = "cushion"
)

// largeAmountThreshold is the value above which amounts are shown in
// thousands with a "T" suffix to keep the overview row compact.
const largeAmountThreshold = 980000

// Overview is the one-line account overview.
type Overview struct {
	// AccountID is the account identifier.
	AccountID string
	// NetLiquidation is the formatted net liquidation value.
	NetLiquidation string
	// Margin is the formatted margin utilization percentage.
	Margin string
	// Cash is the formatted total cash balance.
	Cash string
	// CashPercent is cash as a formatted percentage of net liquidation.
	CashPercent string
	// Currency is the account base currency.
	Currency string
}

// NewOverview builds an Overview from the gateway summary tags.
func NewOverview(accountID string, summary ibgateway.Summary) Overview {
	overview := Overview{
		AccountID: accountID,
	}
	var netLiquidation float64
	var cash float64
	if value, ok := summary[tagNetLiquidation]; ok {
		netLiquidation = value.Amount
		overview.NetLiquidation = FormatAmount(value.Amount)
		overview.Currency = value.Currency
	}
	if value, ok := summary[tagTotalCashValue]; ok {
		cash = value.Amount
		overview.Cash = FormatAmount(value.Amount)
	}
	if value, ok := summary[tagCushion]; ok {
		// The cushion is the fraction of equity not tied up as margin;
		// display the inverse as margin utilization.
		overview.Margin = fmt.Sprintf("%d%%", 100-int(math.Round(value.Amount*100)))
	}
	if netLiquidation > 0 {
		overview.CashPercent = fmt.Sprintf("%d%%", int(math.Round(cash*100/netLiquidation)))
	}
	return overview
}

// OverviewHeaders are the table headers for the account overview.
func OverviewHeaders() []string {
	return []string{"ACCOUNT", "NETLIQ", "MARGIN", "CASH"}
}

// OverviewRow returns the table row for the overview.
func (o Overview) OverviewRow() []string {
	cash := o.Cash
	if o.CashPercent != "" {
		cash = fmt.Sprintf("%s (%s)", o.Cash, o.CashPercent)
	}
	return []string{o.AccountID, o.NetLiquidation, o.Margin, cash}
}

// FormatAmount formats a monetary amount for display, rounded to whole
// units with thousands separators. Large amounts are shown in thousands
// with a "T" suffix.
func FormatAmount(value float64) string {
	if value >= largeAmountThreshold {
		return humanize.Comma(int64(math.Round(value/1000))) + "T"
	}
	return humanize.Comma(int64(math.Round(value)))
}

// PositionHeaders are the table headers for the positions view.
func PositionHeaders() []string {
	return []string{"SYMBOL", "QUANTITY", "AVG_COST", "PRICE", "VALUE", "UNREALIZED_PNL", "CURRENCY"}
}

// PositionRow returns the table row for a position.
func PositionRow(position ibgateway.Position) []string {
	return []string{
		position.ContractDesc,
		formatQuantity(position.Position),
		fmt.Sprintf("%.2f", position.AvgCost),
		fmt.Sprintf("%.2f", position.MktPrice),
		FormatAmount(position.MktValue),
		FormatAmount(position.UnrealizedPnl),
		position.Currency,
	}
}

// PositionTotals returns the totals row for the positions view.
func PositionTotals(positions []ibgateway.Position) []string {
	var totalValue float64
	var totalPnl float64
	for _, position := range positions {
		totalValue += position.MktValue
		totalPnl += position.UnrealizedPnl
	}
	return []string{
		"TOTAL",
		"",
		"",
		"",
		FormatAmount(totalValue),
		FormatAmount(totalPnl),
		"",
	}
}

// OrderHeaders are the table headers for the orders view.
func OrderHeaders() []string {
	return []string{"SYMBOL", "SIDE", "TYPE", "QUANTITY", "PRICE", "STATUS"}
}

// OrderRow returns the table row for an order.
func OrderRow(order ibgateway.Order) []string {
	return []string{
		order.Ticker,
		order.Side,
		order.OrderType,
		formatQuantity(order.TotalSize),
		fmt.Sprintf("%.2f", order.Price),
		order.Status,
	}
}

// *** PRIVATE ***

// formatQuantity formats a share quantity, dropping the fraction for whole
// quantities.
func formatQuantity(quantity float64) string {
	if quantity == math.Trunc(quantity) {
		return fmt.Sprintf("%d", int64(quantity))
	}
	return fmt.Sprintf("%g", quantity)
}
