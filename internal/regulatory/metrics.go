// Package regulatory computes the balance sheet figures and policy ratios
// reported to regulators.
package regulatory

import (
	"github.com/savegress/bankpulse/internal/analytics"
	"github.com/savegress/bankpulse/internal/config"
	"github.com/savegress/bankpulse/internal/store"
	"github.com/savegress/bankpulse/pkg/models"
	"github.com/shopspring/decimal"
)

// Policy holds the configured regulatory constants. Capital and liquidity
// ratios are supplied, not derived from the data.
type Policy struct {
	DepositRatio   decimal.Decimal
	CapitalRatio   decimal.Decimal
	LiquidityRatio decimal.Decimal
}

// PolicyFromAnalytics extracts the regulatory constants from config
func PolicyFromAnalytics(cfg config.AnalyticsConfig) Policy {
	return Policy{
		DepositRatio:   decimal.NewFromFloat(cfg.DepositRatio),
		CapitalRatio:   decimal.NewFromFloat(cfg.CapitalRatio),
		LiquidityRatio: decimal.NewFromFloat(cfg.LiquidityRatio),
	}
}

// Metrics is the regulatory reporting table
type Metrics struct {
	TotalAssets       decimal.Decimal `json:"total_assets"`
	EstimatedDeposits decimal.Decimal `json:"estimated_deposits"`
	TotalLoans        decimal.Decimal `json:"total_loans"`
	CapitalRatio      decimal.Decimal `json:"capital_ratio"`
	LiquidityRatio    decimal.Decimal `json:"liquidity_ratio"`
}

// Compute builds the regulatory metrics of a snapshot. Total assets sum the
// balance of every account whatever its status; total loans only count
// Active loans.
func Compute(snap *store.Snapshot, policy Policy) Metrics {
	assets := analytics.Total(snap.Accounts(), analytics.Sum(func(a models.Account) decimal.Decimal {
		return a.Balance
	}), nil)

	loans := analytics.Total(snap.Loans(), analytics.Sum(func(l models.Loan) decimal.Decimal {
		return l.Amount
	}), func(l models.Loan) bool {
		return l.Status == models.LoanStatusActive
	})

	return Metrics{
		TotalAssets:       assets,
		EstimatedDeposits: assets.Mul(policy.DepositRatio),
		TotalLoans:        loans,
		CapitalRatio:      policy.CapitalRatio,
		LiquidityRatio:    policy.LiquidityRatio,
	}
}

// ItemKind tells consumers how to read an item's value
type ItemKind string

const (
	ItemKindAmount  ItemKind = "amount"
	ItemKindPercent ItemKind = "percent"
)

// ReportItem is one line of the regulatory table
type ReportItem struct {
	LineNumber  string          `json:"line_number"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	Kind        ItemKind        `json:"kind"`
	Source      string          `json:"source"`
}

// Items lays the metrics out as report lines, in filing order
func (m Metrics) Items() []ReportItem {
	return []ReportItem{
		{LineNumber: "1", Description: "Total Assets", Value: m.TotalAssets, Kind: ItemKindAmount, Source: "accounts"},
		{LineNumber: "2", Description: "Total Deposits", Value: m.EstimatedDeposits, Kind: ItemKindAmount, Source: "total_assets * deposit_ratio"},
		{LineNumber: "3", Description: "Total Loans", Value: m.TotalLoans, Kind: ItemKindAmount, Source: "active loans"},
		{LineNumber: "4", Description: "Capital Ratio", Value: m.CapitalRatio, Kind: ItemKindPercent, Source: "config"},
		{LineNumber: "5", Description: "Liquidity Ratio", Value: m.LiquidityRatio, Kind: ItemKindPercent, Source: "config"},
	}
}
