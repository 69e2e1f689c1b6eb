// Package metrics composes the summary figures of every dashboard page from
// the aggregation engine, the risk classifier and the fraud detector.
package metrics

import (
	"github.com/savegress/bankpulse/internal/analytics"
	"github.com/savegress/bankpulse/internal/config"
	"github.com/savegress/bankpulse/internal/fraud"
	"github.com/savegress/bankpulse/internal/regulatory"
	"github.com/savegress/bankpulse/internal/risk"
	"github.com/savegress/bankpulse/internal/store"
	"github.com/savegress/bankpulse/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Composer builds page metrics from a snapshot. It holds only configuration
// and is safe for concurrent use.
type Composer struct {
	config     config.AnalyticsConfig
	policy     regulatory.Policy
	classifier *risk.Classifier
	detector   *fraud.Detector
	log        logrus.FieldLogger
}

// NewComposer creates a new metrics composer
func NewComposer(cfg config.AnalyticsConfig, classifier *risk.Classifier, detector *fraud.Detector, log logrus.FieldLogger) *Composer {
	return &Composer{
		config:     cfg,
		policy:     regulatory.PolicyFromAnalytics(cfg),
		classifier: classifier,
		detector:   detector,
		log:        log.WithField("component", "metrics"),
	}
}

// CustomerBalance is one entry of the top customers ranking
type CustomerBalance struct {
	CustomerID   int64           `json:"customer_id"`
	FullName     string          `json:"full_name"`
	AnnualIncome decimal.Decimal `json:"annual_income"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}

// ExecutiveSummary is the headline view of a snapshot
type ExecutiveSummary struct {
	TotalCustomers        int                        `json:"total_customers"`
	TotalActiveAssets     decimal.Decimal            `json:"total_active_assets"`
	TotalActiveLoans      decimal.Decimal            `json:"total_active_loans"`
	ActiveFraudCases      int                        `json:"active_fraud_cases"`
	TopCustomers          []CustomerBalance          `json:"top_customers"`
	AccountsByType        []analytics.Bucket[string] `json:"accounts_by_type"`
	DailyTransactionCount []analytics.Bucket[string] `json:"daily_transaction_count"`
}

// ExecutiveSummary computes the headline totals. Assets and loans only
// include Active rows.
func (c *Composer) ExecutiveSummary(snap *store.Snapshot) *ExecutiveSummary {
	summary := &ExecutiveSummary{
		TotalCustomers:    len(snap.Customers()),
		TotalActiveAssets: TotalActiveAssets(snap.Accounts()),
		TotalActiveLoans:  TotalActiveLoans(snap.Loans()),
		ActiveFraudCases:  fraud.SummarizeCases(snap.FraudCases()).ActiveCases,
		TopCustomers:      TopCustomersByBalance(snap, c.config.TopCustomers),
		AccountsByType: analytics.Aggregate(snap.Accounts(), analytics.Query[models.Account, string]{
			GroupBy: func(a models.Account) string { return string(a.Type) },
			Reduce:  analytics.Count[models.Account](),
			Order:   analytics.ByValueDesc,
		}),
		DailyTransactionCount: analytics.Aggregate(snap.Transactions(), analytics.Query[models.Transaction, string]{
			GroupBy: func(t models.Transaction) string { return analytics.DateKey(t.Timestamp) },
			Reduce:  analytics.Count[models.Transaction](),
			Order:   analytics.ByKey,
		}),
	}

	c.log.WithFields(logrus.Fields{
		"version":   snap.Version(),
		"customers": summary.TotalCustomers,
	}).Debug("Executive summary computed")

	return summary
}

// TopCustomers ranks the n customers with the highest total balance
func (c *Composer) TopCustomers(snap *store.Snapshot, n int) []CustomerBalance {
	return TopCustomersByBalance(snap, n)
}

// Regulatory computes the regulatory table with the configured policy
func (c *Composer) Regulatory(snap *store.Snapshot) regulatory.Metrics {
	return regulatory.Compute(snap, c.policy)
}

// TotalActiveAssets sums the balances of Active accounts
func TotalActiveAssets(accounts []models.Account) decimal.Decimal {
	return analytics.Total(accounts, analytics.Sum(func(a models.Account) decimal.Decimal {
		return a.Balance
	}), func(a models.Account) bool {
		return a.Status == models.AccountStatusActive
	})
}

// TotalActiveLoans sums the amounts of Active loans
func TotalActiveLoans(loans []models.Loan) decimal.Decimal {
	return analytics.Total(loans, analytics.Sum(func(l models.Loan) decimal.Decimal {
		return l.Amount
	}), func(l models.Loan) bool {
		return l.Status == models.LoanStatusActive
	})
}

// TopCustomersByBalance sums every account balance per customer, whatever
// the account status, and returns the n largest. Ties go to the lower
// customer ID. Customers without accounts are not ranked.
func TopCustomersByBalance(snap *store.Snapshot, n int) []CustomerBalance {
	if n <= 0 {
		return []CustomerBalance{}
	}

	totals := analytics.Aggregate(snap.Accounts(), analytics.Query[models.Account, int64]{
		GroupBy: func(a models.Account) int64 { return a.CustomerID },
		Reduce: analytics.Sum(func(a models.Account) decimal.Decimal {
			return a.Balance
		}),
		Order: analytics.ByValueDesc,
		Limit: n,
	})

	top := make([]CustomerBalance, 0, len(totals))
	for _, b := range totals {
		customer, _ := snap.Customer(b.Key)
		top = append(top, CustomerBalance{
			CustomerID:   b.Key,
			FullName:     customer.FullName,
			AnnualIncome: customer.AnnualIncome,
			TotalBalance: b.Value,
		})
	}
	return top
}
