package fraud

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/savegress/bankpulse/internal/store"
	"github.com/savegress/bankpulse/pkg/models"
	"github.com/shopspring/decimal"
)

// ErrNotImplemented marks a named detection capability with no algorithm yet
var ErrNotImplemented = errors.New("not implemented")

// DetectLargeTransactions returns every transaction whose amount is strictly
// above threshold, in source order. The result is the complete set; callers
// decide how many to show.
func DetectLargeTransactions(txs []models.Transaction, threshold decimal.Decimal) []models.Transaction {
	large := make([]models.Transaction, 0)
	for _, txn := range txs {
		if txn.Amount.GreaterThan(threshold) {
			large = append(large, txn)
		}
	}
	return large
}

// DetectMultiLoanCustomers counts loans per customer and keeps customers
// holding more than one. Every loan counts whatever its status.
func DetectMultiLoanCustomers(loans []models.Loan) map[int64]int {
	counts := make(map[int64]int)
	for _, loan := range loans {
		counts[loan.CustomerID]++
	}
	for id, n := range counts {
		if n <= 1 {
			delete(counts, id)
		}
	}
	return counts
}

// DetectGeographicAnomalies would flag transactions made from different
// countries within a short timeframe. Transactions carry no location data,
// so there is nothing to compare and the check always reports
// ErrNotImplemented.
func DetectGeographicAnomalies(txs []models.Transaction, window time.Duration) ([]Alert, error) {
	return nil, fmt.Errorf("geographic anomaly detection: %w", ErrNotImplemented)
}

// MultiLoanCustomer is a customer holding several loans
type MultiLoanCustomer struct {
	Customer  models.Customer `json:"customer"`
	LoanCount int             `json:"loan_count"`
}

// rankMultiLoan orders by loan count descending, then customer ID
func rankMultiLoan(list []MultiLoanCustomer) {
	slices.SortFunc(list, func(a, b MultiLoanCustomer) int {
		if c := cmp.Compare(b.LoanCount, a.LoanCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Customer.ID, b.Customer.ID)
	})
}

// LargeAmountRule raises an alert per transaction above the threshold
type LargeAmountRule struct {
	threshold decimal.Decimal
}

// NewLargeAmountRule creates a new large amount rule
func NewLargeAmountRule(threshold decimal.Decimal) *LargeAmountRule {
	return &LargeAmountRule{threshold: threshold}
}

func (r *LargeAmountRule) Name() string { return "large_amount" }

func (r *LargeAmountRule) Evaluate(snap *store.Snapshot) []Alert {
	var alerts []Alert
	for _, txn := range DetectLargeTransactions(snap.Transactions(), r.threshold) {
		acct, _ := snap.Account(txn.AccountID)
		alerts = append(alerts, Alert{
			Type:           AlertTypeLargeTransaction,
			Severity:       SeverityMedium,
			CustomerID:     acct.CustomerID,
			AccountID:      txn.AccountID,
			TransactionIDs: []int64{txn.ID},
			Amount:         txn.Amount,
			Description:    "Transaction amount exceeds threshold",
			Details: map[string]interface{}{
				"threshold": r.threshold.String(),
				"type":      string(txn.Type),
				"timestamp": txn.Timestamp,
			},
		})
	}
	return alerts
}

// VelocityRule raises an alert per cluster of large transactions on one
// account within the window
type VelocityRule struct {
	threshold decimal.Decimal
	window    time.Duration
	minCount  int
}

// NewVelocityRule creates a new velocity rule
func NewVelocityRule(threshold decimal.Decimal, window time.Duration, minCount int) *VelocityRule {
	return &VelocityRule{threshold: threshold, window: window, minCount: minCount}
}

func (r *VelocityRule) Name() string { return "velocity" }

func (r *VelocityRule) Evaluate(snap *store.Snapshot) []Alert {
	var alerts []Alert
	for _, c := range DetectVelocity(snap.Transactions(), r.threshold, r.window, r.minCount) {
		acct, _ := snap.Account(c.AccountID)
		ids := make([]int64, len(c.Transactions))
		for i, txn := range c.Transactions {
			ids[i] = txn.ID
		}
		alerts = append(alerts, Alert{
			Type:           AlertTypeVelocity,
			Severity:       SeverityHigh,
			CustomerID:     acct.CustomerID,
			AccountID:      c.AccountID,
			TransactionIDs: ids,
			Amount:         c.TotalAmount,
			Description:    "Multiple large transactions in short period",
			Details: map[string]interface{}{
				"count":  len(c.Transactions),
				"window": r.window.String(),
				"start":  c.Start,
				"end":    c.End,
			},
		})
	}
	return alerts
}

// MultiLoanRule raises an alert per customer holding several loans
type MultiLoanRule struct{}

// NewMultiLoanRule creates a new multi-loan rule
func NewMultiLoanRule() *MultiLoanRule { return &MultiLoanRule{} }

func (r *MultiLoanRule) Name() string { return "multi_loan" }

func (r *MultiLoanRule) Evaluate(snap *store.Snapshot) []Alert {
	counts := DetectMultiLoanCustomers(snap.Loans())
	ids := make([]int64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	alerts := make([]Alert, 0, len(ids))
	for _, id := range ids {
		alerts = append(alerts, Alert{
			Type:        AlertTypeMultiLoan,
			Severity:    SeverityLow,
			CustomerID:  id,
			Amount:      decimal.Zero,
			Description: "Customer holds multiple loans",
			Details: map[string]interface{}{
				"loan_count": counts[id],
			},
		})
	}
	return alerts
}
