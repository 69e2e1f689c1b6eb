// Package fraud detects suspicious transactions and loan patterns and
// summarizes reported fraud cases.
package fraud

import (
	"time"

	"github.com/savegress/bankpulse/internal/analytics"
	"github.com/savegress/bankpulse/internal/config"
	"github.com/savegress/bankpulse/internal/store"
	"github.com/savegress/bankpulse/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Rule defines a fraud detection rule evaluated against a whole snapshot
type Rule interface {
	Name() string
	Evaluate(snap *store.Snapshot) []Alert
}

// AlertType represents the kind of suspicious pattern
type AlertType string

const (
	AlertTypeLargeTransaction AlertType = "large_transaction"
	AlertTypeVelocity         AlertType = "velocity"
	AlertTypeMultiLoan        AlertType = "multi_loan"
)

// Severity represents the severity of an alert
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Alert is one suspicious pattern found by a rule
type Alert struct {
	Type           AlertType              `json:"type"`
	Severity       Severity               `json:"severity"`
	CustomerID     int64                  `json:"customer_id,omitempty"`
	AccountID      int64                  `json:"account_id,omitempty"`
	TransactionIDs []int64                `json:"transaction_ids,omitempty"`
	Amount         decimal.Decimal        `json:"amount"`
	Description    string                 `json:"description"`
	Details        map[string]interface{} `json:"details,omitempty"`
}

// Config holds the detector thresholds
type Config struct {
	LargeTransactionThreshold decimal.Decimal
	VelocityWindow            time.Duration
	VelocityMinCount          int
}

// ConfigFromAnalytics extracts the detector thresholds
func ConfigFromAnalytics(cfg config.AnalyticsConfig) Config {
	return Config{
		LargeTransactionThreshold: decimal.NewFromFloat(cfg.LargeTransactionThreshold),
		VelocityWindow:            cfg.VelocityWindow,
		VelocityMinCount:          cfg.VelocityMinCount,
	}
}

// Detector runs the fraud rules over snapshots. It keeps no state between
// calls and is safe for concurrent use.
type Detector struct {
	config Config
	rules  []Rule
	log    logrus.FieldLogger
}

// NewDetector creates a new fraud detector
func NewDetector(cfg Config, log logrus.FieldLogger) *Detector {
	d := &Detector{
		config: cfg,
		log:    log.WithField("component", "fraud"),
	}
	d.rules = []Rule{
		NewLargeAmountRule(cfg.LargeTransactionThreshold),
		NewVelocityRule(cfg.LargeTransactionThreshold, cfg.VelocityWindow, cfg.VelocityMinCount),
		NewMultiLoanRule(),
	}
	return d
}

// Threshold returns the configured large transaction threshold
func (d *Detector) Threshold() decimal.Decimal {
	return d.config.LargeTransactionThreshold
}

// Report is the full fraud view of one snapshot
type Report struct {
	LargeTransactions  []models.Transaction `json:"large_transactions"`
	VelocityClusters   []VelocityCluster    `json:"velocity_clusters"`
	MultiLoanCustomers []MultiLoanCustomer  `json:"multi_loan_customers"`
	Alerts             []Alert              `json:"alerts"`
	AlertsByType       map[AlertType]int    `json:"alerts_by_type"`
	Cases              CaseSummary          `json:"cases"`
}

// Scan evaluates every rule and summarizes fraud cases
func (d *Detector) Scan(snap *store.Snapshot) *Report {
	report := &Report{
		LargeTransactions:  d.LargeTransactions(snap, d.config.LargeTransactionThreshold),
		VelocityClusters:   d.Velocity(snap),
		MultiLoanCustomers: d.MultiLoanCustomers(snap),
		Alerts:             make([]Alert, 0),
		AlertsByType:       make(map[AlertType]int),
		Cases:              SummarizeCases(snap.FraudCases()),
	}

	for _, rule := range d.rules {
		alerts := rule.Evaluate(snap)
		report.Alerts = append(report.Alerts, alerts...)
		for _, a := range alerts {
			report.AlertsByType[a.Type]++
		}
	}

	d.log.WithFields(logrus.Fields{
		"version":            snap.Version(),
		"large_transactions": len(report.LargeTransactions),
		"velocity_clusters":  len(report.VelocityClusters),
		"alerts":             len(report.Alerts),
	}).Debug("Fraud scan completed")

	return report
}

// LargeTransactions returns every snapshot transaction above threshold
func (d *Detector) LargeTransactions(snap *store.Snapshot, threshold decimal.Decimal) []models.Transaction {
	return DetectLargeTransactions(snap.Transactions(), threshold)
}

// Velocity returns the velocity clusters of the snapshot with the owning
// customer attached
func (d *Detector) Velocity(snap *store.Snapshot) []VelocityCluster {
	clusters := DetectVelocity(snap.Transactions(), d.config.LargeTransactionThreshold, d.config.VelocityWindow, d.config.VelocityMinCount)
	for i := range clusters {
		if acct, ok := snap.Account(clusters[i].AccountID); ok {
			clusters[i].CustomerID = acct.CustomerID
		}
	}
	return clusters
}

// MultiLoanCustomers returns customers with more than one loan, most loans
// first, ties by customer ID
func (d *Detector) MultiLoanCustomers(snap *store.Snapshot) []MultiLoanCustomer {
	counts := DetectMultiLoanCustomers(snap.Loans())
	list := make([]MultiLoanCustomer, 0, len(counts))
	for id, n := range counts {
		customer, ok := snap.Customer(id)
		if !ok {
			d.log.WithField("customer_id", id).Warn("Loan references unknown customer")
			customer = models.Customer{ID: id}
		}
		list = append(list, MultiLoanCustomer{Customer: customer, LoanCount: n})
	}
	rankMultiLoan(list)
	return list
}

// CaseSummary aggregates reported fraud cases
type CaseSummary struct {
	Total       int                        `json:"total"`
	ActiveCases int                        `json:"active_cases"`
	ByRiskLevel []analytics.Bucket[string] `json:"by_risk_level"`
	ByStatus    []analytics.Bucket[string] `json:"by_status"`
}

// SummarizeCases counts fraud cases by risk level and status. Cases under
// investigation are the active ones.
func SummarizeCases(cases []models.FraudCase) CaseSummary {
	summary := CaseSummary{
		Total: len(cases),
		ByRiskLevel: analytics.Aggregate(cases, analytics.Query[models.FraudCase, string]{
			GroupBy: func(c models.FraudCase) string { return string(c.RiskLevel) },
			Reduce:  analytics.Count[models.FraudCase](),
			Order:   analytics.ByValueDesc,
		}),
		ByStatus: analytics.Aggregate(cases, analytics.Query[models.FraudCase, string]{
			GroupBy: func(c models.FraudCase) string { return string(c.Status) },
			Reduce:  analytics.Count[models.FraudCase](),
			Order:   analytics.ByValueDesc,
		}),
	}

	for _, c := range cases {
		if c.Status == models.FraudCaseUnderInvestigation {
			summary.ActiveCases++
		}
	}
	return summary
}
