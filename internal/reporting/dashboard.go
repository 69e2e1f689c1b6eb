// Package reporting assembles the dashboard pages from the current snapshot
// and caches them per snapshot version.
package reporting

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/savegress/bankpulse/internal/cache"
	"github.com/savegress/bankpulse/internal/compliance"
	"github.com/savegress/bankpulse/internal/fraud"
	"github.com/savegress/bankpulse/internal/metrics"
	"github.com/savegress/bankpulse/internal/regulatory"
	"github.com/savegress/bankpulse/internal/risk"
	"github.com/savegress/bankpulse/internal/store"
	"github.com/savegress/bankpulse/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Errors
var (
	ErrInvalidParameter = &Error{Code: "INVALID_PARAMETER", Message: "Invalid parameter"}
)

// Error represents a reporting error
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// SnapshotInfo describes the snapshot pages are computed from
type SnapshotInfo struct {
	Version  string         `json:"version"`
	LoadedAt time.Time      `json:"loaded_at"`
	Stats    map[string]int `json:"stats"`
}

// CompliancePage combines KYC, AML and the regulatory table
type CompliancePage struct {
	KYC        compliance.Summary      `json:"kyc"`
	AML        compliance.AMLSummary   `json:"aml"`
	Regulatory []regulatory.ReportItem `json:"regulatory"`
}

// Classification is the band of a single credit score
type Classification struct {
	Score        float64             `json:"score"`
	RiskCategory models.RiskCategory `json:"risk_category"`
	HighRisk     bool                `json:"high_risk"`
	InRange      bool                `json:"in_range"`
}

// Dashboard serves every page of the BI dashboard
type Dashboard struct {
	store      *store.Store
	composer   *metrics.Composer
	detector   *fraud.Detector
	classifier *risk.Classifier
	cache      cache.Backend
	ttl        time.Duration
	log        logrus.FieldLogger
}

// NewDashboard creates a new dashboard. A ttl of zero uses cache.DefaultTTL.
func NewDashboard(st *store.Store, composer *metrics.Composer, detector *fraud.Detector, classifier *risk.Classifier, c cache.Backend, ttl time.Duration, log logrus.FieldLogger) *Dashboard {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Dashboard{
		store:      st,
		composer:   composer,
		detector:   detector,
		classifier: classifier,
		cache:      c,
		ttl:        ttl,
		log:        log.WithField("component", "reporting"),
	}
}

// page runs compute against the current snapshot through the cache
func page[T any](ctx context.Context, d *Dashboard, name string, params []string, compute func(*store.Snapshot) (T, error)) (T, error) {
	var zero T
	snap, err := d.store.Snapshot()
	if err != nil {
		return zero, err
	}

	key := cache.Key(snap.Version(), name, params...)
	out, hit, err := cache.Fetch(ctx, d.cache, key, d.ttl, func() (T, error) {
		return compute(snap)
	})
	if err != nil {
		return zero, err
	}

	d.log.WithFields(logrus.Fields{
		"page":    name,
		"version": snap.Version(),
		"cached":  hit,
	}).Debug("Page served")
	return out, nil
}

// Snapshot describes the current snapshot
func (d *Dashboard) Snapshot(ctx context.Context) (*SnapshotInfo, error) {
	snap, err := d.store.Snapshot()
	if err != nil {
		return nil, err
	}
	return &SnapshotInfo{Version: snap.Version(), LoadedAt: snap.LoadedAt(), Stats: snap.Stats()}, nil
}

// Refresh reloads the store and drops the cached pages of the old snapshot
func (d *Dashboard) Refresh(ctx context.Context) (*SnapshotInfo, error) {
	old, _ := d.store.Snapshot()

	snap, err := d.store.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	if old != nil {
		if err := d.cache.DeletePattern(ctx, old.Version()+":*"); err != nil {
			d.log.WithError(err).Warn("Failed to drop cached pages")
		}
	}
	return &SnapshotInfo{Version: snap.Version(), LoadedAt: snap.LoadedAt(), Stats: snap.Stats()}, nil
}

// Summary returns the executive summary
func (d *Dashboard) Summary(ctx context.Context) (*metrics.ExecutiveSummary, error) {
	return page(ctx, d, "summary", nil, func(snap *store.Snapshot) (*metrics.ExecutiveSummary, error) {
		return d.composer.ExecutiveSummary(snap), nil
	})
}

// TopCustomers ranks the n customers with the highest total balance
func (d *Dashboard) TopCustomers(ctx context.Context, n int) ([]metrics.CustomerBalance, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive, got %d", ErrInvalidParameter, n)
	}
	return page(ctx, d, "top-customers", []string{strconv.Itoa(n)}, func(snap *store.Snapshot) ([]metrics.CustomerBalance, error) {
		return d.composer.TopCustomers(snap, n), nil
	})
}

// Fraud returns the full fraud report
func (d *Dashboard) Fraud(ctx context.Context) (*fraud.Report, error) {
	return page(ctx, d, "fraud", nil, func(snap *store.Snapshot) (*fraud.Report, error) {
		return d.detector.Scan(snap), nil
	})
}

// LargeTransactions lists transactions above threshold. A nil threshold
// uses the configured one.
func (d *Dashboard) LargeTransactions(ctx context.Context, threshold *decimal.Decimal) ([]models.Transaction, error) {
	limit := d.detector.Threshold()
	if threshold != nil {
		if threshold.IsNegative() {
			return nil, fmt.Errorf("%w: threshold must not be negative", ErrInvalidParameter)
		}
		limit = *threshold
	}
	return page(ctx, d, "large-transactions", []string{limit.String()}, func(snap *store.Snapshot) ([]models.Transaction, error) {
		return d.detector.LargeTransactions(snap, limit), nil
	})
}

// MultiLoanCustomers lists customers holding several loans
func (d *Dashboard) MultiLoanCustomers(ctx context.Context) ([]fraud.MultiLoanCustomer, error) {
	return page(ctx, d, "multi-loan", nil, func(snap *store.Snapshot) ([]fraud.MultiLoanCustomer, error) {
		return d.detector.MultiLoanCustomers(snap), nil
	})
}

// Velocity lists bursts of large transactions per account
func (d *Dashboard) Velocity(ctx context.Context) ([]fraud.VelocityCluster, error) {
	return page(ctx, d, "velocity", nil, func(snap *store.Snapshot) ([]fraud.VelocityCluster, error) {
		return d.detector.Velocity(snap), nil
	})
}

// GeographicAnomalies reports fraud.ErrNotImplemented
func (d *Dashboard) GeographicAnomalies(ctx context.Context) ([]fraud.Alert, error) {
	snap, err := d.store.Snapshot()
	if err != nil {
		return nil, err
	}
	return fraud.DetectGeographicAnomalies(snap.Transactions(), time.Hour)
}

// Customers returns the customer analytics page
func (d *Dashboard) Customers(ctx context.Context) (*metrics.CustomerAnalytics, error) {
	return page(ctx, d, "customers", nil, func(snap *store.Snapshot) (*metrics.CustomerAnalytics, error) {
		return d.composer.CustomerAnalytics(snap), nil
	})
}

// Operations returns the operational metrics page
func (d *Dashboard) Operations(ctx context.Context) (*metrics.OperationalMetrics, error) {
	return page(ctx, d, "operations", nil, func(snap *store.Snapshot) (*metrics.OperationalMetrics, error) {
		return d.composer.OperationalMetrics(snap), nil
	})
}

// Risk returns the risk management page
func (d *Dashboard) Risk(ctx context.Context) (*metrics.RiskManagement, error) {
	return page(ctx, d, "risk", nil, func(snap *store.Snapshot) (*metrics.RiskManagement, error) {
		return d.composer.RiskManagement(snap), nil
	})
}

// Classify maps a single score onto its credit risk band
func (d *Dashboard) Classify(score float64) Classification {
	category := d.classifier.Classify(score)
	return Classification{
		Score:        score,
		RiskCategory: category,
		HighRisk:     risk.IsHighRisk(category),
		InRange:      d.classifier.InRange(score),
	}
}

// Compliance returns the compliance page
func (d *Dashboard) Compliance(ctx context.Context) (*CompliancePage, error) {
	return page(ctx, d, "compliance", nil, func(snap *store.Snapshot) (*CompliancePage, error) {
		return &CompliancePage{
			KYC:        compliance.ComputeComplianceSummary(snap.KYCRecords()),
			AML:        compliance.SummarizeAMLCases(snap.AMLCases()),
			Regulatory: d.composer.Regulatory(snap).Items(),
		}, nil
	})
}

// AML returns the AML case summary
func (d *Dashboard) AML(ctx context.Context) (*compliance.AMLSummary, error) {
	return page(ctx, d, "aml", nil, func(snap *store.Snapshot) (*compliance.AMLSummary, error) {
		summary := compliance.SummarizeAMLCases(snap.AMLCases())
		return &summary, nil
	})
}

// Regulatory returns the regulatory metrics
func (d *Dashboard) Regulatory(ctx context.Context) (*regulatory.Metrics, error) {
	return page(ctx, d, "regulatory", nil, func(snap *store.Snapshot) (*regulatory.Metrics, error) {
		m := d.composer.Regulatory(snap)
		return &m, nil
	})
}
