// Package compliance derives KYC compliance and AML case summaries.
package compliance

import (
	"cmp"
	"slices"

	"github.com/savegress/bankpulse/internal/analytics"
	"github.com/savegress/bankpulse/pkg/models"
)

// IsNonCompliant reports whether a KYC status is Pending or Expired
func IsNonCompliant(status models.KYCStatus) bool {
	return status == models.KYCStatusPending || status == models.KYCStatusExpired
}

// IsCompliant is the complement of IsNonCompliant
func IsCompliant(status models.KYCStatus) bool {
	return !IsNonCompliant(status)
}

// Summary is the KYC compliance view of a snapshot
type Summary struct {
	TotalRecords          int                        `json:"total_records"`
	StatusDistribution    []analytics.Bucket[string] `json:"status_distribution"`
	NonCompliantCustomers []int64                    `json:"non_compliant_customers"`
	NonCompliantCount     int                        `json:"non_compliant_count"`
	Statuses              []models.ComplianceStatus  `json:"statuses"`
}

// ComputeComplianceSummary counts KYC records per status and lists the
// customers whose record is Pending or Expired, ordered by customer ID.
func ComputeComplianceSummary(kyc []models.KYCRecord) Summary {
	summary := Summary{
		TotalRecords: len(kyc),
		StatusDistribution: analytics.Aggregate(kyc, analytics.Query[models.KYCRecord, string]{
			GroupBy: func(r models.KYCRecord) string { return string(r.Status) },
			Reduce:  analytics.Count[models.KYCRecord](),
			Order:   analytics.ByValueDesc,
		}),
		NonCompliantCustomers: make([]int64, 0),
		Statuses:              make([]models.ComplianceStatus, 0, len(kyc)),
	}

	for _, r := range kyc {
		ok := !IsNonCompliant(r.Status)
		summary.Statuses = append(summary.Statuses, models.ComplianceStatus{
			CustomerID:  r.CustomerID,
			KYCStatus:   r.Status,
			IsCompliant: ok,
		})
		if !ok {
			summary.NonCompliantCustomers = append(summary.NonCompliantCustomers, r.CustomerID)
		}
	}

	slices.Sort(summary.NonCompliantCustomers)
	slices.SortFunc(summary.Statuses, func(a, b models.ComplianceStatus) int {
		return cmp.Compare(a.CustomerID, b.CustomerID)
	})
	summary.NonCompliantCount = len(summary.NonCompliantCustomers)
	return summary
}

// AMLSummary aggregates AML cases
type AMLSummary struct {
	Total      int                        `json:"total"`
	OpenCount  int                        `json:"open_count"`
	ByStatus   []analytics.Bucket[string] `json:"by_status"`
	BySeverity []analytics.Bucket[string] `json:"by_severity"`
	ByType     []analytics.Bucket[string] `json:"by_type"`
}

// IsOpen reports whether an AML case still needs work
func IsOpen(status models.AMLCaseStatus) bool {
	return status != models.AMLCaseResolved
}

// SummarizeAMLCases counts AML cases by status, severity and type. Every
// case not yet resolved is open.
func SummarizeAMLCases(cases []models.AMLCase) AMLSummary {
	count := analytics.Count[models.AMLCase]()
	summary := AMLSummary{
		Total: len(cases),
		ByStatus: analytics.Aggregate(cases, analytics.Query[models.AMLCase, string]{
			GroupBy: func(c models.AMLCase) string { return string(c.Status) },
			Reduce:  count,
			Order:   analytics.ByValueDesc,
		}),
		BySeverity: analytics.Aggregate(cases, analytics.Query[models.AMLCase, string]{
			GroupBy: func(c models.AMLCase) string { return string(c.Severity) },
			Reduce:  count,
			Order:   analytics.ByValueDesc,
		}),
		ByType: analytics.Aggregate(cases, analytics.Query[models.AMLCase, string]{
			GroupBy: func(c models.AMLCase) string { return string(c.Type) },
			Reduce:  count,
			Order:   analytics.ByValueDesc,
		}),
	}

	for _, c := range cases {
		if IsOpen(c.Status) {
			summary.OpenCount++
		}
	}
	return summary
}
