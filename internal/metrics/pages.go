package metrics

import (
	"cmp"
	"slices"

	"github.com/savegress/bankpulse/internal/analytics"
	"github.com/savegress/bankpulse/internal/fraud"
	"github.com/savegress/bankpulse/internal/risk"
	"github.com/savegress/bankpulse/internal/store"
	"github.com/savegress/bankpulse/pkg/models"
	"github.com/shopspring/decimal"
)

// CustomerAnalytics segments the customer base
type CustomerAnalytics struct {
	TotalCustomers         int                        `json:"total_customers"`
	IncomeHistogram        []analytics.HistogramBin   `json:"income_histogram"`
	EmploymentDistribution []analytics.Bucket[string] `json:"employment_distribution"`
	CustomersByCity        []analytics.Bucket[string] `json:"customers_by_city"`
	MultiLoanCount         int                        `json:"multi_loan_count"`
	MultiLoanCustomers     []fraud.MultiLoanCustomer  `json:"multi_loan_customers"`
}

// CustomerAnalytics computes income, employment and geographic segments
func (c *Composer) CustomerAnalytics(snap *store.Snapshot) *CustomerAnalytics {
	customers := snap.Customers()
	incomes := make([]float64, len(customers))
	for i, cust := range customers {
		incomes[i] = cust.AnnualIncome.InexactFloat64()
	}

	multi := c.detector.MultiLoanCustomers(snap)

	return &CustomerAnalytics{
		TotalCustomers:  len(customers),
		IncomeHistogram: analytics.Histogram(incomes, c.config.HistogramBins),
		EmploymentDistribution: analytics.Aggregate(customers, analytics.Query[models.Customer, string]{
			GroupBy: func(cust models.Customer) string { return string(cust.EmploymentStatus) },
			Reduce:  analytics.Count[models.Customer](),
			Order:   analytics.ByValueDesc,
		}),
		CustomersByCity: analytics.Aggregate(customers, analytics.Query[models.Customer, string]{
			GroupBy: func(cust models.Customer) string { return cust.City },
			Reduce:  analytics.Count[models.Customer](),
			Order:   analytics.ByValueDesc,
		}),
		MultiLoanCount:     len(multi),
		MultiLoanCustomers: multi,
	}
}

// BranchPerformance is the loan book of one branch
type BranchPerformance struct {
	BranchID         int64           `json:"branch_id"`
	Name             string          `json:"name"`
	City             string          `json:"city"`
	EmployeeCount    int             `json:"employee_count"`
	TotalLoans       int             `json:"total_loans"`
	TotalLoanAmount  decimal.Decimal `json:"total_loan_amount"`
	LoansPerEmployee float64         `json:"loans_per_employee"`
}

// OperationalMetrics covers branch efficiency and transaction flow
type OperationalMetrics struct {
	Branches               []BranchPerformance        `json:"branches"`
	UnassignedLoans        int                        `json:"unassigned_loans"`
	TransactionTypes       []analytics.Bucket[string] `json:"transaction_types"`
	DailyTransactionAmount []analytics.Bucket[string] `json:"daily_transaction_amount"`
}

// OperationalMetrics computes branch performance from the loans booked at
// each branch, and transaction volume by type and by day
func (c *Composer) OperationalMetrics(snap *store.Snapshot) *OperationalMetrics {
	loans := snap.Loans()
	count := analytics.Aggregate(loans, analytics.Query[models.Loan, int64]{
		GroupBy: func(l models.Loan) int64 { return l.BranchID },
		Reduce:  analytics.Count[models.Loan](),
	})
	amount := analytics.Aggregate(loans, analytics.Query[models.Loan, int64]{
		GroupBy: func(l models.Loan) int64 { return l.BranchID },
		Reduce:  analytics.Sum(func(l models.Loan) decimal.Decimal { return l.Amount }),
	})

	counts := make(map[int64]int, len(count))
	for _, b := range count {
		counts[b.Key] = int(b.Count())
	}
	amounts := make(map[int64]decimal.Decimal, len(amount))
	for _, b := range amount {
		amounts[b.Key] = b.Value
	}

	branches := make([]BranchPerformance, 0, len(snap.Branches()))
	for _, br := range snap.Branches() {
		perf := BranchPerformance{
			BranchID:        br.ID,
			Name:            br.Name,
			City:            br.City,
			EmployeeCount:   br.EmployeeCount,
			TotalLoans:      counts[br.ID],
			TotalLoanAmount: decimal.Zero,
		}
		if a, ok := amounts[br.ID]; ok {
			perf.TotalLoanAmount = a
		}
		if br.EmployeeCount > 0 {
			perf.LoansPerEmployee = float64(perf.TotalLoans) / float64(br.EmployeeCount)
		}
		branches = append(branches, perf)
	}
	slices.SortFunc(branches, func(a, b BranchPerformance) int {
		if d := b.TotalLoanAmount.Cmp(a.TotalLoanAmount); d != 0 {
			return d
		}
		return cmp.Compare(a.BranchID, b.BranchID)
	})

	return &OperationalMetrics{
		Branches:        branches,
		UnassignedLoans: counts[0],
		TransactionTypes: analytics.Aggregate(snap.Transactions(), analytics.Query[models.Transaction, string]{
			GroupBy: func(t models.Transaction) string { return string(t.Type) },
			Reduce:  analytics.Count[models.Transaction](),
			Order:   analytics.ByValueDesc,
		}),
		DailyTransactionAmount: analytics.Aggregate(snap.Transactions(), analytics.Query[models.Transaction, string]{
			GroupBy: func(t models.Transaction) string { return analytics.DateKey(t.Timestamp) },
			Reduce:  analytics.Sum(func(t models.Transaction) decimal.Decimal { return t.Amount }),
			Order:   analytics.ByKey,
		}),
	}
}

// RiskManagement is the credit and loan risk view
type RiskManagement struct {
	ScoredCustomers        int                        `json:"scored_customers"`
	OutOfRangeScores       int                        `json:"out_of_range_scores"`
	ScoreHistogram         []analytics.HistogramBin   `json:"score_histogram"`
	CategoryDistribution   []analytics.Bucket[string] `json:"category_distribution"`
	LoanStatusDistribution []analytics.Bucket[string] `json:"loan_status_distribution"`
	HighRiskCount          int                        `json:"high_risk_count"`
	HighRiskCustomers      []models.RiskProfile       `json:"high_risk_customers"`
}

// RiskManagement classifies every credit score and summarizes loan status.
// High-risk customers are listed lowest score first.
func (c *Composer) RiskManagement(snap *store.Snapshot) *RiskManagement {
	profiles := c.classifier.Profiles(snap.CreditScores())

	scores := make([]float64, len(profiles))
	report := &RiskManagement{
		ScoredCustomers:   len(profiles),
		HighRiskCustomers: make([]models.RiskProfile, 0),
	}
	for i, p := range profiles {
		scores[i] = p.CreditScore
		if p.OutOfRange {
			report.OutOfRangeScores++
		}
		if risk.IsHighRisk(p.RiskCategory) {
			report.HighRiskCustomers = append(report.HighRiskCustomers, p)
		}
	}
	slices.SortFunc(report.HighRiskCustomers, func(a, b models.RiskProfile) int {
		if d := cmp.Compare(a.CreditScore, b.CreditScore); d != 0 {
			return d
		}
		return cmp.Compare(a.CustomerID, b.CustomerID)
	})

	report.HighRiskCount = len(report.HighRiskCustomers)
	report.ScoreHistogram = analytics.Histogram(scores, c.config.HistogramBins)
	report.CategoryDistribution = analytics.Aggregate(profiles, analytics.Query[models.RiskProfile, string]{
		GroupBy: func(p models.RiskProfile) string { return string(p.RiskCategory) },
		Reduce:  analytics.Count[models.RiskProfile](),
		Order:   analytics.ByValueDesc,
	})
	report.LoanStatusDistribution = analytics.Aggregate(snap.Loans(), analytics.Query[models.Loan, string]{
		GroupBy: func(l models.Loan) string { return string(l.Status) },
		Reduce:  analytics.Count[models.Loan](),
		Order:   analytics.ByValueDesc,
	})
	return report
}
