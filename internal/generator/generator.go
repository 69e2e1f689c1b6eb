// Package generator builds a seeded, reproducible demo dataset. It is the
// only place in bankpulse that uses randomness.
package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/savegress/bankpulse/internal/store"
	"github.com/savegress/bankpulse/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	cities   = []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix"}
	branches = []string{"New York Main", "Los Angeles Downtown", "Chicago Central", "Houston West", "Phoenix North"}
)

type weighted[T any] struct {
	value  T
	weight float64
}

// Generator produces synthetic datasets. Every Generate call starts from the
// configured seed, so the same config always yields the same dataset.
type Generator struct {
	cfg Config
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumCustomers <= 0 {
		cfg.NumCustomers = def.NumCustomers
	}
	if cfg.NumAccounts <= 0 {
		cfg.NumAccounts = def.NumAccounts
	}
	if cfg.NumTransactions < 0 {
		cfg.NumTransactions = def.NumTransactions
	}
	if cfg.NumLoans < 0 {
		cfg.NumLoans = def.NumLoans
	}
	if cfg.NumFraudCases < 0 {
		cfg.NumFraudCases = def.NumFraudCases
	}
	if cfg.NumAMLCases < 0 {
		cfg.NumAMLCases = def.NumAMLCases
	}
	if cfg.Start.IsZero() {
		cfg.Start = def.Start
	}
	return &Generator{cfg: cfg}
}

// Load implements store.Loader
func (g *Generator) Load(ctx context.Context) (*store.Dataset, error) {
	return g.Generate(ctx)
}

// Generate synthesises every table. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (*store.Dataset, error) {
	r := rand.New(rand.NewSource(g.cfg.Seed))
	ds := &store.Dataset{}

	ds.Customers = make([]models.Customer, g.cfg.NumCustomers)
	for i := range ds.Customers {
		id := int64(i + 1)
		ds.Customers[i] = models.Customer{
			ID:           id,
			FullName:     fmt.Sprintf("Customer %d", id),
			AnnualIncome: money(math.Max(0, r.NormFloat64()*25000+75000)),
			City:         cities[r.Intn(len(cities))],
			EmploymentStatus: pick(r, []weighted[models.EmploymentStatus]{
				{models.EmploymentFullTime, 0.6},
				{models.EmploymentPartTime, 0.2},
				{models.EmploymentSelfEmployed, 0.15},
				{models.EmploymentUnemployed, 0.05},
			}),
		}
	}

	ds.Accounts = make([]models.Account, g.cfg.NumAccounts)
	for i := range ds.Accounts {
		ds.Accounts[i] = models.Account{
			ID:         int64(i + 1),
			CustomerID: g.customerID(r),
			Type: pick(r, []weighted[models.AccountType]{
				{models.AccountTypeSavings, 0.4},
				{models.AccountTypeChecking, 0.3},
				{models.AccountTypeBusiness, 0.2},
				{models.AccountTypeInvestment, 0.1},
			}),
			Balance: money(r.ExpFloat64() * 10000),
			Status: pick(r, []weighted[models.AccountStatus]{
				{models.AccountStatusActive, 0.95},
				{models.AccountStatusInactive, 0.05},
			}),
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	txTypes := []models.TransactionType{
		models.TransactionTypeDeposit, models.TransactionTypeWithdrawal,
		models.TransactionTypeTransfer, models.TransactionTypePayment,
	}
	ds.Transactions = make([]models.Transaction, g.cfg.NumTransactions)
	for i := range ds.Transactions {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		ds.Transactions[i] = models.Transaction{
			ID:        int64(i + 1),
			AccountID: int64(r.Intn(g.cfg.NumAccounts) + 1),
			Type:      txTypes[r.Intn(len(txTypes))],
			Amount:    money(r.ExpFloat64() * 500),
			Timestamp: g.cfg.Start.Add(time.Duration(i) * time.Hour),
			Status: pick(r, []weighted[models.TransactionStatus]{
				{models.TransactionStatusCompleted, 0.95},
				{models.TransactionStatusPending, 0.03},
				{models.TransactionStatusFailed, 0.02},
			}),
		}
	}

	ds.Branches = make([]models.Branch, len(branches))
	for i, name := range branches {
		ds.Branches[i] = models.Branch{
			ID:            int64(i + 1),
			Name:          name,
			City:          cities[i],
			EmployeeCount: 20 + r.Intn(30),
		}
	}

	loanTypes := []models.LoanType{
		models.LoanTypeMortgage, models.LoanTypePersonal, models.LoanTypeAuto, models.LoanTypeBusiness,
	}
	ds.Loans = make([]models.Loan, g.cfg.NumLoans)
	for i := range ds.Loans {
		ds.Loans[i] = models.Loan{
			ID:           int64(i + 1),
			CustomerID:   g.customerID(r),
			BranchID:     int64(r.Intn(len(branches)) + 1),
			Type:         loanTypes[r.Intn(len(loanTypes))],
			Amount:       money(r.ExpFloat64() * 100000),
			InterestRate: math.Round((r.NormFloat64()*2+5.5)*100) / 100,
			Status: pick(r, []weighted[models.LoanStatus]{
				{models.LoanStatusActive, 0.7},
				{models.LoanStatusPaid, 0.25},
				{models.LoanStatusDefault, 0.05},
			}),
		}
	}

	fraudStatuses := []models.FraudCaseStatus{
		models.FraudCaseUnderInvestigation, models.FraudCaseResolved, models.FraudCaseFalsePositive,
	}
	ds.FraudCases = make([]models.FraudCase, g.cfg.NumFraudCases)
	for i := range ds.FraudCases {
		ds.FraudCases[i] = models.FraudCase{
			ID:         int64(i + 1),
			CustomerID: g.customerID(r),
			RiskLevel: pick(r, []weighted[models.RiskLevel]{
				{models.RiskLevelHigh, 0.2},
				{models.RiskLevelMedium, 0.3},
				{models.RiskLevelLow, 0.5},
			}),
			Status:     fraudStatuses[r.Intn(len(fraudStatuses))],
			ReportedAt: g.cfg.Start.AddDate(0, 0, i),
		}
	}

	ds.KYCRecords = make([]models.KYCRecord, g.cfg.NumCustomers)
	ds.CreditScores = make([]models.CreditScore, g.cfg.NumCustomers)
	for i, c := range ds.Customers {
		ds.KYCRecords[i] = models.KYCRecord{
			CustomerID: c.ID,
			Status: pick(r, []weighted[models.KYCStatus]{
				{models.KYCStatusVerified, 0.8},
				{models.KYCStatusPending, 0.15},
				{models.KYCStatusExpired, 0.05},
			}),
		}
		score := math.Min(850, math.Max(300, r.NormFloat64()*100+650))
		ds.CreditScores[i] = models.CreditScore{CustomerID: c.ID, Score: math.Round(score*10) / 10}
	}

	amlTypes := []models.AMLCaseType{
		models.AMLCaseSuspiciousActivity, models.AMLCaseLargeTransaction, models.AMLCaseUnusualPattern,
	}
	amlStatuses := []models.AMLCaseStatus{
		models.AMLCaseOpen, models.AMLCaseUnderInvestigation, models.AMLCaseResolved,
	}
	severities := []models.RiskLevel{models.RiskLevelHigh, models.RiskLevelMedium, models.RiskLevelLow}
	ds.AMLCases = make([]models.AMLCase, g.cfg.NumAMLCases)
	for i := range ds.AMLCases {
		ds.AMLCases[i] = models.AMLCase{
			ID:       int64(i + 1),
			Type:     amlTypes[r.Intn(len(amlTypes))],
			Status:   amlStatuses[r.Intn(len(amlStatuses))],
			Severity: severities[r.Intn(len(severities))],
		}
	}

	return ds, nil
}

func (g *Generator) customerID(r *rand.Rand) int64 {
	return int64(r.Intn(g.cfg.NumCustomers) + 1)
}

func pick[T any](r *rand.Rand, choices []weighted[T]) T {
	x := r.Float64()
	for _, c := range choices {
		if x < c.weight {
			return c.value
		}
		x -= c.weight
	}
	return choices[len(choices)-1].value
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
