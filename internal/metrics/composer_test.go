package metrics

import (
	"testing"
	"time"

	"github.com/savegress/bankpulse/internal/config"
	"github.com/savegress/bankpulse/internal/fraud"
	"github.com/savegress/bankpulse/internal/logging"
	"github.com/savegress/bankpulse/internal/risk"
	"github.com/savegress/bankpulse/internal/store"
	"github.com/savegress/bankpulse/pkg/models"
	"github.com/shopspring/decimal"
)

var day = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func customer(id int64, name string, income int64, city string, emp models.EmploymentStatus) models.Customer {
	return models.Customer{ID: id, FullName: name, AnnualIncome: decimal.NewFromInt(income), City: city, EmploymentStatus: emp}
}

func account(id, customerID int64, balance int64, typ models.AccountType, status models.AccountStatus) models.Account {
	return models.Account{ID: id, CustomerID: customerID, Type: typ, Balance: decimal.NewFromInt(balance), Status: status}
}

func loan(id, customerID, branchID int64, amount int64, status models.LoanStatus) models.Loan {
	return models.Loan{ID: id, CustomerID: customerID, BranchID: branchID, Type: models.LoanTypeAuto, Amount: decimal.NewFromInt(amount), InterestRate: 5, Status: status}
}

func tx(id, accountID int64, amount int64, typ models.TransactionType, at time.Time) models.Transaction {
	return models.Transaction{ID: id, AccountID: accountID, Type: typ, Amount: decimal.NewFromInt(amount), Timestamp: at, Status: models.TransactionStatusCompleted}
}

func fixture() store.Dataset {
	return store.Dataset{
		Customers: []models.Customer{
			customer(1, "Ada", 90000, "Chicago", models.EmploymentFullTime),
			customer(2, "Ben", 40000, "Houston", models.EmploymentPartTime),
			customer(3, "Cy", 55000, "Chicago", models.EmploymentFullTime),
			customer(4, "Di", 30000, "Phoenix", models.EmploymentUnemployed),
		},
		Accounts: []models.Account{
			account(10, 1, 100, models.AccountTypeSavings, models.AccountStatusActive),
			account(11, 2, 50000, models.AccountTypeChecking, models.AccountStatusActive),
			account(12, 3, 200, models.AccountTypeSavings, models.AccountStatusActive),
			account(13, 3, 1000, models.AccountTypeBusiness, models.AccountStatusInactive),
		},
		Transactions: []models.Transaction{
			tx(1, 10, 100, models.TransactionTypeDeposit, day),
			tx(2, 11, 300, models.TransactionTypeDeposit, day.Add(time.Hour)),
			tx(3, 11, 25000, models.TransactionTypeTransfer, day.Add(25*time.Hour)),
		},
		Loans: []models.Loan{
			loan(1, 1, 7, 1000, models.LoanStatusActive),
			loan(2, 1, 7, 2000, models.LoanStatusPaid),
			loan(3, 2, 8, 3000, models.LoanStatusActive),
			loan(4, 3, 0, 4000, models.LoanStatusDefault),
		},
		FraudCases: []models.FraudCase{
			{ID: 1, CustomerID: 2, RiskLevel: models.RiskLevelHigh, Status: models.FraudCaseUnderInvestigation, ReportedAt: day},
			{ID: 2, CustomerID: 3, RiskLevel: models.RiskLevelLow, Status: models.FraudCaseResolved, ReportedAt: day},
		},
		Branches: []models.Branch{
			{ID: 7, Name: "Chicago Central", City: "Chicago", EmployeeCount: 20},
			{ID: 8, Name: "Houston West", City: "Houston", EmployeeCount: 0},
			{ID: 9, Name: "Phoenix North", City: "Phoenix", EmployeeCount: 25},
		},
		CreditScores: []models.CreditScore{
			{CustomerID: 1, Score: 790},
			{CustomerID: 2, Score: 480},
			{CustomerID: 3, Score: 550},
			{CustomerID: 4, Score: 250},
		},
	}
}

func snapshotOf(t *testing.T, ds store.Dataset) *store.Snapshot {
	t.Helper()
	snap, err := store.NewSnapshot(ds)
	if err != nil {
		t.Fatalf("failed to build snapshot: %v", err)
	}
	return snap
}

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	cfg := config.DefaultAnalytics()
	cfg.HistogramBins = 4
	classifier, err := risk.NewClassifierFromConfig(cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	detector := fraud.NewDetector(fraud.ConfigFromAnalytics(cfg), logging.Discard())
	return NewComposer(cfg, classifier, detector, logging.Discard())
}

func TestTotalActiveAssets(t *testing.T) {
	accounts := []models.Account{
		account(1, 1, 100, models.AccountTypeSavings, models.AccountStatusActive),
		account(2, 1, 50000, models.AccountTypeSavings, models.AccountStatusActive),
		account(3, 1, 200, models.AccountTypeSavings, models.AccountStatusActive),
	}

	if got := TotalActiveAssets(accounts); !got.Equal(decimal.NewFromInt(50300)) {
		t.Errorf("expected 50300, got %s", got)
	}
}

func TestTotalActiveAssets_IgnoresInactive(t *testing.T) {
	accounts := []models.Account{
		account(1, 1, 100, models.AccountTypeSavings, models.AccountStatusActive),
		account(2, 1, 700, models.AccountTypeSavings, models.AccountStatusInactive),
	}
	before := TotalActiveAssets(accounts)

	accounts[1].Balance = decimal.NewFromInt(999999)
	after := TotalActiveAssets(accounts)

	if !before.Equal(after) {
		t.Errorf("inactive balance change moved the total from %s to %s", before, after)
	}
	if !after.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected 100, got %s", after)
	}
}

func TestTotalActiveLoans(t *testing.T) {
	loans := []models.Loan{
		loan(1, 1, 0, 100, models.LoanStatusActive),
		loan(2, 1, 0, 200, models.LoanStatusPaid),
		loan(3, 1, 0, 300, models.LoanStatusActive),
		loan(4, 1, 0, 400, models.LoanStatusDefault),
	}

	if got := TotalActiveLoans(loans); !got.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected the two Active loans to sum to 400, got %s", got)
	}
}

func TestExecutiveSummary(t *testing.T) {
	c := newTestComposer(t)
	summary := c.ExecutiveSummary(snapshotOf(t, fixture()))

	if summary.TotalCustomers != 4 {
		t.Errorf("expected 4 customers, got %d", summary.TotalCustomers)
	}
	if !summary.TotalActiveAssets.Equal(decimal.NewFromInt(50300)) {
		t.Errorf("expected active assets 50300, got %s", summary.TotalActiveAssets)
	}
	if !summary.TotalActiveLoans.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("expected active loans 4000, got %s", summary.TotalActiveLoans)
	}
	if summary.ActiveFraudCases != 1 {
		t.Errorf("expected 1 active fraud case, got %d", summary.ActiveFraudCases)
	}
	if len(summary.TopCustomers) != 3 {
		t.Errorf("expected default top 3, got %d", len(summary.TopCustomers))
	}
	if len(summary.AccountsByType) != 3 || summary.AccountsByType[0].Key != string(models.AccountTypeSavings) {
		t.Errorf("expected Savings as the largest account type, got %+v", summary.AccountsByType)
	}
	if len(summary.DailyTransactionCount) != 2 {
		t.Fatalf("expected 2 days, got %d", len(summary.DailyTransactionCount))
	}
	if summary.DailyTransactionCount[0].Key != "2023-01-01" || summary.DailyTransactionCount[0].Count() != 2 {
		t.Errorf("unexpected first day %+v", summary.DailyTransactionCount[0])
	}
}

func TestTopCustomersByBalance(t *testing.T) {
	snap := snapshotOf(t, fixture())

	top := TopCustomersByBalance(snap, 2)

	if len(top) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(top))
	}
	if top[0].CustomerID != 2 || !top[0].TotalBalance.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected customer 2 with 50000 first, got %+v", top[0])
	}
	// customer 3 counts its inactive account too
	if top[1].CustomerID != 3 || !top[1].TotalBalance.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("expected customer 3 with 1200 second, got %+v", top[1])
	}
	if top[0].FullName != "Ben" || !top[0].AnnualIncome.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("expected name and income attached, got %+v", top[0])
	}
}

func TestTopCustomersByBalance_Idempotent(t *testing.T) {
	snap := snapshotOf(t, fixture())

	a := TopCustomersByBalance(snap, 3)
	b := TopCustomersByBalance(snap, 3)

	if len(a) != len(b) {
		t.Fatal("rankings differ in length")
	}
	for i := range a {
		if a[i].CustomerID != b[i].CustomerID || !a[i].TotalBalance.Equal(b[i].TotalBalance) {
			t.Errorf("position %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestTopCustomersByBalance_TiesByCustomerID(t *testing.T) {
	ds := fixture()
	ds.Accounts = []models.Account{
		account(1, 4, 500, models.AccountTypeSavings, models.AccountStatusActive),
		account(2, 2, 500, models.AccountTypeSavings, models.AccountStatusActive),
		account(3, 3, 500, models.AccountTypeSavings, models.AccountStatusActive),
	}
	ds.Transactions = nil

	top := TopCustomersByBalance(snapshotOf(t, ds), 2)

	if len(top) != 2 || top[0].CustomerID != 2 || top[1].CustomerID != 3 {
		t.Errorf("expected customers 2 then 3, got %+v", top)
	}
}

func TestTopCustomersByBalance_Bounds(t *testing.T) {
	snap := snapshotOf(t, fixture())

	if got := TopCustomersByBalance(snap, 0); len(got) != 0 {
		t.Errorf("expected no customers for n=0, got %d", len(got))
	}
	// customer 4 has no accounts and is never ranked
	if got := TopCustomersByBalance(snap, 10); len(got) != 3 {
		t.Errorf("expected the 3 customers with accounts, got %d", len(got))
	}
}

func TestComposer_Regulatory(t *testing.T) {
	c := newTestComposer(t)
	m := c.Regulatory(snapshotOf(t, fixture()))

	if !m.TotalAssets.Equal(decimal.NewFromInt(51300)) {
		t.Errorf("expected total assets 51300, got %s", m.TotalAssets)
	}
	if !m.EstimatedDeposits.Equal(decimal.NewFromInt(41040)) {
		t.Errorf("expected deposits 41040, got %s", m.EstimatedDeposits)
	}
	if !m.TotalLoans.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("expected loans 4000, got %s", m.TotalLoans)
	}
}
