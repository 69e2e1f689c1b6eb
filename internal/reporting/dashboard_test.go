package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/savegress/bankpulse/internal/cache"
	"github.com/savegress/bankpulse/internal/config"
	"github.com/savegress/bankpulse/internal/fraud"
	"github.com/savegress/bankpulse/internal/logging"
	"github.com/savegress/bankpulse/internal/metrics"
	"github.com/savegress/bankpulse/internal/risk"
	"github.com/savegress/bankpulse/internal/store"
	"github.com/savegress/bankpulse/pkg/models"
	"github.com/shopspring/decimal"
)

func testDataset() *store.Dataset {
	ts := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	return &store.Dataset{
		Customers: []models.Customer{
			{ID: 1, FullName: "Customer 1", AnnualIncome: decimal.NewFromInt(80000), City: "New York", EmploymentStatus: models.EmploymentFullTime},
			{ID: 2, FullName: "Customer 2", AnnualIncome: decimal.NewFromInt(35000), City: "Houston", EmploymentStatus: models.EmploymentPartTime},
		},
		Accounts: []models.Account{
			{ID: 1, CustomerID: 1, Type: models.AccountTypeSavings, Balance: decimal.NewFromInt(5000), Status: models.AccountStatusActive},
			{ID: 2, CustomerID: 2, Type: models.AccountTypeChecking, Balance: decimal.NewFromInt(9000), Status: models.AccountStatusActive},
		},
		Transactions: []models.Transaction{
			{ID: 1, AccountID: 1, Type: models.TransactionTypeTransfer, Amount: decimal.NewFromInt(15000), Timestamp: ts, Status: models.TransactionStatusCompleted},
			{ID: 2, AccountID: 2, Type: models.TransactionTypePayment, Amount: decimal.NewFromInt(80), Timestamp: ts, Status: models.TransactionStatusCompleted},
		},
		Loans: []models.Loan{
			{ID: 1, CustomerID: 1, Type: models.LoanTypeMortgage, Amount: decimal.NewFromInt(200000), InterestRate: 3.9, Status: models.LoanStatusActive},
			{ID: 2, CustomerID: 1, Type: models.LoanTypeAuto, Amount: decimal.NewFromInt(15000), InterestRate: 6.1, Status: models.LoanStatusPaid},
		},
		KYCRecords: []models.KYCRecord{
			{CustomerID: 1, Status: models.KYCStatusVerified},
			{CustomerID: 2, Status: models.KYCStatusExpired},
		},
		AMLCases: []models.AMLCase{
			{ID: 1, Type: models.AMLCaseLargeTransaction, Status: models.AMLCaseOpen, Severity: models.RiskLevelHigh},
		},
		CreditScores: []models.CreditScore{
			{CustomerID: 1, Score: 720},
			{CustomerID: 2, Score: 540},
		},
	}
}

func newTestDashboard(t *testing.T) (*Dashboard, *cache.Memory) {
	t.Helper()
	cfg := config.DefaultAnalytics()
	log := logging.Discard()

	classifier, err := risk.NewClassifierFromConfig(cfg, log)
	if err != nil {
		t.Fatal(err)
	}
	detector := fraud.NewDetector(fraud.ConfigFromAnalytics(cfg), log)
	composer := metrics.NewComposer(cfg, classifier, detector, log)

	st := store.New(store.LoaderFunc(func(ctx context.Context) (*store.Dataset, error) {
		return testDataset(), nil
	}), log)
	mem := cache.NewMemory()

	return NewDashboard(st, composer, detector, classifier, mem, time.Minute, log), mem
}

func TestDashboard_NoSnapshot(t *testing.T) {
	d, _ := newTestDashboard(t)

	if _, err := d.Summary(context.Background()); !errors.Is(err, store.ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestDashboard_SummaryIsCached(t *testing.T) {
	d, mem := newTestDashboard(t)
	ctx := context.Background()
	if _, err := d.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	first, err := d.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if mem.Len() != 1 {
		t.Fatalf("expected 1 cached page, got %d", mem.Len())
	}
	second, err := d.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if !first.TotalActiveAssets.Equal(decimal.NewFromInt(14000)) {
		t.Errorf("expected active assets 14000, got %s", first.TotalActiveAssets)
	}
	if !second.TotalActiveAssets.Equal(first.TotalActiveAssets) || second.TotalCustomers != first.TotalCustomers {
		t.Errorf("cached summary %+v differs from computed %+v", second, first)
	}
	if mem.Len() != 1 {
		t.Errorf("expected the second call to reuse the cached page, got %d entries", mem.Len())
	}
}

func TestDashboard_RefreshDropsOldPages(t *testing.T) {
	d, mem := newTestDashboard(t)
	ctx := context.Background()

	before, err := d.Refresh(ctx)
	if err != nil {
		t.Fatal(err)
	}
	d.Summary(ctx)
	d.Fraud(ctx)
	if mem.Len() != 2 {
		t.Fatalf("expected 2 cached pages, got %d", mem.Len())
	}

	after, err := d.Refresh(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if after.Version == before.Version {
		t.Error("expected a new snapshot version")
	}
	if mem.Len() != 0 {
		t.Errorf("expected old pages dropped, got %d", mem.Len())
	}
}

func TestDashboard_TopCustomers(t *testing.T) {
	d, _ := newTestDashboard(t)
	ctx := context.Background()
	d.Refresh(ctx)

	top, err := d.TopCustomers(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].CustomerID != 2 {
		t.Errorf("expected customer 2 on top, got %+v", top)
	}

	if _, err := d.TopCustomers(ctx, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestDashboard_LargeTransactions(t *testing.T) {
	d, _ := newTestDashboard(t)
	ctx := context.Background()
	d.Refresh(ctx)

	got, err := d.LargeTransactions(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("expected transaction 1 with the default threshold, got %+v", got)
	}

	fifty := decimal.NewFromInt(50)
	got, err = d.LargeTransactions(ctx, &fifty)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 transactions above 50, got %d", len(got))
	}

	zero := decimal.Zero
	got, err = d.LargeTransactions(ctx, &zero)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected both transactions above an explicit zero, got %d", len(got))
	}

	negative := decimal.NewFromInt(-1)
	if _, err := d.LargeTransactions(ctx, &negative); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestDashboard_GeographicAnomalies(t *testing.T) {
	d, _ := newTestDashboard(t)
	ctx := context.Background()
	d.Refresh(ctx)

	if _, err := d.GeographicAnomalies(ctx); !errors.Is(err, fraud.ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
}

func TestDashboard_Compliance(t *testing.T) {
	d, _ := newTestDashboard(t)
	ctx := context.Background()
	d.Refresh(ctx)

	p, err := d.Compliance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if p.KYC.NonCompliantCount != 1 {
		t.Errorf("expected 1 non-compliant customer, got %d", p.KYC.NonCompliantCount)
	}
	if p.AML.OpenCount != 1 {
		t.Errorf("expected 1 open AML case, got %d", p.AML.OpenCount)
	}
	if len(p.Regulatory) != 5 {
		t.Errorf("expected 5 regulatory lines, got %d", len(p.Regulatory))
	}

	reg, err := d.Regulatory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reg.TotalLoans.Equal(decimal.NewFromInt(200000)) {
		t.Errorf("expected active loans 200000, got %s", reg.TotalLoans)
	}
}

func TestDashboard_Classify(t *testing.T) {
	d, _ := newTestDashboard(t)

	c := d.Classify(550)
	if c.RiskCategory != models.RiskHigh || !c.HighRisk || !c.InRange {
		t.Errorf("unexpected classification %+v", c)
	}

	c = d.Classify(900)
	if c.RiskCategory != models.RiskVeryLow || c.HighRisk || c.InRange {
		t.Errorf("unexpected classification %+v", c)
	}
}

func TestDashboard_Pages(t *testing.T) {
	d, _ := newTestDashboard(t)
	ctx := context.Background()
	d.Refresh(ctx)

	rp, err := d.Risk(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rp.HighRiskCount != 1 || rp.HighRiskCustomers[0].CustomerID != 2 {
		t.Errorf("expected customer 2 as the only high-risk customer, got %+v", rp.HighRiskCustomers)
	}

	customers, err := d.Customers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if customers.MultiLoanCount != 1 {
		t.Errorf("expected 1 multi-loan customer, got %d", customers.MultiLoanCount)
	}

	ops, err := d.Operations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ops.UnassignedLoans != 2 {
		t.Errorf("expected 2 loans without branch, got %d", ops.UnassignedLoans)
	}

	info, err := d.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.Stats["customers"] != 2 {
		t.Errorf("expected 2 customers in stats, got %d", info.Stats["customers"])
	}
}
