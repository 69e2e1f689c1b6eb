package store

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/savegress/bankpulse/pkg/models"
	"github.com/shopspring/decimal"
)

func validDataset() Dataset {
	ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	return Dataset{
		Customers: []models.Customer{
			{ID: 1, FullName: "Customer 1", AnnualIncome: decimal.NewFromInt(75000), City: "Chicago", EmploymentStatus: models.EmploymentFullTime},
			{ID: 2, FullName: "Customer 2", AnnualIncome: decimal.NewFromInt(42000), City: "Houston", EmploymentStatus: models.EmploymentPartTime},
		},
		Accounts: []models.Account{
			{ID: 10, CustomerID: 1, Type: models.AccountTypeSavings, Balance: decimal.NewFromInt(100), Status: models.AccountStatusActive},
			{ID: 11, CustomerID: 2, Type: models.AccountTypeChecking, Balance: decimal.NewFromInt(200), Status: models.AccountStatusInactive},
		},
		Transactions: []models.Transaction{
			{ID: 100, AccountID: 10, Type: models.TransactionTypeDeposit, Amount: decimal.NewFromInt(50), Timestamp: ts, Status: models.TransactionStatusCompleted},
		},
		Loans: []models.Loan{
			{ID: 1000, CustomerID: 1, BranchID: 7, Type: models.LoanTypeAuto, Amount: decimal.NewFromInt(20000), InterestRate: 5.5, Status: models.LoanStatusActive},
		},
		FraudCases: []models.FraudCase{
			{ID: 1, CustomerID: 2, RiskLevel: models.RiskLevelHigh, Status: models.FraudCaseUnderInvestigation, ReportedAt: ts},
		},
		KYCRecords: []models.KYCRecord{
			{CustomerID: 1, Status: models.KYCStatusVerified},
			{CustomerID: 2, Status: models.KYCStatusPending},
		},
		AMLCases: []models.AMLCase{
			{ID: 1, Type: models.AMLCaseUnusualPattern, Status: models.AMLCaseOpen, Severity: models.RiskLevelLow},
		},
		Branches: []models.Branch{
			{ID: 7, Name: "Chicago Central", City: "Chicago", EmployeeCount: 30},
		},
		CreditScores: []models.CreditScore{
			{CustomerID: 1, Score: 710},
		},
	}
}

func TestNewSnapshot_Valid(t *testing.T) {
	snap, err := NewSnapshot(validDataset())
	if err != nil {
		t.Fatalf("expected valid snapshot, got %v", err)
	}

	if snap.Version() == "" {
		t.Error("expected a version")
	}
	if snap.LoadedAt().IsZero() {
		t.Error("expected load time")
	}
	if len(snap.Customers()) != 2 {
		t.Errorf("expected 2 customers, got %d", len(snap.Customers()))
	}

	c, ok := snap.Customer(2)
	if !ok || c.FullName != "Customer 2" {
		t.Errorf("expected lookup of customer 2, got %+v %v", c, ok)
	}
	if _, ok := snap.Customer(99); ok {
		t.Error("expected missing customer lookup to fail")
	}
	if a, ok := snap.Account(11); !ok || a.CustomerID != 2 {
		t.Errorf("expected account 11 of customer 2, got %+v", a)
	}
	if b, ok := snap.Branch(7); !ok || b.Name != "Chicago Central" {
		t.Errorf("expected branch 7, got %+v", b)
	}
	if snap.Stats()["transactions"] != 1 {
		t.Errorf("expected 1 transaction in stats, got %d", snap.Stats()["transactions"])
	}
}

func TestNewSnapshot_VersionsDiffer(t *testing.T) {
	a, _ := NewSnapshot(validDataset())
	b, _ := NewSnapshot(validDataset())
	if a.Version() == b.Version() {
		t.Error("expected distinct versions per snapshot")
	}
}

func TestNewSnapshot_CopiesInput(t *testing.T) {
	ds := validDataset()
	snap, err := NewSnapshot(ds)
	if err != nil {
		t.Fatal(err)
	}

	ds.Accounts[0].Balance = decimal.NewFromInt(999999)

	if !snap.Accounts()[0].Balance.Equal(decimal.NewFromInt(100)) {
		t.Error("snapshot changed when the source dataset was modified")
	}
}

func TestNewSnapshot_Empty(t *testing.T) {
	snap, err := NewSnapshot(Dataset{})
	if err != nil {
		t.Fatalf("expected empty dataset to be valid, got %v", err)
	}
	if len(snap.Customers()) != 0 {
		t.Error("expected no customers")
	}
}

func TestNewSnapshot_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Dataset)
		issue  string
	}{
		{
			name:   "duplicate customer",
			mutate: func(ds *Dataset) { ds.Customers = append(ds.Customers, ds.Customers[0]) },
			issue:  "customer 1: duplicate id",
		},
		{
			name:   "account with unknown customer",
			mutate: func(ds *Dataset) { ds.Accounts[0].CustomerID = 42 },
			issue:  "account 10: unknown customer 42",
		},
		{
			name:   "negative balance",
			mutate: func(ds *Dataset) { ds.Accounts[0].Balance = decimal.NewFromInt(-1) },
			issue:  "account 10: negative balance",
		},
		{
			name:   "transaction with unknown account",
			mutate: func(ds *Dataset) { ds.Transactions[0].AccountID = 99 },
			issue:  "transaction 100: unknown account 99",
		},
		{
			name:   "transaction without timestamp",
			mutate: func(ds *Dataset) { ds.Transactions[0].Timestamp = time.Time{} },
			issue:  "transaction 100: missing timestamp",
		},
		{
			name:   "unknown account status",
			mutate: func(ds *Dataset) { ds.Accounts[1].Status = "Frozen" },
			issue:  `account 11: unknown status "Frozen"`,
		},
		{
			name:   "loan with unknown branch",
			mutate: func(ds *Dataset) { ds.Loans[0].BranchID = 8 },
			issue:  "loan 1000: unknown branch 8",
		},
		{
			name:   "missing customer name",
			mutate: func(ds *Dataset) { ds.Customers[1].FullName = " " },
			issue:  "customer 2: missing full name",
		},
		{
			name:   "kyc for unknown customer",
			mutate: func(ds *Dataset) { ds.KYCRecords[0].CustomerID = 5 },
			issue:  "kyc record 5: unknown customer 5",
		},
		{
			name:   "aml case bad severity",
			mutate: func(ds *Dataset) { ds.AMLCases[0].Severity = "Critical" },
			issue:  `aml case 1: unknown severity "Critical"`,
		},
		{
			name:   "NaN credit score",
			mutate: func(ds *Dataset) { ds.CreditScores[0].Score = math.NaN() },
			issue:  "credit score 1: non-finite score NaN",
		},
		{
			name:   "infinite credit score",
			mutate: func(ds *Dataset) { ds.CreditScores[0].Score = math.Inf(1) },
			issue:  "credit score 1: non-finite score +Inf",
		},
		{
			name:   "fraud case unknown status",
			mutate: func(ds *Dataset) { ds.FraudCases[0].Status = "Closed" },
			issue:  `fraud case 1: unknown status "Closed"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := validDataset()
			tt.mutate(&ds)

			snap, err := NewSnapshot(ds)
			if snap != nil {
				t.Error("expected no snapshot")
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			found := false
			for _, issue := range verr.Issues {
				if strings.Contains(issue, tt.issue) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected issue %q in %v", tt.issue, verr.Issues)
			}
		})
	}
}

func TestNewSnapshot_ReportsAllIssues(t *testing.T) {
	ds := validDataset()
	ds.Accounts[0].CustomerID = 42
	ds.Loans[0].Status = "Overdue"

	_, err := NewSnapshot(ds)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Issues) != 2 {
		t.Errorf("expected 2 issues, got %d: %v", len(verr.Issues), verr.Issues)
	}
}
