package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/savegress/bankpulse/pkg/models"
)

// Table queries. Identifiers are unquoted so they fold to lower case and
// match a schema created with the same unquoted names.
const (
	selectCustomers    = `SELECT CustomerID, FullName, AnnualIncome, City, EmploymentStatus FROM Customers ORDER BY CustomerID`
	selectAccounts     = `SELECT AccountID, CustomerID, AccountType, Balance, Status FROM Accounts ORDER BY AccountID`
	selectTransactions = `SELECT TransactionID, AccountID, TransactionType, Amount, TransactionDate, Status FROM Transactions ORDER BY TransactionID`
	selectLoans        = `SELECT LoanID, CustomerID, COALESCE(BranchID, 0), LoanType, Amount, InterestRate, Status FROM Loans ORDER BY LoanID`
	selectFraudCases   = `SELECT FraudID, CustomerID, RiskLevel, Status, ReportedDate FROM FraudCases ORDER BY FraudID`
	selectKYCRecords   = `SELECT CustomerID, KYCStatus FROM KYCRecords ORDER BY CustomerID`
	selectAMLCases     = `SELECT CaseID, COALESCE(CustomerID, 0), CaseType, Status, Severity FROM AMLCases ORDER BY CaseID`
	selectBranches     = `SELECT BranchID, BranchName, City, EmployeeCount FROM Branches ORDER BY BranchID`
	selectCreditScores = `SELECT CustomerID, Score FROM CreditScores ORDER BY CustomerID`
)

// PostgresLoader reads every table from PostgreSQL
type PostgresLoader struct {
	db *sql.DB
}

// NewPostgresLoader wraps an open database handle
func NewPostgresLoader(db *sql.DB) *PostgresLoader {
	return &PostgresLoader{db: db}
}

// OpenPostgres opens and pings a lib/pq connection pool
func OpenPostgres(ctx context.Context, url string, maxConns, minConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(minConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Load reads all tables inside one read-only transaction so the dataset is
// consistent across tables.
func (l *PostgresLoader) Load(ctx context.Context) (*Dataset, error) {
	tx, err := l.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	var ds Dataset

	if ds.Customers, err = queryRows(ctx, tx, selectCustomers, func(rows *sql.Rows) (c models.Customer, err error) {
		err = rows.Scan(&c.ID, &c.FullName, &c.AnnualIncome, &c.City, &c.EmploymentStatus)
		return
	}); err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}

	if ds.Accounts, err = queryRows(ctx, tx, selectAccounts, func(rows *sql.Rows) (a models.Account, err error) {
		err = rows.Scan(&a.ID, &a.CustomerID, &a.Type, &a.Balance, &a.Status)
		return
	}); err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	if ds.Transactions, err = queryRows(ctx, tx, selectTransactions, func(rows *sql.Rows) (t models.Transaction, err error) {
		err = rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.Timestamp, &t.Status)
		return
	}); err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	if ds.Loans, err = queryRows(ctx, tx, selectLoans, func(rows *sql.Rows) (l models.Loan, err error) {
		err = rows.Scan(&l.ID, &l.CustomerID, &l.BranchID, &l.Type, &l.Amount, &l.InterestRate, &l.Status)
		return
	}); err != nil {
		return nil, fmt.Errorf("failed to load loans: %w", err)
	}

	if ds.FraudCases, err = queryRows(ctx, tx, selectFraudCases, func(rows *sql.Rows) (f models.FraudCase, err error) {
		err = rows.Scan(&f.ID, &f.CustomerID, &f.RiskLevel, &f.Status, &f.ReportedAt)
		return
	}); err != nil {
		return nil, fmt.Errorf("failed to load fraud cases: %w", err)
	}

	if ds.KYCRecords, err = queryRows(ctx, tx, selectKYCRecords, func(rows *sql.Rows) (k models.KYCRecord, err error) {
		err = rows.Scan(&k.CustomerID, &k.Status)
		return
	}); err != nil {
		return nil, fmt.Errorf("failed to load kyc records: %w", err)
	}

	if ds.AMLCases, err = queryRows(ctx, tx, selectAMLCases, func(rows *sql.Rows) (a models.AMLCase, err error) {
		err = rows.Scan(&a.ID, &a.CustomerID, &a.Type, &a.Status, &a.Severity)
		return
	}); err != nil {
		return nil, fmt.Errorf("failed to load aml cases: %w", err)
	}

	if ds.Branches, err = queryRows(ctx, tx, selectBranches, func(rows *sql.Rows) (b models.Branch, err error) {
		err = rows.Scan(&b.ID, &b.Name, &b.City, &b.EmployeeCount)
		return
	}); err != nil {
		return nil, fmt.Errorf("failed to load branches: %w", err)
	}

	if ds.CreditScores, err = queryRows(ctx, tx, selectCreditScores, func(rows *sql.Rows) (c models.CreditScore, err error) {
		err = rows.Scan(&c.CustomerID, &c.Score)
		return
	}); err != nil {
		return nil, fmt.Errorf("failed to load credit scores: %w", err)
	}

	return &ds, nil
}

func queryRows[T any](ctx context.Context, tx *sql.Tx, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
