package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmploymentStatus represents a customer's employment status
type EmploymentStatus string

const (
	EmploymentFullTime     EmploymentStatus = "Full-Time"
	EmploymentPartTime     EmploymentStatus = "Part-Time"
	EmploymentSelfEmployed EmploymentStatus = "Self-Employed"
	EmploymentUnemployed   EmploymentStatus = "Unemployed"
)

// Valid reports whether s is a known employment status
func (s EmploymentStatus) Valid() bool {
	switch s {
	case EmploymentFullTime, EmploymentPartTime, EmploymentSelfEmployed, EmploymentUnemployed:
		return true
	}
	return false
}

// Customer represents a bank customer
type Customer struct {
	ID               int64            `json:"id" yaml:"id"`
	FullName         string           `json:"full_name" yaml:"full_name"`
	AnnualIncome     decimal.Decimal  `json:"annual_income" yaml:"annual_income"`
	City             string           `json:"city" yaml:"city"`
	EmploymentStatus EmploymentStatus `json:"employment_status" yaml:"employment_status"`
}

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeSavings    AccountType = "Savings"
	AccountTypeChecking   AccountType = "Checking"
	AccountTypeBusiness   AccountType = "Business"
	AccountTypeInvestment AccountType = "Investment"
)

// Valid reports whether t is a known account type
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeChecking, AccountTypeBusiness, AccountTypeInvestment:
		return true
	}
	return false
}

// AccountStatus represents the status of an account
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "Active"
	AccountStatusInactive AccountStatus = "Inactive"
)

// Valid reports whether s is a known account status
func (s AccountStatus) Valid() bool {
	return s == AccountStatusActive || s == AccountStatusInactive
}

// Account represents a customer account
type Account struct {
	ID         int64           `json:"id" yaml:"id"`
	CustomerID int64           `json:"customer_id" yaml:"customer_id"`
	Type       AccountType     `json:"type" yaml:"type"`
	Balance    decimal.Decimal `json:"balance" yaml:"balance"`
	Status     AccountStatus   `json:"status" yaml:"status"`
}

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "Deposit"
	TransactionTypeWithdrawal TransactionType = "Withdrawal"
	TransactionTypeTransfer   TransactionType = "Transfer"
	TransactionTypePayment    TransactionType = "Payment"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer, TransactionTypePayment:
		return true
	}
	return false
}

// TransactionStatus represents the status of a transaction
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "Completed"
	TransactionStatusPending   TransactionStatus = "Pending"
	TransactionStatusFailed    TransactionStatus = "Failed"
)

// Valid reports whether s is a known transaction status
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusPending, TransactionStatusFailed:
		return true
	}
	return false
}

// Transaction represents a single account transaction
type Transaction struct {
	ID        int64             `json:"id" yaml:"id"`
	AccountID int64             `json:"account_id" yaml:"account_id"`
	Type      TransactionType   `json:"type" yaml:"type"`
	Amount    decimal.Decimal   `json:"amount" yaml:"amount"`
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
	Status    TransactionStatus `json:"status" yaml:"status"`
}

// LoanType represents the type of loan
type LoanType string

const (
	LoanTypeMortgage LoanType = "Mortgage"
	LoanTypePersonal LoanType = "Personal"
	LoanTypeAuto     LoanType = "Auto"
	LoanTypeBusiness LoanType = "Business"
)

// Valid reports whether t is a known loan type
func (t LoanType) Valid() bool {
	switch t {
	case LoanTypeMortgage, LoanTypePersonal, LoanTypeAuto, LoanTypeBusiness:
		return true
	}
	return false
}

// LoanStatus represents the status of a loan
type LoanStatus string

const (
	LoanStatusActive  LoanStatus = "Active"
	LoanStatusPaid    LoanStatus = "Paid"
	LoanStatusDefault LoanStatus = "Default"
)

// Valid reports whether s is a known loan status
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusActive, LoanStatusPaid, LoanStatusDefault:
		return true
	}
	return false
}

// Loan represents a customer loan. BranchID is zero when the loan is not
// attributed to a branch.
type Loan struct {
	ID           int64           `json:"id" yaml:"id"`
	CustomerID   int64           `json:"customer_id" yaml:"customer_id"`
	BranchID     int64           `json:"branch_id,omitempty" yaml:"branch_id,omitempty"`
	Type         LoanType        `json:"type" yaml:"type"`
	Amount       decimal.Decimal `json:"amount" yaml:"amount"`
	InterestRate float64         `json:"interest_rate" yaml:"interest_rate"`
	Status       LoanStatus      `json:"status" yaml:"status"`
}

// RiskLevel represents a fraud case risk level
type RiskLevel string

const (
	RiskLevelHigh   RiskLevel = "High"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelLow    RiskLevel = "Low"
)

// Valid reports whether l is a known risk level
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLevelHigh, RiskLevelMedium, RiskLevelLow:
		return true
	}
	return false
}

// FraudCaseStatus represents the status of a fraud case
type FraudCaseStatus string

const (
	FraudCaseUnderInvestigation FraudCaseStatus = "Under Investigation"
	FraudCaseResolved           FraudCaseStatus = "Resolved"
	FraudCaseFalsePositive      FraudCaseStatus = "False Positive"
)

// Valid reports whether s is a known fraud case status
func (s FraudCaseStatus) Valid() bool {
	switch s {
	case FraudCaseUnderInvestigation, FraudCaseResolved, FraudCaseFalsePositive:
		return true
	}
	return false
}

// FraudCase represents a reported fraud case
type FraudCase struct {
	ID         int64           `json:"id" yaml:"id"`
	CustomerID int64           `json:"customer_id" yaml:"customer_id"`
	RiskLevel  RiskLevel       `json:"risk_level" yaml:"risk_level"`
	Status     FraudCaseStatus `json:"status" yaml:"status"`
	ReportedAt time.Time       `json:"reported_at" yaml:"reported_at"`
}

// KYCStatus represents a know-your-customer verification state
type KYCStatus string

const (
	KYCStatusVerified KYCStatus = "Verified"
	KYCStatusPending  KYCStatus = "Pending"
	KYCStatusExpired  KYCStatus = "Expired"
)

// Valid reports whether s is a known KYC status
func (s KYCStatus) Valid() bool {
	switch s {
	case KYCStatusVerified, KYCStatusPending, KYCStatusExpired:
		return true
	}
	return false
}

// KYCRecord holds the KYC state of one customer
type KYCRecord struct {
	CustomerID int64     `json:"customer_id" yaml:"customer_id"`
	Status     KYCStatus `json:"status" yaml:"status"`
}

// AMLCaseType represents the trigger of an AML case
type AMLCaseType string

const (
	AMLCaseSuspiciousActivity AMLCaseType = "Suspicious Activity"
	AMLCaseLargeTransaction   AMLCaseType = "Large Transaction"
	AMLCaseUnusualPattern     AMLCaseType = "Unusual Pattern"
)

// Valid reports whether t is a known AML case type
func (t AMLCaseType) Valid() bool {
	switch t {
	case AMLCaseSuspiciousActivity, AMLCaseLargeTransaction, AMLCaseUnusualPattern:
		return true
	}
	return false
}

// AMLCaseStatus represents the status of an AML case
type AMLCaseStatus string

const (
	AMLCaseOpen               AMLCaseStatus = "Open"
	AMLCaseUnderInvestigation AMLCaseStatus = "Under Investigation"
	AMLCaseResolved           AMLCaseStatus = "Resolved"
)

// Valid reports whether s is a known AML case status
func (s AMLCaseStatus) Valid() bool {
	switch s {
	case AMLCaseOpen, AMLCaseUnderInvestigation, AMLCaseResolved:
		return true
	}
	return false
}

// AMLCase represents an anti-money-laundering case. CustomerID is zero when
// the case is not tied to a customer.
type AMLCase struct {
	ID         int64         `json:"id" yaml:"id"`
	CustomerID int64         `json:"customer_id,omitempty" yaml:"customer_id,omitempty"`
	Type       AMLCaseType   `json:"type" yaml:"type"`
	Status     AMLCaseStatus `json:"status" yaml:"status"`
	Severity   RiskLevel     `json:"severity" yaml:"severity"`
}

// Branch represents a bank branch
type Branch struct {
	ID            int64  `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	City          string `json:"city" yaml:"city"`
	EmployeeCount int    `json:"employee_count" yaml:"employee_count"`
}

// CreditScore holds the bureau score of one customer
type CreditScore struct {
	CustomerID int64   `json:"customer_id" yaml:"customer_id"`
	Score      float64 `json:"score" yaml:"score"`
}

// RiskCategory is one of the ordered credit risk bands
type RiskCategory string

const (
	RiskVeryHigh RiskCategory = "Very High Risk"
	RiskHigh     RiskCategory = "High Risk"
	RiskMedium   RiskCategory = "Medium Risk"
	RiskLow      RiskCategory = "Low Risk"
	RiskVeryLow  RiskCategory = "Very Low Risk"
)

// RiskProfile is the derived credit risk view of a customer
type RiskProfile struct {
	CustomerID   int64        `json:"customer_id"`
	CreditScore  float64      `json:"credit_score"`
	RiskCategory RiskCategory `json:"risk_category"`
	OutOfRange   bool         `json:"out_of_range,omitempty"`
}

// ComplianceStatus is the derived KYC compliance view of a customer
type ComplianceStatus struct {
	CustomerID  int64     `json:"customer_id"`
	KYCStatus   KYCStatus `json:"kyc_status"`
	IsCompliant bool      `json:"is_compliant"`
}
