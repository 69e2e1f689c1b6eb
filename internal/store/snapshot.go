// Package store holds the immutable entity snapshots the analytics engine
// reads from.
package store

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/savegress/bankpulse/pkg/models"
)

// ErrInvalidInput marks a dataset that violates the entity invariants
var ErrInvalidInput = errors.New("invalid input")

// ValidationError lists every invariant a dataset violates
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %d issue(s): %s", len(e.Issues), strings.Join(e.Issues, "; "))
}

// Is makes errors.Is(err, ErrInvalidInput) hold for validation failures
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Dataset is the raw table content handed over by a Loader
type Dataset struct {
	Customers    []models.Customer    `yaml:"customers"`
	Accounts     []models.Account     `yaml:"accounts"`
	Transactions []models.Transaction `yaml:"transactions"`
	Loans        []models.Loan        `yaml:"loans"`
	FraudCases   []models.FraudCase   `yaml:"fraud_cases"`
	KYCRecords   []models.KYCRecord   `yaml:"kyc_records"`
	AMLCases     []models.AMLCase     `yaml:"aml_cases"`
	Branches     []models.Branch      `yaml:"branches"`
	CreditScores []models.CreditScore `yaml:"credit_scores"`
}

// Snapshot is a validated, read-only copy of every table. Slices returned by
// its accessors are shared and must not be modified.
type Snapshot struct {
	version  string
	loadedAt time.Time
	data     Dataset

	customers map[int64]int
	accounts  map[int64]int
	branches  map[int64]int
}

// NewSnapshot validates ds and freezes it into a snapshot. The dataset is
// copied, so later changes to ds do not leak in.
func NewSnapshot(ds Dataset) (*Snapshot, error) {
	s := &Snapshot{
		version:  uuid.NewString(),
		loadedAt: time.Now().UTC(),
		data: Dataset{
			Customers:    clone(ds.Customers),
			Accounts:     clone(ds.Accounts),
			Transactions: clone(ds.Transactions),
			Loans:        clone(ds.Loans),
			FraudCases:   clone(ds.FraudCases),
			KYCRecords:   clone(ds.KYCRecords),
			AMLCases:     clone(ds.AMLCases),
			Branches:     clone(ds.Branches),
			CreditScores: clone(ds.CreditScores),
		},
	}

	v := &validator{}
	s.customers = indexByID(v, "customer", s.data.Customers, func(c models.Customer) int64 { return c.ID })
	s.accounts = indexByID(v, "account", s.data.Accounts, func(a models.Account) int64 { return a.ID })
	s.branches = indexByID(v, "branch", s.data.Branches, func(b models.Branch) int64 { return b.ID })
	indexByID(v, "transaction", s.data.Transactions, func(t models.Transaction) int64 { return t.ID })
	indexByID(v, "loan", s.data.Loans, func(l models.Loan) int64 { return l.ID })
	indexByID(v, "fraud case", s.data.FraudCases, func(f models.FraudCase) int64 { return f.ID })
	indexByID(v, "aml case", s.data.AMLCases, func(a models.AMLCase) int64 { return a.ID })
	indexByID(v, "kyc record", s.data.KYCRecords, func(k models.KYCRecord) int64 { return k.CustomerID })
	indexByID(v, "credit score", s.data.CreditScores, func(c models.CreditScore) int64 { return c.CustomerID })

	s.validate(v)

	if len(v.issues) > 0 {
		return nil, &ValidationError{Issues: v.issues}
	}
	return s, nil
}

func (s *Snapshot) validate(v *validator) {
	for _, c := range s.data.Customers {
		if strings.TrimSpace(c.FullName) == "" {
			v.addf("customer %d: missing full name", c.ID)
		}
		if c.AnnualIncome.IsNegative() {
			v.addf("customer %d: negative annual income %s", c.ID, c.AnnualIncome)
		}
		if !c.EmploymentStatus.Valid() {
			v.addf("customer %d: unknown employment status %q", c.ID, c.EmploymentStatus)
		}
	}

	for _, a := range s.data.Accounts {
		s.requireCustomer(v, "account", a.ID, a.CustomerID)
		if !a.Type.Valid() {
			v.addf("account %d: unknown type %q", a.ID, a.Type)
		}
		if !a.Status.Valid() {
			v.addf("account %d: unknown status %q", a.ID, a.Status)
		}
		if a.Balance.IsNegative() {
			v.addf("account %d: negative balance %s", a.ID, a.Balance)
		}
	}

	for _, t := range s.data.Transactions {
		if _, ok := s.accounts[t.AccountID]; !ok {
			v.addf("transaction %d: unknown account %d", t.ID, t.AccountID)
		}
		if !t.Type.Valid() {
			v.addf("transaction %d: unknown type %q", t.ID, t.Type)
		}
		if !t.Status.Valid() {
			v.addf("transaction %d: unknown status %q", t.ID, t.Status)
		}
		if t.Amount.IsNegative() {
			v.addf("transaction %d: negative amount %s", t.ID, t.Amount)
		}
		if t.Timestamp.IsZero() {
			v.addf("transaction %d: missing timestamp", t.ID)
		}
	}

	for _, l := range s.data.Loans {
		s.requireCustomer(v, "loan", l.ID, l.CustomerID)
		if l.BranchID != 0 {
			if _, ok := s.branches[l.BranchID]; !ok {
				v.addf("loan %d: unknown branch %d", l.ID, l.BranchID)
			}
		}
		if !l.Type.Valid() {
			v.addf("loan %d: unknown type %q", l.ID, l.Type)
		}
		if !l.Status.Valid() {
			v.addf("loan %d: unknown status %q", l.ID, l.Status)
		}
		if l.Amount.IsNegative() {
			v.addf("loan %d: negative amount %s", l.ID, l.Amount)
		}
	}

	for _, f := range s.data.FraudCases {
		s.requireCustomer(v, "fraud case", f.ID, f.CustomerID)
		if !f.RiskLevel.Valid() {
			v.addf("fraud case %d: unknown risk level %q", f.ID, f.RiskLevel)
		}
		if !f.Status.Valid() {
			v.addf("fraud case %d: unknown status %q", f.ID, f.Status)
		}
	}

	for _, k := range s.data.KYCRecords {
		s.requireCustomer(v, "kyc record", k.CustomerID, k.CustomerID)
		if !k.Status.Valid() {
			v.addf("kyc record %d: unknown status %q", k.CustomerID, k.Status)
		}
	}

	for _, a := range s.data.AMLCases {
		if a.CustomerID != 0 {
			s.requireCustomer(v, "aml case", a.ID, a.CustomerID)
		}
		if !a.Type.Valid() {
			v.addf("aml case %d: unknown type %q", a.ID, a.Type)
		}
		if !a.Status.Valid() {
			v.addf("aml case %d: unknown status %q", a.ID, a.Status)
		}
		if !a.Severity.Valid() {
			v.addf("aml case %d: unknown severity %q", a.ID, a.Severity)
		}
	}

	for _, b := range s.data.Branches {
		if strings.TrimSpace(b.Name) == "" {
			v.addf("branch %d: missing name", b.ID)
		}
		if b.EmployeeCount < 0 {
			v.addf("branch %d: negative employee count %d", b.ID, b.EmployeeCount)
		}
	}

	for _, c := range s.data.CreditScores {
		s.requireCustomer(v, "credit score", c.CustomerID, c.CustomerID)
		if math.IsNaN(c.Score) || math.IsInf(c.Score, 0) {
			v.addf("credit score %d: non-finite score %v", c.CustomerID, c.Score)
		}
	}
}

func (s *Snapshot) requireCustomer(v *validator, entity string, id, customerID int64) {
	if _, ok := s.customers[customerID]; !ok {
		v.addf("%s %d: unknown customer %d", entity, id, customerID)
	}
}

// Version identifies this snapshot; every load gets a new one
func (s *Snapshot) Version() string { return s.version }

// LoadedAt is when the snapshot was built
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

func (s *Snapshot) Customers() []models.Customer       { return s.data.Customers }
func (s *Snapshot) Accounts() []models.Account         { return s.data.Accounts }
func (s *Snapshot) Transactions() []models.Transaction { return s.data.Transactions }
func (s *Snapshot) Loans() []models.Loan               { return s.data.Loans }
func (s *Snapshot) FraudCases() []models.FraudCase     { return s.data.FraudCases }
func (s *Snapshot) KYCRecords() []models.KYCRecord     { return s.data.KYCRecords }
func (s *Snapshot) AMLCases() []models.AMLCase         { return s.data.AMLCases }
func (s *Snapshot) Branches() []models.Branch          { return s.data.Branches }
func (s *Snapshot) CreditScores() []models.CreditScore { return s.data.CreditScores }

// Customer looks up a customer by ID
func (s *Snapshot) Customer(id int64) (models.Customer, bool) {
	i, ok := s.customers[id]
	if !ok {
		return models.Customer{}, false
	}
	return s.data.Customers[i], true
}

// Account looks up an account by ID
func (s *Snapshot) Account(id int64) (models.Account, bool) {
	i, ok := s.accounts[id]
	if !ok {
		return models.Account{}, false
	}
	return s.data.Accounts[i], true
}

// Branch looks up a branch by ID
func (s *Snapshot) Branch(id int64) (models.Branch, bool) {
	i, ok := s.branches[id]
	if !ok {
		return models.Branch{}, false
	}
	return s.data.Branches[i], true
}

// Stats returns the row count of every table
func (s *Snapshot) Stats() map[string]int {
	return map[string]int{
		"customers":     len(s.data.Customers),
		"accounts":      len(s.data.Accounts),
		"transactions":  len(s.data.Transactions),
		"loans":         len(s.data.Loans),
		"fraud_cases":   len(s.data.FraudCases),
		"kyc_records":   len(s.data.KYCRecords),
		"aml_cases":     len(s.data.AMLCases),
		"branches":      len(s.data.Branches),
		"credit_scores": len(s.data.CreditScores),
	}
}

type validator struct {
	issues []string
}

func (v *validator) addf(format string, args ...interface{}) {
	v.issues = append(v.issues, fmt.Sprintf(format, args...))
}

func indexByID[T any](v *validator, entity string, rows []T, id func(T) int64) map[int64]int {
	idx := make(map[int64]int, len(rows))
	for i, row := range rows {
		key := id(row)
		if _, dup := idx[key]; dup {
			v.addf("%s %d: duplicate id", entity, key)
			continue
		}
		idx[key] = i
	}
	return idx
}

func clone[T any](rows []T) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}
