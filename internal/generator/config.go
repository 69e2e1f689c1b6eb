package generator

import "time"

// Config drives the demo data generator.
type Config struct {
	NumCustomers    int
	NumAccounts     int
	NumTransactions int
	NumLoans        int
	NumFraudCases   int
	NumAMLCases     int
	Seed            int64
	Start           time.Time
}

// DefaultConfig returns the sizes of the reference demo dataset.
func DefaultConfig() Config {
	return Config{
		NumCustomers:    1000,
		NumAccounts:     2000,
		NumTransactions: 5000,
		NumLoans:        300,
		NumFraudCases:   50,
		NumAMLCases:     20,
		Seed:            42,
		Start:           time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}
