package fraud

import (
	"cmp"
	"slices"
	"time"

	"github.com/savegress/bankpulse/pkg/models"
	"github.com/shopspring/decimal"
)

// VelocityCluster is a run of large transactions on one account that all
// fall within one velocity window
type VelocityCluster struct {
	AccountID    int64                `json:"account_id"`
	CustomerID   int64                `json:"customer_id,omitempty"`
	Transactions []models.Transaction `json:"transactions"`
	TotalAmount  decimal.Decimal      `json:"total_amount"`
	Start        time.Time            `json:"start"`
	End          time.Time            `json:"end"`
}

// DetectVelocity finds accounts with at least minCount transactions above
// threshold inside a single window. Each account's large transactions are
// walked in time order; a cluster starts at the earliest unclaimed one and
// takes every later one within window of it. Clusters never overlap.
// Results are ordered by account ID, then start time.
func DetectVelocity(txs []models.Transaction, threshold decimal.Decimal, window time.Duration, minCount int) []VelocityCluster {
	if minCount < 1 {
		minCount = 1
	}

	byAccount := make(map[int64][]models.Transaction)
	for _, txn := range DetectLargeTransactions(txs, threshold) {
		byAccount[txn.AccountID] = append(byAccount[txn.AccountID], txn)
	}

	clusters := make([]VelocityCluster, 0)
	for accountID, list := range byAccount {
		slices.SortStableFunc(list, func(a, b models.Transaction) int {
			if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})

		for i := 0; i < len(list); {
			j := i
			for j < len(list) && list[j].Timestamp.Sub(list[i].Timestamp) <= window {
				j++
			}
			if j-i < minCount {
				i++
				continue
			}
			clusters = append(clusters, newCluster(accountID, list[i:j]))
			i = j
		}
	}

	slices.SortFunc(clusters, func(a, b VelocityCluster) int {
		if c := cmp.Compare(a.AccountID, b.AccountID); c != 0 {
			return c
		}
		return a.Start.Compare(b.Start)
	})
	return clusters
}

func newCluster(accountID int64, txs []models.Transaction) VelocityCluster {
	c := VelocityCluster{
		AccountID:    accountID,
		Transactions: append([]models.Transaction(nil), txs...),
		TotalAmount:  decimal.Zero,
		Start:        txs[0].Timestamp,
		End:          txs[len(txs)-1].Timestamp,
	}
	for _, txn := range txs {
		c.TotalAmount = c.TotalAmount.Add(txn.Amount)
	}
	return c
}
