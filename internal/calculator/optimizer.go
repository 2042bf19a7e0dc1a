package calculator

import (
	"sort"

	"github.com/tripledger/tripledger/internal/models"
)

// settleTolerance is the largest balance magnitude, in minor units,
// considered already settled. Residues up to one minor unit per FX
// conversion are expected rounding, not debt worth a transfer.
const settleTolerance = 1

// Transfer is one proposed payment from a debtor to a creditor.
type Transfer struct {
	FromUserID string
	ToUserID   string
	Amount     int64
}

// OptimizeSettlements nets a list of balances into a minimal list of
// pairwise transfers: repeatedly match the largest creditor with the
// largest debtor and move min(credit, debt) between them. Ties on
// balance magnitude are broken by ascending user id, so the plan is
// fully deterministic.
//
// For N users with non-zero balances this terminates in at most N-1
// transfers, because every transfer zeroes out at least one side.
func OptimizeSettlements(balances []models.UserBalance) []Transfer {
	remaining := make(map[string]int64, len(balances))
	ids := make([]string, 0, len(balances))
	for _, b := range balances {
		remaining[b.UserID] = b.NetBalance
		ids = append(ids, b.UserID)
	}
	sort.Strings(ids)

	var transfers []Transfer
	for {
		var creditor, debtor string
		var maxCredit, maxDebt int64
		for _, id := range ids {
			bal := remaining[id]
			if bal > maxCredit {
				creditor, maxCredit = id, bal
			}
			if -bal > maxDebt {
				debtor, maxDebt = id, -bal
			}
		}
		if maxCredit <= settleTolerance || maxDebt <= settleTolerance {
			return transfers
		}

		amount := min(maxCredit, maxDebt)
		transfers = append(transfers, Transfer{
			FromUserID: debtor,
			ToUserID:   creditor,
			Amount:     amount,
		})
		remaining[creditor] -= amount
		remaining[debtor] += amount
	}
}
