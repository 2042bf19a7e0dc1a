package calculator

import (
	"sort"

	"github.com/tripledger/tripledger/internal/models"
)

// SettledTransfer is a completed settlement folded into the balance
// computation, so debts that were already paid do not reappear in the
// next transfer plan.
type SettledTransfer struct {
	FromUserID string
	ToUserID   string
	Amount     int64
}

// BalanceResult is the output of one aggregation pass.
type BalanceResult struct {
	// Balances is the per-user net position, sorted by net balance
	// descending (creditors first), ties broken by ascending user id.
	// This ordering is required input to the optimizer.
	Balances []models.UserBalance

	// ExcludedExpenseIDs lists expenses skipped for lack of an FX rate,
	// in input order.
	ExcludedExpenseIDs []string

	// Conversions counts expenses that went through an FX rate. The
	// rounding tolerance of the whole pass is at most one minor unit
	// per conversion.
	Conversions int

	// Drift is the residual sum over all net balances. Anything with
	// magnitude beyond Conversions is a defect in the arithmetic, not
	// an input problem, and must be surfaced by the caller.
	Drift int64
}

// AggregateBalances folds all convertible expenses and the already
// settled transfers into one net balance per user: the payer is funded
// the converted total, every participant owes their converted share,
// and a settled transfer moves its amount from debtor to creditor.
func AggregateBalances(expenses []models.Expense, settled []SettledTransfer, baseCurrency string) BalanceResult {
	var result BalanceResult
	balances := make(map[string]*models.UserBalance)

	get := func(userID string) *models.UserBalance {
		b, ok := balances[userID]
		if !ok {
			b = &models.UserBalance{UserID: userID, Currency: baseCurrency}
			balances[userID] = b
		}
		return b
	}

	for _, exp := range expenses {
		n := Normalize(exp, baseCurrency)
		if n.NeedsConversion {
			result.ExcludedExpenseIDs = append(result.ExcludedExpenseIDs, exp.ID)
			continue
		}
		if n.Converted {
			result.Conversions++
		}

		get(n.PayerID).TotalFunded += n.Amount
		for _, share := range n.ShareAmounts {
			get(share.UserID).TotalOwed += share.Amount
		}
	}

	// A settled payment is money the debtor already handed over: it
	// counts as funded for the debtor and owed for the creditor.
	for _, t := range settled {
		get(t.FromUserID).TotalFunded += t.Amount
		get(t.ToUserID).TotalOwed += t.Amount
	}

	for _, b := range balances {
		b.NetBalance = b.TotalFunded - b.TotalOwed
		result.Drift += b.NetBalance
		result.Balances = append(result.Balances, *b)
	}

	sort.Slice(result.Balances, func(i, j int) bool {
		bi, bj := result.Balances[i], result.Balances[j]
		if bi.NetBalance != bj.NetBalance {
			return bi.NetBalance > bj.NetBalance
		}
		return bi.UserID < bj.UserID
	})

	return result
}
