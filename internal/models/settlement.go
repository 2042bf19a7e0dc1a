package models

// SettlementStatus is the lifecycle state of a settlement row.
// pending is the only non-terminal state; settled is terminal and is
// never transitioned out of.
type SettlementStatus string

const (
	SettlementPending SettlementStatus = "pending"
	SettlementSettled SettlementStatus = "settled"
)

// Settlement represents a proposed or completed transfer from one debtor
// to one creditor that reduces outstanding balances.
//
// Pending rows are owned by reconciliation: every recomputation replaces
// the trip's pending rows with the fresh transfer plan. Settled rows are
// permanent history and are never regenerated or deleted.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// TripID is the trip this settlement belongs to.
	TripID string

	// FromUserID is the debtor: the user who owes the payment.
	FromUserID string

	// ToUserID is the creditor: the user who receives the payment.
	ToUserID string

	// Amount is the transfer amount in minor units of Currency.
	Amount int64

	// Currency is the trip's base currency.
	Currency string

	// Status is pending or settled.
	Status SettlementStatus

	// CreatedAt is the Unix timestamp when the row was (re)created by
	// reconciliation.
	CreatedAt int64

	// SettledAt is the Unix timestamp of the mark-paid action. Zero
	// while pending.
	SettledAt int64

	// SettledBy is the user who marked the settlement paid. Empty while
	// pending.
	SettledBy string

	// Note is an optional free-form note recorded at mark-paid time.
	Note string
}

// SettlementSummary is the externally consumed result of one full
// computation pass over a trip's expenses.
type SettlementSummary struct {
	// TripID is the trip the summary was computed for.
	TripID string

	// BaseCurrency is the currency all balances and settlements below
	// are expressed in.
	BaseCurrency string

	// Balances is the per-member net position, creditors first.
	Balances []UserBalance

	// PendingSettlements is the current transfer plan.
	PendingSettlements []*Settlement

	// SettledSettlements is the permanent history of completed transfers.
	SettledSettlements []*Settlement

	// TotalExpensesUsed is how many expenses entered the aggregation.
	TotalExpensesUsed int

	// ExcludedExpenseIDs lists expenses skipped for lack of an FX rate,
	// in input order, so callers can warn the user.
	ExcludedExpenseIDs []string
}
