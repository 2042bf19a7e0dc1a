package models

import "github.com/shopspring/decimal"

// SplitType selects the rule used to divide one expense among its
// participants.
type SplitType string

const (
	// SplitEqual divides the total evenly; the first participant in input
	// order absorbs the indivisible remainder.
	SplitEqual SplitType = "equal"

	// SplitPercentage divides by per-participant percentages; the last
	// participant absorbs the rounding remainder.
	SplitPercentage SplitType = "percentage"

	// SplitAmount uses caller-supplied amounts that must sum exactly to
	// the expense total.
	SplitAmount SplitType = "amount"
)

// Expense represents one payment fronted by a trip member on behalf of
// the group. Immutable once created except by explicit edit.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// TripID is the trip this expense belongs to.
	TripID string

	// Description is a short human-readable label (e.g., "Dinner").
	Description string

	// Amount is the expense total in minor units of Currency.
	Amount int64

	// Currency is the ISO 4217 code the expense was paid in. May differ
	// from the trip's base currency.
	Currency string

	// FxRateToBase is the snapshot conversion rate into the trip base
	// currency, captured when the expense was recorded. Invalid (null)
	// when no rate was available; such expenses are excluded from
	// aggregation until a rate is supplied.
	FxRateToBase decimal.NullDecimal

	// PayerID is the user who fronted the money. The payer is just
	// another participant unless explicitly excluded from the shares.
	PayerID string

	// SplitType is the rule the shares were computed under.
	SplitType SplitType

	// Shares is how the total divides among participants. Invariant:
	// the share amounts sum exactly to Amount.
	Shares []Share

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Share is one participant's portion of one expense.
type Share struct {
	// ExpenseID is the expense this share belongs to.
	ExpenseID string

	// UserID is the participant owing this share.
	UserID string

	// ShareAmount is the portion in minor units of the expense currency.
	ShareAmount int64

	// ShareType is the split rule this share was produced by.
	ShareType SplitType

	// ShareValue is the original input for percentage and amount splits
	// (the percentage, or the custom amount). Null for equal splits.
	ShareValue decimal.NullDecimal
}
