package models

// UserBalance is one member's derived net position in the trip's base
// currency. Positive means the group owes them money; negative means
// they owe the group. Derived, never persisted.
type UserBalance struct {
	// UserID is the member the balance belongs to.
	UserID string

	// NetBalance is TotalFunded - TotalOwed, in minor units.
	NetBalance int64

	// TotalFunded is the sum of expense totals this member fronted plus
	// settlements they already paid out.
	TotalFunded int64

	// TotalOwed is the sum of this member's shares plus settlement
	// payments they already received.
	TotalOwed int64

	// Currency is the trip's base currency.
	Currency string
}
