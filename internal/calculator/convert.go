package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/tripledger/tripledger/internal/models"
)

// Normalized is one expense rebased into the trip's base currency.
// When NeedsConversion is true no rate was available and the expense
// must be excluded from aggregation; the remaining fields are zero.
type Normalized struct {
	ExpenseID string
	PayerID   string

	// Amount is the expense total in base-currency minor units.
	Amount int64

	// ShareAmounts holds the converted share per participant, in input
	// order. The amounts always sum exactly to Amount.
	ShareAmounts []ShareAmount

	// Rate is the effective rate applied (1 for same-currency expenses).
	Rate decimal.Decimal

	// Converted is true when an FX rate was actually applied, i.e. the
	// expense currency differed from the base currency.
	Converted bool

	// NeedsConversion flags an expense with a foreign currency and no
	// snapshot rate. Soft failure: excluded, never an error.
	NeedsConversion bool
}

// ShareAmount is one participant's converted share.
type ShareAmount struct {
	UserID string
	Amount int64
}

// Normalize rebases exp into baseCurrency using the expense's snapshot
// rate. Conversion rounds half up; shares are converted with the same
// expense-level rate, and the first share absorbs any rounding drift so
// converted shares always sum exactly to the converted total.
func Normalize(exp models.Expense, baseCurrency string) Normalized {
	n := Normalized{ExpenseID: exp.ID, PayerID: exp.PayerID}

	if exp.Currency == baseCurrency {
		n.Rate = decimal.NewFromInt(1)
		n.Amount = exp.Amount
		for _, s := range exp.Shares {
			n.ShareAmounts = append(n.ShareAmounts, ShareAmount{UserID: s.UserID, Amount: s.ShareAmount})
		}
		return n
	}

	if !exp.FxRateToBase.Valid {
		n.NeedsConversion = true
		return n
	}

	rate := exp.FxRateToBase.Decimal
	n.Rate = rate
	n.Converted = true
	n.Amount = roundHalfUp(exp.Amount, rate)

	var sum int64
	for _, s := range exp.Shares {
		converted := roundHalfUp(s.ShareAmount, rate)
		sum += converted
		n.ShareAmounts = append(n.ShareAmounts, ShareAmount{UserID: s.UserID, Amount: converted})
	}
	if drift := n.Amount - sum; drift != 0 && len(n.ShareAmounts) > 0 {
		n.ShareAmounts[0].Amount += drift
	}
	return n
}

// roundHalfUp converts minor units through a rate, rounding halves up.
// Amounts and rates are non-negative here, so decimal's round-half-away-
// from-zero is exactly round-half-up.
func roundHalfUp(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(rate).Round(0).IntPart()
}
