// Package calculator implements the settlement math: splitting expenses
// into shares, rebasing them into the trip currency, aggregating net
// balances, and netting those balances into a minimal transfer plan.
//
// Everything here is pure: no I/O, no clocks, no shared state. The same
// inputs always produce the same outputs, including orderings, so the
// results are reproducible in tests and audits.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/tripledger/tripledger/internal/errs"
	"github.com/tripledger/tripledger/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Participant is one party to a split. Value carries the rule-specific
// input: a percentage for percentage splits, an explicit minor-unit
// amount for amount splits, nil for equal splits.
type Participant struct {
	UserID string
	Value  *decimal.Decimal
}

// CalculateShares divides total (minor units, positive) among the
// participants under the given split rule. The returned shares always
// sum exactly to total; ExpenseID is left empty for the caller to fill.
func CalculateShares(total int64, splitType models.SplitType, participants []Participant) ([]models.Share, error) {
	if total <= 0 {
		return nil, errs.Validationf("total amount must be positive, got %d", total)
	}
	if len(participants) == 0 {
		return nil, errs.Validationf("at least one participant required")
	}

	switch splitType {
	case models.SplitEqual:
		return equalShares(total, participants), nil
	case models.SplitPercentage:
		return percentageShares(total, participants)
	case models.SplitAmount:
		return amountShares(total, participants)
	default:
		return nil, errs.Validationf("unknown split type %q", splitType)
	}
}

// equalShares gives everyone floor(total/n); the first participant in
// input order additionally receives the remainder, so the total is
// reconstructed exactly with a single deterministic remainder holder.
func equalShares(total int64, participants []Participant) []models.Share {
	n := int64(len(participants))
	base := total / n
	remainder := total - base*n

	shares := make([]models.Share, len(participants))
	for i, p := range participants {
		amount := base
		if i == 0 {
			amount += remainder
		}
		shares[i] = models.Share{
			UserID:      p.UserID,
			ShareAmount: amount,
			ShareType:   models.SplitEqual,
		}
	}
	return shares
}

// percentageShares floors each share except the last, which receives
// whatever remains. The total is therefore exact regardless of rounding
// on earlier entries. Percentages are not required to sum to exactly
// 100, but sums above 100 that would drive the last share negative are
// rejected.
func percentageShares(total int64, participants []Participant) ([]models.Share, error) {
	shares := make([]models.Share, len(participants))
	totalDec := decimal.NewFromInt(total)

	var runningSum int64
	for i, p := range participants {
		if p.Value == nil {
			return nil, errs.Validationf("participant %s missing percentage value", p.UserID)
		}
		if p.Value.IsNegative() {
			return nil, errs.Validationf("participant %s has negative percentage %s", p.UserID, p.Value)
		}

		var amount int64
		if i == len(participants)-1 {
			amount = total - runningSum
			if amount < 0 {
				return nil, errs.Validationf("percentages sum above 100, leaving participant %s with negative share %d", p.UserID, amount)
			}
		} else {
			amount = totalDec.Mul(*p.Value).Div(hundred).Floor().IntPart()
			runningSum += amount
		}
		shares[i] = models.Share{
			UserID:      p.UserID,
			ShareAmount: amount,
			ShareType:   models.SplitPercentage,
			ShareValue:  decimal.NullDecimal{Decimal: *p.Value, Valid: true},
		}
	}
	return shares, nil
}

// amountShares passes caller-supplied amounts through unchanged after
// validating they sum exactly to the total.
func amountShares(total int64, participants []Participant) ([]models.Share, error) {
	shares := make([]models.Share, len(participants))

	var sum int64
	for i, p := range participants {
		if p.Value == nil {
			return nil, errs.Validationf("participant %s missing share amount", p.UserID)
		}
		if !p.Value.IsInteger() {
			return nil, errs.Validationf("participant %s share amount %s is not a whole number of minor units", p.UserID, p.Value)
		}
		amount := p.Value.IntPart()
		if amount < 0 {
			return nil, errs.Validationf("participant %s has negative share amount %d", p.UserID, amount)
		}
		sum += amount
		shares[i] = models.Share{
			UserID:      p.UserID,
			ShareAmount: amount,
			ShareType:   models.SplitAmount,
			ShareValue:  decimal.NullDecimal{Decimal: *p.Value, Valid: true},
		}
	}
	if sum != total {
		return nil, errs.Validationf("share amounts sum to %d, expected %d", sum, total)
	}
	return shares, nil
}
