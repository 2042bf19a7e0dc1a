package calculator

import (
	"testing"

	"github.com/tripledger/tripledger/internal/models"
)

func equalExpense(id, payer string, amount int64, currency string, userIDs ...string) models.Expense {
	participants := make([]Participant, len(userIDs))
	for i, u := range userIDs {
		participants[i] = Participant{UserID: u}
	}
	shares, err := CalculateShares(amount, models.SplitEqual, participants)
	if err != nil {
		panic(err)
	}
	return models.Expense{
		ID: id, PayerID: payer, Amount: amount, Currency: currency, Shares: shares,
	}
}

func balanceByUser(balances []models.UserBalance, userID string) (models.UserBalance, bool) {
	for _, b := range balances {
		if b.UserID == userID {
			return b, true
		}
	}
	return models.UserBalance{}, false
}

func TestAggregateBalances(t *testing.T) {
	t.Run("payer funds the total, participants owe their shares", func(t *testing.T) {
		// Alice pays 9000 split equally three ways: Alice +6000,
		// Bob -3000, Carol -3000.
		result := AggregateBalances([]models.Expense{
			equalExpense("e1", "alice", 9000, "EUR", "alice", "bob", "carol"),
		}, nil, "EUR")

		want := map[string]int64{"alice": 6000, "bob": -3000, "carol": -3000}
		if len(result.Balances) != len(want) {
			t.Fatalf("got %d balances, want %d", len(result.Balances), len(want))
		}
		for user, net := range want {
			b, ok := balanceByUser(result.Balances, user)
			if !ok {
				t.Fatalf("missing balance for %s", user)
			}
			if b.NetBalance != net {
				t.Errorf("%s net = %d, want %d", user, b.NetBalance, net)
			}
		}
		if result.Drift != 0 {
			t.Errorf("drift = %d, want 0", result.Drift)
		}
	})

	t.Run("balances are sorted creditors first with id tie-break", func(t *testing.T) {
		result := AggregateBalances([]models.Expense{
			equalExpense("e1", "dave", 4000, "EUR", "dave", "bob"),
			equalExpense("e2", "alice", 4000, "EUR", "alice", "carol"),
		}, nil, "EUR")

		wantOrder := []string{"alice", "dave", "bob", "carol"}
		for i, user := range wantOrder {
			if result.Balances[i].UserID != user {
				t.Fatalf("position %d = %s, want %s (full order: %+v)", i, result.Balances[i].UserID, user, result.Balances)
			}
		}
	})

	t.Run("expense missing a rate is excluded but the rest is computed", func(t *testing.T) {
		unconvertible := equalExpense("e2", "bob", 5000, "JPY", "bob", "alice")
		result := AggregateBalances([]models.Expense{
			equalExpense("e1", "alice", 9000, "EUR", "alice", "bob", "carol"),
			unconvertible,
		}, nil, "EUR")

		if len(result.ExcludedExpenseIDs) != 1 || result.ExcludedExpenseIDs[0] != "e2" {
			t.Fatalf("excluded = %v, want [e2]", result.ExcludedExpenseIDs)
		}
		alice, _ := balanceByUser(result.Balances, "alice")
		if alice.NetBalance != 6000 {
			t.Errorf("alice net = %d, want 6000 (excluded expense must not contribute)", alice.NetBalance)
		}
	})

	t.Run("settled transfers move balances back toward zero", func(t *testing.T) {
		result := AggregateBalances(
			[]models.Expense{equalExpense("e1", "alice", 9000, "EUR", "alice", "bob", "carol")},
			[]SettledTransfer{{FromUserID: "bob", ToUserID: "alice", Amount: 3000}},
			"EUR",
		)

		bob, _ := balanceByUser(result.Balances, "bob")
		if bob.NetBalance != 0 {
			t.Errorf("bob net = %d, want 0 after settling", bob.NetBalance)
		}
		alice, _ := balanceByUser(result.Balances, "alice")
		if alice.NetBalance != 3000 {
			t.Errorf("alice net = %d, want 3000 after being paid", alice.NetBalance)
		}
		if result.Drift != 0 {
			t.Errorf("drift = %d, want 0", result.Drift)
		}
	})

	t.Run("mixed currencies with rates keep the sum within tolerance", func(t *testing.T) {
		foreign := equalExpense("e2", "bob", 3333, "USD", "alice", "bob", "carol")
		foreign.FxRateToBase = fx("0.9255")
		result := AggregateBalances([]models.Expense{
			equalExpense("e1", "alice", 9000, "EUR", "alice", "bob", "carol"),
			foreign,
		}, nil, "EUR")

		if result.Conversions != 1 {
			t.Fatalf("conversions = %d, want 1", result.Conversions)
		}
		if result.Drift < -int64(result.Conversions) || result.Drift > int64(result.Conversions) {
			t.Errorf("drift %d exceeds tolerance of %d minor units", result.Drift, result.Conversions)
		}
	})

	t.Run("no expenses produce no balances", func(t *testing.T) {
		result := AggregateBalances(nil, nil, "EUR")
		if len(result.Balances) != 0 || len(result.ExcludedExpenseIDs) != 0 {
			t.Errorf("unexpected result for empty input: %+v", result)
		}
	})
}

// The sum of all net balances is zero for purely same-currency inputs
// and stays within one minor unit per conversion otherwise.
func TestAggregateBalancesSumZero(t *testing.T) {
	expenses := []models.Expense{
		equalExpense("e1", "alice", 9000, "EUR", "alice", "bob", "carol"),
		equalExpense("e2", "bob", 101, "EUR", "alice", "bob"),
		equalExpense("e3", "carol", 7777, "EUR", "alice", "bob", "carol", "dave"),
		equalExpense("e4", "dave", 13, "EUR", "dave", "alice", "carol"),
	}

	result := AggregateBalances(expenses, nil, "EUR")
	if result.Drift != 0 {
		t.Fatalf("same-currency drift = %d, want exactly 0", result.Drift)
	}

	var sum int64
	for _, b := range result.Balances {
		sum += b.NetBalance
	}
	if sum != 0 {
		t.Fatalf("net balances sum to %d, want 0", sum)
	}
}
