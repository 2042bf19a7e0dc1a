package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tripledger/tripledger/internal/errs"
	"github.com/tripledger/tripledger/internal/models"
	"github.com/tripledger/tripledger/internal/rates"
)

func TestCreateExpenseDefaultsToBaseCurrency(t *testing.T) {
	store := newTestStore(t)
	trip := newTestTrip(t, store, "alice", "bob")
	svc := NewExpenseService(store, nil)

	expense, err := svc.CreateExpense(context.Background(), ExpenseInput{
		TripID:       trip.ID,
		Description:  "groceries",
		Amount:       2500,
		PayerID:      "alice",
		SplitType:    models.SplitEqual,
		Participants: equalSplit("alice", "bob"),
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if expense.Currency != "EUR" {
		t.Errorf("currency = %q, want trip base EUR", expense.Currency)
	}
	if !expense.FxRateToBase.Valid {
		// Same-currency expenses never need a snapshot, but conversion
		// treats a missing rate on base-currency rows as rate 1.
		return
	}
	if !expense.FxRateToBase.Decimal.Equal(decimal.NewFromInt(1)) {
		t.Errorf("fx rate = %s, want 1", expense.FxRateToBase.Decimal)
	}
}

func TestCreateExpenseStampsRateSnapshot(t *testing.T) {
	store := newTestStore(t)
	trip := newTestTrip(t, store, "alice", "bob")

	source := rates.StaticSource{"USD/EUR": decimal.RequireFromString("0.9255")}
	svc := NewExpenseService(store, rates.NewResolver(source, time.Minute))

	expense, err := svc.CreateExpense(context.Background(), ExpenseInput{
		TripID:       trip.ID,
		Description:  "museum",
		Amount:       1000,
		Currency:     "usd",
		PayerID:      "alice",
		SplitType:    models.SplitEqual,
		Participants: equalSplit("alice", "bob"),
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if expense.Currency != "USD" {
		t.Errorf("currency = %q, want USD", expense.Currency)
	}
	if !expense.FxRateToBase.Valid {
		t.Fatal("expected an FX rate snapshot")
	}
	if !expense.FxRateToBase.Decimal.Equal(decimal.RequireFromString("0.9255")) {
		t.Errorf("fx rate = %s, want 0.9255", expense.FxRateToBase.Decimal)
	}

	// The snapshot must survive the round-trip through storage.
	stored, err := store.GetExpense(context.Background(), expense.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if !stored.FxRateToBase.Valid || !stored.FxRateToBase.Decimal.Equal(expense.FxRateToBase.Decimal) {
		t.Errorf("stored fx rate = %+v, want %s", stored.FxRateToBase, expense.FxRateToBase.Decimal)
	}
}

func TestCreateExpenseMissingRateIsSoftFailure(t *testing.T) {
	store := newTestStore(t)
	trip := newTestTrip(t, store, "alice", "bob")

	// Source has no JPY rate; the expense must still be recorded,
	// snapshot-free.
	svc := NewExpenseService(store, rates.NewResolver(rates.StaticSource{}, time.Minute))

	expense, err := svc.CreateExpense(context.Background(), ExpenseInput{
		TripID:       trip.ID,
		Description:  "ramen",
		Amount:       180000,
		Currency:     "JPY",
		PayerID:      "bob",
		SplitType:    models.SplitEqual,
		Participants: equalSplit("alice", "bob"),
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if expense.FxRateToBase.Valid {
		t.Errorf("expected no snapshot, got %s", expense.FxRateToBase.Decimal)
	}
}

func TestCreateExpenseAutoAddsParticipants(t *testing.T) {
	store := newTestStore(t)
	trip := newTestTrip(t, store, "alice")
	svc := NewExpenseService(store, nil)

	_, err := svc.CreateExpense(context.Background(), ExpenseInput{
		TripID:       trip.ID,
		Description:  "tickets",
		Amount:       3000,
		PayerID:      "alice",
		SplitType:    models.SplitEqual,
		Participants: equalSplit("alice", "bob", "carol"),
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	updated, err := store.GetTrip(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("GetTrip failed: %v", err)
	}
	members := make(map[string]bool)
	for _, m := range updated.Members {
		members[m] = true
	}
	for _, want := range []string{"alice", "bob", "carol"} {
		if !members[want] {
			t.Errorf("member %s missing after auto-add, got %v", want, updated.Members)
		}
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	store := newTestStore(t)
	trip := newTestTrip(t, store, "alice", "bob")
	svc := NewExpenseService(store, nil)

	tests := []struct {
		name  string
		input ExpenseInput
	}{
		{
			name: "missing payer",
			input: ExpenseInput{
				TripID:       trip.ID,
				Amount:       1000,
				SplitType:    models.SplitEqual,
				Participants: equalSplit("alice", "bob"),
			},
		},
		{
			name: "no participants",
			input: ExpenseInput{
				TripID:    trip.ID,
				Amount:    1000,
				PayerID:   "alice",
				SplitType: models.SplitEqual,
			},
		},
		{
			name: "negative amount",
			input: ExpenseInput{
				TripID:       trip.ID,
				Amount:       -100,
				PayerID:      "alice",
				SplitType:    models.SplitEqual,
				Participants: equalSplit("alice", "bob"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateExpense(context.Background(), tt.input); !errs.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	t.Run("unknown trip", func(t *testing.T) {
		_, err := svc.CreateExpense(context.Background(), ExpenseInput{
			TripID:       "no-such-trip",
			Amount:       1000,
			PayerID:      "alice",
			SplitType:    models.SplitEqual,
			Participants: equalSplit("alice", "bob"),
		})
		if !errs.IsNotFound(err) {
			t.Errorf("expected not-found error, got %v", err)
		}
	})
}
