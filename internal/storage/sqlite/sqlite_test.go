package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tripledger/tripledger/internal/errs"
	"github.com/tripledger/tripledger/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateTrip generates ID and round-trips members", func(t *testing.T) {
		trip := &models.Trip{
			Name:         "Lisbon 2026",
			BaseCurrency: "EUR",
			Members:      []string{"alice", "bob", "carol"},
		}
		if err := store.CreateTrip(ctx, trip); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		if trip.ID == "" {
			t.Error("Expected trip ID to be generated")
		}
		if trip.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		retrieved, err := store.GetTrip(ctx, trip.ID)
		if err != nil {
			t.Fatalf("GetTrip failed: %v", err)
		}
		if retrieved.BaseCurrency != "EUR" {
			t.Errorf("BaseCurrency = %s, want EUR", retrieved.BaseCurrency)
		}
		if len(retrieved.Members) != 3 {
			t.Errorf("Members count = %d, want 3", len(retrieved.Members))
		}
	})

	t.Run("GetTrip returns NotFoundError for unknown trip", func(t *testing.T) {
		_, err := store.GetTrip(ctx, "nonexistent-id")
		if !errs.IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("AddTripMembers skips existing members", func(t *testing.T) {
		trip := &models.Trip{Name: "Weekend", BaseCurrency: "EUR", Members: []string{"alice"}}
		if err := store.CreateTrip(ctx, trip); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		if err := store.AddTripMembers(ctx, trip.ID, []string{"alice", "bob"}); err != nil {
			t.Fatalf("AddTripMembers failed: %v", err)
		}

		retrieved, err := store.GetTrip(ctx, trip.ID)
		if err != nil {
			t.Fatalf("GetTrip failed: %v", err)
		}
		if len(retrieved.Members) != 2 {
			t.Errorf("Members count = %d, want 2", len(retrieved.Members))
		}
	})

	t.Run("ListTrips returns only the user's trips", func(t *testing.T) {
		mine := &models.Trip{Name: "Mine", BaseCurrency: "USD", Members: []string{"dave"}}
		other := &models.Trip{Name: "Other", BaseCurrency: "USD", Members: []string{"erin"}}
		if err := store.CreateTrip(ctx, mine); err != nil {
			t.Fatal(err)
		}
		if err := store.CreateTrip(ctx, other); err != nil {
			t.Fatal(err)
		}

		trips, err := store.ListTrips(ctx, "dave")
		if err != nil {
			t.Fatalf("ListTrips failed: %v", err)
		}
		if len(trips) != 1 || trips[0].ID != mine.ID {
			t.Errorf("ListTrips = %+v, want only %s", trips, mine.ID)
		}
	})

	t.Run("CreateUser and lookup by email", func(t *testing.T) {
		user := models.NewUser("alice@example.com", "Alice", "hash")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if user.ID == "" {
			t.Error("Expected user ID to be generated")
		}

		retrieved, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if retrieved.DisplayName != "Alice" {
			t.Errorf("DisplayName = %s, want Alice", retrieved.DisplayName)
		}

		if _, err := store.GetUserByID(ctx, user.ID); err != nil {
			t.Errorf("GetUserByID failed: %v", err)
		}
		if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errs.IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}

func TestExpenseRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trip := &models.Trip{Name: "Tokyo", BaseCurrency: "EUR", Members: []string{"alice", "bob"}}
	if err := store.CreateTrip(ctx, trip); err != nil {
		t.Fatal(err)
	}

	rate := decimal.NullDecimal{Decimal: decimal.RequireFromString("0.0068"), Valid: true}
	expense := &models.Expense{
		TripID:       trip.ID,
		Description:  "Ramen",
		Amount:       300000,
		Currency:     "JPY",
		FxRateToBase: rate,
		PayerID:      "alice",
		SplitType:    models.SplitEqual,
		Shares: []models.Share{
			{UserID: "bob", ShareAmount: 150000, ShareType: models.SplitEqual},
			{UserID: "alice", ShareAmount: 150000, ShareType: models.SplitEqual},
		},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	retrieved, err := store.GetExpense(ctx, expense.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if retrieved.Amount != 300000 || retrieved.Currency != "JPY" {
		t.Errorf("amount/currency = %d/%s, want 300000/JPY", retrieved.Amount, retrieved.Currency)
	}
	if !retrieved.FxRateToBase.Valid || !retrieved.FxRateToBase.Decimal.Equal(rate.Decimal) {
		t.Errorf("fx rate = %+v, want %s", retrieved.FxRateToBase, rate.Decimal)
	}

	// Share order must survive the round trip: the first participant is
	// the remainder holder.
	if len(retrieved.Shares) != 2 {
		t.Fatalf("shares count = %d, want 2", len(retrieved.Shares))
	}
	if retrieved.Shares[0].UserID != "bob" || retrieved.Shares[1].UserID != "alice" {
		t.Errorf("share order = [%s %s], want [bob alice]",
			retrieved.Shares[0].UserID, retrieved.Shares[1].UserID)
	}

	t.Run("null fx rate round-trips as invalid", func(t *testing.T) {
		noRate := &models.Expense{
			TripID: trip.ID, Description: "Taxi", Amount: 5000, Currency: "JPY",
			PayerID: "bob", SplitType: models.SplitEqual,
			Shares: []models.Share{{UserID: "bob", ShareAmount: 5000, ShareType: models.SplitEqual}},
		}
		if err := store.CreateExpense(ctx, noRate); err != nil {
			t.Fatal(err)
		}
		retrieved, err := store.GetExpense(ctx, noRate.ID)
		if err != nil {
			t.Fatal(err)
		}
		if retrieved.FxRateToBase.Valid {
			t.Errorf("expected null fx rate, got %+v", retrieved.FxRateToBase)
		}
	})

	t.Run("ListExpensesByTrip returns shares for every expense", func(t *testing.T) {
		expenses, err := store.ListExpensesByTrip(ctx, trip.ID)
		if err != nil {
			t.Fatalf("ListExpensesByTrip failed: %v", err)
		}
		if len(expenses) != 2 {
			t.Fatalf("expenses count = %d, want 2", len(expenses))
		}
		for _, e := range expenses {
			if len(e.Shares) == 0 {
				t.Errorf("expense %s has no shares", e.ID)
			}
		}
	})

	t.Run("GetExpense returns NotFoundError for unknown id", func(t *testing.T) {
		_, err := store.GetExpense(ctx, "nonexistent-id")
		if !errs.IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}
