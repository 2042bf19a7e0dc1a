package sqlite

import (
	"context"
	"testing"

	"github.com/tripledger/tripledger/internal/errs"
	"github.com/tripledger/tripledger/internal/models"
)

func pendingPlan(pairs ...[2]string) []*models.Settlement {
	var plan []*models.Settlement
	for _, p := range pairs {
		plan = append(plan, &models.Settlement{
			FromUserID: p[0], ToUserID: p[1], Amount: 1000, Currency: "EUR",
		})
	}
	return plan
}

func TestSettlementLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trip := &models.Trip{Name: "Alps", BaseCurrency: "EUR", Members: []string{"alice", "bob", "carol"}}
	if err := store.CreateTrip(ctx, trip); err != nil {
		t.Fatal(err)
	}

	t.Run("ReplacePendingSettlements inserts the plan as pending", func(t *testing.T) {
		plan := pendingPlan([2]string{"bob", "alice"}, [2]string{"carol", "alice"})
		if err := store.ReplacePendingSettlements(ctx, trip.ID, plan); err != nil {
			t.Fatalf("ReplacePendingSettlements failed: %v", err)
		}

		settlements, err := store.ListSettlementsByTrip(ctx, trip.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(settlements) != 2 {
			t.Fatalf("settlements count = %d, want 2", len(settlements))
		}
		for _, s := range settlements {
			if s.Status != models.SettlementPending {
				t.Errorf("settlement %s status = %s, want pending", s.ID, s.Status)
			}
			if s.ID == "" || s.CreatedAt == 0 {
				t.Errorf("settlement missing generated fields: %+v", s)
			}
		}
	})

	t.Run("reconciliation replaces pending rows", func(t *testing.T) {
		plan := pendingPlan([2]string{"bob", "alice"})
		if err := store.ReplacePendingSettlements(ctx, trip.ID, plan); err != nil {
			t.Fatal(err)
		}

		settlements, err := store.ListSettlementsByTrip(ctx, trip.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(settlements) != 1 {
			t.Fatalf("settlements count = %d, want 1 after replacement", len(settlements))
		}
		if settlements[0].FromUserID != "bob" {
			t.Errorf("surviving settlement from = %s, want bob", settlements[0].FromUserID)
		}
	})

	t.Run("MarkSettlementSettled stamps the row", func(t *testing.T) {
		settlements, err := store.ListSettlementsByTrip(ctx, trip.ID)
		if err != nil {
			t.Fatal(err)
		}
		id := settlements[0].ID

		settled, err := store.MarkSettlementSettled(ctx, id, "alice", "paid in cash")
		if err != nil {
			t.Fatalf("MarkSettlementSettled failed: %v", err)
		}
		if settled.Status != models.SettlementSettled {
			t.Errorf("status = %s, want settled", settled.Status)
		}
		if settled.SettledAt == 0 || settled.SettledBy != "alice" {
			t.Errorf("settled stamp missing: %+v", settled)
		}
		if settled.Note != "paid in cash" {
			t.Errorf("note = %q, want %q", settled.Note, "paid in cash")
		}
	})

	t.Run("MarkSettlementSettled is idempotent", func(t *testing.T) {
		settlements, err := store.ListSettlementsByTrip(ctx, trip.ID)
		if err != nil {
			t.Fatal(err)
		}
		first := settlements[0]

		again, err := store.MarkSettlementSettled(ctx, first.ID, "bob", "second attempt")
		if err != nil {
			t.Fatalf("repeat MarkSettlementSettled failed: %v", err)
		}
		if again.SettledAt != first.SettledAt || again.SettledBy != first.SettledBy {
			t.Errorf("repeat call restamped the row: first %+v, again %+v", first, again)
		}
		if again.Note != first.Note {
			t.Errorf("repeat call rewrote the note: %q -> %q", first.Note, again.Note)
		}
	})

	t.Run("reconciliation never touches settled rows", func(t *testing.T) {
		// The only settlement is now settled; a new plan must add to,
		// not replace, that history.
		plan := pendingPlan([2]string{"carol", "alice"})
		if err := store.ReplacePendingSettlements(ctx, trip.ID, plan); err != nil {
			t.Fatal(err)
		}

		settlements, err := store.ListSettlementsByTrip(ctx, trip.ID)
		if err != nil {
			t.Fatal(err)
		}
		var settled, pending int
		for _, s := range settlements {
			switch s.Status {
			case models.SettlementSettled:
				settled++
				if s.FromUserID != "bob" {
					t.Errorf("settled row changed: %+v", s)
				}
			case models.SettlementPending:
				pending++
			}
		}
		if settled != 1 || pending != 1 {
			t.Errorf("settled=%d pending=%d, want 1/1", settled, pending)
		}
	})

	t.Run("MarkSettlementSettled returns NotFoundError for unknown id", func(t *testing.T) {
		_, err := store.MarkSettlementSettled(ctx, "nonexistent-id", "alice", "")
		if !errs.IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("replacement is scoped to the trip", func(t *testing.T) {
		other := &models.Trip{Name: "Other", BaseCurrency: "EUR", Members: []string{"x", "y"}}
		if err := store.CreateTrip(ctx, other); err != nil {
			t.Fatal(err)
		}
		if err := store.ReplacePendingSettlements(ctx, other.ID, pendingPlan([2]string{"x", "y"})); err != nil {
			t.Fatal(err)
		}

		// Clearing the other trip's plan must not clear this trip's.
		if err := store.ReplacePendingSettlements(ctx, other.ID, nil); err != nil {
			t.Fatal(err)
		}
		settlements, err := store.ListSettlementsByTrip(ctx, trip.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(settlements) != 2 {
			t.Errorf("settlements count = %d, want 2 (unaffected by other trip)", len(settlements))
		}
	})
}
