package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tripledger/tripledger/internal/auth"
	"github.com/tripledger/tripledger/internal/calculator"
	"github.com/tripledger/tripledger/internal/metrics"
	"github.com/tripledger/tripledger/internal/models"
	"github.com/tripledger/tripledger/internal/storage"
)

// SettlementService computes settlement summaries, reconciles the
// pending transfer plan, and manages the pending-to-settled lifecycle.
type SettlementService struct {
	store      storage.Store
	authorizer auth.SettlementAuthorizer
	locks      *tripLocks
}

// NewSettlementService creates a settlement service backed by the given
// store. Mark-paid permission checks are delegated to authorizer.
func NewSettlementService(store storage.Store, authorizer auth.SettlementAuthorizer) *SettlementService {
	return &SettlementService{
		store:      store,
		authorizer: authorizer,
		locks:      newTripLocks(),
	}
}

// ComputeSummary runs one full computation pass for a trip: aggregate
// balances from current expense data, net them into a transfer plan,
// reconcile the trip's pending settlement rows against that plan, and
// return the aggregate view.
//
// The balance computation is pure and runs lock-free; only the
// reconciliation step is serialized per trip, so concurrent summary
// reads may observe a momentarily stale pending list but never a
// corrupted one.
func (s *SettlementService) ComputeSummary(ctx context.Context, tripID string) (*models.SettlementSummary, error) {
	start := time.Now()

	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.ListSettlementsByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	// Settled history feeds back into the balances so paid-off debts
	// don't resurface in the next plan. The per-pair totals are kept so
	// reconciliation can detect rows that settle while this computation
	// is in flight.
	var settled []calculator.SettledTransfer
	for _, st := range existing {
		if st.Status == models.SettlementSettled {
			settled = append(settled, calculator.SettledTransfer{
				FromUserID: st.FromUserID,
				ToUserID:   st.ToUserID,
				Amount:     st.Amount,
			})
		}
	}
	settledSeen := settledByPair(existing)

	result := calculator.AggregateBalances(expenses, settled, trip.BaseCurrency)
	if result.Drift < -int64(result.Conversions) || result.Drift > int64(result.Conversions) {
		// Rounding can cost at most one minor unit per conversion;
		// anything beyond that is an arithmetic defect, not input noise.
		slog.Error("balance drift exceeds rounding tolerance",
			"trip_id", tripID,
			"drift", result.Drift,
			"conversions", result.Conversions,
		)
	}
	if n := len(result.ExcludedExpenseIDs); n > 0 {
		metrics.ExcludedExpenses.Add(float64(n))
		slog.Warn("expenses excluded from settlement: missing FX rate",
			"trip_id", tripID,
			"expense_ids", result.ExcludedExpenseIDs,
		)
	}

	plan := calculator.OptimizeSettlements(result.Balances)
	rows := make([]*models.Settlement, len(plan))
	for i, transfer := range plan {
		rows[i] = &models.Settlement{
			TripID:     tripID,
			FromUserID: transfer.FromUserID,
			ToUserID:   transfer.ToUserID,
			Amount:     transfer.Amount,
			Currency:   trip.BaseCurrency,
		}
	}

	pending, settledRows, err := s.reconcile(ctx, tripID, rows, settledSeen)
	if err != nil {
		return nil, err
	}

	metrics.SummaryComputations.Inc()
	metrics.SummaryDuration.Observe(time.Since(start).Seconds())
	slog.Info("settlement summary computed",
		"trip_id", tripID,
		"expenses_used", len(expenses)-len(result.ExcludedExpenseIDs),
		"excluded", len(result.ExcludedExpenseIDs),
		"pending_transfers", len(pending),
	)

	return &models.SettlementSummary{
		TripID:             tripID,
		BaseCurrency:       trip.BaseCurrency,
		Balances:           result.Balances,
		PendingSettlements: pending,
		SettledSettlements: settledRows,
		TotalExpensesUsed:  len(expenses) - len(result.ExcludedExpenseIDs),
		ExcludedExpenseIDs: result.ExcludedExpenseIDs,
	}, nil
}

// transferKey identifies a debtor-creditor pair within a trip.
type transferKey struct {
	from, to string
}

// settledByPair totals the settled amounts per debtor-creditor pair.
func settledByPair(settlements []*models.Settlement) map[transferKey]int64 {
	totals := make(map[transferKey]int64)
	for _, s := range settlements {
		if s.Status == models.SettlementSettled {
			totals[transferKey{s.FromUserID, s.ToUserID}] += s.Amount
		}
	}
	return totals
}

// reconcile replaces the trip's pending rows with the fresh plan and
// reads back the resulting ledger, all under the trip's lock so two
// concurrent recomputations cannot interleave their delete/insert
// pairs.
//
// The plan was computed lock-free, so a settlement can transition to
// settled between the balance read and this point. settledSeen holds
// the per-pair settled totals the computation was based on; any amount
// settled since is deducted from the matching plan row (dropping it
// when fully paid), so a debt paid mid-computation is never re-inserted
// as pending.
func (s *SettlementService) reconcile(ctx context.Context, tripID string, plan []*models.Settlement, settledSeen map[transferKey]int64) (pending, settled []*models.Settlement, err error) {
	lock := s.locks.get(tripID)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.store.ListSettlementsByTrip(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	nowSettled := settledByPair(current)

	kept := plan[:0]
	for _, row := range plan {
		key := transferKey{row.FromUserID, row.ToUserID}
		if delta := nowSettled[key] - settledSeen[key]; delta > 0 {
			slog.Info("settlement settled during computation, adjusting plan",
				"trip_id", tripID,
				"from_user_id", row.FromUserID,
				"to_user_id", row.ToUserID,
				"paid", delta,
			)
			row.Amount -= delta
		}
		if row.Amount > 0 {
			kept = append(kept, row)
		}
	}

	if err := s.store.ReplacePendingSettlements(ctx, tripID, kept); err != nil {
		return nil, nil, err
	}
	metrics.Reconciliations.Inc()

	all, err := s.store.ListSettlementsByTrip(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	for _, settlement := range all {
		if settlement.Status == models.SettlementSettled {
			settled = append(settled, settlement)
		} else {
			pending = append(pending, settlement)
		}
	}
	return pending, settled, nil
}

// MarkSettlementAsPaid transitions a pending settlement to settled on
// behalf of actorID. Authorization is delegated to the configured
// SettlementAuthorizer. Marking an already-settled row is a silent
// idempotent success returning the row unchanged.
func (s *SettlementService) MarkSettlementAsPaid(ctx context.Context, actorID, settlementID, note string) (*models.Settlement, error) {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.CanMarkPaid(ctx, actorID, settlement); err != nil {
		slog.Warn("mark-paid denied",
			"settlement_id", settlementID,
			"user_id", actorID,
			"error", err,
		)
		return nil, err
	}

	if settlement.Status == models.SettlementSettled {
		return settlement, nil
	}

	updated, err := s.store.MarkSettlementSettled(ctx, settlementID, actorID, note)
	if err != nil {
		return nil, err
	}

	metrics.SettlementsMarkedPaid.Inc()
	slog.Info("settlement marked paid",
		"settlement_id", settlementID,
		"trip_id", updated.TripID,
		"settled_by", actorID,
	)
	return updated, nil
}

// CalculateExpenseShares splits a total among participants under the
// given rule without touching storage. Pure passthrough to the
// calculator, exposed so callers can preview shares before recording
// an expense.
func (s *SettlementService) CalculateExpenseShares(total int64, splitType models.SplitType, participants []calculator.Participant) ([]models.Share, error) {
	return calculator.CalculateShares(total, splitType, participants)
}
