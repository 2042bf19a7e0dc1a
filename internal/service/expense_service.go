package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tripledger/tripledger/internal/calculator"
	"github.com/tripledger/tripledger/internal/errs"
	"github.com/tripledger/tripledger/internal/models"
	"github.com/tripledger/tripledger/internal/rates"
	"github.com/tripledger/tripledger/internal/storage"
)

// ExpenseService records expenses with validated shares and FX rate
// snapshots.
type ExpenseService struct {
	store storage.Store
	rates *rates.Resolver
}

// NewExpenseService creates an expense service. resolver may be nil,
// in which case foreign-currency expenses are recorded without a rate
// snapshot and are excluded from settlement until one is supplied.
func NewExpenseService(store storage.Store, resolver *rates.Resolver) *ExpenseService {
	return &ExpenseService{store: store, rates: resolver}
}

// ExpenseInput is the caller-facing shape of one new expense.
type ExpenseInput struct {
	TripID       string
	Description  string
	Amount       int64
	Currency     string
	PayerID      string
	SplitType    models.SplitType
	Participants []calculator.Participant
}

// CreateExpense validates the split, captures an FX snapshot when the
// expense currency differs from the trip base, and persists the
// expense with its shares atomically. Participants and the payer are
// auto-added to the trip's member list.
func (s *ExpenseService) CreateExpense(ctx context.Context, in ExpenseInput) (*models.Expense, error) {
	trip, err := s.store.GetTrip(ctx, in.TripID)
	if err != nil {
		return nil, err
	}

	if in.PayerID == "" {
		return nil, errs.Validationf("payer required")
	}

	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = trip.BaseCurrency
	}

	shares, err := calculator.CalculateShares(in.Amount, in.SplitType, in.Participants)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		TripID:      in.TripID,
		Description: in.Description,
		Amount:      in.Amount,
		Currency:    currency,
		PayerID:     in.PayerID,
		SplitType:   in.SplitType,
		Shares:      shares,
	}

	if currency != trip.BaseCurrency && s.rates != nil {
		snapshot, err := s.rates.Snapshot(ctx, currency, trip.BaseCurrency)
		if err != nil {
			// Rate sourcing failures are soft: the expense is recorded
			// without a snapshot and excluded until one is supplied.
			slog.Warn("failed to resolve FX rate snapshot",
				"trip_id", in.TripID,
				"currency", currency,
				"base_currency", trip.BaseCurrency,
				"error", err,
			)
		} else {
			expense.FxRateToBase = snapshot
		}
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	s.autoAddParticipants(ctx, trip, expense)

	slog.Info("expense recorded",
		"expense_id", expense.ID,
		"trip_id", expense.TripID,
		"amount", expense.Amount,
		"currency", expense.Currency,
		"has_fx_rate", expense.FxRateToBase.Valid,
	)
	return expense, nil
}

// ListExpenses retrieves all expenses of a trip, oldest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, tripID string) ([]models.Expense, error) {
	if _, err := s.store.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByTrip(ctx, tripID)
}

// autoAddParticipants adds any expense participants (and the payer)
// not already in the trip. Failures only log: the expense itself is
// already committed.
func (s *ExpenseService) autoAddParticipants(ctx context.Context, trip *models.Trip, expense *models.Expense) {
	members := make(map[string]bool, len(trip.Members))
	for _, m := range trip.Members {
		members[m] = true
	}

	var newMembers []string
	seen := make(map[string]bool)
	add := func(userID string) {
		if !members[userID] && !seen[userID] {
			seen[userID] = true
			newMembers = append(newMembers, userID)
		}
	}
	add(expense.PayerID)
	for _, share := range expense.Shares {
		add(share.UserID)
	}
	if len(newMembers) == 0 {
		return
	}

	if err := s.store.AddTripMembers(ctx, trip.ID, newMembers); err != nil {
		slog.Error("failed to auto-add expense participants to trip",
			"trip_id", trip.ID,
			"error", err,
		)
		return
	}
	slog.Info("auto-added participants to trip", "trip_id", trip.ID, "new_members", newMembers)
}
