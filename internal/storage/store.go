// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/tripledger/tripledger/internal/models"
)

// Store defines the interface for trip, expense, and settlement
// persistence. The abstraction keeps the service layer independent of
// the backing database.
//
// Row visibility filtering (which expenses the calling user may see) is
// the responsibility of the persistence collaborator behind this
// interface; the settlement core consumes whatever rows it is handed.
type Store interface {
	// CreateUser persists a new user. The user.ID field is populated by
	// the store.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by id.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateTrip persists a new trip with its member list.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip by id, including members.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// ListTrips retrieves all trips a user is a member of.
	ListTrips(ctx context.Context, userID string) ([]*models.Trip, error)

	// AddTripMembers adds the given users to a trip, skipping ones
	// already present.
	AddTripMembers(ctx context.Context, tripID string, userIDs []string) error

	// CreateExpense persists an expense together with its shares in one
	// transaction.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by id, including shares.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByTrip retrieves all expenses of a trip with their
	// shares, oldest first.
	ListExpensesByTrip(ctx context.Context, tripID string) ([]models.Expense, error)

	// GetSettlement retrieves a settlement by id.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByTrip retrieves all settlements of a trip, newest
	// first.
	ListSettlementsByTrip(ctx context.Context, tripID string) ([]*models.Settlement, error)

	// ReplacePendingSettlements deletes the trip's pending rows and
	// inserts the given plan in a single transaction. Settled rows are
	// never touched.
	ReplacePendingSettlements(ctx context.Context, tripID string, plan []*models.Settlement) error

	// MarkSettlementSettled transitions a pending settlement to settled,
	// stamping settled_at/settled_by and recording the note. Calling it
	// on an already-settled row is a no-op returning the row unchanged.
	MarkSettlementSettled(ctx context.Context, settlementID, settledBy, note string) (*models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}
