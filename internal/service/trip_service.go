package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tripledger/tripledger/internal/errs"
	"github.com/tripledger/tripledger/internal/models"
	"github.com/tripledger/tripledger/internal/storage"
)

// TripService manages trips and their member lists.
type TripService struct {
	store storage.Store
}

// NewTripService creates a trip service with the given storage backend.
func NewTripService(store storage.Store) *TripService {
	return &TripService{store: store}
}

// CreateTrip creates a trip settling in baseCurrency. The creator is
// always a member.
func (s *TripService) CreateTrip(ctx context.Context, name, baseCurrency, creatorID string, members []string) (*models.Trip, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.Validationf("trip name required")
	}
	currency := strings.ToUpper(strings.TrimSpace(baseCurrency))
	if len(currency) != 3 {
		return nil, errs.Validationf("base currency must be a 3-letter ISO code, got %q", baseCurrency)
	}

	allMembers := []string{creatorID}
	for _, m := range members {
		if m != creatorID {
			allMembers = append(allMembers, m)
		}
	}

	trip := &models.Trip{
		Name:         name,
		BaseCurrency: currency,
		Members:      allMembers,
	}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return nil, err
	}

	slog.Info("trip created", "trip_id", trip.ID, "base_currency", trip.BaseCurrency, "members", len(trip.Members))
	return trip, nil
}

// GetTrip retrieves a trip by id.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	return s.store.GetTrip(ctx, tripID)
}

// ListTrips retrieves the trips the user belongs to.
func (s *TripService) ListTrips(ctx context.Context, userID string) ([]*models.Trip, error) {
	return s.store.ListTrips(ctx, userID)
}

// AddMembers adds users to an existing trip.
func (s *TripService) AddMembers(ctx context.Context, tripID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return errs.Validationf("at least one member required")
	}
	return s.store.AddTripMembers(ctx, tripID, userIDs)
}
