package handlers

import (
	"net/http"

	"github.com/tripledger/tripledger/internal/middleware"
	"github.com/tripledger/tripledger/internal/models"
	"github.com/tripledger/tripledger/internal/service"
)

// TripHandler serves trip creation and membership.
type TripHandler struct {
	trips *service.TripService
}

func NewTripHandler(trips *service.TripService) *TripHandler {
	return &TripHandler{trips: trips}
}

type createTripRequest struct {
	Name         string   `json:"name"`
	BaseCurrency string   `json:"base_currency"`
	Members      []string `json:"members,omitempty"`
}

type addMembersRequest struct {
	UserIDs []string `json:"user_ids"`
}

type tripResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	BaseCurrency string   `json:"base_currency"`
	Members      []string `json:"members"`
	CreatedAt    int64    `json:"created_at"`
}

func toTripResponse(t *models.Trip) tripResponse {
	return tripResponse{
		ID:           t.ID,
		Name:         t.Name,
		BaseCurrency: t.BaseCurrency,
		Members:      t.Members,
		CreatedAt:    t.CreatedAt,
	}
}

// Create handles POST /api/trips.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	creatorID := middleware.GetUserID(r.Context())
	trip, err := h.trips.CreateTrip(r.Context(), req.Name, req.BaseCurrency, creatorID, req.Members)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTripResponse(trip))
}

// Get handles GET /api/trips/{tripID}.
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	trip, err := h.trips.GetTrip(r.Context(), r.PathValue("tripID"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripResponse(trip))
}

// List handles GET /api/trips and returns the caller's trips.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	trips, err := h.trips.ListTrips(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleError(w, err)
		return
	}

	resp := make([]tripResponse, len(trips))
	for i, t := range trips {
		resp[i] = toTripResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddMembers handles POST /api/trips/{tripID}/members.
func (h *TripHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
	var req addMembersRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tripID := r.PathValue("tripID")
	if err := h.trips.AddMembers(r.Context(), tripID, req.UserIDs); err != nil {
		handleError(w, err)
		return
	}

	trip, err := h.trips.GetTrip(r.Context(), tripID)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripResponse(trip))
}
