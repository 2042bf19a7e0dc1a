package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/tripledger/tripledger/internal/middleware"
	"github.com/tripledger/tripledger/internal/models"
	"github.com/tripledger/tripledger/internal/service"
)

// SettlementHandler serves the settlement summary, mark-paid, and the
// share preview.
type SettlementHandler struct {
	settlements *service.SettlementService
}

func NewSettlementHandler(settlements *service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlements: settlements}
}

type balanceResponse struct {
	UserID      string `json:"user_id"`
	NetBalance  int64  `json:"net_balance"`
	TotalFunded int64  `json:"total_funded"`
	TotalOwed   int64  `json:"total_owed"`
	Currency    string `json:"currency"`
}

type settlementResponse struct {
	ID         string `json:"id"`
	TripID     string `json:"trip_id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
	SettledAt  int64  `json:"settled_at,omitempty"`
	SettledBy  string `json:"settled_by,omitempty"`
	Note       string `json:"note,omitempty"`
}

type summaryResponse struct {
	TripID             string               `json:"trip_id"`
	BaseCurrency       string               `json:"base_currency"`
	Balances           []balanceResponse    `json:"balances"`
	PendingSettlements []settlementResponse `json:"pending_settlements"`
	SettledSettlements []settlementResponse `json:"settled_settlements"`
	TotalExpensesUsed  int                  `json:"total_expenses_used"`
	ExcludedExpenseIDs []string             `json:"excluded_expense_ids,omitempty"`
}

type markPaidRequest struct {
	Note string `json:"note,omitempty"`
}

type sharePreviewRequest struct {
	Amount       int64                `json:"amount"`
	SplitType    string               `json:"split_type"`
	Participants []participantRequest `json:"participants"`
}

func toSettlementResponse(s *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:         s.ID,
		TripID:     s.TripID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		Currency:   s.Currency,
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
		SettledAt:  s.SettledAt,
		SettledBy:  s.SettledBy,
		Note:       s.Note,
	}
}

func toSettlementResponses(settlements []*models.Settlement) []settlementResponse {
	resp := make([]settlementResponse, len(settlements))
	for i, s := range settlements {
		resp[i] = toSettlementResponse(s)
	}
	return resp
}

// Summary handles GET /api/trips/{tripID}/settlements: one full
// computation pass including reconciliation of the pending plan.
func (h *SettlementHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.settlements.ComputeSummary(r.Context(), r.PathValue("tripID"))
	if err != nil {
		handleError(w, err)
		return
	}

	balances := make([]balanceResponse, len(summary.Balances))
	for i, b := range summary.Balances {
		balances[i] = balanceResponse{
			UserID:      b.UserID,
			NetBalance:  b.NetBalance,
			TotalFunded: b.TotalFunded,
			TotalOwed:   b.TotalOwed,
			Currency:    b.Currency,
		}
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		TripID:             summary.TripID,
		BaseCurrency:       summary.BaseCurrency,
		Balances:           balances,
		PendingSettlements: toSettlementResponses(summary.PendingSettlements),
		SettledSettlements: toSettlementResponses(summary.SettledSettlements),
		TotalExpensesUsed:  summary.TotalExpensesUsed,
		ExcludedExpenseIDs: summary.ExcludedExpenseIDs,
	})
}

// MarkPaid handles POST /api/settlements/{settlementID}/pay. The acting
// user comes from the auth context; permission is decided by the
// service's authorizer.
func (h *SettlementHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	// The note is optional; an absent body means no note.
	var req markPaidRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	actorID := middleware.GetUserID(r.Context())
	settlement, err := h.settlements.MarkSettlementAsPaid(r.Context(), actorID, r.PathValue("settlementID"), req.Note)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

// PreviewShares handles POST /api/shares/preview: computes a split
// without recording anything.
func (h *SettlementHandler) PreviewShares(w http.ResponseWriter, r *http.Request) {
	var req sharePreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	participants, err := toParticipants(req.Participants)
	if err != nil {
		sendJSONError(w, "invalid participant value: "+err.Error(), http.StatusBadRequest)
		return
	}

	shares, err := h.settlements.CalculateExpenseShares(req.Amount, models.SplitType(req.SplitType), participants)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShareResponses(shares))
}
