package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tripledger/tripledger/internal/calculator"
	"github.com/tripledger/tripledger/internal/models"
	"github.com/tripledger/tripledger/internal/service"
)

// ExpenseHandler serves expense recording and listing.
type ExpenseHandler struct {
	expenses *service.ExpenseService
}

func NewExpenseHandler(expenses *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// participantRequest is one party to a split. Value is a decimal string
// carrying the percentage or custom amount; absent for equal splits.
type participantRequest struct {
	UserID string `json:"user_id"`
	Value  string `json:"value,omitempty"`
}

type createExpenseRequest struct {
	Description  string               `json:"description"`
	Amount       int64                `json:"amount"`
	Currency     string               `json:"currency,omitempty"`
	PayerID      string               `json:"payer_id"`
	SplitType    string               `json:"split_type"`
	Participants []participantRequest `json:"participants"`
}

type shareResponse struct {
	UserID      string `json:"user_id"`
	ShareAmount int64  `json:"share_amount"`
	ShareType   string `json:"share_type"`
	ShareValue  string `json:"share_value,omitempty"`
}

type expenseResponse struct {
	ID           string          `json:"id"`
	TripID       string          `json:"trip_id"`
	Description  string          `json:"description"`
	Amount       int64           `json:"amount"`
	Currency     string          `json:"currency"`
	FxRateToBase string          `json:"fx_rate_to_base,omitempty"`
	PayerID      string          `json:"payer_id"`
	SplitType    string          `json:"split_type"`
	Shares       []shareResponse `json:"shares"`
	CreatedAt    int64           `json:"created_at"`
}

func toParticipants(reqs []participantRequest) ([]calculator.Participant, error) {
	participants := make([]calculator.Participant, len(reqs))
	for i, p := range reqs {
		participants[i] = calculator.Participant{UserID: p.UserID}
		if p.Value != "" {
			value, err := decimal.NewFromString(p.Value)
			if err != nil {
				return nil, err
			}
			participants[i].Value = &value
		}
	}
	return participants, nil
}

func toShareResponses(shares []models.Share) []shareResponse {
	resp := make([]shareResponse, len(shares))
	for i, s := range shares {
		resp[i] = shareResponse{
			UserID:      s.UserID,
			ShareAmount: s.ShareAmount,
			ShareType:   string(s.ShareType),
		}
		if s.ShareValue.Valid {
			resp[i].ShareValue = s.ShareValue.Decimal.String()
		}
	}
	return resp
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		TripID:      e.TripID,
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    e.Currency,
		PayerID:     e.PayerID,
		SplitType:   string(e.SplitType),
		Shares:      toShareResponses(e.Shares),
		CreatedAt:   e.CreatedAt,
	}
	if e.FxRateToBase.Valid {
		resp.FxRateToBase = e.FxRateToBase.Decimal.String()
	}
	return resp
}

// Create handles POST /api/trips/{tripID}/expenses.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	participants, err := toParticipants(req.Participants)
	if err != nil {
		sendJSONError(w, "invalid participant value: "+err.Error(), http.StatusBadRequest)
		return
	}

	expense, err := h.expenses.CreateExpense(r.Context(), service.ExpenseInput{
		TripID:       r.PathValue("tripID"),
		Description:  req.Description,
		Amount:       req.Amount,
		Currency:     req.Currency,
		PayerID:      req.PayerID,
		SplitType:    models.SplitType(req.SplitType),
		Participants: participants,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

// List handles GET /api/trips/{tripID}/expenses.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenses.ListExpenses(r.Context(), r.PathValue("tripID"))
	if err != nil {
		handleError(w, err)
		return
	}

	resp := make([]expenseResponse, len(expenses))
	for i := range expenses {
		resp[i] = toExpenseResponse(&expenses[i])
	}
	writeJSON(w, http.StatusOK, resp)
}
