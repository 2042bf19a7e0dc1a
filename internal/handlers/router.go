package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the API mux. requireAuth wraps every route except
// registration, login, and metrics.
func Router(auth *AuthHandler, trips *TripHandler, expenses *ExpenseHandler, settlements *SettlementHandler, requireAuth func(http.Handler) http.Handler) *http.ServeMux {
	authed := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", auth.Register)
	mux.HandleFunc("POST /api/auth/login", auth.Login)

	mux.Handle("POST /api/trips", authed(trips.Create))
	mux.Handle("GET /api/trips", authed(trips.List))
	mux.Handle("GET /api/trips/{tripID}", authed(trips.Get))
	mux.Handle("POST /api/trips/{tripID}/members", authed(trips.AddMembers))

	mux.Handle("POST /api/trips/{tripID}/expenses", authed(expenses.Create))
	mux.Handle("GET /api/trips/{tripID}/expenses", authed(expenses.List))

	mux.Handle("GET /api/trips/{tripID}/settlements", authed(settlements.Summary))
	mux.Handle("POST /api/settlements/{settlementID}/pay", authed(settlements.MarkPaid))
	mux.Handle("POST /api/shares/preview", authed(settlements.PreviewShares))

	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
