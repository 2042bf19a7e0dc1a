package main

import (
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/time/rate"

	"github.com/tripledger/tripledger/internal/auth"
	"github.com/tripledger/tripledger/internal/config"
	"github.com/tripledger/tripledger/internal/handlers"
	"github.com/tripledger/tripledger/internal/middleware"
	"github.com/tripledger/tripledger/internal/rates"
	"github.com/tripledger/tripledger/internal/service"
	"github.com/tripledger/tripledger/internal/storage/sqlite"
	"github.com/tripledger/tripledger/pkg/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.DatabasePath)

	var resolver *rates.Resolver
	if cfg.FxRates != "" {
		source, err := rates.ParseStatic(cfg.FxRates)
		if err != nil {
			slog.Error("failed to parse FX_RATES", "error", err)
			os.Exit(1)
		}
		resolver = rates.NewResolver(source, cfg.FxCacheTTL)
		slog.Info("FX rate source configured", "pairs", len(source))
	} else {
		slog.Warn("no FX rate source configured; foreign-currency expenses will be excluded from settlement")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenExpiry)
	authenticator := auth.NewPasswordAuthenticator(store)

	mux := handlers.Router(
		handlers.NewAuthHandler(service.NewAuthService(authenticator, jwtManager)),
		handlers.NewTripHandler(service.NewTripService(store)),
		handlers.NewExpenseHandler(service.NewExpenseService(store, resolver)),
		handlers.NewSettlementHandler(service.NewSettlementService(store, auth.PartyAuthorizer{})),
		middleware.RequireAuth(jwtManager),
	)

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	handler := middleware.Logging(middleware.CORS(middleware.RateLimit(limiter)(mux)))

	// h2c allows HTTP/2 without TLS for clients behind a terminating proxy.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := ":" + cfg.Port
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
