// Package rpc exposes the season market over HTTP. Mutating endpoints are
// serialized through a single lock so every engine operation applies as an
// indivisible transaction against the ledger, matching the execution model
// the engines assume.
package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"seasonmarket/native/market"
	"seasonmarket/native/rng"
	"seasonmarket/observability/metrics"
	"seasonmarket/state"
)

const maxRequestBytes = 1 << 20 // 1 MiB

// Server wires the market engine, randomness gateway and ledger behind HTTP
// handlers.
type Server struct {
	mu      sync.Mutex
	ledger  *state.Ledger
	engine  *market.Engine
	gateway *rng.Gateway

	log        *slog.Logger
	adminToken string
	metrics    *metrics.MarketMetrics

	// deliverLimiter throttles the oracle callback endpoint.
	deliverLimiter *rate.Limiter
}

// NewServer constructs the HTTP surface. adminToken guards the administrative
// endpoints; an empty token disables them entirely.
func NewServer(ledger *state.Ledger, engine *market.Engine, gateway *rng.Gateway, log *slog.Logger, adminToken string) *Server {
	return &Server{
		ledger:         ledger,
		engine:         engine,
		gateway:        gateway,
		log:            log,
		adminToken:     strings.TrimSpace(adminToken),
		metrics:        metrics.Market(),
		deliverLimiter: rate.NewLimiter(rate.Limit(20), 40),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Post("/v1/crates/buy", s.handleBuyCrates)
	r.Post("/v1/crates/open", s.handleOpenCrate)
	r.Post("/v1/crates/claim", s.handleClaimPrize)
	r.Post("/v1/raffles/buy", s.handleBuyRaffleEntries)
	r.Post("/v1/merch/buy", s.handleBuyMerch)

	r.Post("/v1/oracle/deliver", s.handleDeliver)

	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Post("/season/init", s.handleInitSeason)
		r.Post("/season/window", s.handleSetSeasonWindow)
		r.Post("/season/crate-price", s.handleSetCratePrice)
		r.Post("/season/crate-quota", s.handleSetCrateQuota)
		r.Post("/season/unlock", s.handleSetUnlockTime)
		r.Post("/season/raffle-price", s.handleSetRafflePrice)
		r.Post("/season/raffle-cap", s.handleSetRaffleCap)
		r.Post("/season/max-payout", s.handleSetMaxPayout)
		r.Post("/merch/register", s.handleRegisterMerch)
		r.Post("/participants/register", s.handleRegisterParticipant)
		r.Post("/participants/credit", s.handleCreditParticipant)
		r.Post("/raffles/draw", s.handleDrawWinners)
	})

	r.Get("/v1/inventory/{address}", s.handleInventory)
	r.Get("/v1/crates/{id}", s.handleCrate)
	r.Get("/v1/quota/crates", s.handleCrateQuotas)
	r.Get("/v1/quota/merch/{typeId}", s.handleMerchQuota)
	r.Get("/v1/season", s.handleSeason)
	r.Get("/v1/winners/{typeId}", s.handleWinners)
	r.Get("/v1/balance/{address}", s.handleBalance)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		if s.log != nil {
			s.log.Debug("http request",
				slog.String("requestId", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" {
			writeError(w, http.StatusForbidden, "unauthorized", "administrative interface disabled")
			return
		}
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.adminToken)) != 1 {
			writeError(w, http.StatusForbidden, "unauthorized", "invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

// writeEngineError maps the stable engine error values onto HTTP statuses and
// string codes.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	code, status := classifyError(err)
	if code == "internal" && s.log != nil {
		s.log.Error("engine failure", slog.String("error", err.Error()))
	}
	writeError(w, status, code, err.Error())
}

func classifyError(err error) (string, int) {
	switch {
	case errors.Is(err, market.ErrUnauthorized):
		return "unauthorized", http.StatusForbidden
	case errors.Is(err, market.ErrNotRegistered):
		return "not_registered", http.StatusForbidden
	case errors.Is(err, market.ErrInvalidArgument):
		return "invalid_argument", http.StatusBadRequest
	case errors.Is(err, market.ErrQuotaExceeded):
		return "quota_exceeded", http.StatusConflict
	case errors.Is(err, market.ErrUserDailyLimitExceeded):
		return "user_daily_limit_exceeded", http.StatusConflict
	case errors.Is(err, market.ErrWindowLimitExceeded):
		return "window_limit_exceeded", http.StatusConflict
	case errors.Is(err, market.ErrSupplyExceeded):
		return "supply_exceeded", http.StatusConflict
	case errors.Is(err, market.ErrInsufficientFunds):
		return "insufficient_funds", http.StatusPaymentRequired
	case errors.Is(err, market.ErrOutOfSeasonWindow):
		return "out_of_season_window", http.StatusConflict
	case errors.Is(err, market.ErrNotOwner):
		return "not_owner", http.StatusForbidden
	case errors.Is(err, market.ErrAlreadyOpened):
		return "already_opened", http.StatusConflict
	case errors.Is(err, market.ErrAlreadyRequested):
		return "already_requested", http.StatusConflict
	case errors.Is(err, market.ErrNotYetOpened):
		return "not_yet_opened", http.StatusConflict
	case errors.Is(err, market.ErrNotYetUnlocked):
		return "not_yet_unlocked", http.StatusConflict
	case errors.Is(err, market.ErrAlreadyClaimed):
		return "already_claimed", http.StatusConflict
	case errors.Is(err, market.ErrAlreadyPurchased):
		return "already_purchased", http.StatusConflict
	case errors.Is(err, market.ErrAlreadyInitialized):
		return "already_initialized", http.StatusConflict
	case errors.Is(err, market.ErrSequenceExhausted):
		return "sequence_exhausted", http.StatusConflict
	case errors.Is(err, rng.ErrUnknownCorrelation):
		return "unknown_correlation", http.StatusNotFound
	case errors.Is(err, rng.ErrAlreadyFulfilled):
		return "already_fulfilled", http.StatusConflict
	case errors.Is(err, rng.ErrVerificationFailed):
		return "verification_failed", http.StatusForbidden
	case errors.Is(err, rng.ErrInvalidRequest), errors.Is(err, rng.ErrCountTooLarge):
		return "invalid_argument", http.StatusBadRequest
	}
	return "internal", http.StatusInternalServerError
}
