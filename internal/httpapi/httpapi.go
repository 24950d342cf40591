package httpapi

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/ledger"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/logging"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/service"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/sheetsync"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/store"
)

type Options struct {
	AllowedOrigin     string
	AllowRegistration bool
	Logger            logrus.FieldLogger
}

type API struct {
	service           *service.Service
	auth              *AuthManager
	allowedOrigin     string
	allowRegistration bool
	loginLimiter      *attemptLimiter
	registerLimiter   *attemptLimiter
	csrfSecret        []byte
	log               logrus.FieldLogger
}

func New(svc *service.Service, auth *AuthManager, opts Options) *API {
	csrfSecret := make([]byte, 32)
	if _, err := rand.Read(csrfSecret); err != nil {
		panic(fmt.Sprintf("httpapi: read csrf secret: %v", err))
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &API{
		service:           svc,
		auth:              auth,
		allowedOrigin:     opts.AllowedOrigin,
		allowRegistration: opts.AllowRegistration,
		loginLimiter:      newAttemptLimiter(5, time.Minute),
		registerLimiter:   newAttemptLimiter(5, time.Minute),
		csrfSecret:        csrfSecret,
		log:               opts.Logger.WithField("component", "httpapi"),
	}
}

// csrfTokenForHour computes an HMAC-SHA256 token for the given hour bucket
// (expressed as Unix time truncated to the hour). The token is hex-encoded.
func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

func (a *API) generateCSRFToken() string {
	bucket := time.Now().UTC().Truncate(time.Hour).Unix()
	return a.csrfTokenForHour(bucket)
}

// validateCSRFToken accepts the current and the previous hour bucket.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	currentBucket := time.Now().UTC().Truncate(time.Hour).Unix()
	prevBucket := currentBucket - 3600

	return hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(currentBucket))) ||
		hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(prevBucket)))
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)
	mux.HandleFunc("/api/v1/auth/register", a.handleRegister)
	mux.HandleFunc("/api/v1/auth/csrf-token", a.handleCSRFToken)

	mux.HandleFunc("/api/v1/customers", a.requireAuth(a.handleCustomers))
	mux.HandleFunc("/api/v1/customers/", a.requireAuth(a.handleCustomerActions))
	mux.HandleFunc("/api/v1/products", a.requireAuth(a.handleProducts))
	mux.HandleFunc("/api/v1/products/", a.requireAuth(a.handleProductActions))
	mux.HandleFunc("/api/v1/orders", a.requireAuth(a.handleOrders))
	mux.HandleFunc("/api/v1/orders/", a.requireAuth(a.handleOrderActions))
	mux.HandleFunc("/api/v1/daily-summaries", a.requireAuth(a.handleDailySummaries))
	mux.HandleFunc("/api/v1/daily-summaries/", a.requireAuth(a.handleDayActions))
	mux.HandleFunc("/api/v1/payments", a.requireAuth(a.handlePayments))
	mux.HandleFunc("/api/v1/statements", a.requireAuth(a.handleStatements))
	mux.HandleFunc("/api/v1/boxes", a.requireAuth(a.handleBoxes))
	mux.HandleFunc("/api/v1/sync/sheet", a.requireAuth(a.handleSheetSync))
	mux.HandleFunc("/api/v1/audit-logs", a.requireAuth(a.handleAuditLogs))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			a.writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			a.writeError(w, http.StatusUnauthorized, err)
			return
		}
		if actor.Role != domain.RoleOwner {
			a.writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		a.writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		a.writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeMethodNotAllowed(w)
		return
	}
	if !a.allowRegistration {
		a.writeError(w, http.StatusForbidden, ErrRegistrationClosed)
		return
	}
	if !a.registerLimiter.Allow(clientKey(r)) {
		a.writeError(w, http.StatusTooManyRequests, errors.New("too many registration attempts"))
		return
	}

	var req domain.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	account, err := a.auth.Register(r.Context(), req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	a.log.WithField("owner", account.Username).Info("account registered")
	writeJSON(w, http.StatusCreated, map[string]any{"account": account})
}

// handleCSRFToken returns a stateless CSRF token valid for the current hour bucket.
// Clients send it in the X-CSRF-Token header on every mutating request.
func (a *API) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"csrf_token": a.generateCSRFToken(),
	})
}

// csrfExemptPaths are called before a client has fetched a CSRF token.
var csrfExemptPaths = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/register",
}

// checkCSRF enforces the CSRF token on state-changing methods.
func (a *API) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return true
	}
	for _, exempt := range csrfExemptPaths {
		if r.URL.Path == exempt {
			return true
		}
	}
	token := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
	if !a.validateCSRFToken(token) {
		a.writeError(w, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
		return false
	}
	return true
}

// statusRecorder keeps the status code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if !a.checkCSRF(w, r) {
			return
		}

		startedAt := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(startedAt).String(),
		}).Info("request")
	})
}

// statusFor maps service and store errors onto HTTP status codes.
func statusFor(err error) int {
	var overpayment *ledger.OverpaymentError
	var syncErr *sheetsync.SyncError
	switch {
	case errors.As(err, &overpayment):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrInvalidInput),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, ledger.ErrNoOrders):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, sheetsync.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &syncErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status. Overpayments and sheet sync
// failures carry the details a client needs to react.
func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	var overpayment *ledger.OverpaymentError
	if errors.As(err, &overpayment) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":       err.Error(),
			"code":        "overpayment_unconfirmed",
			"outstanding": overpayment.Outstanding,
			"excess":      overpayment.Excess,
		})
		return
	}

	var syncErr *sheetsync.SyncError
	if errors.As(err, &syncErr) {
		a.log.WithFields(logrus.Fields{
			"kind":   syncErr.Kind,
			"status": syncErr.StatusCode,
		}).WithError(err).Warn("sheet sync failed")
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":         "sheet sync failed",
			"kind":          syncErr.Kind,
			"hint":          syncErr.Hint,
			"remote_status": syncErr.StatusCode,
		})
		return
	}

	a.writeError(w, statusFor(err), err)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func (a *API) writeMethodNotAllowed(w http.ResponseWriter) {
	a.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

// writeError returns the error message for 4xx responses. 5xx bodies stay generic and
// the cause goes to the log.
func (a *API) writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		a.log.WithField("status", status).WithError(err).Error("internal error")
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
