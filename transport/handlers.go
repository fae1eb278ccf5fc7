package transport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"storefront/fixtures"
	"storefront/pkg/domain/model"
)

type Options struct {
	// FixturesPath, when set, receives a snapshot after every change.
	FixturesPath string
	// RequestsPerSecond per remote address; zero disables throttling.
	RequestsPerSecond float64
	Burst             int
}

type Handler struct {
	backend      *Backend
	fixturesPath string
	saveMu       sync.Mutex
}

func Router(backend *Backend, opts Options) http.Handler {
	handler := &Handler{backend: backend, fixturesPath: opts.FixturesPath}

	r := mux.NewRouter()
	r.HandleFunc("/login", handler.login).Methods(http.MethodPost)
	r.HandleFunc("/register", handler.register).Methods(http.MethodPost)
	r.HandleFunc("/user", handler.profile).Methods(http.MethodGet)
	r.HandleFunc("/preference", handler.preferences).Methods(http.MethodGet)
	r.HandleFunc("/wishlist", handler.wishlist).Methods(http.MethodGet)
	r.HandleFunc("/wishlist", handler.toggleWishlist).Methods(http.MethodPost)
	r.HandleFunc("/api", handler.catalog).Methods(http.MethodGet)

	var h http.Handler = r
	if opts.RequestsPerSecond > 0 {
		h = newRateLimiter(opts.RequestsPerSecond, opts.Burst).middleware(h)
	}
	return logMiddleware(h)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	if err := h.backend.Authenticate(body.Username, body.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.WithField("username", body.Username).Info("rejected login")
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		log.WithError(err).Error("failed to authenticate")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FormData model.RegistrationForm `json:"formData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	err := h.backend.Register(body.FormData)
	switch {
	case errors.Is(err, ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "Username already exists")
		return
	case errors.Is(err, ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	case err != nil:
		log.WithError(err).Error("failed to register user")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.WithField("username", body.FormData.Username).Info("registered user")
	h.persist()
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.backend.Profile(r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) preferences(w http.ResponseWriter, r *http.Request) {
	items, err := h.backend.Preferences(r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) wishlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.backend.Wishlist(r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CoffeeID model.ItemID         `json:"coffeeId"`
		Username string               `json:"username"`
		Action   model.WishlistAction `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	err := h.backend.ToggleWishlist(body.Username, body.CoffeeID, body.Action)
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrCoffeeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, ErrInvalidAction):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.WithError(err).Error("failed to update wishlist")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.WithFields(log.Fields{
		"username": body.Username,
		"coffee":   body.CoffeeID,
		"action":   body.Action,
	}).Info("updated wishlist")
	h.persist()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Wishlist updated"})
}

func (h *Handler) catalog(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	writeJSON(w, http.StatusOK, h.backend.Catalog(limit))
}

func (h *Handler) persist() {
	if h.fixturesPath == "" {
		return
	}
	h.saveMu.Lock()
	defer h.saveMu.Unlock()
	if err := fixtures.Save(h.fixturesPath, h.backend.Snapshot()); err != nil {
		log.WithError(err).Error("Failed to save fixtures")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(b); err != nil {
		log.WithField("err", err).Error("write response status")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newRateLimiter(requestsPerSecond float64, burst int) *rateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (rl *rateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

func (rl *rateLimiter) middleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter(r.RemoteAddr).Allow() {
			log.WithField("remoteAddr", r.RemoteAddr).Warn("rate limit exceeded")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		h.ServeHTTP(w, r)
	})
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}
