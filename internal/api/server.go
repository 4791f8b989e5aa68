// Package api exposes the wheel service over HTTP: prize list CRUD, draw
// history, server-side spin simulation, and a live websocket wheel session.
package api

import (
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shij-yuan/lucky-draw/internal/store"
)

// ServiceVersion identifies the wheel service build.
const ServiceVersion = "1.2.0"

// Config holds API-level settings.
type Config struct {
	// WheelCenterX, WheelCenterY and WheelRadius define the gesture
	// coordinate space used by live wheel sessions. Clients send pointer
	// positions in this space.
	WheelCenterX float64
	WheelCenterY float64
	WheelRadius  float64

	// HistoryPageSize is the default page size for draw history listings.
	HistoryPageSize int

	// Rand overrides the source used to pick release velocities and seed the
	// wheel's perturbation. Defaults to a time-seeded source.
	Rand *rand.Rand
}

// Server handles HTTP requests.
type Server struct {
	db        store.Store
	cfg       Config
	logger    *log.Logger
	startTime time.Time

	// rand seeds per-spin sources and is shared across handler goroutines;
	// math/rand sources are not thread-safe, so it is only touched under randMu.
	randMu sync.Mutex
	rand   *rand.Rand
}

// newRand derives an independent random source for one spin or live session.
// Each wheel gets its own source so concurrent handlers never share one.
func (s *Server) newRand() *rand.Rand {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return rand.New(rand.NewSource(s.rand.Int63()))
}

// NewServer creates a new API server on top of the given store.
func NewServer(db store.Store, cfg Config) *Server {
	if cfg.WheelRadius <= 0 {
		cfg.WheelRadius = 160
	}
	if cfg.HistoryPageSize <= 0 {
		cfg.HistoryPageSize = 50
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Server{
		db:        db,
		cfg:       cfg,
		logger:    log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile),
		rand:      rng,
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for the browser widget
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/prizes", s.handleListPrizes)
		r.Put("/prizes", s.handleReplacePrizes)
		r.Post("/prizes/reset", s.handleResetPrizes)

		r.Get("/draws", s.handleListDraws)
		r.Delete("/draws", s.handleClearDraws)

		r.Post("/spin", s.handleSpin)
		r.Get("/spin/live", s.handleSpinLive)
	})

	return r
}

// writeJSON writes a JSON response with proper headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Service-Version", ServiceVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeError writes a structured error response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string, context map[string]interface{}) {
	requestID := middleware.GetReqID(r.Context())

	s.logger.Printf(
		"error_occurred type=%s status=%d request_id=%s path=%s message=%q",
		errType, status, requestID, r.URL.Path, message,
	)

	s.writeJSON(w, status, ServiceError{
		Type:      errType,
		Message:   message,
		Context:   context,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleHealth reports liveness and component checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := map[string]string{"database": "ok"}

	if _, err := s.db.ListPrizes(); err != nil {
		status = "degraded"
		checks["database"] = err.Error()
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	s.writeJSON(w, code, map[string]interface{}{
		"status":          status,
		"checks":          checks,
		"service_version": ServiceVersion,
		"uptime":          time.Since(s.startTime).String(),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
