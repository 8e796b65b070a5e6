// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/okian/paddock/internal/adapters/repository"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/ranking"
	"github.com/okian/paddock/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Default candidate limits, used when the caller passes no Option.
const (
	DefaultCandidateLimit = 10
	MaxCandidateLimit     = 50
)

// Ranker produces candidate lists and single-listing explanations.
type Ranker interface {
	Rank(ctx context.Context, riderID string, limit int) ([]ranking.Ranked, error)
	Explain(ctx context.Context, riderID, listingID string) (ranking.Explanation, error)
}

// Ledger records interest from both sides and lists the outcome.
type Ledger interface {
	RegisterLike(ctx context.Context, fromUser, listingID string) (model.Like, *model.MutualMatch, error)
	RegisterOwnerInterest(ctx context.Context, ownerID, riderID, listingID string) (model.OwnerInterest, *model.MutualMatch, error)
	Likes(ctx context.Context, userID string) ([]model.Like, error)
	Matches(ctx context.Context, userID string) ([]model.MutualMatch, error)
}

// Profiles applies partial profile updates.
type Profiles interface {
	PatchRiderProfile(ctx context.Context, userID string, patch model.RiderProfilePatch) (*model.RiderProfile, error)
	PatchOwnerProfile(ctx context.Context, userID string, patch model.OwnerProfilePatch) (*model.OwnerProfile, error)
}

// StatsProvider reports store contents.
type StatsProvider interface {
	Counts(ctx context.Context) (repository.Counts, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Ranker
	Ledger
	Profiles
	StatsProvider
}

// Option configures a Server.
type Option func(*Server)

// WithCandidateLimits sets the default and maximum ?limit of
// GET /v1/candidates.
func WithCandidateLimits(def, maxLimit int) Option {
	return func(s *Server) {
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
		if def > 0 {
			s.defaultLimit = def
		}
	}
}

// WithRateLimiter limits POST /v1/likes per user.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) {
		s.likeLimiter = rl
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps         Dependencies
	defaultLimit int
	maxLimit     int
	likeLimiter  *RateLimiter
	log          logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		defaultLimit:  DefaultCandidateLimit,
		maxLimit:      MaxCandidateLimit,
		log:           logger.Nop(),
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /v1/candidates", MetricsMiddleware(RequireUser(s.handleCandidates), "candidates"))
	mux.HandleFunc("GET /v1/candidates/{listing_id}/score", MetricsMiddleware(RequireUser(s.handleCandidateScore), "candidate_score"))
	mux.HandleFunc("POST /v1/likes", MetricsMiddleware(RequireUser(s.handlePostLike), "likes"))
	mux.HandleFunc("GET /v1/likes", MetricsMiddleware(RequireUser(s.handleListLikes), "likes"))
	mux.HandleFunc("POST /v1/owner-interests", MetricsMiddleware(RequireUser(s.handlePostOwnerInterest), "owner_interests"))
	mux.HandleFunc("GET /v1/matches", MetricsMiddleware(RequireUser(s.handleMatches), "matches"))
	mux.HandleFunc("PATCH /v1/profiles/rider", MetricsMiddleware(RequireUser(s.handlePatchRider), "profiles_rider"))
	mux.HandleFunc("PATCH /v1/profiles/owner", MetricsMiddleware(RequireUser(s.handlePatchOwner), "profiles_owner"))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil && status < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes err with the status its kind maps to.
func fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// fail logs server-side failures before writing them.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := classify(err); status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err))
	}
	fail(w, err)
}

// decode reads a JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
