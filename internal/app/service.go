// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/paddock/internal/adapters/repository"
	"github.com/okian/paddock/internal/adapters/repository/sqlstore"
	"github.com/okian/paddock/internal/config"
	"github.com/okian/paddock/internal/domain/distance"
	"github.com/okian/paddock/internal/domain/eligibility"
	"github.com/okian/paddock/internal/domain/ledger"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/ranking"
	"github.com/okian/paddock/internal/domain/scoring"
	"github.com/okian/paddock/internal/fixtures"
	"github.com/okian/paddock/pkg/logger"
)

// Service implements the API dependencies for the matching engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	ranker   *ranking.Ranker
	ledger   *ledger.Ledger
	strategy scoring.Strategy
	distance distance.Provider

	// Configuration
	cfg       *config.Config
	ownsStore bool
	now       func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the configuration the service is built from.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithStore injects a store instead of opening the configured one. The
// caller keeps ownership and closes it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithClock overrides the time source used for ages, recency and record
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:    config.New(context.Background()),
		now:    time.Now,
		logger: nil, // replaced on Start
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store, loads fixtures and builds the engine.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	cfg := s.cfg

	s.logger.Info(ctx, "starting matching service...")

	if s.store == nil {
		store, err := openStore(ctx, cfg.Store, s.logger.Named("store"))
		if err != nil {
			return err
		}
		s.store = store
		s.ownsStore = true
	}
	if err := s.build(ctx); err != nil {
		s.closeStore(ctx)
		return err
	}

	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.String("store", cfg.Store.Driver),
		logger.String("distance", cfg.Distance.Provider),
		logger.String("strategy", s.strategy.Name()),
		logger.Float64("minScore", cfg.MinScore),
	)
	return nil
}

func (s *Service) build(ctx context.Context) error {
	cfg := s.cfg

	if path := cfg.Store.Fixtures; path != "" {
		cat, err := fixtures.Load(path)
		if err != nil {
			return err
		}
		if err := cat.Apply(ctx, s.store, s.now()); err != nil {
			return fmt.Errorf("apply fixtures: %w", err)
		}
		s.logger.Info(ctx, "fixtures loaded",
			logger.String("path", path),
			logger.Int("listings", len(cat.Listings)),
		)
	}

	dist, err := newDistance(cfg.Distance, s.logger.Named("distance"))
	if err != nil {
		return err
	}
	s.distance = dist

	strategy, err := scoring.New(cfg.Scoring.Strategy,
		scoring.WithConfig(cfg.Scoring.Weights()),
		scoring.WithClock(s.now),
	)
	if err != nil {
		return err
	}
	s.strategy = strategy

	s.ranker = ranking.New(s.store, s.store,
		ranking.WithFilter(eligibility.NewFilter(eligibility.WithClock(s.now))),
		ranking.WithStrategy(strategy),
		ranking.WithDistance(dist),
		ranking.WithMinScore(cfg.MinScore),
		ranking.WithLogger(s.logger.Named("ranking")),
	)
	s.ledger = ledger.New(s.store, s.store,
		ledger.WithStrategy(strategy),
		ledger.WithDistance(dist),
		ledger.WithClock(s.now),
		ledger.WithLogger(s.logger.Named("ledger")),
	)
	return nil
}

// Stop releases the store if the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping matching service...")
	s.closeStore(ctx)
	s.started = false
	s.logger.Info(ctx, "matching service stopped")
}

func (s *Service) closeStore(ctx context.Context) {
	if !s.ownsStore || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "store close failed", logger.Error(err))
	}
	s.store = nil
	s.ownsStore = false
}

func openStore(ctx context.Context, cfg config.StoreConfig, lg logger.Logger) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return repository.NewMemoryStore(), nil
	case config.DriverSQLite:
		return sqlstore.Open(ctx, sqlstore.DriverSQLite, cfg.DSN, sqlstore.WithLogger(lg))
	case config.DriverPostgres:
		return sqlstore.Open(ctx, sqlstore.DriverPostgres, cfg.DSN, sqlstore.WithLogger(lg))
	default:
		return nil, fmt.Errorf("%w: store driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}

func newDistance(cfg config.DistanceConfig, lg logger.Logger) (distance.Provider, error) {
	var base distance.Provider
	switch cfg.Provider {
	case config.DistanceTable:
		t, err := distance.NewTable(cfg.Table)
		if err != nil {
			return nil, err
		}
		base = t
	default:
		base = distance.Constant(cfg.ConstantKm)
	}
	return distance.NewGuarded(base,
		distance.WithTimeout(cfg.Timeout()),
		distance.WithBreaker(cfg.BreakerFailures, cfg.BreakerCooldown()),
		distance.WithLogger(lg),
	), nil
}

// engine returns the started components or ErrNotStarted.
func (s *Service) engine() (*ranking.Ranker, *ledger.Ledger, repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, nil, ErrNotStarted
	}
	return s.ranker, s.ledger, s.store, nil
}

// Rank returns the top candidates for riderID.
func (s *Service) Rank(ctx context.Context, riderID string, limit int) ([]ranking.Ranked, error) {
	r, _, _, err := s.engine()
	if err != nil {
		return nil, err
	}
	return r.Rank(ctx, riderID, limit)
}

// Explain evaluates one listing for riderID.
func (s *Service) Explain(ctx context.Context, riderID, listingID string) (ranking.Explanation, error) {
	r, _, _, err := s.engine()
	if err != nil {
		return ranking.Explanation{}, err
	}
	return r.Explain(ctx, riderID, listingID)
}

// RegisterLike records a rider like.
func (s *Service) RegisterLike(ctx context.Context, fromUser, listingID string) (model.Like, *model.MutualMatch, error) {
	_, l, _, err := s.engine()
	if err != nil {
		return model.Like{}, nil, err
	}
	return l.RegisterLike(ctx, fromUser, listingID)
}

// RegisterOwnerInterest records an owner's interest in a rider.
func (s *Service) RegisterOwnerInterest(ctx context.Context, ownerID, riderID, listingID string) (model.OwnerInterest, *model.MutualMatch, error) {
	_, l, _, err := s.engine()
	if err != nil {
		return model.OwnerInterest{}, nil, err
	}
	return l.RegisterOwnerInterest(ctx, ownerID, riderID, listingID)
}

// Likes lists the likes userID gave.
func (s *Service) Likes(ctx context.Context, userID string) ([]model.Like, error) {
	_, l, _, err := s.engine()
	if err != nil {
		return nil, err
	}
	return l.Likes(ctx, userID)
}

// Matches lists the matches userID takes part in.
func (s *Service) Matches(ctx context.Context, userID string) ([]model.MutualMatch, error) {
	_, l, _, err := s.engine()
	if err != nil {
		return nil, err
	}
	return l.Matches(ctx, userID)
}

// PatchRiderProfile applies a partial rider profile update.
func (s *Service) PatchRiderProfile(ctx context.Context, userID string, patch model.RiderProfilePatch) (*model.RiderProfile, error) {
	_, _, store, err := s.engine()
	if err != nil {
		return nil, err
	}
	return store.PatchRiderProfile(ctx, userID, patch)
}

// PatchOwnerProfile applies a partial owner profile update.
func (s *Service) PatchOwnerProfile(ctx context.Context, userID string, patch model.OwnerProfilePatch) (*model.OwnerProfile, error) {
	_, _, store, err := s.engine()
	if err != nil {
		return nil, err
	}
	return store.PatchOwnerProfile(ctx, userID, patch)
}

// Counts returns store record counts for monitoring.
func (s *Service) Counts(ctx context.Context) (repository.Counts, error) {
	_, _, store, err := s.engine()
	if err != nil {
		return repository.Counts{}, err
	}
	return store.Counts(ctx)
}

// StrategyName reports the active scoring strategy, or "" before Start.
func (s *Service) StrategyName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.strategy == nil {
		return ""
	}
	return s.strategy.Name()
}
