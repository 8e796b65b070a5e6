// Package preview implements the rank-preview tool: it prints the candidate
// lists the engine produces, in-process or against a running server.
package preview

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/okian/paddock/internal/adapters/repository"
	service "github.com/okian/paddock/internal/app"
	"github.com/okian/paddock/internal/config"
	"github.com/okian/paddock/internal/domain/distance"
	"github.com/okian/paddock/internal/domain/ranking"
	"github.com/okian/paddock/internal/fixtures"
	"github.com/okian/paddock/pkg/logger"
)

// source produces rows for one rider.
type source interface {
	Rank(ctx context.Context, rider string, limit int) ([]Row, error)
	Explain(ctx context.Context, rider, listingID string) (Explanation, error)
	Close()
}

// Run executes one preview and writes the result to w.
func Run(ctx context.Context, cfg *Config, w io.Writer) error {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	logger.Get().Info(ctx, "starting rank preview",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("fixtures", cfg.Fixtures),
		logger.Int("riders", len(cfg.Riders)),
		logger.Int("limit", cfg.Limit),
		logger.String("strategy", cfg.Strategy),
	)

	src, riders, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()
	if len(riders) == 0 {
		return ErrNoRiders
	}

	if cfg.Explain != "" {
		out := make([]Explanation, 0, len(riders))
		for _, rider := range riders {
			exp, err := src.Explain(ctx, rider, cfg.Explain)
			if err != nil {
				return fmt.Errorf("explain %s for %s: %w", cfg.Explain, rider, err)
			}
			out = append(out, exp)
		}
		return renderExplanations(w, cfg.JSON, out)
	}

	rows := make([]Row, 0, len(riders)*cfg.Limit)
	for _, rider := range riders {
		r, err := src.Rank(ctx, rider, cfg.Limit)
		if err != nil {
			return fmt.Errorf("rank %s: %w", rider, err)
		}
		rows = append(rows, r...)
	}
	return renderRows(w, cfg.JSON, rows)
}

func open(ctx context.Context, cfg *Config) (source, []string, error) {
	if cfg.BaseURL != "" {
		return newRemote(cfg.BaseURL, cfg.Timeout), cfg.Riders, nil
	}
	return newLocal(ctx, cfg)
}

// local runs the engine in-process over a memory store seeded from
// the fixture catalog.
type local struct {
	svc *service.Service
}

func newLocal(ctx context.Context, cfg *Config) (*local, []string, error) {
	appCfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	appCfg.Store = config.StoreConfig{Driver: config.DriverMemory}
	if cfg.Strategy != "" {
		appCfg.Scoring.Strategy = cfg.Strategy
	}

	path := cfg.Fixtures
	if path == "" {
		path = DefaultFixtures
	}
	cat, err := fixtures.Load(path)
	if err != nil {
		return nil, nil, err
	}
	store := repository.NewMemoryStore()
	if err := cat.Apply(ctx, store, time.Now()); err != nil {
		return nil, nil, err
	}

	svc := service.New(
		service.WithConfig(appCfg),
		service.WithStore(store),
		service.WithLogger(logger.Get().Named("preview")),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, nil, err
	}

	riders := cfg.Riders
	if len(riders) == 0 {
		for _, r := range cat.Riders {
			riders = append(riders, r.UserID)
		}
	}
	return &local{svc: svc}, riders, nil
}

func (l *local) Rank(ctx context.Context, rider string, limit int) ([]Row, error) {
	ranked, err := l.svc.Rank(ctx, rider, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(ranked))
	for i, r := range ranked {
		rows = append(rows, toRow(rider, i+1, r))
	}
	return rows, nil
}

func (l *local) Explain(ctx context.Context, rider, listingID string) (Explanation, error) {
	exp, err := l.svc.Explain(ctx, rider, listingID)
	if err != nil {
		return Explanation{}, err
	}
	out := Explanation{
		Rider:      rider,
		ListingID:  exp.ListingID,
		Eligible:   exp.Verdict.Passed,
		Rule:       exp.Verdict.Rule,
		Reason:     exp.Verdict.Reason,
		DistanceKm: km(exp.Distance),
		Strategy:   exp.Score.Strategy,
		Score:      exp.Score.Total,
	}
	if exp.Verdict.Passed {
		out.Components = exp.Score.Components
	}
	return out, nil
}

func (l *local) Close() {
	l.svc.Stop()
}

func toRow(rider string, rank int, r ranking.Ranked) Row {
	return Row{
		Rider:      rider,
		Rank:       rank,
		ListingID:  r.Listing.ID,
		HorseName:  r.Horse.Name,
		OwnerName:  r.Owner.DisplayName,
		Location:   r.Owner.LocationCode,
		MatchScore: r.Score.Total,
		DistanceKm: km(r.Distance),
	}
}

func km(d distance.Result) *float64 {
	if !d.Known {
		return nil
	}
	v := d.Km
	return &v
}
