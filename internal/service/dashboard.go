package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/target/residence-console/internal/domain/resource"
	"github.com/target/residence-console/internal/ports"
)

const defaultCountConcurrency = 4

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Clients ports.ResourceClientFactory
	// Concurrency bounds parallel fetches; defaults to 4.
	Concurrency int
	Logger      *slog.Logger
}

// DashboardService builds the home screen cards.
type DashboardService struct {
	clients     ports.ResourceClientFactory
	concurrency int
	logger      *slog.Logger
}

// NewDashboardService constructs a new DashboardService.
func NewDashboardService(opts DashboardServiceOptions) *DashboardService {
	n := opts.Concurrency
	if n <= 0 {
		n = defaultCountConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		clients:     opts.Clients,
		concurrency: n,
		logger:      logger.With("component", "dashboard_service"),
	}
}

// Card is one home screen tile.
type Card struct {
	Definition resource.Definition
	Count      int
	// Err is set when the count could not be fetched; the card still renders.
	Err error
}

// Available reports whether Count is meaningful.
func (c Card) Available() bool { return c.Err == nil }

// Cards fetches record counts for defs concurrently, preserving order.
// A failing fetch marks only its own card.
func (s *DashboardService) Cards(ctx context.Context, defs []resource.Definition) []Card {
	cards := make([]Card, len(defs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, def := range defs {
		cards[i].Definition = def
		g.Go(func() error {
			recs, err := s.clients.For(def).ListAll(gctx)
			if err != nil {
				s.logger.WarnContext(gctx, "count fetch failed", "resource", def.Key, "error", err)
				cards[i].Err = err
				return nil
			}
			cards[i].Count = len(recs)
			return nil
		})
	}
	_ = g.Wait()
	return cards
}
