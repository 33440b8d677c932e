package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/recaudoseguro/recaudo-api/internal/lending"
	"github.com/recaudoseguro/recaudo-api/internal/models"
	"github.com/recaudoseguro/recaudo-api/internal/repository"
	"github.com/recaudoseguro/recaudo-api/pkg/logger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// RouteService builds the daily collection route of a collector. It only
// reads, so it tolerates data changing while it runs.
type RouteService struct {
	repos       *repository.Repositories
	concurrency int
	now         func() time.Time
}

func NewRouteService(repos *repository.Repositories, concurrency int, loc *time.Location) *RouteService {
	if concurrency < 1 {
		concurrency = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RouteService{
		repos:       repos,
		concurrency: concurrency,
		now:         func() time.Time { return time.Now().In(loc) },
	}
}

// BuildPaymentRoute returns the collector's visits from window.From to
// window.Until, grouped by due date, overdue visits first.
func (s *RouteService) BuildPaymentRoute(ctx context.Context, actor Actor, collectorID uint, window lending.RouteWindow) (*lending.Route, error) {
	collector, err := s.repos.User.FindByID(ctx, collectorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("cobrador")
	}
	if err != nil {
		return nil, err
	}
	if !collector.IsCollector() {
		return nil, newError(KindValidation, "el usuario indicado no es un cobrador")
	}
	if !actor.CanViewCollector(collector) {
		return nil, ErrForbidden
	}
	if !window.From.IsZero() && !window.Until.IsZero() && window.Until.Before(window.From) {
		return nil, newError(KindValidation, "la fecha final de la ruta es anterior a la inicial")
	}

	credits, err := s.repos.Credit.FindOpenByCollector(ctx, collectorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credits: %w", err)
	}

	inputs, err := s.gather(ctx, credits)
	if err != nil {
		return nil, err
	}

	route := lending.BuildRoute(inputs, window, s.now())
	logger.FromContext(ctx).Debug("route built",
		slog.Uint64("collector_id", uint64(collectorID)),
		slog.Int("credits", len(credits)),
		slog.Int("entries", route.TotalEntries))
	return &route, nil
}

// gather loads payments and provider settings for every credit, fanning out
// at most s.concurrency queries at a time.
func (s *RouteService) gather(ctx context.Context, credits []models.Credit) ([]lending.RouteInput, error) {
	payments := make([][]models.Payment, len(credits))
	settings := make(map[uint]*models.ProviderSettings)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	providers := make(map[uint]struct{})
	for _, c := range credits {
		providers[c.ProviderID] = struct{}{}
	}
	for providerID := range providers {
		g.Go(func() error {
			st, err := s.repos.Settings.FindByProvider(gctx, providerID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load settings of provider %d: %w", providerID, err)
			}
			mu.Lock()
			settings[providerID] = st
			mu.Unlock()
			return nil
		})
	}
	for i := range credits {
		g.Go(func() error {
			ps, err := s.repos.Payment.FindByCredit(gctx, credits[i].ID)
			if err != nil {
				return fmt.Errorf("failed to load payments of credit %d: %w", credits[i].ID, err)
			}
			payments[i] = ps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inputs := make([]lending.RouteInput, len(credits))
	for i, c := range credits {
		inputs[i] = lending.RouteInput{
			Credit:       c,
			ClientName:   c.Client.FullName,
			ClientPhone:  c.Client.Phone,
			Address:      c.Client.Address,
			Payments:     payments[i],
			LateInterest: lending.LateInterestOf(settings[c.ProviderID]),
		}
	}
	return inputs, nil
}
