package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/cache"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/planning"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ErrSkuNotFound is returned when a SKU id is not part of the evaluation.
var ErrSkuNotFound = errors.New("sku not found")

// SkuFilter narrows the per-SKU listing. Empty fields match everything.
type SkuFilter struct {
	Status   domain.StockStatus
	Supplier string
	Category string
	ABC      domain.ABCClass
	XYZ      domain.XYZClass
}

type PlanningService struct {
	engine *planning.Engine
	repo   repository.SnapshotRepository
	cache  cache.EvaluationCache
	group  singleflight.Group
}

func NewPlanningService(engine *planning.Engine, repo repository.SnapshotRepository, cacheImpl cache.EvaluationCache) *PlanningService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopEvaluationCache()
	}
	return &PlanningService{engine: engine, repo: repo, cache: cacheImpl}
}

// Evaluate returns the evaluation of snapshot, reusing the memoized result
// when the same snapshot was evaluated before. Concurrent calls for one
// snapshot share a single engine run.
func (s *PlanningService) Evaluate(ctx context.Context, snapshot domain.Snapshot) (*domain.Evaluation, error) {
	fingerprint, err := planning.Fingerprint(snapshot, s.engine.Config())
	if err != nil {
		return nil, err
	}

	if eval, ok, err := s.cache.Get(ctx, fingerprint); err == nil && ok {
		return eval, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("planning: cache get evaluation failed")
	}

	// The shared run outlives any single caller; each caller still stops
	// waiting when its own ctx ends.
	runCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(fingerprint, func() (interface{}, error) {
		eval, err := s.engine.Evaluate(runCtx, snapshot)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(runCtx, eval); err != nil {
			log.Warn().Err(err).Msg("planning: cache set evaluation failed")
		}
		return eval, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debug().Str("fingerprint", fingerprint).Msg("planning: shared in-flight evaluation")
		}
		return res.Val.(*domain.Evaluation), nil
	}
}

// Current evaluates the snapshot held by the repository.
func (s *PlanningService) Current(ctx context.Context) (*domain.Evaluation, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no snapshot source configured: %w", repository.ErrSnapshotNotFound)
	}
	snapshot, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Evaluate(ctx, snapshot)
}

// ReplaceSnapshot stores a new snapshot and drops every memoized evaluation.
func (s *PlanningService) ReplaceSnapshot(ctx context.Context, snapshot domain.Snapshot) (*domain.Evaluation, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no snapshot source configured: %w", repository.ErrSnapshotNotFound)
	}
	if err := s.repo.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("planning: cache invalidate failed")
	}
	return s.Evaluate(ctx, snapshot)
}

func (s *PlanningService) ListSkus(ctx context.Context, filter SkuFilter) ([]domain.SkuMetrics, error) {
	eval, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return FilterSkus(eval.Skus, filter), nil
}

func (s *PlanningService) GetSku(ctx context.Context, id string) (domain.SkuMetrics, error) {
	eval, err := s.Current(ctx)
	if err != nil {
		return domain.SkuMetrics{}, err
	}
	m, ok := eval.Sku(id)
	if !ok {
		return domain.SkuMetrics{}, fmt.Errorf("%s: %w", id, ErrSkuNotFound)
	}
	return m, nil
}

func (s *PlanningService) Replenishment(ctx context.Context, supplier string) (domain.ReplenishmentPlan, error) {
	eval, err := s.Current(ctx)
	if err != nil {
		return domain.ReplenishmentPlan{}, err
	}
	return planning.FilterPlanBySupplier(eval.Replenishment, supplier), nil
}

func (s *PlanningService) Suppliers(ctx context.Context) ([]domain.SupplierRollup, error) {
	eval, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return eval.Suppliers, nil
}

func (s *PlanningService) Segmentation(ctx context.Context) (domain.SegmentationMatrix, error) {
	eval, err := s.Current(ctx)
	if err != nil {
		return domain.SegmentationMatrix{}, err
	}
	return eval.Segmentation, nil
}

// Alerts returns the feed, optionally narrowed to one category. Loss totals
// always describe the whole feed.
func (s *PlanningService) Alerts(ctx context.Context, category domain.AlertCategory) (domain.AlertFeed, error) {
	eval, err := s.Current(ctx)
	if err != nil {
		return domain.AlertFeed{}, err
	}
	feed := eval.Alerts
	feed.Alerts = planning.FilterAlerts(feed.Alerts, category)
	return feed, nil
}

func (s *PlanningService) Overview(ctx context.Context) (domain.Overview, error) {
	eval, err := s.Current(ctx)
	if err != nil {
		return domain.Overview{}, err
	}
	return eval.Overview, nil
}

// FilterSkus keeps the SKUs matching every set field of filter.
func FilterSkus(skus []domain.SkuMetrics, filter SkuFilter) []domain.SkuMetrics {
	filtered := make([]domain.SkuMetrics, 0, len(skus))
	for _, m := range skus {
		if filter.Status != "" && m.Policy.Status != filter.Status {
			continue
		}
		if filter.Supplier != "" && !strings.EqualFold(m.Supplier, filter.Supplier) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(m.Category, filter.Category) {
			continue
		}
		if filter.ABC != "" && m.ABC != filter.ABC {
			continue
		}
		if filter.XYZ != "" && m.XYZ != filter.XYZ {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}
