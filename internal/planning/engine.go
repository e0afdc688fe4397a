package planning

import (
	"context"
	"time"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Engine evaluates snapshots under a fixed configuration. It holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	cfg        Config
	calculator *InventoryCalculator
	expiry     *ExpiryAssessor
}

// NewEngine validates cfg and builds an engine for it.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:        cfg,
		calculator: NewInventoryCalculator(cfg.ServiceLevelZ, cfg.PeriodLengthDays),
		expiry:     NewExpiryAssessor(cfg),
	}, nil
}

// Config returns the configuration the engine evaluates with.
func (e *Engine) Config() Config {
	return e.cfg
}

type skuResult struct {
	metrics     domain.SkuMetrics
	diagnostics []domain.Diagnostic
	ok          bool
}

// Evaluate runs every per-SKU computation in parallel, waits for all of them
// and then builds the portfolio reductions. Per-SKU problems become
// diagnostics; a cancelled ctx aborts the whole evaluation.
func (e *Engine) Evaluate(ctx context.Context, snapshot domain.Snapshot) (*domain.Evaluation, error) {
	start := time.Now()

	fingerprint, err := Fingerprint(snapshot, e.cfg)
	if err != nil {
		return nil, err
	}

	results := make([]skuResult, len(snapshot.Skus))
	seen := make(map[string]struct{}, len(snapshot.Skus))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i, rec := range snapshot.Skus {
		if _, dup := seen[rec.ID]; dup {
			err := errors.Wrapf(ErrDuplicateSku, "sku %q already evaluated", rec.ID)
			results[i] = skuResult{diagnostics: []domain.Diagnostic{newDiagnostic(rec.ID, err, true)}}
			continue
		}
		seen[rec.ID] = struct{}{}

		if gctx.Err() != nil {
			break
		}
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.evaluateSku(rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "evaluate skus")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "evaluate skus")
	}

	eval := &domain.Evaluation{
		ID:          EvaluationID(fingerprint),
		Fingerprint: fingerprint,
		Skus:        make([]domain.SkuMetrics, 0, len(results)),
		Diagnostics: make([]domain.Diagnostic, 0),
	}
	for _, res := range results {
		eval.Diagnostics = append(eval.Diagnostics, res.diagnostics...)
		if res.ok {
			eval.Skus = append(eval.Skus, res.metrics)
		}
	}
	for _, d := range eval.Diagnostics {
		log.Debug().Str("sku", d.SkuID).Str("code", d.Code).Bool("excluded", d.Excluded).Msg(d.Message)
	}

	// ABC depends on the whole portfolio when the pareto policy is active
	classes := ClassifyABC(eval.Skus, e.cfg)
	for i := range eval.Skus {
		eval.Skus[i].ABC = classes[i]
		eval.Skus[i].Segment = domain.SegmentKey(classes[i], eval.Skus[i].XYZ)
	}

	eval.Segmentation = BuildSegmentation(eval.Skus, e.cfg.ABCPolicy)
	eval.Replenishment = BuildReplenishmentPlan(eval.Skus)
	eval.Suppliers = RollupSuppliers(eval.Skus, snapshot.Suppliers, e.cfg.SupplierRiskCriticalFraction)
	eval.Alerts = BuildAlertFeed(eval.Skus, eval.Suppliers, e.cfg)
	eval.Overview = BuildOverview(eval.Skus, eval.Suppliers)

	log.Info().
		Str("evaluation_id", eval.ID).
		Int("skus", len(eval.Skus)).
		Int("diagnostics", len(eval.Diagnostics)).
		Int("alerts", len(eval.Alerts.Alerts)).
		Dur("duration", time.Since(start)).
		Msg("evaluation complete")

	return eval, nil
}

func (e *Engine) workers() int {
	if e.cfg.Workers < 1 {
		return 1
	}
	return e.cfg.Workers
}

// evaluateSku runs demand, policy, expiry and replenishment for one SKU. ABC
// is left empty until the portfolio is known.
func (e *Engine) evaluateSku(rec domain.SkuRecord) skuResult {
	var res skuResult

	stats, err := DemandStatistics(rec.History, e.cfg.EvaluationWindow)
	if err != nil {
		res.diagnostics = append(res.diagnostics, newDiagnostic(rec.ID, err, true))
		return res
	}

	m := domain.SkuMetrics{
		ID:             rec.ID,
		Category:       rec.Category,
		Supplier:       rec.Supplier,
		UnitCost:       rec.UnitCost,
		Stock:          rec.Stock,
		LeadTimeDays:   rec.LeadTimeDays,
		MOQ:            rec.MOQ,
		Demand:         stats,
		Policy:         e.calculator.Calculate(rec.Stock, rec.LeadTimeDays, stats),
		AnnualValue:    AnnualValue(stats, rec.UnitCost, e.cfg),
		InventoryValue: InventoryValue(rec.Stock, rec.UnitCost),
		XYZ:            ClassifyXYZ(stats.CV, e.cfg.XYZStableCV, e.cfg.XYZVariableCV),
	}

	m.Expiry, err = e.expiry.Assess(rec, stats.MeanDemand)
	if err != nil {
		res.diagnostics = append(res.diagnostics, newDiagnostic(rec.ID, err, false))
	}

	m.Suggestion, err = Suggest(rec, m.Policy)
	if err != nil {
		res.diagnostics = append(res.diagnostics, newDiagnostic(rec.ID, err, false))
	}

	res.metrics = m
	res.ok = true
	return res
}
