package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/cache"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/planning"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	mu       sync.Mutex
	snapshot *domain.Snapshot
	loads    int
}

func (r *stubRepository) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	if r.snapshot == nil {
		return domain.Snapshot{}, repository.ErrSnapshotNotFound
	}
	return *r.snapshot, nil
}

func (r *stubRepository) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = &snapshot
	return nil
}

func flatHistory(level float64) []domain.HistoryPoint {
	points := make([]domain.HistoryPoint, 12)
	for i := range points {
		v := level
		if i%2 == 1 {
			v = level * 1.2
		}
		points[i] = domain.HistoryPoint{Period: i + 1, Real: &v, Forecast: level * 1.1}
	}
	return points
}

func testSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Skus: []domain.SkuRecord{
			{ID: "SKU-1", Category: "Food", Supplier: "Acme", UnitCost: 10, Stock: 5, LeadTimeDays: 30, MOQ: 10, History: flatHistory(100),
				Lots: []domain.Lot{{ID: "L1", Quantity: 5, DaysLeft: 20}}},
			{ID: "SKU-2", Category: "Drinks", Supplier: "Beta", UnitCost: 4, Stock: 900, LeadTimeDays: 15, MOQ: 12, History: flatHistory(50)},
			{ID: "SKU-3", Category: "Drinks", Supplier: "Beta", UnitCost: 4, Stock: 40, LeadTimeDays: 15, MOQ: 12, History: flatHistory(50)},
		},
		Suppliers: []domain.SupplierRecord{{Name: "Acme", Reliability: 0.9, Quality: 0.9, AvgLeadTimeDays: 30}},
	}
}

func newTestService(t *testing.T, repo repository.SnapshotRepository) *PlanningService {
	t.Helper()
	engine, err := planning.NewEngine(planning.DefaultConfig())
	require.NoError(t, err)
	return NewPlanningService(engine, repo, cache.NewMemoryEvaluationCache())
}

func TestPlanningService_EvaluateIsMemoized(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	first, err := svc.Evaluate(ctx, testSnapshot())
	require.NoError(t, err)
	second, err := svc.Evaluate(ctx, testSnapshot())
	require.NoError(t, err)
	assert.Same(t, first, second)

	changed := testSnapshot()
	changed.Skus[0].Stock = 500
	third, err := svc.Evaluate(ctx, changed)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

// gatedCache never hits and holds Set until release is closed, keeping the
// first run in flight.
type gatedCache struct {
	gets    chan struct{}
	entered chan struct{}
	release chan struct{}

	mu       sync.Mutex
	setCtxOK bool
}

func newGatedCache() *gatedCache {
	return &gatedCache{
		gets:    make(chan struct{}, 4),
		entered: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
}

func (c *gatedCache) Get(ctx context.Context, fingerprint string) (*domain.Evaluation, bool, error) {
	c.gets <- struct{}{}
	return nil, false, nil
}

func (c *gatedCache) Set(ctx context.Context, eval *domain.Evaluation) error {
	c.entered <- struct{}{}
	<-c.release
	c.mu.Lock()
	c.setCtxOK = ctx.Err() == nil
	c.mu.Unlock()
	return nil
}

func (c *gatedCache) InvalidateAll(ctx context.Context) error { return nil }

func TestPlanningService_EvaluateSurvivesCancelledPeer(t *testing.T) {
	engine, err := planning.NewEngine(planning.DefaultConfig())
	require.NoError(t, err)
	gate := newGatedCache()
	svc := NewPlanningService(engine, nil, gate)

	type outcome struct {
		eval *domain.Evaluation
		err  error
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	resA := make(chan outcome, 1)
	go func() {
		eval, err := svc.Evaluate(ctxA, testSnapshot())
		resA <- outcome{eval, err}
	}()
	<-gate.gets
	<-gate.entered

	cancelA()
	a := <-resA
	assert.ErrorIs(t, a.err, context.Canceled)

	resB := make(chan outcome, 1)
	go func() {
		eval, err := svc.Evaluate(context.Background(), testSnapshot())
		resB <- outcome{eval, err}
	}()
	<-gate.gets
	time.Sleep(20 * time.Millisecond)
	close(gate.release)

	b := <-resB
	require.NoError(t, b.err)
	require.NotNil(t, b.eval)
	assert.Len(t, b.eval.Skus, 3)

	gate.mu.Lock()
	defer gate.mu.Unlock()
	assert.True(t, gate.setCtxOK, "shared run must not inherit the first caller's cancellation")
}

func TestPlanningService_Current(t *testing.T) {
	snapshot := testSnapshot()
	repo := &stubRepository{snapshot: &snapshot}
	svc := newTestService(t, repo)
	ctx := context.Background()

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, overview.Skus)

	m, err := svc.GetSku(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCritical, m.Policy.Status)

	_, err = svc.GetSku(ctx, "missing")
	assert.ErrorIs(t, err, ErrSkuNotFound)

	plan, err := svc.Replenishment(ctx, "Acme")
	require.NoError(t, err)
	require.Len(t, plan.Lines, 1)
	assert.Equal(t, "SKU-1", plan.Lines[0].SkuID)

	suppliers, err := svc.Suppliers(ctx)
	require.NoError(t, err)
	assert.Len(t, suppliers, 2)

	matrix, err := svc.Segmentation(ctx)
	require.NoError(t, err)
	assert.Len(t, matrix.Cells, 9)

	feed, err := svc.Alerts(ctx, domain.AlertExpiry)
	require.NoError(t, err)
	for _, a := range feed.Alerts {
		assert.Equal(t, domain.AlertExpiry, a.Category)
	}
	assert.True(t, feed.TotalPotentialLoss.Equal(feed.StockoutLoss.Add(feed.ExpiryLoss)))

	assert.Equal(t, 7, repo.loads)
}

func TestPlanningService_NoSnapshot(t *testing.T) {
	svc := newTestService(t, &stubRepository{})
	_, err := svc.Overview(context.Background())
	assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)

	_, err = newTestService(t, nil).Current(context.Background())
	assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)
}

func TestPlanningService_ReplaceSnapshot(t *testing.T) {
	repo := &stubRepository{}
	svc := newTestService(t, repo)
	ctx := context.Background()

	eval, err := svc.ReplaceSnapshot(ctx, testSnapshot())
	require.NoError(t, err)
	assert.Len(t, eval.Skus, 3)
	require.NotNil(t, repo.snapshot)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Same(t, eval, current)
}

func TestFilterSkus(t *testing.T) {
	skus := []domain.SkuMetrics{
		{ID: "1", Supplier: "Acme", Category: "Food", ABC: domain.ClassA, XYZ: domain.ClassX, Policy: domain.Policy{Status: domain.StatusOK}},
		{ID: "2", Supplier: "Beta", Category: "Food", ABC: domain.ClassB, XYZ: domain.ClassX, Policy: domain.Policy{Status: domain.StatusCritical}},
		{ID: "3", Supplier: "acme", Category: "Drinks", ABC: domain.ClassA, XYZ: domain.ClassZ, Policy: domain.Policy{Status: domain.StatusCritical}},
	}

	tests := []struct {
		name   string
		filter SkuFilter
		want   []string
	}{
		{"no filter", SkuFilter{}, []string{"1", "2", "3"}},
		{"status", SkuFilter{Status: domain.StatusCritical}, []string{"2", "3"}},
		{"supplier is case insensitive", SkuFilter{Supplier: "ACME"}, []string{"1", "3"}},
		{"abc and xyz", SkuFilter{ABC: domain.ClassA, XYZ: domain.ClassX}, []string{"1"}},
		{"category", SkuFilter{Category: "drinks"}, []string{"3"}},
		{"no match", SkuFilter{Supplier: "Nobody"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterSkus(skus, tt.filter)
			ids := make([]string, 0, len(got))
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
