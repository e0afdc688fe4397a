package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/cache"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/planning"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/repository"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	mu       sync.Mutex
	snapshot *domain.Snapshot
}

func (r *memoryRepository) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot == nil {
		return domain.Snapshot{}, repository.ErrSnapshotNotFound
	}
	return *r.snapshot, nil
}

func (r *memoryRepository) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = &snapshot
	return nil
}

func demandHistory(level float64) []domain.HistoryPoint {
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

func handlerSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Skus: []domain.SkuRecord{
			{ID: "SKU-1", Category: "Food", Supplier: "Acme", UnitCost: 10, Stock: 5, LeadTimeDays: 30, MOQ: 10, History: demandHistory(100),
				Lots: []domain.Lot{{ID: "L1", Quantity: 5, DaysLeft: 20}}},
			{ID: "SKU-2", Category: "Drinks", Supplier: "Beta", UnitCost: 4, Stock: 900, LeadTimeDays: 15, MOQ: 12, History: demandHistory(50)},
			{ID: "SKU-3", Category: "Drinks", Supplier: "Beta", UnitCost: 4, Stock: 40, LeadTimeDays: 15, MOQ: 12, History: demandHistory(50)},
		},
		Suppliers: []domain.SupplierRecord{{Name: "Acme", Reliability: 0.9, Quality: 0.9, AvgLeadTimeDays: 30}},
	}
}

func setupRouter(t *testing.T, repo *memoryRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine, err := planning.NewEngine(planning.DefaultConfig())
	require.NoError(t, err)
	h := NewPlanningHandler(service.NewPlanningService(engine, repo, cache.NewMemoryEvaluationCache()))

	r := gin.New()
	g := r.Group("/planning")
	g.POST("/evaluate", h.Evaluate)
	g.PUT("/snapshot", h.ReplaceSnapshot)
	g.GET("/evaluation", h.GetEvaluation)
	g.GET("/skus", h.GetSkus)
	g.GET("/skus.csv", h.ExportSkus)
	g.GET("/skus/:id", h.GetSku)
	g.GET("/replenishment", h.GetReplenishment)
	g.GET("/suppliers", h.GetSuppliers)
	g.GET("/segmentation", h.GetSegmentation)
	g.GET("/alerts", h.GetAlerts)
	g.GET("/overview", h.GetOverview)
	return r
}

func doRequest(r *gin.Engine, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPlanningHandler_Evaluate(t *testing.T) {
	r := setupRouter(t, &memoryRepository{})
	body, err := json.Marshal(handlerSnapshot())
	require.NoError(t, err)

	w := doRequest(r, http.MethodPost, "/planning/evaluate", body)
	require.Equal(t, http.StatusOK, w.Code)

	var eval domain.Evaluation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eval))
	assert.Len(t, eval.Skus, 3)
	assert.NotEmpty(t, eval.ID)
	assert.NotEmpty(t, eval.Fingerprint)
}

func TestPlanningHandler_EvaluateRejectsBadBody(t *testing.T) {
	r := setupRouter(t, &memoryRepository{})

	w := doRequest(r, http.MethodPost, "/planning/evaluate", []byte(`{"skus": "nope"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid snapshot")
}

func TestPlanningHandler_NoSnapshot(t *testing.T) {
	r := setupRouter(t, &memoryRepository{})

	for _, path := range []string{"/planning/evaluation", "/planning/skus", "/planning/overview", "/planning/alerts"} {
		w := doRequest(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestPlanningHandler_ReplaceSnapshotThenQuery(t *testing.T) {
	repo := &memoryRepository{}
	r := setupRouter(t, repo)
	body, err := json.Marshal(handlerSnapshot())
	require.NoError(t, err)

	w := doRequest(r, http.MethodPut, "/planning/snapshot", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.snapshot)

	var stored struct {
		ID   string `json:"id"`
		Skus int    `json:"skus"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, 3, stored.Skus)

	t.Run("filters skus by supplier", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/planning/skus?supplier=beta", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Items []domain.SkuMetrics `json:"items"`
			Total int                 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Total)
		for _, m := range resp.Items {
			assert.Equal(t, "Beta", m.Supplier)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/planning/skus?status=bogus", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects unknown abc class", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/planning/skus?abc=D", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("single sku", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/planning/skus/SKU-2", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var m domain.SkuMetrics
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
		assert.Equal(t, "SKU-2", m.ID)
		assert.Equal(t, domain.StatusOK, m.Policy.Status)
	})

	t.Run("missing sku", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/planning/skus/NOPE", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("csv export", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/planning/skus.csv", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))

		rows, err := csv.NewReader(w.Body).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "sku", rows[0][0])
		assert.Equal(t, "SKU-1", rows[1][0])
	})

	t.Run("suppliers", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/planning/suppliers", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Items []domain.SupplierRollup `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "Acme", resp.Items[0].Name)
		assert.Equal(t, "Beta", resp.Items[1].Name)
	})

	t.Run("alerts by category", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/planning/alerts?category=expiry", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var feed domain.AlertFeed
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
		for _, a := range feed.Alerts {
			assert.Equal(t, domain.AlertExpiry, a.Category)
		}
	})

	t.Run("rejects unknown alert category", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/planning/alerts?category=weather", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("segmentation and overview", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/planning/segmentation", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var matrix domain.SegmentationMatrix
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matrix))
		assert.Len(t, matrix.Cells, 9)

		w = doRequest(r, http.MethodGet, "/planning/overview", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var overview domain.Overview
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
		assert.Equal(t, 3, overview.Skus)
	})

	t.Run("replenishment", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/planning/replenishment?supplier=Acme", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var plan domain.ReplenishmentPlan
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
		for _, line := range plan.Lines {
			assert.Equal(t, "Acme", line.Supplier)
		}
	})
}
