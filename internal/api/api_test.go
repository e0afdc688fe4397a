package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/api/middleware"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/cache"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/planning"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, origins []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine, err := planning.NewEngine(planning.DefaultConfig())
	require.NoError(t, err)
	svc := service.NewPlanningService(engine, nil, cache.NewNoopEvaluationCache())
	return NewRouter(&Services{PlanningService: svc}, origins)
}

func TestNewRouter_Health(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(t, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestNewRouter_PlanningRoutesRegistered(t *testing.T) {
	r := newTestRouter(t, nil)

	want := map[string]bool{
		"POST /api/v1/planning/evaluate":     false,
		"PUT /api/v1/planning/snapshot":      false,
		"GET /api/v1/planning/evaluation":    false,
		"GET /api/v1/planning/skus":          false,
		"GET /api/v1/planning/skus.csv":      false,
		"GET /api/v1/planning/skus/:id":      false,
		"GET /api/v1/planning/replenishment": false,
		"GET /api/v1/planning/suppliers":     false,
		"GET /api/v1/planning/segmentation":  false,
		"GET /api/v1/planning/alerts":        false,
		"GET /api/v1/planning/overview":      false,
	}
	for _, route := range r.Routes() {
		key := route.Method + " " + route.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, found := range want {
		assert.True(t, found, key)
	}
}

func TestNewRouter_NoSnapshotSource(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(t, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/planning/evaluation", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewRouter_CORS(t *testing.T) {
	r := newTestRouter(t, []string{"https://planner.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/planning/skus", nil)
	req.Header.Set("Origin", "https://planner.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://planner.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		want     []string
		allowAll bool
	}{
		{name: "comma separated", input: []string{"https://a.com, https://b.com"}, want: []string{"https://a.com", "https://b.com"}},
		{name: "wildcard", input: []string{"*"}, allowAll: true},
		{name: "blank entries", input: []string{" ", "https://a.com,"}, want: []string{"https://a.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, allowAll := normalizeAllowedOrigins(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.allowAll, allowAll)
		})
	}
}
