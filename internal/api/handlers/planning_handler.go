package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/export"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/planning"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/repository"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/service"
)

type PlanningHandler struct {
	service *service.PlanningService
}

func NewPlanningHandler(service *service.PlanningService) *PlanningHandler {
	return &PlanningHandler{service: service}
}

func (h *PlanningHandler) parseSkuFilter(c *gin.Context) (service.SkuFilter, error) {
	filter := service.SkuFilter{
		Supplier: strings.TrimSpace(c.Query("supplier")),
		Category: strings.TrimSpace(c.Query("category")),
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, ok := domain.ParseStockStatus(raw)
		if !ok {
			return filter, fmt.Errorf("unknown status %q", raw)
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(c.Query("abc")); raw != "" {
		abc, ok := domain.ParseABCClass(raw)
		if !ok {
			return filter, fmt.Errorf("unknown abc class %q", raw)
		}
		filter.ABC = abc
	}
	if raw := strings.TrimSpace(c.Query("xyz")); raw != "" {
		xyz, ok := domain.ParseXYZClass(raw)
		if !ok {
			return filter, fmt.Errorf("unknown xyz class %q", raw)
		}
		filter.XYZ = xyz
	}

	return filter, nil
}

// Evaluate runs the engine on the snapshot in the request body.
func (h *PlanningHandler) Evaluate(c *gin.Context) {
	var snapshot domain.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshot", "details": err.Error()})
		return
	}

	eval, err := h.service.Evaluate(c.Request.Context(), snapshot)
	if err != nil {
		respondError(c, "failed to evaluate snapshot", err)
		return
	}

	c.JSON(http.StatusOK, eval)
}

// ReplaceSnapshot stores the snapshot in the body as the current portfolio.
func (h *PlanningHandler) ReplaceSnapshot(c *gin.Context) {
	var snapshot domain.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshot", "details": err.Error()})
		return
	}

	eval, err := h.service.ReplaceSnapshot(c.Request.Context(), snapshot)
	if err != nil {
		respondError(c, "failed to store snapshot", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": eval.ID, "fingerprint": eval.Fingerprint, "skus": len(eval.Skus), "diagnostics": eval.Diagnostics})
}

func (h *PlanningHandler) GetEvaluation(c *gin.Context) {
	eval, err := h.service.Current(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch evaluation", err)
		return
	}

	c.JSON(http.StatusOK, eval)
}

func (h *PlanningHandler) GetSkus(c *gin.Context) {
	filter, err := h.parseSkuFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter", "details": err.Error()})
		return
	}

	skus, err := h.service.ListSkus(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "failed to fetch skus", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": skus,
		"total": len(skus),
	})
}

// ExportSkus streams the filtered SKU metrics as CSV.
func (h *PlanningHandler) ExportSkus(c *gin.Context) {
	filter, err := h.parseSkuFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter", "details": err.Error()})
		return
	}

	skus, err := h.service.ListSkus(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "failed to export skus", err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="sku_metrics.csv"`)
	c.Status(http.StatusOK)
	if err := export.WriteSkuMetrics(c.Writer, skus); err != nil {
		_ = c.Error(err)
	}
}

func (h *PlanningHandler) GetSku(c *gin.Context) {
	m, err := h.service.GetSku(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "failed to fetch sku", err)
		return
	}

	c.JSON(http.StatusOK, m)
}

func (h *PlanningHandler) GetReplenishment(c *gin.Context) {
	plan, err := h.service.Replenishment(c.Request.Context(), strings.TrimSpace(c.Query("supplier")))
	if err != nil {
		respondError(c, "failed to fetch replenishment plan", err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *PlanningHandler) GetSuppliers(c *gin.Context) {
	suppliers, err := h.service.Suppliers(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch suppliers", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": suppliers})
}

func (h *PlanningHandler) GetSegmentation(c *gin.Context) {
	matrix, err := h.service.Segmentation(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch segmentation", err)
		return
	}

	c.JSON(http.StatusOK, matrix)
}

func (h *PlanningHandler) GetAlerts(c *gin.Context) {
	category := domain.AlertCategory(strings.ToLower(strings.TrimSpace(c.Query("category"))))
	switch category {
	case "", domain.AlertStockout, domain.AlertExpiry, domain.AlertSupplier:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter", "details": fmt.Sprintf("unknown alert category %q", category)})
		return
	}

	feed, err := h.service.Alerts(c.Request.Context(), category)
	if err != nil {
		respondError(c, "failed to fetch alerts", err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (h *PlanningHandler) GetOverview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch overview", err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

func respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, planning.ErrInvalidConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrSnapshotNotFound), errors.Is(err, service.ErrSkuNotFound):
		status = http.StatusNotFound
	}

	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
