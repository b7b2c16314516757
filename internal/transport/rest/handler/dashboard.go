package handler

import (
	"net/http"

	"journeylens/internal/service"
)

// DashboardHandler handles the customer success dashboards.
type DashboardHandler struct {
	dashboardSvc  *service.DashboardService
	evaluationSvc *service.EvaluationService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardSvc *service.DashboardService, evaluationSvc *service.EvaluationService) *DashboardHandler {
	return &DashboardHandler{
		dashboardSvc:  dashboardSvc,
		evaluationSvc: evaluationSvc,
	}
}

// CSM handles GET /dashboard/csm
//
//	@Summary	Per-account risk rows, riskiest first
//	@Tags		dashboard
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	model.DashboardAccount
//	@Router		/dashboard/csm [get]
func (h *DashboardHandler) CSM(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboardSvc.CSM(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// RiskBoard handles GET /dashboard/risk-board
//
//	@Summary	Top accounts by average risk
//	@Tags		dashboard
//	@Produce	json
//	@Security	BearerAuth
//	@Param		limit	query	int	false	"Rows to return (1-50)"	default(5)
//	@Success	200		{array}	model.RiskEntry
//	@Router		/dashboard/risk-board [get]
func (h *DashboardHandler) RiskBoard(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", service.DefaultRiskBoardLimit)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "limit must be an integer")
		return
	}
	entries, err := h.dashboardSvc.RiskBoard(r.Context(), limit)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Metrics handles GET /evaluations/metrics
//
//	@Summary	Coverage, feedback and rule accuracy
//	@Tags		evaluations
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	model.EvaluationMetrics
//	@Router		/evaluations/metrics [get]
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.evaluationSvc.Metrics(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
