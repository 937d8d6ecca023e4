package web

import (
	"errors"
	"net/http"

	"incentive-engine/internal/core"
)

// calculateIncentives handles POST /api/calculator/calculate-incentives.
// Body: {"period": "YYYY-MM"}. A failed run persists nothing, so the
// caller can simply retry after a 500.
func (h *Handler) calculateIncentives(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Period string `json:"period"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, err := h.svc.CalculateIncentives(r.Context(), req.Period)
	if err != nil {
		if errors.Is(err, core.ErrInvalidPeriod) {
			writeError(w, r, err.Error(), "INVALID_PERIOD", http.StatusBadRequest)
			return
		}
		writeError(w, r, err.Error(), "CALCULATION_FAILED", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"status":                "success",
		"period":                summary.Period,
		"processed_salespeople": summary.Processed,
	})
}

// resultsForPeriod handles GET /api/calculator/results?period=YYYY-MM.
func (h *Handler) resultsForPeriod(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ResultsForPeriod(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidPeriod) {
			writeError(w, r, err.Error(), "INVALID_PERIOD", http.StatusBadRequest)
			return
		}
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"period":  res.Period,
		"results": res.Results,
	})
}

// listRules handles GET /api/rules?period=YYYY-MM.
func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListActiveRules(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidPeriod) {
			writeError(w, r, err.Error(), "INVALID_PERIOD", http.StatusBadRequest)
			return
		}
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"period": res.Period,
		"rules":  res.Rules,
	})
}
