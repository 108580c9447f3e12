package handler

import (
	"net/http"

	"github.com/driftlab-studio/studio-cms/internal/service"
)

type DashboardHandler struct {
	forms *service.FormService
	subs  *service.SubmissionService
	docs  *service.DocumentService
}

func NewDashboardHandler(forms *service.FormService, subs *service.SubmissionService, docs *service.DocumentService) *DashboardHandler {
	return &DashboardHandler{forms: forms, subs: subs, docs: docs}
}

// Dashboard summarizes the workspace: totals plus per-form stats for the
// admin landing page.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	forms, err := h.forms.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var totalSubs int64
	formStats := make([]map[string]any, 0, len(forms))
	for _, f := range forms {
		count, _ := h.subs.CountByForm(r.Context(), f.ID)
		totalSubs += count
		formStats = append(formStats, map[string]any{
			"id":              f.ID,
			"title":           f.Title,
			"slug":            f.Slug,
			"isActive":        f.Config().IsActive,
			"submissionCount": count,
			"fieldCount":      len(f.Fields),
			"createdAt":       f.CreatedAt,
		})
	}

	docCount, _ := h.docs.Count(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"formCount":       len(forms),
		"submissionCount": totalSubs,
		"documentCount":   docCount,
		"forms":           formStats,
	})
}
