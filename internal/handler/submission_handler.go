package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/driftlab-studio/studio-cms/internal/export"
	"github.com/driftlab-studio/studio-cms/internal/service"
)

type SubmissionHandler struct {
	subs *service.SubmissionService
	docs *service.DocumentService
}

func NewSubmissionHandler(subs *service.SubmissionService, docs *service.DocumentService) *SubmissionHandler {
	return &SubmissionHandler{subs: subs, docs: docs}
}

// List returns one page of a form's submissions, newest first.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formId")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	subs, pagination, err := h.subs.List(r.Context(), formID, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"data":       subs,
		"pagination": pagination,
	})
}

// Get returns one submission with its stored documents.
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "submissionId")
	sub, err := h.subs.Get(r.Context(), id)
	if err != nil {
		writeError(w, submissionStatus(err), err.Error())
		return
	}
	docs, err := h.docs.ListBySubmission(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"data":      sub,
		"documents": docs,
	})
}

func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.subs.Delete(r.Context(), chi.URLParam(r, "submissionId")); err != nil {
		writeError(w, submissionStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ExportCSV streams every submission of a form as a spreadsheet-safe CSV
// download.
func (h *SubmissionHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	form, subs, err := h.subs.Export(r.Context(), chi.URLParam(r, "formId"))
	if err != nil {
		writeError(w, formStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(form.Slug, time.Now())+`"`)
	if err := export.Write(w, form.Fields, subs); err != nil {
		// Headers are already out; nothing sensible to send.
		return
	}
}

func submissionStatus(err error) int {
	if errors.Is(err, service.ErrSubmissionNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
