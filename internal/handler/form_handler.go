package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/driftlab-studio/studio-cms/internal/models"
	"github.com/driftlab-studio/studio-cms/internal/renderer"
	"github.com/driftlab-studio/studio-cms/internal/service"
)

type FormHandler struct {
	svc  *service.FormService
	subs *service.SubmissionService
}

func NewFormHandler(svc *service.FormService, subs *service.SubmissionService) *FormHandler {
	return &FormHandler{svc: svc, subs: subs}
}

func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, forms)
}

func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Slug        string `json:"slug"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form, err := h.svc.Create(r.Context(), req.Title, req.Description, req.Slug)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeData(w, http.StatusCreated, form)
}

func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.Get(r.Context(), chi.URLParam(r, "formId"))
	if err != nil {
		writeError(w, formStatus(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, form)
}

func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.FormUpdate
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form, err := h.svc.Update(r.Context(), chi.URLParam(r, "formId"), req)
	if err != nil {
		writeError(w, formStatus(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, form)
}

func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "formId")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, formStatus(err), err.Error())
		return
	}
	// The form is gone; orphaned responses are cleaned up best-effort.
	if err := h.subs.DeleteByForm(r.Context(), id); err != nil {
		log.Warnf("forms: purge submissions for %s failed: %v", id, err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Preview renders the form as static HTML with inputs disabled and no
// submit button, exactly as the public page lays it out.
func (h *FormHandler) Preview(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.Get(r.Context(), chi.URLParam(r, "formId"))
	if err != nil {
		writeError(w, formStatus(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderer.Render(w, *form, "", true); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func formStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrFormNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrSlugRequired),
		errors.Is(err, service.ErrSlugImmutable),
		errors.Is(err, models.ErrUnknownFieldType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
