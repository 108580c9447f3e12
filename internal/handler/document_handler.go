package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/driftlab-studio/studio-cms/internal/service"
)

type DocumentHandler struct {
	svc *service.DocumentService
}

func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, docs)
}

// Download serves the stored blob with its original filename.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	doc, path, err := h.svc.Open(r.Context(), chi.URLParam(r, "documentId"))
	if err != nil {
		writeError(w, documentStatus(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	http.ServeFile(w, r, path)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "documentId")); err != nil {
		writeError(w, documentStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func documentStatus(err error) int {
	if errors.Is(err, service.ErrDocumentNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
