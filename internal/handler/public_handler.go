package handler

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/driftlab-studio/studio-cms/internal/renderer"
	"github.com/driftlab-studio/studio-cms/internal/service"
)

// maxSubmissionBytes caps the whole request body. Slightly above the file
// policy total so a policy violation surfaces as a field error rather than
// a connection reset.
const maxSubmissionBytes = 16 << 20

// PublicHandler serves the unauthenticated surface: the hosted form page,
// the form definition for embedded renderers, and the submit endpoint.
type PublicHandler struct {
	forms *service.FormService
	subs  *service.SubmissionService
}

func NewPublicHandler(forms *service.FormService, subs *service.SubmissionService) *PublicHandler {
	return &PublicHandler{forms: forms, subs: subs}
}

// ShowForm renders the hosted form page at /f/{slug}.
func (h *PublicHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	form, err := h.forms.GetBySlug(r.Context(), slug)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if !form.Config().IsActive {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, "<p>This form is no longer accepting submissions.</p>")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderer.Render(w, *form, "/api/forms/"+slug+"/submissions", false); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// GetForm returns the form definition for embedded renderers.
func (h *PublicHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.forms.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, http.StatusNotFound, service.ErrFormNotFound.Error())
		return
	}
	if !form.Config().IsActive {
		writeError(w, http.StatusForbidden, service.ErrFormInactive.Error())
		return
	}
	writeData(w, http.StatusOK, form)
}

// Submit accepts one public submission. Multipart bodies carry file
// uploads; plain form bodies work for forms without file fields.
func (h *PublicHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)

	input, err := parseSubmission(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.subs.Submit(r.Context(), chi.URLParam(r, "slug"), input)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success":     false,
				"error":       verr.Error(),
				"fieldErrors": verr.Fields,
			})
		case errors.Is(err, service.ErrFormNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrFormInactive):
			writeError(w, http.StatusForbidden, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "could not save your submission")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"submissionId": result.Submission.ID,
		"redirectUrl":  result.RedirectURL,
	})
}

func parseSubmission(r *http.Request) (service.SubmitInput, error) {
	input := service.SubmitInput{IP: clientIP(r)}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
			return input, err
		}
		input.Values = r.MultipartForm.Value
		for fieldID, headers := range r.MultipartForm.File {
			for _, header := range headers {
				f, err := header.Open()
				if err != nil {
					return input, err
				}
				content, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					return input, err
				}
				input.Files = append(input.Files, service.Upload{
					FieldID:     fieldID,
					Filename:    header.Filename,
					ContentType: header.Header.Get("Content-Type"),
					Content:     content,
				})
			}
		}
		return input, nil
	}

	if err := r.ParseForm(); err != nil {
		return input, err
	}
	input.Values = r.PostForm
	return input, nil
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
