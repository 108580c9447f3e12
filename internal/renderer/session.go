// Package renderer turns a persisted form into a live, submittable one. The
// Session owns the submit lifecycle state machine; rendering produces the
// HTML widgets for each field type, with a disabled mode for authoring
// preview.
package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/driftlab-studio/studio-cms/internal/models"
	"github.com/driftlab-studio/studio-cms/internal/validation"
)

// State is one phase of the submit lifecycle. The only transitions are
// form → submitting → success | error, error → form (retry, values kept)
// and success → form (reset, values cleared).
type State string

const (
	StateForm       State = "form"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// ErrSubmitInFlight rejects a second Submit while one is outstanding, so a
// double-click can never produce two POSTs.
var ErrSubmitInFlight = errors.New("a submission is already in flight")

// genericFailure is shown when the server gives no usable error message.
const genericFailure = "Something went wrong. Please try again."

// ValidationError reports local required-field failures. No network request
// was made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// SubmitError reports a failed submission attempt; the session is in the
// error state and the user's values are preserved for retry.
type SubmitError struct {
	Message string
}

func (e *SubmitError) Error() string { return e.Message }

// Upload is one file staged for a file field.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Result is the outcome of a successful submission. When RedirectURL is set
// the caller navigates there immediately instead of showing Message.
type Result struct {
	Message     string
	RedirectURL string
}

// Session drives one end-user's interaction with a rendered form.
// All methods are safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	form   models.Form
	values map[string][]string
	files  map[string][]Upload
	state  State
	errMsg string
	ferrs  map[string]string

	submitURL string
	client    *http.Client
	policy    validation.FilePolicy
}

// NewSession prepares a session posting to submitURL. A nil client gets a
// default with a request timeout, so a hung request cannot leave the
// session submitting forever.
func NewSession(form models.Form, submitURL string, client *http.Client) *Session {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Session{
		form:      form,
		values:    map[string][]string{},
		files:     map[string][]Upload{},
		state:     StateForm,
		submitURL: submitURL,
		client:    client,
		policy:    validation.DefaultFilePolicy(),
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetValue replaces a single-value field's value.
func (s *Session) SetValue(fieldID, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[fieldID] = []string{value}
}

// SetValues replaces a multi-value (checkbox) field's values.
func (s *Session) SetValues(fieldID string, values []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[fieldID] = append([]string(nil), values...)
}

// Value returns the current values for a field.
func (s *Session) Value(fieldID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.values[fieldID]...)
}

// AttachFile accumulates a file into a file field's list.
func (s *Session) AttachFile(fieldID string, upload Upload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[fieldID] = append(s.files[fieldID], upload)
}

// RemoveFile drops one staged file by position.
func (s *Session) RemoveFile(fieldID string, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.files[fieldID]
	if index < 0 || index >= len(staged) {
		return
	}
	s.files[fieldID] = append(staged[:index], staged[index+1:]...)
}

// FieldErrors returns the per-field messages from the last failed local
// validation.
func (s *Session) FieldErrors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.ferrs))
	for k, v := range s.ferrs {
		out[k] = v
	}
	return out
}

// ErrorMessage returns the message captured from the last failed submit.
func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Retry returns from the error state to the form, preserving everything the
// user had entered.
func (s *Session) Retry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateError {
		s.state = StateForm
		s.errMsg = ""
	}
}

// Reset fully clears the session for another response.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string][]string{}
	s.files = map[string][]Upload{}
	s.ferrs = nil
	s.errMsg = ""
	s.state = StateForm
}

// Submit validates locally, then POSTs the multipart payload. A failed
// validation surfaces field errors and issues no network request. On
// success all values and files are cleared; on failure they are preserved
// and the session moves to the error state.
func (s *Session) Submit(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return Result{}, ErrSubmitInFlight
	}

	fileInfo := make(map[string][]validation.FileInfo, len(s.files))
	for fieldID, uploads := range s.files {
		for _, u := range uploads {
			fileInfo[fieldID] = append(fileInfo[fieldID], validation.FileInfo{
				Filename: u.Filename,
				Size:     int64(len(u.Content)),
			})
		}
	}
	if result := validation.Validate(s.form.Fields, s.values, fileInfo, s.policy); !result.OK() {
		s.ferrs = result.FieldErrors
		s.mu.Unlock()
		return Result{}, &ValidationError{Fields: result.FieldErrors}
	}

	s.ferrs = nil
	s.state = StateSubmitting
	body, contentType, err := s.encodePayload()
	s.mu.Unlock()
	if err != nil {
		return Result{}, s.fail(fmt.Sprintf("could not encode submission: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.submitURL, body)
	if err != nil {
		return Result{}, s.fail(genericFailure)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, s.fail(genericFailure)
	}
	defer resp.Body.Close()

	var decoded struct {
		Success     bool   `json:"success"`
		RedirectURL string `json:"redirectUrl"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, s.fail(genericFailure)
	}
	if !decoded.Success {
		msg := decoded.Error
		if msg == "" {
			msg = genericFailure
		}
		return Result{}, s.fail(msg)
	}

	s.mu.Lock()
	s.values = map[string][]string{}
	s.files = map[string][]Upload{}
	s.state = StateSuccess
	s.mu.Unlock()

	return Result{
		Message:     s.form.Config().SuccessMessage,
		RedirectURL: decoded.RedirectURL,
	}, nil
}

// encodePayload builds the multipart body: every non-file value appended
// under its field id (arrays as repeated keys), every staged file appended
// under its field id. Caller holds the lock.
func (s *Session) encodePayload() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, field := range s.form.Fields {
		if field.Type.Structural() {
			continue
		}
		if field.Type == models.FieldFile {
			for _, upload := range s.files[field.ID] {
				part, err := w.CreateFormFile(field.ID, upload.Filename)
				if err != nil {
					return nil, "", err
				}
				if _, err := part.Write(upload.Content); err != nil {
					return nil, "", err
				}
			}
			continue
		}
		for _, value := range s.values[field.ID] {
			if err := w.WriteField(field.ID, value); err != nil {
				return nil, "", err
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func (s *Session) fail(msg string) error {
	s.mu.Lock()
	s.state = StateError
	s.errMsg = msg
	s.mu.Unlock()
	return &SubmitError{Message: msg}
}
