package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/driftlab-studio/studio-cms/internal/events"
	"github.com/driftlab-studio/studio-cms/internal/metrics"
	"github.com/driftlab-studio/studio-cms/internal/models"
	"github.com/driftlab-studio/studio-cms/internal/repository"
	"github.com/driftlab-studio/studio-cms/internal/validation"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrFormInactive refuses submissions against a deactivated form. The
	// client-side active flag is advisory; this is the enforcement point.
	ErrFormInactive = errors.New("this form is no longer accepting submissions")
)

// ValidationError carries per-field messages for a rejected submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "please fill in all required fields"
}

// SubmissionStore is the persistence contract for submissions.
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	FindByForm(ctx context.Context, formID string, offset, limit int) ([]models.Submission, int64, error)
	FindAllByForm(ctx context.Context, formID string) ([]models.Submission, error)
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	Delete(ctx context.Context, id string) error
	DeleteByForm(ctx context.Context, formID string) error
	CountByForm(ctx context.Context, formID string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// Upload is one file received with a submission.
type Upload struct {
	FieldID     string
	Filename    string
	ContentType string
	Content     []byte
}

// SubmitInput is a parsed public submission payload: values keyed by field
// id (repeated keys arrive as slices) plus any uploaded files.
type SubmitInput struct {
	Values map[string][]string
	Files  []Upload
	IP     string
}

// SubmitResult is what the public endpoint returns to the renderer.
type SubmitResult struct {
	Submission  *models.Submission
	RedirectURL string
}

// SubmissionService owns the collection pipeline: active check, validation,
// file storage, persistence, metrics, and the notification event.
type SubmissionService struct {
	subs     SubmissionStore
	forms    *FormService
	docs     *DocumentService
	producer *events.Producer
	policy   validation.FilePolicy
}

func NewSubmissionService(subs SubmissionStore, forms *FormService, docs *DocumentService, producer *events.Producer) *SubmissionService {
	return &SubmissionService{
		subs:     subs,
		forms:    forms,
		docs:     docs,
		producer: producer,
		policy:   validation.DefaultFilePolicy(),
	}
}

// Submit validates and stores one public submission against the form with
// the given slug.
func (s *SubmissionService) Submit(ctx context.Context, slug string, input SubmitInput) (*SubmitResult, error) {
	form, err := s.forms.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	settings := form.Config()
	if !settings.IsActive {
		metrics.SubmissionFailures.WithLabelValues(slug, "inactive").Inc()
		return nil, ErrFormInactive
	}

	files := map[string][]validation.FileInfo{}
	for _, upload := range input.Files {
		files[upload.FieldID] = append(files[upload.FieldID], validation.FileInfo{
			Filename: upload.Filename,
			Size:     int64(len(upload.Content)),
		})
	}
	if result := validation.Validate(form.Fields, input.Values, files, s.policy); !result.OK() {
		metrics.SubmissionFailures.WithLabelValues(slug, "validation").Inc()
		return nil, &ValidationError{Fields: result.FieldErrors}
	}

	sub := &models.Submission{
		ID:     uuid.NewString(),
		FormID: form.ID,
		Data:   buildData(form.Fields, input.Values),
		IP:     input.IP,
	}

	for _, upload := range input.Files {
		doc, err := s.docs.Store(ctx, upload.Filename, upload.ContentType, upload.Content, form.ID, sub.ID)
		if err != nil {
			metrics.SubmissionFailures.WithLabelValues(slug, "storage").Inc()
			return nil, err
		}
		sub.Files = append(sub.Files, models.SubmissionFile{
			FieldID:     upload.FieldID,
			DocumentID:  doc.ID,
			Filename:    doc.FileName,
			Size:        doc.Size,
			ContentType: doc.ContentType,
		})
	}

	if err := s.subs.Create(ctx, sub); err != nil {
		metrics.SubmissionFailures.WithLabelValues(slug, "storage").Inc()
		return nil, err
	}
	metrics.SubmissionsTotal.WithLabelValues(slug).Inc()

	event := events.SubmissionReceived{
		SubmissionID: sub.ID,
		FormID:       form.ID,
		FormSlug:     form.Slug,
		NotifyEmails: settings.NotifyEmails,
		SubmittedAt:  sub.SubmittedAt,
	}
	if err := s.producer.PublishSubmissionReceived(ctx, event); err != nil {
		// The submission is already stored; notification delivery must not
		// fail the request.
		log.Warnf("submissions: publish event for %s failed: %v", sub.ID, err)
	}

	return &SubmitResult{Submission: sub, RedirectURL: settings.RedirectURL}, nil
}

// buildData maps field ids to submitted values. Checkbox fields keep the
// full list; every other input keeps its first value. Structural and file
// fields never appear in the data map.
func buildData(fields []models.FormField, values map[string][]string) datatypes.JSONMap {
	data := datatypes.JSONMap{}
	for _, field := range fields {
		if field.Type.Structural() || field.Type == models.FieldFile {
			continue
		}
		submitted := values[field.ID]
		if len(submitted) == 0 {
			continue
		}
		if field.Type == models.FieldCheckbox {
			data[field.ID] = submitted
		} else {
			data[field.ID] = submitted[0]
		}
	}
	return data
}

// Pagination is the server-computed paging envelope; clients display it
// rather than recomputing their own.
type Pagination struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	Total           int64 `json:"total"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// List returns one page of a form's submissions plus the paging envelope.
func (s *SubmissionService) List(ctx context.Context, formID string, page, limit int) ([]models.Submission, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	subs, total, err := s.subs.FindByForm(ctx, formID, (page-1)*limit, limit)
	if err != nil {
		return nil, Pagination{}, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	pagination := Pagination{
		Page:            page,
		Limit:           limit,
		Total:           total,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
	return subs, pagination, nil
}

// Get returns one submission by id.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// Delete removes one submission.
func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	if err := s.subs.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrSubmissionNotFound
		}
		return err
	}
	return nil
}

// DeleteByForm removes every submission of a form. Called when the form
// itself is deleted.
func (s *SubmissionService) DeleteByForm(ctx context.Context, formID string) error {
	return s.subs.DeleteByForm(ctx, formID)
}

// Export returns everything the CSV download needs: the form (for labels
// and the filename) and all of its submissions.
func (s *SubmissionService) Export(ctx context.Context, formID string) (*models.Form, []models.Submission, error) {
	form, err := s.forms.Get(ctx, formID)
	if err != nil {
		return nil, nil, err
	}
	subs, err := s.subs.FindAllByForm(ctx, formID)
	if err != nil {
		return nil, nil, err
	}
	return form, subs, nil
}

// CountByForm returns the number of submissions for one form.
func (s *SubmissionService) CountByForm(ctx context.Context, formID string) (int64, error) {
	return s.subs.CountByForm(ctx, formID)
}

// Count returns the total submission count.
func (s *SubmissionService) Count(ctx context.Context) (int64, error) {
	return s.subs.Count(ctx)
}
