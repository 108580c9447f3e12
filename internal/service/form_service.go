package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/driftlab-studio/studio-cms/internal/models"
	"github.com/driftlab-studio/studio-cms/internal/repository"
)

var (
	ErrFormNotFound  = errors.New("form not found")
	ErrTitleRequired = errors.New("title is required")
	ErrSlugRequired  = errors.New("slug is required")
	// ErrSlugImmutable rejects slug changes through the edit flow; the slug
	// is fixed once the form has been created and linked.
	ErrSlugImmutable = errors.New("slug cannot be changed")
)

// FormStore is the persistence contract the form service needs.
type FormStore interface {
	Create(ctx context.Context, form *models.Form) error
	FindAll(ctx context.Context) ([]models.Form, error)
	FindByID(ctx context.Context, id string) (*models.Form, error)
	FindBySlug(ctx context.Context, slug string) (*models.Form, error)
	Save(ctx context.Context, form *models.Form) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// FormService owns form lifecycle rules: slug generation and uniqueness,
// save-time validation, and field normalization.
type FormService struct {
	forms FormStore
}

func NewFormService(forms FormStore) *FormService {
	return &FormService{forms: forms}
}

// Create makes a new form with an empty field list and default settings.
// An empty slug is generated from the title; a taken slug is disambiguated
// with a timestamp suffix.
func (s *FormService) Create(ctx context.Context, title, description, slug string) (*models.Form, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = generateSlug(title)
	} else {
		slug = generateSlug(slug)
	}
	if existing, err := s.forms.FindBySlug(ctx, slug); err == nil && existing != nil {
		slug = slug + "-" + time.Now().UTC().Format("20060102150405")
	}

	form := &models.Form{
		Title:       title,
		Description: strings.TrimSpace(description),
		Slug:        slug,
		Fields:      datatypes.JSONSlice[models.FormField]{},
	}
	form.SetConfig(models.DefaultSettings())

	if err := s.forms.Create(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// List returns all forms.
func (s *FormService) List(ctx context.Context) ([]models.Form, error) {
	return s.forms.FindAll(ctx)
}

// Get returns a form by ID.
func (s *FormService) Get(ctx context.Context, id string) (*models.Form, error) {
	form, err := s.forms.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	return form, nil
}

// GetBySlug returns a form by slug for the public render and submit paths.
func (s *FormService) GetBySlug(ctx context.Context, slug string) (*models.Form, error) {
	form, err := s.forms.FindBySlug(ctx, slug)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	return form, nil
}

// FormUpdate is the full save payload from the builder.
type FormUpdate struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Slug        string              `json:"slug"`
	Fields      []models.FormField  `json:"fields"`
	Settings    models.FormSettings `json:"settings"`
}

// Update replaces a form's content with the builder's save payload. Title
// and slug must be non-empty, the slug must match the stored one, and the
// field list is normalized (dense order, applicability rules) before it is
// persisted.
func (s *FormService) Update(ctx context.Context, id string, input FormUpdate) (*models.Form, error) {
	form, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(input.Slug) == "" {
		return nil, ErrSlugRequired
	}
	if input.Slug != form.Slug {
		return nil, ErrSlugImmutable
	}

	fields, err := models.NormalizeFields(input.Fields)
	if err != nil {
		return nil, err
	}

	form.Title = strings.TrimSpace(input.Title)
	form.Description = strings.TrimSpace(input.Description)
	form.Fields = fields
	form.SetConfig(sanitizeSettings(input.Settings))

	if err := s.forms.Save(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// Delete removes a form.
func (s *FormService) Delete(ctx context.Context, id string) error {
	if err := s.forms.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrFormNotFound
		}
		return err
	}
	return nil
}

// Count returns the number of forms.
func (s *FormService) Count(ctx context.Context) (int64, error) {
	return s.forms.Count(ctx)
}

// sanitizeSettings trims and deduplicates notification recipients and backs
// an empty submit label with the default.
func sanitizeSettings(settings models.FormSettings) models.FormSettings {
	if strings.TrimSpace(settings.SubmitButtonText) == "" {
		settings.SubmitButtonText = "Submit"
	}

	seen := map[string]struct{}{}
	emails := make([]string, 0, len(settings.NotifyEmails))
	for _, email := range settings.NotifyEmails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		emails = append(emails, email)
	}
	settings.NotifyEmails = emails
	return settings
}

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

// generateSlug lowercases the name and collapses runs of anything outside
// [a-z0-9] into single hyphens.
func generateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonAlphaNum.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "form"
	}
	return slug
}
