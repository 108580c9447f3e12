// Package builder is the form authoring engine. A Builder owns an in-memory
// copy of one form and mutates it through discrete operations; nothing
// touches the network until Save. Field order values stay dense (0..n-1)
// across every structural change.
//
// A Builder is single-owner state, not safe for concurrent use.
package builder

import (
	"context"
	"errors"
	"strings"

	"github.com/driftlab-studio/studio-cms/internal/models"
)

var (
	// ErrTitleRequired aborts Save before any network call.
	ErrTitleRequired = errors.New("form title is required")
	// ErrSlugRequired aborts Save before any network call.
	ErrSlugRequired = errors.New("form slug is required")
)

// FormStore persists the full form on Save. The HTTP-backed implementation
// lives in this package; services can satisfy it directly in-process.
type FormStore interface {
	Update(ctx context.Context, form models.Form) error
}

// Direction selects a MoveField neighbor.
type Direction int

const (
	MoveUp Direction = iota
	MoveDown
)

// FieldPatch carries partial field updates; nil members are left untouched.
type FieldPatch struct {
	Label       *string
	Placeholder *string
	HelperText  *string
	Required    *bool
	Options     *[]string
}

// Builder edits one form. Mutations are local until Save.
type Builder struct {
	form     models.Form
	settings models.FormSettings
	selected string
	store    FormStore
}

// New returns a builder editing a copy of the given form.
func New(form models.Form, store FormStore) *Builder {
	b := &Builder{form: form, settings: form.Config(), store: store}
	fields := make([]models.FormField, len(form.Fields))
	copy(fields, form.Fields)
	b.form.Fields = fields
	b.renumber()
	return b
}

// Form returns the current in-memory form, settings included. The preview
// path renders exactly this, so the author sees unsaved edits.
func (b *Builder) Form() models.Form {
	form := b.form
	form.SetConfig(b.settings)
	return form
}

// Fields returns the current in-memory field list.
func (b *Builder) Fields() []models.FormField {
	return b.form.Fields
}

// Settings returns the current in-memory settings.
func (b *Builder) Settings() models.FormSettings {
	return b.settings
}

// Selected returns the id of the field currently selected for editing.
func (b *Builder) Selected() string {
	return b.selected
}

// Select marks a field as the editing target; unknown ids clear selection.
func (b *Builder) Select(fieldID string) {
	if b.indexOf(fieldID) < 0 {
		b.selected = ""
		return
	}
	b.selected = fieldID
}

// AddField appends a new field of the given type and selects it.
func (b *Builder) AddField(t models.FieldType) (models.FormField, error) {
	field, err := models.NewField(t, len(b.form.Fields))
	if err != nil {
		return models.FormField{}, err
	}
	b.form.Fields = append(b.form.Fields, field)
	b.selected = field.ID
	return field, nil
}

// UpdateField merges a partial patch into the matching field. Missing ids
// are a no-op. Properties that do not apply to the field's type are ignored.
func (b *Builder) UpdateField(fieldID string, patch FieldPatch) {
	i := b.indexOf(fieldID)
	if i < 0 {
		return
	}
	field := &b.form.Fields[i]
	spec := field.Type.Spec()

	if patch.Label != nil {
		field.Label = *patch.Label
	}
	if !spec.Structural {
		if patch.Placeholder != nil {
			field.Placeholder = *patch.Placeholder
		}
		if patch.HelperText != nil {
			field.HelperText = *patch.HelperText
		}
		if patch.Required != nil {
			field.Required = *patch.Required
		}
	}
	if spec.HasOptions && patch.Options != nil {
		field.Options = append([]string(nil), (*patch.Options)...)
	}
}

// DeleteField removes a field, renumbering the remainder. Deleting the
// selected field clears the selection.
func (b *Builder) DeleteField(fieldID string) {
	i := b.indexOf(fieldID)
	if i < 0 {
		return
	}
	b.form.Fields = append(b.form.Fields[:i], b.form.Fields[i+1:]...)
	if b.selected == fieldID {
		b.selected = ""
	}
	b.renumber()
}

// MoveField swaps the field with its immediate neighbor. Moving the first
// field up or the last field down is a no-op.
func (b *Builder) MoveField(fieldID string, dir Direction) {
	i := b.indexOf(fieldID)
	if i < 0 {
		return
	}
	j := i + 1
	if dir == MoveUp {
		j = i - 1
	}
	if j < 0 || j >= len(b.form.Fields) {
		return
	}
	b.form.Fields[i], b.form.Fields[j] = b.form.Fields[j], b.form.Fields[i]
	b.form.Fields[i].Order = i
	b.form.Fields[j].Order = j
}

// DuplicateField clones a field's content into a new field with a fresh id,
// appending it at the end with a " (Copy)" label suffix.
func (b *Builder) DuplicateField(fieldID string) (models.FormField, bool) {
	i := b.indexOf(fieldID)
	if i < 0 {
		return models.FormField{}, false
	}
	src := b.form.Fields[i]

	clone, err := models.NewField(src.Type, len(b.form.Fields))
	if err != nil {
		return models.FormField{}, false
	}
	clone.Label = src.Label + " (Copy)"
	clone.Placeholder = src.Placeholder
	clone.HelperText = src.HelperText
	clone.Required = src.Required
	if src.Options != nil {
		clone.Options = append([]string(nil), src.Options...)
	} else {
		clone.Options = nil
	}

	b.form.Fields = append(b.form.Fields, clone)
	return clone, true
}

// SetTitle replaces the form title.
func (b *Builder) SetTitle(title string) { b.form.Title = title }

// SetDescription replaces the form description.
func (b *Builder) SetDescription(desc string) { b.form.Description = desc }

// SetSubmitButtonText replaces the submit button label.
func (b *Builder) SetSubmitButtonText(text string) { b.settings.SubmitButtonText = text }

// SetSuccessMessage replaces the post-submit message.
func (b *Builder) SetSuccessMessage(msg string) { b.settings.SuccessMessage = msg }

// SetRedirectURL replaces the post-submit redirect target.
func (b *Builder) SetRedirectURL(url string) { b.settings.RedirectURL = url }

// SetActive toggles whether the form accepts submissions.
func (b *Builder) SetActive(active bool) { b.settings.IsActive = active }

// AddNotifyEmail adds a notification recipient. The address is trimmed of
// whitespace; adding an address already present is a no-op.
func (b *Builder) AddNotifyEmail(email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		return
	}
	for _, existing := range b.settings.NotifyEmails {
		if existing == email {
			return
		}
	}
	b.settings.NotifyEmails = append(b.settings.NotifyEmails, email)
}

// RemoveNotifyEmail removes recipients matching the exact string.
func (b *Builder) RemoveNotifyEmail(email string) {
	out := b.settings.NotifyEmails[:0]
	for _, existing := range b.settings.NotifyEmails {
		if existing != email {
			out = append(out, existing)
		}
	}
	b.settings.NotifyEmails = out
}

// Save validates the title and slug, then sends the full form to the store.
// Validation failures abort before any network call.
func (b *Builder) Save(ctx context.Context) error {
	if strings.TrimSpace(b.form.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(b.form.Slug) == "" {
		return ErrSlugRequired
	}
	return b.store.Update(ctx, b.Form())
}

func (b *Builder) indexOf(fieldID string) int {
	for i := range b.form.Fields {
		if b.form.Fields[i].ID == fieldID {
			return i
		}
	}
	return -1
}

func (b *Builder) renumber() {
	for i := range b.form.Fields {
		b.form.Fields[i].Order = i
	}
}
