package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FormField is one input element (or static content block) in a form.
type FormField struct {
	ID          string    `json:"id"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder,omitempty"`
	HelperText  string    `json:"helperText,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Order       int       `json:"order"`
}

// FormSettings is the form-level submission behavior configuration.
type FormSettings struct {
	SubmitButtonText string   `json:"submitButtonText"`
	SuccessMessage   string   `json:"successMessage"`
	RedirectURL      string   `json:"redirectUrl,omitempty"`
	NotifyEmails     []string `json:"notifyEmails"`
	IsActive         bool     `json:"isActive"`
}

// DefaultSettings returns the settings a freshly created form starts with.
func DefaultSettings() FormSettings {
	return FormSettings{
		SubmitButtonText: "Submit",
		SuccessMessage:   "Thanks! Your response has been recorded.",
		NotifyEmails:     []string{},
		IsActive:         true,
	}
}

// Form is the aggregate root: an ordered field list plus settings, persisted
// as JSONB columns alongside the identifying metadata.
type Form struct {
	ID          string                           `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string                           `json:"title" gorm:"not null"`
	Description string                           `json:"description"`
	Slug        string                           `json:"slug" gorm:"uniqueIndex;not null"`
	Fields      datatypes.JSONSlice[FormField]   `json:"fields" gorm:"type:jsonb"`
	Settings    datatypes.JSONType[FormSettings] `json:"settings" gorm:"type:jsonb"`
	CreatedAt   time.Time                        `json:"createdAt"`
	UpdatedAt   time.Time                        `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when missing.
func (f *Form) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// Config unwraps the settings JSON column.
func (f *Form) Config() FormSettings {
	return f.Settings.Data()
}

// SetConfig replaces the settings JSON column.
func (f *Form) SetConfig(s FormSettings) {
	f.Settings = datatypes.NewJSONType(s)
}

// FieldByID returns the field with the given id, or nil.
func (f *Form) FieldByID(id string) *FormField {
	for i := range f.Fields {
		if f.Fields[i].ID == id {
			return &f.Fields[i]
		}
	}
	return nil
}

// InputFields returns the fields that carry user-entered values, i.e.
// everything except structural heading/paragraph blocks.
func (f *Form) InputFields() []FormField {
	out := make([]FormField, 0, len(f.Fields))
	for _, field := range f.Fields {
		if !field.Type.Structural() {
			out = append(out, field)
		}
	}
	return out
}

// tableColumnLimit bounds the submission table width in the admin viewer.
const tableColumnLimit = 4

// TableFields returns the first input fields shown as columns in the
// submission list view.
func (f *Form) TableFields() []FormField {
	fields := f.InputFields()
	if len(fields) > tableColumnLimit {
		fields = fields[:tableColumnLimit]
	}
	return fields
}
