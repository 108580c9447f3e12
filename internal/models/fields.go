package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// FieldType identifies the kind of input (or static content block) a
// FormField renders as. The set is closed: every consumer switches over
// these values and unknown types are rejected at construction.
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldEmail     FieldType = "email"
	FieldPhone     FieldType = "phone"
	FieldTextarea  FieldType = "textarea"
	FieldSelect    FieldType = "select"
	FieldRadio     FieldType = "radio"
	FieldCheckbox  FieldType = "checkbox"
	FieldFile      FieldType = "file"
	FieldHeading   FieldType = "heading"
	FieldParagraph FieldType = "paragraph"
)

// FieldCategory groups field types in the authoring palette.
type FieldCategory string

const (
	CategoryBasic    FieldCategory = "basic"
	CategoryChoice   FieldCategory = "choice"
	CategoryContent  FieldCategory = "content"
	CategoryAdvanced FieldCategory = "advanced"
)

// ErrUnknownFieldType is returned when a field is constructed or normalized
// with a type outside the closed set.
var ErrUnknownFieldType = errors.New("unknown field type")

// FieldSpec is the fixed display and applicability metadata for one field
// type. Applicability is data, not computed: structural types never carry
// required/placeholder/options, choice types always carry options.
type FieldSpec struct {
	Label        string
	Icon         string
	Category     FieldCategory
	HasOptions   bool
	Structural   bool
	DefaultLabel string
}

var fieldSpecs = map[FieldType]FieldSpec{
	FieldText:      {Label: "Short Text", Icon: "type", Category: CategoryBasic, DefaultLabel: "Untitled Question"},
	FieldEmail:     {Label: "Email", Icon: "mail", Category: CategoryBasic, DefaultLabel: "Untitled Question"},
	FieldPhone:     {Label: "Phone", Icon: "phone", Category: CategoryBasic, DefaultLabel: "Untitled Question"},
	FieldTextarea:  {Label: "Long Text", Icon: "align-left", Category: CategoryBasic, DefaultLabel: "Untitled Question"},
	FieldSelect:    {Label: "Dropdown", Icon: "chevron-down", Category: CategoryChoice, HasOptions: true, DefaultLabel: "Untitled Question"},
	FieldRadio:     {Label: "Multiple Choice", Icon: "circle-dot", Category: CategoryChoice, HasOptions: true, DefaultLabel: "Untitled Question"},
	FieldCheckbox:  {Label: "Checkboxes", Icon: "check-square", Category: CategoryChoice, HasOptions: true, DefaultLabel: "Untitled Question"},
	FieldFile:      {Label: "File Upload", Icon: "upload", Category: CategoryAdvanced, DefaultLabel: "Untitled Question"},
	FieldHeading:   {Label: "Heading", Icon: "heading", Category: CategoryContent, Structural: true, DefaultLabel: "Section heading"},
	FieldParagraph: {Label: "Paragraph", Icon: "text", Category: CategoryContent, Structural: true, DefaultLabel: "Paragraph text"},
}

// FieldTypes returns the closed set in palette order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldText, FieldEmail, FieldPhone, FieldTextarea,
		FieldSelect, FieldRadio, FieldCheckbox,
		FieldFile, FieldHeading, FieldParagraph,
	}
}

// Valid reports whether t is a member of the closed type set.
func (t FieldType) Valid() bool {
	_, ok := fieldSpecs[t]
	return ok
}

// Spec returns the fixed metadata for a field type. The zero FieldSpec is
// returned for unknown types; callers that care must check Valid first.
func (t FieldType) Spec() FieldSpec {
	return fieldSpecs[t]
}

// Structural reports whether the type is a static content block that carries
// no user-entered value and is excluded from submission payloads.
func (t FieldType) Structural() bool {
	return fieldSpecs[t].Structural
}

// NewField constructs a field of the given type at the given order position
// with a generated id and per-type defaults. Unknown types are a programming
// error and rejected here, at the boundary.
func NewField(t FieldType, order int) (FormField, error) {
	spec, ok := fieldSpecs[t]
	if !ok {
		return FormField{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, t)
	}

	field := FormField{
		ID:    uuid.NewString(),
		Type:  t,
		Label: spec.DefaultLabel,
		Order: order,
	}
	if spec.HasOptions {
		field.Options = []string{"Option 1"}
	}
	return field, nil
}

// NormalizeFields prepares an incoming field list for persistence: ids are
// assigned where missing, properties that do not apply to a type are
// cleared, and order is renumbered densely by array position. Unknown field
// types fail the whole batch.
func NormalizeFields(fields []FormField) ([]FormField, error) {
	out := make([]FormField, len(fields))
	for i, f := range fields {
		spec, ok := fieldSpecs[f.Type]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFieldType, f.Type)
		}
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if spec.Structural {
			f.Required = false
			f.Placeholder = ""
			f.HelperText = ""
		}
		if !spec.HasOptions {
			f.Options = nil
		} else if f.Options == nil {
			f.Options = []string{}
		}
		f.Order = i
		out[i] = f
	}
	return out, nil
}
