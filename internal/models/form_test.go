package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleForm() Form {
	form := Form{
		ID:    "f1",
		Title: "Contact",
		Slug:  "contact",
		Fields: []FormField{
			{ID: "h", Type: FieldHeading, Label: "Get in touch", Order: 0},
			{ID: "n", Type: FieldText, Label: "Name", Order: 1},
			{ID: "e", Type: FieldEmail, Label: "Email", Order: 2},
			{ID: "p", Type: FieldPhone, Label: "Phone", Order: 3},
			{ID: "m", Type: FieldTextarea, Label: "Message", Order: 4},
			{ID: "c", Type: FieldCheckbox, Label: "Topics", Options: []string{"Web", "Print"}, Order: 5},
		},
	}
	form.SetConfig(DefaultSettings())
	return form
}

func TestInputFieldsSkipStructural(t *testing.T) {
	form := sampleForm()
	inputs := form.InputFields()
	require.Len(t, inputs, 5)
	for _, f := range inputs {
		assert.False(t, f.Type.Structural())
	}
}

func TestTableFieldsCapped(t *testing.T) {
	form := sampleForm()
	cols := form.TableFields()
	require.Len(t, cols, 4)
	assert.Equal(t, "Name", cols[0].Label)
	assert.Equal(t, "Message", cols[3].Label)
}

func TestFieldByID(t *testing.T) {
	form := sampleForm()
	require.NotNil(t, form.FieldByID("e"))
	assert.Equal(t, "Email", form.FieldByID("e").Label)
	assert.Nil(t, form.FieldByID("missing"))
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "Submit", s.SubmitButtonText)
	assert.True(t, s.IsActive)
	assert.NotNil(t, s.NotifyEmails)
	assert.Empty(t, s.RedirectURL)
}

func TestConfigRoundTrip(t *testing.T) {
	form := sampleForm()
	s := form.Config()
	s.IsActive = false
	s.NotifyEmails = []string{"team@studio.local"}
	form.SetConfig(s)

	got := form.Config()
	assert.False(t, got.IsActive)
	assert.Equal(t, []string{"team@studio.local"}, got.NotifyEmails)
}
