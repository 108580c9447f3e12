package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmissionFile records one uploaded file attached to a submission. The
// blob itself lives in the document store; this is the per-field linkage.
type SubmissionFile struct {
	FieldID     string `json:"fieldId"`
	DocumentID  string `json:"documentId"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}

// Submission is one end-user response to a form. Data maps field ids to the
// submitted value: a string, or a list of strings for checkbox fields.
// Submissions are created by the public submit path and never mutated.
type Submission struct {
	ID          string                              `json:"id" gorm:"type:uuid;primaryKey"`
	FormID      string                              `json:"formId" gorm:"type:uuid;not null;index"`
	Data        datatypes.JSONMap                   `json:"data" gorm:"type:jsonb"`
	Files       datatypes.JSONSlice[SubmissionFile] `json:"files,omitempty" gorm:"type:jsonb"`
	SubmittedAt time.Time                           `json:"submittedAt" gorm:"index"`
	IP          string                              `json:"ip,omitempty"`
}

// BeforeCreate assigns defaults for new submissions.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now().UTC()
	}
	return nil
}
