package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is an uploaded file. The blob is stored on disk under StorageKey;
// the row carries the metadata the API exposes.
type Document struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	FileName     string    `json:"fileName" gorm:"not null"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	StorageKey   string    `json:"-" gorm:"uniqueIndex;not null"`
	FormID       string    `json:"formId,omitempty" gorm:"type:uuid;index"`
	SubmissionID string    `json:"submissionId,omitempty" gorm:"type:uuid;index"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BeforeCreate assigns a UUID when missing.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
