package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/driftlab-studio/studio-cms/internal/models"
)

// DocumentRepo persists uploaded file metadata.
type DocumentRepo struct {
	db *gorm.DB
}

func NewDocumentRepo(db *gorm.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Create inserts a new document row.
func (r *DocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// FindByID returns a document by primary key.
func (r *DocumentRepo) FindByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindBySubmission returns the documents attached to one submission.
func (r *DocumentRepo) FindBySubmission(ctx context.Context, submissionID string) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// FindAll returns every document, newest first.
func (r *DocumentRepo) FindAll(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Delete removes a document row by ID.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Document{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count returns the total number of documents.
func (r *DocumentRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Document{}).Count(&count).Error
	return count, err
}
