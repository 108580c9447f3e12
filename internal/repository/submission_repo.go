package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/driftlab-studio/studio-cms/internal/models"
)

// SubmissionRepo persists form submissions. Rows are written once by the
// public submit path and only ever read (or deleted wholesale) afterwards.
type SubmissionRepo struct {
	db *gorm.DB
}

func NewSubmissionRepo(db *gorm.DB) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

// Create inserts a new submission.
func (r *SubmissionRepo) Create(ctx context.Context, sub *models.Submission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// FindByForm returns one page of a form's submissions, newest first, along
// with the total count for pagination.
func (r *SubmissionRepo) FindByForm(ctx context.Context, formID string, offset, limit int) ([]models.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{}).Where("form_id = ?", formID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []models.Submission
	err := query.Order("submitted_at DESC").Offset(offset).Limit(limit).Find(&subs).Error
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// FindAllByForm returns every submission for a form, newest first. Used by
// the CSV exporter.
func (r *SubmissionRepo) FindAllByForm(ctx context.Context, formID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("submitted_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// FindByID returns a submission by primary key.
func (r *SubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	if err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// Delete removes a submission by ID.
func (r *SubmissionRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Submission{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByForm removes every submission belonging to a form.
func (r *SubmissionRepo) DeleteByForm(ctx context.Context, formID string) error {
	return r.db.WithContext(ctx).Delete(&models.Submission{}, "form_id = ?", formID).Error
}

// CountByForm returns the number of submissions for one form.
func (r *SubmissionRepo) CountByForm(ctx context.Context, formID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("form_id = ?", formID).
		Count(&count).Error
	return count, err
}

// Count returns the total number of submissions.
func (r *SubmissionRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).Count(&count).Error
	return count, err
}
