package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/driftlab-studio/studio-cms/internal/models"
)

// FormRepo persists form definitions.
type FormRepo struct {
	db *gorm.DB
}

func NewFormRepo(db *gorm.DB) *FormRepo {
	return &FormRepo{db: db}
}

// Create inserts a new form.
func (r *FormRepo) Create(ctx context.Context, form *models.Form) error {
	return r.db.WithContext(ctx).Create(form).Error
}

// FindAll returns every form, newest first.
func (r *FormRepo) FindAll(ctx context.Context) ([]models.Form, error) {
	var forms []models.Form
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&forms).Error
	if err != nil {
		return nil, err
	}
	return forms, nil
}

// FindByID returns a form by primary key.
func (r *FormRepo) FindByID(ctx context.Context, id string) (*models.Form, error) {
	var form models.Form
	if err := r.db.WithContext(ctx).First(&form, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

// FindBySlug returns a form by its URL slug.
func (r *FormRepo) FindBySlug(ctx context.Context, slug string) (*models.Form, error) {
	var form models.Form
	if err := r.db.WithContext(ctx).First(&form, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

// Save persists the full form document.
func (r *FormRepo) Save(ctx context.Context, form *models.Form) error {
	return r.db.WithContext(ctx).Save(form).Error
}

// Delete removes a form by ID.
func (r *FormRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Form{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count returns the number of forms.
func (r *FormRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Form{}).Count(&count).Error
	return count, err
}
