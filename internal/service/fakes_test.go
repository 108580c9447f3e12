package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftlab-studio/studio-cms/internal/models"
)

// memFormStore satisfies FormStore in memory, mimicking the repository's
// not-found behavior.
type memFormStore struct {
	forms map[string]*models.Form
}

func newMemFormStore() *memFormStore {
	return &memFormStore{forms: map[string]*models.Form{}}
}

func (s *memFormStore) Create(_ context.Context, form *models.Form) error {
	if form.ID == "" {
		form.ID = uuid.NewString()
	}
	form.CreatedAt = time.Now()
	copied := *form
	s.forms[form.ID] = &copied
	return nil
}

func (s *memFormStore) FindAll(_ context.Context) ([]models.Form, error) {
	out := make([]models.Form, 0, len(s.forms))
	for _, f := range s.forms {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memFormStore) FindByID(_ context.Context, id string) (*models.Form, error) {
	f, ok := s.forms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f
	return &copied, nil
}

func (s *memFormStore) FindBySlug(_ context.Context, slug string) (*models.Form, error) {
	for _, f := range s.forms {
		if f.Slug == slug {
			copied := *f
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memFormStore) Save(_ context.Context, form *models.Form) error {
	if _, ok := s.forms[form.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *form
	s.forms[form.ID] = &copied
	return nil
}

func (s *memFormStore) Delete(_ context.Context, id string) error {
	if _, ok := s.forms[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.forms, id)
	return nil
}

func (s *memFormStore) Count(_ context.Context) (int64, error) {
	return int64(len(s.forms)), nil
}

// memSubmissionStore satisfies SubmissionStore in memory, newest first.
type memSubmissionStore struct {
	subs []*models.Submission
}

func (s *memSubmissionStore) Create(_ context.Context, sub *models.Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	copied := *sub
	s.subs = append([]*models.Submission{&copied}, s.subs...)
	return nil
}

func (s *memSubmissionStore) byForm(formID string) []models.Submission {
	var out []models.Submission
	for _, sub := range s.subs {
		if sub.FormID == formID {
			out = append(out, *sub)
		}
	}
	return out
}

func (s *memSubmissionStore) FindByForm(_ context.Context, formID string, offset, limit int) ([]models.Submission, int64, error) {
	all := s.byForm(formID)
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *memSubmissionStore) FindAllByForm(_ context.Context, formID string) ([]models.Submission, error) {
	return s.byForm(formID), nil
}

func (s *memSubmissionStore) FindByID(_ context.Context, id string) (*models.Submission, error) {
	for _, sub := range s.subs {
		if sub.ID == id {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memSubmissionStore) Delete(_ context.Context, id string) error {
	for i, sub := range s.subs {
		if sub.ID == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *memSubmissionStore) DeleteByForm(_ context.Context, formID string) error {
	kept := s.subs[:0]
	for _, sub := range s.subs {
		if sub.FormID != formID {
			kept = append(kept, sub)
		}
	}
	s.subs = kept
	return nil
}

func (s *memSubmissionStore) CountByForm(_ context.Context, formID string) (int64, error) {
	return int64(len(s.byForm(formID))), nil
}

func (s *memSubmissionStore) Count(_ context.Context) (int64, error) {
	return int64(len(s.subs)), nil
}

// memDocumentStore satisfies DocumentStore in memory.
type memDocumentStore struct {
	docs []*models.Document
}

func (s *memDocumentStore) Create(_ context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.CreatedAt = time.Now()
	copied := *doc
	s.docs = append(s.docs, &copied)
	return nil
}

func (s *memDocumentStore) FindByID(_ context.Context, id string) (*models.Document, error) {
	for _, doc := range s.docs {
		if doc.ID == id {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memDocumentStore) FindBySubmission(_ context.Context, submissionID string) ([]models.Document, error) {
	var out []models.Document
	for _, doc := range s.docs {
		if doc.SubmissionID == submissionID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (s *memDocumentStore) FindAll(_ context.Context) ([]models.Document, error) {
	out := make([]models.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (s *memDocumentStore) Delete(_ context.Context, id string) error {
	for i, doc := range s.docs {
		if doc.ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *memDocumentStore) Count(_ context.Context) (int64, error) {
	return int64(len(s.docs)), nil
}

// memUserStore satisfies UserStore in memory.
type memUserStore struct {
	users []*models.User
}

func (s *memUserStore) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	copied := *user
	s.users = append(s.users, &copied)
	return nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
