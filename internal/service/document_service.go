package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/driftlab-studio/studio-cms/internal/models"
	"github.com/driftlab-studio/studio-cms/internal/repository"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore is the persistence contract for document metadata.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id string) (*models.Document, error)
	FindBySubmission(ctx context.Context, submissionID string) ([]models.Document, error)
	FindAll(ctx context.Context) ([]models.Document, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// DocumentService stores uploaded blobs on disk under generated keys and
// records their metadata.
type DocumentService struct {
	docs DocumentStore
	dir  string
}

// NewDocumentService creates the upload directory if needed.
func NewDocumentService(docs DocumentStore, dir string) (*DocumentService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DocumentService{docs: docs, dir: dir}, nil
}

// Store writes the blob to disk and records the document row. The file is
// removed again if the row cannot be created.
func (s *DocumentService) Store(ctx context.Context, filename, contentType string, content []byte, formID, submissionID string) (*models.Document, error) {
	key := uuid.NewString() + filepath.Ext(filename)
	path := filepath.Join(s.dir, key)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("write blob: %w", err)
	}

	doc := &models.Document{
		FileName:     filename,
		ContentType:  contentType,
		Size:         int64(len(content)),
		StorageKey:   key,
		FormID:       formID,
		SubmissionID: submissionID,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		os.Remove(path)
		return nil, err
	}
	return doc, nil
}

// Open returns a document's metadata and the path of its blob.
func (s *DocumentService) Open(ctx context.Context, id string) (*models.Document, string, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", ErrDocumentNotFound
		}
		return nil, "", err
	}
	return doc, filepath.Join(s.dir, doc.StorageKey), nil
}

// List returns every stored document.
func (s *DocumentService) List(ctx context.Context) ([]models.Document, error) {
	return s.docs.FindAll(ctx)
}

// ListBySubmission returns the documents attached to one submission.
func (s *DocumentService) ListBySubmission(ctx context.Context, submissionID string) ([]models.Document, error) {
	return s.docs.FindBySubmission(ctx, submissionID)
}

// Delete removes the row and its blob. A missing blob is not an error; the
// row is authoritative.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrDocumentNotFound
		}
		return err
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}
	os.Remove(filepath.Join(s.dir, doc.StorageKey))
	return nil
}

// Count returns the total number of documents.
func (s *DocumentService) Count(ctx context.Context) (int64, error) {
	return s.docs.Count(ctx)
}
