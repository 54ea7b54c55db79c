package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/Specta/internal/core"
	objectclient "github.com/markdave123-py/Specta/internal/core/object-client"
	"github.com/markdave123-py/Specta/internal/export"
	"github.com/markdave123-py/Specta/internal/models"
)

// ErrNotFound is returned when a document does not exist or belongs to another user.
var ErrNotFound = errors.New("document not found")

type DocumentService struct {
	db      core.DbClient
	storage core.ObjectClient
	bucket  string
}

func NewDocumentService(db core.DbClient, storage core.ObjectClient, bucket string) *DocumentService {
	return &DocumentService{db: db, storage: storage, bucket: bucket}
}

// UploadAndCreate stores the file and creates its document row in the uploaded state.
func (s *DocumentService) UploadAndCreate(ctx context.Context, userID, filename, contentType string, data io.Reader, sourceType string) (*models.Document, error) {
	docID := uuid.NewString()
	key := s.objectKey(userID, docID, filename)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := s.storage.UploadFile(ctx, s.bucket, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:          docID,
		UserID:      userID,
		FileName:    filename,
		StorageURL:  url,
		SourceType:  sourceType, // "upload" or "batch"
		ContentType: contentType,
		Status:      models.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.CreateDocument(ctx, doc); err != nil {
		if derr := s.storage.DeleteFile(ctx, s.bucket, key); derr != nil {
			log.Printf("DocumentService: orphaned object %s: %v", key, derr)
		}
		return nil, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// Open streams the original upload; the caller closes the reader.
func (s *DocumentService) Open(ctx context.Context, doc *models.Document) (io.ReadCloser, error) {
	bucket, key := objectclient.ParseS3URL(doc.StorageURL)
	return s.storage.GetObjectReader(ctx, bucket, key)
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.db.GetDocumentByID(ctx, id)
}

// GetOwned returns the document only if userID owns it. Ids that are not
// UUIDs cannot name a document and never reach the database.
func (s *DocumentService) GetOwned(ctx context.Context, userID, id string) (*models.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	doc, err := s.db.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.UserID != userID {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *DocumentService) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	return s.db.ListDocumentsByUser(ctx, userID)
}

func (s *DocumentService) SetStatus(ctx context.Context, docID string, status string) error {
	return s.db.UpdateDocumentStatus(ctx, docID, status)
}

func (s *DocumentService) Records(ctx context.Context, docID string) ([]models.SpecRecord, error) {
	return s.db.GetRecordsByDocument(ctx, docID)
}

// Export renders the document's records in format f, keeps a copy in object
// storage under exports/ and writes the same bytes to w.
func (s *DocumentService) Export(ctx context.Context, doc *models.Document, f export.Format, w io.Writer) (string, error) {
	records, err := s.db.GetRecordsByDocument(ctx, doc.ID)
	if err != nil {
		return "", fmt.Errorf("load records: %w", err)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, f, records); err != nil {
		return "", err
	}

	key := path.Join("exports", doc.UserID, doc.ID+"."+string(f))
	url, err := s.storage.UploadFile(ctx, s.bucket, key, bytes.NewReader(buf.Bytes()), f.ContentType())
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return url, err
	}
	return url, nil
}

// objectKey creates a consistent S3 key layout.
func (s *DocumentService) objectKey(userID, docID, filename string) string {
	filename = strings.TrimSpace(path.Base(filename))
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("users", userID, "documents", docID, filename)
}
