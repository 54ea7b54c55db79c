// Package testutil holds in-memory implementations of the core interfaces
// for package tests.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/markdave123-py/Specta/internal/core"
	"github.com/markdave123-py/Specta/internal/models"
)

var (
	_ core.DbClient          = (*FakeDB)(nil)
	_ core.ObjectClient      = (*FakeObjects)(nil)
	_ core.EmbeddingProvider = (*FakeEmbedder)(nil)
	_ core.LLMProvider       = (*FakeLLM)(nil)
)

// FakeDB keeps users, documents and records in maps.
type FakeDB struct {
	mu       sync.Mutex
	users    map[string]*models.User
	docs     map[string]*models.Document
	records  map[string][]models.SpecRecord
	Statuses []string

	InsertErr error
}

func NewFakeDB(docs ...*models.Document) *FakeDB {
	db := &FakeDB{
		users:   map[string]*models.User{},
		docs:    map[string]*models.Document{},
		records: map[string][]models.SpecRecord{},
	}
	for _, d := range docs {
		db.docs[d.ID] = d
	}
	return db
}

func (f *FakeDB) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.Email]; ok {
		return fmt.Errorf("duplicate email %s", u.Email)
	}
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *FakeDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *FakeDB) CreateDocument(_ context.Context, d *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *d
	f.docs[d.ID] = &cp
	return nil
}

func (f *FakeDB) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (f *FakeDB) ListDocumentsByUser(_ context.Context, userID string) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Document
	for _, d := range f.docs {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeDB) UpdateDocumentStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	d.Status = status
	f.Statuses = append(f.Statuses, status)
	return nil
}

func (f *FakeDB) SetDocumentModel(_ context.Context, id, modelID string, pageCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	d.ModelID, d.PageCount = modelID, pageCount
	return nil
}

func (f *FakeDB) InsertSpecRecords(_ context.Context, rs []models.SpecRecord) error {
	if f.InsertErr != nil {
		return f.InsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rs {
		f.records[r.DocumentID] = append(f.records[r.DocumentID], r)
	}
	return nil
}

func (f *FakeDB) DeleteSpecRecords(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	return nil
}

func (f *FakeDB) GetRecordsByDocument(_ context.Context, id string) ([]models.SpecRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SpecRecord(nil), f.records[id]...), nil
}

func (f *FakeDB) ListRecordsByParameter(_ context.Context, userID, parameter string) ([]models.SpecRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SpecRecord
	for id, rs := range f.records {
		if d, ok := f.docs[id]; !ok || d.UserID != userID {
			continue
		}
		for _, r := range rs {
			if r.Parameter == parameter {
				out = append(out, r)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DocumentID != out[j].DocumentID {
			return out[i].DocumentID < out[j].DocumentID
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

// SearchRecords ranks embedded records by squared distance to queryVec.
func (f *FakeDB) SearchRecords(_ context.Context, userID string, queryVec []float32, limit int) ([]models.SpecRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SpecRecord
	for id, rs := range f.records {
		if d, ok := f.docs[id]; !ok || d.UserID != userID {
			continue
		}
		for _, r := range rs {
			if len(r.Embedding) == len(queryVec) && len(queryVec) > 0 {
				out = append(out, r)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return distance(out[i].Embedding, queryVec) < distance(out[j].Embedding, queryVec)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func distance(a, b []float32) float32 {
	var d float32
	for k := range a {
		x := a[k] - b[k]
		d += x * x
	}
	return d
}

func (f *FakeDB) Close() error { return nil }

// FakeObjects stores objects under "bucket/key".
type FakeObjects struct {
	mu    sync.Mutex
	Files map[string][]byte
}

func NewFakeObjects() *FakeObjects {
	return &FakeObjects{Files: map[string][]byte{}}
}

func (f *FakeObjects) UploadFile(_ context.Context, bucket, key string, data io.Reader, _ string) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Files[bucket+"/"+key] = b
	return "https://" + bucket + ".s3.us-east-2.amazonaws.com/" + key, nil
}

func (f *FakeObjects) DeleteFile(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Files, bucket+"/"+key)
	return nil
}

func (f *FakeObjects) GetFile(_ context.Context, bucket, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.Files[bucket+"/"+key]
	if !ok {
		return nil, errors.New("no such key: " + key)
	}
	return b, nil
}

func (f *FakeObjects) GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	b, err := f.GetFile(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

// FakeEmbedder maps each text to a one-dimensional vector of its length.
type FakeEmbedder struct {
	mu    sync.Mutex
	Calls [][]string
	Err   error
}

func (f *FakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, texts)
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([][]float32, len(texts))
	for k, t := range texts {
		out[k] = []float32{float32(len(t))}
	}
	return out, nil
}

// FakeLLM echoes the user prompt back.
type FakeLLM struct {
	System string
	User   string
	Err    error
}

func (f *FakeLLM) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.System, f.User = systemPrompt, userPrompt
	if f.Err != nil {
		return "", f.Err
	}
	return "answer: " + userPrompt, nil
}
