package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/markdave123-py/Specta/internal/api/middlewares"
	"github.com/markdave123-py/Specta/internal/models"
	"github.com/markdave123-py/Specta/internal/services"
	"github.com/markdave123-py/Specta/internal/testutil"
)

const (
	motorDoc   = "0b6f8a52-3c1e-4d2a-9f57-2a41c9e0d101"
	otherDoc   = "0b6f8a52-3c1e-4d2a-9f57-2a41c9e0d102"
	pendingDoc = "0b6f8a52-3c1e-4d2a-9f57-2a41c9e0d103"
)

type queue struct{ ids []string }

func (q *queue) Start(context.Context, int) {}

func (q *queue) Enqueue(id string) { q.ids = append(q.ids, id) }

func (q *queue) ProcessOne(context.Context, string) error { return nil }

type fixture struct {
	db     *testutil.FakeDB
	obj    *testutil.FakeObjects
	llm    *testutil.FakeLLM
	queue  *queue
	router chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db: testutil.NewFakeDB(
			&models.Document{ID: motorDoc, UserID: "u1", FileName: "m3bp.pdf", ModelID: "M3BP 315SMC", Status: models.StatusReady},
			&models.Document{ID: otherDoc, UserID: "u2", FileName: "other.pdf", Status: models.StatusReady},
			&models.Document{ID: pendingDoc, UserID: "u1", FileName: "pending.pdf", Status: models.StatusProcessing},
		),
		obj:   testutil.NewFakeObjects(),
		llm:   &testutil.FakeLLM{},
		queue: &queue{},
	}
	v, unit := 400.0, "V"
	require.NoError(t, f.db.InsertSpecRecords(context.Background(), []models.SpecRecord{
		{DocumentID: motorDoc, SourceDocument: "m3bp.pdf", ModelID: "M3BP 315SMC", Parameter: "Voltage",
			RawValue: "400V", Unit: &unit, SourcePage: 1, Shape: "scalar", Value: &v, Embedding: []float32{7}},
	}))

	docs := services.NewDocumentService(f.db, f.obj, "specta")
	auth := NewAuthHandler(services.NewUserService(f.db), "secret")
	docH := NewDocumentHandler(docs, f.queue)
	recH := NewRecordHandler(services.NewRecordService(f.db, &testutil.FakeEmbedder{}))
	chatH := NewChatHandler(docs, f.llm)

	r := chi.NewRouter()
	r.Post("/api/signup", auth.Signup)
	r.Post("/api/login", auth.Login)
	r.Group(func(p chi.Router) {
		p.Use(appMiddleware.JWTMiddleware("secret"))
		p.Post("/api/documents/upload", docH.UploadDocument)
		p.Get("/api/documents", docH.GetDocuments)
		p.Get("/api/documents/{id}/records", docH.GetRecords)
		p.Get("/api/documents/{id}/export", docH.Export)
		p.Get("/api/documents/{id}/file", docH.Download)
		p.Get("/api/records/search", recH.Search)
		p.Get("/api/records", recH.ByParameter)
		p.Post("/api/chat/query", chatH.QueryDocument)
	})
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request, userID string) *httptest.ResponseRecorder {
	t.Helper()
	if userID != "" {
		token, err := appMiddleware.IssueToken("secret", userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t)
	body := `{"first_name":"Ada","email":"ada@example.com","password":"pw"}`

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body)), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body)), "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body)), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out["token"])

	bad := `{"email":"ada@example.com","password":"nope"}`
	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(bad)), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("{")), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadDocument(t *testing.T) {
	f := newFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "sheet.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("Voltage: 400V"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := f.do(t, req, "u1")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var doc models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, models.StatusUploaded, doc.Status)
	assert.Equal(t, []string{doc.ID}, f.queue.ids)
	assert.Contains(t, f.obj.Files, "specta/users/u1/documents/"+doc.ID+"/sheet.txt")

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.ID+"/file", nil), "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Voltage: 400V", rec.Body.String())

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.ID+"/file", nil), "u2")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/documents/upload", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetDocumentsAndRecords(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/documents", nil), "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	assert.Len(t, docs, 2)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+motorDoc+"/records", nil), "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"parameter":"Voltage"`)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+otherDoc+"/records", nil), "u1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedDocumentID(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{
		"/api/documents/d1/records",
		"/api/documents/42/export?format=csv",
		"/api/documents/not-a-uuid/file",
	} {
		rec := f.do(t, httptest.NewRequest(http.MethodGet, path, nil), "u1")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	body := `{"document_id":"d1","query":"voltage?"}`
	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/chat/query", strings.NewReader(body)), "u1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.llm.User)
}

func TestExport(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+motorDoc+"/export?format=csv", nil), "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "source_document,"))
	assert.Contains(t, f.obj.Files, "specta/exports/u1/"+motorDoc+".csv")

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+motorDoc+"/export?format=xml", nil), "u1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContentDispositionFilename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const name = `Motor "W22" Ø 5.pdf`
	const id = "0b6f8a52-3c1e-4d2a-9f57-2a41c9e0d104"
	url, err := f.obj.UploadFile(ctx, "specta", "users/u1/documents/"+id+"/sheet.pdf", strings.NewReader("%PDF"), "application/pdf")
	require.NoError(t, err)
	require.NoError(t, f.db.CreateDocument(ctx, &models.Document{
		ID: id, UserID: "u1", FileName: name, StorageURL: url, Status: models.StatusReady,
	}))

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/file", nil), "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, name, params["filename"])

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+motorDoc+"/export?format=jsonl", nil), "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	_, params, err = mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, motorDoc+".jsonl", params["filename"])
}

func TestRecordQueries(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/records/search?q=voltage&limit=3", nil), "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"parameter":"Voltage"`)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/records/search?q=x&limit=abc", nil), "u1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/records?parameter=Voltage", nil), "u2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"records":[]}`, rec.Body.String())

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/records", nil), "u1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryDocument(t *testing.T) {
	f := newFixture(t)

	body := `{"document_id":"` + motorDoc + `","query":"What is the voltage?"}`
	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/chat/query", strings.NewReader(body)), "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, f.llm.User, "- Voltage = 400V (page 1)")
	assert.Contains(t, f.llm.User, "Question: What is the voltage?")

	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/chat/query", strings.NewReader(body)), "u2")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	pending := `{"document_id":"` + pendingDoc + `","query":"speed?"}`
	rec = f.do(t, httptest.NewRequest(http.MethodPost, "/api/chat/query", strings.NewReader(pending)), "u1")
	assert.Equal(t, http.StatusConflict, rec.Code)
}
