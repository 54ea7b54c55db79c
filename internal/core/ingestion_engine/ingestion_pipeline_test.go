package ingestion_engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Specta/internal/models"
	"github.com/markdave123-py/Specta/internal/testutil"
)

const sheet = "Induction motor M3BP 315SMC\n" +
	"Rated Power: 11 ± 0.5 kW\n" +
	"Voltage: 400V\f" +
	"Speed: 1450-1500 rpm\n" +
	"Efficiency: >=95%\f"

func setup(t *testing.T, cfg *IngestConfig, emb *testutil.FakeEmbedder) (*DocumentIngestor, *testutil.FakeDB) {
	t.Helper()
	doc := &models.Document{
		ID:          "doc-1",
		FileName:    "m3bp.txt",
		StorageURL:  "https://specta.s3.us-east-2.amazonaws.com/users/u1/documents/doc-1/m3bp.txt",
		ContentType: "text/plain; charset=utf-8",
		Status:      models.StatusUploaded,
	}
	db := testutil.NewFakeDB(doc)
	obj := testutil.NewFakeObjects()
	obj.Files["specta/users/u1/documents/doc-1/m3bp.txt"] = []byte(sheet)
	var ing *DocumentIngestor
	if emb != nil {
		ing = NewDocumentIngestor(db, obj, emb, NewRoutingExtractor(false), cfg)
	} else {
		ing = NewDocumentIngestor(db, obj, nil, NewRoutingExtractor(false), cfg)
	}
	return ing, db
}

func TestProcessOne_PersistsRecordsInPageOrder(t *testing.T) {
	emb := &testutil.FakeEmbedder{}
	ing, db := setup(t, &IngestConfig{ParseWorkers: 3, BatchSize: 2, EmbedParameters: true}, emb)

	require.NoError(t, ing.ProcessOne(context.Background(), "doc-1"))

	doc, _ := db.GetDocumentByID(context.Background(), "doc-1")
	assert.Equal(t, models.StatusReady, doc.Status)
	assert.Equal(t, "M3BP 315SMC", doc.ModelID)
	assert.Equal(t, 2, doc.PageCount)
	assert.Equal(t, []string{models.StatusProcessing, models.StatusReady}, db.Statuses)

	records, _ := db.GetRecordsByDocument(context.Background(), "doc-1")
	require.Len(t, records, 4)

	var params []string
	for k, r := range records {
		params = append(params, r.Parameter)
		assert.Equal(t, k, r.Position)
		assert.Equal(t, "m3bp.txt", r.SourceDocument)
		assert.Equal(t, "M3BP 315SMC", r.ModelID)
		assert.NotEmpty(t, r.Embedding)
	}
	assert.Equal(t, []string{"Rated Power", "Voltage", "Speed", "Efficiency"}, params)
	assert.Equal(t, 1, records[1].SourcePage)
	assert.Equal(t, 2, records[2].SourcePage)
	assert.Equal(t, "banded", records[0].Shape)
	assert.Equal(t, "range", records[2].Shape)
	assert.Equal(t, "comparison", records[3].Shape)

	// batch size 2 -> two embed calls
	assert.Len(t, emb.Calls, 2)
}

func TestProcessOne_ReplacesPreviousRecords(t *testing.T) {
	ing, db := setup(t, &IngestConfig{ParseWorkers: 2}, nil)

	require.NoError(t, ing.ProcessOne(context.Background(), "doc-1"))
	require.NoError(t, ing.ProcessOne(context.Background(), "doc-1"))

	records, _ := db.GetRecordsByDocument(context.Background(), "doc-1")
	assert.Len(t, records, 4)
	for _, r := range records {
		assert.Empty(t, r.Embedding)
	}
}

func TestProcessOne_EmbeddingFailureIsNotFatal(t *testing.T) {
	emb := &testutil.FakeEmbedder{Err: errors.New("quota")}
	ing, db := setup(t, &IngestConfig{EmbedParameters: true}, emb)

	require.NoError(t, ing.ProcessOne(context.Background(), "doc-1"))

	records, _ := db.GetRecordsByDocument(context.Background(), "doc-1")
	assert.Len(t, records, 4)
}

func TestProcessOne_InsertFailureMarksFailed(t *testing.T) {
	ing, db := setup(t, &IngestConfig{}, nil)
	db.InsertErr = errors.New("disk full")

	err := ing.ProcessOne(context.Background(), "doc-1")
	require.Error(t, err)

	doc, _ := db.GetDocumentByID(context.Background(), "doc-1")
	assert.Equal(t, models.StatusFailed, doc.Status)
}

func TestProcessOne_MissingObjectMarksFailed(t *testing.T) {
	ing, db := setup(t, &IngestConfig{}, nil)
	ing.obj = testutil.NewFakeObjects()

	require.Error(t, ing.ProcessOne(context.Background(), "doc-1"))

	doc, _ := db.GetDocumentByID(context.Background(), "doc-1")
	assert.Equal(t, models.StatusFailed, doc.Status)
}

func TestProcessOne_UnknownDocument(t *testing.T) {
	ing, _ := setup(t, &IngestConfig{}, nil)
	require.Error(t, ing.ProcessOne(context.Background(), "nope"))
}

func TestStartProcessesQueuedDocuments(t *testing.T) {
	ing, db := setup(t, &IngestConfig{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ing.Start(ctx, 2)
	ing.Enqueue("doc-1")

	require.Eventually(t, func() bool {
		doc, _ := db.GetDocumentByID(context.Background(), "doc-1")
		return doc.Status == models.StatusReady
	}, testTimeout, testTick)
}
