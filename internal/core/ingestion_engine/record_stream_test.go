package ingestion_engine

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Specta/internal/core"
	specparser "github.com/markdave123-py/Specta/internal/core/spec-parser"
)

const (
	testTimeout = 2 * time.Second
	testTick    = 10 * time.Millisecond
)

func TestParseDocument_OrderAndModel(t *testing.T) {
	var pages []core.Page
	for k := 0; k < 20; k++ {
		pages = append(pages, core.Page{Index: k, Text: fmt.Sprintf("Param %d: %d kW", k, k)})
	}
	pages[7].Text += "\nOrder code 1LE1003-1DB23-4AA4"

	modelID, records, err := ParseDocument(context.Background(), pages, ParseOptions{Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, "1LE1003-1DB23-4AA4", modelID)
	require.Len(t, records, 20)
	for k, r := range records {
		assert.Equal(t, k+1, r.SourcePage)
		assert.Equal(t, fmt.Sprintf("Param %d", k), r.Parameter)
		assert.Equal(t, specparser.Scalar{Value: float64(k)}, r.Value)
		assert.Equal(t, modelID, r.ModelID)
	}
}

func TestParseDocument_Empty(t *testing.T) {
	modelID, records, err := ParseDocument(context.Background(), nil, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, specparser.UnknownModel, modelID)
	assert.Empty(t, records)
}

func TestParseDocument_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages := []core.Page{{Index: 0, Text: "Voltage: 400V"}, {Index: 1, Text: "Speed: 1450 rpm"}}
	_, _, err := ParseDocument(ctx, pages, ParseOptions{Workers: 1})
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestParseDocument_SectionOnly(t *testing.T) {
	pages := []core.Page{
		{Index: 0, Text: "Overview: 3 pages\nTechnical specifications\nRated power: 11\nkW"},
		{Index: 1, Text: "Weight: 80 kg"},
	}

	_, records, err := ParseDocument(context.Background(), pages, ParseOptions{SectionOnly: true})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Rated Power", records[0].Parameter)
	assert.Equal(t, "kW", records[0].Unit)
	assert.Equal(t, "Weight", records[1].Parameter)
}

func TestSplitPages(t *testing.T) {
	pages := SplitPages("a: 1\fb: 2\f")
	require.Len(t, pages, 2)
	assert.Equal(t, core.Page{Index: 1, Text: "b: 2"}, pages[1])

	single := SplitPages("no feeds")
	require.Len(t, single, 1)
	assert.Equal(t, 0, single[0].Index)
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectContentType([]byte("%PDF-1.7\n"), "application/octet-stream"))
	assert.Equal(t, "application/pdf", DetectContentType(nil, "Application/PDF"))
	assert.Equal(t, "text/plain", DetectContentType([]byte("x"), "text/plain; charset=utf-8"))
	assert.Equal(t, "", DetectContentType([]byte("x"), "not a media type;;"))
}

func TestRoutingExtractor_PlainText(t *testing.T) {
	pages, err := NewRoutingExtractor(false).ExtractPages(context.Background(), []byte("Voltage: 400V\fSpeed: 1450 rpm"), "text/plain")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.True(t, strings.HasPrefix(pages[1].Text, "Speed"))
}

func TestPDFPageExtractor_RejectsGarbage(t *testing.T) {
	_, err := NewPDFPageExtractor().ExtractPages(context.Background(), nil, "application/pdf")
	require.Error(t, err)

	_, err = NewPDFPageExtractor().ExtractPages(context.Background(), []byte("not a pdf at all"), "application/pdf")
	require.Error(t, err)
}
