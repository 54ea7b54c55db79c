package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"

	"github.com/markdave123-py/Specta/internal/core"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeText = "text/plain"
)

var (
	_ core.PageExtractor = (*DocconvExtractor)(nil)
	_ core.PageExtractor = (*PDFPageExtractor)(nil)
	_ core.PageExtractor = (*RoutingExtractor)(nil)
)

// DocconvExtractor implements core.PageExtractor using sajari/docconv.
// Form feeds in the converted body separate pages.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

func (e *DocconvExtractor) ExtractPages(ctx context.Context, data []byte, contentType string) ([]core.Page, error) {
	res, err := docconv.Convert(bytes.NewReader(data), contentType, e.useReadability)
	if err != nil {
		return nil, fmt.Errorf("docconv: extraction failed for content type %q: %w", contentType, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(res.Body) == "" {
		log.Printf("docconv: extracted empty text for content type '%s'", contentType)
	}
	return SplitPages(res.Body), nil
}

// PDFPageExtractor reads the text layer of each PDF page with ledongthuc/pdf.
type PDFPageExtractor struct{}

func NewPDFPageExtractor() *PDFPageExtractor {
	return &PDFPageExtractor{}
}

func (e *PDFPageExtractor) ExtractPages(ctx context.Context, data []byte, _ string) ([]core.Page, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	fonts := make(map[string]*pdf.Font)
	pages := make([]core.Page, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := pageText(p, fonts)
		if err != nil {
			log.Printf("PDFPageExtractor: skipping page %d: %v", i, err)
			continue
		}
		pages = append(pages, core.Page{Index: i - 1, Text: text})
	}
	return pages, nil
}

// pageText extracts one page, turning decoder panics on malformed streams into errors.
func pageText(p pdf.Page, fonts map[string]*pdf.Font) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read page: %v", r)
		}
	}()
	for _, name := range p.Fonts() {
		if _, ok := fonts[name]; !ok {
			f := p.Font(name)
			fonts[name] = &f
		}
	}
	return p.GetPlainText(fonts)
}

// RoutingExtractor picks an extractor by content type. PDFs are also
// recognised by their magic bytes when the upload carried no useful type.
type RoutingExtractor struct {
	pdf      core.PageExtractor
	fallback core.PageExtractor
}

func NewRoutingExtractor(useReadability bool) *RoutingExtractor {
	return &RoutingExtractor{pdf: NewPDFPageExtractor(), fallback: NewDocconvExtractor(useReadability)}
}

func (e *RoutingExtractor) ExtractPages(ctx context.Context, data []byte, contentType string) ([]core.Page, error) {
	switch DetectContentType(data, contentType) {
	case contentTypePDF:
		return e.pdf.ExtractPages(ctx, data, contentTypePDF)
	case contentTypeText:
		return SplitPages(string(data)), nil
	default:
		return e.fallback.ExtractPages(ctx, data, contentType)
	}
}

// DetectContentType normalises the declared media type, falling back to
// sniffing the PDF header.
func DetectContentType(data []byte, declared string) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mediaType = ""
	}
	mediaType = strings.ToLower(mediaType)
	if mediaType == contentTypePDF || bytes.HasPrefix(data, []byte("%PDF-")) {
		return contentTypePDF
	}
	return mediaType
}

// SplitPages splits extracted text on form feeds; text without any yields one page.
func SplitPages(text string) []core.Page {
	parts := strings.Split(text, "\f")
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	pages := make([]core.Page, len(parts))
	for i, p := range parts {
		pages[i] = core.Page{Index: i, Text: p}
	}
	return pages
}
