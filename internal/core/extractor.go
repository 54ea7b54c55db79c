package core

import "context"

// Page is the text of one document page. Index is 0-based.
type Page struct {
	Index int
	Text  string
}

// PageExtractor defines the interface for turning document bytes into page text.
type PageExtractor interface {
	// ExtractPages returns the pages of the document in order.
	// The `contentType` hint helps the extractor choose the right parsing strategy.
	ExtractPages(ctx context.Context, data []byte, contentType string) ([]Page, error)
}
