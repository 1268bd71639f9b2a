package agent

import (
	"fmt"
	"strings"
)

// Document is one retrieved review chunk with its product metadata.
type Document struct {
	PageContent string
	Metadata    map[string]string
}

// Metadata keys the formatter renders.
const (
	MetaProductTitle = "product_title"
	MetaPrice        = "price"
	MetaRating       = "rating"
)

// NoDocumentsSentinel is the formatter output for an empty result. The
// grader must judge it not relevant so the run falls through to a rewrite.
const NoDocumentsSentinel = "No relevant documents found."

const docSeparator = "\n\n-----\n\n"

// FormatDocuments renders retrieved documents into the context block the
// generator sees. Same input, same bytes.
func FormatDocuments(docs []Document) string {
	if len(docs) == 0 {
		return NoDocumentsSentinel
	}
	blocks := make([]string, 0, len(docs))
	for _, d := range docs {
		var b strings.Builder
		fmt.Fprintf(&b, "Title: %s\n", metaOr(d, MetaProductTitle))
		fmt.Fprintf(&b, "Price: %s\n", metaOr(d, MetaPrice))
		fmt.Fprintf(&b, "Rating: %s\n", metaOr(d, MetaRating))
		fmt.Fprintf(&b, "Reviews:\n%s", strings.TrimSpace(d.PageContent))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, docSeparator)
}

func metaOr(d Document, key string) string {
	if v := d.Metadata[key]; v != "" {
		return v
	}
	return "N/A"
}
