package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDocumentsEmpty(t *testing.T) {
	assert.Equal(t, NoDocumentsSentinel, FormatDocuments(nil))
	assert.Equal(t, NoDocumentsSentinel, FormatDocuments([]Document{}))
}

func TestFormatDocumentsRendersMetadata(t *testing.T) {
	docs := []Document{
		{
			PageContent: "Great battery\n",
			Metadata: map[string]string{
				MetaProductTitle: "iPhone 15",
				MetaPrice:        "₹65000",
				MetaRating:       "4.5",
			},
		},
		{
			PageContent: "Decent camera",
			Metadata:    map[string]string{MetaProductTitle: "Pixel 8"},
		},
	}

	out := FormatDocuments(docs)

	blocks := strings.Split(out, "\n\n-----\n\n")
	assert.Len(t, blocks, 2)
	assert.Equal(t, "Title: iPhone 15\nPrice: ₹65000\nRating: 4.5\nReviews:\nGreat battery", blocks[0])
	assert.Equal(t, "Title: Pixel 8\nPrice: N/A\nRating: N/A\nReviews:\nDecent camera", blocks[1])
}

func TestFormatDocumentsIdempotent(t *testing.T) {
	docs := []Document{
		{PageContent: "solid phone", Metadata: map[string]string{MetaPrice: "₹12000"}},
		{PageContent: "battery drains fast", Metadata: nil},
	}

	first := FormatDocuments(docs)
	second := FormatDocuments(docs)

	assert.Equal(t, first, second)
}
