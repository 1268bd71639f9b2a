// Package ingestion loads the scraper's product_reviews.csv export.
package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ProductReviews is one scraped CSV row: a product plus its concatenated
// top reviews.
type ProductReviews struct {
	ProductID    string
	Title        string
	Rating       string
	TotalReviews string
	Price        string
	TopReviews   string
}

// Column headers written by the scraper.
var requiredColumns = []string{"product_id", "product_title", "rating", "total_reviews", "price", "top_reviews"}

// LoadCSV reads a scraped review export. Column order is taken from the
// header row; rows missing a product id or title are skipped.
func LoadCSV(path string) ([]ProductReviews, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(r io.Reader) ([]ProductReviews, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q in header", c)
		}
	}

	field := func(record []string, name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var out []ProductReviews
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		p := ProductReviews{
			ProductID:    field(record, "product_id"),
			Title:        field(record, "product_title"),
			Rating:       field(record, "rating"),
			TotalReviews: field(record, "total_reviews"),
			Price:        field(record, "price"),
			TopReviews:   field(record, "top_reviews"),
		}
		if p.ProductID == "" || p.Title == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
