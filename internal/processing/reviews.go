package processing

import "strings"

// reviewDelimiter separates individual reviews inside the scraper's
// top_reviews CSV column.
const reviewDelimiter = "||"

// SplitReviews breaks a scraped top_reviews field into individual review
// chunks sized for embedding. Empty entries are dropped.
func SplitReviews(raw string) []string {
	var out []string
	for _, r := range strings.Split(raw, reviewDelimiter) {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, splitLong(r, 1000, 200)...)
	}
	return out
}

// splitLong slices very long reviews into overlapping chunks.
func splitLong(s string, max, overlap int) []string {
	if len(s) <= max {
		return []string{s}
	}
	var res []string
	for i := 0; i < len(s); i += max - overlap {
		end := i + max
		if end > len(s) {
			end = len(s)
		}
		res = append(res, strings.TrimSpace(s[i:end]))
		if end == len(s) {
			break
		}
	}
	return res
}
