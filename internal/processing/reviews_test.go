package processing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitReviews(t *testing.T) {
	raw := "Great battery || Decent camera ||  || Screen scratches easily"

	got := SplitReviews(raw)

	assert.Equal(t, []string{"Great battery", "Decent camera", "Screen scratches easily"}, got)
}

func TestSplitReviewsEmpty(t *testing.T) {
	assert.Empty(t, SplitReviews(""))
	assert.Empty(t, SplitReviews(" || || "))
}

func TestSplitLongOverlap(t *testing.T) {
	long := strings.Repeat("a", 2500)

	chunks := splitLong(long, 1000, 200)

	assert.Equal(t, 3, len(chunks))
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 1000)
	}
	assert.Equal(t, strings.Repeat("a", 1000), chunks[0])
}
