package vectorstore

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b. Zero vectors and
// vectors of different widths score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Rank sorts matches by descending score, ties broken by id, and keeps
// at most topK.
func Rank(matches []domain.VectorMatch, topK int) []domain.VectorMatch {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})
	if topK >= 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// BatchWidth validates that every record carries a vector of the same
// width and returns it.
func BatchWidth(records []domain.VectorRecord) (int, error) {
	width := -1
	for _, r := range records {
		if r.ID == "" {
			return 0, fmt.Errorf("%w: record without id", domain.ErrInvalidInput)
		}
		if r.Vector == nil {
			return 0, fmt.Errorf("%w: record %s has no vector and this store cannot embed text",
				domain.ErrConfiguration, r.ID)
		}
		if width == -1 {
			width = len(r.Vector)
			continue
		}
		if len(r.Vector) != width {
			return 0, fmt.Errorf("%w: record %s has width %d, batch has %d",
				domain.ErrDimensionMismatch, r.ID, len(r.Vector), width)
		}
	}
	if width == -1 {
		width = 0
	}
	return width, nil
}

// CheckWidth compares a vector width against the expected one. An
// expected width of 0 means none is established yet and accepts any.
func CheckWidth(expected, got int) error {
	if expected > 0 && got != expected {
		return fmt.Errorf("%w: expected %d dimensions, got %d", domain.ErrDimensionMismatch, expected, got)
	}
	return nil
}

// RequireVector rejects text-only queries for stores that cannot embed.
func RequireVector(q domain.VectorQuery) error {
	if q.IsText() {
		return fmt.Errorf("%w: text query requires a store with integrated embedding", domain.ErrConfiguration)
	}
	return nil
}

// CollectionName derives the per-tenant collection or index name.
func CollectionName(namespace string) string {
	return "assistant-" + namespace
}
