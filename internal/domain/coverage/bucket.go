package coverage

import (
	"errors"
	"fmt"
)

// ErrValidation marks a malformed age-bucket definition. Callers correct
// the input; nothing is persisted.
var ErrValidation = errors.New("invalid age buckets")

// AgeBucket is a caller-defined, non-overlapping age range in months used
// to group aggregate statistics.
type AgeBucket struct {
	Label     string `json:"label" validate:"required"`
	MinMonths int    `json:"minMonths" validate:"min=0"`
	MaxMonths int    `json:"maxMonths" validate:"min=0"`
}

// Contains reports whether ageMonths falls inside the bucket (inclusive).
func (b AgeBucket) Contains(ageMonths int) bool {
	return ageMonths >= b.MinMonths && ageMonths <= b.MaxMonths
}

// DefaultBuckets returns the bucket set the dashboards ship with. The last
// bucket is deliberately wide so no school-age student falls outside it.
func DefaultBuckets() []AgeBucket {
	return []AgeBucket{
		{Label: "0-11", MinMonths: 0, MaxMonths: 11},
		{Label: "12-59", MinMonths: 12, MaxMonths: 59},
		{Label: "60-107", MinMonths: 60, MaxMonths: 107},
		{Label: "108-179", MinMonths: 108, MaxMonths: 179},
		{Label: "180+", MinMonths: 180, MaxMonths: 999},
	}
}

// ValidateBuckets checks a bucket list before it is used or persisted:
// at least one bucket, non-empty labels, non-negative bounds, max >= min,
// sorted by minMonths, and strictly non-overlapping ranges.
func ValidateBuckets(buckets []AgeBucket) error {
	if len(buckets) == 0 {
		return fmt.Errorf("%w: at least one bucket is required", ErrValidation)
	}
	for i, b := range buckets {
		if b.Label == "" {
			return fmt.Errorf("%w: bucket %d has no label", ErrValidation, i)
		}
		if b.MinMonths < 0 {
			return fmt.Errorf("%w: bucket %q has negative minMonths", ErrValidation, b.Label)
		}
		if b.MaxMonths < b.MinMonths {
			return fmt.Errorf("%w: bucket %q has maxMonths < minMonths", ErrValidation, b.Label)
		}
		if i > 0 {
			prev := buckets[i-1]
			if b.MinMonths < prev.MinMonths {
				return fmt.Errorf("%w: buckets must be sorted by minMonths (%q before %q)", ErrValidation, prev.Label, b.Label)
			}
			if b.MinMonths <= prev.MaxMonths {
				return fmt.Errorf("%w: buckets %q and %q overlap", ErrValidation, prev.Label, b.Label)
			}
		}
	}
	return nil
}

// bucketIndex returns the index of the first bucket containing ageMonths,
// or -1 when the age falls outside every bucket.
func bucketIndex(ageMonths int, buckets []AgeBucket) int {
	for i, b := range buckets {
		if b.Contains(ageMonths) {
			return i
		}
	}
	return -1
}
