package coverage

import (
	"context"

	"github.com/imuniza/imuniza/internal/domain/student"
)

// StatusSource computes the per-student engine results the aggregations
// are built from.
type StatusSource interface {
	ComputeAll(ctx context.Context, f student.Filters) ([]student.StatusRow, error)
}

type Service struct {
	statuses    StatusSource
	preferences PreferenceRepository
}

func NewService(statuses StatusSource, preferences PreferenceRepository) *Service {
	return &Service{statuses: statuses, preferences: preferences}
}

func (s *Service) snapshots(ctx context.Context, f student.Filters) ([]StudentStatus, error) {
	rows, err := s.statuses.ComputeAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]StudentStatus, 0, len(rows))
	for _, row := range rows {
		items = append(items, StudentStatus{
			StudentID:  row.Student.ID,
			SchoolID:   row.Student.SchoolID,
			SchoolName: row.Student.SchoolName,
			AgeMonths:  row.Result.AgeMonths,
			Status:     row.Result.Status,
			Pending:    row.Result.Pending,
		})
	}
	return items, nil
}

func (s *Service) SchoolCoverage(ctx context.Context, f student.Filters) ([]CoverageItem, error) {
	items, err := s.snapshots(ctx, f)
	if err != nil {
		return nil, err
	}
	return BySchool(items), nil
}

func (s *Service) SchoolRanking(ctx context.Context, f student.Filters) ([]CoverageItem, error) {
	items, err := s.snapshots(ctx, f)
	if err != nil {
		return nil, err
	}
	return Ranking(items), nil
}

// AgeDistribution aggregates both the per-bucket status counts and the
// pending dose counts, using the caller's saved buckets when they have
// any.
type AgeDistribution struct {
	Items   []BucketCoverage      `json:"items"`
	Pending []AgeDistributionItem `json:"pending"`
}

func (s *Service) AgeDistribution(ctx context.Context, f student.Filters, userID string) (*AgeDistribution, error) {
	buckets, err := s.BucketsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.snapshots(ctx, f)
	if err != nil {
		return nil, err
	}
	byBucket, err := ByAgeBucket(items, buckets)
	if err != nil {
		return nil, err
	}
	pending, err := PendingAgeDistribution(items, buckets)
	if err != nil {
		return nil, err
	}
	return &AgeDistribution{Items: byBucket, Pending: pending}, nil
}

// BucketsFor returns the caller's saved bucket preference, falling back
// to the defaults.
func (s *Service) BucketsFor(ctx context.Context, userID string) ([]AgeBucket, error) {
	buckets, err := s.preferences.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(buckets) == 0 {
		return DefaultBuckets(), nil
	}
	return buckets, nil
}

// SaveBuckets validates and persists the caller's bucket preference.
func (s *Service) SaveBuckets(ctx context.Context, userID string, buckets []AgeBucket) error {
	if err := ValidateBuckets(buckets); err != nil {
		return err
	}
	return s.preferences.Put(ctx, userID, buckets)
}
