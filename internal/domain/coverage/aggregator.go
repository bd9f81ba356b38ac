// Package coverage rolls per-student immunization statuses into the
// per-school and per-age-bucket aggregates the dashboards render.
package coverage

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/imuniza/imuniza/internal/domain/status"
)

// StudentStatus is one student's computed status together with the grouping
// dimensions the aggregator needs.
type StudentStatus struct {
	StudentID  uuid.UUID
	SchoolID   uuid.UUID
	SchoolName string
	AgeMonths  int
	Status     status.Status
	Pending    []status.PendingDose
}

// CoverageItem is one school's aggregate row. The per-status field names
// are the wire tokens the existing dashboards key on.
type CoverageItem struct {
	SchoolID        uuid.UUID `json:"schoolId"`
	SchoolName      string    `json:"schoolName"`
	TotalStudents   int       `json:"totalStudents"`
	UpToDate        int       `json:"EM_DIA"`
	Overdue         int       `json:"ATRASADO"`
	Incomplete      int       `json:"INCOMPLETO"`
	NoData          int       `json:"SEM_DADOS"`
	CoveragePercent float64   `json:"coveragePercent"`
	DelayPercent    *float64  `json:"delayPercent,omitempty"`
	NoDataPercent   *float64  `json:"noDataPercent,omitempty"`
}

// BucketCoverage is one age bucket's aggregate row.
type BucketCoverage struct {
	AgeBucket       string  `json:"ageBucket"`
	MinMonths       int     `json:"minMonths"`
	MaxMonths       int     `json:"maxMonths"`
	TotalStudents   int     `json:"totalStudents"`
	UpToDate        int     `json:"EM_DIA"`
	Overdue         int     `json:"ATRASADO"`
	Incomplete      int     `json:"INCOMPLETO"`
	NoData          int     `json:"SEM_DADOS"`
	CoveragePercent float64 `json:"coveragePercent"`
}

// AgeDistributionItem counts unmet doses (not students) per age bucket.
type AgeDistributionItem struct {
	AgeBucket    string `json:"ageBucket"`
	PendingCount int    `json:"pendingCount"`
	OverdueCount int    `json:"overdueCount"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// percent returns 100*part/total rounded to 2 decimals, and 0 for an empty
// group rather than NaN.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(100 * float64(part) / float64(total))
}

// BySchool groups statuses per school, counts each status value and
// computes the coverage percentage. Output is stable, sorted by school
// name ascending.
func BySchool(items []StudentStatus) []CoverageItem {
	bySchool := make(map[uuid.UUID]*CoverageItem)
	for _, it := range items {
		entry, ok := bySchool[it.SchoolID]
		if !ok {
			entry = &CoverageItem{SchoolID: it.SchoolID, SchoolName: it.SchoolName}
			bySchool[it.SchoolID] = entry
		}
		entry.TotalStudents++
		switch it.Status {
		case status.UpToDate:
			entry.UpToDate++
		case status.Overdue:
			entry.Overdue++
		case status.Incomplete:
			entry.Incomplete++
		case status.NoData:
			entry.NoData++
		}
	}

	result := make([]CoverageItem, 0, len(bySchool))
	for _, entry := range bySchool {
		entry.CoveragePercent = percent(entry.UpToDate, entry.TotalStudents)
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SchoolName != result[j].SchoolName {
			return result[i].SchoolName < result[j].SchoolName
		}
		return result[i].SchoolID.String() < result[j].SchoolID.String()
	})
	return result
}

// Ranking extends BySchool with delay and no-data percentages and orders
// schools worst-first so health teams know where to go next.
func Ranking(items []StudentStatus) []CoverageItem {
	result := BySchool(items)
	for i := range result {
		delay := percent(result[i].Overdue, result[i].TotalStudents)
		noData := percent(result[i].NoData, result[i].TotalStudents)
		result[i].DelayPercent = &delay
		result[i].NoDataPercent = &noData
	}
	sort.SliceStable(result, func(i, j int) bool {
		if *result[i].DelayPercent != *result[j].DelayPercent {
			return *result[i].DelayPercent > *result[j].DelayPercent
		}
		return *result[i].NoDataPercent > *result[j].NoDataPercent
	})
	return result
}

// ByAgeBucket groups statuses into the supplied buckets. The bucket list
// is validated first; students whose age falls outside every bucket are
// excluded from the aggregate. Output order follows the bucket order
// (ascending minMonths, enforced by validation).
func ByAgeBucket(items []StudentStatus, buckets []AgeBucket) ([]BucketCoverage, error) {
	if err := ValidateBuckets(buckets); err != nil {
		return nil, err
	}

	result := make([]BucketCoverage, len(buckets))
	for i, b := range buckets {
		result[i] = BucketCoverage{AgeBucket: b.Label, MinMonths: b.MinMonths, MaxMonths: b.MaxMonths}
	}

	for _, it := range items {
		idx := bucketIndex(it.AgeMonths, buckets)
		if idx < 0 {
			continue
		}
		entry := &result[idx]
		entry.TotalStudents++
		switch it.Status {
		case status.UpToDate:
			entry.UpToDate++
		case status.Overdue:
			entry.Overdue++
		case status.Incomplete:
			entry.Incomplete++
		case status.NoData:
			entry.NoData++
		}
	}

	for i := range result {
		result[i].CoveragePercent = percent(result[i].UpToDate, result[i].TotalStudents)
	}
	return result, nil
}

// PendingAgeDistribution counts pending and overdue dose entries per age
// bucket. A student with three unmet doses contributes three to their
// bucket's pendingCount.
func PendingAgeDistribution(items []StudentStatus, buckets []AgeBucket) ([]AgeDistributionItem, error) {
	if err := ValidateBuckets(buckets); err != nil {
		return nil, err
	}

	result := make([]AgeDistributionItem, len(buckets))
	for i, b := range buckets {
		result[i] = AgeDistributionItem{AgeBucket: b.Label}
	}

	for _, it := range items {
		idx := bucketIndex(it.AgeMonths, buckets)
		if idx < 0 {
			continue
		}
		for _, dose := range it.Pending {
			result[idx].PendingCount++
			if dose.Status == status.DoseOverdue {
				result[idx].OverdueCount++
			}
		}
	}
	return result, nil
}
