package status

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type doseKey struct {
	vaccineCode string
	doseNumber  int
}

// Compute derives the immunization status for one student as of the given
// date. A nil schedule (no version is active) is not an error: the result
// is NoData with no schedule code. Records with a duplicate
// (vaccineCode, doseNumber) key are tolerated; the earliest application
// date wins.
func Compute(studentID uuid.UUID, birthDate time.Time, records []Record, schedule *Schedule, asOf time.Time) (*Result, error) {
	ageMonths, err := AgeInMonths(birthDate, asOf)
	if err != nil {
		return nil, err
	}

	res := &Result{
		StudentID: studentID,
		AgeMonths: ageMonths,
		AsOfDate:  NewDate(asOf),
		Pending:   []PendingDose{},
		Future:    []FutureDose{},
	}

	if schedule == nil {
		res.Status = NoData
		return res, nil
	}
	code := schedule.Code
	res.ActiveScheduleCode = &code

	administered := make(map[doseKey]Record, len(records))
	for _, rec := range records {
		key := doseKey{rec.VaccineCode, rec.DoseNumber}
		if prev, ok := administered[key]; !ok || rec.ApplicationDate.Before(prev.ApplicationDate) {
			administered[key] = rec
		}
	}

	for _, rule := range schedule.Rules {
		if _, ok := administered[doseKey{rule.VaccineCode, rule.DoseNumber}]; ok {
			continue
		}

		dose := PendingDose{
			VaccineCode:  rule.VaccineCode,
			VaccineName:  rule.VaccineName,
			DoseNumber:   rule.DoseNumber,
			MinAgeMonths: rule.MinAgeMonths,
			MaxAgeMonths: rule.MaxAgeMonths,
			Status:       DosePending,
		}

		switch {
		case ageMonths < rule.MinAgeMonths:
			res.Future = append(res.Future, FutureDose{
				PendingDose:    dose,
				MonthsUntilDue: rule.MinAgeMonths - ageMonths,
			})
		case ageMonths > rule.MaxAgeMonths:
			dose.Status = DoseOverdue
			res.Pending = append(res.Pending, dose)
		default:
			res.Pending = append(res.Pending, dose)
		}
	}

	// Rule order only affects presentation, never classification.
	sort.Slice(res.Pending, func(i, j int) bool {
		if res.Pending[i].VaccineCode != res.Pending[j].VaccineCode {
			return res.Pending[i].VaccineCode < res.Pending[j].VaccineCode
		}
		return res.Pending[i].DoseNumber < res.Pending[j].DoseNumber
	})
	sort.Slice(res.Future, func(i, j int) bool {
		if res.Future[i].VaccineCode != res.Future[j].VaccineCode {
			return res.Future[i].VaccineCode < res.Future[j].VaccineCode
		}
		return res.Future[i].DoseNumber < res.Future[j].DoseNumber
	})

	res.Status = overallStatus(len(records), res.Pending)
	return res, nil
}

func overallStatus(recordCount int, pending []PendingDose) Status {
	if recordCount == 0 {
		return NoData
	}
	for _, dose := range pending {
		if dose.Status == DoseOverdue {
			return Overdue
		}
	}
	if len(pending) > 0 {
		return Incomplete
	}
	return UpToDate
}
