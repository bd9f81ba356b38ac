package status

import (
	"errors"
	"time"
)

// ErrInvalidDate is returned when the as-of date precedes the birth date.
var ErrInvalidDate = errors.New("as-of date precedes birth date")

// AgeInMonths returns the number of whole calendar months elapsed between
// birthDate and asOf. The month count is decremented when the as-of
// day-of-month has not yet reached the birth day-of-month. Time-of-day and
// timezone components are ignored; only the calendar dates matter.
func AgeInMonths(birthDate, asOf time.Time) (int, error) {
	by, bm, bd := birthDate.Date()
	ay, am, ad := asOf.Date()

	if ay < by || (ay == by && am < bm) || (ay == by && am == bm && ad < bd) {
		return 0, ErrInvalidDate
	}

	months := (ay-by)*12 + int(am) - int(bm)
	if ad < bd {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months, nil
}
