// Package status implements the immunization status derivation engine:
// given a student's birth date, their vaccination records and the active
// vaccination schedule, it classifies every expected dose and derives the
// student's overall standing. The package does no I/O and reads no clock.
// Callers always pass an explicit as-of date.
package status

import (
	"encoding/json"
	"fmt"
)

// Status is the overall immunization standing of a student.
type Status int

const (
	UpToDate Status = iota
	Overdue
	Incomplete
	NoData
)

// Wire tokens are shared with the existing dashboards and must not change.
const (
	tokenUpToDate   = "EM_DIA"
	tokenOverdue    = "ATRASADO"
	tokenIncomplete = "INCOMPLETO"
	tokenNoData     = "SEM_DADOS"
)

func (s Status) String() string {
	switch s {
	case UpToDate:
		return tokenUpToDate
	case Overdue:
		return tokenOverdue
	case Incomplete:
		return tokenIncomplete
	case NoData:
		return tokenNoData
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var token string
	if err := json.Unmarshal(b, &token); err != nil {
		return err
	}
	parsed, err := ParseStatus(token)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus converts a wire token back into a Status. Used when filters
// arrive as query parameters.
func ParseStatus(token string) (Status, error) {
	switch token {
	case tokenUpToDate:
		return UpToDate, nil
	case tokenOverdue:
		return Overdue, nil
	case tokenIncomplete:
		return Incomplete, nil
	case tokenNoData:
		return NoData, nil
	}
	return 0, fmt.Errorf("unknown status token: %q", token)
}

// DoseStatus classifies a single unmet dose.
type DoseStatus int

const (
	// DosePending means the dose is due now: the student's age is inside
	// the recommended window (or the window has not been entered yet, for
	// future doses).
	DosePending DoseStatus = iota
	// DoseOverdue means the recommended window closed without the dose
	// being administered.
	DoseOverdue
)

const (
	tokenDosePending = "PENDENTE"
	tokenDoseOverdue = "ATRASADA"
)

func (d DoseStatus) String() string {
	if d == DoseOverdue {
		return tokenDoseOverdue
	}
	return tokenDosePending
}

func (d DoseStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DoseStatus) UnmarshalJSON(b []byte) error {
	var token string
	if err := json.Unmarshal(b, &token); err != nil {
		return err
	}
	switch token {
	case tokenDosePending:
		*d = DosePending
	case tokenDoseOverdue:
		*d = DoseOverdue
	default:
		return fmt.Errorf("unknown dose status token: %q", token)
	}
	return nil
}
