// Package lifecycle holds the report status state machine: which statuses
// exist, which triggers move a report between them, and which fields each
// trigger must set or clear. Controllers validate through this package and
// the repository enforces the same rules at write time, so a concurrent
// decision can never slip through as a silent overwrite.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SimpleHunt/Appointment-app/models"
)

// Error taxonomy. Controllers map these to HTTP statuses with errors.Is.
var (
	// ErrValidation: a required field for the chosen transition is missing
	// or malformed. The stored record is left untouched.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound: the referenced report or actor no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrConflict: the report's status changed between load and write,
	// or the invoker no longer owns it.
	ErrConflict = errors.New("conflict")
	// ErrGateway: the persistence call itself failed.
	ErrGateway = errors.New("gateway unavailable")
)

// transitions maps current status to the statuses a review may set.
// Only pending reports are reviewable; transfer is handled separately
// because it is legal from any status and always lands on pending.
var transitions = map[string]map[string]bool{
	models.StatusPending: {
		models.StatusAccepted:    true,
		models.StatusRejected:    true,
		models.StatusRescheduled: true,
	},
	models.StatusAccepted:    {},
	models.StatusRejected:    {},
	models.StatusRescheduled: {},
}

// CanReview reports whether a review may move a report from current to next.
func CanReview(current, next string) bool {
	nexts, ok := transitions[current]
	return ok && nexts[next]
}

// ValidStatus reports whether status is one of the four known values.
func ValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

// Decision is a validated, normalized review outcome ready to be written.
// Fields irrelevant to the chosen status are already cleared: an accept
// carries no remarks even if the reviewer typed some.
type Decision struct {
	Status          string
	Remarks         string
	RescheduledDate string
	RescheduledTime string
	ReviewedByName  string
}

// NewDecision validates the inputs of review(reportId, decision, ...) and
// produces the field set the transition writes.
//
//	accepted:    remarks and reschedule fields forced empty
//	rejected:    remarks required, reschedule fields forced empty
//	rescheduled: remarks, date and time all required
func NewDecision(status, remarks, rescheduledDate, rescheduledTime, reviewerName string) (Decision, error) {
	remarks = strings.TrimSpace(remarks)
	rescheduledDate = strings.TrimSpace(rescheduledDate)
	rescheduledTime = strings.TrimSpace(rescheduledTime)

	d := Decision{Status: status, ReviewedByName: reviewerName}

	switch status {
	case models.StatusAccepted:
		// inputs discarded regardless of what was supplied
	case models.StatusRejected:
		if remarks == "" {
			return Decision{}, fmt.Errorf("%w: remarks are required to reject a report", ErrValidation)
		}
		d.Remarks = remarks
	case models.StatusRescheduled:
		if remarks == "" {
			return Decision{}, fmt.Errorf("%w: remarks are required to reschedule a report", ErrValidation)
		}
		if err := CheckDate(rescheduledDate); err != nil {
			return Decision{}, fmt.Errorf("%w: rescheduled_date: %v", ErrValidation, err)
		}
		if err := CheckTime(rescheduledTime); err != nil {
			return Decision{}, fmt.Errorf("%w: rescheduled_time: %v", ErrValidation, err)
		}
		d.Remarks = remarks
		d.RescheduledDate = rescheduledDate
		d.RescheduledTime = rescheduledTime
	default:
		return Decision{}, fmt.Errorf("%w: unknown decision %q", ErrValidation, status)
	}

	if !CanReview(models.StatusPending, status) {
		return Decision{}, fmt.Errorf("%w: %q is not a review outcome", ErrValidation, status)
	}
	return d, nil
}

// CheckContent validates the author-supplied content fields shared by
// create and edit. The form enforces these client-side; re-checked here.
func CheckContent(c models.ReportContent) error {
	required := []struct{ name, value string }{
		{"company_name", c.CompanyName},
		{"contact_person", c.ContactPerson},
		{"contact_number", c.ContactNumber},
		{"address", c.Address},
		{"description", c.Description},
		{"lead_source", c.LeadSource},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, f.name)
		}
	}
	if err := CheckDate(c.ScheduledDate); err != nil {
		return fmt.Errorf("%w: scheduled_date: %v", ErrValidation, err)
	}
	if err := CheckTime(c.ScheduledTime); err != nil {
		return fmt.Errorf("%w: scheduled_time: %v", ErrValidation, err)
	}
	return nil
}

// CheckDate validates the YYYY-MM-DD format the dashboards submit.
func CheckDate(date string) error {
	if date == "" {
		return errors.New("is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return errors.New("must be YYYY-MM-DD")
	}
	return nil
}

// CheckTime validates the HH:MM format the dashboards submit.
func CheckTime(t string) error {
	if t == "" {
		return errors.New("is required")
	}
	if _, err := time.Parse("15:04", t); err != nil {
		return errors.New("must be HH:MM")
	}
	return nil
}
