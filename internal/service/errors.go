package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/plangate/internal/domain"
)

var (
	// ErrForbidden is returned when the actor may not touch the target record.
	ErrForbidden = errors.New("not allowed for this user")

	// ErrEmptyPlan is returned when submitting a plan with no items.
	ErrEmptyPlan = errors.New("a plan needs at least one item before it can be submitted")

	// ErrPlanNoLongerQualifies is returned by RegisterHours when write-time
	// re-verification finds the plan left submitted/approved after the check.
	ErrPlanNoLongerQualifies = errors.New("plan no longer qualifies for time registration")

	// ErrInvalidEntry is returned for malformed time entries.
	ErrInvalidEntry = errors.New("invalid time entry")

	// ErrItemAlreadyLinked is returned when a plan item already points at a time entry.
	ErrItemAlreadyLinked = errors.New("plan item is already linked to a time entry")

	// ErrItemDateMismatch is returned when linking an entry to an item of another day's plan.
	ErrItemDateMismatch = errors.New("time entry date does not match the item's plan date")

	// ErrInvalidOrder is returned when a reorder list does not match the plan's items.
	ErrInvalidOrder = errors.New("reorder list must name every item of the plan exactly once")
)

// BlockedError is returned when the gate denies a time registration. The
// Result carries the localized reason for the presenter.
type BlockedError struct {
	UserID string
	Date   time.Time
	Result domain.ValidationResult
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("time registration for %s blocked: %s", domain.FormatDate(e.Date), e.Result.Reason)
}
