package domain

import "errors"

var (
	// ErrInvalidTransition is returned when a plan status change is not allowed
	// from the plan's current status.
	ErrInvalidTransition = errors.New("invalid plan status transition")

	// ErrPlanLocked is returned when editing a plan that is approved or rejected.
	ErrPlanLocked = errors.New("plan can no longer be edited")

	// ErrInvalidItem is returned when a plan item fails validation.
	ErrInvalidItem = errors.New("invalid plan item")
)
