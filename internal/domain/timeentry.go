package domain

import "time"

// TimeEntry is hours registered by a user against a calendar date.
type TimeEntry struct {
	ID          string
	UserID      string
	EntryDate   time.Time
	Minutes     int
	Description string
	MandateID   *string
	TaskTypeID  *string
	// PlanID is the qualifying plan reported by the gate, nil for admin bypass
	// or a fail-open registration.
	PlanID    *string
	CreatedAt time.Time
}
