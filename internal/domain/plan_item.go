package domain

import (
	"fmt"
	"strings"
	"time"
)

// DailyPlanItem is one planned unit of work inside a DailyPlan.
// OrderIndex values are unique per plan and need not be contiguous.
type DailyPlanItem struct {
	ID               string
	PlanID           string
	Title            string
	Description      string
	EstimatedMinutes int
	Priority         Priority

	MandateID  *string
	TaskTypeID *string

	AssignedByAdmin bool
	Completed       bool
	TimeEntryID     *string
	OrderIndex      int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the item's own fields. Order-index uniqueness is enforced by
// the store.
func (it *DailyPlanItem) Validate() error {
	if strings.TrimSpace(it.Title) == "" {
		return fmt.Errorf("title is required: %w", ErrInvalidItem)
	}
	if it.EstimatedMinutes <= 0 {
		return fmt.Errorf("estimated minutes must be positive, got %d: %w", it.EstimatedMinutes, ErrInvalidItem)
	}
	if !ValidPriorities[it.Priority] {
		return fmt.Errorf("unknown priority %q: %w", it.Priority, ErrInvalidItem)
	}
	return nil
}

// ItemPatch is a partial edit of an item's user-editable fields. Nil fields
// keep their current value; an empty MandateID or TaskTypeID clears it.
type ItemPatch struct {
	Title            *string
	Description      *string
	EstimatedMinutes *int
	Priority         *Priority
	MandateID        *string
	TaskTypeID       *string
}

// Apply copies the set fields of p onto it.
func (it *DailyPlanItem) Apply(p ItemPatch) {
	it.Title = strings.TrimSpace(StrFromPtrWithDefault(it.Title, p.Title))
	it.Description = StrFromPtrWithDefault(it.Description, p.Description)
	it.EstimatedMinutes = IntFromPtrWithDefault(it.EstimatedMinutes, p.EstimatedMinutes)
	if p.Priority != nil {
		it.Priority = *p.Priority
	}
	it.MandateID = OptionalStr(StrFromPtrWithDefault("", p.MandateID, it.MandateID))
	it.TaskTypeID = OptionalStr(StrFromPtrWithDefault("", p.TaskTypeID, it.TaskTypeID))
}

// LinkTimeEntry records the realized time entry and completes the item.
func (it *DailyPlanItem) LinkTimeEntry(entryID string, now time.Time) {
	id := entryID
	it.TimeEntryID = &id
	it.Completed = true
	it.UpdatedAt = now
}
