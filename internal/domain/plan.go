package domain

import (
	"fmt"
	"time"
)

// DailyPlan is a user's declaration of intended work for one calendar date.
// At most one plan exists per (UserID, PlanDate).
type DailyPlan struct {
	ID       string
	UserID   string
	PlanDate time.Time
	Status   PlanStatus

	UserNotes  string
	AdminNotes string

	SubmittedAt *time.Time
	ApprovedAt  *time.Time
	ApprovedBy  *string

	// EditedAfterSubmission records a change made after SubmittedAt was set.
	// Audit only; the gate ignores it.
	EditedAfterSubmission bool

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []DailyPlanItem
}

// Qualifies reports whether the plan allows time registration for its date.
func (p *DailyPlan) Qualifies() bool {
	return p.Status == PlanSubmitted || p.Status == PlanApproved
}

// Editable reports whether items and user notes may still change.
func (p *DailyPlan) Editable() bool {
	return p.Status == PlanDraft || p.Status == PlanSubmitted
}

// Submit finalizes a draft. SubmittedAt is only ever set once, so a plan that
// was rejected and reopened keeps its first submission time.
func (p *DailyPlan) Submit(now time.Time) error {
	if p.Status != PlanDraft {
		return fmt.Errorf("cannot submit %s plan: %w", p.Status, ErrInvalidTransition)
	}
	p.Status = PlanSubmitted
	if p.SubmittedAt == nil {
		t := now
		p.SubmittedAt = &t
	}
	p.UpdatedAt = now
	return nil
}

// Approve records administrative approval of a submitted plan.
func (p *DailyPlan) Approve(adminID string, now time.Time) error {
	if p.Status != PlanSubmitted {
		return fmt.Errorf("cannot approve %s plan: %w", p.Status, ErrInvalidTransition)
	}
	if adminID == "" {
		return fmt.Errorf("approving user is required: %w", ErrInvalidTransition)
	}
	p.Status = PlanApproved
	if p.ApprovedAt == nil {
		t := now
		by := adminID
		p.ApprovedAt = &t
		p.ApprovedBy = &by
	}
	p.UpdatedAt = now
	return nil
}

// Reject is the administrative rejection path. Notes, when given, replace the
// admin notes so the user sees why.
func (p *DailyPlan) Reject(adminID, notes string, now time.Time) error {
	if p.Status != PlanSubmitted && p.Status != PlanApproved {
		return fmt.Errorf("cannot reject %s plan: %w", p.Status, ErrInvalidTransition)
	}
	if adminID == "" {
		return fmt.Errorf("rejecting user is required: %w", ErrInvalidTransition)
	}
	p.Status = PlanRejected
	if notes != "" {
		p.AdminNotes = notes
	}
	p.UpdatedAt = now
	return nil
}

// Reopen moves a rejected plan back to draft so the owner can fix and resubmit it.
// Only administrators may call it; the service enforces that.
func (p *DailyPlan) Reopen(now time.Time) error {
	if p.Status != PlanRejected {
		return fmt.Errorf("cannot reopen %s plan: %w", p.Status, ErrInvalidTransition)
	}
	p.Status = PlanDraft
	p.UpdatedAt = now
	return nil
}

// MarkEdited is called for every user-side change to the plan or its items.
func (p *DailyPlan) MarkEdited(now time.Time) error {
	if !p.Editable() {
		return fmt.Errorf("%s plan: %w", p.Status, ErrPlanLocked)
	}
	if p.SubmittedAt != nil {
		p.EditedAfterSubmission = true
	}
	p.UpdatedAt = now
	return nil
}

// TotalEstimatedMin sums the estimates of the loaded items.
func (p *DailyPlan) TotalEstimatedMin() int {
	total := 0
	for _, it := range p.Items {
		total += it.EstimatedMinutes
	}
	return total
}

// NextItem returns the most pressing open item: lowest priority rank, then
// plan order. Nil when every item is done.
func (p *DailyPlan) NextItem() *DailyPlanItem {
	var next *DailyPlanItem
	for i := range p.Items {
		it := &p.Items[i]
		if it.Completed {
			continue
		}
		if next == nil || it.Priority.Rank() < next.Priority.Rank() {
			next = it
		}
	}
	return next
}

// SetUserNotes replaces the owner's notes. Notes stay writable in every status.
func (p *DailyPlan) SetUserNotes(notes string, now time.Time) {
	p.UserNotes = notes
	if p.SubmittedAt != nil {
		p.EditedAfterSubmission = true
	}
	p.UpdatedAt = now
}

// SetAdminNotes replaces the administrator's notes without flagging a user edit.
func (p *DailyPlan) SetAdminNotes(notes string, now time.Time) {
	p.AdminNotes = notes
	p.UpdatedAt = now
}
