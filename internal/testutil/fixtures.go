package testutil

import (
	"time"

	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/google/uuid"
)

// Date parses a YYYY-MM-DD literal and panics on malformed input.
func Date(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Plan options
type PlanOption func(*domain.DailyPlan)

func WithPlanStatus(s domain.PlanStatus) PlanOption {
	return func(p *domain.DailyPlan) {
		p.Status = s
		now := p.CreatedAt
		if s == domain.PlanSubmitted || s == domain.PlanApproved || s == domain.PlanRejected {
			p.SubmittedAt = &now
		}
		if s == domain.PlanApproved {
			admin := "admin"
			p.ApprovedAt = &now
			p.ApprovedBy = &admin
		}
	}
}

func WithUserNotes(n string) PlanOption {
	return func(p *domain.DailyPlan) {
		p.UserNotes = n
	}
}

func WithAdminNotes(n string) PlanOption {
	return func(p *domain.DailyPlan) {
		p.AdminNotes = n
	}
}

func NewTestPlan(userID string, date time.Time, opts ...PlanOption) *domain.DailyPlan {
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.DailyPlan{
		ID:        uuid.New().String(),
		UserID:    userID,
		PlanDate:  domain.DateOf(date),
		Status:    domain.PlanDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Item options
type ItemOption func(*domain.DailyPlanItem)

func WithEstimate(m int) ItemOption {
	return func(it *domain.DailyPlanItem) {
		it.EstimatedMinutes = m
	}
}

func WithPriority(p domain.Priority) ItemOption {
	return func(it *domain.DailyPlanItem) {
		it.Priority = p
	}
}

func WithOrderIndex(i int) ItemOption {
	return func(it *domain.DailyPlanItem) {
		it.OrderIndex = i
	}
}

func WithMandate(id string) ItemOption {
	return func(it *domain.DailyPlanItem) {
		it.MandateID = &id
	}
}

func WithAssignedByAdmin() ItemOption {
	return func(it *domain.DailyPlanItem) {
		it.AssignedByAdmin = true
	}
}

func NewTestItem(planID, title string, opts ...ItemOption) *domain.DailyPlanItem {
	now := time.Now().UTC().Truncate(time.Second)
	it := &domain.DailyPlanItem{
		ID:               uuid.New().String(),
		PlanID:           planID,
		Title:            title,
		EstimatedMinutes: 30,
		Priority:         domain.PriorityMedium,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// TimeEntry options
type EntryOption func(*domain.TimeEntry)

func WithEntryPlan(planID string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.PlanID = &planID
	}
}

func WithDescription(d string) EntryOption {
	return func(e *domain.TimeEntry) {
		e.Description = d
	}
}

func NewTestTimeEntry(userID string, date time.Time, minutes int, opts ...EntryOption) *domain.TimeEntry {
	e := &domain.TimeEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		EntryDate: domain.DateOf(date),
		Minutes:   minutes,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
