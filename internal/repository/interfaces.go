package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/plangate/internal/domain"
)

// PlanRepo stores daily plans. FindForDate is the lookup the validation gate
// depends on; it always reads from the primary store.
type PlanRepo interface {
	Create(ctx context.Context, p *domain.DailyPlan) error
	GetByID(ctx context.Context, id string) (*domain.DailyPlan, error)
	FindForDate(ctx context.Context, userID string, date time.Time) (*domain.DailyPlan, error)
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyPlan, error)
	ListByStatus(ctx context.Context, status domain.PlanStatus) ([]*domain.DailyPlan, error)
	Update(ctx context.Context, p *domain.DailyPlan) error
}

type PlanItemRepo interface {
	Create(ctx context.Context, it *domain.DailyPlanItem) error
	GetByID(ctx context.Context, id string) (*domain.DailyPlanItem, error)
	ListByPlan(ctx context.Context, planID string) ([]*domain.DailyPlanItem, error)
	Update(ctx context.Context, it *domain.DailyPlanItem) error
	Delete(ctx context.Context, id string) error
	NextOrderIndex(ctx context.Context, planID string) (int, error)
}

type TimeEntryRepo interface {
	Create(ctx context.Context, e *domain.TimeEntry) error
	GetByID(ctx context.Context, id string) (*domain.TimeEntry, error)
	ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]*domain.TimeEntry, error)
	ListByPlan(ctx context.Context, planID string) ([]*domain.TimeEntry, error)
}
