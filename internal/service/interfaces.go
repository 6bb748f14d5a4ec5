package service

import (
	"context"
	"time"

	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/alexanderramin/plangate/internal/realtime"
)

// PlanFinder is the single registry lookup the validation gate depends on.
type PlanFinder interface {
	FindForDate(ctx context.Context, userID string, date time.Time) (*domain.DailyPlan, error)
}

// ChangePublisher receives a hint after every committed write.
type ChangePublisher interface {
	Publish(c realtime.Change)
}

type PlanService interface {
	CreateDraft(ctx context.Context, actor Actor, userID string, date time.Time, notes string) (*domain.DailyPlan, error)
	GetForDate(ctx context.Context, userID string, date time.Time) (*domain.DailyPlan, error)
	GetWithItems(ctx context.Context, planID string) (*domain.DailyPlan, error)
	ListForUser(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyPlan, error)
	ListPendingApproval(ctx context.Context, actor Actor) ([]*domain.DailyPlan, error)

	AddItem(ctx context.Context, actor Actor, planID string, item *domain.DailyPlanItem) error
	UpdateItem(ctx context.Context, actor Actor, item *domain.DailyPlanItem) error
	EditItem(ctx context.Context, actor Actor, itemID string, patch domain.ItemPatch) (*domain.DailyPlanItem, error)
	RemoveItem(ctx context.Context, actor Actor, itemID string) error
	ReorderItems(ctx context.Context, actor Actor, planID string, itemIDs []string) error
	CompleteItem(ctx context.Context, actor Actor, itemID string) error

	UpdateUserNotes(ctx context.Context, actor Actor, planID, notes string) error
	UpdateAdminNotes(ctx context.Context, actor Actor, planID, notes string) error

	Submit(ctx context.Context, actor Actor, planID string) (*domain.DailyPlan, error)
	Approve(ctx context.Context, actor Actor, planID string) (*domain.DailyPlan, error)
	Reject(ctx context.Context, actor Actor, planID, notes string) (*domain.DailyPlan, error)
	Reopen(ctx context.Context, actor Actor, planID string) (*domain.DailyPlan, error)
}

// DayDecision is one day of a CheckRange result.
type DayDecision struct {
	Date   time.Time
	Result domain.ValidationResult
}

type GateService interface {
	// CheckCanRegisterHours never returns an error: registry failures fail open.
	CheckCanRegisterHours(ctx context.Context, userID string, targetDate time.Time, isAdmin bool) domain.ValidationResult
	CheckRange(ctx context.Context, userID string, from, to time.Time, isAdmin bool) ([]DayDecision, error)
}

// RegisterOptions tunes a single RegisterHours call.
type RegisterOptions struct {
	// LinkItemID marks a plan item completed and links it to the new entry.
	LinkItemID string
}

type TimeEntryService interface {
	RegisterHours(ctx context.Context, actor Actor, entry *domain.TimeEntry, opts RegisterOptions) (domain.ValidationResult, error)
	ListForDate(ctx context.Context, userID string, date time.Time) ([]*domain.TimeEntry, error)
}
