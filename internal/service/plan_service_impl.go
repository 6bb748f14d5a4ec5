package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/plangate/internal/db"
	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/alexanderramin/plangate/internal/realtime"
	"github.com/alexanderramin/plangate/internal/repository"
	"github.com/google/uuid"
)

type planService struct {
	plans     repository.PlanRepo
	items     repository.PlanItemRepo
	uow       db.UnitOfWork
	publisher ChangePublisher
	observer  UseCaseObserver
}

func NewPlanService(
	plans repository.PlanRepo,
	items repository.PlanItemRepo,
	uow db.UnitOfWork,
	publisher ChangePublisher,
	observers ...UseCaseObserver,
) PlanService {
	return &planService{
		plans:     plans,
		items:     items,
		uow:       uow,
		publisher: publisherOrNoop(publisher),
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *planService) CreateDraft(ctx context.Context, actor Actor, userID string, date time.Time, notes string) (plan *domain.DailyPlan, err error) {
	userID = domain.CoalesceStr(userID, actor.UserID)
	defer observe(ctx, s.observer, "create-plan", time.Now(), &err, map[string]any{
		"user_id": userID,
		"date":    domain.FormatDate(date),
	})

	if userID == "" {
		return nil, fmt.Errorf("creating plan: user is required: %w", ErrForbidden)
	}
	if !actor.CanActFor(userID) {
		return nil, fmt.Errorf("creating plan for %s: %w", userID, ErrForbidden)
	}

	now := nowUTC()
	plan = &domain.DailyPlan{
		ID:        uuid.New().String(),
		UserID:    userID,
		PlanDate:  domain.DateOf(date),
		Status:    domain.PlanDraft,
		UserNotes: notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}

	s.publishPlan(realtime.OpInsert, plan.ID)
	return plan, nil
}

func (s *planService) GetForDate(ctx context.Context, userID string, date time.Time) (*domain.DailyPlan, error) {
	plan, err := s.plans.FindForDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, plan)
}

func (s *planService) GetWithItems(ctx context.Context, planID string) (*domain.DailyPlan, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, plan)
}

func (s *planService) withItems(ctx context.Context, plan *domain.DailyPlan) (*domain.DailyPlan, error) {
	items, err := s.items.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	plan.Items = make([]domain.DailyPlanItem, 0, len(items))
	for _, it := range items {
		plan.Items = append(plan.Items, *it)
	}
	return plan, nil
}

func (s *planService) ListForUser(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyPlan, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("listing plans: range end %s is before start %s", domain.FormatDate(to), domain.FormatDate(from))
	}
	return s.plans.ListByUser(ctx, userID, from, to)
}

func (s *planService) ListPendingApproval(ctx context.Context, actor Actor) ([]*domain.DailyPlan, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("listing pending plans: %w", ErrForbidden)
	}
	return s.plans.ListByStatus(ctx, domain.PlanSubmitted)
}

func (s *planService) AddItem(ctx context.Context, actor Actor, planID string, item *domain.DailyPlanItem) (err error) {
	defer observe(ctx, s.observer, "add-plan-item", time.Now(), &err, map[string]any{"plan_id": planID})

	if item.Priority == "" {
		item.Priority = domain.PriorityMedium
	}
	item.Title = strings.TrimSpace(item.Title)
	if err = item.Validate(); err != nil {
		return err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLPlanRepo(tx)
		txItems := repository.NewSQLPlanItemRepo(tx)

		plan, err := txPlans.GetByID(ctx, planID)
		if err != nil {
			return err
		}
		if !actor.CanActFor(plan.UserID) {
			return fmt.Errorf("adding item to plan %s: %w", planID, ErrForbidden)
		}
		now := nowUTC()
		if err := plan.MarkEdited(now); err != nil {
			return err
		}

		next, err := txItems.NextOrderIndex(ctx, planID)
		if err != nil {
			return err
		}
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.PlanID = planID
		item.OrderIndex = next
		item.AssignedByAdmin = actor.Admin && actor.UserID != plan.UserID
		item.CreatedAt = now
		item.UpdatedAt = now

		if err := txItems.Create(ctx, item); err != nil {
			return err
		}
		return txPlans.Update(ctx, plan)
	})
	if err != nil {
		return err
	}

	s.publishItem(realtime.OpInsert, item.ID)
	s.publishPlan(realtime.OpUpdate, planID)
	return nil
}

func (s *planService) UpdateItem(ctx context.Context, actor Actor, item *domain.DailyPlanItem) (err error) {
	defer observe(ctx, s.observer, "update-plan-item", time.Now(), &err, map[string]any{"item_id": item.ID})

	item.Title = strings.TrimSpace(item.Title)
	if err = item.Validate(); err != nil {
		return err
	}

	// Ownership, ordering and linkage are not editable here.
	updated, err := s.editItem(ctx, actor, item.ID, func(current *domain.DailyPlanItem) {
		current.Title = item.Title
		current.Description = item.Description
		current.EstimatedMinutes = item.EstimatedMinutes
		current.Priority = item.Priority
		current.MandateID = item.MandateID
		current.TaskTypeID = item.TaskTypeID
	})
	if err != nil {
		return err
	}
	*item = *updated
	return nil
}

func (s *planService) EditItem(ctx context.Context, actor Actor, itemID string, patch domain.ItemPatch) (item *domain.DailyPlanItem, err error) {
	defer observe(ctx, s.observer, "edit-plan-item", time.Now(), &err, map[string]any{"item_id": itemID})

	return s.editItem(ctx, actor, itemID, func(current *domain.DailyPlanItem) {
		current.Apply(patch)
	})
}

// editItem loads an item and its plan in one transaction, applies fn,
// validates the result and flags the plan as edited.
func (s *planService) editItem(ctx context.Context, actor Actor, itemID string, fn func(*domain.DailyPlanItem)) (*domain.DailyPlanItem, error) {
	var current *domain.DailyPlanItem
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLPlanRepo(tx)
		txItems := repository.NewSQLPlanItemRepo(tx)

		var err error
		current, err = txItems.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		plan, err := txPlans.GetByID(ctx, current.PlanID)
		if err != nil {
			return err
		}
		if !actor.CanActFor(plan.UserID) {
			return fmt.Errorf("updating item %s: %w", itemID, ErrForbidden)
		}
		now := nowUTC()
		if err := plan.MarkEdited(now); err != nil {
			return err
		}

		fn(current)
		if err := current.Validate(); err != nil {
			return err
		}
		current.UpdatedAt = now

		if err := txItems.Update(ctx, current); err != nil {
			return err
		}
		return txPlans.Update(ctx, plan)
	})
	if err != nil {
		return nil, err
	}

	s.publishItem(realtime.OpUpdate, current.ID)
	s.publishPlan(realtime.OpUpdate, current.PlanID)
	return current, nil
}

func (s *planService) RemoveItem(ctx context.Context, actor Actor, itemID string) (err error) {
	defer observe(ctx, s.observer, "remove-plan-item", time.Now(), &err, map[string]any{"item_id": itemID})

	var planID string
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLPlanRepo(tx)
		txItems := repository.NewSQLPlanItemRepo(tx)

		item, err := txItems.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		plan, err := txPlans.GetByID(ctx, item.PlanID)
		if err != nil {
			return err
		}
		if !actor.CanActFor(plan.UserID) {
			return fmt.Errorf("removing item %s: %w", itemID, ErrForbidden)
		}
		if err := plan.MarkEdited(nowUTC()); err != nil {
			return err
		}
		planID = plan.ID

		if err := txItems.Delete(ctx, itemID); err != nil {
			return err
		}
		return txPlans.Update(ctx, plan)
	})
	if err != nil {
		return err
	}

	s.publishItem(realtime.OpDelete, itemID)
	s.publishPlan(realtime.OpUpdate, planID)
	return nil
}

// ReorderItems assigns order indices 0..n-1 following itemIDs. Items are first
// moved to negative indices so the (plan_id, order_index) unique index never
// sees a collision mid-transaction.
func (s *planService) ReorderItems(ctx context.Context, actor Actor, planID string, itemIDs []string) (err error) {
	defer observe(ctx, s.observer, "reorder-plan-items", time.Now(), &err, map[string]any{
		"plan_id": planID,
		"count":   len(itemIDs),
	})

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLPlanRepo(tx)
		txItems := repository.NewSQLPlanItemRepo(tx)

		plan, err := txPlans.GetByID(ctx, planID)
		if err != nil {
			return err
		}
		if !actor.CanActFor(plan.UserID) {
			return fmt.Errorf("reordering plan %s: %w", planID, ErrForbidden)
		}
		now := nowUTC()
		if err := plan.MarkEdited(now); err != nil {
			return err
		}

		items, err := txItems.ListByPlan(ctx, planID)
		if err != nil {
			return err
		}
		byID := make(map[string]*domain.DailyPlanItem, len(items))
		for _, it := range items {
			byID[it.ID] = it
		}
		if len(itemIDs) != len(items) {
			return ErrInvalidOrder
		}
		seen := make(map[string]bool, len(itemIDs))
		for _, id := range itemIDs {
			if byID[id] == nil || seen[id] {
				return fmt.Errorf("item %q: %w", id, ErrInvalidOrder)
			}
			seen[id] = true
		}

		for i, id := range itemIDs {
			it := byID[id]
			it.OrderIndex = -(i + 1)
			if err := txItems.Update(ctx, it); err != nil {
				return err
			}
		}
		for i, id := range itemIDs {
			it := byID[id]
			it.OrderIndex = i
			it.UpdatedAt = now
			if err := txItems.Update(ctx, it); err != nil {
				return err
			}
		}
		return txPlans.Update(ctx, plan)
	})
	if err != nil {
		return err
	}

	for _, id := range itemIDs {
		s.publishItem(realtime.OpUpdate, id)
	}
	s.publishPlan(realtime.OpUpdate, planID)
	return nil
}

// CompleteItem records progress, so it is allowed in every plan status and
// does not count as a plan edit.
func (s *planService) CompleteItem(ctx context.Context, actor Actor, itemID string) (err error) {
	defer observe(ctx, s.observer, "complete-plan-item", time.Now(), &err, map[string]any{"item_id": itemID})

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLPlanRepo(tx)
		txItems := repository.NewSQLPlanItemRepo(tx)

		item, err := txItems.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		plan, err := txPlans.GetByID(ctx, item.PlanID)
		if err != nil {
			return err
		}
		if !actor.CanActFor(plan.UserID) {
			return fmt.Errorf("completing item %s: %w", itemID, ErrForbidden)
		}
		item.Completed = true
		item.UpdatedAt = nowUTC()
		return txItems.Update(ctx, item)
	})
	if err != nil {
		return err
	}

	s.publishItem(realtime.OpUpdate, itemID)
	return nil
}

func (s *planService) UpdateUserNotes(ctx context.Context, actor Actor, planID, notes string) error {
	return s.mutatePlan(ctx, "update-user-notes", planID, func(plan *domain.DailyPlan, now time.Time) error {
		if actor.UserID != plan.UserID {
			return fmt.Errorf("user notes belong to the plan owner: %w", ErrForbidden)
		}
		plan.SetUserNotes(notes, now)
		return nil
	})
}

func (s *planService) UpdateAdminNotes(ctx context.Context, actor Actor, planID, notes string) error {
	return s.mutatePlan(ctx, "update-admin-notes", planID, func(plan *domain.DailyPlan, now time.Time) error {
		if !actor.Admin {
			return fmt.Errorf("admin notes: %w", ErrForbidden)
		}
		plan.SetAdminNotes(notes, now)
		return nil
	})
}

func (s *planService) Submit(ctx context.Context, actor Actor, planID string) (plan *domain.DailyPlan, err error) {
	defer observe(ctx, s.observer, "submit-plan", time.Now(), &err, map[string]any{"plan_id": planID})

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLPlanRepo(tx)
		txItems := repository.NewSQLPlanItemRepo(tx)

		var err error
		plan, err = txPlans.GetByID(ctx, planID)
		if err != nil {
			return err
		}
		if !actor.CanActFor(plan.UserID) {
			return fmt.Errorf("submitting plan %s: %w", planID, ErrForbidden)
		}
		items, err := txItems.ListByPlan(ctx, planID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyPlan
		}
		if err := plan.Submit(nowUTC()); err != nil {
			return err
		}
		return txPlans.Update(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	s.publishPlan(realtime.OpUpdate, planID)
	return plan, nil
}

func (s *planService) Approve(ctx context.Context, actor Actor, planID string) (*domain.DailyPlan, error) {
	return s.transition(ctx, "approve-plan", planID, func(plan *domain.DailyPlan, now time.Time) error {
		if !actor.Admin {
			return fmt.Errorf("approving plan: %w", ErrForbidden)
		}
		return plan.Approve(actor.UserID, now)
	})
}

func (s *planService) Reject(ctx context.Context, actor Actor, planID, notes string) (*domain.DailyPlan, error) {
	return s.transition(ctx, "reject-plan", planID, func(plan *domain.DailyPlan, now time.Time) error {
		if !actor.Admin {
			return fmt.Errorf("rejecting plan: %w", ErrForbidden)
		}
		return plan.Reject(actor.UserID, notes, now)
	})
}

func (s *planService) Reopen(ctx context.Context, actor Actor, planID string) (*domain.DailyPlan, error) {
	return s.transition(ctx, "reopen-plan", planID, func(plan *domain.DailyPlan, now time.Time) error {
		if !actor.Admin {
			return fmt.Errorf("reopening plan: %w", ErrForbidden)
		}
		return plan.Reopen(now)
	})
}

// transition loads a plan in a transaction, applies fn and stores the result.
func (s *planService) transition(ctx context.Context, name, planID string, fn func(*domain.DailyPlan, time.Time) error) (plan *domain.DailyPlan, err error) {
	defer observe(ctx, s.observer, name, time.Now(), &err, map[string]any{"plan_id": planID})

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLPlanRepo(tx)

		var err error
		plan, err = txPlans.GetByID(ctx, planID)
		if err != nil {
			return err
		}
		if err := fn(plan, nowUTC()); err != nil {
			return err
		}
		return txPlans.Update(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	s.publishPlan(realtime.OpUpdate, planID)
	return plan, nil
}

func (s *planService) mutatePlan(ctx context.Context, name, planID string, fn func(*domain.DailyPlan, time.Time) error) error {
	_, err := s.transition(ctx, name, planID, fn)
	return err
}

func (s *planService) publishPlan(op, key string) {
	s.publisher.Publish(realtime.Change{Topic: realtime.TopicPlans, Op: op, Key: key})
}

func (s *planService) publishItem(op, key string) {
	s.publisher.Publish(realtime.Change{Topic: realtime.TopicPlanItems, Op: op, Key: key})
}
