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

type timeEntryService struct {
	entries   repository.TimeEntryRepo
	gate      GateService
	uow       db.UnitOfWork
	reverify  bool
	publisher ChangePublisher
	observer  UseCaseObserver
}

// NewTimeEntryService builds the registration path. With reverify set, the
// write transaction re-reads the plan the gate approved and refuses the write
// if it stopped qualifying in between.
func NewTimeEntryService(
	entries repository.TimeEntryRepo,
	gate GateService,
	uow db.UnitOfWork,
	reverify bool,
	publisher ChangePublisher,
	observers ...UseCaseObserver,
) TimeEntryService {
	return &timeEntryService{
		entries:   entries,
		gate:      gate,
		uow:       uow,
		reverify:  reverify,
		publisher: publisherOrNoop(publisher),
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *timeEntryService) RegisterHours(ctx context.Context, actor Actor, entry *domain.TimeEntry, opts RegisterOptions) (result domain.ValidationResult, err error) {
	entry.UserID = domain.CoalesceStr(entry.UserID, actor.UserID)
	fields := map[string]any{
		"user_id": entry.UserID,
		"date":    domain.FormatDate(entry.EntryDate),
		"minutes": entry.Minutes,
	}
	defer observe(ctx, s.observer, "register-hours", time.Now(), &err, fields)

	if entry.UserID != "" && !actor.CanActFor(entry.UserID) {
		return result, fmt.Errorf("registering hours for %s: %w", entry.UserID, ErrForbidden)
	}
	if entry.Minutes <= 0 {
		return result, fmt.Errorf("minutes must be positive, got %d: %w", entry.Minutes, ErrInvalidEntry)
	}
	entry.EntryDate = domain.DateOf(entry.EntryDate)
	entry.Description = strings.TrimSpace(entry.Description)

	result = s.gate.CheckCanRegisterHours(ctx, entry.UserID, entry.EntryDate, actor.Admin)
	fields["gate_code"] = string(result.Code)
	if !result.Allowed {
		return result, &BlockedError{UserID: entry.UserID, Date: entry.EntryDate, Result: result}
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.PlanID = result.PlanID
	entry.CreatedAt = nowUTC()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLPlanRepo(tx)
		txEntries := repository.NewSQLTimeEntryRepo(tx)
		txItems := repository.NewSQLPlanItemRepo(tx)

		if s.reverify && result.PlanID != nil {
			plan, err := txPlans.GetByID(ctx, *result.PlanID)
			if err != nil {
				return err
			}
			if !plan.Qualifies() {
				return fmt.Errorf("plan %s is now %s: %w", plan.ID, plan.Status, ErrPlanNoLongerQualifies)
			}
		}

		if err := txEntries.Create(ctx, entry); err != nil {
			return err
		}

		if opts.LinkItemID == "" {
			return nil
		}
		item, err := txItems.GetByID(ctx, opts.LinkItemID)
		if err != nil {
			return err
		}
		plan, err := txPlans.GetByID(ctx, item.PlanID)
		if err != nil {
			return err
		}
		if plan.UserID != entry.UserID {
			return fmt.Errorf("item %s belongs to another user: %w", item.ID, ErrForbidden)
		}
		if !domain.SameDate(plan.PlanDate, entry.EntryDate) {
			return fmt.Errorf("item %s is planned for %s: %w", item.ID, domain.FormatDate(plan.PlanDate), ErrItemDateMismatch)
		}
		if item.TimeEntryID != nil {
			return fmt.Errorf("item %s links entry %s: %w", item.ID, *item.TimeEntryID, ErrItemAlreadyLinked)
		}
		item.LinkTimeEntry(entry.ID, entry.CreatedAt)
		return txItems.Update(ctx, item)
	})
	if err != nil {
		return result, err
	}

	s.publisher.Publish(realtime.Change{Topic: realtime.TopicTimeEntries, Op: realtime.OpInsert, Key: entry.ID})
	if opts.LinkItemID != "" {
		s.publisher.Publish(realtime.Change{Topic: realtime.TopicPlanItems, Op: realtime.OpUpdate, Key: opts.LinkItemID})
	}
	return result, nil
}

func (s *timeEntryService) ListForDate(ctx context.Context, userID string, date time.Time) ([]*domain.TimeEntry, error) {
	return s.entries.ListByUserAndDate(ctx, userID, date)
}
