package service

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/plangate/internal/db"
	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/alexanderramin/plangate/internal/locale"
	"github.com/alexanderramin/plangate/internal/realtime"
	"github.com/alexanderramin/plangate/internal/repository"
	"github.com/alexanderramin/plangate/internal/testutil"
	"github.com/stretchr/testify/require"
)

var (
	owner = Actor{UserID: "u1"}
	admin = Actor{UserID: "boss", Admin: true}
)

type recordingPublisher struct {
	mu      sync.Mutex
	changes []realtime.Change
}

func (p *recordingPublisher) Publish(c realtime.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.changes))
	for _, c := range p.changes {
		out = append(out, c.Topic)
	}
	return out
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.events))
	for _, e := range o.events {
		out = append(out, e.Name)
	}
	return out
}

// stubFinder is a PlanFinder returning a fixed answer and counting calls.
type stubFinder struct {
	plan  *domain.DailyPlan
	err   error
	calls atomic.Int32
}

func (f *stubFinder) FindForDate(ctx context.Context, userID string, date time.Time) (*domain.DailyPlan, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if f.plan == nil {
		return nil, repository.ErrNotFound
	}
	return f.plan, nil
}

type testEnv struct {
	db        *sql.DB
	plans     repository.PlanRepo
	items     repository.PlanItemRepo
	entries   repository.TimeEntryRepo
	uow       db.UnitOfWork
	publisher *recordingPublisher
	observer  *recordingObserver

	planSvc  PlanService
	gate     GateService
	entrySvc TimeEntryService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	return setupEnvWith(t, false)
}

func setupEnvWith(t *testing.T, reverify bool) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	env := &testEnv{
		db:        database,
		plans:     repository.NewSQLPlanRepo(database),
		items:     repository.NewSQLPlanItemRepo(database),
		entries:   repository.NewSQLTimeEntryRepo(database),
		uow:       testutil.NewTestUoW(database),
		publisher: &recordingPublisher{},
		observer:  &recordingObserver{},
	}
	env.planSvc = NewPlanService(env.plans, env.items, env.uow, env.publisher, env.observer)
	env.gate = NewGateService(env.plans, GateOptions{Translator: locale.New("en")}, env.observer)
	env.entrySvc = NewTimeEntryService(env.entries, env.gate, env.uow, reverify, env.publisher, env.observer)
	return env
}

// seedPlan creates a plan for u1 on date with the given number of items and
// drives it to status through the service.
func (e *testEnv) seedPlan(t *testing.T, date string, status domain.PlanStatus, items int) *domain.DailyPlan {
	t.Helper()
	ctx := context.Background()

	plan, err := e.planSvc.CreateDraft(ctx, owner, "", testutil.Date(date), "")
	require.NoError(t, err)
	for i := 0; i < items; i++ {
		require.NoError(t, e.planSvc.AddItem(ctx, owner, plan.ID, &domain.DailyPlanItem{
			Title:            "item",
			EstimatedMinutes: 30,
		}))
	}

	switch status {
	case domain.PlanDraft:
	case domain.PlanSubmitted:
		_, err = e.planSvc.Submit(ctx, owner, plan.ID)
		require.NoError(t, err)
	case domain.PlanApproved:
		_, err = e.planSvc.Submit(ctx, owner, plan.ID)
		require.NoError(t, err)
		_, err = e.planSvc.Approve(ctx, admin, plan.ID)
		require.NoError(t, err)
	case domain.PlanRejected:
		_, err = e.planSvc.Submit(ctx, owner, plan.ID)
		require.NoError(t, err)
		_, err = e.planSvc.Reject(ctx, admin, plan.ID, "too vague")
		require.NoError(t, err)
	}

	fetched, err := e.planSvc.GetWithItems(ctx, plan.ID)
	require.NoError(t, err)
	return fetched
}
