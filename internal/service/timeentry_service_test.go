package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/alexanderramin/plangate/internal/realtime"
	"github.com/alexanderramin/plangate/internal/repository"
	"github.com/alexanderramin/plangate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHours_BlockedWithoutPlan(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	entry := &domain.TimeEntry{EntryDate: testutil.Date("2024-03-01"), Minutes: 60}
	res, err := env.entrySvc.RegisterHours(ctx, owner, entry, RegisterOptions{})

	var blocked *BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "u1", blocked.UserID)
	assert.Equal(t, domain.ReasonNoPlan, blocked.Result.Code)
	assert.False(t, res.Allowed)
	assert.Contains(t, err.Error(), "2024-03-01")

	entries, err := env.entrySvc.ListForDate(ctx, "u1", testutil.Date("2024-03-01"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, env.publisher.topics())
}

func TestRegisterHours_BlockedForDraftPlan(t *testing.T) {
	env := setupEnv(t)
	env.seedPlan(t, "2024-03-01", domain.PlanDraft, 1)

	entry := &domain.TimeEntry{EntryDate: testutil.Date("2024-03-01"), Minutes: 60}
	_, err := env.entrySvc.RegisterHours(context.Background(), owner, entry, RegisterOptions{})

	var blocked *BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, domain.ReasonPlanNotSubmitted, blocked.Result.Code)
}

func TestRegisterHours_AllowedRecordsPlan(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	plan := env.seedPlan(t, "2024-03-01", domain.PlanSubmitted, 1)
	env.publisher.changes = nil

	entry := &domain.TimeEntry{EntryDate: testutil.Date("2024-03-01"), Minutes: 90, Description: "  standup + review "}
	res, err := env.entrySvc.RegisterHours(ctx, owner, entry, RegisterOptions{})
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	stored, err := env.entries.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UserID)
	assert.Equal(t, 90, stored.Minutes)
	assert.Equal(t, "standup + review", stored.Description)
	require.NotNil(t, stored.PlanID)
	assert.Equal(t, plan.ID, *stored.PlanID)

	byPlan, err := env.entries.ListByPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Len(t, byPlan, 1)
	assert.Equal(t, []string{realtime.TopicTimeEntries}, env.publisher.topics())
}

func TestRegisterHours_AdminBypassLeavesPlanUnset(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	entry := &domain.TimeEntry{UserID: "u2", EntryDate: testutil.Date("2024-03-01"), Minutes: 30}
	res, err := env.entrySvc.RegisterHours(ctx, admin, entry, RegisterOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonAdminBypass, res.Code)

	stored, err := env.entries.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "u2", stored.UserID)
	assert.Nil(t, stored.PlanID)
}

func TestRegisterHours_RejectsInvalidInput(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.entrySvc.RegisterHours(ctx, owner, &domain.TimeEntry{EntryDate: testutil.Date("2024-03-01")}, RegisterOptions{})
	require.ErrorIs(t, err, ErrInvalidEntry)

	_, err = env.entrySvc.RegisterHours(ctx, owner, &domain.TimeEntry{UserID: "u2", EntryDate: testutil.Date("2024-03-01"), Minutes: 5}, RegisterOptions{})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestRegisterHours_NoUserIsBlocked(t *testing.T) {
	env := setupEnv(t)

	_, err := env.entrySvc.RegisterHours(context.Background(), Actor{}, &domain.TimeEntry{EntryDate: testutil.Date("2024-03-01"), Minutes: 5}, RegisterOptions{})

	var blocked *BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, domain.ReasonNoUser, blocked.Result.Code)
}

func TestRegisterHours_FailOpenStillWrites(t *testing.T) {
	database := testutil.NewTestDB(t)
	entries := repository.NewSQLTimeEntryRepo(database)
	gate := NewGateService(&stubFinder{err: errors.New("registry down")}, GateOptions{})
	svc := NewTimeEntryService(entries, gate, testutil.NewTestUoW(database), false, nil)
	ctx := context.Background()

	entry := &domain.TimeEntry{EntryDate: testutil.Date("2024-03-01"), Minutes: 45}
	res, err := svc.RegisterHours(ctx, owner, entry, RegisterOptions{})
	require.NoError(t, err)
	assert.True(t, res.Degraded())
	assert.Equal(t, ValidationUnavailableReason, res.Reason)

	stored, err := entries.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PlanID)
}

func TestRegisterHours_LinksPlanItem(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	plan := env.seedPlan(t, "2024-03-01", domain.PlanApproved, 2)
	target := plan.Items[1]
	env.publisher.changes = nil

	entry := &domain.TimeEntry{EntryDate: testutil.Date("2024-03-01"), Minutes: 30}
	_, err := env.entrySvc.RegisterHours(ctx, owner, entry, RegisterOptions{LinkItemID: target.ID})
	require.NoError(t, err)

	item, err := env.items.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, item.Completed)
	require.NotNil(t, item.TimeEntryID)
	assert.Equal(t, entry.ID, *item.TimeEntryID)

	other, err := env.items.GetByID(ctx, plan.Items[0].ID)
	require.NoError(t, err)
	assert.False(t, other.Completed)

	assert.Equal(t, []string{realtime.TopicTimeEntries, realtime.TopicPlanItems}, env.publisher.topics())
}

func TestRegisterHours_LinkToOtherUsersItemRollsBack(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	env.seedPlan(t, "2024-03-01", domain.PlanSubmitted, 1)

	foreign := testutil.NewTestPlan("u2", testutil.Date("2024-03-01"), testutil.WithPlanStatus(domain.PlanSubmitted))
	require.NoError(t, env.plans.Create(ctx, foreign))
	foreignItem := testutil.NewTestItem(foreign.ID, "theirs")
	require.NoError(t, env.items.Create(ctx, foreignItem))

	entry := &domain.TimeEntry{EntryDate: testutil.Date("2024-03-01"), Minutes: 30}
	_, err := env.entrySvc.RegisterHours(ctx, owner, entry, RegisterOptions{LinkItemID: foreignItem.ID})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.entries.GetByID(ctx, entry.ID)
	require.ErrorIs(t, err, repository.ErrNotFound, "entry insert rolled back")
}

func TestRegisterHours_LinkRejectsItemFromAnotherDay(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	plan := env.seedPlan(t, "2024-03-01", domain.PlanApproved, 1)
	env.seedPlan(t, "2024-03-02", domain.PlanApproved, 1)

	entry := &domain.TimeEntry{EntryDate: testutil.Date("2024-03-02"), Minutes: 30}
	_, err := env.entrySvc.RegisterHours(ctx, owner, entry, RegisterOptions{LinkItemID: plan.Items[0].ID})
	require.ErrorIs(t, err, ErrItemDateMismatch)

	_, err = env.entries.GetByID(ctx, entry.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	item, err := env.items.GetByID(ctx, plan.Items[0].ID)
	require.NoError(t, err)
	assert.Nil(t, item.TimeEntryID)
	assert.False(t, item.Completed)
}

func TestRegisterHours_LinkKeepsExistingBackReference(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	plan := env.seedPlan(t, "2024-03-01", domain.PlanApproved, 1)
	itemID := plan.Items[0].ID

	first := &domain.TimeEntry{EntryDate: testutil.Date("2024-03-01"), Minutes: 30}
	_, err := env.entrySvc.RegisterHours(ctx, owner, first, RegisterOptions{LinkItemID: itemID})
	require.NoError(t, err)

	second := &domain.TimeEntry{EntryDate: testutil.Date("2024-03-01"), Minutes: 15}
	_, err = env.entrySvc.RegisterHours(ctx, owner, second, RegisterOptions{LinkItemID: itemID})
	require.ErrorIs(t, err, ErrItemAlreadyLinked)

	item, err := env.items.GetByID(ctx, itemID)
	require.NoError(t, err)
	require.NotNil(t, item.TimeEntryID)
	assert.Equal(t, first.ID, *item.TimeEntryID)

	entries, err := env.entries.ListByUserAndDate(ctx, "u1", testutil.Date("2024-03-01"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRegisterHours_RollbackWhenItemLinkFails(t *testing.T) {
	database := testutil.NewTestDB(t)
	plans := repository.NewSQLPlanRepo(database)
	items := repository.NewSQLPlanItemRepo(database)
	entries := repository.NewSQLTimeEntryRepo(database)
	ctx := context.Background()

	plan := testutil.NewTestPlan("u1", testutil.Date("2024-03-01"), testutil.WithPlanStatus(domain.PlanSubmitted))
	require.NoError(t, plans.Create(ctx, plan))
	item := testutil.NewTestItem(plan.ID, "deploy")
	require.NoError(t, items.Create(ctx, item))

	// ExecContext #1 = entries.Create, #2 = items.Update.
	failUoW := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: errors.New("injected item update failure")}
	gate := NewGateService(plans, GateOptions{})
	svc := NewTimeEntryService(entries, gate, failUoW, false, nil)

	entry := &domain.TimeEntry{EntryDate: testutil.Date("2024-03-01"), Minutes: 30}
	_, err := svc.RegisterHours(ctx, owner, entry, RegisterOptions{LinkItemID: item.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected item update failure")

	stored, err := entries.ListByUserAndDate(ctx, "u1", testutil.Date("2024-03-01"))
	require.NoError(t, err)
	assert.Empty(t, stored, "no entry should exist after rollback")

	reloaded, err := items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Completed)
	assert.Nil(t, reloaded.TimeEntryID)
}

// flipAfterCheckGate approves the registration and then rejects the plan,
// simulating an administrator acting between the check and the write.
type flipAfterCheckGate struct {
	GateService
	flip func()
}

func (g *flipAfterCheckGate) CheckCanRegisterHours(ctx context.Context, userID string, date time.Time, isAdmin bool) domain.ValidationResult {
	res := g.GateService.CheckCanRegisterHours(ctx, userID, date, isAdmin)
	g.flip()
	return res
}

func TestRegisterHours_ReverifyCatchesRejectedPlan(t *testing.T) {
	for _, reverify := range []bool{true, false} {
		env := setupEnvWith(t, reverify)
		ctx := context.Background()
		plan := env.seedPlan(t, "2024-03-01", domain.PlanSubmitted, 1)

		gate := &flipAfterCheckGate{GateService: env.gate, flip: func() {
			_, err := env.planSvc.Reject(ctx, admin, plan.ID, "changed my mind")
			require.NoError(t, err)
		}}
		svc := NewTimeEntryService(env.entries, gate, env.uow, reverify, nil)

		entry := &domain.TimeEntry{EntryDate: testutil.Date("2024-03-01"), Minutes: 30}
		_, err := svc.RegisterHours(ctx, owner, entry, RegisterOptions{})

		stored, _ := env.entrySvc.ListForDate(ctx, "u1", testutil.Date("2024-03-01"))
		if reverify {
			require.ErrorIs(t, err, ErrPlanNoLongerQualifies)
			assert.Empty(t, stored)
		} else {
			require.NoError(t, err, "without reverification the check-then-write window is accepted")
			assert.Len(t, stored, 1)
		}
	}
}

func TestRegisterHours_ReportsToObserver(t *testing.T) {
	env := setupEnv(t)
	env.seedPlan(t, "2024-03-01", domain.PlanSubmitted, 1)
	env.observer.events = nil

	entry := &domain.TimeEntry{EntryDate: testutil.Date("2024-03-01"), Minutes: 30}
	_, err := env.entrySvc.RegisterHours(context.Background(), owner, entry, RegisterOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"check-can-register-hours", "register-hours"}, env.observer.names())
	last := env.observer.events[1]
	assert.True(t, last.Success)
	assert.Equal(t, string(domain.ReasonPlanQualifies), last.Fields["gate_code"])
}
