package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/alexanderramin/plangate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLPlanRepo(db)
	ctx := context.Background()

	plan := testutil.NewTestPlan("u1", testutil.Date("2024-03-01"), testutil.WithUserNotes("deep work"))
	require.NoError(t, repo.Create(ctx, plan))

	fetched, err := repo.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, fetched.ID)
	assert.Equal(t, "u1", fetched.UserID)
	assert.Equal(t, "2024-03-01", domain.FormatDate(fetched.PlanDate))
	assert.Equal(t, domain.PlanDraft, fetched.Status)
	assert.Equal(t, "deep work", fetched.UserNotes)
	assert.Nil(t, fetched.SubmittedAt)
	assert.Nil(t, fetched.ApprovedBy)
	assert.True(t, plan.CreatedAt.Equal(fetched.CreatedAt))
}

func TestPlanRepo_GetByID_NotFound(t *testing.T) {
	repo := NewSQLPlanRepo(testutil.NewTestDB(t))

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanRepo_FindForDate_MatchesByDate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLPlanRepo(db)
	ctx := context.Background()

	plan := testutil.NewTestPlan("u1", testutil.Date("2024-03-01"))
	require.NoError(t, repo.Create(ctx, plan))

	// Any time of day on the same date finds the plan.
	found, err := repo.FindForDate(ctx, "u1", time.Date(2024, 3, 1, 17, 45, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, plan.ID, found.ID)

	_, err = repo.FindForDate(ctx, "u1", testutil.Date("2024-03-02"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindForDate(ctx, "u2", testutil.Date("2024-03-01"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanRepo_Create_DuplicateDateRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLPlanRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestPlan("u1", testutil.Date("2024-03-01"))))

	err := repo.Create(ctx, testutil.NewTestPlan("u1", testutil.Date("2024-03-01")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicatePlan)

	plans, err := repo.ListByUser(ctx, "u1", testutil.Date("2024-01-01"), testutil.Date("2024-12-31"))
	require.NoError(t, err)
	assert.Len(t, plans, 1, "registry must never hold two plans for one date")
}

func TestPlanRepo_ListByUser_RangeAndOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLPlanRepo(db)
	ctx := context.Background()

	for _, d := range []string{"2024-03-03", "2024-03-01", "2024-03-10", "2024-02-28"} {
		require.NoError(t, repo.Create(ctx, testutil.NewTestPlan("u1", testutil.Date(d))))
	}
	require.NoError(t, repo.Create(ctx, testutil.NewTestPlan("u2", testutil.Date("2024-03-02"))))

	plans, err := repo.ListByUser(ctx, "u1", testutil.Date("2024-03-01"), testutil.Date("2024-03-07"))
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "2024-03-01", domain.FormatDate(plans[0].PlanDate))
	assert.Equal(t, "2024-03-03", domain.FormatDate(plans[1].PlanDate))
}

func TestPlanRepo_ListByStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLPlanRepo(db)
	ctx := context.Background()

	submitted := testutil.NewTestPlan("u1", testutil.Date("2024-03-01"), testutil.WithPlanStatus(domain.PlanSubmitted))
	draft := testutil.NewTestPlan("u2", testutil.Date("2024-03-01"))
	require.NoError(t, repo.Create(ctx, submitted))
	require.NoError(t, repo.Create(ctx, draft))

	plans, err := repo.ListByStatus(ctx, domain.PlanSubmitted)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, submitted.ID, plans[0].ID)
	require.NotNil(t, plans[0].SubmittedAt)
}

func TestPlanRepo_Update_PersistsLifecycleFields(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLPlanRepo(db)
	ctx := context.Background()

	plan := testutil.NewTestPlan("u1", testutil.Date("2024-03-01"))
	require.NoError(t, repo.Create(ctx, plan))

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, plan.Submit(now))
	require.NoError(t, plan.Approve("boss", now.Add(time.Hour)))
	plan.AdminNotes = "looks good"
	plan.EditedAfterSubmission = true
	require.NoError(t, repo.Update(ctx, plan))

	fetched, err := repo.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanApproved, fetched.Status)
	assert.Equal(t, "looks good", fetched.AdminNotes)
	assert.True(t, fetched.EditedAfterSubmission)
	require.NotNil(t, fetched.SubmittedAt)
	assert.True(t, now.Equal(*fetched.SubmittedAt))
	require.NotNil(t, fetched.ApprovedBy)
	assert.Equal(t, "boss", *fetched.ApprovedBy)
}

func TestPlanRepo_Update_NotFound(t *testing.T) {
	repo := NewSQLPlanRepo(testutil.NewTestDB(t))

	plan := testutil.NewTestPlan("u1", testutil.Date("2024-03-01"))
	err := repo.Update(context.Background(), plan)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanRepo_RejectsUnknownStoredStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLPlanRepo(db)
	ctx := context.Background()

	plan := testutil.NewTestPlan("u1", testutil.Date("2024-03-01"))
	require.NoError(t, repo.Create(ctx, plan))

	// Simulate a row written by an older or foreign schema.
	_, err := db.ExecContext(ctx, `PRAGMA ignore_check_constraints = ON`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `UPDATE daily_plans SET status = 'archived' WHERE id = ?`, plan.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, plan.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown status "archived"`)

	_, err = repo.FindForDate(ctx, "u1", testutil.Date("2024-03-01"))
	require.Error(t, err)
}
