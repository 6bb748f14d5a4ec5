package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/plangate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCascadeDelete_PlanToItems verifies that deleting a plan cascades to its items.
func TestCascadeDelete_PlanToItems(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	planRepo := NewSQLPlanRepo(db)
	itemRepo := NewSQLPlanItemRepo(db)

	plan := testutil.NewTestPlan("u1", testutil.Date("2024-03-01"))
	require.NoError(t, planRepo.Create(ctx, plan))

	item := testutil.NewTestItem(plan.ID, "Child item")
	require.NoError(t, itemRepo.Create(ctx, item))

	_, err := db.ExecContext(ctx, `DELETE FROM daily_plans WHERE id = ?`, plan.ID)
	require.NoError(t, err)

	_, err = itemRepo.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound, "item should be cascade-deleted when plan is deleted")
}

// TestCascadeDelete_TimeEntryUnlinksItem verifies time_entries -> items SET NULL.
func TestCascadeDelete_TimeEntryUnlinksItem(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	planRepo := NewSQLPlanRepo(db)
	itemRepo := NewSQLPlanItemRepo(db)
	entryRepo := NewSQLTimeEntryRepo(db)

	plan := testutil.NewTestPlan("u1", testutil.Date("2024-03-01"))
	require.NoError(t, planRepo.Create(ctx, plan))

	entry := testutil.NewTestTimeEntry("u1", plan.PlanDate, 30, testutil.WithEntryPlan(plan.ID))
	require.NoError(t, entryRepo.Create(ctx, entry))

	item := testutil.NewTestItem(plan.ID, "Logged item")
	item.LinkTimeEntry(entry.ID, item.UpdatedAt)
	require.NoError(t, itemRepo.Create(ctx, item))

	_, err := db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, entry.ID)
	require.NoError(t, err)

	fetched, err := itemRepo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.TimeEntryID)
	assert.True(t, fetched.Completed, "completion survives entry deletion")
}
