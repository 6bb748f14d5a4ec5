package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/plangate/internal/db"
	"github.com/alexanderramin/plangate/internal/domain"
)

const planItemColumns = `id, plan_id, title, description, estimated_minutes, priority,
	mandate_id, task_type_id, assigned_by_admin, completed, time_entry_id, order_index,
	created_at, updated_at`

// SQLPlanItemRepo implements PlanItemRepo.
type SQLPlanItemRepo struct {
	db db.DBTX
}

// NewSQLPlanItemRepo creates a new SQLPlanItemRepo.
func NewSQLPlanItemRepo(conn db.DBTX) *SQLPlanItemRepo {
	return &SQLPlanItemRepo{db: conn}
}

func (r *SQLPlanItemRepo) Create(ctx context.Context, it *domain.DailyPlanItem) error {
	query := `INSERT INTO daily_plan_items (` + planItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		it.ID,
		it.PlanID,
		it.Title,
		it.Description,
		it.EstimatedMinutes,
		string(it.Priority),
		nullableString(it.MandateID),
		nullableString(it.TaskTypeID),
		boolToInt(it.AssignedByAdmin),
		boolToInt(it.Completed),
		nullableString(it.TimeEntryID),
		it.OrderIndex,
		formatTimestamp(it.CreatedAt),
		formatTimestamp(it.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting plan item: %w", err)
	}
	return nil
}

func (r *SQLPlanItemRepo) GetByID(ctx context.Context, id string) (*domain.DailyPlanItem, error) {
	query := `SELECT ` + planItemColumns + ` FROM daily_plan_items WHERE id = ?`
	it, err := scanPlanItemFrom(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan item: %w", ErrNotFound)
		}
		return nil, err
	}
	return it, nil
}

func (r *SQLPlanItemRepo) ListByPlan(ctx context.Context, planID string) ([]*domain.DailyPlanItem, error) {
	query := `SELECT ` + planItemColumns + ` FROM daily_plan_items WHERE plan_id = ? ORDER BY order_index`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("listing plan items: %w", err)
	}
	defer rows.Close()

	var items []*domain.DailyPlanItem
	for rows.Next() {
		it, err := scanPlanItemFrom(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan items: %w", err)
	}
	return items, nil
}

func (r *SQLPlanItemRepo) Update(ctx context.Context, it *domain.DailyPlanItem) error {
	query := `UPDATE daily_plan_items SET title = ?, description = ?, estimated_minutes = ?, priority = ?,
		mandate_id = ?, task_type_id = ?, assigned_by_admin = ?, completed = ?, time_entry_id = ?,
		order_index = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		it.Title,
		it.Description,
		it.EstimatedMinutes,
		string(it.Priority),
		nullableString(it.MandateID),
		nullableString(it.TaskTypeID),
		boolToInt(it.AssignedByAdmin),
		boolToInt(it.Completed),
		nullableString(it.TimeEntryID),
		it.OrderIndex,
		formatTimestamp(it.UpdatedAt),
		it.ID,
	)
	if err != nil {
		return fmt.Errorf("updating plan item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("plan item %s: %w", it.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLPlanItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM daily_plan_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting plan item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("plan item %s: %w", id, ErrNotFound)
	}
	return nil
}

// NextOrderIndex returns one past the highest order index in the plan, or 0
// for an empty plan.
func (r *SQLPlanItemRepo) NextOrderIndex(ctx context.Context, planID string) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(order_index) + 1, 0) FROM daily_plan_items WHERE plan_id = ?`, planID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("computing next order index: %w", err)
	}
	return next, nil
}

func scanPlanItemFrom(s scanner) (*domain.DailyPlanItem, error) {
	var it domain.DailyPlanItem
	var priorityStr, createdAtStr, updatedAtStr string
	var mandateID, taskTypeID, timeEntryID sql.NullString
	var assigned, completed int

	err := s.Scan(
		&it.ID, &it.PlanID, &it.Title, &it.Description, &it.EstimatedMinutes, &priorityStr,
		&mandateID, &taskTypeID, &assigned, &completed, &timeEntryID, &it.OrderIndex,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning plan item: %w", err)
	}

	it.Priority = domain.Priority(priorityStr)
	it.MandateID = stringPtr(mandateID)
	it.TaskTypeID = stringPtr(taskTypeID)
	it.TimeEntryID = stringPtr(timeEntryID)
	it.AssignedByAdmin = intToBool(assigned)
	it.Completed = intToBool(completed)

	if it.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if it.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &it, nil
}
