package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/plangate/internal/db"
	"github.com/alexanderramin/plangate/internal/domain"
)

const planColumns = `id, user_id, plan_date, status, user_notes, admin_notes,
	submitted_at, approved_at, approved_by, edited_after_submission, created_at, updated_at`

// SQLPlanRepo implements PlanRepo on any DBTX. Queries use "?" placeholders;
// Postgres connections are wrapped with db.Wrap.
type SQLPlanRepo struct {
	db db.DBTX
}

// NewSQLPlanRepo creates a new SQLPlanRepo.
func NewSQLPlanRepo(conn db.DBTX) *SQLPlanRepo {
	return &SQLPlanRepo{db: conn}
}

func (r *SQLPlanRepo) Create(ctx context.Context, p *domain.DailyPlan) error {
	query := `INSERT INTO daily_plans (` + planColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		domain.FormatDate(p.PlanDate),
		string(p.Status),
		p.UserNotes,
		p.AdminNotes,
		nullableTimeToString(p.SubmittedAt, time.RFC3339),
		nullableTimeToString(p.ApprovedAt, time.RFC3339),
		nullableString(p.ApprovedBy),
		boolToInt(p.EditedAfterSubmission),
		formatTimestamp(p.CreatedAt),
		formatTimestamp(p.UpdatedAt),
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("plan for %s on %s: %w", p.UserID, domain.FormatDate(p.PlanDate), ErrDuplicatePlan)
		}
		return fmt.Errorf("inserting daily plan: %w", err)
	}
	return nil
}

func (r *SQLPlanRepo) GetByID(ctx context.Context, id string) (*domain.DailyPlan, error) {
	query := `SELECT ` + planColumns + ` FROM daily_plans WHERE id = ?`
	return r.scanPlan(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLPlanRepo) FindForDate(ctx context.Context, userID string, date time.Time) (*domain.DailyPlan, error) {
	query := `SELECT ` + planColumns + ` FROM daily_plans WHERE user_id = ? AND plan_date = ?`
	return r.scanPlan(r.db.QueryRowContext(ctx, query, userID, domain.FormatDate(date)))
}

func (r *SQLPlanRepo) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyPlan, error) {
	query := `SELECT ` + planColumns + ` FROM daily_plans
		WHERE user_id = ? AND plan_date >= ? AND plan_date <= ?
		ORDER BY plan_date`
	rows, err := r.db.QueryContext(ctx, query, userID, domain.FormatDate(from), domain.FormatDate(to))
	if err != nil {
		return nil, fmt.Errorf("listing plans by user: %w", err)
	}
	defer rows.Close()
	return r.scanPlans(rows)
}

func (r *SQLPlanRepo) ListByStatus(ctx context.Context, status domain.PlanStatus) ([]*domain.DailyPlan, error) {
	query := `SELECT ` + planColumns + ` FROM daily_plans WHERE status = ? ORDER BY plan_date, user_id`
	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("listing plans by status: %w", err)
	}
	defer rows.Close()
	return r.scanPlans(rows)
}

func (r *SQLPlanRepo) Update(ctx context.Context, p *domain.DailyPlan) error {
	query := `UPDATE daily_plans SET status = ?, user_notes = ?, admin_notes = ?,
		submitted_at = ?, approved_at = ?, approved_by = ?, edited_after_submission = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(p.Status),
		p.UserNotes,
		p.AdminNotes,
		nullableTimeToString(p.SubmittedAt, time.RFC3339),
		nullableTimeToString(p.ApprovedAt, time.RFC3339),
		nullableString(p.ApprovedBy),
		boolToInt(p.EditedAfterSubmission),
		formatTimestamp(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating daily plan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("daily plan %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLPlanRepo) scanPlan(row *sql.Row) (*domain.DailyPlan, error) {
	p, err := scanPlanFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("daily plan: %w", ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (r *SQLPlanRepo) scanPlans(rows *sql.Rows) ([]*domain.DailyPlan, error) {
	var plans []*domain.DailyPlan
	for rows.Next() {
		p, err := scanPlanFrom(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily plans: %w", err)
	}
	return plans, nil
}

func scanPlanFrom(s scanner) (*domain.DailyPlan, error) {
	var p domain.DailyPlan
	var planDateStr, statusStr, createdAtStr, updatedAtStr string
	var submittedAt, approvedAt, approvedBy sql.NullString
	var edited int

	err := s.Scan(
		&p.ID, &p.UserID, &planDateStr, &statusStr, &p.UserNotes, &p.AdminNotes,
		&submittedAt, &approvedAt, &approvedBy, &edited, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning daily plan: %w", err)
	}

	p.Status = domain.PlanStatus(statusStr)
	if !domain.ValidPlanStatuses[p.Status] {
		return nil, fmt.Errorf("daily plan %s has unknown status %q", p.ID, statusStr)
	}
	p.EditedAfterSubmission = intToBool(edited)
	p.SubmittedAt = parseNullableTime(submittedAt, time.RFC3339)
	p.ApprovedAt = parseNullableTime(approvedAt, time.RFC3339)
	p.ApprovedBy = stringPtr(approvedBy)

	if p.PlanDate, err = domain.ParseDate(planDateStr); err != nil {
		return nil, fmt.Errorf("parsing plan_date: %w", err)
	}
	if p.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}
