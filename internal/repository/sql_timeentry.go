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

const timeEntryColumns = `id, user_id, entry_date, minutes, description, mandate_id, task_type_id, plan_id, created_at`

// SQLTimeEntryRepo implements TimeEntryRepo.
type SQLTimeEntryRepo struct {
	db db.DBTX
}

// NewSQLTimeEntryRepo creates a new SQLTimeEntryRepo.
func NewSQLTimeEntryRepo(conn db.DBTX) *SQLTimeEntryRepo {
	return &SQLTimeEntryRepo{db: conn}
}

func (r *SQLTimeEntryRepo) Create(ctx context.Context, e *domain.TimeEntry) error {
	query := `INSERT INTO time_entries (` + timeEntryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		domain.FormatDate(e.EntryDate),
		e.Minutes,
		e.Description,
		nullableString(e.MandateID),
		nullableString(e.TaskTypeID),
		nullableString(e.PlanID),
		formatTimestamp(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting time entry: %w", err)
	}
	return nil
}

func (r *SQLTimeEntryRepo) GetByID(ctx context.Context, id string) (*domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = ?`
	e, err := scanTimeEntryFrom(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("time entry: %w", ErrNotFound)
		}
		return nil, err
	}
	return e, nil
}

func (r *SQLTimeEntryRepo) ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]*domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries
		WHERE user_id = ? AND entry_date = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID, domain.FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("listing time entries by date: %w", err)
	}
	defer rows.Close()
	return scanTimeEntries(rows)
}

func (r *SQLTimeEntryRepo) ListByPlan(ctx context.Context, planID string) ([]*domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE plan_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("listing time entries by plan: %w", err)
	}
	defer rows.Close()
	return scanTimeEntries(rows)
}

func scanTimeEntries(rows *sql.Rows) ([]*domain.TimeEntry, error) {
	var entries []*domain.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntryFrom(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time entries: %w", err)
	}
	return entries, nil
}

func scanTimeEntryFrom(s scanner) (*domain.TimeEntry, error) {
	var e domain.TimeEntry
	var entryDateStr, createdAtStr string
	var mandateID, taskTypeID, planID sql.NullString

	err := s.Scan(&e.ID, &e.UserID, &entryDateStr, &e.Minutes, &e.Description,
		&mandateID, &taskTypeID, &planID, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning time entry: %w", err)
	}

	e.MandateID = stringPtr(mandateID)
	e.TaskTypeID = stringPtr(taskTypeID)
	e.PlanID = stringPtr(planID)

	if e.EntryDate, err = domain.ParseDate(entryDateStr); err != nil {
		return nil, fmt.Errorf("parsing entry_date: %w", err)
	}
	if e.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &e, nil
}
