package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrDuplicatePlan is returned when a user already has a plan for the date.
	ErrDuplicatePlan = errors.New("a plan already exists for this user and date")
)
