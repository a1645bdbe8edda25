package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid score record")
	ErrForeignRecord = errors.New("record belongs to another application")
	ErrDuplicateAI   = errors.New("current ai record already exists")
	ErrMissingDB     = errors.New("database handle is nil")
	ErrEmptyDSN      = errors.New("database url is empty")
)
