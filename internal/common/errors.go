package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")

	// Work order errors
	ErrWorkOrderNotFound      = errors.New("work order not found")
	ErrAlreadyCompleted       = errors.New("work order already completed")
	ErrDeadlineRequired       = errors.New("deadline is required")
	ErrEmptyIDs               = errors.New("no work order ids given")
	ErrTransferPersonNotFound = errors.New("transfer person not found")
	ErrSequenceExhausted      = errors.New("daily work order sequence exhausted")

	// Registry errors
	ErrUserNotFound     = errors.New("user not found")
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidTimeRange = errors.New("start time must be before end time")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
)
