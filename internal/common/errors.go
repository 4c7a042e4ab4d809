package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Article errors
	ErrArticleNotFound = errors.New("article not found")
	ErrTitleTaken      = errors.New("article title already exists")
	ErrArticleLocked   = errors.New("article is being edited")
	ErrContentTooLarge = errors.New("content too large")

	// Asset errors
	ErrReclaimRunning = errors.New("reclaim already running")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)
