package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	ErrUpstream        = errors.New("upstream error")
	ErrUpstreamTimeout = fmt.Errorf("upstream timeout: %w", ErrUpstream)
	ErrPersistence     = errors.New("persistence error")
	ErrMail            = errors.New("mail delivery failed")
)

// Verification code failures. Both wrap a broader sentinel so callers that
// only care about not-found/unauthorized keep working.
var (
	ErrCodeNotFound = fmt.Errorf("no verification code found: %w", ErrNotFound)
	ErrCodeMismatch = fmt.Errorf("invalid verification code: %w", ErrUnauthorized)
)

// Upload policy rejections.
var (
	ErrUploadPolicy    = errors.New("upload rejected")
	ErrEmptyFile       = fmt.Errorf("no file selected: %w", ErrUploadPolicy)
	ErrUnsupportedType = fmt.Errorf("file type not allowed: %w", ErrUploadPolicy)
	ErrTooLarge        = fmt.Errorf("file too large: %w", ErrUploadPolicy)
)
