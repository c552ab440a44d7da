package application

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	ErrNotFound           = errors.New("not found")
	ErrFolderNotEmpty     = errors.New("folder not empty")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrNoRootFolder       = errors.New("no root folder")
)

// ValidationError represents a local validation failure rejected before any
// network round trip.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RequestError represents a failed backend call, carrying the backend's
// message string so the UI can surface it verbatim.
type RequestError struct {
	Op      string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == 404 || strings.Contains(strings.ToLower(e.Message), "not found")
	case ErrFolderNotEmpty:
		return strings.Contains(strings.ToLower(e.Message), "diagrams")
	}
	return false
}
