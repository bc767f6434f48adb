package services

import (
	"errors"

	"orderhub/internal/repositories"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrValidation           = errors.New("validation error")
	ErrStorage              = errors.New("storage error")
)

// Reason codes reported to API callers.
const (
	ReasonOrderNotFound     = "OrderNotFound"
	ReasonProductNotFound   = "ProductNotFound"
	ReasonNotFound          = "NotFound"
	ReasonInvalidTransition = "InvalidTransition"
	ReasonValidation        = "ValidationError"
	ReasonStorage           = "StorageError"
)

// Reason maps err onto the error taxonomy.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return ReasonOrderNotFound
	case errors.Is(err, ErrProductNotFound):
		return ReasonProductNotFound
	case errors.Is(err, ErrNotificationNotFound), errors.Is(err, repositories.ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrInvalidTransition):
		return ReasonInvalidTransition
	case errors.Is(err, ErrValidation):
		return ReasonValidation
	default:
		return ReasonStorage
	}
}

// IsNotFound reports whether err names any missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrNotificationNotFound) ||
		errors.Is(err, repositories.ErrNotFound)
}
