package errors

import (
	"fmt"
	"net/http"

	"github.com/TrekLedger/trek-ledger-backend/logger"
)

type ErrorType string

const (
	ValidationError              ErrorType = "VALIDATION_ERROR"
	NotFoundError                ErrorType = "NOT_FOUND"
	AuthError                    ErrorType = "AUTHENTICATION_ERROR"
	DatabaseError                ErrorType = "DATABASE_ERROR"
	ServerError                  ErrorType = "SERVER_ERROR"
	ForbiddenError               ErrorType = "FORBIDDEN"
	TripNotFoundError            ErrorType = "TRIP_NOT_FOUND"
	InvalidStatusTransitionError ErrorType = "INVALID_STATUS_TRANSITION"
	TransferNotAllowedError      ErrorType = "TRANSFER_NOT_ALLOWED"
	InsufficientBalanceError     ErrorType = "INSUFFICIENT_BALANCE"
	ReserveShortfallError        ErrorType = "RESERVE_SHORTFALL"
	ConflictError                ErrorType = "CONFLICT"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
	// Meta carries structured data the caller needs to render an actionable
	// message (available balance, shortfall amount, trip name).
	Meta map[string]interface{} `json:"meta,omitempty"`
	// Warning marks soft failures: the same request re-submitted with an
	// explicit override flag will proceed.
	Warning bool `json:"warning,omitempty"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// GetHTTPStatus returns the HTTP status code associated with the error.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus == 0 {
		return getHTTPStatus(e.Type)
	}
	return e.HTTPStatus
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// Helper functions for common errors
func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NewDatabaseError(err error) *AppError {
	// Log original error but return sanitized message
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func Forbidden(message string, details string) *AppError {
	return &AppError{
		Type:       ForbiddenError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusForbidden,
	}
}

func TripNotFound(id string) *AppError {
	return &AppError{
		Type:       TripNotFoundError,
		Message:    "Trip not found",
		Detail:     fmt.Sprintf("Trip ID: %s", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func InvalidStatusTransition(current, new string) *AppError {
	return &AppError{
		Type:       InvalidStatusTransitionError,
		Message:    "Invalid status transition",
		Detail:     fmt.Sprintf("Cannot transition from %s to %s", current, new),
		HTTPStatus: http.StatusBadRequest,
	}
}

// TransferNotAllowed is returned when a transfer path violates the allowed-path
// graph (e.g. anything into a reserve bucket).
func TransferNotAllowed(from, to string) *AppError {
	return &AppError{
		Type:       TransferNotAllowedError,
		Message:    "Transfer not allowed",
		Detail:     fmt.Sprintf("Transfers from %s to %s are not permitted", from, to),
		HTTPStatus: http.StatusBadRequest,
	}
}

// InsufficientBalance is returned when the source wallet or bucket cannot cover
// the requested amount. The available amount is included for the caller.
func InsufficientBalance(source string, available, requested float64) *AppError {
	return &AppError{
		Type:       InsufficientBalanceError,
		Message:    "Insufficient balance",
		Detail:     fmt.Sprintf("%s holds %.2f, requested %.2f", source, available, requested),
		HTTPStatus: http.StatusBadRequest,
		Meta: map[string]interface{}{
			"source":    source,
			"available": available,
			"requested": requested,
		},
	}
}

// ReserveShortfall builds the soft-warning response for the reserve guard.
// It is not a hard failure: the same operation re-invoked with the override
// flag set proceeds and persists.
func ReserveShortfall(message string, meta map[string]interface{}) *AppError {
	return &AppError{
		Type:       ReserveShortfallError,
		Message:    message,
		HTTPStatus: http.StatusConflict,
		Meta:       meta,
		Warning:    true,
	}
}

func NewConflictError(message string, detail string) *AppError {
	return &AppError{
		Type:       ConflictError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError, InvalidStatusTransitionError, TransferNotAllowedError, InsufficientBalanceError:
		return http.StatusBadRequest
	case NotFoundError, TripNotFoundError:
		return http.StatusNotFound
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case ReserveShortfallError, ConflictError:
		return http.StatusConflict
	case DatabaseError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
