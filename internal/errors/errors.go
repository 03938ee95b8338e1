// Package errors provides custom error types for Monex.
// All store and session errors use AppError so that adapters (HTTP, CLI)
// can render a stable code without inspecting internal details.
package errors

import (
	"errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target carries the same code, so that a Wrap'd or
// WithMessage'd copy still matches its sentinel.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// Session errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrNotSignedIn        = &AppError{Code: "NOT_SIGNED_IN", Message: "No active session", StatusCode: http.StatusUnauthorized}
	ErrSessionMismatch    = &AppError{Code: "SESSION_MISMATCH", Message: "Token does not belong to the active session", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput     = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound         = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInvalidOperation = &AppError{Code: "INVALID_OPERATION", Message: "Operation not allowed", StatusCode: http.StatusConflict}
	ErrPersistence      = &AppError{Code: "PERSISTENCE_ERROR", Message: "Failed to persist data", StatusCode: http.StatusInternalServerError}
	ErrInternalServer   = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
)

// Budget errors.
var (
	ErrBudgetNotFound      = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrExpenseNotFound     = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrMiscBudgetLocked    = &AppError{Code: "MISC_BUDGET_LOCKED", Message: "The miscellaneous budget cannot be deleted or given an amount", StatusCode: http.StatusConflict}
	ErrDuplicateMiscBudget = &AppError{Code: "DUPLICATE_MISC_BUDGET", Message: "A miscellaneous budget already exists", StatusCode: http.StatusConflict}
	ErrDuplicateBudget     = &AppError{Code: "DUPLICATE_BUDGET", Message: "A budget with this id already exists", StatusCode: http.StatusConflict}
)

// Asset errors.
var (
	ErrAssetNotFound    = &AppError{Code: "ASSET_NOT_FOUND", Message: "Asset not found", StatusCode: http.StatusNotFound}
	ErrInvalidAssetType = &AppError{Code: "INVALID_ASSET_TYPE", Message: "Unsupported asset type", StatusCode: http.StatusBadRequest}
	ErrCategoryMismatch = &AppError{Code: "CATEGORY_MISMATCH", Message: "Asset category does not match its type", StatusCode: http.StatusBadRequest}
	ErrDetailsMismatch  = &AppError{Code: "DETAILS_MISMATCH", Message: "Asset details do not match its type", StatusCode: http.StatusBadRequest}
	ErrNotALoan         = &AppError{Code: "NOT_A_LOAN", Message: "EMI payments can only be recorded on loans", StatusCode: http.StatusUnprocessableEntity}
	ErrDuplicateAsset   = &AppError{Code: "DUPLICATE_ASSET", Message: "An asset with this id already exists", StatusCode: http.StatusConflict}
)
