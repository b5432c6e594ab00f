package service

import (
	"errors"
	"fmt"
)

// ErrTransactionFailed wraps unexpected failures inside a checkout transaction.
// Nothing was persisted, so the caller may retry the whole checkout.
var ErrTransactionFailed = errors.New("checkout transaction failed")

type ValidationError struct {
	Message string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product '%s': available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// IsDomainError reports whether err belongs to the taxonomy above and can be shown to a client as is.
func IsDomainError(err error) bool {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		stock      *InsufficientStockError
		forbidden  *ForbiddenError
		conflict   *ConflictError
	)
	return errors.As(err, &validation) ||
		errors.As(err, &notFound) ||
		errors.As(err, &stock) ||
		errors.As(err, &forbidden) ||
		errors.As(err, &conflict)
}
