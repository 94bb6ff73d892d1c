package shared

import (
	"errors"
	"fmt"
)

// ErrorCode classifies every error the engine returns at an operation boundary
type ErrorCode string

const (
	CodeInsufficientFabric     ErrorCode = "INSUFFICIENT_FABRIC"
	CodeOverAllocation         ErrorCode = "OVER_ALLOCATION"
	CodeOverAssignment         ErrorCode = "OVER_ASSIGNMENT"
	CodeOverReceipt            ErrorCode = "OVER_RECEIPT"
	CodeIncompleteUsage        ErrorCode = "INCOMPLETE_USAGE"
	CodeNothingToPack          ErrorCode = "NOTHING_TO_PACK"
	CodeNothingPacked          ErrorCode = "NOTHING_PACKED"
	CodeInvalidQuantityMap     ErrorCode = "INVALID_QUANTITY_MAP"
	CodeConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"
	CodeNotFound               ErrorCode = "NOT_FOUND"
	CodeInvalidState           ErrorCode = "INVALID_STATE"
	CodeValidation             ErrorCode = "VALIDATION_FAILED"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

// ErrorCode returns the classification code
func (e *DomainError) ErrorCode() ErrorCode {
	return e.Code
}

// Is matches any DomainError sentinel carrying the same code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinels for errors.Is checks
var (
	ErrInsufficientFabric     = &DomainError{Code: CodeInsufficientFabric}
	ErrOverAllocation         = &DomainError{Code: CodeOverAllocation}
	ErrOverAssignment         = &DomainError{Code: CodeOverAssignment}
	ErrOverReceipt            = &DomainError{Code: CodeOverReceipt}
	ErrIncompleteUsage        = &DomainError{Code: CodeIncompleteUsage}
	ErrNothingToPack          = &DomainError{Code: CodeNothingToPack}
	ErrNothingPacked          = &DomainError{Code: CodeNothingPacked}
	ErrInvalidQuantityMap     = &DomainError{Code: CodeInvalidQuantityMap}
	ErrConcurrentModification = &DomainError{Code: CodeConcurrentModification}
	ErrNotFound               = &DomainError{Code: CodeNotFound}
	ErrInvalidState           = &DomainError{Code: CodeInvalidState}
	ErrValidation             = &DomainError{Code: CodeValidation}
)

// CodeOf extracts the code of a (possibly wrapped) domain error, or "" if none
func CodeOf(err error) ErrorCode {
	var coded interface{ ErrorCode() ErrorCode }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return ""
}

// IsRetryable reports whether the caller may re-fetch and retry the operation
func IsRetryable(err error) bool {
	return CodeOf(err) == CodeConcurrentModification
}

// Quantity errors

// QuantityExceededError is returned when a request exceeds what is left for a size
type QuantityExceededError struct {
	*DomainError
	Size      string
	Requested int
	Available int
}

// Details exposes the offending size for transport adapters
func (e *QuantityExceededError) Details() map[string]interface{} {
	return map[string]interface{}{
		"size":      e.Size,
		"requested": e.Requested,
		"available": e.Available,
	}
}

func newQuantityExceededError(code ErrorCode, what, size string, requested, available int) *QuantityExceededError {
	return &QuantityExceededError{
		DomainError: NewDomainError(code,
			fmt.Sprintf("%s: size %s requested %d, only %d available", what, size, requested, available)),
		Size:      size,
		Requested: requested,
		Available: available,
	}
}

func NewOverAllocationError(size string, requested, available int) *QuantityExceededError {
	return newQuantityExceededError(CodeOverAllocation, "over-allocation", size, requested, available)
}

func NewOverAssignmentError(size string, requested, available int) *QuantityExceededError {
	return newQuantityExceededError(CodeOverAssignment, "over-assignment", size, requested, available)
}

func NewOverReceiptError(size string, requested, available int) *QuantityExceededError {
	return newQuantityExceededError(CodeOverReceipt, "over-receipt", size, requested, available)
}

type InvalidQuantityMapError struct {
	*DomainError
}

func NewInvalidQuantityMapError(reason string) *InvalidQuantityMapError {
	return &InvalidQuantityMapError{
		DomainError: NewDomainError(CodeInvalidQuantityMap, "invalid quantity map: "+reason),
	}
}

// Addressing and state errors

type NotFoundError struct {
	*DomainError
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		DomainError: NewDomainError(CodeNotFound, fmt.Sprintf("%s not found: %s", entity, id)),
		Entity:      entity,
		ID:          id,
	}
}

type InvalidStateError struct {
	*DomainError
	Entity string
	ID     string
	State  string
	Action string
}

func NewInvalidStateError(entity, id, state, action string) *InvalidStateError {
	return &InvalidStateError{
		DomainError: NewDomainError(CodeInvalidState,
			fmt.Sprintf("cannot %s %s %s in %s state", action, entity, id, state)),
		Entity: entity,
		ID:     id,
		State:  state,
		Action: action,
	}
}

// ConcurrentModificationError signals a lost update; the caller should re-fetch and retry
type ConcurrentModificationError struct {
	*DomainError
	Entity string
	ID     string
}

func NewConcurrentModificationError(entity, id string) *ConcurrentModificationError {
	return &ConcurrentModificationError{
		DomainError: NewDomainError(CodeConcurrentModification,
			fmt.Sprintf("%s %s was modified concurrently, re-fetch and retry", entity, id)),
		Entity: entity,
		ID:     id,
	}
}

// Validation error

type ValidationError struct {
	*DomainError
	Field string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		DomainError: NewDomainError(CodeValidation, fmt.Sprintf("%s: %s", field, message)),
		Field:       field,
	}
}
