// Package domain holds the business rules of the booking core and the typed
// errors they return.
package domain

import (
	"errors"
	"fmt"
)

// Kind groups error codes by how a caller should react to them.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindState        Kind = "state"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindUnavailable  Kind = "unavailable"
)

type Code string

const (
	CodeInvalidDuration         Code = "InvalidDuration"
	CodeInvalidRatePercent      Code = "InvalidRatePercent"
	CodeUnknownService          Code = "UnknownService"
	CodeInvalidTransition       Code = "InvalidTransition"
	CodeBookingNotPayable       Code = "BookingNotPayable"
	CodeDuplicatePendingPayment Code = "DuplicatePendingPayment"
	CodeAmountMismatch          Code = "AmountMismatch"
	CodeEventTooSoon            Code = "EventTooSoon"
	CodeReasonRequired          Code = "ReasonRequired"
	CodeBookingNotFound         Code = "BookingNotFound"
	CodePaymentNotFound         Code = "PaymentNotFound"
	CodeApplicationNotFound     Code = "ApplicationNotFound"
	CodeForbidden               Code = "Forbidden"
	CodeUnauthorized            Code = "Unauthorized"
	CodeValidationFailed        Code = "ValidationFailed"
	CodeStorageUnavailable      Code = "StorageUnavailable"
	CodeAlreadyReviewed         Code = "AlreadyReviewed"
	CodeDuplicateApplication    Code = "DuplicateApplication"
)

// Error is the typed failure returned across the service boundary.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Field   string
	// Fields holds per-field messages for request validation failures.
	Fields map[string]string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidation(code Code, field, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field, Message: message}
}

// NewInvalidRequest wraps validator output keyed by json field name.
func NewInvalidRequest(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidationFailed, Message: "validation failed", Fields: fields}
}

func NewState(code Code, message string) *Error {
	return &Error{Kind: KindState, Code: code, Message: message}
}

func NewConflict(code Code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func NewNotFound(code Code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func NewForbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: CodeForbidden, Message: message}
}

func NewUnauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: message}
}

func NewUnavailable(code Code, message string) *Error {
	return &Error{Kind: KindUnavailable, Code: code, Message: message}
}

// InvalidTransition reports a move the state machine does not allow.
func InvalidTransition(from, to string) *Error {
	return NewState(CodeInvalidTransition, fmt.Sprintf("cannot move booking from %s to %s", from, to))
}

// AsError unwraps err into a *Error when it carries one.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	de, ok := AsError(err)
	return ok && de.Code == code
}
