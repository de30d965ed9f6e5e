package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// UserErrors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrMemberNotFound    = errors.New("member not found")
)

// BillingErrors
var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrStaleRecord            = errors.New("record changed since it was read")
	ErrRecurringNotFound      = errors.New("recurring payment not found")
	ErrInstallmentNotFound    = errors.New("installment plan not found")
)
