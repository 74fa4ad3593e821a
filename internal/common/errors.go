package common

import (
	"errors"
	"fmt"
)

const (
	CodeUnconfiguredProduct  = "unconfigured_product"
	CodeUnknownCouponCode    = "unknown_coupon_code"
	CodeInvalidConfiguration = "invalid_configuration"
	CodeInvalidInput         = "invalid_input"
)

var (
	// ErrUnconfiguredProduct is returned when a cart references a product without a unit price.
	ErrUnconfiguredProduct = NewAppError(CodeUnconfiguredProduct, "product has no configured unit price", nil)
	// ErrUnknownCouponCode is returned when a coupon code matches no known coupon.
	ErrUnknownCouponCode = NewAppError(CodeUnknownCouponCode, "unknown coupon code", nil)
	// ErrInvalidConfiguration is returned for malformed periods, policies or settings.
	ErrInvalidConfiguration = NewAppError(CodeInvalidConfiguration, "invalid configuration", nil)
	// ErrInvalidInput is returned when a cart item is malformed.
	ErrInvalidInput = NewAppError(CodeInvalidInput, "invalid input", nil)
)

// AppError represents an error with an attached machine-readable code.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Errorf builds an error of the same kind as base with a formatted message.
func Errorf(base *AppError, format string, args ...any) error {
	return &AppError{Code: base.Code, Message: fmt.Sprintf(format, args...)}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// Code returns the code of the first AppError in the chain, or an empty string.
func Code(err error) string {
	var target *AppError
	if errors.As(err, &target) {
		return target.Code
	}
	return ""
}
