package service

import (
	"errors"
	"fmt"

	"github.com/vanshika/creditshop/internal/processor"
)

// User-facing messages returned by the billing workflows.
const (
	MsgEmailRequired           = "Email is required."
	MsgCustomerNotFound        = "No customer found with the provided email."
	MsgEmailNotProvided        = "Email is not provided."
	MsgNoCustomerForEmail      = "No customer found for the provided email."
	MsgNoDefaultPaymentMethod  = "Customer has no default payment method set."
	MsgPaymentMethodIDRequired = "Payment method ID is required."
	MsgPaymentMethodRemoved    = "Payment method removed successfully."
	MsgCheckoutInputRequired   = "Email과 구매할 크레딧 정보를 제공해야 합니다."
	MsgPromotionIDsRequired    = "customerId와 paymentMethodId가 필요합니다."
	MsgDefaultAlreadySet       = "이미 기본 결제 수단이 설정되어 있어 업데이트하지 않습니다."
)

// ValidationError reports malformed or missing caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}

// NotFoundError reports that no customer matches the supplied email.
type NotFoundError struct {
	Email   string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return MsgCustomerNotFound
}

// ErrNoDefaultPaymentMethod is returned when an off-session charge is
// requested for a customer without a default payment method.
var ErrNoDefaultPaymentMethod = errors.New(MsgNoDefaultPaymentMethod)

// InvalidPackageError names a cart package that has no catalog entry.
type InvalidPackageError struct {
	Package string
}

func (e *InvalidPackageError) Error() string {
	return fmt.Sprintf("잘못된 크레딧 패키지: %s", e.Package)
}

// UpstreamError wraps a processor failure. Its message is the processor's own.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Op: op, Err: err}
}

// ProcessorError extracts the processor error from err, if any.
func ProcessorError(err error) (*processor.Error, bool) {
	var perr *processor.Error
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
