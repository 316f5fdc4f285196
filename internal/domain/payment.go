package domain

import "encoding/json"

// Payment intent statuses surfaced by the processor.
const (
	PaymentStatusRequiresPaymentMethod = "requires_payment_method"
	PaymentStatusRequiresConfirmation  = "requires_confirmation"
	PaymentStatusRequiresAction        = "requires_action"
	PaymentStatusProcessing            = "processing"
	PaymentStatusSucceeded             = "succeeded"
	PaymentStatusCanceled              = "canceled"
)

// PaymentIntent models a charge attempt owned by the processor.
type PaymentIntent struct {
	ID              string            `json:"id"`
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	Status          string            `json:"status"`
	Created         int64             `json:"created"`
	ReceiptURL      string            `json:"receipt_url,omitempty"`
	Metadata        map[string]string `json:"metadata"`
	CustomerID      string            `json:"customer,omitempty"`
	PaymentMethodID string            `json:"payment_method,omitempty"`
	Raw             json.RawMessage   `json:"-"`
}

// CheckoutSession is a hosted checkout page created by the processor.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}
