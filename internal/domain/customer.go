package domain

import "encoding/json"

// Customer is the request-scoped view of a processor customer record.
type Customer struct {
	ID                     string          `json:"id"`
	Email                  string          `json:"email"`
	DefaultPaymentMethodID string          `json:"default_payment_method,omitempty"`
	Created                int64           `json:"created"`
	Raw                    json.RawMessage `json:"-"`
}

// HasDefaultPaymentMethod reports whether the customer has a default payment method set.
func (c Customer) HasDefaultPaymentMethod() bool {
	return c.DefaultPaymentMethodID != ""
}

// Card holds the display attributes of a stored card.
type Card struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"exp_month"`
	ExpYear  int64  `json:"exp_year"`
}

// PaymentMethod is a reusable payment credential attached to a customer.
type PaymentMethod struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Card       *Card             `json:"card,omitempty"`
	Metadata   map[string]string `json:"metadata"`
	CustomerID string            `json:"customer,omitempty"`
	Raw        json.RawMessage   `json:"-"`
}

// Tagged reports whether the payment method carries a payment-type tag.
func (pm PaymentMethod) Tagged() bool {
	_, ok := PaymentTypeOf(pm.Metadata)
	return ok
}

// SetupIntent is the handle used by the client to collect and confirm card details.
type SetupIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	CustomerID   string `json:"customerId"`
}
