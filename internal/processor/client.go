package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanshika/creditshop/internal/domain"
)

// Client defines the minimal contract the billing service needs from the
// payment processor. Every method performs at most one remote call.
type Client interface {
	SearchCustomersByEmail(ctx context.Context, email string) ([]domain.Customer, error)
	CreateCustomer(ctx context.Context, params CustomerParams) (domain.Customer, error)
	GetCustomer(ctx context.Context, customerID string) (domain.Customer, error)
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (domain.Customer, error)
	CreateSetupIntent(ctx context.Context, customerID string) (domain.SetupIntent, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (domain.CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (domain.PaymentIntent, error)
	ListPaymentIntents(ctx context.Context, customerID string, limit int) ([]domain.PaymentIntent, error)
	ListCardPaymentMethods(ctx context.Context, customerID string) ([]domain.PaymentMethod, error)
	UpdatePaymentMethodMetadata(ctx context.Context, paymentMethodID string, metadata map[string]string) (domain.PaymentMethod, error)
	DetachPaymentMethod(ctx context.Context, paymentMethodID string) (domain.PaymentMethod, error)
	VerifyConnectivity(ctx context.Context) error
}

// CustomerParams describes a customer to create.
type CustomerParams struct {
	Email          string
	IdempotencyKey string
}

// LineItem is a priced checkout line.
type LineItem struct {
	PriceID  string
	Quantity int64
}

// CheckoutSessionParams describes a one-off card checkout.
type CheckoutSessionParams struct {
	CustomerID string
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
	// Metadata is attached to the payment intent the session creates.
	Metadata map[string]string
}

// PaymentIntentParams describes an immediate, customer-not-present charge.
type PaymentIntentParams struct {
	Amount          int64
	Currency        string
	CustomerID      string
	PaymentMethodID string
	Metadata        map[string]string
}

// Options configures a processor client implementation.
type Options struct {
	SecretKey string
	// SearchLimit caps the number of customers returned for an email search.
	SearchLimit int
}

// ErrMissingSecretKey indicates the processor secret key is not provided.
var ErrMissingSecretKey = errors.New("processor secret key is required")

// Client implementations selectable by New.
const (
	ModeStripe = "stripe"
	ModeMemory = "memory"
)

// New returns the Client implementation registered for mode.
func New(mode string, opts Options) (Client, error) {
	switch mode {
	case ModeStripe, "":
		return NewStripeClient(opts)
	case ModeMemory:
		return NewMemoryClient(), nil
	default:
		return nil, fmt.Errorf("unknown processor mode %q", mode)
	}
}
