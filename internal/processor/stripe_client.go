package processor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v82"

	"github.com/vanshika/creditshop/internal/domain"
)

const (
	defaultSearchLimit = 10

	checkoutModePayment   = "payment"
	paymentMethodTypeCard = "card"
	setupUsageOffSession  = "off_session"
	latestChargeExpansion = "data.latest_charge"
)

var queryEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// NewStripeClient builds a Client backed by the official Stripe SDK.
func NewStripeClient(opts Options) (Client, error) {
	if opts.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}
	limit := opts.SearchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return &stripeClient{
		sc:          stripe.NewClient(opts.SecretKey),
		searchLimit: limit,
	}, nil
}

type stripeClient struct {
	sc          *stripe.Client
	searchLimit int
}

func (c *stripeClient) SearchCustomersByEmail(ctx context.Context, email string) ([]domain.Customer, error) {
	params := &stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{Query: emailQuery(email)},
	}

	var customers []domain.Customer
	for cust, err := range c.sc.V1Customers.Search(ctx, params) {
		if err != nil {
			return nil, wrapStripeError("search customers", err)
		}
		customers = append(customers, customerFromStripe(cust))
		if len(customers) >= c.searchLimit {
			break
		}
	}
	return customers, nil
}

func (c *stripeClient) CreateCustomer(ctx context.Context, p CustomerParams) (domain.Customer, error) {
	params := &stripe.CustomerCreateParams{
		Email: stripe.String(p.Email),
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	cust, err := c.sc.V1Customers.Create(ctx, params)
	if err != nil {
		return domain.Customer{}, wrapStripeError("create customer", err)
	}
	return customerFromStripe(cust), nil
}

func (c *stripeClient) GetCustomer(ctx context.Context, customerID string) (domain.Customer, error) {
	cust, err := c.sc.V1Customers.Retrieve(ctx, customerID, &stripe.CustomerRetrieveParams{})
	if err != nil {
		return domain.Customer{}, wrapStripeError("retrieve customer", err)
	}
	if cust.Deleted {
		return domain.Customer{}, &Error{Op: "retrieve customer", Message: "No such customer: '" + customerID + "'", HTTPStatus: 404}
	}
	return customerFromStripe(cust), nil
}

func (c *stripeClient) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (domain.Customer, error) {
	params := &stripe.CustomerUpdateParams{
		InvoiceSettings: &stripe.CustomerUpdateInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	cust, err := c.sc.V1Customers.Update(ctx, customerID, params)
	if err != nil {
		return domain.Customer{}, wrapStripeError("update customer", err)
	}
	return customerFromStripe(cust), nil
}

func (c *stripeClient) CreateSetupIntent(ctx context.Context, customerID string) (domain.SetupIntent, error) {
	si, err := c.sc.V1SetupIntents.Create(ctx, &stripe.SetupIntentCreateParams{
		Customer: stripe.String(customerID),
		Usage:    stripe.String(setupUsageOffSession),
	})
	if err != nil {
		return domain.SetupIntent{}, wrapStripeError("create setup intent", err)
	}
	return domain.SetupIntent{
		ID:           si.ID,
		ClientSecret: si.ClientSecret,
		CustomerID:   customerID,
	}, nil
}

func (c *stripeClient) CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (domain.CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(p.LineItems))
	for _, item := range p.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionCreateLineItemParams{
			Price:    stripe.String(item.PriceID),
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:               stripe.String(checkoutModePayment),
		PaymentMethodTypes: stripe.StringSlice([]string{paymentMethodTypeCard}),
		Customer:           stripe.String(p.CustomerID),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(p.SuccessURL),
		CancelURL:          stripe.String(p.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionCreatePaymentIntentDataParams{
			Metadata: p.Metadata,
		},
	}

	sess, err := c.sc.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return domain.CheckoutSession{}, wrapStripeError("create checkout session", err)
	}
	return domain.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (c *stripeClient) CreatePaymentIntent(ctx context.Context, p PaymentIntentParams) (domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:        stripe.Int64(p.Amount),
		Currency:      stripe.String(p.Currency),
		Customer:      stripe.String(p.CustomerID),
		PaymentMethod: stripe.String(p.PaymentMethodID),
		OffSession:    stripe.Bool(true),
		Confirm:       stripe.Bool(true),
		Metadata:      p.Metadata,
	}

	pi, err := c.sc.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return domain.PaymentIntent{}, wrapStripeError("create payment intent", err)
	}
	return paymentIntentFromStripe(pi), nil
}

func (c *stripeClient) ListPaymentIntents(ctx context.Context, customerID string, limit int) ([]domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentListParams{
		Customer: stripe.String(customerID),
	}
	params.Limit = stripe.Int64(int64(limit))
	params.AddExpand(latestChargeExpansion)

	intents := make([]domain.PaymentIntent, 0, limit)
	for pi, err := range c.sc.V1PaymentIntents.List(ctx, params) {
		if err != nil {
			return nil, wrapStripeError("list payment intents", err)
		}
		intents = append(intents, paymentIntentFromStripe(pi))
		if len(intents) >= limit {
			break
		}
	}
	return intents, nil
}

func (c *stripeClient) ListCardPaymentMethods(ctx context.Context, customerID string) ([]domain.PaymentMethod, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(paymentMethodTypeCard),
	}

	var methods []domain.PaymentMethod
	for pm, err := range c.sc.V1PaymentMethods.List(ctx, params) {
		if err != nil {
			return nil, wrapStripeError("list payment methods", err)
		}
		methods = append(methods, paymentMethodFromStripe(pm))
	}
	return methods, nil
}

func (c *stripeClient) UpdatePaymentMethodMetadata(ctx context.Context, paymentMethodID string, metadata map[string]string) (domain.PaymentMethod, error) {
	pm, err := c.sc.V1PaymentMethods.Update(ctx, paymentMethodID, &stripe.PaymentMethodUpdateParams{
		Metadata: metadata,
	})
	if err != nil {
		return domain.PaymentMethod{}, wrapStripeError("update payment method", err)
	}
	return paymentMethodFromStripe(pm), nil
}

func (c *stripeClient) DetachPaymentMethod(ctx context.Context, paymentMethodID string) (domain.PaymentMethod, error) {
	pm, err := c.sc.V1PaymentMethods.Detach(ctx, paymentMethodID, &stripe.PaymentMethodDetachParams{})
	if err != nil {
		return domain.PaymentMethod{}, wrapStripeError("detach payment method", err)
	}
	return paymentMethodFromStripe(pm), nil
}

// VerifyConnectivity performs the cheapest authenticated read available.
func (c *stripeClient) VerifyConnectivity(ctx context.Context) error {
	params := &stripe.CustomerListParams{}
	params.Limit = stripe.Int64(1)
	for _, err := range c.sc.V1Customers.List(ctx, params) {
		if err != nil {
			return wrapStripeError("list customers", err)
		}
		break
	}
	return nil
}

func emailQuery(email string) string {
	return `email:"` + queryEscaper.Replace(email) + `"`
}

func customerFromStripe(c *stripe.Customer) domain.Customer {
	out := domain.Customer{
		ID:      c.ID,
		Email:   c.Email,
		Created: c.Created,
		Raw:     rawJSON(c.LastResponse),
	}
	if c.InvoiceSettings != nil && c.InvoiceSettings.DefaultPaymentMethod != nil {
		out.DefaultPaymentMethodID = c.InvoiceSettings.DefaultPaymentMethod.ID
	}
	return out
}

func paymentIntentFromStripe(pi *stripe.PaymentIntent) domain.PaymentIntent {
	out := domain.PaymentIntent{
		ID:       pi.ID,
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
		Status:   string(pi.Status),
		Created:  pi.Created,
		Metadata: pi.Metadata,
		Raw:      rawJSON(pi.LastResponse),
	}
	if pi.LatestCharge != nil {
		out.ReceiptURL = pi.LatestCharge.ReceiptURL
	}
	if pi.Customer != nil {
		out.CustomerID = pi.Customer.ID
	}
	if pi.PaymentMethod != nil {
		out.PaymentMethodID = pi.PaymentMethod.ID
	}
	return out
}

func paymentMethodFromStripe(pm *stripe.PaymentMethod) domain.PaymentMethod {
	out := domain.PaymentMethod{
		ID:       pm.ID,
		Type:     string(pm.Type),
		Metadata: pm.Metadata,
		Raw:      rawJSON(pm.LastResponse),
	}
	if pm.Card != nil {
		out.Card = &domain.Card{
			Brand:    string(pm.Card.Brand),
			Last4:    pm.Card.Last4,
			ExpMonth: pm.Card.ExpMonth,
			ExpYear:  pm.Card.ExpYear,
		}
	}
	if pm.Customer != nil {
		out.CustomerID = pm.Customer.ID
	}
	return out
}

func rawJSON(resp *stripe.APIResponse) json.RawMessage {
	if resp == nil || len(resp.RawJSON) == 0 {
		return nil
	}
	return json.RawMessage(resp.RawJSON)
}

func wrapStripeError(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return &Error{
			Op:         op,
			Message:    se.Msg,
			Code:       string(se.Code),
			Type:       string(se.Type),
			HTTPStatus: se.HTTPStatusCode,
			Err:        err,
		}
	}
	return &Error{Op: op, Err: err}
}
