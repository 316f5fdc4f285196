package processor

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vanshika/creditshop/internal/domain"
)

// Operation names recorded by MemoryClient and accepted by WithError.
const (
	OpSearchCustomers         = "SearchCustomersByEmail"
	OpCreateCustomer          = "CreateCustomer"
	OpGetCustomer             = "GetCustomer"
	OpSetDefaultPaymentMethod = "SetDefaultPaymentMethod"
	OpCreateSetupIntent       = "CreateSetupIntent"
	OpCreateCheckoutSession   = "CreateCheckoutSession"
	OpCreatePaymentIntent     = "CreatePaymentIntent"
	OpListPaymentIntents      = "ListPaymentIntents"
	OpListCardPaymentMethods  = "ListCardPaymentMethods"
	OpUpdatePaymentMethodMeta = "UpdatePaymentMethodMetadata"
	OpDetachPaymentMethod     = "DetachPaymentMethod"
)

const (
	memoryReceiptURLTemplate   = "https://pay.example.test/receipts/%s"
	memoryCheckoutURLTemplate  = "https://checkout.example.test/c/pay/%s"
	memoryClientSecretTemplate = "%s_secret_memory"
)

var _ Client = (*MemoryClient)(nil)

// MemoryClient is an in-memory processor used by tests and by the
// PROCESSOR_MODE=memory development mode. It mimics the processor's behaviour
// closely enough for the billing workflows: customers, attached card payment
// methods, payment intents and checkout sessions.
type MemoryClient struct {
	mu           sync.Mutex
	seq          int
	now          func() time.Time
	customers    []domain.Customer
	methods      []domain.PaymentMethod
	intents      []domain.PaymentIntent
	sessions     []CheckoutSessionParams
	idempotency  map[string]string
	errs         map[string]error
	calls        []string
	chargeStatus string
	connectivity error
}

// NewMemoryClient instantiates an empty in-memory processor.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		now:          time.Now,
		idempotency:  make(map[string]string),
		errs:         make(map[string]error),
		chargeStatus: domain.PaymentStatusSucceeded,
	}
}

// WithError makes every subsequent call of op fail with err. A nil err clears it.
func (m *MemoryClient) WithError(op string, err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
	} else {
		m.errs[op] = err
	}
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// WithChargeStatus sets the status assigned to new payment intents.
func (m *MemoryClient) WithChargeStatus(status string) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chargeStatus = status
	return m
}

// WithClock overrides the time source used for created timestamps.
func (m *MemoryClient) WithClock(now func() time.Time) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	if now != nil {
		m.now = now
	}
	return m
}

// AddCustomer seeds a customer record.
func (m *MemoryClient) AddCustomer(email string) domain.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addCustomerLocked(email)
}

// AddPaymentMethod seeds a card attached to customerID.
func (m *MemoryClient) AddPaymentMethod(customerID string, card domain.Card, metadata map[string]string) domain.PaymentMethod {
	m.mu.Lock()
	defer m.mu.Unlock()
	pm := domain.PaymentMethod{
		ID:         m.nextID("pm"),
		Type:       "card",
		Card:       &card,
		Metadata:   cloneMap(metadata),
		CustomerID: customerID,
	}
	m.methods = append(m.methods, pm)
	return pm
}

// SetDefault seeds the default payment method of a customer without recording a call.
func (m *MemoryClient) SetDefault(customerID, paymentMethodID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx := m.customerIndex(customerID); idx >= 0 {
		m.customers[idx].DefaultPaymentMethodID = paymentMethodID
	}
}

// AddPaymentIntent seeds a historical payment intent. Later additions are newer.
func (m *MemoryClient) AddPaymentIntent(pi domain.PaymentIntent) domain.PaymentIntent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pi.ID == "" {
		pi.ID = m.nextID("pi")
	}
	if pi.Created == 0 {
		pi.Created = m.now().Unix()
	}
	pi.Metadata = cloneMap(pi.Metadata)
	m.intents = append(m.intents, pi)
	return pi
}

// Customers returns a snapshot of all customer records.
func (m *MemoryClient) Customers() []domain.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Customer(nil), m.customers...)
}

// CheckoutSessions returns a snapshot of created checkout sessions.
func (m *MemoryClient) CheckoutSessions() []CheckoutSessionParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CheckoutSessionParams(nil), m.sessions...)
}

// Calls returns the operations invoked so far, in order.
func (m *MemoryClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times op was invoked.
func (m *MemoryClient) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (m *MemoryClient) SearchCustomersByEmail(_ context.Context, email string) ([]domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpSearchCustomers); err != nil {
		return nil, err
	}

	var out []domain.Customer
	for _, c := range m.customers {
		if c.Email == email {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryClient) CreateCustomer(_ context.Context, p CustomerParams) (domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpCreateCustomer); err != nil {
		return domain.Customer{}, err
	}

	if p.IdempotencyKey != "" {
		if id, ok := m.idempotency[p.IdempotencyKey]; ok {
			return m.customers[m.customerIndex(id)], nil
		}
	}
	c := m.addCustomerLocked(p.Email)
	if p.IdempotencyKey != "" {
		m.idempotency[p.IdempotencyKey] = c.ID
	}
	return c, nil
}

func (m *MemoryClient) GetCustomer(_ context.Context, customerID string) (domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpGetCustomer); err != nil {
		return domain.Customer{}, err
	}

	idx := m.customerIndex(customerID)
	if idx < 0 {
		return domain.Customer{}, noSuch(OpGetCustomer, "customer", customerID)
	}
	return m.customers[idx], nil
}

func (m *MemoryClient) SetDefaultPaymentMethod(_ context.Context, customerID, paymentMethodID string) (domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpSetDefaultPaymentMethod); err != nil {
		return domain.Customer{}, err
	}

	idx := m.customerIndex(customerID)
	if idx < 0 {
		return domain.Customer{}, noSuch(OpSetDefaultPaymentMethod, "customer", customerID)
	}
	pmIdx := m.methodIndex(paymentMethodID)
	if pmIdx < 0 || m.methods[pmIdx].CustomerID != customerID {
		return domain.Customer{}, &Error{
			Op:         OpSetDefaultPaymentMethod,
			Message:    fmt.Sprintf("The customer does not have a payment method with the ID %s.", paymentMethodID),
			Code:       "resource_missing",
			HTTPStatus: http.StatusBadRequest,
		}
	}
	m.customers[idx].DefaultPaymentMethodID = paymentMethodID
	return m.customers[idx], nil
}

func (m *MemoryClient) CreateSetupIntent(_ context.Context, customerID string) (domain.SetupIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpCreateSetupIntent); err != nil {
		return domain.SetupIntent{}, err
	}
	if m.customerIndex(customerID) < 0 {
		return domain.SetupIntent{}, noSuch(OpCreateSetupIntent, "customer", customerID)
	}

	id := m.nextID("seti")
	return domain.SetupIntent{
		ID:           id,
		ClientSecret: fmt.Sprintf(memoryClientSecretTemplate, id),
		CustomerID:   customerID,
	}, nil
}

func (m *MemoryClient) CreateCheckoutSession(_ context.Context, p CheckoutSessionParams) (domain.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpCreateCheckoutSession); err != nil {
		return domain.CheckoutSession{}, err
	}
	if m.customerIndex(p.CustomerID) < 0 {
		return domain.CheckoutSession{}, noSuch(OpCreateCheckoutSession, "customer", p.CustomerID)
	}

	p.LineItems = append([]LineItem(nil), p.LineItems...)
	p.Metadata = cloneMap(p.Metadata)
	m.sessions = append(m.sessions, p)

	id := m.nextID("cs")
	return domain.CheckoutSession{ID: id, URL: fmt.Sprintf(memoryCheckoutURLTemplate, id)}, nil
}

func (m *MemoryClient) CreatePaymentIntent(_ context.Context, p PaymentIntentParams) (domain.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpCreatePaymentIntent); err != nil {
		return domain.PaymentIntent{}, err
	}
	if m.customerIndex(p.CustomerID) < 0 {
		return domain.PaymentIntent{}, noSuch(OpCreatePaymentIntent, "customer", p.CustomerID)
	}
	if m.methodIndex(p.PaymentMethodID) < 0 {
		return domain.PaymentIntent{}, noSuch(OpCreatePaymentIntent, "PaymentMethod", p.PaymentMethodID)
	}

	pi := domain.PaymentIntent{
		ID:              m.nextID("pi"),
		Amount:          p.Amount,
		Currency:        p.Currency,
		Status:          m.chargeStatus,
		Created:         m.now().Unix(),
		Metadata:        cloneMap(p.Metadata),
		CustomerID:      p.CustomerID,
		PaymentMethodID: p.PaymentMethodID,
	}
	if pi.Status == domain.PaymentStatusSucceeded {
		pi.ReceiptURL = fmt.Sprintf(memoryReceiptURLTemplate, pi.ID)
	}
	m.intents = append(m.intents, pi)
	return pi, nil
}

func (m *MemoryClient) ListPaymentIntents(_ context.Context, customerID string, limit int) ([]domain.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpListPaymentIntents); err != nil {
		return nil, err
	}

	out := make([]domain.PaymentIntent, 0, limit)
	for i := len(m.intents) - 1; i >= 0 && len(out) < limit; i-- {
		if m.intents[i].CustomerID == customerID {
			out = append(out, m.intents[i])
		}
	}
	return out, nil
}

func (m *MemoryClient) ListCardPaymentMethods(_ context.Context, customerID string) ([]domain.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpListCardPaymentMethods); err != nil {
		return nil, err
	}

	var out []domain.PaymentMethod
	for _, pm := range m.methods {
		if pm.CustomerID == customerID && pm.Type == "card" {
			out = append(out, pm)
		}
	}
	return out, nil
}

func (m *MemoryClient) UpdatePaymentMethodMetadata(_ context.Context, paymentMethodID string, metadata map[string]string) (domain.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpUpdatePaymentMethodMeta); err != nil {
		return domain.PaymentMethod{}, err
	}

	idx := m.methodIndex(paymentMethodID)
	if idx < 0 {
		return domain.PaymentMethod{}, noSuch(OpUpdatePaymentMethodMeta, "PaymentMethod", paymentMethodID)
	}
	if m.methods[idx].Metadata == nil {
		m.methods[idx].Metadata = make(map[string]string, len(metadata))
	}
	for k, v := range metadata {
		m.methods[idx].Metadata[k] = v
	}
	return m.methods[idx], nil
}

func (m *MemoryClient) DetachPaymentMethod(_ context.Context, paymentMethodID string) (domain.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpDetachPaymentMethod); err != nil {
		return domain.PaymentMethod{}, err
	}

	idx := m.methodIndex(paymentMethodID)
	if idx < 0 || m.methods[idx].CustomerID == "" {
		return domain.PaymentMethod{}, noSuch(OpDetachPaymentMethod, "PaymentMethod", paymentMethodID)
	}
	owner := m.methods[idx].CustomerID
	if cIdx := m.customerIndex(owner); cIdx >= 0 && m.customers[cIdx].DefaultPaymentMethodID == paymentMethodID {
		m.customers[cIdx].DefaultPaymentMethodID = ""
	}
	m.methods[idx].CustomerID = ""
	return m.methods[idx], nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) record(op string) error {
	m.calls = append(m.calls, op)
	return m.errs[op]
}

func (m *MemoryClient) addCustomerLocked(email string) domain.Customer {
	c := domain.Customer{
		ID:      m.nextID("cus"),
		Email:   email,
		Created: m.now().Unix(),
	}
	m.customers = append(m.customers, c)
	return c
}

func (m *MemoryClient) customerIndex(id string) int {
	for i, c := range m.customers {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryClient) methodIndex(id string) int {
	for i, pm := range m.methods {
		if pm.ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryClient) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s_mem%04d", prefix, m.seq)
}

func noSuch(op, kind, id string) error {
	return &Error{
		Op:         op,
		Message:    fmt.Sprintf("No such %s: '%s'", kind, id),
		Code:       "resource_missing",
		Type:       "invalid_request_error",
		HTTPStatus: http.StatusNotFound,
	}
}

func cloneMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
