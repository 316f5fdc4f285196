package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gavv/httpexpect/v2"

	"github.com/vanshika/creditshop/internal/domain"
	"github.com/vanshika/creditshop/internal/processor"
)

func newExpect(t *testing.T, mem *processor.MemoryClient) *httpexpect.Expect {
	t.Helper()
	srv := httptest.NewServer(newTestRouter(t, mem))
	t.Cleanup(srv.Close)
	return httpexpect.Default(t, srv.URL)
}

func TestCardRegistrationThenCharge(t *testing.T) {
	mem := processor.NewMemoryClient()
	e := newExpect(t, mem)
	email := gofakeit.Email()

	setup := e.POST("/api/create-setup-intent").
		WithJSON(map[string]string{"email": email}).
		Expect().
		Status(http.StatusOK).
		JSON().Object()
	setup.Value("clientSecret").String().NotEmpty()
	customerID := setup.Value("customerId").String().Raw()

	// The card is confirmed client-side; the processor now holds it.
	pm := mem.AddPaymentMethod(customerID, domain.Card{Brand: "visa", Last4: "4242", ExpMonth: 4, ExpYear: 2031}, nil)

	e.GET("/api/get-customer").WithQuery("email", email).
		Expect().
		Status(http.StatusOK).
		JSON().Object().HasValue("customerId", customerID)

	e.POST("/api/update-default-payment-method").
		WithJSON(map[string]string{"customerId": customerID, "paymentMethodId": pm.ID}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		Value("updatedCustomer").Object().
		HasValue("default_payment_method", pm.ID)

	for i := 0; i < 2; i++ {
		e.POST("/api/update-default-payment-method").
			WithJSON(map[string]string{"customerId": customerID, "paymentMethodId": pm.ID}).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("message", "이미 기본 결제 수단이 설정되어 있어 업데이트하지 않습니다.").
			NotContainsKey("updatedCustomer")
	}

	methods := e.GET("/api/list-payment-methods").WithQuery("email", email).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("paymentMethods").Array()
	methods.Length().IsEqual(1)
	methods.Value(0).Object().HasValue("id", pm.ID)

	charge := e.POST("/api/create-charge").
		WithJSON(map[string]string{"email": email}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("paymentIntent").Object()
	charge.HasValue("amount", 16500)
	charge.HasValue("currency", "usd")
	charge.HasValue("status", "succeeded")
	charge.Value("metadata").Object().HasValue("paymentType", "postpaid")

	history := e.GET("/api/get-payment-history").
		WithQuery("email", email).
		WithQuery("groupBy", "paymentType").
		Expect().
		Status(http.StatusOK).
		JSON().Object()
	history.Value("paymentIntents").Array().Length().IsEqual(1)
	history.Value("paymentIntents").Array().Value(0).Object().
		HasValue("paymentType", "postpaid").
		HasValue("amount", 16500).
		Value("receipt_url").String().NotEmpty()
	groups := history.Value("groups").Array()
	groups.Length().IsEqual(1)
	groups.Value(0).Object().HasValue("key", "postpaid").HasValue("label", "후불 결제")

	e.DELETE("/api/remove-payment-method").WithQuery("paymentMethodId", pm.ID).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		HasValue("message", "Payment method removed successfully.").
		Value("detachedPaymentMethod").Object().HasValue("id", pm.ID)

	e.POST("/api/create-charge").
		WithJSON(map[string]string{"email": email}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().HasValue("error", "Customer has no default payment method set.")
}

func TestCheckoutCreatesCustomerOnce(t *testing.T) {
	mem := processor.NewMemoryClient()
	e := newExpect(t, mem)
	email := gofakeit.Email()

	for i := 0; i < 2; i++ {
		e.POST("/api/create-checkout-session").
			WithJSON(map[string]any{
				"email": email,
				"items": []map[string]any{{"package": 100, "quantity": 2}, {"package": "10000", "quantity": 1}},
			}).
			Expect().
			Status(http.StatusOK).
			JSON().Object().Value("sessionId").String().NotEmpty()
	}

	customers := mem.Customers()
	if len(customers) != 1 {
		t.Fatalf("expected exactly one customer, got %d", len(customers))
	}
	sessions := mem.CheckoutSessions()
	if len(sessions) != 2 {
		t.Fatalf("expected two checkout sessions, got %d", len(sessions))
	}
	if got := sessions[0].Metadata["items"]; got != `[{"package":100,"quantity":2},{"package":"10000","quantity":1}]` {
		t.Fatalf("unexpected items metadata %s", got)
	}
}

func TestReadOnlyEndpointsDoNotCreateCustomers(t *testing.T) {
	mem := processor.NewMemoryClient()
	e := newExpect(t, mem)
	email := gofakeit.Email()

	for path, msg := range map[string]string{
		"/api/get-customer":         "No customer found with the provided email.",
		"/api/get-payment-history":  "No customer found with the provided email.",
		"/api/list-payment-methods": "No customer found for the provided email.",
	} {
		e.GET(path).WithQuery("email", email).
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().HasValue("error", msg)
	}
	e.GET("/api/list-payment-methods").
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().HasValue("error", "Email is not provided.")
	e.POST("/api/create-charge").WithJSON(map[string]string{"email": email}).
		Expect().
		Status(http.StatusNotFound)

	if n := len(mem.Customers()); n != 0 {
		t.Fatalf("expected no customers, got %d", n)
	}
}

func TestHistoryHidesUntaggedCharges(t *testing.T) {
	mem := processor.NewMemoryClient()
	e := newExpect(t, mem)
	email := gofakeit.Email()
	cust := mem.AddCustomer(email)
	mem.AddPaymentIntent(domain.PaymentIntent{CustomerID: cust.ID, Amount: 1, Currency: "usd"})
	mem.AddPaymentIntent(domain.PaymentIntent{CustomerID: cust.ID, Amount: 2, Currency: "usd",
		Metadata: map[string]string{"paymentType": "credit", "items": `[{"package":"1000","quantity":1}]`}})
	mem.AddPaymentIntent(domain.PaymentIntent{CustomerID: cust.ID, Amount: 3, Currency: "usd", Metadata: map[string]string{"source": "dashboard"}})

	entries := e.GET("/api/get-payment-history").WithQuery("email", email).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		NotContainsKey("groups").
		Value("paymentIntents").Array()
	entries.Length().IsEqual(1)
	entry := entries.Value(0).Object()
	entry.HasValue("paymentType", "credit")
	entry.Value("receipt_url").IsNull()
	entry.Value("items").Array().Value(0).Object().HasValue("package", "1000").HasValue("quantity", 1)
}

func TestClientConfig(t *testing.T) {
	e := newExpect(t, processor.NewMemoryClient())

	cfg := e.GET("/api/client-config").
		Expect().
		Status(http.StatusOK).
		JSON().Object()
	cfg.HasValue("publishableKey", "pk_test_123")
	pkgs := cfg.Value("packages").Array()
	pkgs.Length().IsEqual(3)
	pkgs.Value(1).Object().
		HasValue("package", "1000").
		HasValue("credits", 1000).
		HasValue("bonusCredits", 20)
}
