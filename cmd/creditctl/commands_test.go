package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vanshika/creditshop/internal/domain"
	"github.com/vanshika/creditshop/internal/labels"
	"github.com/vanshika/creditshop/internal/processor"
	"github.com/vanshika/creditshop/internal/service"
)

func runCmd(t *testing.T, mem *processor.MemoryClient, args ...string) (string, error) {
	t.Helper()
	lbl, err := labels.New("ko")
	require.NoError(t, err)
	svc := service.NewBillingService(mem, service.Options{
		Catalog: domain.NewCatalog(domain.CreditPackage{Size: "100", PriceID: "price_100"}),
		BaseURL: "https://shop.example.test",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	root := newRootCmd(func() (*app, error) {
		return &app{billing: svc, labels: lbl}, nil
	})

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), err
}

func TestParseItems(t *testing.T) {
	items, err := parseItems([]string{"100=2", " 1000 ", "10000=0"})
	require.NoError(t, err)
	assert.Equal(t, []domain.CartItem{
		{Package: "100", Quantity: 2},
		{Package: "1000", Quantity: 1},
		{Package: "10000", Quantity: 0},
	}, items)

	_, err = parseItems([]string{"=2"})
	assert.Error(t, err)
	_, err = parseItems([]string{"100=-1"})
	assert.Error(t, err)
	_, err = parseItems([]string{"100=abc"})
	assert.Error(t, err)
}

func TestRenderYAMLUsesJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	receipt := "https://pay.example.test/r/1"
	err := render(&buf, formatYAML, map[string]any{
		"paymentIntents": []service.HistoryEntry{{ID: "pi_1", Amount: 16500, ReceiptURL: &receipt, PaymentType: "postpaid"}},
	})
	require.NoError(t, err)

	var decoded map[string][]map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded["paymentIntents"], 1)
	entry := decoded["paymentIntents"][0]
	assert.Equal(t, "pi_1", entry["id"])
	assert.Equal(t, 16500, entry["amount"])
	assert.Equal(t, receipt, entry["receipt_url"])
	assert.Equal(t, "postpaid", entry["paymentType"])
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	assert.Error(t, render(io.Discard, "xml", map[string]string{}))
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, formatJSON, map[string]string{"customerId": "cus_1"}))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "cus_1", decoded["customerId"])
}

func TestCustomerCommandNotFound(t *testing.T) {
	_, err := runCmd(t, processor.NewMemoryClient(), "customer", "--email", "a@x.com")

	var nf *service.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestHistoryCommandGroupsAsYAML(t *testing.T) {
	mem := processor.NewMemoryClient()
	cust := mem.AddCustomer("a@x.com")
	mem.AddPaymentIntent(domain.PaymentIntent{CustomerID: cust.ID, Amount: 16500, Currency: "usd", Metadata: domain.PostpaidMetadata("")})
	mem.AddPaymentIntent(domain.PaymentIntent{CustomerID: cust.ID, Amount: 1})

	out, err := runCmd(t, mem, "history", "-e", "a@x.com", "--group", "-o", "yaml")
	require.NoError(t, err)

	var decoded struct {
		Groups []struct {
			Key     string           `yaml:"key"`
			Label   string           `yaml:"label"`
			Entries []map[string]any `yaml:"entries"`
		} `yaml:"groups"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Groups, 1)
	assert.Equal(t, "postpaid", decoded.Groups[0].Key)
	assert.Equal(t, "후불 결제", decoded.Groups[0].Label)
	require.Len(t, decoded.Groups[0].Entries, 1)
	assert.Equal(t, 16500, decoded.Groups[0].Entries[0]["amount"])
}

func TestCheckoutCommand(t *testing.T) {
	mem := processor.NewMemoryClient()

	out, err := runCmd(t, mem, "checkout", "-e", "a@x.com", "--item", "100=3")
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.NotEmpty(t, decoded["sessionId"])
	sessions := mem.CheckoutSessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, []processor.LineItem{{PriceID: "price_100", Quantity: 3}}, sessions[0].LineItems)
}

func TestCardsRemoveReportsPartialProgress(t *testing.T) {
	mem := processor.NewMemoryClient()
	cust := mem.AddCustomer("a@x.com")
	pm := mem.AddPaymentMethod(cust.ID, domain.Card{Brand: "visa"}, nil)

	out, err := runCmd(t, mem, "cards", "remove", pm.ID, "pm_missing", "pm_later")

	var rerr *service.RemovalError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, []string{"pm_later"}, rerr.NotAttempted)

	var decoded map[string][]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded["detached"], 1)
	assert.Equal(t, pm.ID, decoded["detached"][0]["id"])
}
