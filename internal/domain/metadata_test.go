package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestPaymentTypeOf(t *testing.T) {
	cases := []struct {
		name     string
		metadata map[string]string
		want     PaymentType
		ok       bool
	}{
		{name: "nil map", metadata: nil},
		{name: "missing", metadata: map[string]string{"other": "x"}},
		{name: "blank", metadata: map[string]string{MetadataKeyPaymentType: "  "}},
		{name: "credit", metadata: map[string]string{MetadataKeyPaymentType: "credit"}, want: PaymentTypeCredit, ok: true},
		{name: "unknown tag kept", metadata: map[string]string{MetadataKeyPaymentType: "gift"}, want: "gift", ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PaymentTypeOf(tc.metadata)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("PaymentTypeOf() = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestCreditMetadataRoundTrip(t *testing.T) {
	items := []CartItem{{Package: "100", Quantity: 2}, {Package: "1000", Quantity: 1}}

	md, err := CreditMetadata(items)
	if err != nil {
		t.Fatalf("CreditMetadata() error = %v", err)
	}
	if md[MetadataKeyPaymentType] != "credit" {
		t.Fatalf("expected credit tag, got %q", md[MetadataKeyPaymentType])
	}
	if md[MetadataKeyItems] != `[{"package":"100","quantity":2},{"package":"1000","quantity":1}]` {
		t.Fatalf("unexpected items metadata %s", md[MetadataKeyItems])
	}

	decoded, err := DecodeCartItems(md[MetadataKeyItems])
	if err != nil {
		t.Fatalf("DecodeCartItems() error = %v", err)
	}
	if len(decoded) != 2 || decoded[1].Package != "1000" || decoded[0].Quantity != 2 {
		t.Fatalf("unexpected decoded items %+v", decoded)
	}
}

func TestDecodeCartItemsRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"not json",
		`{"package":"100","quantity":1}`,
		`[]`,
		`[{"package":"100"}]`,
		`[{"package":"100","quantity":-1}]`,
		`[{"package":true,"quantity":1}]`,
	} {
		if _, err := DecodeCartItems(raw); !errors.Is(err, ErrMalformedItems) {
			t.Errorf("DecodeCartItems(%q) error = %v, want ErrMalformedItems", raw, err)
		}
	}
}

func TestPackageSizeAcceptsNumbers(t *testing.T) {
	var items []CartItem
	if err := json.Unmarshal([]byte(`[{"package":100,"quantity":2},{"package":"1000","quantity":1}]`), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if items[0].Package != "100" || items[1].Package != "1000" {
		t.Fatalf("unexpected packages %+v", items)
	}

	if err := json.Unmarshal([]byte(`[{"package":true,"quantity":1}]`), &items); err == nil {
		t.Fatal("expected error for boolean package")
	}
}

func TestCatalog(t *testing.T) {
	catalog := NewCatalog(
		CreditPackage{Size: "10000", PriceID: "price_10000", BonusRate: 0.05},
		CreditPackage{Size: "100", PriceID: "price_100"},
		CreditPackage{Size: "1000", PriceID: "price_1000", BonusRate: 0.02},
		CreditPackage{Size: "500"},
	)

	if catalog.Len() != 3 {
		t.Fatalf("expected 3 sellable packages, got %d", catalog.Len())
	}
	if _, ok := catalog.Lookup("500"); ok {
		t.Fatal("package without price id must not be sellable")
	}

	pkg, ok := catalog.Lookup("1000")
	if !ok || pkg.PriceID != "price_1000" || pkg.Credits != 1000 {
		t.Fatalf("unexpected lookup result %+v (ok=%v)", pkg, ok)
	}
	if pkg.BonusCredits() != 20 {
		t.Fatalf("expected 20 bonus credits, got %d", pkg.BonusCredits())
	}

	ordered := catalog.Packages()
	if ordered[0].Size != "100" || ordered[2].Size != "10000" {
		t.Fatalf("unexpected ordering %+v", ordered)
	}
}

func TestCreditMetadataJSONKeepsClientEncoding(t *testing.T) {
	raw := []byte(`[ {"package": 100, "quantity": 2, "note": "gift"},
		{"quantity": 1, "package": "1000"} ]`)

	md, err := CreditMetadataJSON(raw)
	if err != nil {
		t.Fatalf("CreditMetadataJSON() error = %v", err)
	}
	want := `[{"package":100,"quantity":2,"note":"gift"},{"quantity":1,"package":"1000"}]`
	if md[MetadataKeyItems] != want {
		t.Fatalf("items metadata = %s, want %s", md[MetadataKeyItems], want)
	}

	decoded, err := DecodeCartItems(md[MetadataKeyItems])
	if err != nil {
		t.Fatalf("DecodeCartItems() error = %v", err)
	}
	if decoded[0].Package != "100" || decoded[1].Package != "1000" {
		t.Fatalf("unexpected decoded items %+v", decoded)
	}

	if _, err := CreditMetadataJSON([]byte(`[{"package":"100"}]`)); !errors.Is(err, ErrMalformedItems) {
		t.Fatalf("expected ErrMalformedItems, got %v", err)
	}
}
