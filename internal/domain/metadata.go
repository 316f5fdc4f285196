package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// PaymentType tags charges and payment methods created by this service.
type PaymentType string

const (
	PaymentTypePostpaid PaymentType = "postpaid"
	PaymentTypeCredit   PaymentType = "credit"
)

// Metadata keys written to processor objects.
const (
	MetadataKeyPaymentType    = "paymentType"
	MetadataKeyItems          = "items"
	MetadataKeyAdditionalInfo = "additionalInfo"
)

// Known reports whether t is one of the payment types this service writes.
func (t PaymentType) Known() bool {
	switch t {
	case PaymentTypePostpaid, PaymentTypeCredit:
		return true
	default:
		return false
	}
}

// PaymentTypeOf extracts the payment-type tag from a metadata map.
// The second return value is false when the tag is absent or blank.
func PaymentTypeOf(metadata map[string]string) (PaymentType, bool) {
	raw, ok := metadata[MetadataKeyPaymentType]
	if !ok || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return PaymentType(raw), true
}

// PostpaidMetadata builds the metadata attached to off-session usage charges.
func PostpaidMetadata(additionalInfo string) map[string]string {
	md := map[string]string{
		MetadataKeyPaymentType: string(PaymentTypePostpaid),
	}
	if additionalInfo != "" {
		md[MetadataKeyAdditionalInfo] = additionalInfo
	}
	return md
}

// CreditMetadata builds the metadata recorded on credit purchases. The cart is
// validated against the items schema before it is serialised.
func CreditMetadata(items []CartItem) (map[string]string, error) {
	encoded, err := EncodeCartItems(items)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		MetadataKeyPaymentType: string(PaymentTypeCredit),
		MetadataKeyItems:       encoded,
	}, nil
}

// CreditMetadataJSON is CreditMetadata for a cart already encoded as JSON.
// The document is stored as sent, with insignificant whitespace removed.
func CreditMetadataJSON(raw json.RawMessage) (map[string]string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedItems, err)
	}
	if err := validateCartItems(buf.Bytes()); err != nil {
		return nil, err
	}
	return map[string]string{
		MetadataKeyPaymentType: string(PaymentTypeCredit),
		MetadataKeyItems:       buf.String(),
	}, nil
}

const cartItemsSchema = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["package", "quantity"],
    "properties": {
      "package": {"type": ["string", "integer"], "pattern": "^[0-9A-Za-z_-]+$"},
      "quantity": {"type": "integer", "minimum": 0}
    }
  }
}`

var cartItemsSchemaLoader = gojsonschema.NewStringLoader(cartItemsSchema)

// ErrMalformedItems is returned when items metadata does not match the schema.
var ErrMalformedItems = errors.New("malformed items metadata")

// EncodeCartItems serialises a cart the way it is stored in processor metadata.
func EncodeCartItems(items []CartItem) (string, error) {
	buf, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode cart items: %w", err)
	}
	if err := validateCartItems(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// DecodeCartItems parses and validates items metadata read back from the processor.
func DecodeCartItems(raw string) ([]CartItem, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedItems)
	}
	if err := validateCartItems([]byte(raw)); err != nil {
		return nil, err
	}
	var items []CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedItems, err)
	}
	return items, nil
}

func validateCartItems(doc []byte) error {
	result, err := gojsonschema.Validate(cartItemsSchemaLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedItems, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrMalformedItems, strings.Join(msgs, "; "))
	}
	return nil
}
