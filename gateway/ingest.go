package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/example/clickmenu/pkg/service"
	"github.com/shopspring/decimal"
)

// payload is a loosely typed JSON object. Storefront clients send both
// camelCase and snake_case keys, so every lookup takes a list of aliases and
// the first present, non-null key wins.
type payload map[string]json.RawMessage

func (p payload) raw(keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := p[k]; ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return v
		}
	}
	return nil
}

func (p payload) str(keys ...string) string {
	v := p.raw(keys...)
	if v == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}

func (p payload) amount(field string, keys ...string) (*decimal.Decimal, error) {
	v := p.raw(keys...)
	if v == nil {
		return nil, nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(v); err != nil {
		return nil, badRequest(field, "must be a number")
	}
	return &d, nil
}

func (p payload) whole(field string, keys ...string) (int, error) {
	v := p.raw(keys...)
	if v == nil {
		return 0, nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, badRequest(field, "must be a number")
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, badRequest(field, "must be a whole number")
	}
	return int(f), nil
}

// items decodes a list of objects. items_json is accepted either as an array
// or as a string holding one.
func (p payload) items(keys ...string) ([]payload, error) {
	v := p.raw(keys...)
	if v == nil {
		return nil, nil
	}
	var encoded string
	if err := json.Unmarshal(v, &encoded); err == nil {
		v = json.RawMessage(encoded)
	}
	var out []payload
	if err := json.Unmarshal(v, &out); err != nil {
		return nil, badRequest("items", "must be a list of objects")
	}
	return out, nil
}

// decodeOrder normalizes a storefront order submission.
func decodeOrder(body []byte) (service.NewOrder, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil || p == nil {
		return service.NewOrder{}, badRequest("body", "must be a JSON object")
	}

	in := service.NewOrder{
		CustomerName:    p.str("customerName", "customer_name"),
		CustomerPhone:   p.str("customerPhone", "customer_phone"),
		CustomerEmail:   p.str("customerEmail", "customer_email"),
		Notes:           p.str("notes"),
		FulfillmentType: p.str("fulfillmentMethod", "fulfillment_method", "fulfillmentType", "fulfillment_type"),
		Parish:          p.str("parish"),
		LocationDetails: p.str("locationDetails", "location_details", "deliveryAddress", "delivery_address"),
		DeliveryNotes:   p.str("deliveryNotes", "delivery_notes"),
		PreferredTime:   p.str("preferredTime", "preferred_time"),
		Source:          p.str("source"),
	}

	var err error
	if in.Total, err = p.amount("total", "total", "subtotal"); err != nil {
		return in, err
	}

	lines, err := p.items("items", "items_json", "itemsJson")
	if err != nil {
		return in, err
	}
	for i, line := range lines {
		field := fmt.Sprintf("items[%d]", i)
		item := service.NewLineItem{
			ItemID: line.str("itemId", "item_id", "id"),
			Title:  line.str("title", "name"),
		}
		if item.Qty, err = line.whole(field+".qty", "qty", "quantity"); err != nil {
			return in, err
		}
		if item.Price, err = line.amount(field+".price", "price", "unitPrice", "unit_price"); err != nil {
			return in, err
		}
		in.Items = append(in.Items, item)
	}
	return in, nil
}
