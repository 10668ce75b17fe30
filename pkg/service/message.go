package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/example/clickmenu/pkg/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders whole Jamaican dollars with thousands separators, e.g. "J$1,250".
func FormatMoney(d decimal.Decimal) string {
	whole := d.Round(0).IntPart()
	if whole < 0 {
		return moneyPrinter.Sprintf("-J$%d", -whole)
	}
	return moneyPrinter.Sprintf("J$%d", whole)
}

func orderSummary(o *models.Order) string {
	lines := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, fmt.Sprintf("%dx %s", it.Quantity(), it.Title))
	}
	return fmt.Sprintf("Order %s: %s Total: %s", o.RequestID, strings.Join(lines, ", "), FormatMoney(o.Subtotal))
}

func orderMessage(store *models.Store, o *models.Order) string {
	name := store.Name
	if name == "" {
		name = "there"
	}
	fulfillment := string(o.FulfillmentType)
	if o.Parish != "" {
		fulfillment += " (" + o.Parish + ")"
	}

	lines := []string{
		fmt.Sprintf("Hi %s,", name),
		"",
		"Store: " + store.Name,
		"Order ID: " + o.RequestID,
		"Customer: " + o.CustomerName,
		"Phone: " + o.CustomerPhone,
		"Fulfillment: " + fulfillment,
	}
	if o.PreferredTime != "" {
		lines = append(lines, "Preferred time: "+o.PreferredTime)
	}
	lines = append(lines, "", "Items:")
	for _, it := range o.Items {
		lines = append(lines, fmt.Sprintf("%dx %s - %s", it.Quantity(), it.Title, FormatMoney(it.Total())))
	}
	lines = append(lines, "Total: "+FormatMoney(o.Subtotal))
	if o.LocationDetails != "" {
		lines = append(lines, "Location: "+o.LocationDetails)
	}
	if o.Notes != "" {
		lines = append(lines, "Notes: "+o.Notes)
	}
	return strings.Join(lines, "\n")
}

// WhatsAppURL builds a wa.me deep link, or "" when phone has no digits.
func WhatsAppURL(phone, text string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	// QueryEscape turns spaces into '+', which wa.me shows literally
	return "https://wa.me/" + digits.String() + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

func buildReceipt(store *models.Store, o *models.Order) *Receipt {
	msg := orderMessage(store, o)
	return &Receipt{
		Order:       o,
		Summary:     orderSummary(o),
		Message:     msg,
		WhatsAppURL: WhatsAppURL(store.WhatsApp, msg),
	}
}
