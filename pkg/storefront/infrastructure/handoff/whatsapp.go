package handoff

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"storefront/pkg/storefront/domain/model"
)

// WhatsApp turns a confirmed order into the outbound chat message that
// hands fulfillment over to a human. Nothing after the handoff is this
// system's business.
type WhatsApp struct {
	Phone        string
	BusinessName string
}

func NewWhatsApp(phone, businessName string) *WhatsApp {
	return &WhatsApp{Phone: phone, BusinessName: businessName}
}

// Message builds the Spanish order summary. The user may be nil for
// anonymous checkouts.
func (w *WhatsApp) Message(order *model.Order, user *model.User) string {
	greeting := "¡Hola! 🌋"
	if user != nil && user.Name != "" {
		greeting = fmt.Sprintf("¡Hola! 🌋 Soy %s.", user.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Quería hacer un pedido de %s:\n\n", greeting, w.BusinessName)
	for _, line := range order.Lines {
		subtotal := int64(line.Quantity) * line.PriceCents
		fmt.Fprintf(&b, "- %dx %s ($%s)\n", line.Quantity, line.Name, FormatPesos(subtotal))
	}
	fmt.Fprintf(&b, "\n*Total: $%s*\n\n", FormatPesos(order.TotalCents))
	b.WriteString("¿Me podrías confirmar disponibilidad para entrega? ¡Muchas gracias!")
	return b.String()
}

// URL returns the api.whatsapp.com link that opens the chat with the
// message prefilled.
func (w *WhatsApp) URL(order *model.Order, user *model.User) string {
	query := url.Values{}
	query.Set("phone", w.Phone)
	query.Set("text", w.Message(order, user))
	return "https://api.whatsapp.com/send?" + query.Encode()
}

// FormatPesos renders an amount with the es-CL thousands separator:
// 6900 becomes "6.900".
func FormatPesos(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte('.')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte('.')
		}
	}
	return b.String()
}
