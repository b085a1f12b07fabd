package handoff

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/storefront/domain/model"
)

func TestFormatPesos(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "0"},
		{999, "999"},
		{1500, "1.500"},
		{6900, "6.900"},
		{123456, "123.456"},
		{1234567, "1.234.567"},
		{-6900, "-6.900"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatPesos(c.amount))
	}
}

func testOrder() *model.Order {
	return &model.Order{
		ID: "ORD-1",
		Lines: []model.OrderLine{
			{ProductID: "PROD-OSORNO", Name: "Volcán Osorno", Quantity: 2, PriceCents: 1500},
			{ProductID: "PROD-LAVA", Name: "Lava de Chocolate", Quantity: 1, PriceCents: 1800},
		},
		TotalCents: 4800,
	}
}

func TestMessage(t *testing.T) {
	w := NewWhatsApp("56934973287", "Delicias Los Volcanes")

	msg := w.Message(testOrder(), &model.User{Name: "Ana", Email: "a@b.cl"})

	assert.Contains(t, msg, "¡Hola! 🌋 Soy Ana.")
	assert.Contains(t, msg, "pedido de Delicias Los Volcanes")
	assert.Contains(t, msg, "- 2x Volcán Osorno ($3.000)")
	assert.Contains(t, msg, "- 1x Lava de Chocolate ($1.800)")
	assert.Contains(t, msg, "*Total: $4.800*")
	assert.Contains(t, msg, "confirmar disponibilidad")
}

func TestMessageAnonymous(t *testing.T) {
	w := NewWhatsApp("56934973287", "Delicias Los Volcanes")

	msg := w.Message(testOrder(), nil)

	assert.Contains(t, msg, "¡Hola! 🌋 Quería hacer un pedido")
	assert.NotContains(t, msg, "Soy")
}

func TestURL(t *testing.T) {
	w := NewWhatsApp("56934973287", "Delicias Los Volcanes")

	raw := w.URL(testOrder(), nil)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "api.whatsapp.com", parsed.Host)
	assert.Equal(t, "/send", parsed.Path)
	assert.Equal(t, "56934973287", parsed.Query().Get("phone"))
	assert.Contains(t, parsed.Query().Get("text"), "*Total: $4.800*")
}
