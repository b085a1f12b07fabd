package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusNames(t *testing.T) {
	assert.Equal(t, "Pendiente", StatusPending.String())
	assert.Equal(t, "Confirmado", StatusConfirmed.String())
	assert.Equal(t, "Entregado", StatusDelivered.String())
	assert.Equal(t, "Cancelado", StatusCancelled.String())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("Confirmado")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)

	_, err = ParseOrderStatus("Enviado")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusConfirmed, StatusPending, true},
		{StatusConfirmed, StatusDelivered, true},
		{StatusDelivered, StatusConfirmed, true},
		{StatusPending, StatusDelivered, false},
		{StatusDelivered, StatusPending, false},
		{StatusPending, StatusCancelled, false},
		{StatusConfirmed, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.allowed, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestOrderStatusJSON(t *testing.T) {
	raw, err := json.Marshal(StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, `"Entregado"`, string(raw))

	var status OrderStatus
	require.NoError(t, json.Unmarshal([]byte(`"Pendiente"`), &status))
	assert.Equal(t, StatusPending, status)

	assert.Error(t, json.Unmarshal([]byte(`"Perdido"`), &status))
}

func TestOwnedBy(t *testing.T) {
	order := &Order{Customer: &Customer{Name: "Ana", Email: "A@B.cl"}}
	assert.True(t, order.OwnedBy("a@b.cl"))
	assert.False(t, order.OwnedBy("otra@b.cl"))

	anonymous := &Order{}
	assert.False(t, anonymous.OwnedBy("a@b.cl"))
}
