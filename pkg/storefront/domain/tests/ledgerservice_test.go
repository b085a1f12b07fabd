package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/storefront/domain/model"
	"storefront/pkg/storefront/domain/service"
)

type ledgerFixture struct {
	ledger     service.LedgerService
	orders     *mockOrderRepository
	session    *service.SessionCache
	dispatcher *mockEventDispatcher
}

func setupLedger(t *testing.T) *ledgerFixture {
	t.Helper()
	orders := newMockOrderRepository()
	session := service.NewSessionCache()
	dispatcher := &mockEventDispatcher{}
	return &ledgerFixture{
		ledger:     service.NewLedgerService(orders, session, dispatcher),
		orders:     orders,
		session:    session,
		dispatcher: dispatcher,
	}
}

func (f *ledgerFixture) placedOrder(t *testing.T, email string, status model.OrderStatus) *model.Order {
	t.Helper()
	id, err := f.orders.NextID()
	require.NoError(t, err)
	order := &model.Order{
		ID:         id,
		CreatedAt:  time.Now().UTC(),
		Lines:      []model.OrderLine{{ProductID: "PROD-A", Name: "Galleta", Quantity: 1, PriceCents: 1500}},
		TotalCents: 1500,
		Status:     status,
	}
	if email != "" {
		order.Customer = &model.Customer{Name: "Ana", Email: email}
	}
	require.NoError(t, f.orders.Create(order))
	return order
}

// signIn seeds the session the way a login would: active user plus the
// personal projection loaded from the ledger.
func (f *ledgerFixture) signIn(t *testing.T, email string) {
	t.Helper()
	f.session.SetUser(&model.User{ID: "USR-1", Email: email, Name: "Ana"})
	personal, err := f.orders.ListByEmail(email)
	require.NoError(t, err)
	f.session.SetOrders(personal)
}

func TestSetStatusPropagatesToEveryView(t *testing.T) {
	f := setupLedger(t)
	order := f.placedOrder(t, "a@b.cl", model.StatusPending)
	f.signIn(t, "a@b.cl")

	require.NoError(t, f.ledger.SetStatus(order.ID, model.StatusConfirmed))

	global, err := f.orders.Find(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, global.Status)

	personal, err := f.ledger.OrdersFor("a@b.cl")
	require.NoError(t, err)
	require.Len(t, personal, 1)
	assert.Equal(t, model.StatusConfirmed, personal[0].Status)

	cached := f.session.Orders()
	require.Len(t, cached, 1)
	assert.Equal(t, model.StatusConfirmed, cached[0].Status)
}

func TestSetStatusIsIdempotent(t *testing.T) {
	f := setupLedger(t)
	order := f.placedOrder(t, "a@b.cl", model.StatusPending)

	require.NoError(t, f.ledger.SetStatus(order.ID, model.StatusConfirmed))
	f.dispatcher.Reset()

	require.NoError(t, f.ledger.SetStatus(order.ID, model.StatusConfirmed))

	global, err := f.orders.Find(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, global.Status)
	assert.Empty(t, f.dispatcher.events, "re-applying a status is not a transition")
}

func TestSetStatusUnknownOrder(t *testing.T) {
	f := setupLedger(t)
	f.placedOrder(t, "a@b.cl", model.StatusPending)
	before, err := f.ledger.AllOrders()
	require.NoError(t, err)

	err = f.ledger.SetStatus("ORD-UNKNOWN", model.StatusConfirmed)

	assert.ErrorIs(t, err, model.ErrOrderNotFound)
	after, listErr := f.ledger.AllOrders()
	require.NoError(t, listErr)
	assert.Equal(t, before, after, "failed update must not change the ledger")
}

func TestStatusTransitions(t *testing.T) {
	t.Run("Confirm, deliver, reopen", func(t *testing.T) {
		f := setupLedger(t)
		order := f.placedOrder(t, "a@b.cl", model.StatusPending)

		require.NoError(t, f.ledger.SetStatus(order.ID, model.StatusConfirmed))
		require.NoError(t, f.ledger.SetStatus(order.ID, model.StatusDelivered))
		require.NoError(t, f.ledger.SetStatus(order.ID, model.StatusConfirmed))

		global, _ := f.orders.Find(order.ID)
		assert.Equal(t, model.StatusConfirmed, global.Status)
	})

	t.Run("Revert confirmation", func(t *testing.T) {
		f := setupLedger(t)
		order := f.placedOrder(t, "a@b.cl", model.StatusConfirmed)

		require.NoError(t, f.ledger.SetStatus(order.ID, model.StatusPending))

		global, _ := f.orders.Find(order.ID)
		assert.Equal(t, model.StatusPending, global.Status)
	})

	t.Run("Pending cannot jump to delivered", func(t *testing.T) {
		f := setupLedger(t)
		order := f.placedOrder(t, "a@b.cl", model.StatusPending)

		err := f.ledger.SetStatus(order.ID, model.StatusDelivered)

		assert.ErrorIs(t, err, model.ErrInvalidTransition)
		global, _ := f.orders.Find(order.ID)
		assert.Equal(t, model.StatusPending, global.Status)
	})

	t.Run("No exposed path into cancelled", func(t *testing.T) {
		f := setupLedger(t)
		order := f.placedOrder(t, "a@b.cl", model.StatusPending)

		err := f.ledger.SetStatus(order.ID, model.StatusCancelled)

		assert.ErrorIs(t, err, model.ErrInvalidTransition)
	})
}

func TestSetStatusSkipsForeignSession(t *testing.T) {
	f := setupLedger(t)
	anaOrder := f.placedOrder(t, "a@b.cl", model.StatusPending)
	f.placedOrder(t, "otra@b.cl", model.StatusPending)
	f.signIn(t, "otra@b.cl")

	require.NoError(t, f.ledger.SetStatus(anaOrder.ID, model.StatusConfirmed))

	cached := f.session.Orders()
	require.Len(t, cached, 1)
	assert.Equal(t, model.StatusPending, cached[0].Status, "another shopper's session view is untouched")
}

func TestActiveAndFinishedSplits(t *testing.T) {
	f := setupLedger(t)
	pending := f.placedOrder(t, "a@b.cl", model.StatusPending)
	confirmed := f.placedOrder(t, "a@b.cl", model.StatusConfirmed)
	delivered := f.placedOrder(t, "a@b.cl", model.StatusDelivered)
	cancelled := f.placedOrder(t, "a@b.cl", model.StatusCancelled)

	active, err := f.ledger.ActiveOrders()
	require.NoError(t, err)
	finished, err := f.ledger.FinishedOrders()
	require.NoError(t, err)

	activeIDs := orderIDs(active)
	finishedIDs := orderIDs(finished)
	assert.ElementsMatch(t, []model.OrderID{pending.ID, confirmed.ID}, activeIDs)
	assert.ElementsMatch(t, []model.OrderID{delivered.ID, cancelled.ID}, finishedIDs)
}

func TestMostRecentFirstOrdering(t *testing.T) {
	f := setupLedger(t)
	first := f.placedOrder(t, "a@b.cl", model.StatusPending)
	second := f.placedOrder(t, "a@b.cl", model.StatusPending)

	all, err := f.ledger.AllOrders()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}

func TestStatusChangeEvent(t *testing.T) {
	f := setupLedger(t)
	order := f.placedOrder(t, "a@b.cl", model.StatusPending)

	require.NoError(t, f.ledger.SetStatus(order.ID, model.StatusConfirmed))

	require.Len(t, f.dispatcher.events, 1)
	changed, ok := f.dispatcher.events[0].(model.OrderStatusChanged)
	require.True(t, ok)
	assert.Equal(t, model.StatusPending, changed.OldStatus)
	assert.Equal(t, model.StatusConfirmed, changed.NewStatus)
}

func orderIDs(orders []*model.Order) []model.OrderID {
	ids := make([]model.OrderID, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}
	return ids
}
