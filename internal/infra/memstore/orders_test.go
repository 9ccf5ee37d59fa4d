package memstore_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/distrisur/pedidos-go/internal/domain"
	"github.com/distrisur/pedidos-go/internal/infra/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOrderID_Sequential(t *testing.T) {
	s := memstore.NewOrderSink("seq")

	id1, err := s.NextOrderID(context.Background())
	require.NoError(t, err)
	id2, err := s.NextOrderID(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ORD001", id1)
	assert.Equal(t, "ORD002", id2)
}

func TestNextOrderID_UUID(t *testing.T) {
	s := memstore.NewOrderSink("uuid")

	id, err := s.NextOrderID(context.Background())
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestListOrders_NewestFirstWithPagination(t *testing.T) {
	s := memstore.NewOrderSink("seq")
	for i := 1; i <= 5; i++ {
		id, _ := s.NextOrderID(context.Background())
		err := s.Append(context.Background(), &domain.Order{
			ID:     id,
			Total:  i * 100,
			Status: domain.OrderStatusPending,
		}, []domain.LineItem{{ProductID: i, Quantity: 1}})
		require.NoError(t, err)
	}

	page1, total, err := s.ListOrders(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page1, 2)
	assert.Equal(t, "ORD005", page1[0].ID)
	assert.Equal(t, "ORD004", page1[1].ID)

	page3, _, err := s.ListOrders(context.Background(), 3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, "ORD001", page3[0].ID)

	empty, _, err := s.ListOrders(context.Background(), 4, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetOrder(t *testing.T) {
	s := memstore.NewOrderSink("seq")
	id, _ := s.NextOrderID(context.Background())
	lines := []domain.LineItem{
		{ProductID: 1, ProductName: "Pan", Quantity: 3, UnitPrice: 850, LineTotal: 2550},
	}
	require.NoError(t, s.Append(context.Background(), &domain.Order{ID: id, Total: 2550}, lines))

	order, gotLines, err := s.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2550, order.Total)
	require.Len(t, gotLines, 1)
	assert.Equal(t, "Pan", gotLines[0].ProductName)

	_, _, err = s.GetOrder(context.Background(), "ORD999")
	var notFound *domain.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestSessionStore(t *testing.T) {
	store := memstore.NewSessionStore()

	a := store.GetOrCreate("user-a")
	b := store.GetOrCreate("user-b")
	assert.NotSame(t, a, b)
	assert.Same(t, a, store.GetOrCreate("user-a"), "same user must get the same session")
	assert.Equal(t, 2, store.Len())

	store.Delete("user-a")
	assert.Equal(t, 1, store.Len())
	assert.NotSame(t, a, store.GetOrCreate("user-a"), "delete must discard the old session")
}

func TestSessionStore_ConcurrentGetOrCreate(t *testing.T) {
	store := memstore.NewSessionStore()

	done := make(chan *domain.Session, 20)
	for i := 0; i < 20; i++ {
		go func() {
			done <- store.GetOrCreate("same-user")
		}()
	}

	first := <-done
	for i := 1; i < 20; i++ {
		assert.Same(t, first, <-done, fmt.Sprintf("goroutine %d got a different session", i))
	}
	assert.Equal(t, 1, store.Len())
}
