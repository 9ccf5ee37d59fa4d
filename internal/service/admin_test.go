package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/distrisur/pedidos-go/internal/domain"
	"github.com/distrisur/pedidos-go/internal/infra/memstore"
	"github.com/distrisur/pedidos-go/internal/infra/observability"
	"github.com/distrisur/pedidos-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAdminFixture(t *testing.T) (*service.AdminService, *memstore.OrderSink) {
	t.Helper()
	catalog := memstore.NewDemoCatalog(domain.PricingTiers)
	sink := memstore.NewOrderSink("seq")
	sessions := memstore.NewSessionStore()
	svc := service.NewAdminService(catalog, sink, sessions, observability.NewMetrics(), zap.NewNop())
	return svc, sink
}

func appendOrder(t *testing.T, sink *memstore.OrderSink, total int, status domain.OrderStatus) string {
	t.Helper()
	id, err := sink.NextOrderID(context.Background())
	require.NoError(t, err)
	err = sink.Append(context.Background(), &domain.Order{
		ID:            id,
		Timestamp:     time.Now(),
		ClientID:      1,
		ClientName:    "Almacén Don Mario (demo)",
		LineItemCount: 1,
		Total:         total,
		Status:        status,
	}, []domain.LineItem{{ProductID: 1, ProductName: "Pan", Quantity: 1, UnitPrice: total, LineTotal: total}})
	require.NoError(t, err)
	return id
}

func TestListOrders_Paged(t *testing.T) {
	svc, sink := newAdminFixture(t)
	for i := 0; i < 3; i++ {
		appendOrder(t, sink, 1000+i, domain.OrderStatusPending)
	}

	page, err := svc.ListOrders(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Orders, 2)
	assert.Equal(t, "ORD003", page.Orders[0].ID, "newest first")
}

func TestGetOrderDetail(t *testing.T) {
	svc, sink := newAdminFixture(t)
	id := appendOrder(t, sink, 850, domain.OrderStatusPending)

	detail, err := svc.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 850, detail.Order.Total)
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, "Pan", detail.Lines[0].ProductName)

	_, err = svc.GetOrder(context.Background(), "ORD999")
	var notFound *domain.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestGetStats(t *testing.T) {
	svc, sink := newAdminFixture(t)
	appendOrder(t, sink, 1000, domain.OrderStatusPending)
	appendOrder(t, sink, 3000, domain.OrderStatusConfirmed)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 4000, stats.TotalValue)
	assert.Equal(t, 2000, stats.AvgOrderValue)
	assert.Equal(t, 1, stats.OrdersByStatus[domain.OrderStatusPending])
	assert.Equal(t, 1, stats.OrdersByStatus[domain.OrderStatusConfirmed])
	assert.Equal(t, 3, stats.Clients)
	assert.Equal(t, 3, stats.ActiveProducts)
	assert.NotNil(t, stats.Dialogue)
}
