package service

import (
	"context"

	"github.com/distrisur/pedidos-go/internal/domain"
	"github.com/distrisur/pedidos-go/internal/infra/observability"
	"github.com/distrisur/pedidos-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/admin")

// statsScanLimit bounds how many recent orders the stats aggregation
// walks; the dashboard is a small-business tool, not an OLAP engine.
const statsScanLimit = 500

// AdminService is the read side behind the dashboard: order listings and
// aggregated stats over catalog and sink.
type AdminService struct {
	catalog  port.CatalogStore
	orders   port.OrderReader
	sessions port.SessionStore
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAdminService creates the admin read service.
func NewAdminService(catalog port.CatalogStore, orders port.OrderReader, sessions port.SessionStore, metrics *observability.Metrics, logger *zap.Logger) *AdminService {
	return &AdminService{
		catalog:  catalog,
		orders:   orders,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
	}
}

// OrderPage is one page of the order listing.
type OrderPage struct {
	Orders   []domain.Order `json:"orders"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// ListOrders returns one page of orders, newest first.
func (s *AdminService) ListOrders(ctx context.Context, page, pageSize int) (*OrderPage, error) {
	ctx, span := tracer.Start(ctx, "AdminService.ListOrders")
	defer span.End()

	orders, total, err := s.orders.ListOrders(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: orders, Total: total, Page: page, PageSize: pageSize}, nil
}

// OrderDetail is one order with its line items.
type OrderDetail struct {
	Order domain.Order      `json:"order"`
	Lines []domain.LineItem `json:"lines"`
}

// GetOrder returns one order with lines.
func (s *AdminService) GetOrder(ctx context.Context, orderID string) (*OrderDetail, error) {
	ctx, span := tracer.Start(ctx, "AdminService.GetOrder")
	defer span.End()

	order, lines, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: *order, Lines: lines}, nil
}

// Stats is the dashboard aggregate: order totals plus the dialogue
// counter snapshot.
type Stats struct {
	TotalOrders    int                             `json:"total_orders"`
	TotalValue     int                             `json:"total_value"`
	AvgOrderValue  int                             `json:"avg_order_value"`
	OrdersByStatus map[domain.OrderStatus]int      `json:"orders_by_status"`
	Clients        int                             `json:"clients"`
	ActiveProducts int                             `json:"active_products"`
	LiveSessions   int                             `json:"live_sessions"`
	Dialogue       *observability.DialogueSnapshot `json:"dialogue"`
}

// GetStats aggregates over the most recent orders and the catalog.
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	ctx, span := tracer.Start(ctx, "AdminService.GetStats")
	defer span.End()

	orders, total, err := s.orders.ListOrders(ctx, 1, statsScanLimit)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalOrders:    total,
		OrdersByStatus: map[domain.OrderStatus]int{},
		LiveSessions:   s.sessions.Len(),
		Dialogue:       s.metrics.GetDialogueSnapshot(),
	}
	for _, o := range orders {
		stats.TotalValue += o.Total
		stats.OrdersByStatus[o.Status]++
	}
	if len(orders) > 0 {
		stats.AvgOrderValue = stats.TotalValue / len(orders)
	}

	if clients, err := s.catalog.ListClients(ctx); err == nil {
		stats.Clients = len(clients)
	} else {
		s.logger.Warn("stats: client count unavailable", zap.Error(err))
	}
	if products, err := s.catalog.ListProducts(ctx, domain.ProductFilter{ActiveOnly: true}); err == nil {
		stats.ActiveProducts = len(products)
	} else {
		s.logger.Warn("stats: product count unavailable", zap.Error(err))
	}

	return stats, nil
}
