package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/distrisur/pedidos-go/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderSink appends finalized orders to the Pedidos / PedidoLineas tabs
// and serves the dashboard's read side over them.
type OrderSink struct {
	client *Client
	logger *zap.Logger

	// opaqueIDs switches from sequential "ORD001" ids to uuids.
	opaqueIDs bool

	// The sequential counter is seeded once from the sheet so ids stay
	// unique across restarts.
	seedOnce sync.Once
	seedErr  error
	mu       sync.Mutex
	counter  int
}

// NewOrderSink creates the sink. idFormat is "seq" or "uuid".
func NewOrderSink(client *Client, idFormat string, logger *zap.Logger) *OrderSink {
	return &OrderSink{
		client:    client,
		logger:    logger,
		opaqueIDs: idFormat == "uuid",
	}
}

// NextOrderID returns an id unique across the sheet's lifetime. The
// zero-padded sequential format is presentation only; uniqueness is the
// contract.
func (s *OrderSink) NextOrderID(ctx context.Context) (string, error) {
	if s.opaqueIDs {
		return uuid.NewString(), nil
	}

	s.seedOnce.Do(func() { s.seedErr = s.seedCounter(ctx) })
	if s.seedErr != nil {
		return "", &domain.ErrExternalService{Service: "sheets/orders", Err: s.seedErr}
	}

	s.mu.Lock()
	s.counter++
	n := s.counter
	s.mu.Unlock()
	return fmt.Sprintf("ORD%03d", n), nil
}

// seedCounter scans existing order ids and resumes after the highest
// sequential one. Opaque ids from a previous uuid configuration are
// ignored.
func (s *OrderSink) seedCounter(ctx context.Context) error {
	rows, err := s.client.GetRange(ctx, rangeOrders)
	if err != nil {
		return err
	}

	max := 0
	for _, row := range rows {
		id := cell(row, 0)
		if !strings.HasPrefix(id, "ORD") {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "ORD")); err == nil && n > max {
			max = n
		}
	}

	s.mu.Lock()
	s.counter = max
	s.mu.Unlock()
	s.logger.Info("order counter seeded from sheet", zap.Int("last_order", max))
	return nil
}

// Append writes the order row and its line rows. Transient failures are
// retried inside the sheet client; callers must not re-run checkout.
func (s *OrderSink) Append(ctx context.Context, order *domain.Order, lines []domain.LineItem) error {
	if err := s.client.AppendRows(ctx, appendOrders, [][]string{orderRow(order)}); err != nil {
		return &domain.ErrExternalService{Service: "sheets/orders", Err: err}
	}

	lineRows := make([][]string, 0, len(lines))
	for i := range lines {
		lineRows = append(lineRows, orderLineRow(order.ID, i+1, &lines[i]))
	}
	if err := s.client.AppendRows(ctx, appendOrderLines, lineRows); err != nil {
		// The order header landed but the lines did not; surface loudly —
		// the sheet needs manual attention rather than a duplicate order.
		s.logger.Error("order lines append failed after header append",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
		return &domain.ErrExternalService{Service: "sheets/order_lines", Err: err}
	}
	return nil
}

// ListOrders returns one page of orders, newest first, plus the total
// count.
func (s *OrderSink) ListOrders(ctx context.Context, page, pageSize int) ([]domain.Order, int, error) {
	rows, err := s.client.GetRange(ctx, rangeOrders)
	if err != nil {
		return nil, 0, &domain.ErrExternalService{Service: "sheets/orders", Err: err}
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		if o, ok := parseOrder(row); ok {
			orders = append(orders, o)
		}
	}

	// Sheet order is append order; reverse for newest-first.
	for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
		orders[i], orders[j] = orders[j], orders[i]
	}

	total := len(orders)
	start := (page - 1) * pageSize
	if start >= total {
		return []domain.Order{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return orders[start:end], total, nil
}

// GetOrder returns one order and its lines.
func (s *OrderSink) GetOrder(ctx context.Context, orderID string) (*domain.Order, []domain.LineItem, error) {
	rows, err := s.client.GetRange(ctx, rangeOrders)
	if err != nil {
		return nil, nil, &domain.ErrExternalService{Service: "sheets/orders", Err: err}
	}

	var order *domain.Order
	for _, row := range rows {
		if o, ok := parseOrder(row); ok && o.ID == orderID {
			order = &o
			break
		}
	}
	if order == nil {
		return nil, nil, &domain.ErrNotFound{Resource: "order", ID: orderID}
	}

	lineRows, err := s.client.GetRange(ctx, rangeOrderLines)
	if err != nil {
		return nil, nil, &domain.ErrExternalService{Service: "sheets/order_lines", Err: err}
	}

	lines := []domain.LineItem{}
	for _, row := range lineRows {
		if id, line, ok := parseOrderLine(row); ok && id == orderID {
			lines = append(lines, line)
		}
	}
	return order, lines, nil
}
