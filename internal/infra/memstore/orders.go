package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/distrisur/pedidos-go/internal/domain"

	"github.com/google/uuid"
)

// OrderSink collects finalized orders in memory.
type OrderSink struct {
	mu        sync.Mutex
	opaqueIDs bool
	counter   int
	orders    []domain.Order
	lines     map[string][]domain.LineItem
}

// NewOrderSink creates the sink. idFormat is "seq" or "uuid".
func NewOrderSink(idFormat string) *OrderSink {
	return &OrderSink{
		opaqueIDs: idFormat == "uuid",
		lines:     map[string][]domain.LineItem{},
	}
}

func (s *OrderSink) NextOrderID(_ context.Context) (string, error) {
	if s.opaqueIDs {
		return uuid.NewString(), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return fmt.Sprintf("ORD%03d", s.counter), nil
}

func (s *OrderSink) Append(_ context.Context, order *domain.Order, lines []domain.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, *order)
	s.lines[order.ID] = append([]domain.LineItem{}, lines...)
	return nil
}

func (s *OrderSink) ListOrders(_ context.Context, page, pageSize int) ([]domain.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Newest first.
	out := make([]domain.Order, len(s.orders))
	for i, o := range s.orders {
		out[len(s.orders)-1-i] = o
	}

	total := len(out)
	start := (page - 1) * pageSize
	if start >= total {
		return []domain.Order{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (s *OrderSink) GetOrder(_ context.Context, orderID string) (*domain.Order, []domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			o := s.orders[i]
			return &o, append([]domain.LineItem{}, s.lines[orderID]...), nil
		}
	}
	return nil, nil, &domain.ErrNotFound{Resource: "order", ID: orderID}
}
