package domain

import "time"

// OrderStatus is the review state of a finalized order. The engine only
// ever creates orders as Pending; later transitions belong to the
// back-office reviewer, not to this service.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "borrador"
	OrderStatusPending   OrderStatus = "pendiente"
	OrderStatusConfirmed OrderStatus = "confirmado"
	OrderStatusCancelled OrderStatus = "cancelado"
)

// LineItem is one product plus quantity inside a cart, with the unit
// price frozen at the moment the product was selected.
type LineItem struct {
	ProductID   int    `json:"product_id"`
	ProductName string `json:"product_name"`
	CategoryID  int    `json:"category_id"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int    `json:"unit_price"`
	LineTotal   int    `json:"line_total"`
}

// NewLineItem builds a line with LineTotal derived from quantity × unit
// price. Callers validate quantity > 0 before constructing.
func NewLineItem(p *Product, quantity, unitPrice int) LineItem {
	return LineItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		CategoryID:  p.CategoryID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   quantity * unitPrice,
	}
}

// Order is a finalized cart snapshot appended to the order sink.
type Order struct {
	ID            string      `json:"id"`
	Timestamp     time.Time   `json:"timestamp"`
	ClientID      int         `json:"client_id"`
	ClientName    string      `json:"client_name"`
	LineItemCount int         `json:"line_item_count"`
	Total         int         `json:"total"`
	Status        OrderStatus `json:"status"`
}

// CartTotal sums the line totals of a cart.
func CartTotal(cart []LineItem) int {
	total := 0
	for _, line := range cart {
		total += line.LineTotal
	}
	return total
}
