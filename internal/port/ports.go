// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the dialogue
// engine from concrete implementations: the spreadsheet-backed stores,
// the in-memory stores, and the chat transports are all swappable.
package port

import (
	"context"

	"github.com/distrisur/pedidos-go/internal/domain"
)

// CatalogStore is the read model of clients, categories and products.
// AddClient is the only mutation the engine performs on the catalog.
//
// List and Search results keep the backing store's insertion order;
// search matching is substring, case- and accent-insensitive. Categories
// with unusable names are filtered out by the store, not by callers.
type CatalogStore interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)

	SearchClients(ctx context.Context, term string) ([]domain.Client, error)
	SearchProducts(ctx context.Context, term string, categoryID int) ([]domain.Product, error)

	GetClient(ctx context.Context, id int) (*domain.Client, error)
	GetCategory(ctx context.Context, id int) (*domain.Category, error)
	GetProduct(ctx context.Context, id int) (*domain.Product, error)

	// PriceFor resolves the unit price of a product for a client under
	// the store's configured pricing mode.
	PriceFor(product *domain.Product, client *domain.Client) int

	// AddClient allocates id = max(existing)+1, appends the record with
	// default price tier 1 and returns it.
	AddClient(ctx context.Context, name string) (*domain.Client, error)
}

// OrderSink is the append-only destination for finalized orders.
// Transient write failures are retried inside the sink; the engine never
// re-runs checkout on retry.
type OrderSink interface {
	// NextOrderID returns an id unique across the sink's lifetime.
	NextOrderID(ctx context.Context) (string, error)
	Append(ctx context.Context, order *domain.Order, lines []domain.LineItem) error
}

// OrderReader is the dashboard's read side over appended orders.
type OrderReader interface {
	ListOrders(ctx context.Context, page, pageSize int) ([]domain.Order, int, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, []domain.LineItem, error)
}

// SessionStore maps a user identity to its single live session.
// GetOrCreate must return the same *Session for concurrent calls with
// the same userID.
type SessionStore interface {
	GetOrCreate(userID string) *domain.Session
	Delete(userID string)
	// Len reports the number of live sessions.
	Len() int
}

// PromptSender delivers an outgoing prompt to a user over some channel
// (chat webhook, in-process UI). Choices are rendered as buttons.
type PromptSender interface {
	SendPrompt(ctx context.Context, userID string, reply *domain.Reply) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
