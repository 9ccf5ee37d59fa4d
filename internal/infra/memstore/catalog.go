// Package memstore provides in-memory implementations of the catalog,
// order sink and session store ports. They back the service when no
// spreadsheet is configured and double as test fixtures.
package memstore

import (
	"context"
	"strconv"
	"sync"

	"github.com/distrisur/pedidos-go/internal/common"
	"github.com/distrisur/pedidos-go/internal/domain"
)

// Catalog is a thread-safe in-memory catalog. Insertion order is
// preserved, matching the row order of the spreadsheet it stands in for.
type Catalog struct {
	mu         sync.RWMutex
	mode       domain.PricingMode
	clients    []domain.Client
	categories []domain.Category
	products   []domain.Product
}

// NewCatalog creates an empty catalog with the given pricing mode.
func NewCatalog(mode domain.PricingMode) *Catalog {
	return &Catalog{mode: mode}
}

// NewDemoCatalog creates a catalog seeded with a small, clearly labeled
// demo dataset so the dialogue stays usable without a sheet configured.
func NewDemoCatalog(mode domain.PricingMode) *Catalog {
	c := NewCatalog(mode)
	c.Seed(
		[]domain.Client{
			{ID: 1, Name: "Almacén Don Mario (demo)", Zone: "Centro", PriceTier: 1},
			{ID: 2, Name: "Kiosco La Esquina (demo)", Zone: "Norte", PriceTier: 2},
			{ID: 3, Name: "Supermercado Pérez (demo)", Zone: "Sur", PriceTier: 3},
		},
		[]domain.Category{
			{ID: 1, Name: "Panificados"},
			{ID: 2, Name: "Lácteos"},
			{ID: 3, Name: "Bebidas"},
		},
		[]domain.Product{
			{ID: 1, CategoryID: 1, Name: "Pan", BasePrice: 850, TierPrices: [5]int{850, 935, 1020, 1105, 1190}, Active: true},
			{ID: 2, CategoryID: 2, Name: "Leche", BasePrice: 1200, TierPrices: [5]int{1200, 1320, 1440, 1560, 1680}, Active: true},
			{ID: 3, CategoryID: 3, Name: "Agua mineral", BasePrice: 700, TierPrices: [5]int{700, 770, 840, 910, 980}, Active: true},
			{ID: 4, CategoryID: 3, Name: "Gaseosa cola", BasePrice: 1500, TierPrices: [5]int{1500, 1650, 1800, 1950, 2100}, Active: false},
		},
	)
	return c
}

// Seed replaces the catalog contents. Rows with unusable names are
// dropped here, mirroring the hygiene filter of the sheet store.
func (c *Catalog) Seed(clients []domain.Client, categories []domain.Category, products []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clients = c.clients[:0]
	for _, cl := range clients {
		if domain.UsableName(cl.Name) {
			c.clients = append(c.clients, cl)
		}
	}
	c.categories = c.categories[:0]
	for _, cat := range categories {
		if domain.UsableName(cat.Name) {
			c.categories = append(c.categories, cat)
		}
	}
	c.products = c.products[:0]
	for _, p := range products {
		if domain.UsableName(p.Name) {
			c.products = append(c.products, p)
		}
	}
}

func (c *Catalog) ListClients(_ context.Context) ([]domain.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Client{}, c.clients...), nil
}

func (c *Catalog) ListCategories(_ context.Context) ([]domain.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Category{}, c.categories...), nil
}

func (c *Catalog) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []domain.Product{}
	for _, p := range c.products {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.CategoryID != 0 && p.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Catalog) SearchClients(_ context.Context, term string) ([]domain.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []domain.Client{}
	for _, cl := range c.clients {
		if common.ContainsFold(cl.Name, term) {
			out = append(out, cl)
		}
	}
	return out, nil
}

func (c *Catalog) SearchProducts(_ context.Context, term string, categoryID int) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []domain.Product{}
	for _, p := range c.products {
		if !p.Active {
			continue
		}
		if categoryID != 0 && p.CategoryID != categoryID {
			continue
		}
		if common.ContainsFold(p.Name, term) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Catalog) GetClient(_ context.Context, id int) (*domain.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.clients {
		if c.clients[i].ID == id {
			cl := c.clients[i]
			return &cl, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "client", ID: strconv.Itoa(id)}
}

func (c *Catalog) GetCategory(_ context.Context, id int) (*domain.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.categories {
		if c.categories[i].ID == id {
			cat := c.categories[i]
			return &cat, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "category", ID: strconv.Itoa(id)}
}

func (c *Catalog) GetProduct(_ context.Context, id int) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.products {
		if c.products[i].ID == id {
			p := c.products[i]
			return &p, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "product", ID: strconv.Itoa(id)}
}

func (c *Catalog) PriceFor(product *domain.Product, client *domain.Client) int {
	return domain.ResolvePrice(product, client, c.mode)
}

func (c *Catalog) AddClient(_ context.Context, name string) (*domain.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	maxID := 0
	for _, cl := range c.clients {
		if cl.ID > maxID {
			maxID = cl.ID
		}
	}
	newClient := domain.Client{ID: maxID + 1, Name: name, PriceTier: 1}
	c.clients = append(c.clients, newClient)
	return &newClient, nil
}
