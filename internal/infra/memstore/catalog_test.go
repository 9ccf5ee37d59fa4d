package memstore_test

import (
	"context"
	"testing"

	"github.com/distrisur/pedidos-go/internal/domain"
	"github.com/distrisur/pedidos-go/internal/infra/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchClients_AccentInsensitive(t *testing.T) {
	c := memstore.NewDemoCatalog(domain.PricingTiers)

	matches, err := c.SearchClients(context.Background(), "perez")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Supermercado Pérez (demo)", matches[0].Name)

	matches, err = c.SearchClients(context.Background(), "ALMACÉN")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].ID)
}

func TestSearchProducts_ScopedAndActiveOnly(t *testing.T) {
	c := memstore.NewDemoCatalog(domain.PricingTiers)

	// "a" matches several names, but scoping to Bebidas narrows it and the
	// inactive Gaseosa never shows up.
	matches, err := c.SearchProducts(context.Background(), "a", 3)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Agua mineral", matches[0].Name)

	matches, err = c.SearchProducts(context.Background(), "gaseosa", 0)
	require.NoError(t, err)
	assert.Empty(t, matches, "inactive products must not match")
}

func TestListProducts_Filter(t *testing.T) {
	c := memstore.NewDemoCatalog(domain.PricingTiers)

	all, err := c.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	active, err := c.ListProducts(context.Background(), domain.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 3)

	bebidas, err := c.ListProducts(context.Background(), domain.ProductFilter{CategoryID: 3, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, bebidas, 1)
	assert.Equal(t, "Agua mineral", bebidas[0].Name)
}

func TestGetClient_NotFound(t *testing.T) {
	c := memstore.NewDemoCatalog(domain.PricingTiers)

	_, err := c.GetClient(context.Background(), 999)
	var notFound *domain.ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "client", notFound.Resource)
}

func TestAddClient_AllocatesNextID(t *testing.T) {
	c := memstore.NewDemoCatalog(domain.PricingTiers)

	created, err := c.AddClient(context.Background(), "Bar El Faro")
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)
	assert.Equal(t, 1, created.PriceTier)

	got, err := c.GetClient(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Bar El Faro", got.Name)
}

func TestSeed_DropsUnusableNames(t *testing.T) {
	c := memstore.NewCatalog(domain.PricingTiers)
	c.Seed(
		[]domain.Client{{ID: 1, Name: "Real"}, {ID: 2, Name: "undefined"}},
		[]domain.Category{{ID: 1, Name: "  "}, {ID: 2, Name: "Bebidas"}},
		[]domain.Product{{ID: 1, Name: "null"}, {ID: 2, Name: "Agua", Active: true}},
	)

	clients, _ := c.ListClients(context.Background())
	assert.Len(t, clients, 1)
	categories, _ := c.ListCategories(context.Background())
	assert.Len(t, categories, 1)
	products, _ := c.ListProducts(context.Background(), domain.ProductFilter{})
	assert.Len(t, products, 1)
}

func TestPriceFor_UsesConfiguredMode(t *testing.T) {
	tiers := memstore.NewDemoCatalog(domain.PricingTiers)
	mult := memstore.NewDemoCatalog(domain.PricingMultiplier)

	p, err := tiers.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	client := &domain.Client{PriceTier: 2}

	assert.Equal(t, 935, tiers.PriceFor(p, client))
	assert.Equal(t, 935, mult.PriceFor(p, client)) // 850 × 1.1 rounded
}
