package sheets

import (
	"testing"

	"github.com/distrisur/pedidos-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClient(t *testing.T) {
	c, ok := parseClient([]string{"12", "Supermercado Pérez", "341-555", "Mitre 120", "Sur", "3"})
	require.True(t, ok)
	assert.Equal(t, 12, c.ID)
	assert.Equal(t, "Supermercado Pérez", c.Name)
	assert.Equal(t, "Sur", c.Zone)
	assert.Equal(t, 3, c.PriceTier)

	// Missing tier column defaults to 1.
	c, ok = parseClient([]string{"13", "Kiosco La Esquina"})
	require.True(t, ok)
	assert.Equal(t, 1, c.PriceTier)

	// Out-of-range tier defaults to 1.
	c, ok = parseClient([]string{"14", "Bar El Faro", "", "", "", "9"})
	require.True(t, ok)
	assert.Equal(t, 1, c.PriceTier)

	_, ok = parseClient([]string{"0", "Sin ID"})
	assert.False(t, ok)
	_, ok = parseClient([]string{"15", "undefined"})
	assert.False(t, ok, "placeholder names must be dropped")
}

func TestParseCategory(t *testing.T) {
	c, ok := parseCategory([]string{"2", "Lácteos"})
	require.True(t, ok)
	assert.Equal(t, "Lácteos", c.Name)

	_, ok = parseCategory([]string{"3", "  "})
	assert.False(t, ok)
	_, ok = parseCategory([]string{"x", "Bebidas"})
	assert.False(t, ok)
}

func TestParseProduct_TierLayout(t *testing.T) {
	p, ok := parseProduct([]string{"5", "2", "Leche", "1200", "1320", "1440", "1560", "1680", "SI"})
	require.True(t, ok)
	assert.Equal(t, 5, p.ID)
	assert.Equal(t, 2, p.CategoryID)
	assert.Equal(t, [5]int{1200, 1320, 1440, 1560, 1680}, p.TierPrices)
	assert.Equal(t, 1200, p.BasePrice)
	assert.True(t, p.Active)
}

func TestParseProduct_LegacyLayout(t *testing.T) {
	p, ok := parseProduct([]string{"7", "1", "Pan", "850", "si"})
	require.True(t, ok)
	assert.Equal(t, 850, p.BasePrice)
	assert.Equal(t, 850, p.TierPrices[0])
	assert.True(t, p.Active)

	p, ok = parseProduct([]string{"8", "1", "Factura", "600", "NO"})
	require.True(t, ok)
	assert.False(t, p.Active)
}

func TestParseActive(t *testing.T) {
	for _, v := range []string{"SI", "sí", "s", "true", "1"} {
		assert.True(t, parseActive(v), v)
	}
	for _, v := range []string{"NO", "no", "", "0", "false", "tal vez"} {
		assert.False(t, parseActive(v), v)
	}
}

func TestOrderRowRoundTrip(t *testing.T) {
	order := &domain.Order{
		ID:            "ORD042",
		ClientID:      3,
		ClientName:    "Supermercado Pérez",
		LineItemCount: 2,
		Total:         4500,
		Status:        domain.OrderStatusPending,
	}

	parsed, ok := parseOrder(orderRow(order))
	require.True(t, ok)
	assert.Equal(t, "ORD042", parsed.ID)
	assert.Equal(t, 3, parsed.ClientID)
	assert.Equal(t, 4500, parsed.Total)
	assert.Equal(t, domain.OrderStatusPending, parsed.Status)
}

func TestOrderLineRowRoundTrip(t *testing.T) {
	line := domain.LineItem{
		ProductID:   5,
		ProductName: "Leche",
		CategoryID:  2,
		Quantity:    3,
		UnitPrice:   1200,
		LineTotal:   3600,
	}

	row := orderLineRow("ORD042", 1, &line)
	assert.Equal(t, "ORD042-1", row[0])

	orderID, parsed, ok := parseOrderLine(row)
	require.True(t, ok)
	assert.Equal(t, "ORD042", orderID)
	assert.Equal(t, line, parsed)
}

func TestParseTimestamp(t *testing.T) {
	for _, v := range []string{"2026-08-27 14:30:00", "2026-08-27T14:30:00Z", "2026-08-27"} {
		_, err := parseTimestamp(v)
		assert.NoError(t, err, v)
	}
	_, err := parseTimestamp("ayer")
	assert.Error(t, err)
}
