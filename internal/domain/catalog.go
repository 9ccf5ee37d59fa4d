package domain

import (
	"math"
	"strings"
)

// Client is a buyer in the distributor's portfolio.
// PriceTier selects which price column/multiplier applies to every
// product quoted to this client (1..5, 1 = list price).
type Client struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	Zone      string `json:"zone,omitempty"`
	PriceTier int    `json:"price_tier"`

	// PreferredProductIDs holds the products this client orders most often,
	// used by the dialogue to shortcut the category step in the future.
	PreferredProductIDs []int `json:"preferred_product_ids,omitempty"`
}

// Category groups products. Rows with blank or placeholder names
// ("undefined", "null") come from sloppy sheet edits and must never
// be offered for selection.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Product is a sellable item. Only Active products are ever offered.
// Depending on the pricing mode, either BasePrice or TierPrices is
// authoritative (see ResolvePrice).
type Product struct {
	ID         int    `json:"id"`
	CategoryID int    `json:"category_id"`
	Name       string `json:"name"`
	BasePrice  int    `json:"base_price"`
	TierPrices [5]int `json:"tier_prices"`
	Active     bool   `json:"active"`
}

// ProductFilter narrows ListProducts results.
type ProductFilter struct {
	CategoryID int  // 0 = all categories
	ActiveOnly bool
}

// PricingMode selects how a client-specific unit price is derived.
type PricingMode string

const (
	// PricingTiers reads the per-tier price columns (price1..price5).
	PricingTiers PricingMode = "tiers"
	// PricingMultiplier applies a tier multiplier to the base price.
	PricingMultiplier PricingMode = "multiplier"
)

// tierMultipliers maps a client price tier to a base-price multiplier.
// Unknown tiers fall back to 1.0.
var tierMultipliers = map[int]float64{
	1: 1.0,
	2: 1.1,
	3: 1.2,
	4: 1.3,
	5: 1.4,
}

// ResolvePrice computes the unit price of a product for a client under the
// given pricing mode. Invalid or unset tiers default to tier 1. The result
// is frozen into the cart line at selection time — later catalog changes
// never touch lines already added.
func ResolvePrice(p *Product, c *Client, mode PricingMode) int {
	tier := c.PriceTier
	if tier < 1 || tier > 5 {
		tier = 1
	}

	if mode == PricingTiers {
		if price := p.TierPrices[tier-1]; price > 0 {
			return price
		}
		// Tier column empty on the sheet → fall back to list price.
		if p.TierPrices[0] > 0 {
			return p.TierPrices[0]
		}
		return p.BasePrice
	}

	mult, ok := tierMultipliers[tier]
	if !ok {
		mult = 1.0
	}
	return int(math.Round(float64(p.BasePrice) * mult))
}

// UsableName reports whether a catalog name is real data and not a
// placeholder left behind by a spreadsheet edit.
func UsableName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return false
	}
	switch strings.ToLower(trimmed) {
	case "undefined", "null", "n/a", "-":
		return false
	}
	return true
}
