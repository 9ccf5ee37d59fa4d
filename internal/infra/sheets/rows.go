package sheets

import (
	"strconv"
	"strings"
	"time"

	"github.com/distrisur/pedidos-go/internal/domain"
)

// parseTimestamp accepts the formats seen in real sheets: the layout we
// write, RFC3339, and bare dates typed by hand.
func parseTimestamp(v string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, &time.ParseError{Layout: "2006-01-02 15:04:05", Value: v}
}

// Sheet layouts. Header is always row 1, data starts at row 2.
//
//	Clientes:      id | nombre | telefono | direccion | zona | categoriaPrecio
//	Categorias:    id | nombre
//	Productos:     id | categoriaId | nombre | precio1..precio5 | activo(SI/NO)
//	               (legacy short form: id | categoriaId | nombre | precio | activo)
//	Pedidos:       id | timestamp | clienteId | cliente | items | total | estado
//	PedidoLineas:  id | pedidoId | productoId | producto | categoriaId | cantidad | precioUnit | totalLinea
const (
	rangeClients    = "Clientes!A2:F"
	rangeCategories = "Categorias!A2:B"
	rangeProducts   = "Productos!A2:I"
	rangeOrders     = "Pedidos!A2:G"
	rangeOrderLines = "PedidoLineas!A2:H"

	appendOrders     = "Pedidos!A1"
	appendOrderLines = "PedidoLineas!A1"
	appendClients    = "Clientes!A1"
)

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func cellInt(row []string, i int) int {
	n, _ := strconv.Atoi(cell(row, i))
	return n
}

// parseClient maps a Clientes row. Rows without a usable id or name are
// skipped by the caller.
func parseClient(row []string) (domain.Client, bool) {
	c := domain.Client{
		ID:        cellInt(row, 0),
		Name:      cell(row, 1),
		Phone:     cell(row, 2),
		Address:   cell(row, 3),
		Zone:      cell(row, 4),
		PriceTier: cellInt(row, 5),
	}
	if c.PriceTier < 1 || c.PriceTier > 5 {
		c.PriceTier = 1
	}
	if c.ID <= 0 || !domain.UsableName(c.Name) {
		return domain.Client{}, false
	}
	return c, true
}

func parseCategory(row []string) (domain.Category, bool) {
	c := domain.Category{ID: cellInt(row, 0), Name: cell(row, 1)}
	// Blank or placeholder names come from half-deleted sheet rows; they
	// must never be selectable.
	if c.ID <= 0 || !domain.UsableName(c.Name) {
		return domain.Category{}, false
	}
	return c, true
}

// parseProduct maps a Productos row in either layout: five tier price
// columns, or the legacy single price column.
func parseProduct(row []string) (domain.Product, bool) {
	p := domain.Product{
		ID:         cellInt(row, 0),
		CategoryID: cellInt(row, 1),
		Name:       cell(row, 2),
	}
	if p.ID <= 0 || !domain.UsableName(p.Name) {
		return domain.Product{}, false
	}

	if len(row) >= 9 {
		for i := 0; i < 5; i++ {
			p.TierPrices[i] = cellInt(row, 3+i)
		}
		p.BasePrice = p.TierPrices[0]
		p.Active = parseActive(cell(row, 8))
	} else {
		p.BasePrice = cellInt(row, 3)
		p.TierPrices[0] = p.BasePrice
		p.Active = parseActive(cell(row, 4))
	}
	return p, true
}

// parseActive interprets the activo flag. The sheet uses "SI"/"NO"; only
// an explicit yes activates a product.
func parseActive(v string) bool {
	switch strings.ToLower(v) {
	case "si", "sí", "s", "true", "1":
		return true
	}
	return false
}

func clientRow(c *domain.Client) []string {
	return []string{
		strconv.Itoa(c.ID),
		c.Name,
		c.Phone,
		c.Address,
		c.Zone,
		strconv.Itoa(c.PriceTier),
	}
}

func orderRow(o *domain.Order) []string {
	return []string{
		o.ID,
		o.Timestamp.Format("2006-01-02 15:04:05"),
		strconv.Itoa(o.ClientID),
		o.ClientName,
		strconv.Itoa(o.LineItemCount),
		strconv.Itoa(o.Total),
		string(o.Status),
	}
}

func orderLineRow(orderID string, n int, line *domain.LineItem) []string {
	return []string{
		orderID + "-" + strconv.Itoa(n),
		orderID,
		strconv.Itoa(line.ProductID),
		line.ProductName,
		strconv.Itoa(line.CategoryID),
		strconv.Itoa(line.Quantity),
		strconv.Itoa(line.UnitPrice),
		strconv.Itoa(line.LineTotal),
	}
}

func parseOrder(row []string) (domain.Order, bool) {
	o := domain.Order{
		ID:            cell(row, 0),
		ClientID:      cellInt(row, 2),
		ClientName:    cell(row, 3),
		LineItemCount: cellInt(row, 4),
		Total:         cellInt(row, 5),
		Status:        domain.OrderStatus(cell(row, 6)),
	}
	if o.ID == "" {
		return domain.Order{}, false
	}
	if ts, err := parseTimestamp(cell(row, 1)); err == nil {
		o.Timestamp = ts
	}
	return o, true
}

func parseOrderLine(row []string) (string, domain.LineItem, bool) {
	orderID := cell(row, 1)
	line := domain.LineItem{
		ProductID:   cellInt(row, 2),
		ProductName: cell(row, 3),
		CategoryID:  cellInt(row, 4),
		Quantity:    cellInt(row, 5),
		UnitPrice:   cellInt(row, 6),
		LineTotal:   cellInt(row, 7),
	}
	if orderID == "" || line.ProductID <= 0 {
		return "", domain.LineItem{}, false
	}
	return orderID, line, true
}
