package domain_test

import (
	"testing"

	"github.com/distrisur/pedidos-go/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestNewLineItem(t *testing.T) {
	p := &domain.Product{ID: 7, CategoryID: 2, Name: "Leche"}

	line := domain.NewLineItem(p, 3, 1200)

	assert.Equal(t, 7, line.ProductID)
	assert.Equal(t, "Leche", line.ProductName)
	assert.Equal(t, 2, line.CategoryID)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, 1200, line.UnitPrice)
	assert.Equal(t, 3600, line.LineTotal)
}

func TestCartTotal(t *testing.T) {
	assert.Equal(t, 0, domain.CartTotal(nil))
	assert.Equal(t, 0, domain.CartTotal([]domain.LineItem{}))

	cart := []domain.LineItem{
		{LineTotal: 2550},
		{LineTotal: 1200},
	}
	assert.Equal(t, 3750, domain.CartTotal(cart))
}

func TestSessionResetOrder(t *testing.T) {
	sess := domain.NewSession("u1")
	sess.State = domain.StateReviewingCart
	sess.Cart = []domain.LineItem{{ProductID: 1, LineTotal: 850}}
	sess.SelectedClient = &domain.Client{ID: 1, Name: "Almacén"}
	sess.SelectedCategory = &domain.Category{ID: 1}
	sess.SelectedProduct = &domain.Product{ID: 1}
	sess.PendingUnitPrice = 850

	sess.ResetOrder(true)

	assert.Equal(t, domain.StateIdle, sess.State)
	assert.Empty(t, sess.Cart)
	assert.Nil(t, sess.SelectedCategory)
	assert.Nil(t, sess.SelectedProduct)
	assert.Zero(t, sess.PendingUnitPrice)
	assert.NotNil(t, sess.SelectedClient, "keepClient must preserve the bound client")

	sess.ResetOrder(false)
	assert.Nil(t, sess.SelectedClient)
}
