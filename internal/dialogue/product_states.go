package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/distrisur/pedidos-go/internal/domain"

	"go.uber.org/zap"
)

// promptCategories lists the selectable categories and moves the session
// to category selection. Categories with unusable names never show up —
// the store filters them, this is just the prompt.
func (e *Engine) promptCategories(ctx context.Context, sess *domain.Session) *domain.Reply {
	categories, err := e.catalog.ListCategories(ctx)
	if err != nil {
		return e.unavailable(sess, "catalog.list_categories", err)
	}
	if len(categories) == 0 {
		sess.State = domain.StateIdle
		return domain.NewReply(
			"No hay categorías cargadas en el catálogo todavía.",
			topMenu()...,
		)
	}

	sess.State = domain.StateAwaitCategory
	text := "¿Qué querés pedir? Elegí una categoría o escribí el nombre de un producto."
	if sess.SelectedClient != nil {
		text = fmt.Sprintf("Pedido para *%s*. %s", sess.SelectedClient.Name, text)
	}
	return domain.NewReply(text, categoryChoices(categories)...)
}

// handleCategorySelection binds a category and lists its active products.
// Free text here is treated as an unscoped product search, which lets the
// user skip the category step entirely.
func (e *Engine) handleCategorySelection(ctx context.Context, sess *domain.Session, in domain.Utterance) *domain.Reply {
	if in.IsChoice() {
		id, ok := parseIDToken(in.Token, tokenCategoryPrefix)
		if !ok {
			return e.fallback(sess)
		}
		return e.bindCategory(ctx, sess, id)
	}
	return e.searchProducts(ctx, sess, in.Text)
}

func (e *Engine) bindCategory(ctx context.Context, sess *domain.Session, id int) *domain.Reply {
	category, err := e.catalog.GetCategory(ctx, id)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return e.promptCategories(ctx, sess)
		}
		return e.unavailable(sess, "catalog.get_category", err)
	}

	products, err := e.catalog.ListProducts(ctx, domain.ProductFilter{
		CategoryID: category.ID,
		ActiveOnly: true,
	})
	if err != nil {
		return e.unavailable(sess, "catalog.list_products", err)
	}

	// A category with zero active products keeps the session right here;
	// transitioning to product selection with nothing to pick would dead-end.
	if len(products) == 0 {
		categories, err := e.catalog.ListCategories(ctx)
		if err != nil {
			return e.unavailable(sess, "catalog.list_categories", err)
		}
		return domain.NewReply(
			fmt.Sprintf("No hay productos disponibles en *%s* por ahora. Elegí otra categoría:", category.Name),
			categoryChoices(categories)...,
		)
	}

	sess.SelectedCategory = category
	sess.State = domain.StateAwaitProduct
	choices, note := productChoices(products, e.opts.MaxSearchResults)
	return domain.NewReply(
		joinNonEmpty(
			fmt.Sprintf("Productos de *%s* — elegí uno o escribí para buscar:", category.Name),
			note,
		),
		choices...,
	)
}

// handleProductSelection covers product picking and the explicit product
// search state. A tapped product binds immediately; free text searches,
// scoped to the selected category when there is one.
func (e *Engine) handleProductSelection(ctx context.Context, sess *domain.Session, in domain.Utterance) *domain.Reply {
	if in.IsChoice() {
		if id, ok := parseIDToken(in.Token, tokenProductPrefix); ok {
			return e.bindProduct(ctx, sess, id)
		}
		if id, ok := parseIDToken(in.Token, tokenCategoryPrefix); ok {
			// Switching categories mid-selection is fine.
			return e.bindCategory(ctx, sess, id)
		}
		switch in.Token {
		case actionSearchProduct:
			sess.State = domain.StateAwaitProductQuery
			return domain.NewReply(msgAskProductSearch)
		case actionAddMore:
			return e.promptCategories(ctx, sess)
		}
		return e.fallback(sess)
	}
	return e.searchProducts(ctx, sess, in.Text)
}

// searchProducts runs the 0/1/many branching shared by the category and
// product states.
func (e *Engine) searchProducts(ctx context.Context, sess *domain.Session, text string) *domain.Reply {
	term := strings.TrimSpace(text)
	if len([]rune(term)) < e.opts.MinSearchTermLen {
		return domain.NewReply(msgTermTooShort)
	}

	categoryID := 0
	if sess.SelectedCategory != nil {
		categoryID = sess.SelectedCategory.ID
	}

	matches, err := e.catalog.SearchProducts(ctx, term, categoryID)
	if err != nil {
		return e.unavailable(sess, "catalog.search_products", err)
	}

	switch len(matches) {
	case 0:
		return domain.NewReply(
			"No encontré productos con \""+term+"\".",
			domain.Choice{Label: "🔍 Buscar de nuevo", Token: actionSearchProduct},
			domain.Choice{Label: "📂 Ver categorías", Token: actionAddMore},
		)
	case 1:
		return e.bindProduct(ctx, sess, matches[0].ID)
	default:
		choices, note := productChoices(matches, e.opts.MaxSearchResults)
		return domain.NewReply(joinNonEmpty("Encontré varios productos, elegí uno:", note), choices...)
	}
}

// bindProduct resolves the product, freezes its unit price for the bound
// client and asks for a quantity. Price resolution happens exactly here —
// catalog changes after this point never touch the pending line.
func (e *Engine) bindProduct(ctx context.Context, sess *domain.Session, id int) *domain.Reply {
	product, err := e.catalog.GetProduct(ctx, id)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return domain.NewReply(
				"Ese producto ya no está en el catálogo.",
				domain.Choice{Label: "📂 Ver categorías", Token: actionAddMore},
			)
		}
		return e.unavailable(sess, "catalog.get_product", err)
	}
	if !product.Active {
		return domain.NewReply(
			"\""+product.Name+"\" no está disponible en este momento.",
			domain.Choice{Label: "📂 Ver categorías", Token: actionAddMore},
		)
	}
	if sess.SelectedClient == nil {
		// Can't price without a client; send the user back one step.
		sess.State = domain.StateAwaitClientSelect
		return domain.NewReply(
			"Primero necesito saber para qué cliente es el pedido.\n\n"+msgAskClient,
			clientSearchMenu()...,
		)
	}

	unitPrice := e.catalog.PriceFor(product, sess.SelectedClient)
	sess.SelectedProduct = product
	sess.PendingUnitPrice = unitPrice
	sess.State = domain.StateAwaitQuantity

	e.logger.Debug("product bound, price frozen",
		zap.String("user_id", sess.UserID),
		zap.Int("product_id", product.ID),
		zap.Int("unit_price", unitPrice),
	)
	return domain.NewReply(fmt.Sprintf(
		"*%s* — $%d por unidad.\n¿Cuántas unidades? (1 a %d)",
		product.Name, unitPrice, e.opts.QuantityMax,
	))
}

// handleQuantity validates the typed quantity and appends the line.
func (e *Engine) handleQuantity(ctx context.Context, sess *domain.Session, in domain.Utterance) *domain.Reply {
	if sess.SelectedProduct == nil {
		// Selection was cleared underneath us (shouldn't happen); restart
		// the product step rather than crash.
		return e.promptCategories(ctx, sess)
	}

	reprompt := fmt.Sprintf("Escribí una cantidad entre 1 y %d para *%s*.",
		e.opts.QuantityMax, sess.SelectedProduct.Name)

	qty, err := strconv.Atoi(strings.TrimSpace(in.Text))
	if err != nil {
		return domain.NewReply("Eso no parece un número. " + reprompt)
	}

	if qty == 0 && e.opts.ZeroQuantityRemovesLine {
		if removed := removeLine(sess, sess.SelectedProduct.ID); removed {
			name := sess.SelectedProduct.Name
			sess.ClearSelection()
			sess.State = domain.StateReviewingCart
			return domain.NewReply(
				joinNonEmpty("Quité *"+name+"* del pedido.", renderCart(sess)),
				cartMenu()...,
			)
		}
		return domain.NewReply("Ese producto no está en el pedido. " + reprompt)
	}

	if qty < 1 || qty > e.opts.QuantityMax {
		return domain.NewReply(reprompt)
	}

	line := domain.NewLineItem(sess.SelectedProduct, qty, sess.PendingUnitPrice)
	sess.Cart = append(sess.Cart, line)
	sess.ClearSelection()
	sess.State = domain.StateReviewingCart

	return domain.NewReply(fmt.Sprintf(
		"Agregado: %d× %s — $%d.\nTotal parcial: $%d (%d productos).",
		line.Quantity, line.ProductName, line.LineTotal,
		domain.CartTotal(sess.Cart), len(sess.Cart),
	), afterItemMenu()...)
}

// removeLine drops the first cart line for productID, if any.
func removeLine(sess *domain.Session, productID int) bool {
	for i, line := range sess.Cart {
		if line.ProductID == productID {
			sess.Cart = append(sess.Cart[:i], sess.Cart[i+1:]...)
			return true
		}
	}
	return false
}
