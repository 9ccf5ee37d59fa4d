package dialogue

import (
	"context"
	"fmt"
	"time"

	"github.com/distrisur/pedidos-go/internal/domain"

	"go.uber.org/zap"
)

// handleReviewingCart processes the cart review menu: add more, view,
// clear, or finalize into an order.
func (e *Engine) handleReviewingCart(ctx context.Context, sess *domain.Session, in domain.Utterance) *domain.Reply {
	switch {
	case in.Token == actionAddMore || matchesWord(in.Text, addMoreWords):
		return e.promptCategories(ctx, sess)

	case in.Token == actionViewCart || matchesWord(in.Text, viewCartWords):
		return domain.NewReply(renderCart(sess), cartMenu()...)

	case in.Token == actionClearCart || matchesWord(in.Text, clearWords):
		sess.Cart = []domain.LineItem{}
		sess.ClearSelection()
		sess.State = domain.StateIdle
		return domain.NewReply(msgCartCleared, topMenu()...)

	case in.Token == actionCheckout || matchesWord(in.Text, checkoutWords):
		return e.checkout(ctx, sess)
	}
	return e.fallback(sess)
}

// checkout snapshots the cart into an order and appends it to the sink.
// The guard is exact: an empty cart or a missing client rejects with the
// state unchanged and nothing appended.
func (e *Engine) checkout(ctx context.Context, sess *domain.Session) *domain.Reply {
	if len(sess.Cart) == 0 {
		return domain.NewReply(
			"El pedido está vacío, no hay nada que confirmar. Agregá productos primero.",
			domain.Choice{Label: "➕ Agregar productos", Token: actionAddMore},
		)
	}
	if sess.SelectedClient == nil {
		return domain.NewReply(
			"Falta saber para qué cliente es el pedido.",
			domain.Choice{Label: "👤 Elegir cliente", Token: actionChangeClient},
		)
	}

	orderID, err := e.orders.NextOrderID(ctx)
	if err != nil {
		e.metrics.IncrExternalError("orders.next_id")
		e.logger.Error("order id allocation failed",
			zap.String("user_id", sess.UserID),
			zap.Error(err),
		)
		return domain.NewReply(
			"No pude guardar el pedido 😕. Tu carrito sigue intacto, probá finalizar de nuevo.",
			domain.Choice{Label: "✅ Finalizar", Token: actionCheckout},
		)
	}

	lines := make([]domain.LineItem, len(sess.Cart))
	copy(lines, sess.Cart)

	order := &domain.Order{
		ID:            orderID,
		Timestamp:     time.Now(),
		ClientID:      sess.SelectedClient.ID,
		ClientName:    sess.SelectedClient.Name,
		LineItemCount: len(lines),
		Total:         domain.CartTotal(lines),
		Status:        domain.OrderStatusPending,
	}

	if err := e.orders.Append(ctx, order, lines); err != nil {
		// The cart stays intact; the sink retried internally already, so
		// this is a persistent failure worth the operator's attention.
		e.metrics.IncrExternalError("orders.append")
		e.logger.Error("order append failed",
			zap.String("user_id", sess.UserID),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return domain.NewReply(
			"No pude guardar el pedido 😕. Tu carrito sigue intacto, probá finalizar de nuevo.",
			domain.Choice{Label: "✅ Finalizar", Token: actionCheckout},
		)
	}

	e.metrics.IncrOrder(order.Total)
	e.logger.Info("order finalized",
		zap.String("user_id", sess.UserID),
		zap.String("order_id", order.ID),
		zap.Int("client_id", order.ClientID),
		zap.Int("total", order.Total),
		zap.Int("line_items", order.LineItemCount),
	)

	clientName := sess.SelectedClient.Name
	sess.Cart = []domain.LineItem{}
	sess.ClearSelection()
	sess.LastOrderID = order.ID
	if !e.opts.RetainClientAfterOrder {
		sess.SelectedClient = nil
	}
	sess.State = domain.StateFinalized

	return domain.NewReply(fmt.Sprintf(
		"✅ ¡Pedido *%s* confirmado para %s!\nTotal: $%d (%d productos).",
		order.ID, clientName, order.Total, order.LineItemCount,
	), domain.Choice{Label: "🛒 Nuevo pedido", Token: actionNewOrder})
}

// handleFinalized starts the next order. The finalized state is terminal
// for the order, not for the session.
func (e *Engine) handleFinalized(ctx context.Context, sess *domain.Session, in domain.Utterance) *domain.Reply {
	switch {
	case in.Token == actionNewOrder || in.Token == actionStart ||
		matchesWord(in.Text, newOrderWords) || matchesWord(in.Text, startWords):
		if sess.SelectedClient != nil {
			// Client retained from the previous order; jump straight to
			// the catalog.
			return e.promptCategories(ctx, sess)
		}
		sess.State = domain.StateAwaitClientSelect
		return domain.NewReply(msgAskClient, clientSearchMenu()...)

	case in.Token == actionViewCart || matchesWord(in.Text, viewCartWords):
		return domain.NewReply(msgCartEmpty,
			domain.Choice{Label: "🛒 Nuevo pedido", Token: actionNewOrder})
	}
	return e.fallback(sess)
}
