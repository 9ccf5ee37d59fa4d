package dialogue

import (
	"fmt"
	"strings"

	"github.com/distrisur/pedidos-go/internal/domain"
)

// User-facing texts. The distributor's clients chat in Spanish, so every
// prompt is Spanish; logs and code stay in English.

const (
	msgWelcome = "¡Hola! Soy el asistente de pedidos de la distribuidora. 🛒"

	msgAskClient = "¿Para qué cliente es el pedido? Escribí parte del nombre (mínimo 2 letras)."

	msgTermTooShort = "Escribí al menos 2 letras para buscar."

	msgAskNewClientName = "¿Cómo se llama el nuevo cliente? Escribí el nombre completo."

	msgAskProductSearch = "Escribí parte del nombre del producto (mínimo 2 letras)."

	msgCancelled = "Listo, cancelé la selección actual. ¿Qué querés hacer?"

	msgRestarted = "Empezamos de cero. El pedido anterior quedó descartado."

	msgCartEmpty = "Tu pedido está vacío por ahora."

	msgCartCleared = "Vacié el pedido. ¿Arrancamos de nuevo?"

	msgUnavailable = "⚠️ El servicio no está disponible en este momento. Probá de nuevo en unos minutos."

	msgFallback = "No te entendí 🤔. Podés tocar una opción del menú o escribir \"cancelar\" para volver al inicio."
)

// topMenu is the root set of choices offered in idle and after fallback.
func topMenu() []domain.Choice {
	return []domain.Choice{
		{Label: "🛒 Nuevo pedido", Token: actionStart},
		{Label: "📋 Ver pedido", Token: actionViewCart},
		{Label: "❓ Ayuda", Token: actionHelp},
	}
}

func clientSearchMenu() []domain.Choice {
	return []domain.Choice{
		{Label: "📄 Listar clientes", Token: actionListClients},
		{Label: "➕ Nuevo cliente", Token: actionNewClient},
	}
}

func noClientMatchMenu() []domain.Choice {
	return []domain.Choice{
		{Label: "🔍 Buscar de nuevo", Token: actionSearchClient},
		{Label: "📄 Listar clientes", Token: actionListClients},
		{Label: "➕ Nuevo cliente", Token: actionNewClient},
	}
}

func afterItemMenu() []domain.Choice {
	return []domain.Choice{
		{Label: "➕ Agregar más", Token: actionAddMore},
		{Label: "📋 Ver pedido", Token: actionViewCart},
		{Label: "✅ Finalizar", Token: actionCheckout},
	}
}

func cartMenu() []domain.Choice {
	return []domain.Choice{
		{Label: "➕ Agregar más", Token: actionAddMore},
		{Label: "🗑 Vaciar pedido", Token: actionClearCart},
		{Label: "✅ Finalizar", Token: actionCheckout},
	}
}

// clientChoices renders up to max clients as tappable options, with a
// truncation note when the real match count exceeds max.
func clientChoices(clients []domain.Client, max int) ([]domain.Choice, string) {
	note := ""
	if len(clients) > max {
		note = fmt.Sprintf("Encontré %d clientes, te muestro los primeros %d.", len(clients), max)
		clients = clients[:max]
	}
	choices := make([]domain.Choice, 0, len(clients))
	for _, c := range clients {
		choices = append(choices, domain.Choice{
			Label: c.Name,
			Token: fmt.Sprintf("%s%d", tokenClientPrefix, c.ID),
		})
	}
	return choices, note
}

func categoryChoices(categories []domain.Category) []domain.Choice {
	choices := make([]domain.Choice, 0, len(categories))
	for _, c := range categories {
		choices = append(choices, domain.Choice{
			Label: c.Name,
			Token: fmt.Sprintf("%s%d", tokenCategoryPrefix, c.ID),
		})
	}
	return choices
}

func productChoices(products []domain.Product, max int) ([]domain.Choice, string) {
	note := ""
	if len(products) > max {
		note = fmt.Sprintf("Encontré %d productos, te muestro los primeros %d.", len(products), max)
		products = products[:max]
	}
	choices := make([]domain.Choice, 0, len(products))
	for _, p := range products {
		choices = append(choices, domain.Choice{
			Label: p.Name,
			Token: fmt.Sprintf("%s%d", tokenProductPrefix, p.ID),
		})
	}
	return choices, note
}

// renderCart formats the current cart as text. Pure rendering — it never
// mutates the session.
func renderCart(sess *domain.Session) string {
	if len(sess.Cart) == 0 {
		return msgCartEmpty
	}

	var b strings.Builder
	b.WriteString("📋 *Pedido actual*")
	if sess.SelectedClient != nil {
		fmt.Fprintf(&b, " — %s", sess.SelectedClient.Name)
	}
	b.WriteString("\n")
	for _, line := range sess.Cart {
		fmt.Fprintf(&b, "• %d× %s — $%d\n", line.Quantity, line.ProductName, line.LineTotal)
	}
	fmt.Fprintf(&b, "Total: $%d (%d productos)", domain.CartTotal(sess.Cart), len(sess.Cart))
	return b.String()
}

// joinNonEmpty glues prompt fragments with blank lines, skipping empties.
func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
