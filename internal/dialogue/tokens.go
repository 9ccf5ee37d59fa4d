package dialogue

import (
	"strconv"
	"strings"
)

// Choice tokens. A token travels to the user inside a choice affordance
// and comes back verbatim when tapped; id-carrying tokens encode the
// record they point at (e.g. "client_12").
const (
	tokenClientPrefix   = "client_"
	tokenCategoryPrefix = "category_"
	tokenProductPrefix  = "product_"

	actionStart         = "action_start"
	actionCancel        = "action_cancel"
	actionRestart       = "action_restart"
	actionHelp          = "action_help"
	actionListClients   = "action_list_clients"
	actionSearchClient  = "action_search_client"
	actionNewClient     = "action_new_client"
	actionChangeClient  = "action_change_client"
	actionSearchProduct = "action_search_product"
	actionAddMore       = "action_add_more"
	actionViewCart      = "action_view_cart"
	actionClearCart     = "action_clear_cart"
	actionCheckout      = "action_checkout"
	actionNewOrder      = "action_new_order"
)

// parseIDToken extracts the numeric id from tokens like "product_42".
func parseIDToken(token, prefix string) (int, bool) {
	if !strings.HasPrefix(token, prefix) {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(token, prefix))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Free-text command synonyms. The web chat has no buttons on first
// contact, so the engine accepts the written forms too.
var (
	startWords    = []string{"/start", "hola", "buenas", "menu", "menú", "empezar", "nuevo pedido", "pedido"}
	cancelWords   = []string{"cancelar", "/cancelar", "volver"}
	restartWords  = []string{"reiniciar", "/reiniciar", "/reset"}
	viewCartWords = []string{"ver pedido", "ver carrito", "carrito", "pedido actual"}
	checkoutWords = []string{"finalizar", "confirmar", "cerrar pedido"}
	clearWords    = []string{"vaciar", "vaciar carrito", "borrar pedido"}
	newOrderWords = []string{"nuevo pedido", "otro pedido"}
	addMoreWords  = []string{"agregar", "agregar más", "agregar mas", "seguir"}
)

func matchesWord(text string, words []string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, w := range words {
		if t == w {
			return true
		}
	}
	return false
}
