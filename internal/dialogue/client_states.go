package dialogue

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/distrisur/pedidos-go/internal/domain"

	"go.uber.org/zap"
)

// handleIdle processes utterances while no order flow is active.
func (e *Engine) handleIdle(ctx context.Context, sess *domain.Session, in domain.Utterance) *domain.Reply {
	switch {
	case in.Token == actionStart || matchesWord(in.Text, startWords):
		return e.startOrder(ctx, sess)

	case in.Token == actionViewCart || matchesWord(in.Text, viewCartWords):
		if len(sess.Cart) == 0 {
			return domain.NewReply(msgCartEmpty, topMenu()...)
		}
		sess.State = domain.StateReviewingCart
		return domain.NewReply(renderCart(sess), cartMenu()...)

	case in.Token == actionAddMore || matchesWord(in.Text, addMoreWords):
		// Reached from the post-new-client prompt: client already bound.
		if sess.SelectedClient != nil {
			return e.promptCategories(ctx, sess)
		}
		return e.startOrder(ctx, sess)

	case in.Token == actionChangeClient:
		sess.SelectedClient = nil
		sess.State = domain.StateAwaitClientSelect
		return domain.NewReply(msgAskClient, clientSearchMenu()...)
	}
	return e.fallback(sess)
}

// handleClientSelection covers both the selection and the explicit search
// states: free text is always a search term, choice tokens bind directly.
func (e *Engine) handleClientSelection(ctx context.Context, sess *domain.Session, in domain.Utterance) *domain.Reply {
	if in.IsChoice() {
		if id, ok := parseIDToken(in.Token, tokenClientPrefix); ok {
			return e.bindClient(ctx, sess, id)
		}
		switch in.Token {
		case actionListClients:
			return e.listClients(ctx, sess)
		case actionSearchClient:
			sess.State = domain.StateAwaitClientSearch
			return domain.NewReply(msgAskClient)
		case actionNewClient:
			sess.State = domain.StateAwaitNewClient
			return domain.NewReply(msgAskNewClientName)
		case actionChangeClient:
			sess.SelectedClient = nil
			sess.State = domain.StateAwaitClientSelect
			return domain.NewReply(msgAskClient, clientSearchMenu()...)
		}
		return e.fallback(sess)
	}

	term := strings.TrimSpace(in.Text)
	if len([]rune(term)) < e.opts.MinSearchTermLen {
		return domain.NewReply(msgTermTooShort, clientSearchMenu()...)
	}

	matches, err := e.catalog.SearchClients(ctx, term)
	if err != nil {
		return e.unavailable(sess, "catalog.search_clients", err)
	}

	switch len(matches) {
	case 0:
		return domain.NewReply(
			"No encontré clientes con \""+term+"\". ¿Qué querés hacer?",
			noClientMatchMenu()...,
		)
	case 1:
		return e.bindClient(ctx, sess, matches[0].ID)
	default:
		choices, note := clientChoices(matches, e.opts.MaxSearchResults)
		return domain.NewReply(joinNonEmpty("Encontré varios clientes, elegí uno:", note), choices...)
	}
}

// bindClient resolves the client id, binds it to the session and moves on
// to category selection.
func (e *Engine) bindClient(ctx context.Context, sess *domain.Session, id int) *domain.Reply {
	client, err := e.catalog.GetClient(ctx, id)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return domain.NewReply(
				"Ese cliente ya no está en el catálogo. Busquemos de nuevo.",
				noClientMatchMenu()...,
			)
		}
		return e.unavailable(sess, "catalog.get_client", err)
	}

	sess.SelectedClient = client
	e.logger.Info("client bound to session",
		zap.String("user_id", sess.UserID),
		zap.Int("client_id", client.ID),
	)
	return e.promptCategories(ctx, sess)
}

// handleNewClientName creates a client from the typed name and leaves the
// session idle with continue/change choices.
func (e *Engine) handleNewClientName(ctx context.Context, sess *domain.Session, in domain.Utterance) *domain.Reply {
	name := strings.TrimSpace(in.Text)
	if len([]rune(name)) < 2 {
		return domain.NewReply("El nombre es muy corto. Escribí al menos 2 letras.")
	}

	client, err := e.catalog.AddClient(ctx, name)
	if err != nil {
		return e.unavailable(sess, "catalog.add_client", err)
	}

	sess.SelectedClient = client
	sess.State = domain.StateIdle
	e.logger.Info("client created from dialogue",
		zap.String("user_id", sess.UserID),
		zap.Int("client_id", client.ID),
		zap.String("client_name", client.Name),
	)
	return domain.NewReply(
		"✅ Cliente \""+client.Name+"\" creado (#"+strconv.Itoa(client.ID)+").",
		domain.Choice{Label: "🛒 Elegir productos", Token: actionAddMore},
		domain.Choice{Label: "🔄 Cambiar cliente", Token: actionChangeClient},
	)
}

// listClients shows the first page of the client portfolio as choices.
func (e *Engine) listClients(ctx context.Context, sess *domain.Session) *domain.Reply {
	clients, err := e.catalog.ListClients(ctx)
	if err != nil {
		return e.unavailable(sess, "catalog.list_clients", err)
	}
	if len(clients) == 0 {
		return domain.NewReply(
			"Todavía no hay clientes cargados. Podés crear el primero.",
			domain.Choice{Label: "➕ Nuevo cliente", Token: actionNewClient},
		)
	}
	choices, note := clientChoices(clients, e.opts.MaxSearchResults)
	return domain.NewReply(joinNonEmpty("Elegí un cliente:", note), choices...)
}
