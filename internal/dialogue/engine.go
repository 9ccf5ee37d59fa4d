// Package dialogue implements the conversational order-taking engine:
// a per-user finite state machine that walks a user through client
// selection → category → product → quantity → cart review → checkout.
//
// The engine is transport-agnostic. Both the web chat endpoint and the
// Telegram webhook feed it the same Utterance and deliver the same Reply;
// the catalog, order sink and session store are injected ports.
package dialogue

import (
	"context"
	"strconv"
	"time"

	"github.com/distrisur/pedidos-go/internal/domain"
	"github.com/distrisur/pedidos-go/internal/infra/observability"
	"github.com/distrisur/pedidos-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("dialogue")

// Options are the dialogue knobs the three original bot variants
// disagreed on, surfaced as explicit configuration.
type Options struct {
	// QuantityMax is the inclusive upper bound for a line quantity.
	QuantityMax int
	// RetainClientAfterOrder keeps the bound client when a new order
	// starts after checkout.
	RetainClientAfterOrder bool
	// ZeroQuantityRemovesLine lets a quantity of 0 drop an existing cart
	// line for the selected product instead of being rejected.
	ZeroQuantityRemovesLine bool
	// MaxSearchResults caps how many matches are shown as choices.
	MaxSearchResults int
	// MinSearchTermLen is the minimum search term length; shorter terms
	// are rejected before the catalog is queried.
	MinSearchTermLen int
}

func (o Options) withDefaults() Options {
	if o.QuantityMax <= 0 {
		o.QuantityMax = 50
	}
	if o.MaxSearchResults <= 0 {
		o.MaxSearchResults = 10
	}
	if o.MinSearchTermLen <= 0 {
		o.MinSearchTermLen = 2
	}
	return o
}

// Engine drives one dialogue step per incoming utterance.
type Engine struct {
	catalog  port.CatalogStore
	orders   port.OrderSink
	sessions port.SessionStore
	opts     Options
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewEngine creates the engine with all collaborators injected.
func NewEngine(
	catalog port.CatalogStore,
	orders port.OrderSink,
	sessions port.SessionStore,
	opts Options,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		catalog:  catalog,
		orders:   orders,
		sessions: sessions,
		opts:     opts.withDefaults(),
		metrics:  metrics,
		logger:   logger,
	}
}

// Process interprets one utterance against the user's session and returns
// the outgoing prompt. It is total: invalid input, upstream failures and
// even panics all turn into a reply, never into an error crossing this
// boundary. Processing for one user is serialized on the session lock.
func (e *Engine) Process(ctx context.Context, userID string, in domain.Utterance) (reply *domain.Reply) {
	ctx, span := tracer.Start(ctx, "Engine.Process")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		e.metrics.RecordRequestDuration("dialogue", time.Since(start))
	}()

	sess := e.sessions.GetOrCreate(userID)
	sess.Lock()
	defer sess.Unlock()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic while processing utterance",
				zap.String("user_id", userID),
				zap.String("state", string(sess.State)),
				zap.Any("panic", r),
			)
			reply = domain.NewReply(msgUnavailable, topMenu()...)
		}
	}()

	e.metrics.IncrMessage(string(sess.State))
	e.logger.Debug("utterance received",
		zap.String("user_id", userID),
		zap.String("state", string(sess.State)),
		zap.Bool("is_choice", in.IsChoice()),
	)

	if r := e.handleGlobal(ctx, sess, in); r != nil {
		return r
	}

	switch sess.State {
	case domain.StateIdle:
		return e.handleIdle(ctx, sess, in)
	case domain.StateAwaitClientSelect, domain.StateAwaitClientSearch:
		return e.handleClientSelection(ctx, sess, in)
	case domain.StateAwaitNewClient:
		return e.handleNewClientName(ctx, sess, in)
	case domain.StateAwaitCategory:
		return e.handleCategorySelection(ctx, sess, in)
	case domain.StateAwaitProduct, domain.StateAwaitProductQuery:
		return e.handleProductSelection(ctx, sess, in)
	case domain.StateAwaitQuantity:
		return e.handleQuantity(ctx, sess, in)
	case domain.StateReviewingCart:
		return e.handleReviewingCart(ctx, sess, in)
	case domain.StateFinalized:
		return e.handleFinalized(ctx, sess, in)
	default:
		// Unknown state can only come from a bad deserialization of a
		// future persistent session store; recover to idle.
		e.logger.Warn("session in unknown state, resetting",
			zap.String("user_id", userID),
			zap.String("state", string(sess.State)),
		)
		sess.State = domain.StateIdle
		return e.fallback(sess)
	}
}

// handleGlobal intercepts the commands valid in any state. Returns nil
// when the utterance is not a global command.
func (e *Engine) handleGlobal(ctx context.Context, sess *domain.Session, in domain.Utterance) *domain.Reply {
	switch {
	case in.Token == actionRestart || matchesWord(in.Text, restartWords):
		// Restart wipes everything, cart included.
		sess.ResetOrder(false)
		return domain.NewReply(joinNonEmpty(msgRestarted, msgWelcome), topMenu()...)

	case in.Token == actionCancel || matchesWord(in.Text, cancelWords):
		// Cancel only drops the in-flight selection; cart and client stay.
		sess.ClearSelection()
		sess.State = domain.StateIdle
		return domain.NewReply(msgCancelled, topMenu()...)

	case in.Token == actionHelp:
		return e.fallback(sess)
	}
	return nil
}

// fallback is the help prompt for unrecognized input; the state is left
// unchanged.
func (e *Engine) fallback(sess *domain.Session) *domain.Reply {
	return domain.NewReply(msgFallback, topMenu()...)
}

// unavailable is the user-visible face of an upstream failure. The error
// is logged for the operator; the session state does not move.
func (e *Engine) unavailable(sess *domain.Session, op string, err error) *domain.Reply {
	e.logger.Error("upstream failure surfaced to user",
		zap.String("user_id", sess.UserID),
		zap.String("state", string(sess.State)),
		zap.String("operation", op),
		zap.Error(err),
	)
	e.metrics.IncrExternalError(op)
	return domain.NewReply(msgUnavailable, topMenu()...)
}

// startOrder enters the order flow from idle or after checkout. With a
// retained client it offers continuing with it; otherwise it asks for one.
func (e *Engine) startOrder(ctx context.Context, sess *domain.Session) *domain.Reply {
	if sess.SelectedClient != nil {
		sess.State = domain.StateAwaitClientSelect
		return domain.NewReply(
			joinNonEmpty(msgWelcome, "¿Seguimos con el mismo cliente?"),
			domain.Choice{
				Label: "✔ " + sess.SelectedClient.Name,
				Token: tokenClientPrefix + strconv.Itoa(sess.SelectedClient.ID),
			},
			domain.Choice{Label: "🔄 Cambiar cliente", Token: actionChangeClient},
		)
	}
	sess.State = domain.StateAwaitClientSelect
	return domain.NewReply(joinNonEmpty(msgWelcome, msgAskClient), clientSearchMenu()...)
}
