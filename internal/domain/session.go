package domain

import "sync"

// State identifies where a user is inside the order-taking dialogue.
type State string

const (
	StateIdle              State = "idle"
	StateAwaitClientSelect State = "await_client_select"
	StateAwaitClientSearch State = "await_client_search"
	StateAwaitNewClient    State = "await_new_client"
	StateAwaitCategory     State = "await_category"
	StateAwaitProduct      State = "await_product"
	StateAwaitProductQuery State = "await_product_query"
	StateAwaitQuantity     State = "await_quantity"
	StateReviewingCart     State = "reviewing_cart"
	StateFinalized         State = "finalized"
)

// Session is the per-user in-progress order. One live session per user;
// created lazily on first utterance and kept for the process lifetime.
type Session struct {
	mu sync.Mutex

	UserID           string
	State            State
	Cart             []LineItem
	SelectedClient   *Client
	SelectedCategory *Category
	SelectedProduct  *Product

	// PendingUnitPrice is the price resolved when SelectedProduct was
	// bound; it becomes the line's frozen unit price once quantity is in.
	PendingUnitPrice int

	// LastOrderID is the id of the most recently finalized order, shown
	// on the confirmation prompt.
	LastOrderID string
}

// NewSession creates an idle session with an empty cart.
func NewSession(userID string) *Session {
	return &Session{
		UserID: userID,
		State:  StateIdle,
		Cart:   []LineItem{},
	}
}

// Lock serializes processing for this user. Utterances from different
// users lock different sessions and never contend.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-user lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// ClearSelection drops the in-flight product/category picks, leaving the
// cart and client untouched.
func (s *Session) ClearSelection() {
	s.SelectedCategory = nil
	s.SelectedProduct = nil
	s.PendingUnitPrice = 0
}

// ResetOrder empties the cart and returns the session to idle. The bound
// client is kept or dropped by the caller depending on configuration.
func (s *Session) ResetOrder(keepClient bool) {
	s.Cart = []LineItem{}
	s.ClearSelection()
	if !keepClient {
		s.SelectedClient = nil
	}
	s.State = StateIdle
}
