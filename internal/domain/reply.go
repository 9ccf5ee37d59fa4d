package domain

// Utterance is one inbound message from the user. Exactly one of Text or
// Token is set: free text typed by the user, or the opaque token of a
// choice the user tapped (e.g. "client_12", "action_checkout").
type Utterance struct {
	Text  string `json:"text,omitempty"`
	Token string `json:"token,omitempty"`
}

// IsChoice reports whether the utterance came from a choice affordance.
func (u Utterance) IsChoice() bool { return u.Token != "" }

// Choice is one tappable option attached to a reply. Transports render
// choices as inline buttons; the Token comes back verbatim when tapped.
type Choice struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// Reply is the engine's outgoing prompt. An empty Choices slice means
// free-text input is expected next.
type Reply struct {
	Text    string   `json:"text"`
	Choices []Choice `json:"choices,omitempty"`
}

// NewReply builds a reply with optional choices.
func NewReply(text string, choices ...Choice) *Reply {
	return &Reply{Text: text, Choices: choices}
}
