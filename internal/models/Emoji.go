package models

// Emoji is a reaction emoji as reported by the platform. Unicode emoji only
// carry a Name; custom guild emoji also carry a numeric ID.
type Emoji struct {
	Name     string `json:"name"`
	ID       string `json:"id,omitempty"`
	Animated bool   `json:"animated,omitempty"`
}

// Key returns the canonical ledger key for the emoji. Unicode emoji are used
// verbatim, custom emoji render as <:name:id>, and a custom emoji without an
// ID falls back to its name.
func (e Emoji) Key() string {
	if e.ID == "" {
		return e.Name
	}
	return "<:" + e.Name + ":" + e.ID + ">"
}

// APIName is the form the REST API expects when addressing a reaction.
func (e Emoji) APIName() string {
	if e.ID == "" {
		return e.Name
	}
	return e.Name + ":" + e.ID
}
