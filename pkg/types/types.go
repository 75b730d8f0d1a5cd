package types

import (
	"encoding/json"
	"time"
)

// User identifies a collaborator as the rest of the system sees them.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// CursorSample is the last known cursor position for one user on one board.
// There is at most one live sample per (board, user); new samples overwrite
// in place, they are never appended.
type CursorSample struct {
	User       User      `json:"user"`
	BoardID    string    `json:"boardId"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	LastUpdate time.Time `json:"lastUpdate"`
}

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ElementSnapshot is the full, self-contained representation of one canvas
// object. It is always sent whole, never as a diff, so any receiver can
// apply it without prior state.
type ElementSnapshot struct {
	ID       string  `json:"id"`
	BoardID  string  `json:"boardId"`
	Kind     string  `json:"kind"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation,omitempty"`

	Style   json.RawMessage `json:"style,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// MutationEvent is a document-mutation broadcast. The server relays these
// verbatim and never stores them; the persistence bridge is the durable
// source of truth.
type MutationEvent struct {
	UserID  string          `json:"userId"`
	BoardID string          `json:"boardId"`
	Action  Action          `json:"action"`
	Element ElementSnapshot `json:"element"`
}
