package client

import (
	"slices"
	"sync"

	"github.com/Madhu0614/Ai-task-hub-madhu/pkg/types"
)

// Apply merges one mutation event into an element collection and returns the
// result. It is the single merge path: the optimistic local apply and the
// inbound remote apply both go through here, so there is no branching logic
// anywhere else.
//
// Semantics are last-write-wins at element granularity:
//   - create: append if the id is not already present (idempotent create)
//   - update: replace the element wholesale; an update for an unknown id
//     inserts it, since every event carries the complete snapshot
//   - delete: remove by id; deleting an absent id is a no-op
//
// The input slice is not mutated.
func Apply(elements []types.ElementSnapshot, ev types.MutationEvent) []types.ElementSnapshot {
	idx := slices.IndexFunc(elements, func(e types.ElementSnapshot) bool {
		return e.ID == ev.Element.ID
	})

	switch ev.Action {
	case types.ActionCreate:
		if idx >= 0 {
			return elements
		}
		out := make([]types.ElementSnapshot, len(elements), len(elements)+1)
		copy(out, elements)
		return append(out, ev.Element)

	case types.ActionUpdate:
		if idx < 0 {
			out := make([]types.ElementSnapshot, len(elements), len(elements)+1)
			copy(out, elements)
			return append(out, ev.Element)
		}
		out := make([]types.ElementSnapshot, len(elements))
		copy(out, elements)
		out[idx] = ev.Element
		return out

	case types.ActionDelete:
		if idx < 0 {
			return elements
		}
		out := make([]types.ElementSnapshot, 0, len(elements)-1)
		out = append(out, elements[:idx]...)
		out = append(out, elements[idx+1:]...)
		return out
	}
	return elements
}

// Document holds the client's local element collection. The socket read
// goroutine and user-input goroutines both touch it, hence the lock.
type Document struct {
	mu       sync.RWMutex
	elements []types.ElementSnapshot
}

func NewDocument(initial []types.ElementSnapshot) *Document {
	return &Document{elements: slices.Clone(initial)}
}

func (d *Document) Apply(ev types.MutationEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements = Apply(d.elements, ev)
}

// Elements returns a copy of the current collection.
func (d *Document) Elements() []types.ElementSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.elements)
}

func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.elements)
}
