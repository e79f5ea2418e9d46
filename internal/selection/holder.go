package selection

import (
	"sync"

	"github.com/agentic-research/structlink/internal/structure"
)

// Holder owns the forest of the currently loaded asset. Loading a new asset
// swaps in a freshly built forest; queries always see one complete forest.
type Holder struct {
	mu      sync.RWMutex
	current *structure.Forest
}

func NewHolder(initial *structure.Forest) *Holder {
	return &Holder{current: initial}
}

// Swap atomically replaces the current forest and returns the previous one.
// Forests are never patched in place.
func (h *Holder) Swap(f *structure.Forest) *structure.Forest {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.current
	h.current = f
	return old
}

// Current returns the forest of the loaded asset, nil before the first load.
func (h *Holder) Current() *structure.Forest {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}
