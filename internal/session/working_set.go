package session

import (
	"strings"
	"sync"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/JAChelton/ai-inventory-tracker/internal/usecase"
	"github.com/google/uuid"
)

// Entry is one line of a session's inventory.
type Entry struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	WeightKg   float64           `json:"weight"`
	Dimensions domain.Dimensions `json:"dimensions"`
	Category   domain.Category   `json:"category"`
	Quantity   int               `json:"quantity"`
	Confidence float64           `json:"confidence,omitempty"`
	Origin     domain.Origin     `json:"origin"`
	Producer   domain.Producer   `json:"producer,omitempty"`

	// CatalogID is zero for resolved entries.
	CatalogID int `json:"catalogId,omitempty"`
	// OriginalText is the candidate phrase a resolved entry came from.
	OriginalText string `json:"originalText,omitempty"`
}

// Totals summarises a working set.
type Totals struct {
	Items    int     `json:"items"`
	WeightKg float64 `json:"weight"`
}

// WorkingSet is the ordered inventory built up by a session.
type WorkingSet struct {
	mu      sync.RWMutex
	entries []Entry
	newID   func() string
}

// NewWorkingSet creates an empty working set.
func NewWorkingSet() *WorkingSet {
	return &WorkingSet{newID: uuid.NewString}
}

// AddCatalog adds a catalog match. It returns false when the catalog item is already present.
func (w *WorkingSet) AddCatalog(item domain.CatalogItem, quantity int) (Entry, bool) {
	if quantity < 1 {
		quantity = 1
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, e := range w.entries {
		if e.CatalogID == item.ID {
			return Entry{}, false
		}
	}

	entry := Entry{
		ID:         w.newID(),
		Name:       item.Name,
		WeightKg:   item.WeightKg,
		Category:   item.Category,
		Quantity:   quantity,
		Confidence: 1,
		Origin:     domain.OriginCatalog,
		CatalogID:  item.ID,
	}
	w.entries = append(w.entries, entry)
	return entry, true
}

// AddResolved adds a resolved record for originalText. It returns false when an entry for the
// same normalized text is already present.
func (w *WorkingSet) AddResolved(originalText string, record domain.ItemRecord) (Entry, bool) {
	key := usecase.NormalizeKey(originalText)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.hasOriginalLocked(key) {
		return Entry{}, false
	}

	entry := Entry{
		ID:           w.newID(),
		Name:         record.Name,
		WeightKg:     record.WeightKg,
		Dimensions:   record.Dimensions,
		Category:     record.Category,
		Quantity:     1,
		Confidence:   record.Confidence,
		Origin:       domain.OriginAIGenerated,
		Producer:     record.Producer,
		OriginalText: strings.TrimSpace(originalText),
	}
	w.entries = append(w.entries, entry)
	return entry, true
}

// HasOriginal reports whether a resolved entry exists for the normalized text.
func (w *WorkingSet) HasOriginal(text string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.hasOriginalLocked(usecase.NormalizeKey(text))
}

func (w *WorkingSet) hasOriginalLocked(key string) bool {
	for _, e := range w.entries {
		if e.CatalogID == 0 && usecase.NormalizeKey(e.OriginalText) == key {
			return true
		}
	}
	return false
}

// Names returns the display name of every entry, in insertion order.
func (w *WorkingSet) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	names := make([]string, 0, len(w.entries))
	for _, e := range w.entries {
		names = append(names, e.Name)
	}
	return names
}

// Entries returns a copy of the entries in insertion order.
func (w *WorkingSet) Entries() []Entry {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Remove deletes the entry with id. It reports whether one was removed.
func (w *WorkingSet) Remove(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, e := range w.entries {
		if e.ID == id {
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
			return true
		}
	}
	return false
}

// AdjustQuantity changes an entry's quantity by delta. Quantities never go below zero, and an
// entry that reaches zero is removed.
func (w *WorkingSet) AdjustQuantity(id string, delta int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.entries {
		if w.entries[i].ID != id {
			continue
		}
		w.entries[i].Quantity = max(0, w.entries[i].Quantity+delta)
		if w.entries[i].Quantity == 0 {
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
		}
		return true
	}
	return false
}

// Totals returns the item count and total weight, both weighted by quantity.
func (w *WorkingSet) Totals() Totals {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var t Totals
	for _, e := range w.entries {
		t.Items += e.Quantity
		t.WeightKg += e.WeightKg * float64(e.Quantity)
	}
	return t
}

// Len returns the number of entries.
func (w *WorkingSet) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entries)
}
