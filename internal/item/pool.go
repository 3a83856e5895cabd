package item

import "slices"

// Pool is the in-memory set of all loaded items, keyed by ID.
// It is the single source of truth for item state between queue rebuilds.
type Pool struct {
	byID  map[ID]Item
	order []ID
}

// NewPool builds a pool from items. Later duplicates of an ID replace earlier ones.
func NewPool(items []Item) *Pool {
	p := &Pool{byID: make(map[ID]Item, len(items))}
	for _, it := range items {
		p.Put(it)
	}
	return p
}

// Len returns the number of items.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.order)
}

// Get returns the current version of an item.
func (p *Pool) Get(id ID) (Item, bool) {
	if p == nil {
		return Item{}, false
	}
	it, ok := p.byID[id]
	return it, ok
}

// Has reports whether id is in the pool.
func (p *Pool) Has(id ID) bool {
	_, ok := p.Get(id)
	return ok
}

// Put inserts or replaces an item.
func (p *Pool) Put(it Item) {
	if _, exists := p.byID[it.ID]; !exists {
		p.order = append(p.order, it.ID)
	}
	p.byID[it.ID] = it
}

// Update applies patch to the item with id. Returns false if absent.
func (p *Pool) Update(id ID, patch Patch) (Item, bool) {
	it, ok := p.byID[id]
	if !ok {
		return Item{}, false
	}
	it = patch.Apply(it)
	p.byID[id] = it
	return it, true
}

// Remove deletes an item. Returns false if absent.
func (p *Pool) Remove(id ID) bool {
	if _, ok := p.byID[id]; !ok {
		return false
	}
	delete(p.byID, id)
	p.order = slices.DeleteFunc(p.order, func(x ID) bool { return x == id })
	return true
}

// Items returns a snapshot of all items in load order.
func (p *Pool) Items() []Item {
	if p == nil {
		return nil
	}
	out := make([]Item, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.byID[id])
	}
	return out
}

// Filter returns a snapshot of the items matching keep.
func (p *Pool) Filter(keep func(Item) bool) []Item {
	if p == nil {
		return nil
	}
	var out []Item
	for _, id := range p.order {
		if it := p.byID[id]; keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Count returns how many items match.
func (p *Pool) Count(match func(Item) bool) int {
	if p == nil {
		return 0
	}
	n := 0
	for _, it := range p.byID {
		if match(it) {
			n++
		}
	}
	return n
}

// MinMastery returns the lowest MasteryCount in the pool, or 0 when empty.
func (p *Pool) MinMastery() int {
	if p.Len() == 0 {
		return 0
	}
	minimum := -1
	for _, it := range p.byID {
		if minimum < 0 || it.MasteryCount < minimum {
			minimum = it.MasteryCount
		}
	}
	return minimum
}
