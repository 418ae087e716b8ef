package sfx

// Poolable is an item whose lifetime is tracked by an active flag.
type Poolable interface {
	Active() bool
	SetActive(bool)
}

// Pool is a fixed set of items created up front. An item is returned to
// the pool by deactivating it; the pool never grows.
type Pool[T Poolable] struct {
	items []T
}

// NewPool creates size inactive items with newItem.
func NewPool[T Poolable](size int, newItem func(i int) T) *Pool[T] {
	items := make([]T, size)
	for i := range items {
		items[i] = newItem(i)
		items[i].SetActive(false)
	}
	return &Pool[T]{items: items}
}

// Next returns the first inactive item without activating it.
func (p *Pool[T]) Next() (T, bool) {
	for _, item := range p.items {
		if !item.Active() {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Place returns the first inactive item and activates it.
func (p *Pool[T]) Place() (T, bool) {
	item, ok := p.Next()
	if ok {
		item.SetActive(true)
	}
	return item, ok
}

func (p *Pool[T]) DeactivateAll() {
	for _, item := range p.items {
		item.SetActive(false)
	}
}

// Size is the pool capacity.
func (p *Pool[T]) Size() int {
	return len(p.items)
}

// ActiveCount is the number of items in use.
func (p *Pool[T]) ActiveCount() int {
	n := 0
	for _, item := range p.items {
		if item.Active() {
			n++
		}
	}
	return n
}
