// Package event provides a small in-process event stream with owned
// subscription handles. Components subscribe to a Bus and receive every
// published value synchronously, in subscription order, within the
// publisher's event-loop tick; releasing the returned handle is the
// only way to stop delivery, so teardown is deterministic on every
// exit path.
package event

// DocumentChanged announces that the viewer's active document moved.
type DocumentChanged struct {
	ID   string
	Path string
}

// Bus fans a single event type out to subscribers. It is not
// goroutine-safe: publish and subscribe from the UI loop only.
type Bus[T any] struct {
	subs   map[int]func(T)
	nextID int
}

// NewBus creates an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[int]func(T))}
}

// Subscribe registers fn and returns its handle. The handle must be
// closed when the subscriber is torn down; Close is idempotent.
func (b *Bus[T]) Subscribe(fn func(T)) *Subscription {
	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	return &Subscription{release: func() {
		delete(b.subs, id)
	}}
}

// Publish delivers v to every live subscriber in subscription order.
func (b *Bus[T]) Publish(v T) {
	// Snapshot IDs so a handler closing its own subscription (or
	// another's) mid-delivery cannot corrupt the iteration.
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sortInts(ids)

	for _, id := range ids {
		if fn, ok := b.subs[id]; ok {
			fn(v)
		}
	}
}

// Len reports the number of live subscriptions.
func (b *Bus[T]) Len() int {
	return len(b.subs)
}

// Subscription is an owned handle for one bus registration.
type Subscription struct {
	release func()
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	if s == nil || s.release == nil {
		return
	}
	s.release()
	s.release = nil
}

func sortInts(a []int) {
	// Insertion sort; subscriber counts are tiny.
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j] < a[j-1]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}
