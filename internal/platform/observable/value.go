// Package observable provides a current-value cell with change
// notification. Subscribers always see the latest value: each subscription
// is a mailbox of one that is overwritten when the consumer lags.
package observable

import "sync"

type Value[T any] struct {
	mu      sync.Mutex
	current T
	subs    map[int]chan T
	nextID  int
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{current: initial, subs: map[int]chan T{}}
}

func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set stores next and notifies every subscriber.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = next
	for _, ch := range v.subs {
		offer(ch, next)
	}
}

// Subscribe returns a channel that immediately holds the current value and
// then receives subsequent updates. cancel closes the channel.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ch := make(chan T, 1)
	ch <- v.current
	id := v.nextID
	v.nextID++
	v.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			delete(v.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// offer replaces any undelivered value with next. Called with v.mu held,
// which makes the drain-then-send pair atomic with respect to Set.
func offer[T any](ch chan T, next T) {
	select {
	case ch <- next:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- next:
	default:
	}
}
