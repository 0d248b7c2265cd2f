package store

import "sync"

type subscribers[S any] struct {
	mu     sync.Mutex
	next   int
	subs   map[int]*subscriber[S]
	closed bool
}

type subscriber[S any] struct {
	mu     sync.Mutex
	latest S
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newSubscribers[S any]() *subscribers[S] {
	return &subscribers[S]{subs: make(map[int]*subscriber[S])}
}

// add returns the subscribe function of a Store whose current state is read
// with current.
func (ss *subscribers[S]) add(current func() S) func(func(S)) func() {
	return func(fn func(S)) func() {
		sub := &subscriber[S]{
			signal: make(chan struct{}, 1),
			done:   make(chan struct{}),
		}

		ss.mu.Lock()
		if ss.closed {
			ss.mu.Unlock()
			return func() {}
		}
		id := ss.next
		ss.next++
		ss.subs[id] = sub
		sub.offer(current())
		ss.mu.Unlock()

		ready := make(chan struct{})
		go func() {
			close(ready)
			for {
				select {
				case <-sub.signal:
					sub.mu.Lock()
					v := sub.latest
					sub.mu.Unlock()
					fn(v)
				case <-sub.done:
					return
				}
			}
		}()
		<-ready

		return func() {
			ss.mu.Lock()
			delete(ss.subs, id)
			ss.mu.Unlock()
			sub.stop()
		}
	}
}

func (ss *subscribers[S]) publish(v S) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for _, sub := range ss.subs {
		sub.offer(v)
	}
}

func (ss *subscribers[S]) close() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.closed = true
	for id, sub := range ss.subs {
		sub.stop()
		delete(ss.subs, id)
	}
}

func (s *subscriber[S]) offer(v S) {
	s.mu.Lock()
	s.latest = v
	s.mu.Unlock()
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscriber[S]) stop() {
	s.once.Do(func() { close(s.done) })
}
