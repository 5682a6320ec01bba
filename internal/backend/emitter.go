// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import "sync"

// Emitter fans auth events out to registered listeners.
// Listeners run synchronously on the emitting goroutine in registration order.
type Emitter struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
	order     []int
}

// Subscribe registers listener until the returned [Subscription] is released.
func (emitter *Emitter) Subscribe(listener Listener) Subscription {
	emitter.mu.Lock()
	defer emitter.mu.Unlock()

	if emitter.listeners == nil {
		emitter.listeners = make(map[int]Listener)
	}

	emitter.nextID++
	id := emitter.nextID
	emitter.listeners[id] = listener
	emitter.order = append(emitter.order, id)

	return &subscription{emitter: emitter, id: id}
}

// Emit delivers event to every current listener.
func (emitter *Emitter) Emit(event Event, session *Session) {
	emitter.mu.Lock()
	targets := make([]Listener, 0, len(emitter.order))
	for _, id := range emitter.order {
		targets = append(targets, emitter.listeners[id])
	}
	emitter.mu.Unlock()

	for _, listener := range targets {
		listener(event, session)
	}
}

// Len reports the number of active listeners.
func (emitter *Emitter) Len() int {
	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	return len(emitter.listeners)
}

func (emitter *Emitter) remove(id int) {
	emitter.mu.Lock()
	defer emitter.mu.Unlock()

	if _, ok := emitter.listeners[id]; !ok {
		return
	}
	delete(emitter.listeners, id)
	for i, candidate := range emitter.order {
		if candidate == id {
			emitter.order = append(emitter.order[:i], emitter.order[i+1:]...)
			break
		}
	}
}

type subscription struct {
	emitter *Emitter
	once    sync.Once
	id      int
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() { s.emitter.remove(s.id) })
}
