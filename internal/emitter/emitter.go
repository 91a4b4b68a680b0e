// Package emitter provides the named-event publish/subscribe primitive the
// rest of the runtime is built on. Dispatch is synchronous and single
// threaded: handlers run to completion in registration order before
// DispatchEvent returns, and a handler that dispatches again nests fully
// before the outer dispatch resumes. The package does no locking; all
// emitters belonging to one reactive graph must be driven from one
// goroutine.
package emitter

// Name identifies an event. Valid names are strings (user-chosen, such as
// store keys) and *Symbol values (entity-private events that can never
// collide with a string key).
type Name any

// Handler receives the positional arguments passed to DispatchEvent.
// Returning a non-nil error halts the remaining handlers of that dispatch.
type Handler func(args ...any) error

// Listener is the registration token returned by AddEventListener. The same
// handler function may be registered any number of times; each registration
// gets its own token and fires independently.
type Listener struct {
	event Name
	fn    Handler
}

// Event returns the event name this listener was registered under.
func (l *Listener) Event() Name { return l.event }

// Emitter maps event names to ordered handler lists.
type Emitter struct {
	handlers map[Name][]*Listener
}

// New creates an empty emitter.
func New() *Emitter {
	return &Emitter{handlers: make(map[Name][]*Listener)}
}

// AddEventListener appends fn to the handler list for event, creating the
// list if absent, and returns the registration token.
func (e *Emitter) AddEventListener(event Name, fn Handler) *Listener {
	l := &Listener{event: event, fn: fn}
	e.handlers[event] = append(e.handlers[event], l)
	return l
}

// RemoveEventListener removes the registration identified by l. Removing a
// token that was never registered, was already removed, or is nil is a
// no-op. Other registrations of the same handler function are unaffected.
func (e *Emitter) RemoveEventListener(l *Listener) {
	if l == nil {
		return
	}
	list, ok := e.handlers[l.event]
	if !ok {
		return
	}
	for i, reg := range list {
		if reg == l {
			e.handlers[l.event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// DispatchEvent synchronously invokes every handler registered for event at
// the time of the call, in registration order, passing args. The first
// handler error halts the remaining handlers and is returned. Handlers
// added or removed during a dispatch take effect from the next dispatch.
func (e *Emitter) DispatchEvent(event Name, args ...any) error {
	list, ok := e.handlers[event]
	if !ok {
		return nil
	}
	// Snapshot so a handler mutating the list cannot skip or double-fire
	// its siblings mid-dispatch.
	snapshot := make([]*Listener, len(list))
	copy(snapshot, list)
	for _, l := range snapshot {
		if err := l.fn(args...); err != nil {
			return err
		}
	}
	return nil
}

// ListenerCount returns the number of registrations for event.
func (e *Emitter) ListenerCount(event Name) int {
	return len(e.handlers[event])
}
