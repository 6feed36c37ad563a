// Package event provides the synchronous publish/subscribe primitive used by
// fields, modifiers and flows to announce changes.
package event

// Handler receives the object that published the notification.
type Handler[S any] func(sender S)

// Subscription identifies one registered handler on a Channel.
type Subscription uint64

type entry[S any] struct {
	id      Subscription
	handler Handler[S]
}

// Channel is a named notification list. The zero value is ready to use.
// Handlers run inline on the publishing goroutine, in subscription order.
type Channel[S any] struct {
	name     string
	handlers []entry[S]
	nextID   Subscription
}

// NewChannel returns a channel labelled with name.
func NewChannel[S any](name string) *Channel[S] {
	return &Channel[S]{name: name}
}

// Name returns the label given at construction.
func (c *Channel[S]) Name() string {
	return c.name
}

// Subscribe appends h to the handler list.
func (c *Channel[S]) Subscribe(h Handler[S]) Subscription {
	c.nextID++
	c.handlers = append(c.handlers, entry[S]{id: c.nextID, handler: h})
	return c.nextID
}

// Unsubscribe removes the handler registered under s. It reports whether a
// handler was removed.
func (c *Channel[S]) Unsubscribe(s Subscription) bool {
	for i, e := range c.handlers {
		if e.id == s {
			c.handlers = append(c.handlers[:i:i], c.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of subscribed handlers.
func (c *Channel[S]) Len() int {
	return len(c.handlers)
}

// Publish calls every handler with sender. Handlers added or removed while
// publishing take effect on the next Publish.
func (c *Channel[S]) Publish(sender S) {
	if len(c.handlers) == 0 {
		return
	}
	snapshot := make([]entry[S], len(c.handlers))
	copy(snapshot, c.handlers)
	for _, e := range snapshot {
		e.handler(sender)
	}
}
