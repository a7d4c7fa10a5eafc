package job

import (
	"github.com/roach88/jobtree/internal/assoc"
)

// scopedKey identifies a handler registered for one event from one sender.
type scopedKey struct {
	event  string
	sender ID
}

func hashScoped(k scopedKey) uint64 {
	return assoc.StringHash(k.event) ^ assoc.Uint64Hash(uint64(k.sender))
}

// Listen registers h for event on j, replacing any handler already
// registered under that name. Event names are compared in NFC form.
func (j *Job) Listen(event string, h Handler) {
	if j.killed || h == nil {
		return
	}
	if j.events == nil {
		j.events = assoc.NewString[Handler]()
	}
	*j.events.Add(assoc.Normalize(event), h) = h
}

// ListenFrom registers h for event sent by sender only. A sender-scoped
// handler takes precedence over one registered with Listen.
func (j *Job) ListenFrom(event string, sender *Job, h Handler) {
	if j.killed || h == nil || sender == nil {
		return
	}
	if j.scoped == nil {
		j.scoped = assoc.New[scopedKey, Handler](hashScoped)
	}
	*j.scoped.Add(scopedKey{assoc.Normalize(event), sender.id}, h) = h
}

// Ignore removes the handler for event. Ignoring an unknown event is a no-op.
func (j *Job) Ignore(event string) {
	if j.events != nil {
		j.events.Remove(assoc.Normalize(event))
	}
}

// IgnoreFrom removes the sender-scoped handler for event.
func (j *Job) IgnoreFrom(event string, sender *Job) {
	if j.scoped != nil && sender != nil {
		j.scoped.Remove(scopedKey{assoc.Normalize(event), sender.id})
	}
}

// IsListening reports whether j has an unscoped handler for event.
func (j *Job) IsListening(event string) bool {
	return j.events != nil && j.events.Has(assoc.Normalize(event))
}

// Notify delivers event from sender to j.
//
// Nothing happens unless j is active. The handler is chosen in this order:
// the handler registered for (event, sender), the handler registered for
// event, the behaviour's OnMessage. Delivery is synchronous. Notify reports
// whether anything received the event.
func (j *Job) Notify(event string, sender *Job) bool {
	if !j.IsActive() {
		return false
	}
	name := assoc.Normalize(event)

	var h Handler
	if j.scoped != nil && sender != nil {
		h, _ = j.scoped.Get(scopedKey{name, sender.id})
	}
	if h == nil && j.events != nil {
		h, _ = j.events.Get(name)
	}

	if h != nil {
		h(j, sender)
	} else if m, ok := j.behavior.(MessageHandler); ok {
		m.OnMessage(j, name, sender)
	} else {
		return false
	}
	j.tree.observer.Delivered(name, j, sender)
	return true
}

// NotifyParent sends event to j's parent.
func (j *Job) NotifyParent(event string) {
	if j.parent != nil {
		j.parent.Notify(event, j)
	}
}

// NotifyChildren sends event to every child in child-list order.
func (j *Job) NotifyChildren(event string) {
	for c := j.child; c != nil; {
		c.Notify(event, j)
		c = c.sibling
	}
}

// NotifyGroup sends event to every member of group that still exists, in
// result order.
func (j *Job) NotifyGroup(event string, group *Results) {
	if group == nil {
		return
	}
	for r := group.first; r != nil; r = r.next {
		if target := r.ref.Get(); target != nil {
			target.Notify(event, j)
		}
	}
}
