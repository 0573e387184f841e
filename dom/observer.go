package dom

// MutationType is the kind of change a record describes.
type MutationType string

const (
	MutationAttributes MutationType = "attributes"
	MutationChildList  MutationType = "childList"
)

// MutationRecord is one observed change. For attribute records Target is the
// element whose attribute changed; for childList records Target is the parent
// whose child list changed, with the moved subtree roots in AddedNodes or
// RemovedNodes.
type MutationRecord struct {
	Type          MutationType
	Target        *Node
	AttributeName string
	AddedNodes    []*Node
	RemovedNodes  []*Node
}

// MutationHandler receives one batch of records in delivery order.
type MutationHandler func(records []MutationRecord)

// ObserverOptions scopes a subscription. At least one of Attributes or
// ChildList must be set for the subscription to receive anything.
type ObserverOptions struct {
	// Attributes delivers attribute records.
	Attributes bool
	// ChildList delivers child insert/remove records.
	ChildList bool
	// Subtree extends the scope from the target element to its whole
	// composed subtree.
	Subtree bool
}

// Subscription is a live mutation subscription. Cancel stops delivery;
// records already queued are dropped.
type Subscription struct {
	doc      *Document
	target   *Node
	opts     ObserverOptions
	handler  MutationHandler
	queue    []MutationRecord
	canceled bool
}

// Cancel removes the subscription from the document. Safe to call twice.
func (s *Subscription) Cancel() {
	if s.canceled {
		return
	}
	s.canceled = true
	s.queue = nil
	for i, sub := range s.doc.subs {
		if sub == s {
			s.doc.subs = append(s.doc.subs[:i], s.doc.subs[i+1:]...)
			return
		}
	}
}

// Observe registers a mutation subscription scoped to target. Records match
// a subscription at mutation time: the record target must be the subscription
// target, or composed-descendant of it when Subtree is set. Delivery happens
// in batches on Flush.
func (d *Document) Observe(target *Node, opts ObserverOptions, handler MutationHandler) *Subscription {
	sub := &Subscription{doc: d, target: target, opts: opts, handler: handler}
	d.subs = append(d.subs, sub)
	return sub
}

func (d *Document) queueRecord(rec MutationRecord) {
	for _, sub := range d.subs {
		if !sub.matches(rec) {
			continue
		}
		sub.queue = append(sub.queue, rec)
		d.pending = true
	}
}

func (s *Subscription) matches(rec MutationRecord) bool {
	switch rec.Type {
	case MutationAttributes:
		if !s.opts.Attributes {
			return false
		}
	case MutationChildList:
		if !s.opts.ChildList {
			return false
		}
	}
	if rec.Target == s.target {
		return true
	}
	return s.opts.Subtree && s.target.Contains(rec.Target)
}

// Flush delivers all pending batches, in subscription registration order,
// and repeats until no handler queues further records. Mutations performed
// inside a handler are delivered in a subsequent round of the same Flush,
// never interleaved with the batch that caused them.
func (d *Document) Flush() {
	for d.pending {
		d.pending = false
		// Snapshot: handlers may register or cancel subscriptions.
		subs := make([]*Subscription, len(d.subs))
		copy(subs, d.subs)
		for _, sub := range subs {
			if sub.canceled || len(sub.queue) == 0 {
				continue
			}
			batch := sub.queue
			sub.queue = nil
			sub.handler(batch)
		}
	}
}
