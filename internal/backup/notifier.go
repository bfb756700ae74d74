package backup

import "sync/atomic"

// Notifier is how mutating services signal that durable state changed and an
// incremental backup is due. Writers only mark; the snapshot runner consumes.
type Notifier interface {
	MarkDirty()
}

// Flag is the in-process Notifier: a single atomic dirty bit shared between
// the request path and the snapshot runner.
type Flag struct {
	dirty atomic.Bool
}

func NewFlag() *Flag {
	return &Flag{}
}

func (f *Flag) MarkDirty() {
	f.dirty.Store(true)
}

// Consume returns whether a change was pending and clears the bit, so one
// snapshot covers all changes marked before it started.
func (f *Flag) Consume() bool {
	return f.dirty.Swap(false)
}

func (f *Flag) Dirty() bool {
	return f.dirty.Load()
}
