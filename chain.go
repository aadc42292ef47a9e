package miniasync

// MapFunc propagates values from a just-completed stage to the next one.
// prev is the stage's inner Future, now in StateComplete (for an entry
// skipped via ForceComplete, its never-polled Inner, which may be nil); next is the
// Entry about to run (for the chain's last stage, a synthetic Entry
// wrapping the chain's Sink). A MapFunc may call next.ForceComplete() to
// skip that stage entirely — the only state transition a map function is
// permitted to impose on the next entry.
type MapFunc func(prev Future, next *Entry, arg any)

// LazyInitFunc constructs an entry's inner Future from prior entries'
// outputs, deferred until just before that entry is first polled. c exposes
// Entries() so the closure can read earlier stages' concrete output.
type LazyInitFunc func(c *Chain) Future

// Entry is one stage of a Chain: an inner future plus the propagation glue
// that runs once it completes.
type Entry struct {
	Inner Future

	// PendingData is a staging area a previous stage's MapFunc may write
	// into before this entry's LazyInit constructs Inner — needed because
	// a lazily-initialized entry has no Inner yet to write fields into
	// directly.
	PendingData any

	MapFn    MapFunc
	MapArg   any
	LazyInit LazyInitFunc

	initialized  bool
	forceSkipped bool
}

// ForceComplete marks e to be skipped: its own inner future is never
// polled, LazyInit is never invoked, and e's own MapFn (if any) still runs
// once the chain's cursor reaches e, so the chain can keep propagating
// past it.
func (e *Entry) ForceComplete() {
	e.forceSkipped = true
}

// AsSink returns the chain's Sink if e is the synthetic terminal entry a
// MapFunc receives as "next" for a chain's last stage, so the last
// MapFunc can write its result without type-asserting through Future.
func (e *Entry) AsSink() (*Sink, bool) {
	sf, ok := e.Inner.(sinkAsFuture)
	if !ok {
		return nil, false
	}
	return sf.Sink, true
}

// Sink holds a chain's overall output. It is never itself a processing
// stage — the last entry's MapFunc writes into it directly — but wrapping
// it in a synthetic Entry lets the last stage use the same MapFunc shape
// as every other stage.
type Sink struct {
	data any
}

// NewSink wraps a pointer to the caller's output struct.
func NewSink(data any) *Sink { return &Sink{data: data} }

// Data returns the pointer passed to NewSink.
func (s *Sink) Data() any { return s.data }

// Chain is a sequential composition of N inner futures. At most one entry
// is ever non-IDLE-and-not-COMPLETE at a time;
// the chain completes once its cursor advances past the last entry.
type Chain struct {
	entries []*Entry
	sink    *Sink
	cursor  int
	state   State
}

// NewChain wires entries into a chain terminating in sink. sink may be nil
// if the caller doesn't need a final output (e.g. every entry's MapFn is
// nil, or the last entry's output is consumed some other way).
func NewChain(sink *Sink, entries ...*Entry) *Chain {
	if sink == nil {
		sink = NewSink(nil)
	}
	return &Chain{entries: entries, sink: sink, cursor: 0, state: StateIdle}
}

// Entries exposes the chain's stages, mainly so LazyInitFunc closures can
// read earlier stages' outputs.
func (c *Chain) Entries() []*Entry { return c.entries }

// Output returns the data pointer handed to NewSink.
func (c *Chain) Output() any { return c.sink.Data() }

func (c *Chain) State() State { return c.state }

// IsAsync reports the async-ness of the currently executing entry, so a
// chain nested inside another chain (or inside the runtime) is scheduled
// the same way a plain async future would be.
func (c *Chain) IsAsync() bool {
	if c.cursor < len(c.entries) {
		return IsAsync(c.entries[c.cursor].Inner)
	}
	return false
}

// ForceComplete lets a Chain used as another chain's entry be
// short-circuited the same way any other stage can be.
func (c *Chain) ForceComplete() {
	c.state = StateComplete
	c.cursor = len(c.entries)
}

func (c *Chain) sinkEntry() *Entry {
	return &Entry{Inner: sinkAsFuture{c.sink}}
}

// sinkAsFuture adapts a Sink (which carries no state machine of its own)
// to the Future interface so it can stand in as "next" for the last entry.
type sinkAsFuture struct{ *Sink }

func (sinkAsFuture) Poll(_ *Notifier) State { return StateComplete }
func (sinkAsFuture) State() State           { return StateComplete }

// Poll polls the current entry and, each time it completes, runs its MapFn
// and moves on to the next entry within the same call, stopping at the
// first entry that is not yet complete. IDLE is only the pre-first-poll
// state observable externally;
// if an inner future repeatedly returns IDLE, the chain itself returns
// RUNNING, never IDLE, once the chain has been polled at all.
func (c *Chain) Poll(n *Notifier) State {
	if c.state == StateComplete {
		return StateComplete
	}

	for {
		if c.cursor >= len(c.entries) {
			c.state = StateComplete
			return c.state
		}

		e := c.entries[c.cursor]

		var completedPrev Future
		if e.forceSkipped {
			completedPrev = e.Inner
		} else {
			if e.LazyInit != nil && !e.initialized {
				e.Inner = e.LazyInit(c)
				e.initialized = true
			}
			s := Poll(e.Inner, n)
			if s != StateComplete {
				c.state = StateRunning
				return c.state
			}
			completedPrev = e.Inner
		}

		var next *Entry
		if c.cursor+1 < len(c.entries) {
			next = c.entries[c.cursor+1]
		} else {
			next = c.sinkEntry()
		}
		if e.MapFn != nil {
			e.MapFn(completedPrev, next, e.MapArg)
		}
		c.cursor++
	}
}
