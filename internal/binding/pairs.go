package binding

// Source and Destination are tagged variants, resolved once at
// construction rather than re-inspected on every run: a source is either a
// property read or a call, a destination either an assignment or an
// invocation.

type sourceKind int

const (
	sourceProp sourceKind = iota
	sourceCall
)

// Source is a readable value provider sampled when the pipeline runs.
type Source struct {
	kind   sourceKind
	target Getter
	key    string
	fn     func(args ...any) any
	args   []any
}

// Prop reads target's key on every run. A missing key samples as nil.
func Prop(target Getter, key string) Source {
	return Source{kind: sourceProp, target: target, key: key}
}

// Call invokes fn with args on every run and samples its return value.
func Call(fn func(args ...any) any, args ...any) Source {
	return Source{kind: sourceCall, fn: fn, args: args}
}

func (s Source) read() any {
	switch s.kind {
	case sourceCall:
		return s.fn(s.args...)
	default:
		v, _ := s.target.Get(s.key)
		return v
	}
}

type destKind int

const (
	destAssign destKind = iota
	destInvoke
)

// Destination is a writable or invocable target receiving the final
// transformed value.
type Destination struct {
	kind   destKind
	target Setter
	key    string
	fn     func(v any) error
}

// Assign writes the final value to target's key via Set, which on a
// reactive store dispatches its change events synchronously (nested
// dispatch, per the propagation contract).
func Assign(target Setter, key string) Destination {
	return Destination{kind: destAssign, target: target, key: key}
}

// Invoke calls fn with the final value as sole argument.
func Invoke(fn func(v any) error) Destination {
	return Destination{kind: destInvoke, fn: fn}
}

func (d Destination) write(v any) error {
	switch d.kind {
	case destInvoke:
		return d.fn(v)
	default:
		return d.target.Set(d.key, v)
	}
}
