package emitter

// Symbol is an unforgeable event name. Entities use symbols for their
// private structural events so they can never collide with user-chosen
// string keys: identity is the pointer, so two symbols are distinct even
// when created with the same description.
type Symbol struct {
	desc string
}

// NewSymbol allocates a fresh symbol. The description is for logging only
// and carries no identity.
func NewSymbol(desc string) *Symbol {
	return &Symbol{desc: desc}
}

func (s *Symbol) String() string {
	return "Symbol(" + s.desc + ")"
}
