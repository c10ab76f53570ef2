package parse

// Term is one argument position inside an atom.
type Term interface {
	termNode()
}

// Variable is a bare identifier in argument position. Two variables with the
// same name unify wherever they appear in a rule.
type Variable struct {
	Name string
}

func (*Variable) termNode() {}

// Constant is a literal argument: int64, float64, string, bool, or nil.
type Constant struct {
	Value any
}

func (*Constant) termNode() {}

// Node is a body expression: an atom, a conjunction, or a disjunction.
type Node interface {
	bodyNode()
}

// Atom applies a relation to a list of terms: name(t1, ..., tn).
type Atom struct {
	Name string
	Args []Term
	Pos  int // rune offset of the relation name
}

func (*Atom) bodyNode() {}

// And joins two body expressions: left & right.
type And struct {
	Left  Node
	Right Node
}

func (*And) bodyNode() {}

// Or unions two body expressions: left | right.
type Or struct {
	Left  Node
	Right Node
}

func (*Or) bodyNode() {}

// Rule is a derivation: head <= body.
type Rule struct {
	Head *Atom
	Body Node
}
