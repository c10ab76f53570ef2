// Package engine drives datalite programs to fixpoint.
//
// A run is one store transaction: create the program's relations, insert
// its seed facts, then apply rules in rounds until a full round derives
// nothing new. Rules headed by distinct relations are safe to resubmit
// because their conflict clause drops tuples that already exist, which
// also makes each round's affected-row total an exact progress measure.
// Rules headed by bag relations run once, in the first round only; a
// second application would re-derive their entire output.
//
// The engine never analyzes rule bodies for termination. A recursive
// rule set converges only because the derivable tuple space is finite;
// the round limit is the backstop for programs where it is not.
//
// Derivations and the run's provenance record commit atomically: a run
// that fails or exceeds its round limit leaves the database untouched.
package engine
