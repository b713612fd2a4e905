package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtomString(t *testing.T) {
	a := &Atom{Predicate: "LocatedIn", Args: []Term{NewConstant("Berlin"), NewConstant("Germany")}}
	assert.Equal(t, "LocatedIn(Berlin,Germany)", a.String())

	nullary := &Atom{Predicate: "IsRaining"}
	assert.Equal(t, "IsRaining()", nullary.String())
}

func TestNegateCollapsesDoubleNegation(t *testing.T) {
	a := &Atom{Predicate: "IsOnline", Args: []Term{NewConstant("ServerA")}}
	once := Negate(a)
	assert.Equal(t, "-IsOnline(ServerA)", once.String())

	twice := Negate(once)
	assert.Same(t, a, twice)
}

func TestImpliesPrecedenceParenthesizesNestedAnd(t *testing.T) {
	lhs := &And{
		Left:  &Atom{Predicate: "P", Args: []Term{NewVariable("x"), NewVariable("y")}},
		Right: &Atom{Predicate: "P", Args: []Term{NewVariable("x"), NewVariable("z")}},
	}
	rhs := &Equal{Left: NewVariable("y"), Right: NewVariable("z")}
	impl := &Implies{Left: lhs, Right: rhs}

	assert.Equal(t, "(P(x,y) & P(x,z)) -> y=z", impl.String())
}

func TestForAllNestingMatchesFunctionalDependencyShape(t *testing.T) {
	inner := &Implies{
		Left: &And{
			Left:  &Atom{Predicate: "P", Args: []Term{NewVariable("x"), NewVariable("y")}},
			Right: &Atom{Predicate: "P", Args: []Term{NewVariable("x"), NewVariable("z")}},
		},
		Right: &Equal{Left: NewVariable("y"), Right: NewVariable("z")},
	}
	axiom := &ForAll{Var: "x", Body: &ForAll{Var: "y", Body: &ForAll{Var: "z", Body: inner}}}

	want := "all x (all y (all z ((P(x,y) & P(x,z)) -> y=z)))"
	assert.Equal(t, want, axiom.String())
}

func TestPredicatesDedupesPreservingOrder(t *testing.T) {
	f := &And{
		Left:  &Atom{Predicate: "P", Args: []Term{NewVariable("x")}},
		Right: &Or{Left: &Atom{Predicate: "Q"}, Right: &Atom{Predicate: "P", Args: []Term{NewVariable("y")}}},
	}
	assert.Equal(t, []string{"P", "Q"}, Predicates(f))
}

func TestVariablesIncludesQuantifierBinder(t *testing.T) {
	f := &ForAll{Var: "x", Body: &Atom{Predicate: "Legacy", Args: []Term{NewVariable("x")}}}
	assert.Equal(t, []string{"x"}, Variables(f))
}
