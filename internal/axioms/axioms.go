// Package axioms holds the data shipped with a fresh kernel at
// startup: the functional-dependency predicate set and the oracle
// predicate set, both driver-extensible (spec.md 6).
package axioms

import (
	"reasonkernel/internal/logic"
)

// DefaultFunctionalPredicates is the shipped set of predicates declared
// functional in their last argument.
func DefaultFunctionalPredicates() map[string]bool {
	names := []string{"Inhabitant", "Capital", "LocatedIn", "Area", "Population", "BirthYear", "Temperature"}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

// DefaultOraclePredicates is the shipped set of predicates the oracle
// adapter is asked to answer.
func DefaultOraclePredicates() map[string]bool {
	names := []string{
		"PopulationDensity", "CapitalOf", "WeatherIn", "TemperatureIn",
		"Integral", "DerivativeOf", "CurrencyOf", "AreaOf", "Population",
		"TimezoneOf", "CurrentTime", "Conversion", "Unit", "Solution",
		"Factorization", "GreaterThan", "LessThan", "Inhabitant", "Capital",
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

// FunctionalDependencyAxiom renders the universally-quantified axiom a
// functional predicate implies: ∀x.∀y.∀z.((P(x,y) ∧ P(x,z)) → y=z),
// generalized to predicates of any arity ≥ 2 by threading a shared
// prefix of variables before the final functionally-determined
// argument (spec.md 6: "Functional-dependency axioms ... shipped at
// startup, one per functional predicate").
func FunctionalDependencyAxiom(predicate string, arity int) logic.Formula {
	prefix := make([]logic.Term, 0, arity-1)
	varNames := []string{"x", "u", "v", "w"}
	for i := 0; i < arity-1; i++ {
		name := varNames[i%len(varNames)]
		if i >= len(varNames) {
			name = name + string(rune('0'+i))
		}
		prefix = append(prefix, logic.NewVariable(name))
	}

	yArgs := append(append([]logic.Term{}, prefix...), logic.NewVariable("y"))
	zArgs := append(append([]logic.Term{}, prefix...), logic.NewVariable("z"))

	body := logic.Formula(&logic.Implies{
		Left: &logic.And{
			Left:  &logic.Atom{Predicate: predicate, Args: yArgs},
			Right: &logic.Atom{Predicate: predicate, Args: zArgs},
		},
		Right: &logic.Equal{Left: logic.NewVariable("y"), Right: logic.NewVariable("z")},
	})

	body = &logic.ForAll{Var: "z", Body: body}
	body = &logic.ForAll{Var: "y", Body: body}
	for i := len(prefix) - 1; i >= 0; i-- {
		body = &logic.ForAll{Var: prefix[i].Name, Body: body}
	}
	return body
}

// DefaultFunctionalDependencyAxioms renders one axiom per shipped
// functional predicate, each declared binary (P(x, y)) — the arity
// every functional predicate in the default set actually uses.
func DefaultFunctionalDependencyAxioms() []logic.Formula {
	out := make([]logic.Formula, 0, len(DefaultFunctionalPredicates()))
	names := []string{"Inhabitant", "Capital", "LocatedIn", "Area", "Population", "BirthYear", "Temperature"}
	for _, name := range names {
		out = append(out, FunctionalDependencyAxiom(name, 2))
	}
	return out
}
