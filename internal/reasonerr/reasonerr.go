// Package reasonerr declares the kernel's error-kind taxonomy
// (spec.md 7): the only error kinds the core surfaces across its
// boundary, each carrying its own recovery policy as documentation
// rather than code, since the kernel itself always converts these to
// a plain (verdict, reason) or (accepted, reason) pair rather than a
// propagated error value — Kind exists so drivers and logs can report
// which policy applied.
package reasonerr

// Kind identifies which row of spec.md 7's error taxonomy table a
// failure belongs to.
type Kind int

const (
	// ParseError originates in the normalizer/parser. Policy: surfaced
	// to the caller; never inserted into the KB.
	ParseError Kind = iota
	// SyntaxRejection originates in SMT translation. Policy: surfaced;
	// the SMT prover returns Unknown.
	SyntaxRejection
	// Inconsistent originates in the consistency check on insert.
	// Policy: add_fact returns a rejection with reason; KB unchanged.
	Inconsistent
	// ProverFailure originates as an exception (panic, in this
	// implementation) inside a prover. Policy: converted to an Unknown
	// verdict; the portfolio continues with the next prover.
	ProverFailure
	// OracleTimeout originates in the oracle HTTP client. Policy:
	// Unknown; not cached.
	OracleTimeout
	// PersistenceError originates in the persistence layer. Policy: on
	// load, ignored and the KB starts empty; on save, surfaced to the
	// caller.
	PersistenceError
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case SyntaxRejection:
		return "SyntaxRejection"
	case Inconsistent:
		return "Inconsistent"
	case ProverFailure:
		return "ProverFailure"
	case OracleTimeout:
		return "OracleTimeout"
	case PersistenceError:
		return "PersistenceError"
	default:
		return "Unknown"
	}
}

// Error pairs a Kind with a human-readable cause, implementing the
// standard error interface so it composes with %w/errors.Is at the
// points the persistence layer's save path surfaces it to the caller.
type Error struct {
	Kind  Kind
	Cause string
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Cause }

// New constructs an *Error of the given kind.
func New(kind Kind, cause string) *Error {
	return &Error{Kind: kind, Cause: cause}
}
