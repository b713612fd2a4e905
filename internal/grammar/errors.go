package grammar

import "fmt"

// ParseError reports a syntax error at a rune offset within the input
// string, matching the Python original's practice of surfacing the
// offending position rather than only a message.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Message)
}
