package query

import "fmt"

// ParseError is raised for malformed query text: missing target,
// malformed value, unknown operator, or an unterminated string (§4.10).
type ParseError struct {
	Message  string
	Position int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("query: parse error at position %d: %s", e.Position, e.Message)
}

func newParseError(pos int, format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Position: pos}
}
