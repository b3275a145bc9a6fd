package internal

import (
	"fmt"
)

// LexError is returned when no token rule matches at a position of the source.
type LexError struct {
	Line   int
	Column int
	Near   string
	Msg    string
}

func (err *LexError) Error() string {
	return fmt.Sprintf("Tokenizer: tokenizer error near %q at line %d, column %d, msg: %s",
		err.Near, err.Line, err.Column, err.Msg)
}

type ParseErrorKind int

const (
	// UnexpectedToken: a keyword, symbol or token kind other than the expected one.
	UnexpectedToken ParseErrorKind = iota
	// UnexpectedEnd: the token stream ran out inside a construct.
	UnexpectedEnd
	// UnresolvedIdentifier: a name used as a storage location is in neither scope.
	UnresolvedIdentifier
	// DuplicateSymbol: a name declared twice in the same scope.
	DuplicateSymbol
)

func (kind ParseErrorKind) String() string {
	switch kind {
	case UnexpectedToken:
		return "unexpected token"
	case UnexpectedEnd:
		return "unexpected end of input"
	case UnresolvedIdentifier:
		return "unresolved identifier"
	case DuplicateSymbol:
		return "duplicate symbol"
	}
	return "unknown"
}

// ParseError aborts compilation of the current unit. Found is nil when the
// stream was exhausted.
type ParseError struct {
	Kind     ParseErrorKind
	Line     int
	Expected string
	Found    *Token
	Msg      string
}

func (err *ParseError) Error() string {
	found := "end of input"
	if err.Found != nil {
		found = err.Found.String()
	}
	if err.Expected == "" {
		return fmt.Sprintf("Parser: %s at line %d near %s: %s", err.Kind, err.Line, found, err.Msg)
	}
	return fmt.Sprintf("Parser: %s at line %d: expected %s, found %s", err.Kind, err.Line, err.Expected, found)
}
