package internal

import (
	"errors"
	"fmt"
)

var ErrDuplicateSymbol = errors.New("duplicate symbol")

// SymbolKind tells where a variable lives. Static and Field symbols belong to the class scope,
// Argument and Variable symbols to the subroutine scope.
type SymbolKind int

const (
	StaticKind SymbolKind = iota
	FieldKind
	ArgumentKind
	VariableKind
)

func (kind SymbolKind) String() string {
	switch kind {
	case StaticKind:
		return "static"
	case FieldKind:
		return "field"
	case ArgumentKind:
		return "argument"
	case VariableKind:
		return "var"
	}
	return "unknown"
}

func (kind SymbolKind) isClassScope() bool {
	return kind == StaticKind || kind == FieldKind
}

// Segment is the vm memory segment a symbol of this kind is pushed from and popped to.
func (kind SymbolKind) Segment() Segment {
	switch kind {
	case StaticKind:
		return StaticSegment
	case FieldKind:
		return ThisSegment
	case ArgumentKind:
		return ArgumentSegment
	default:
		return LocalSegment
	}
}

type SymbolDesc struct {
	Name string
	// Type is the declared type token: int, char, boolean or a class name.
	Type  string
	Kind  SymbolKind
	Index int
}

type scope struct {
	symbols map[string]*SymbolDesc
	counts  map[SymbolKind]int
}

func newScope() *scope {
	return &scope{symbols: map[string]*SymbolDesc{}, counts: map[SymbolKind]int{}}
}

// SymbolTable resolves names against two scopes: the subroutine being compiled, then its class.
type SymbolTable struct {
	classScope      *scope
	subroutineScope *scope
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{classScope: newScope(), subroutineScope: newScope()}
}

func (table *SymbolTable) scopeOf(kind SymbolKind) *scope {
	if kind.isClassScope() {
		return table.classScope
	}
	return table.subroutineScope
}

// Define adds a symbol whose index is the number of symbols of the same kind already defined
// in its scope. A name declared twice in one scope is rejected, the first definition is kept.
func (table *SymbolTable) Define(name, tp string, kind SymbolKind) (*SymbolDesc, error) {
	s := table.scopeOf(kind)
	if exist, ok := s.symbols[name]; ok {
		return exist, fmt.Errorf("%w: %s %s already declared as %s", ErrDuplicateSymbol, kind, name, exist.Kind)
	}
	desc := &SymbolDesc{Name: name, Type: tp, Kind: kind, Index: s.counts[kind]}
	s.symbols[name] = desc
	s.counts[kind]++
	return desc, nil
}

// StartSubroutine clears the subroutine scope. The class scope is untouched.
func (table *SymbolTable) StartSubroutine() {
	table.subroutineScope = newScope()
}

// Reset clears both scopes, used between compilation units.
func (table *SymbolTable) Reset() {
	table.classScope, table.subroutineScope = newScope(), newScope()
}

func (table *SymbolTable) Count(kind SymbolKind) int {
	return table.scopeOf(kind).counts[kind]
}

// Resolve looks name up in the subroutine scope first, then the class scope.
func (table *SymbolTable) Resolve(name string) (*SymbolDesc, bool) {
	if desc, ok := table.subroutineScope.symbols[name]; ok {
		return desc, true
	}
	desc, ok := table.classScope.symbols[name]
	return desc, ok
}
