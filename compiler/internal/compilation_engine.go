package internal

import (
	"errors"
	"fmt"
	"strings"
)

// CompilationEngine compiles one class in a single pass: it walks the grammar by recursive descent
// and writes vm code while parsing, no ast is built. Each unit gets its own engine, so engines
// can run in parallel.
type CompilationEngine struct {
	tokens      *TokenStream
	symbolTable *SymbolTable
	writer      *VMWriter

	className      string
	subroutineName string
	// Label suffix counters, reset per subroutine.
	ifCounter    int
	whileCounter int
}

const (
	memoryAlloc      = "Memory.alloc"
	mathMultiply     = "Math.multiply"
	mathDivide       = "Math.divide"
	stringNew        = "String.new"
	stringAppendChar = "String.appendChar"

	// receiverName is the implicit first argument of a method. It is a keyword, so it never
	// collides with a declared name.
	receiverName = "this"
)

func NewCompilationEngine(tokens []*Token) *CompilationEngine {
	return &CompilationEngine{
		tokens:      NewTokenStream(tokens),
		symbolTable: NewSymbolTable(),
		writer:      NewVMWriter(),
	}
}

// Compile compiles the class held by the token stream and returns its vm code.
func (engine *CompilationEngine) Compile() (string, error) {
	engine.Reset()
	err := engine.compileClass()
	if err != nil {
		return "", err
	}
	if token := engine.tokens.peek(); token != nil {
		return "", engine.makeError("end of input", token)
	}
	return engine.writer.String(), nil
}

// Reset rewinds the token stream and clears all per unit state.
func (engine *CompilationEngine) Reset() {
	engine.tokens.currentPos = 0
	engine.symbolTable.Reset()
	engine.writer.Reset()
	engine.className, engine.subroutineName = "", ""
	engine.ifCounter, engine.whileCounter = 0, 0
}

// class: 'class' className '{' classVarDec* subroutineDec* '}'
func (engine *CompilationEngine) compileClass() error {
	_, err := engine.expectKeyword("class")
	if err != nil {
		return err
	}
	classNameToken, err := engine.expectIdentifier()
	if err != nil {
		return err
	}
	engine.className = classNameToken.content
	_, err = engine.expectSymbol("{")
	if err != nil {
		return err
	}
	for engine.peekKeyword("static", "field") {
		err = engine.compileClassVarDec()
		if err != nil {
			return err
		}
	}
	for engine.peekKeyword("constructor", "function", "method") {
		err = engine.compileSubroutine()
		if err != nil {
			return err
		}
	}
	_, err = engine.expectSymbol("}")
	return err
}

// classVarDec: ('static' | 'field') type varName (',' varName)* ';'
func (engine *CompilationEngine) compileClassVarDec() error {
	kindToken, err := engine.expectKeyword("static", "field")
	if err != nil {
		return err
	}
	kind := FieldKind
	if kindToken.content == "static" {
		kind = StaticKind
	}
	return engine.compileVarNames(kind)
}

// varDec: 'var' type varName (',' varName)* ';'
func (engine *CompilationEngine) compileVarDec() error {
	_, err := engine.expectKeyword("var")
	if err != nil {
		return err
	}
	return engine.compileVarNames(VariableKind)
}

// compileVarNames parses `type varName (',' varName)* ';'` and defines every name, in order,
// as soon as it is read.
func (engine *CompilationEngine) compileVarNames(kind SymbolKind) error {
	typeToken, err := engine.expectType(false)
	if err != nil {
		return err
	}
	for {
		nameToken, err := engine.expectIdentifier()
		if err != nil {
			return err
		}
		err = engine.define(nameToken, typeToken.content, kind)
		if err != nil {
			return err
		}
		if !engine.peekSymbol(",") {
			break
		}
		engine.tokens.next()
	}
	_, err = engine.expectSymbol(";")
	return err
}

// subroutineDec: ('constructor' | 'function' | 'method') ('void' | type) subroutineName
// '(' parameterList ')' '{' varDec* statements '}'
//
// vm codes:
// function className.subroutineName nLocals
// // constructor: allocate the object and anchor this on it.
// push constant nFields
// call Memory.alloc 1
// pop pointer 0
// // method: anchor this on the receiver.
// push argument 0
// pop pointer 0
// statements vm code
func (engine *CompilationEngine) compileSubroutine() error {
	engine.symbolTable.StartSubroutine()
	engine.ifCounter, engine.whileCounter = 0, 0

	subroutineToken, err := engine.expectKeyword("constructor", "function", "method")
	if err != nil {
		return err
	}
	_, err = engine.expectType(true)
	if err != nil {
		return err
	}
	nameToken, err := engine.expectIdentifier()
	if err != nil {
		return err
	}
	engine.subroutineName = nameToken.content
	_, err = engine.expectSymbol("(")
	if err != nil {
		return err
	}
	if subroutineToken.content == "method" {
		_, err = engine.symbolTable.Define(receiverName, engine.className, ArgumentKind)
		if err != nil {
			return err
		}
	}
	err = engine.compileParameterList()
	if err != nil {
		return err
	}
	_, err = engine.expectSymbol(")")
	if err != nil {
		return err
	}
	_, err = engine.expectSymbol("{")
	if err != nil {
		return err
	}
	for engine.peekKeyword("var") {
		err = engine.compileVarDec()
		if err != nil {
			return err
		}
	}
	// The local count is only known once every varDec is consumed.
	engine.writer.WriteFunction(engine.className+"."+engine.subroutineName, engine.symbolTable.Count(VariableKind))
	switch subroutineToken.content {
	case "constructor":
		engine.writer.WritePush(ConstantSegment, engine.symbolTable.Count(FieldKind))
		engine.writer.WriteCall(memoryAlloc, 1)
		engine.writer.WritePop(PointerSegment, 0)
	case "method":
		engine.writer.WritePush(ArgumentSegment, 0)
		engine.writer.WritePop(PointerSegment, 0)
	}
	err = engine.compileStatements()
	if err != nil {
		return err
	}
	_, err = engine.expectSymbol("}")
	return err
}

// parameterList: ((type varName) (',' type varName)*)?
func (engine *CompilationEngine) compileParameterList() error {
	if engine.peekSymbol(")") {
		return nil
	}
	for {
		typeToken, err := engine.expectType(false)
		if err != nil {
			return err
		}
		nameToken, err := engine.expectIdentifier()
		if err != nil {
			return err
		}
		err = engine.define(nameToken, typeToken.content, ArgumentKind)
		if err != nil {
			return err
		}
		if !engine.peekSymbol(",") {
			return nil
		}
		engine.tokens.next()
	}
}

func (engine *CompilationEngine) define(nameToken *Token, tp string, kind SymbolKind) error {
	_, err := engine.symbolTable.Define(nameToken.content, tp, kind)
	if errors.Is(err, ErrDuplicateSymbol) {
		return &ParseError{Kind: DuplicateSymbol, Line: nameToken.line, Found: nameToken, Msg: err.Error()}
	}
	return err
}

// resolve finds the symbol a name used as a storage location refers to.
func (engine *CompilationEngine) resolve(nameToken *Token) (*SymbolDesc, error) {
	desc, ok := engine.symbolTable.Resolve(nameToken.content)
	if !ok {
		return nil, &ParseError{
			Kind:  UnresolvedIdentifier,
			Line:  nameToken.line,
			Found: nameToken,
			Msg: fmt.Sprintf("%s is not declared in %s.%s", nameToken.content, engine.className,
				engine.subroutineName),
		}
	}
	return desc, nil
}

func (engine *CompilationEngine) peekSymbol(symbols ...string) bool {
	return engine.peekOneOf(SymbolTP, symbols)
}

func (engine *CompilationEngine) peekKeyword(keywords ...string) bool {
	return engine.peekOneOf(KeywordTP, keywords)
}

func (engine *CompilationEngine) peekOneOf(tp TokenType, contents []string) bool {
	token := engine.tokens.peek()
	for _, content := range contents {
		if token.is(tp, content) {
			return true
		}
	}
	return false
}

func (engine *CompilationEngine) expectSymbol(symbol string) (*Token, error) {
	return engine.expectOneOf(SymbolTP, symbol)
}

func (engine *CompilationEngine) expectKeyword(keywords ...string) (*Token, error) {
	return engine.expectOneOf(KeywordTP, keywords...)
}

func (engine *CompilationEngine) expectOneOf(tp TokenType, contents ...string) (*Token, error) {
	token := engine.tokens.next()
	for _, content := range contents {
		if token.is(tp, content) {
			return token, nil
		}
	}
	quoted := make([]string, 0, len(contents))
	for _, content := range contents {
		quoted = append(quoted, fmt.Sprintf("%q", content))
	}
	return nil, engine.makeError(tp.String()+" "+strings.Join(quoted, " or "), token)
}

func (engine *CompilationEngine) expectIdentifier() (*Token, error) {
	token := engine.tokens.next()
	if token == nil || token.tp != IdentifierTP {
		return nil, engine.makeError("identifier", token)
	}
	return token, nil
}

// expectType accepts int, char, boolean or a class name, and void when allowVoid is set.
func (engine *CompilationEngine) expectType(allowVoid bool) (*Token, error) {
	token := engine.tokens.next()
	switch {
	case token == nil:
	case token.tp == IdentifierTP:
		return token, nil
	case token.is(KeywordTP, "int"), token.is(KeywordTP, "char"), token.is(KeywordTP, "boolean"):
		return token, nil
	case allowVoid && token.is(KeywordTP, "void"):
		return token, nil
	}
	if allowVoid {
		return nil, engine.makeError("void or type", token)
	}
	return nil, engine.makeError("type", token)
}

// makeError reports that `expected` was required where `found` was read. A nil found
// means the stream ended.
func (engine *CompilationEngine) makeError(expected string, found *Token) error {
	if found == nil {
		return &ParseError{Kind: UnexpectedEnd, Line: engine.tokens.lastLine(), Expected: expected}
	}
	return &ParseError{Kind: UnexpectedToken, Line: found.line, Expected: expected, Found: found}
}
