package internal

import (
	"strconv"
)

// Binary operators have no precedence: `a + b * c` is `(a + b) * c`. Operands are compiled
// before their operator, which is a post order walk matching the stack machine.

var binaryOperations = map[string]Operation{
	"+": AddOperation,
	"-": SubOperation,
	"&": AndOperation,
	"|": OrOperation,
	"<": LtOperation,
	">": GtOperation,
	"=": EqOperation,
}

var binaryCalls = map[string]string{
	"*": mathMultiply,
	"/": mathDivide,
}

func isBinaryOp(token *Token) bool {
	if token == nil || token.tp != SymbolTP {
		return false
	}
	_, isOperation := binaryOperations[token.content]
	_, isCall := binaryCalls[token.content]
	return isOperation || isCall
}

// expression: term (op term)*
func (engine *CompilationEngine) compileExpression() error {
	err := engine.compileTerm()
	if err != nil {
		return err
	}
	for isBinaryOp(engine.tokens.peek()) {
		op := engine.tokens.next().content
		err = engine.compileTerm()
		if err != nil {
			return err
		}
		if operation, ok := binaryOperations[op]; ok {
			engine.writer.WriteArithmetic(operation)
			continue
		}
		engine.writer.WriteCall(binaryCalls[op], 2)
	}
	return nil
}

// term: integerConstant | stringConstant | keywordConstant | varName | varName '[' expression ']' |
// subroutineCall | '(' expression ')' | unaryOp term
func (engine *CompilationEngine) compileTerm() error {
	token := engine.tokens.next()
	if token == nil {
		return engine.makeError("term", nil)
	}
	switch token.tp {
	case IntegerConstantTP:
		value, err := strconv.Atoi(token.content)
		if err != nil {
			return engine.makeError("integer constant", token)
		}
		engine.writer.WritePush(ConstantSegment, value)
		return nil
	case StringConstantTP:
		engine.compileStringConstant(token.content)
		return nil
	case KeywordTP:
		return engine.compileKeywordConstant(token)
	case IdentifierTP:
		return engine.compileIdentifierTerm(token)
	}
	switch token.content {
	case "(":
		err := engine.compileExpression()
		if err != nil {
			return err
		}
		_, err = engine.expectSymbol(")")
		return err
	case "-":
		// Unary operators bind to one term only: -a+b is (-a)+b.
		err := engine.compileTerm()
		if err != nil {
			return err
		}
		engine.writer.WriteArithmetic(NegOperation)
		return nil
	case "~":
		err := engine.compileTerm()
		if err != nil {
			return err
		}
		engine.writer.WriteArithmetic(NotOperation)
		return nil
	}
	return engine.makeError("term", token)
}

// push constant len
// call String.new 1
// push constant c        (for every character)
// call String.appendChar 2
func (engine *CompilationEngine) compileStringConstant(str string) {
	engine.writer.WritePush(ConstantSegment, len(str))
	engine.writer.WriteCall(stringNew, 1)
	for i := 0; i < len(str); i++ {
		engine.writer.WritePush(ConstantSegment, int(str[i]))
		engine.writer.WriteCall(stringAppendChar, 2)
	}
}

// true is -1 (not 0), false and null are 0 and this is the object pointer.
func (engine *CompilationEngine) compileKeywordConstant(token *Token) error {
	switch token.content {
	case "true":
		engine.writer.WritePush(ConstantSegment, 0)
		engine.writer.WriteArithmetic(NotOperation)
	case "false", "null":
		engine.writer.WritePush(ConstantSegment, 0)
	case "this":
		engine.writer.WritePush(PointerSegment, 0)
	default:
		return engine.makeError("term", token)
	}
	return nil
}

func (engine *CompilationEngine) compileIdentifierTerm(nameToken *Token) error {
	switch {
	case engine.peekSymbol("["):
		base, err := engine.resolve(nameToken)
		if err != nil {
			return err
		}
		err = engine.compileArrayAddress(base)
		if err != nil {
			return err
		}
		engine.writer.WritePop(PointerSegment, 1)
		engine.writer.WritePush(ThatSegment, 0)
		return nil
	case engine.peekSymbol("(", "."):
		return engine.compileSubroutineCall(nameToken)
	}
	desc, err := engine.resolve(nameToken)
	if err != nil {
		return err
	}
	engine.writer.WritePush(desc.Kind.Segment(), desc.Index)
	return nil
}

type callKind int

const (
	// LocalMethodCall: `name(args)`, a method of the current class called on this.
	LocalMethodCall callKind = iota
	// ExternalMethodCall: `varName.name(args)`, a method called on the object held by varName.
	ExternalMethodCall
	// PlainFunctionCall: `ClassName.name(args)`, a function or constructor without receiver.
	PlainFunctionCall
)

type callTarget struct {
	kind      callKind
	className string
	routine   string
	// receiver is set for ExternalMethodCall.
	receiver *SymbolDesc
}

func (target *callTarget) name() string {
	return target.className + "." + target.routine
}

// resolveCallTarget decides the call form once per call site. qualifier is empty for `name(args)`.
func (engine *CompilationEngine) resolveCallTarget(qualifier, routine string) *callTarget {
	if qualifier == "" {
		return &callTarget{kind: LocalMethodCall, className: engine.className, routine: routine}
	}
	if desc, ok := engine.symbolTable.Resolve(qualifier); ok {
		return &callTarget{kind: ExternalMethodCall, className: desc.Type, routine: routine, receiver: desc}
	}
	return &callTarget{kind: PlainFunctionCall, className: qualifier, routine: routine}
}

// subroutineCall: subroutineName '(' expressionList ')' |
// (className | varName) '.' subroutineName '(' expressionList ')'
// firstToken is already consumed.
func (engine *CompilationEngine) compileSubroutineCall(firstToken *Token) error {
	qualifier, routine := "", firstToken.content
	if engine.peekSymbol(".") {
		engine.tokens.next()
		routineToken, err := engine.expectIdentifier()
		if err != nil {
			return err
		}
		qualifier, routine = firstToken.content, routineToken.content
	}
	target := engine.resolveCallTarget(qualifier, routine)
	_, err := engine.expectSymbol("(")
	if err != nil {
		return err
	}
	argCount := 0
	switch target.kind {
	case LocalMethodCall:
		engine.writer.WritePush(PointerSegment, 0)
		argCount++
	case ExternalMethodCall:
		engine.writer.WritePush(target.receiver.Kind.Segment(), target.receiver.Index)
		argCount++
	}
	n, err := engine.compileExpressionList()
	if err != nil {
		return err
	}
	_, err = engine.expectSymbol(")")
	if err != nil {
		return err
	}
	engine.writer.WriteCall(target.name(), argCount+n)
	return nil
}

// expressionList: (expression (',' expression)*)?
// It returns the number of expressions compiled.
func (engine *CompilationEngine) compileExpressionList() (int, error) {
	if engine.peekSymbol(")") {
		return 0, nil
	}
	count := 0
	for {
		err := engine.compileExpression()
		if err != nil {
			return 0, err
		}
		count++
		if !engine.peekSymbol(",") {
			return count, nil
		}
		engine.tokens.next()
	}
}
