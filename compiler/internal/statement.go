package internal

import (
	"fmt"
)

// statements: statement*, ended by the first token that starts no statement.
func (engine *CompilationEngine) compileStatements() (err error) {
	for {
		token := engine.tokens.peek()
		if token == nil || token.tp != KeywordTP {
			return nil
		}
		switch token.content {
		case "let":
			err = engine.compileLet()
		case "if":
			err = engine.compileIf()
		case "while":
			err = engine.compileWhile()
		case "do":
			err = engine.compileDo()
		case "return":
			err = engine.compileReturn()
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// let: 'let' varName ('[' expression ']')? '=' expression ';'
//
// For a plain variable, the value is popped straight into its segment. For an array element:
// push base
// index expression vm code
// add
// value expression vm code
// pop temp 0
// pop pointer 1
// push temp 0
// pop that 0
// The address is pinned to that only after the value is computed, since the value may use that itself.
func (engine *CompilationEngine) compileLet() error {
	_, err := engine.expectKeyword("let")
	if err != nil {
		return err
	}
	nameToken, err := engine.expectIdentifier()
	if err != nil {
		return err
	}
	target, err := engine.resolve(nameToken)
	if err != nil {
		return err
	}
	isArray := engine.peekSymbol("[")
	if isArray {
		err = engine.compileArrayAddress(target)
		if err != nil {
			return err
		}
	}
	_, err = engine.expectSymbol("=")
	if err != nil {
		return err
	}
	err = engine.compileExpression()
	if err != nil {
		return err
	}
	_, err = engine.expectSymbol(";")
	if err != nil {
		return err
	}
	if !isArray {
		engine.writer.WritePop(target.Kind.Segment(), target.Index)
		return nil
	}
	engine.writer.WritePop(TempSegment, 0)
	engine.writer.WritePop(PointerSegment, 1)
	engine.writer.WritePush(TempSegment, 0)
	engine.writer.WritePop(ThatSegment, 0)
	return nil
}

// compileArrayAddress parses '[' expression ']' and leaves base + index on the stack.
func (engine *CompilationEngine) compileArrayAddress(base *SymbolDesc) error {
	_, err := engine.expectSymbol("[")
	if err != nil {
		return err
	}
	engine.writer.WritePush(base.Kind.Segment(), base.Index)
	err = engine.compileExpression()
	if err != nil {
		return err
	}
	_, err = engine.expectSymbol("]")
	if err != nil {
		return err
	}
	engine.writer.WriteArithmetic(AddOperation)
	return nil
}

// if: 'if' '(' expression ')' '{' statements '}' ('else' '{' statements '}')?
//
// condition vm code
// if-goto IF_TRUEn
// goto IF_FALSEn
// label IF_TRUEn
// true statements vm code
// goto IF_ENDn        (only with else)
// label IF_FALSEn
// else statements vm code
// label IF_ENDn       (only with else)
func (engine *CompilationEngine) compileIf() error {
	suffix := engine.ifCounter
	engine.ifCounter++
	trueLabel, falseLabel, endLabel := fmt.Sprintf("IF_TRUE%d", suffix), fmt.Sprintf("IF_FALSE%d", suffix),
		fmt.Sprintf("IF_END%d", suffix)

	_, err := engine.expectKeyword("if")
	if err != nil {
		return err
	}
	err = engine.compileCondition()
	if err != nil {
		return err
	}
	engine.writer.WriteIf(trueLabel)
	engine.writer.WriteGoto(falseLabel)
	engine.writer.WriteLabel(trueLabel)
	err = engine.compileBlock()
	if err != nil {
		return err
	}
	if !engine.peekKeyword("else") {
		engine.writer.WriteLabel(falseLabel)
		return nil
	}
	engine.tokens.next()
	engine.writer.WriteGoto(endLabel)
	engine.writer.WriteLabel(falseLabel)
	err = engine.compileBlock()
	if err != nil {
		return err
	}
	engine.writer.WriteLabel(endLabel)
	return nil
}

// while: 'while' '(' expression ')' '{' statements '}'
//
// label WHILE_EXPn
// condition vm code
// not
// if-goto WHILE_ENDn
// statements vm code
// goto WHILE_EXPn
// label WHILE_ENDn
func (engine *CompilationEngine) compileWhile() error {
	suffix := engine.whileCounter
	engine.whileCounter++
	expLabel, endLabel := fmt.Sprintf("WHILE_EXP%d", suffix), fmt.Sprintf("WHILE_END%d", suffix)

	_, err := engine.expectKeyword("while")
	if err != nil {
		return err
	}
	engine.writer.WriteLabel(expLabel)
	err = engine.compileCondition()
	if err != nil {
		return err
	}
	engine.writer.WriteArithmetic(NotOperation)
	engine.writer.WriteIf(endLabel)
	err = engine.compileBlock()
	if err != nil {
		return err
	}
	engine.writer.WriteGoto(expLabel)
	engine.writer.WriteLabel(endLabel)
	return nil
}

// '(' expression ')'
func (engine *CompilationEngine) compileCondition() error {
	_, err := engine.expectSymbol("(")
	if err != nil {
		return err
	}
	err = engine.compileExpression()
	if err != nil {
		return err
	}
	_, err = engine.expectSymbol(")")
	return err
}

// '{' statements '}'
func (engine *CompilationEngine) compileBlock() error {
	_, err := engine.expectSymbol("{")
	if err != nil {
		return err
	}
	err = engine.compileStatements()
	if err != nil {
		return err
	}
	_, err = engine.expectSymbol("}")
	return err
}

// do: 'do' subroutineCall ';'
// Every subroutine returns a value, the one left by a do call is dropped into temp 0.
func (engine *CompilationEngine) compileDo() error {
	_, err := engine.expectKeyword("do")
	if err != nil {
		return err
	}
	nameToken, err := engine.expectIdentifier()
	if err != nil {
		return err
	}
	if !engine.peekSymbol("(", ".") {
		return engine.makeError(`symbol "(" or "."`, engine.tokens.next())
	}
	err = engine.compileSubroutineCall(nameToken)
	if err != nil {
		return err
	}
	_, err = engine.expectSymbol(";")
	if err != nil {
		return err
	}
	engine.writer.WritePop(TempSegment, 0)
	return nil
}

// return: 'return' expression? ';'
// A bare return still pushes 0 so the caller always has a value to pop.
func (engine *CompilationEngine) compileReturn() error {
	_, err := engine.expectKeyword("return")
	if err != nil {
		return err
	}
	if engine.peekSymbol(";") {
		engine.writer.WritePush(ConstantSegment, 0)
	} else {
		err = engine.compileExpression()
		if err != nil {
			return err
		}
	}
	_, err = engine.expectSymbol(";")
	if err != nil {
		return err
	}
	engine.writer.WriteReturn()
	return nil
}
