package internal

import (
	"fmt"
	"strings"
)

// VMWriter appends one line of vm code per call. It doesn't validate operands, the
// CompilationEngine is responsible for emitting legal code.

type Segment string

const (
	ConstantSegment Segment = "constant"
	ArgumentSegment Segment = "argument"
	LocalSegment    Segment = "local"
	StaticSegment   Segment = "static"
	ThisSegment     Segment = "this"
	ThatSegment     Segment = "that"
	PointerSegment  Segment = "pointer"
	TempSegment     Segment = "temp"
)

type Operation string

const (
	AddOperation Operation = "add"
	SubOperation Operation = "sub"
	NegOperation Operation = "neg"
	EqOperation  Operation = "eq"
	GtOperation  Operation = "gt"
	LtOperation  Operation = "lt"
	AndOperation Operation = "and"
	OrOperation  Operation = "or"
	NotOperation Operation = "not"
)

type VMWriter struct {
	output strings.Builder
}

func NewVMWriter() *VMWriter {
	return &VMWriter{}
}

func (writer *VMWriter) WriteArithmetic(op Operation) {
	writer.writeOutput(string(op))
}

func (writer *VMWriter) WriteCall(name string, argCount int) {
	writer.writeOutput(fmt.Sprintf("call %s %d", name, argCount))
}

func (writer *VMWriter) WriteFunction(name string, localCount int) {
	writer.writeOutput(fmt.Sprintf("function %s %d", name, localCount))
}

func (writer *VMWriter) WriteLabel(label string) {
	writer.writeOutput("label " + label)
}

// WriteIf jumps to label when the popped value is not zero.
func (writer *VMWriter) WriteIf(label string) {
	writer.writeOutput("if-goto " + label)
}

func (writer *VMWriter) WriteGoto(label string) {
	writer.writeOutput("goto " + label)
}

func (writer *VMWriter) WritePush(segment Segment, index int) {
	writer.writeOutput(fmt.Sprintf("push %s %d", segment, index))
}

func (writer *VMWriter) WritePop(segment Segment, index int) {
	writer.writeOutput(fmt.Sprintf("pop %s %d", segment, index))
}

func (writer *VMWriter) WriteReturn() {
	writer.writeOutput("return")
}

func (writer *VMWriter) writeOutput(output string) {
	writer.output.WriteString(output)
	writer.output.WriteByte('\n')
}

// String returns all code written so far.
func (writer *VMWriter) String() string {
	return writer.output.String()
}

func (writer *VMWriter) Reset() {
	writer.output.Reset()
}
