package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVMWriter_Write(t *testing.T) {
	writer := NewVMWriter()
	writer.WriteFunction("Main.main", 2)
	writer.WritePush(ConstantSegment, 7)
	writer.WritePop(LocalSegment, 1)
	writer.WritePush(ThisSegment, 0)
	writer.WritePop(ThatSegment, 0)
	writer.WriteArithmetic(NegOperation)
	writer.WriteLabel("WHILE_EXP0")
	writer.WriteIf("WHILE_END0")
	writer.WriteGoto("WHILE_EXP0")
	writer.WriteCall("Math.multiply", 2)
	writer.WriteReturn()
	expected := "function Main.main 2\n" +
		"push constant 7\n" +
		"pop local 1\n" +
		"push this 0\n" +
		"pop that 0\n" +
		"neg\n" +
		"label WHILE_EXP0\n" +
		"if-goto WHILE_END0\n" +
		"goto WHILE_EXP0\n" +
		"call Math.multiply 2\n" +
		"return\n"
	assert.Equal(t, expected, writer.String())

	writer.Reset()
	assert.Equal(t, "", writer.String())
	writer.WriteArithmetic(NotOperation)
	assert.Equal(t, "not\n", writer.String())
}

func TestVMWriter_Arithmetic(t *testing.T) {
	testData := []struct {
		op       Operation
		expected string
	}{
		{op: AddOperation, expected: "add\n"},
		{op: SubOperation, expected: "sub\n"},
		{op: NegOperation, expected: "neg\n"},
		{op: EqOperation, expected: "eq\n"},
		{op: GtOperation, expected: "gt\n"},
		{op: LtOperation, expected: "lt\n"},
		{op: AndOperation, expected: "and\n"},
		{op: OrOperation, expected: "or\n"},
		{op: NotOperation, expected: "not\n"},
	}
	writer := NewVMWriter()
	for _, data := range testData {
		writer.Reset()
		writer.WriteArithmetic(data.op)
		assert.Equal(t, data.expected, writer.String())
	}
}
