package vmcode

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xiaobogaga/hack/util"
)

// A reader for vm code, the compiler's output language.

// There are four kinds of vm commands, they are:
// * Arithmetic commands: add, sub, neg, eq, gt, lt, and, or, not.
// * Memory access commands: push segment index, pop segment index, where segment can be
//   argument, local, static, constant, this, that, pointer, temp.
// * Program flow commands: label label_name, if-goto label_name, goto label_name.
// * Function calling commands: function func_name nLocals, call func_name nArgs, return.
//
// Keywords are lower case, fields are separated by spaces, `//` starts a comment.

type CommandType int

const (
	PushCommand CommandType = iota
	PopCommand
	ArithmeticCommand
	LabelCommand
	IfGotoCommand
	GotoCommand
	FunctionCommand
	CallCommand
	ReturnCommand
)

var keyWordsMap = map[string]CommandType{
	"push":     PushCommand,
	"pop":      PopCommand,
	"add":      ArithmeticCommand,
	"sub":      ArithmeticCommand,
	"neg":      ArithmeticCommand,
	"eq":       ArithmeticCommand,
	"gt":       ArithmeticCommand,
	"lt":       ArithmeticCommand,
	"and":      ArithmeticCommand,
	"or":       ArithmeticCommand,
	"not":      ArithmeticCommand,
	"label":    LabelCommand,
	"if-goto":  IfGotoCommand,
	"goto":     GotoCommand,
	"function": FunctionCommand,
	"call":     CallCommand,
	"return":   ReturnCommand,
}

// segmentSizes bounds the index of the fixed size segments, -1 means unbounded.
var segmentSizes = map[string]int{
	"argument": -1,
	"local":    -1,
	"static":   -1,
	"constant": -1,
	"this":     -1,
	"that":     -1,
	"pointer":  2,
	"temp":     8,
}

// Command is one parsed vm line.
type Command struct {
	Type CommandType
	// Op is the command keyword: push, add, if-goto, ...
	Op string
	// Segment and Index are set for push and pop.
	Segment string
	Index   int
	// Name is the label of label/goto/if-goto and the function name of function/call.
	Name string
	// N is nLocals for function and nArgs for call.
	N    int
	Line int
}

// String returns the command in its canonical text form.
func (c *Command) String() string {
	switch c.Type {
	case PushCommand, PopCommand:
		return fmt.Sprintf("%s %s %d", c.Op, c.Segment, c.Index)
	case LabelCommand, IfGotoCommand, GotoCommand:
		return c.Op + " " + c.Name
	case FunctionCommand, CallCommand:
		return fmt.Sprintf("%s %s %d", c.Op, c.Name, c.N)
	}
	return c.Op
}

type Reader struct {
	lineCounter int
}

func NewReader() *Reader {
	return &Reader{}
}

// Parse reads all commands from rd. Blank lines and comments are skipped.
func Parse(rd io.Reader) ([]*Command, error) {
	return NewReader().Parse(rd)
}

// ParseString is Parse over a string, mostly used by tests.
func ParseString(code string) ([]*Command, error) {
	return Parse(strings.NewReader(code))
}

func (reader *Reader) Parse(rd io.Reader) (commands []*Command, err error) {
	bufReader := bufio.NewReader(rd)
	reader.lineCounter = 0
	for {
		line, readErr := bufReader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, readErr
		}
		reader.lineCounter++
		command, err := reader.ParseLine(line)
		if err != nil {
			return nil, err
		}
		if command != nil {
			commands = append(commands, command)
		}
		if readErr == io.EOF {
			return commands, nil
		}
	}
}

// ParseLine parses one line. It returns nil without error for blank and comment lines.
func (reader *Reader) ParseLine(line []byte) (*Command, error) {
	token, line := reader.getNextToken(line)
	if len(token) == 0 || strings.HasPrefix(token, "//") {
		return nil, nil
	}
	commandType, exist := keyWordsMap[token]
	if !exist {
		return nil, reader.makeError(token)
	}
	command := &Command{Type: commandType, Op: token, Line: reader.lineCounter}
	var err error
	switch commandType {
	case PushCommand, PopCommand:
		line, err = reader.parseMemoryAccess(command, line)
	case LabelCommand, IfGotoCommand, GotoCommand:
		line, err = reader.parseLabelName(command, line)
	case FunctionCommand, CallCommand:
		line, err = reader.parseFunctionOrCall(command, line)
	}
	if err == nil {
		err = reader.parseRemainContent(line)
	}
	if err != nil {
		return nil, err
	}
	return command, nil
}

// getNextToken returns the next space separated token and the rest of the line.
func (reader *Reader) getNextToken(line []byte) (string, []byte) {
	line = bytes.TrimSpace(line)
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v' {
			return string(line[:i]), line[i:]
		}
	}
	return string(line), nil
}

func (reader *Reader) parseMemoryAccess(command *Command, line []byte) ([]byte, error) {
	segment, line := reader.getNextToken(line)
	size, exist := segmentSizes[segment]
	if !exist {
		return nil, reader.makeError(segment)
	}
	if command.Type == PopCommand && segment == "constant" {
		return nil, reader.makeError("pop constant")
	}
	index, line, err := reader.getIntegerValue(line)
	if err != nil {
		return nil, err
	}
	if size >= 0 && index >= size {
		return nil, reader.makeError(fmt.Sprintf("%s %d", segment, index))
	}
	command.Segment, command.Index = segment, index
	return line, nil
}

func (reader *Reader) parseLabelName(command *Command, line []byte) ([]byte, error) {
	name, line := reader.getNextToken(line)
	if !util.IsLabelName(name) {
		return nil, reader.makeError(name)
	}
	command.Name = name
	return line, nil
}

func (reader *Reader) parseFunctionOrCall(command *Command, line []byte) ([]byte, error) {
	line, err := reader.parseLabelName(command, line)
	if err != nil {
		return nil, err
	}
	n, line, err := reader.getIntegerValue(line)
	if err != nil {
		return nil, err
	}
	command.N = n
	return line, nil
}

func (reader *Reader) getIntegerValue(line []byte) (int, []byte, error) {
	token, line := reader.getNextToken(line)
	if !util.IsNumberString(token) {
		return -1, nil, reader.makeError(token)
	}
	ret, err := strconv.Atoi(token)
	if err != nil {
		return -1, nil, reader.makeError(token)
	}
	return ret, line, nil
}

// parseRemainContent allows only a trailing comment after a command.
func (reader *Reader) parseRemainContent(line []byte) error {
	remain := bytes.TrimSpace(line)
	if len(remain) == 0 || bytes.HasPrefix(remain, []byte("//")) {
		return nil
	}
	return reader.makeError(string(remain))
}

func (reader *Reader) makeError(near string) error {
	return fmt.Errorf("SyntaxError: syntax error near %q at line %d", near, reader.lineCounter)
}

// Verify checks a parsed program the way a translator would need it: every command lives inside
// a function, labels are unique within their function and every jump targets a label of
// the same function.
func Verify(commands []*Command) error {
	var (
		function string
		labels   map[string]bool
		jumps    []*Command
	)
	checkJumps := func() error {
		for _, jump := range jumps {
			if !labels[jump.Name] {
				return fmt.Errorf("VerifyError: %s at line %d jumps to undefined label in %s", jump, jump.Line, function)
			}
		}
		return nil
	}
	for _, command := range commands {
		switch command.Type {
		case FunctionCommand:
			err := checkJumps()
			if err != nil {
				return err
			}
			function, labels, jumps = command.Name, map[string]bool{}, nil
			continue
		}
		if function == "" {
			return fmt.Errorf("VerifyError: %s at line %d is outside of any function", command, command.Line)
		}
		switch command.Type {
		case LabelCommand:
			if labels[command.Name] {
				return fmt.Errorf("VerifyError: label %s defined twice in %s at line %d", command.Name, function, command.Line)
			}
			labels[command.Name] = true
		case IfGotoCommand, GotoCommand:
			jumps = append(jumps, command)
		}
	}
	return checkJumps()
}
