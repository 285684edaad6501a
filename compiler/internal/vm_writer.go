package internal

import (
	"bufio"
	"io"
	"strconv"
)

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

type ArithmeticOp string

const (
	AddOp        ArithmeticOp = "add"
	SubOp        ArithmeticOp = "sub"
	NegOp        ArithmeticOp = "neg"
	EqOp         ArithmeticOp = "eq"
	GtOp         ArithmeticOp = "gt"
	LtOp         ArithmeticOp = "lt"
	AndOp        ArithmeticOp = "and"
	OrOp         ArithmeticOp = "or"
	NotOp        ArithmeticOp = "not"
	ShiftLeftOp  ArithmeticOp = "shiftleft"
	ShiftRightOp ArithmeticOp = "shiftright"
)

// VMWriter appends one vm command per line. It trusts its caller: segment names and label
// uniqueness are not validated here. The first write error sticks and is returned by Flush.
type VMWriter struct {
	w     *bufio.Writer
	lines int
	err   error
}

func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{w: bufio.NewWriter(w)}
}

func (writer *VMWriter) Push(segment Segment, index int) {
	writer.writeOutput("push " + string(segment) + " " + strconv.Itoa(index))
}

func (writer *VMWriter) Pop(segment Segment, index int) {
	writer.writeOutput("pop " + string(segment) + " " + strconv.Itoa(index))
}

func (writer *VMWriter) Arithmetic(op ArithmeticOp) {
	writer.writeOutput(string(op))
}

func (writer *VMWriter) Label(name string) {
	writer.writeOutput("label " + name)
}

func (writer *VMWriter) Goto(name string) {
	writer.writeOutput("goto " + name)
}

func (writer *VMWriter) IfGoto(name string) {
	writer.writeOutput("if-goto " + name)
}

func (writer *VMWriter) Call(name string, nArgs int) {
	writer.writeOutput("call " + name + " " + strconv.Itoa(nArgs))
}

func (writer *VMWriter) Function(name string, nLocals int) {
	writer.writeOutput("function " + name + " " + strconv.Itoa(nLocals))
}

func (writer *VMWriter) Return() {
	writer.writeOutput("return")
}

// Lines is the number of commands written so far.
func (writer *VMWriter) Lines() int {
	return writer.lines
}

func (writer *VMWriter) Flush() error {
	if writer.err != nil {
		return writer.err
	}
	return writer.w.Flush()
}

func (writer *VMWriter) writeOutput(output string) {
	if writer.err != nil {
		return
	}
	writer.lines++
	if _, err := writer.w.WriteString(output); err != nil {
		writer.err = err
		return
	}
	writer.err = writer.w.WriteByte('\n')
}
