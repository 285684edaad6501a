package internal

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// VMChecker reads vm code and validates it line by line. It knows the full vm command set:
// Memory access commands: push|pop segment index, where segment is one of
// argument, local, static, constant, this, that, pointer, temp.
// Arithmetic commands: add, sub, neg, eq, gt, lt, and, or, not, shiftleft, shiftright.
// Program flow commands: label name, if-goto name, goto name.
// Function calling commands: function name nLocals, call name nArgs, return.
//
// Labels are scoped to the function that declares them, so every goto must name a label
// of the same function.

type vmCommand int

const (
	pushCommand vmCommand = iota
	popCommand
	arithmeticCommand
	labelCommand
	ifGotoCommand
	gotoCommand
	functionCommand
	callCommand
	returnCommand
)

var vmCommands = map[string]vmCommand{
	"push":       pushCommand,
	"pop":        popCommand,
	"add":        arithmeticCommand,
	"sub":        arithmeticCommand,
	"neg":        arithmeticCommand,
	"eq":         arithmeticCommand,
	"gt":         arithmeticCommand,
	"lt":         arithmeticCommand,
	"and":        arithmeticCommand,
	"or":         arithmeticCommand,
	"not":        arithmeticCommand,
	"shiftleft":  arithmeticCommand,
	"shiftright": arithmeticCommand,
	"label":      labelCommand,
	"if-goto":    ifGotoCommand,
	"goto":       gotoCommand,
	"function":   functionCommand,
	"call":       callCommand,
	"return":     returnCommand,
}

// segmentLimits holds the largest index of the bounded segments, -1 means unbounded.
var segmentLimits = map[Segment]int{
	ConstantSegment: MaxInt,
	ArgumentSegment: -1,
	LocalSegment:    -1,
	StaticSegment:   -1,
	ThisSegment:     -1,
	ThatSegment:     -1,
	PointerSegment:  1,
	TempSegment:     7,
}

var labelFormat = regexp.MustCompile(`^[a-zA-Z_.:][0-9a-zA-Z_.$:]*$`)

// VMCall is one call command found by the checker.
type VMCall struct {
	Caller string
	Name   string
	Args   int
	Line   int
}

type VMChecker struct {
	fileName        string
	lineCounter     int
	currentFunction string
	functions       map[string]int
	calls           []VMCall
	labels          map[string]bool
	// gotos maps a jump target to the first line referencing it.
	gotos map[string]int
}

func NewVMChecker(fileName string) *VMChecker {
	return &VMChecker{
		fileName:  fileName,
		functions: map[string]int{},
		labels:    map[string]bool{},
		gotos:     map[string]int{},
	}
}

// Check validates every line of rd. The first problem found is returned and wraps ErrVMCheck.
func (checker *VMChecker) Check(rd io.Reader) error {
	reader := bufio.NewReader(rd)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return errors.Wrap(err, "read %v", checker.fileName)
		}
		if len(line) > 0 {
			checker.lineCounter++
			if perr := checker.parseLine(line); perr != nil {
				return perr
			}
		}
		if err == io.EOF {
			break
		}
	}
	if err := checker.finishFunction(); err != nil {
		return err
	}
	tlog.V("vmcheck").Printw("checked", "file", checker.fileName, "lines", checker.lineCounter, "functions", len(checker.functions))
	return nil
}

// Functions maps every declared function to its local count.
func (checker *VMChecker) Functions() map[string]int {
	return checker.functions
}

// Calls lists the call commands in file order.
func (checker *VMChecker) Calls() []VMCall {
	return checker.calls
}

// getNextToken returns the next space separated token and the rest of the line.
// An empty token means the line is exhausted.
func (checker *VMChecker) getNextToken(line []byte) (string, []byte) {
	line = bytes.TrimSpace(line)
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v' {
			return string(line[:i]), line[i:]
		}
	}
	return string(line), nil
}

func (checker *VMChecker) parseLine(line []byte) (err error) {
	token, line := checker.getNextToken(line)
	if len(token) == 0 || isVMComment(token) {
		return nil
	}
	command, exist := vmCommands[token]
	if !exist {
		return checker.makeError("unknown command", token)
	}
	if command != functionCommand && checker.currentFunction == "" {
		return checker.makeError("command outside of a function", token)
	}
	switch command {
	case pushCommand, popCommand:
		line, err = checker.parseMemoryAccess(command, line)
	case arithmeticCommand, returnCommand:
	case labelCommand:
		line, err = checker.parseLabel(line)
	case ifGotoCommand, gotoCommand:
		line, err = checker.parseGoto(line)
	case functionCommand:
		line, err = checker.parseFunction(line)
	case callCommand:
		line, err = checker.parseCall(line)
	}
	if err != nil {
		return err
	}
	return checker.parseRemainContent(line)
}

func (checker *VMChecker) parseMemoryAccess(command vmCommand, line []byte) ([]byte, error) {
	token, line := checker.getNextToken(line)
	segment := Segment(token)
	limit, exist := segmentLimits[segment]
	if !exist {
		return nil, checker.makeError("unknown segment", token)
	}
	if command == popCommand && segment == ConstantSegment {
		return nil, checker.makeError("pop to constant segment", token)
	}
	index, line, err := checker.getIntegerValue(line)
	if err != nil {
		return nil, err
	}
	if limit >= 0 && index > limit {
		return nil, checker.makeError("index out of segment", strconv.Itoa(index))
	}
	return line, nil
}

func (checker *VMChecker) getIntegerValue(line []byte) (int, []byte, error) {
	token, line := checker.getNextToken(line)
	if len(token) == 0 {
		return -1, nil, checker.makeError("missing integer", token)
	}
	ret, err := strconv.Atoi(token)
	if err != nil || ret < 0 {
		return -1, nil, checker.makeError("bad integer", token)
	}
	return ret, line, nil
}

func (checker *VMChecker) parseLabelName(line []byte) ([]byte, string, error) {
	token, line := checker.getNextToken(line)
	if !labelFormat.MatchString(token) {
		return nil, "", checker.makeError("bad name", token)
	}
	return line, token, nil
}

func (checker *VMChecker) parseLabel(line []byte) ([]byte, error) {
	line, label, err := checker.parseLabelName(line)
	if err != nil {
		return nil, err
	}
	if checker.labels[label] {
		return nil, checker.makeError("duplicate label", label)
	}
	checker.labels[label] = true
	return line, nil
}

func (checker *VMChecker) parseGoto(line []byte) ([]byte, error) {
	line, label, err := checker.parseLabelName(line)
	if err != nil {
		return nil, err
	}
	if _, ok := checker.gotos[label]; !ok {
		checker.gotos[label] = checker.lineCounter
	}
	return line, nil
}

func (checker *VMChecker) parseFunction(line []byte) ([]byte, error) {
	line, name, err := checker.parseLabelName(line)
	if err != nil {
		return nil, err
	}
	nLocals, line, err := checker.getIntegerValue(line)
	if err != nil {
		return nil, err
	}
	if err = checker.finishFunction(); err != nil {
		return nil, err
	}
	if _, ok := checker.functions[name]; ok {
		return nil, checker.makeError("duplicate function", name)
	}
	checker.functions[name] = nLocals
	checker.currentFunction = name
	return line, nil
}

func (checker *VMChecker) parseCall(line []byte) ([]byte, error) {
	line, name, err := checker.parseLabelName(line)
	if err != nil {
		return nil, err
	}
	nArgs, line, err := checker.getIntegerValue(line)
	if err != nil {
		return nil, err
	}
	checker.calls = append(checker.calls, VMCall{Caller: checker.currentFunction, Name: name, Args: nArgs, Line: checker.lineCounter})
	return line, nil
}

// finishFunction resolves the jumps of the current function and resets the label scope.
func (checker *VMChecker) finishFunction() error {
	undefined, first := "", 0
	for label, line := range checker.gotos {
		if !checker.labels[label] && (undefined == "" || line < first) {
			undefined, first = label, line
		}
	}
	if undefined != "" {
		return errors.Wrap(ErrVMCheck, "%v:%d: jump to undefined label %q in %v", checker.fileName, first, undefined, checker.currentFunction)
	}
	checker.labels = map[string]bool{}
	checker.gotos = map[string]int{}
	return nil
}

func (checker *VMChecker) parseRemainContent(line []byte) error {
	remain := bytes.TrimSpace(line)
	if len(remain) == 0 || isVMComment(string(remain)) {
		return nil
	}
	return checker.makeError("unexpected content", string(remain))
}

func (checker *VMChecker) makeError(msg, near string) error {
	return errors.Wrap(ErrVMCheck, "%v:%d: %s near %q", checker.fileName, checker.lineCounter, msg, near)
}

func isVMComment(s string) bool {
	return len(s) >= 2 && s[0] == '/' && s[1] == '/'
}
