package internal

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"tlog.app/go/errors"
)

func newCheckerInFunction(t *testing.T) *VMChecker {
	checker := NewVMChecker("test.vm")
	require.NoError(t, checker.parseLine([]byte("function Test.f 2")))
	return checker
}

func TestVMChecker_Push(t *testing.T) {
	lines := []string{
		"push argument 1",
		"push local 2",
		"push static 1",
		"push constant 32767",
		"push this 1",
		"push that 2",
		"push pointer 0",
		"push pointer 1",
		"push temp 0",
		"push temp 7",
		"push  local   3   // trailing comment",
	}
	checker := newCheckerInFunction(t)
	for _, l := range lines {
		err := checker.parseLine([]byte(l))
		assert.Nil(t, err, l)
	}
}

func TestVMChecker_Pop(t *testing.T) {
	lines := []string{
		"pop argument 1",
		"pop local 2",
		"pop static 1",
		"pop this 1",
		"pop that 2",
		"pop pointer 1",
		"pop temp 7",
	}
	checker := newCheckerInFunction(t)
	for _, l := range lines {
		err := checker.parseLine([]byte(l))
		assert.Nil(t, err, l)
	}
}

func TestVMChecker_Arithmetic_Commands(t *testing.T) {
	lines := []string{
		"add",
		"sub",
		"neg",
		"eq",
		"gt",
		"lt",
		"and",
		"or",
		"not",
		"shiftleft",
		"shiftright",
		"// just a comment",
		"",
		"   ",
	}
	checker := newCheckerInFunction(t)
	for _, l := range lines {
		err := checker.parseLine([]byte(l))
		assert.Nil(t, err, l)
	}
}

func TestVMChecker_BadLines(t *testing.T) {
	lines := []string{
		"pop constant 1",
		"push pointer 2",
		"push temp 8",
		"push constant 32768",
		"push local -1",
		"push local",
		"push local x",
		"push heap 1",
		"jump somewhere",
		"add 1",
		"call",
		"call f",
		"function 1f 0",
		"label 9lives",
		"return now",
	}
	for _, l := range lines {
		checker := newCheckerInFunction(t)
		err := checker.parseLine([]byte(l))
		assert.True(t, errors.Is(err, ErrVMCheck), "%q: %v", l, err)
	}
}

func TestVMChecker_Check(t *testing.T) {
	program := `// generated
function Main.main 1
push constant 0
pop local 0
label loop
push local 0
push constant 10
lt
not
if-goto done
push local 0
call Output.printInt 1
pop temp 0
push local 0
push constant 1
add
pop local 0
goto loop
label done
push constant 0
return
function Main.other 0
label loop
goto loop
call Main.main 0
return`
	checker := NewVMChecker("Main.vm")
	require.NoError(t, checker.Check(strings.NewReader(program)))
	assert.Equal(t, map[string]int{"Main.main": 1, "Main.other": 0}, checker.Functions())
	assert.Equal(t, []VMCall{
		{Caller: "Main.main", Name: "Output.printInt", Args: 1, Line: 12},
		{Caller: "Main.other", Name: "Main.main", Args: 0, Line: 25},
	}, checker.Calls())
}

func TestVMChecker_CheckErrors(t *testing.T) {
	testData := []struct {
		name    string
		program string
		line    string
	}{
		{
			name:    "command before function",
			program: "push constant 1\nfunction A.f 0\nreturn\n",
			line:    "test.vm:1:",
		},
		{
			name:    "duplicate function",
			program: "function A.f 0\nreturn\nfunction A.f 0\nreturn\n",
			line:    "test.vm:3:",
		},
		{
			name:    "duplicate label",
			program: "function A.f 0\nlabel x\nlabel x\nreturn\n",
			line:    "test.vm:3:",
		},
		{
			name:    "goto into another function",
			program: "function A.f 0\nlabel x\nreturn\nfunction A.g 0\ngoto x\nreturn\n",
			line:    "test.vm:5:",
		},
		{
			name:    "undefined label at end of input",
			program: "function A.f 0\nif-goto nowhere\nreturn",
			line:    "test.vm:2:",
		},
	}
	for _, data := range testData {
		checker := NewVMChecker("test.vm")
		err := checker.Check(strings.NewReader(data.program))
		require.Error(t, err, data.name)
		assert.True(t, errors.Is(err, ErrVMCheck), data.name)
		assert.Contains(t, err.Error(), data.line, data.name)
	}
}
