package internal

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"testing"
	"tlog.app/go/errors"
)

func TestVMWriter_Commands(t *testing.T) {
	buf := &bytes.Buffer{}
	writer := NewVMWriter(buf)
	writer.Function("Main.main", 2)
	writer.Push(ConstantSegment, 7)
	writer.Pop(LocalSegment, 1)
	writer.Arithmetic(ShiftLeftOp)
	writer.Label("while_check_0")
	writer.IfGoto("while_exit_0")
	writer.Goto("while_check_0")
	writer.Call("Math.multiply", 2)
	writer.Return()
	assert.Equal(t, 9, writer.Lines())
	// Nothing reaches the target before Flush.
	assert.Equal(t, 0, buf.Len())
	assert.NoError(t, writer.Flush())
	assert.Equal(t, `function Main.main 2
push constant 7
pop local 1
shiftleft
label while_check_0
if-goto while_exit_0
goto while_check_0
call Math.multiply 2
return
`, buf.String())
}

type failingWriter struct{}

var errWriteFailed = errors.New("disk full")

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errWriteFailed
}

func TestVMWriter_StickyError(t *testing.T) {
	writer := NewVMWriter(failingWriter{})
	// Enough output to overflow the buffer so the error shows up before Flush.
	for i := 0; i < 1000; i++ {
		writer.Push(ConstantSegment, i)
	}
	writer.Return()
	err := writer.Flush()
	assert.True(t, errors.Is(err, errWriteFailed))
	assert.Equal(t, err, writer.Flush())
}
