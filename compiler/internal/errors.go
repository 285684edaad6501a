package internal

import (
	"fmt"

	"tlog.app/go/errors"
)

var (
	ErrSyntax               = errors.New("syntax error")
	ErrUnknownSymbol        = errors.New("unknown symbol")
	ErrUnsupportedConstruct = errors.New("unsupported construct")
	ErrDuplicateSymbol      = errors.New("duplicate symbol")
	ErrTokenKind            = errors.New("token kind mismatch")
	ErrVMCheck              = errors.New("vm check")
)

// CompileError is the first defect found in a compilation unit. It carries the
// construct being recognized and the token that did not fit.
type CompileError struct {
	Kind       error
	Construct  string
	Token      Token
	AtEOF      bool
	Class      string
	Subroutine string
	Detail     string
}

func (e *CompileError) Error() string {
	where := e.Class
	if e.Subroutine != "" {
		where += "." + e.Subroutine
	}
	near := e.Token.String()
	line := e.Token.Line()
	if e.AtEOF {
		near = "end of input"
	}
	msg := fmt.Sprintf("%v: expected %s, got %s at line %d", e.Kind, e.Construct, near, line)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if where != "" {
		msg += " (in " + where + ")"
	}
	return msg
}

func (e *CompileError) Unwrap() error { return e.Kind }
