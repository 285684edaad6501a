package internal

import (
	"fmt"
)

// expression:     term (op term)*
// term:           integerConstant | stringConstant | keywordConstant | varName |
//                 varName '[' expression ']' | subroutineCall | '(' expression ')' | unaryOp term
// subroutineCall: subroutineName '(' expressionList ')' |
//                 (className | varName) '.' subroutineName '(' expressionList ')'
// expressionList: (expression (',' expression)*)?

// binaryOps has the single instruction operators, * and / are library calls.
var binaryOps = map[byte]ArithmeticOp{
	'+': AddOp,
	'-': SubOp,
	'&': AndOp,
	'|': OrOp,
	'<': LtOp,
	'>': GtOp,
	'=': EqOp,
}

var libraryOps = map[byte]string{
	'*': "Math.multiply",
	'/': "Math.divide",
}

var unaryOps = map[byte]ArithmeticOp{
	'-': NegOp,
	'~': NotOp,
	'^': ShiftLeftOp,
	'#': ShiftRightOp,
}

// compileExpression has no precedence: operators apply in the order they appear,
// so a + b * c is (a + b) * c.
func (t *Translator) compileExpression() error {
	if err := t.compileTerm(); err != nil {
		return err
	}
	for !t.eof && t.current.Type() == SymbolTP {
		op, _ := t.current.Symbol()
		arithmetic, isBinary := binaryOps[op]
		routine, isLibrary := libraryOps[op]
		if !isBinary && !isLibrary {
			break
		}
		if err := t.advance(); err != nil {
			return err
		}
		if err := t.compileTerm(); err != nil {
			return err
		}
		if isLibrary {
			t.writer.Call(routine, 2)
		} else {
			t.writer.Arithmetic(arithmetic)
		}
	}
	return nil
}

func (t *Translator) compileTerm() error {
	if t.eof {
		return t.syntaxError("term")
	}
	token := t.current
	switch token.Type() {
	case IntegerTP:
		v, _ := token.IntValue()
		if v < 0 || v > MaxInt {
			return t.errorAt(ErrUnsupportedConstruct, "integer constant", token, "out of range 0..32767")
		}
		t.writer.Push(ConstantSegment, v)
		return t.advance()
	case StringTP:
		s, _ := token.StringValue()
		if err := t.compileStringConstant(s, token); err != nil {
			return err
		}
		return t.advance()
	case KeywordTP:
		return t.compileKeywordConstant(token)
	case SymbolTP:
		c, _ := token.Symbol()
		if c == '(' {
			if err := t.advance(); err != nil {
				return err
			}
			if err := t.compileExpression(); err != nil {
				return err
			}
			return t.expectSymbol(')', "')'")
		}
		op, ok := unaryOps[c]
		if !ok {
			return t.syntaxError("term")
		}
		if err := t.advance(); err != nil {
			return err
		}
		if err := t.compileTerm(); err != nil {
			return err
		}
		t.writer.Arithmetic(op)
		return nil
	default:
		return t.compileIdentifierTerm()
	}
}

// compileIdentifierTerm decides with one token of lookahead between an array element,
// a call and a plain variable.
func (t *Translator) compileIdentifierTerm() error {
	nameToken := t.current
	name, err := t.expectIdentifier("term")
	if err != nil {
		return err
	}
	switch {
	case t.peekSymbol('['):
		desc, err := t.resolve(name, nameToken)
		if err != nil {
			return err
		}
		if err = t.advance(); err != nil {
			return err
		}
		t.writer.Push(desc.Kind.Segment(), desc.Index)
		if err = t.compileExpression(); err != nil {
			return err
		}
		if err = t.expectSymbol(']', "']'"); err != nil {
			return err
		}
		t.writer.Arithmetic(AddOp)
		t.writer.Pop(PointerSegment, 1)
		t.writer.Push(ThatSegment, 0)
		return nil
	case t.peekSymbol('('), t.peekSymbol('.'):
		return t.compileSubroutineCall(name)
	default:
		desc, err := t.resolve(name, nameToken)
		if err != nil {
			return err
		}
		t.writer.Push(desc.Kind.Segment(), desc.Index)
		return nil
	}
}

// compileStringConstant builds the string at runtime: String.new(length), then one
// appendChar per character. appendChar returns the string, so it stays on the stack.
func (t *Translator) compileStringConstant(s string, token Token) error {
	chars := []rune(s)
	for _, c := range chars {
		if c > MaxInt {
			return t.errorAt(ErrUnsupportedConstruct, "string constant", token, fmt.Sprintf("character %q has no 16 bit code", c))
		}
	}
	t.writer.Push(ConstantSegment, len(chars))
	t.writer.Call("String.new", 1)
	for _, c := range chars {
		t.writer.Push(ConstantSegment, int(c))
		t.writer.Call("String.appendChar", 2)
	}
	return nil
}

// compileKeywordConstant: true is ~0, false and null are 0, this is the receiver held in pointer 0.
func (t *Translator) compileKeywordConstant(token Token) error {
	kw, _ := token.Keyword()
	switch kw {
	case TrueKW:
		t.writer.Push(ConstantSegment, 0)
		t.writer.Arithmetic(NotOp)
	case FalseKW, NullKW:
		t.writer.Push(ConstantSegment, 0)
	case ThisKW:
		t.writer.Push(PointerSegment, 0)
	default:
		return t.syntaxError("term")
	}
	return t.advance()
}

// compileSubroutineCall is entered with the first name already consumed.
//
// name(...)         calls <class>.name; inside methods and constructors the receiver is passed on.
// variable.m(...)   calls <type of variable>.m with the variable as receiver.
// Class.m(...)      calls Class.m without receiver, any name that is not a variable is a class.
func (t *Translator) compileSubroutineCall(name string) error {
	var target string
	nArgs := 0
	if t.peekSymbol('.') {
		if err := t.advance(); err != nil {
			return err
		}
		member, err := t.expectIdentifier("subroutine name")
		if err != nil {
			return err
		}
		if desc, err := t.symbols.Lookup(name); err == nil {
			t.writer.Push(desc.Kind.Segment(), desc.Index)
			target, nArgs = desc.Type+"."+member, 1
		} else {
			target = name + "." + member
		}
	} else {
		target = t.className + "." + name
		if t.subroutineKind != FunctionKW {
			t.writer.Push(PointerSegment, 0)
			nArgs = 1
		}
	}
	if err := t.expectSymbol('(', "'(' or '.'"); err != nil {
		return err
	}
	n, err := t.compileExpressionList()
	if err != nil {
		return err
	}
	if err = t.expectSymbol(')', "',' or ')'"); err != nil {
		return err
	}
	t.writer.Call(target, nArgs+n)
	return nil
}

// compileExpressionList returns the number of expressions compiled.
func (t *Translator) compileExpressionList() (n int, err error) {
	if t.peekSymbol(')') {
		return 0, nil
	}
	for {
		if err = t.compileExpression(); err != nil {
			return n, err
		}
		n++
		if !t.peekSymbol(',') {
			return n, nil
		}
		if err = t.advance(); err != nil {
			return n, err
		}
	}
}
