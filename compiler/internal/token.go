package internal

import (
	"fmt"
	"strconv"

	"tlog.app/go/errors"
)

// A Jack source file is a sequence of tokens of exactly five kinds:
// * Keyword: class, constructor, function, method, field, static, var, int, char, boolean, void, true,
// 			false, null, this, let, do, if, else, while, return.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, &, |, <, >, =, ~, ^, #.
// * Integer: 0 .. 32767.
// * String: "xxx", the quotes are not part of the value.
// * Identifier: letters, digits, underscore, not starting with a digit.

type TokenType int

const (
	KeywordTP TokenType = iota
	SymbolTP
	IdentifierTP
	IntegerTP
	StringTP
)

func (tp TokenType) String() string {
	switch tp {
	case KeywordTP:
		return "keyword"
	case SymbolTP:
		return "symbol"
	case IdentifierTP:
		return "identifier"
	case IntegerTP:
		return "integerConstant"
	case StringTP:
		return "stringConstant"
	}
	return "unknown"
}

type Keyword string

const (
	ClassKW       Keyword = "class"
	ConstructorKW Keyword = "constructor"
	FunctionKW    Keyword = "function"
	MethodKW      Keyword = "method"
	FieldKW       Keyword = "field"
	StaticKW      Keyword = "static"
	VarKW         Keyword = "var"
	IntKW         Keyword = "int"
	CharKW        Keyword = "char"
	BooleanKW     Keyword = "boolean"
	VoidKW        Keyword = "void"
	TrueKW        Keyword = "true"
	FalseKW       Keyword = "false"
	NullKW        Keyword = "null"
	ThisKW        Keyword = "this"
	LetKW         Keyword = "let"
	DoKW          Keyword = "do"
	IfKW          Keyword = "if"
	ElseKW        Keyword = "else"
	WhileKW       Keyword = "while"
	ReturnKW      Keyword = "return"
)

// keywords is the set of reserved words, an identifier can never be one of those.
var keywords = map[string]Keyword{
	"class":       ClassKW,
	"constructor": ConstructorKW,
	"function":    FunctionKW,
	"method":      MethodKW,
	"field":       FieldKW,
	"static":      StaticKW,
	"var":         VarKW,
	"int":         IntKW,
	"char":        CharKW,
	"boolean":     BooleanKW,
	"void":        VoidKW,
	"true":        TrueKW,
	"false":       FalseKW,
	"null":        NullKW,
	"this":        ThisKW,
	"let":         LetKW,
	"do":          DoKW,
	"if":          IfKW,
	"else":        ElseKW,
	"while":       WhileKW,
	"return":      ReturnKW,
}

// MaxInt is the largest integer constant the language can express.
const MaxInt = 32767

// Token is a tagged value. Only the accessor matching Type() may be used,
// the others fail with ErrTokenKind.
type Token struct {
	tp    TokenType
	text  string
	value int
	line  int
}

func NewKeywordToken(kw Keyword, line int) Token {
	return Token{tp: KeywordTP, text: string(kw), line: line}
}

func NewSymbolToken(symbol byte, line int) Token {
	return Token{tp: SymbolTP, text: string(symbol), line: line}
}

func NewIdentifierToken(name string, line int) Token {
	return Token{tp: IdentifierTP, text: name, line: line}
}

func NewIntegerToken(value int, line int) Token {
	return Token{tp: IntegerTP, text: strconv.Itoa(value), value: value, line: line}
}

func NewStringToken(value string, line int) Token {
	return Token{tp: StringTP, text: value, line: line}
}

func (t Token) Type() TokenType { return t.tp }

// Line is the 1-based source line the token starts at, 0 when unknown.
func (t Token) Line() int { return t.line }

func (t Token) Keyword() (Keyword, error) {
	if t.tp != KeywordTP {
		return "", t.kindError(KeywordTP)
	}
	return Keyword(t.text), nil
}

func (t Token) Symbol() (byte, error) {
	if t.tp != SymbolTP {
		return 0, t.kindError(SymbolTP)
	}
	return t.text[0], nil
}

func (t Token) Identifier() (string, error) {
	if t.tp != IdentifierTP {
		return "", t.kindError(IdentifierTP)
	}
	return t.text, nil
}

func (t Token) IntValue() (int, error) {
	if t.tp != IntegerTP {
		return 0, t.kindError(IntegerTP)
	}
	return t.value, nil
}

func (t Token) StringValue() (string, error) {
	if t.tp != StringTP {
		return "", t.kindError(StringTP)
	}
	return t.text, nil
}

// Is reports whether t is the keyword kw.
func (t Token) Is(kw Keyword) bool {
	return t.tp == KeywordTP && t.text == string(kw)
}

// IsSymbol reports whether t is the symbol c.
func (t Token) IsSymbol(c byte) bool {
	return t.tp == SymbolTP && t.text[0] == c
}

func (t Token) String() string {
	if t.tp == StringTP {
		return fmt.Sprintf("%v %q", t.tp, t.text)
	}
	return fmt.Sprintf("%v '%s'", t.tp, t.text)
}

func (t Token) kindError(want TokenType) error {
	return errors.Wrap(ErrTokenKind, "%v accessed as %v", t, want)
}

// TokenSource is the contract between the scanner and the Translator.
// Advance must be called once before the first token is available, it
// reports whether a token was produced. When Advance returns false Err tells
// apart a clean end of input from a lexical error.
type TokenSource interface {
	Advance() bool
	Token() Token
	Err() error
}
