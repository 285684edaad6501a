package internal

import (
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// Translator recognizes one jack class and emits its vm code during the same walk, there is no
// intermediate tree. Each compileXxx method consumes exactly its construct and leaves the first
// token after it as the current one.
//
// class:          'class' className '{' classVarDec* subroutineDec* '}'
// classVarDec:    ('static' | 'field') type varName (',' varName)* ';'
// subroutineDec:  ('constructor' | 'function' | 'method') ('void' | type) subroutineName
//                 '(' parameterList ')' '{' varDec* statements '}'
// varDec:         'var' type varName (',' varName)* ';'
type Translator struct {
	src     TokenSource
	current Token
	eof     bool

	writer  *VMWriter
	symbols *SymbolTable

	className      string
	subroutineName string
	subroutineKind Keyword
	// labelID is taken by a control flow construct when it starts, so nested
	// constructs always see a fresh value.
	labelID int

	info *ClassInfo
}

// ClassInfo summarizes a compiled class.
type ClassInfo struct {
	Name        string
	Fields      int
	Statics     int
	Subroutines []SubroutineInfo
}

type SubroutineInfo struct {
	Name string
	Kind Keyword
	// Args includes the receiver of a method.
	Args   int
	Locals int
}

func NewTranslator(src TokenSource, writer *VMWriter) *Translator {
	return &Translator{
		src:     src,
		writer:  writer,
		symbols: NewSymbolTable(),
	}
}

// CompileClass translates the whole unit. On error the output written so far must be discarded.
func (t *Translator) CompileClass() (info *ClassInfo, err error) {
	if err = t.advance(); err != nil {
		return nil, err
	}
	if _, err = t.expectKeyword("'class'", ClassKW); err != nil {
		return nil, err
	}
	t.className, err = t.expectIdentifier("class name")
	if err != nil {
		return nil, err
	}
	t.info = &ClassInfo{Name: t.className}
	if err = t.expectSymbol('{', "'{'"); err != nil {
		return nil, err
	}
	for t.peekKeyword(StaticKW, FieldKW) {
		if err = t.compileClassVarDec(); err != nil {
			return nil, err
		}
	}
	for t.peekKeyword(ConstructorKW, FunctionKW, MethodKW) {
		if err = t.compileSubroutine(); err != nil {
			return nil, err
		}
	}
	if err = t.expectSymbol('}', "class variable, subroutine or '}'"); err != nil {
		return nil, err
	}
	if !t.eof {
		return nil, t.syntaxError("end of input after class")
	}
	t.info.Fields, t.info.Statics = t.symbols.VarCount(FieldKind), t.symbols.VarCount(StaticKind)
	return t.info, nil
}

func (t *Translator) compileClassVarDec() error {
	kw, err := t.expectKeyword("'static' or 'field'", StaticKW, FieldKW)
	if err != nil {
		return err
	}
	kind := FieldKind
	if kw == StaticKW {
		kind = StaticKind
	}
	return t.compileVarNames(kind)
}

func (t *Translator) compileVarDec() error {
	if _, err := t.expectKeyword("'var'", VarKW); err != nil {
		return err
	}
	return t.compileVarNames(LocalKind)
}

// compileVarNames compiles `type varName (',' varName)* ';'`. Every name is defined
// before the next one is read.
func (t *Translator) compileVarNames(kind SymbolKind) error {
	tp, err := t.compileType()
	if err != nil {
		return err
	}
	for {
		if err = t.defineNext(tp, kind); err != nil {
			return err
		}
		if !t.peekSymbol(',') {
			break
		}
		if err = t.advance(); err != nil {
			return err
		}
	}
	return t.expectSymbol(';', "',' or ';'")
}

// compileType accepts int, char, boolean or a class name. Class names are not checked.
func (t *Translator) compileType() (string, error) {
	if t.peekKeyword(IntKW, CharKW, BooleanKW) {
		kw, _ := t.current.Keyword()
		return string(kw), t.advance()
	}
	return t.expectIdentifier("type")
}

func (t *Translator) compileSubroutine() (err error) {
	kind, err := t.expectKeyword("subroutine kind", ConstructorKW, FunctionKW, MethodKW)
	if err != nil {
		return err
	}
	t.symbols.StartSubroutine()
	t.subroutineKind = kind
	if t.peekKeyword(VoidKW) {
		err = t.advance()
	} else {
		_, err = t.compileType()
	}
	if err != nil {
		return err
	}
	t.subroutineName, err = t.expectIdentifier("subroutine name")
	if err != nil {
		return err
	}
	defer func() { t.subroutineName = "" }()
	if kind == MethodKW {
		// The receiver always occupies argument 0.
		t.symbols.Define("this", t.className, ArgumentKind)
	}
	if err = t.expectSymbol('(', "'('"); err != nil {
		return err
	}
	nParams, err := t.compileParameterList()
	if err != nil {
		return err
	}
	if err = t.expectSymbol(')', "',' or ')'"); err != nil {
		return err
	}
	if err = t.expectSymbol('{', "'{'"); err != nil {
		return err
	}
	for t.peekKeyword(VarKW) {
		if err = t.compileVarDec(); err != nil {
			return err
		}
	}

	sub := SubroutineInfo{Name: t.subroutineName, Kind: kind, Args: nParams, Locals: t.symbols.VarCount(LocalKind)}
	if kind == MethodKW {
		sub.Args++
	}
	name := t.className + "." + t.subroutineName
	t.writer.Function(name, sub.Locals)
	tlog.V("emit").Printw("function", "name", name, "kind", kind, "args", sub.Args, "locals", sub.Locals)
	switch kind {
	case ConstructorKW:
		t.writer.Push(ConstantSegment, t.symbols.VarCount(FieldKind))
		t.writer.Call("Memory.alloc", 1)
		t.writer.Pop(PointerSegment, 0)
	case MethodKW:
		t.writer.Push(ArgumentSegment, 0)
		t.writer.Pop(PointerSegment, 0)
	}

	returned, err := t.compileStatements()
	if err != nil {
		return err
	}
	if err = t.expectSymbol('}', "statement or '}'"); err != nil {
		return err
	}
	if !returned {
		t.pushReturnPlaceholder()
		t.writer.Return()
	}
	t.info.Subroutines = append(t.info.Subroutines, sub)
	return nil
}

// compileParameterList compiles `((type varName) (',' type varName)*)?` and returns the number of
// declared parameters.
func (t *Translator) compileParameterList() (n int, err error) {
	if t.peekSymbol(')') {
		return 0, nil
	}
	for {
		tp, err := t.compileType()
		if err != nil {
			return n, err
		}
		if err = t.defineNext(tp, ArgumentKind); err != nil {
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

// compileStatements compiles statements until a token that cannot start one. It reports whether
// the last statement was a return.
func (t *Translator) compileStatements() (returned bool, err error) {
	for !t.eof && t.current.Type() == KeywordTP {
		kw, _ := t.current.Keyword()
		switch kw {
		case LetKW:
			err = t.compileLet()
		case IfKW:
			err = t.compileIf()
		case WhileKW:
			err = t.compileWhile()
		case DoKW:
			err = t.compileDo()
		case ReturnKW:
			err = t.compileReturn()
		default:
			return returned, nil
		}
		if err != nil {
			return false, err
		}
		returned = kw == ReturnKW
	}
	return returned, nil
}

// let: 'let' varName ('[' expression ']')? '=' expression ';'
func (t *Translator) compileLet() error {
	if err := t.advance(); err != nil {
		return err
	}
	target, err := t.resolveNext()
	if err != nil {
		return err
	}
	isArray := t.peekSymbol('[')
	if isArray {
		if err = t.advance(); err != nil {
			return err
		}
		t.writer.Push(target.Kind.Segment(), target.Index)
		if err = t.compileExpression(); err != nil {
			return err
		}
		t.writer.Arithmetic(AddOp)
		if err = t.expectSymbol(']', "']'"); err != nil {
			return err
		}
	}
	if err = t.expectSymbol('=', "'=' or '['"); err != nil {
		return err
	}
	if err = t.compileExpression(); err != nil {
		return err
	}
	if err = t.expectSymbol(';', "';'"); err != nil {
		return err
	}
	if !isArray {
		t.writer.Pop(target.Kind.Segment(), target.Index)
		return nil
	}
	// The address is below the value on the stack: park the value, aim that at the address, store.
	t.writer.Pop(TempSegment, 0)
	t.writer.Pop(PointerSegment, 1)
	t.writer.Push(TempSegment, 0)
	t.writer.Pop(ThatSegment, 0)
	return nil
}

// while: 'while' '(' expression ')' '{' statements '}'
//
// label while_check_N
// ~(condition)
// if-goto while_exit_N
// statements
// goto while_check_N
// label while_exit_N
func (t *Translator) compileWhile() error {
	id := t.nextLabelID()
	checkLabel, exitLabel := fmt.Sprintf("while_check_%d", id), fmt.Sprintf("while_exit_%d", id)
	if err := t.advance(); err != nil {
		return err
	}
	t.writer.Label(checkLabel)
	if err := t.compileCondition(); err != nil {
		return err
	}
	t.writer.IfGoto(exitLabel)
	if err := t.compileBlock(); err != nil {
		return err
	}
	t.writer.Goto(checkLabel)
	t.writer.Label(exitLabel)
	return nil
}

// if: 'if' '(' expression ')' '{' statements '}' ('else' '{' statements '}')?
//
// ~(condition)
// if-goto if_false_N
// statements
// goto if_exit_N        (only with else)
// label if_false_N
// else statements       (only with else)
// label if_exit_N       (only with else)
func (t *Translator) compileIf() error {
	id := t.nextLabelID()
	falseLabel, exitLabel := fmt.Sprintf("if_false_%d", id), fmt.Sprintf("if_exit_%d", id)
	if err := t.advance(); err != nil {
		return err
	}
	if err := t.compileCondition(); err != nil {
		return err
	}
	t.writer.IfGoto(falseLabel)
	if err := t.compileBlock(); err != nil {
		return err
	}
	if !t.peekKeyword(ElseKW) {
		t.writer.Label(falseLabel)
		return nil
	}
	if err := t.advance(); err != nil {
		return err
	}
	t.writer.Goto(exitLabel)
	t.writer.Label(falseLabel)
	if err := t.compileBlock(); err != nil {
		return err
	}
	t.writer.Label(exitLabel)
	return nil
}

// compileCondition compiles '(' expression ')' and leaves the negated value on the stack.
func (t *Translator) compileCondition() error {
	if err := t.expectSymbol('(', "'('"); err != nil {
		return err
	}
	if err := t.compileExpression(); err != nil {
		return err
	}
	if err := t.expectSymbol(')', "')'"); err != nil {
		return err
	}
	t.writer.Arithmetic(NotOp)
	return nil
}

func (t *Translator) compileBlock() error {
	if err := t.expectSymbol('{', "'{'"); err != nil {
		return err
	}
	if _, err := t.compileStatements(); err != nil {
		return err
	}
	return t.expectSymbol('}', "statement or '}'")
}

// do: 'do' subroutineCall ';'. The result is always dropped, void subroutines return 0.
func (t *Translator) compileDo() error {
	if err := t.advance(); err != nil {
		return err
	}
	name, err := t.expectIdentifier("subroutine, class or variable name")
	if err != nil {
		return err
	}
	if err = t.compileSubroutineCall(name); err != nil {
		return err
	}
	if err = t.expectSymbol(';', "';'"); err != nil {
		return err
	}
	t.writer.Pop(TempSegment, 0)
	return nil
}

// return: 'return' expression? ';'
func (t *Translator) compileReturn() error {
	if err := t.advance(); err != nil {
		return err
	}
	if t.peekSymbol(';') {
		t.pushReturnPlaceholder()
	} else if err := t.compileExpression(); err != nil {
		return err
	}
	if err := t.expectSymbol(';', "';'"); err != nil {
		return err
	}
	t.writer.Return()
	return nil
}

// pushReturnPlaceholder leaves the value of a return without expression: the new object for
// constructors, 0 for everything else.
func (t *Translator) pushReturnPlaceholder() {
	if t.subroutineKind == ConstructorKW {
		t.writer.Push(PointerSegment, 0)
		return
	}
	t.writer.Push(ConstantSegment, 0)
}

func (t *Translator) nextLabelID() int {
	id := t.labelID
	t.labelID++
	tlog.V("labels").Printw("label id", "class", t.className, "subroutine", t.subroutineName, "id", id)
	return id
}

// defineNext consumes a variable name and defines it, rejecting a second definition
// of the same name in the same scope.
func (t *Translator) defineNext(tp string, kind SymbolKind) error {
	nameToken := t.current
	name, err := t.expectIdentifier("variable name")
	if err != nil {
		return err
	}
	if t.symbols.Defined(name, kind) {
		return t.errorAt(ErrDuplicateSymbol, "new "+kind.String()+" name", nameToken, fmt.Sprintf("%q is already declared", name))
	}
	t.symbols.Define(name, tp, kind)
	return nil
}

// resolveNext consumes a variable name and resolves it.
func (t *Translator) resolveNext() (*SymbolDesc, error) {
	nameToken := t.current
	name, err := t.expectIdentifier("variable name")
	if err != nil {
		return nil, err
	}
	return t.resolve(name, nameToken)
}

func (t *Translator) resolve(name string, nameToken Token) (*SymbolDesc, error) {
	desc, err := t.symbols.Lookup(name)
	if err != nil {
		return nil, t.errorAt(ErrUnknownSymbol, "declared variable", nameToken, fmt.Sprintf("%q is not declared", name))
	}
	return desc, nil
}

// advance moves to the next token. Running out of tokens is not an error by itself, the next
// expectation fails instead.
func (t *Translator) advance() error {
	if t.src.Advance() {
		t.current = t.src.Token()
		return nil
	}
	if err := t.src.Err(); err != nil {
		return errors.Wrap(err, "%s", t.where())
	}
	t.eof = true
	return nil
}

func (t *Translator) peekKeyword(kws ...Keyword) bool {
	if t.eof {
		return false
	}
	for _, kw := range kws {
		if t.current.Is(kw) {
			return true
		}
	}
	return false
}

func (t *Translator) peekSymbol(c byte) bool {
	return !t.eof && t.current.IsSymbol(c)
}

func (t *Translator) expectKeyword(construct string, kws ...Keyword) (Keyword, error) {
	if !t.peekKeyword(kws...) {
		return "", t.syntaxError(construct)
	}
	kw, _ := t.current.Keyword()
	return kw, t.advance()
}

func (t *Translator) expectSymbol(c byte, construct string) error {
	if !t.peekSymbol(c) {
		return t.syntaxError(construct)
	}
	return t.advance()
}

func (t *Translator) expectIdentifier(construct string) (string, error) {
	if t.eof || t.current.Type() != IdentifierTP {
		return "", t.syntaxError(construct)
	}
	name, _ := t.current.Identifier()
	return name, t.advance()
}

func (t *Translator) syntaxError(construct string) error {
	return t.errorAt(ErrSyntax, construct, t.current, "")
}

func (t *Translator) errorAt(kind error, construct string, token Token, detail string) error {
	return &CompileError{
		Kind:       kind,
		Construct:  construct,
		Token:      token,
		AtEOF:      t.eof && token == t.current,
		Class:      t.className,
		Subroutine: t.subroutineName,
		Detail:     detail,
	}
}

func (t *Translator) where() string {
	if t.subroutineName == "" {
		return t.className
	}
	return t.className + "." + t.subroutineName
}
