package internal

import (
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// SymbolKind classifies a declared name and decides the segment its value lives in.
type SymbolKind int

const (
	StaticKind SymbolKind = iota
	FieldKind
	ArgumentKind
	LocalKind
)

func (kind SymbolKind) String() string {
	switch kind {
	case StaticKind:
		return "static"
	case FieldKind:
		return "field"
	case ArgumentKind:
		return "argument"
	case LocalKind:
		return "local"
	}
	return "unknown"
}

// Segment is the memory region a kind is addressed through.
func (kind SymbolKind) Segment() Segment {
	switch kind {
	case StaticKind:
		return StaticSegment
	case FieldKind:
		return ThisSegment
	case ArgumentKind:
		return ArgumentSegment
	default:
		return LocalSegment
	}
}

func (kind SymbolKind) classScoped() bool {
	return kind == StaticKind || kind == FieldKind
}

type SymbolDesc struct {
	Name string
	Type string
	Kind SymbolKind
	// Index is dense per kind: 0, 1, 2, ... in declaration order.
	Index int
}

// SymbolTable has exactly two scopes. The class scope holds statics and fields and lives for the whole
// class, the subroutine scope holds arguments and locals and is replaced by StartSubroutine.
// Lookups consult the subroutine scope first, so a parameter shadows a field of the same name.
//
// Define does not reject redefinitions, the Translator checks that with Defined before defining.
type SymbolTable struct {
	classSymbols      map[string]*SymbolDesc
	subroutineSymbols map[string]*SymbolDesc
	counts            [4]int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		classSymbols:      map[string]*SymbolDesc{},
		subroutineSymbols: map[string]*SymbolDesc{},
	}
}

// StartSubroutine drops every argument and local, class scope is untouched.
func (table *SymbolTable) StartSubroutine() {
	table.subroutineSymbols = map[string]*SymbolDesc{}
	table.counts[ArgumentKind], table.counts[LocalKind] = 0, 0
}

func (table *SymbolTable) Define(name, tp string, kind SymbolKind) *SymbolDesc {
	desc := &SymbolDesc{Name: name, Type: tp, Kind: kind, Index: table.counts[kind]}
	table.counts[kind]++
	table.scopeOf(kind)[name] = desc
	tlog.V("symbols").Printw("define", "name", name, "type", tp, "kind", kind, "index", desc.Index)
	return desc
}

// Defined reports whether name is already declared in the scope kind belongs to.
func (table *SymbolTable) Defined(name string, kind SymbolKind) bool {
	if kind.classScoped() {
		_, ok := table.classSymbols[name]
		return ok
	}
	_, ok := table.subroutineSymbols[name]
	return ok
}

func (table *SymbolTable) VarCount(kind SymbolKind) int {
	return table.counts[kind]
}

// Lookup resolves name in the subroutine scope, then in the class scope.
func (table *SymbolTable) Lookup(name string) (*SymbolDesc, error) {
	if desc, ok := table.subroutineSymbols[name]; ok {
		return desc, nil
	}
	if desc, ok := table.classSymbols[name]; ok {
		return desc, nil
	}
	return nil, errors.Wrap(ErrUnknownSymbol, "%q", name)
}

func (table *SymbolTable) KindOf(name string) (SymbolKind, error) {
	desc, err := table.Lookup(name)
	if err != nil {
		return 0, err
	}
	return desc.Kind, nil
}

func (table *SymbolTable) TypeOf(name string) (string, error) {
	desc, err := table.Lookup(name)
	if err != nil {
		return "", err
	}
	return desc.Type, nil
}

func (table *SymbolTable) IndexOf(name string) (int, error) {
	desc, err := table.Lookup(name)
	if err != nil {
		return 0, err
	}
	return desc.Index, nil
}

func (table *SymbolTable) SegmentOf(name string) (Segment, error) {
	desc, err := table.Lookup(name)
	if err != nil {
		return "", err
	}
	return desc.Kind.Segment(), nil
}

func (table *SymbolTable) scopeOf(kind SymbolKind) map[string]*SymbolDesc {
	if kind.classScoped() {
		return table.classSymbols
	}
	return table.subroutineSymbols
}
