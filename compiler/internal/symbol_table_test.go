package internal

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"tlog.app/go/errors"
)

func TestSymbolTable_Define(t *testing.T) {
	table := NewSymbolTable()
	testData := []struct {
		name          string
		tp            string
		kind          SymbolKind
		expectedIndex int
		segment       Segment
	}{
		{name: "count", tp: "int", kind: StaticKind, expectedIndex: 0, segment: StaticSegment},
		{name: "x", tp: "int", kind: FieldKind, expectedIndex: 0, segment: ThisSegment},
		{name: "y", tp: "int", kind: FieldKind, expectedIndex: 1, segment: ThisSegment},
		{name: "total", tp: "int", kind: StaticKind, expectedIndex: 1, segment: StaticSegment},
		{name: "other", tp: "Point", kind: ArgumentKind, expectedIndex: 0, segment: ArgumentSegment},
		{name: "i", tp: "int", kind: LocalKind, expectedIndex: 0, segment: LocalSegment},
		{name: "done", tp: "boolean", kind: LocalKind, expectedIndex: 1, segment: LocalSegment},
		{name: "scale", tp: "int", kind: ArgumentKind, expectedIndex: 1, segment: ArgumentSegment},
	}
	for _, data := range testData {
		desc := table.Define(data.name, data.tp, data.kind)
		assert.Equal(t, data.expectedIndex, desc.Index, data.name)
	}
	for _, data := range testData {
		kind, err := table.KindOf(data.name)
		require.NoError(t, err)
		assert.Equal(t, data.kind, kind)
		tp, err := table.TypeOf(data.name)
		require.NoError(t, err)
		assert.Equal(t, data.tp, tp)
		index, err := table.IndexOf(data.name)
		require.NoError(t, err)
		assert.Equal(t, data.expectedIndex, index)
		segment, err := table.SegmentOf(data.name)
		require.NoError(t, err)
		assert.Equal(t, data.segment, segment)
	}
	assert.Equal(t, 2, table.VarCount(StaticKind))
	assert.Equal(t, 2, table.VarCount(FieldKind))
	assert.Equal(t, 2, table.VarCount(ArgumentKind))
	assert.Equal(t, 2, table.VarCount(LocalKind))
}

func TestSymbolTable_StartSubroutine(t *testing.T) {
	table := NewSymbolTable()
	table.Define("x", "int", FieldKind)
	table.Define("a", "int", ArgumentKind)
	table.Define("l", "int", LocalKind)

	table.StartSubroutine()
	assert.Equal(t, 0, table.VarCount(ArgumentKind))
	assert.Equal(t, 0, table.VarCount(LocalKind))
	assert.Equal(t, 1, table.VarCount(FieldKind))

	_, err := table.Lookup("a")
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
	_, err = table.Lookup("l")
	assert.True(t, errors.Is(err, ErrUnknownSymbol))

	desc := table.Define("b", "int", ArgumentKind)
	assert.Equal(t, 0, desc.Index)
	_, err = table.Lookup("x")
	assert.NoError(t, err)
}

func TestSymbolTable_Shadowing(t *testing.T) {
	table := NewSymbolTable()
	table.Define("x", "int", FieldKind)
	table.Define("y", "int", FieldKind)
	table.StartSubroutine()
	table.Define("x", "char", LocalKind)

	desc, err := table.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, LocalKind, desc.Kind)
	assert.Equal(t, "char", desc.Type)
	assert.Equal(t, 0, desc.Index)

	// The field comes back once the subroutine scope is gone.
	table.StartSubroutine()
	desc, err = table.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, FieldKind, desc.Kind)
	assert.Equal(t, ThisSegment, desc.Kind.Segment())
}

func TestSymbolTable_Defined(t *testing.T) {
	table := NewSymbolTable()
	table.Define("x", "int", FieldKind)
	table.Define("n", "int", ArgumentKind)

	assert.True(t, table.Defined("x", StaticKind))
	assert.True(t, table.Defined("x", FieldKind))
	assert.False(t, table.Defined("x", LocalKind))
	assert.True(t, table.Defined("n", LocalKind))
	assert.False(t, table.Defined("n", FieldKind))
}

func TestSymbolTable_LookupUnknown(t *testing.T) {
	table := NewSymbolTable()
	_, err := table.Lookup("nothing")
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
	_, err = table.KindOf("nothing")
	assert.Error(t, err)
	_, err = table.SegmentOf("nothing")
	assert.Error(t, err)
}
