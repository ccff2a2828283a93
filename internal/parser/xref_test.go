package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXRefResolver_ClassicalSingleSection(t *testing.T) {
	data := "xref\n" +
		"0 3\n" +
		"0000000000 65535 f \n" +
		"0000000010 00000 n \n" +
		"0000000020 00000 n \n" +
		"trailer\n<< /Size 3 /Root 1 0 R >>\n"

	src := NewByteSourceFromBytes([]byte(data))
	resolver := NewXRefResolver(src, 0, nil)
	require.NoError(t, resolver.Resolve())

	assert.Equal(t, 3, resolver.Table().Size())
	e0, ok := resolver.Table().GetEntry(0)
	require.True(t, ok)
	assert.Equal(t, XRefEntryFree, e0.Type)

	e1, ok := resolver.Table().GetEntry(1)
	require.True(t, ok)
	assert.Equal(t, XRefEntryInUse, e1.Type)
	assert.Equal(t, int64(10), e1.Offset)

	assert.Equal(t, 1, resolver.Trailer().Get("Root").(*IndirectReference).Number)
}

func TestXRefResolver_FirstEntryRenormalization(t *testing.T) {
	// A table that (incorrectly) starts its subsection at 1 while the first
	// entry is Free gets silently renormalized to object 0.
	data := "xref\n" +
		"1 2\n" +
		"0000000000 65535 f \n" +
		"0000000010 00000 n \n" +
		"trailer\n<< /Size 2 /Root 1 0 R >>\n"

	src := NewByteSourceFromBytes([]byte(data))
	resolver := NewXRefResolver(src, 0, nil)
	require.NoError(t, resolver.Resolve())

	e0, ok := resolver.Table().GetEntry(0)
	require.True(t, ok)
	assert.Equal(t, XRefEntryFree, e0.Type)
}

func TestXRefResolver_PrevChaining(t *testing.T) {
	var b strings.Builder
	b.WriteString("xref\n0 2\n")
	b.WriteString("0000000000 65535 f \n")
	b.WriteString("0000000099 00000 n \n")
	b.WriteString("trailer\n<< /Size 2 /Root 1 0 R >>\n")
	firstSectionLen := b.Len()

	b.WriteString("xref\n0 2\n")
	b.WriteString("0000000000 65535 f \n")
	b.WriteString("0000000200 00000 n \n") // most recent revision's offset for object 1
	b.WriteString("trailer\n<< /Size 2 /Root 1 0 R /Prev 0 >>\n")

	src := NewByteSourceFromBytes([]byte(b.String()))
	resolver := NewXRefResolver(src, int64(firstSectionLen), nil)
	require.NoError(t, resolver.Resolve())

	// The most recent revision (bootstrapped, so processed first) wins over the
	// older one reached via /Prev.
	e1, ok := resolver.Table().GetEntry(1)
	require.True(t, ok)
	assert.Equal(t, int64(200), e1.Offset)
}

func TestXRefResolver_EntryZeroMustBeFree(t *testing.T) {
	data := "xref\n0 1\n0000000010 00000 n \n" +
		"trailer\n<< /Size 1 /Root 1 0 R >>\n"

	src := NewByteSourceFromBytes([]byte(data))
	resolver := NewXRefResolver(src, 0, nil)
	err := resolver.Resolve()
	require.Error(t, err)
}

func TestXRefResolver_MissingXrefKeywordIsError(t *testing.T) {
	src := NewByteSourceFromBytes([]byte("not an xref section at all"))
	resolver := NewXRefResolver(src, 0, nil)
	err := resolver.Resolve()
	require.Error(t, err)
}

func TestXRefTable_SetFirstWriteWins(t *testing.T) {
	table := newXRefTable()
	table.set(5, XRefEntry{Offset: 100, Type: XRefEntryInUse})
	table.set(5, XRefEntry{Offset: 200, Type: XRefEntryInUse})

	e, ok := table.GetEntry(5)
	require.True(t, ok)
	assert.Equal(t, int64(100), e.Offset)
}

func TestXRefTable_GetEntry_OutOfRange(t *testing.T) {
	table := newXRefTable()
	_, ok := table.GetEntry(0)
	assert.False(t, ok)
	_, ok = table.GetEntry(-1)
	assert.False(t, ok)
}
