package parser

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLexer(s string) *Lexer {
	return NewLexer(NewByteSourceFromBytes([]byte(s)), nil)
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindInteger, "Integer"},
		{KindReal, "Real"},
		{KindLiteralString, "LiteralString"},
		{KindHexString, "HexString"},
		{KindName, "Name"},
		{KindCommand, "Command"},
		{KindEOF, "EOF"},
		{Kind(999), "Kind(999)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.kind.String())
	}
}

func TestLexer_Integers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{"positive", "123", 123},
		{"negative", "-456", -456},
		{"explicit positive", "+789", 789},
		{"zero", "0", 0},
		{"large", "2147483647", 2147483647},
		{"double negative keeps sign", "--5", -5},
		{"trailing dot", "123.", 123},
		{"zero with fraction", "0.0", 0},
		{"scientific", "1.5e2", 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := newTestLexer(tt.input)
			tok, err := lex.GetObject()
			require.NoError(t, err)
			require.Equal(t, KindInteger, tok.Kind)
			assert.Equal(t, tt.expected, tok.Int)
		})
	}
}

func TestLexer_Reals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"simple", "3.14", 3.14},
		{"negative", "-2.5", -2.5},
		{"positive", "+0.001", 0.001},
		{"leading dot", ".5", 0.5},
		{"negative leading dot", "-.5", -0.5},
		{"scientific negative exp", "2E-1", 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := newTestLexer(tt.input)
			tok, err := lex.GetObject()
			require.NoError(t, err)
			require.Equal(t, KindReal, tok.Kind)
			assert.InDelta(t, tt.expected, tok.Real, 0.0001)
		})
	}
}

func TestLexer_LoneDecimalPoint(t *testing.T) {
	lex := newTestLexer(".")
	tok, err := lex.GetObject()
	require.NoError(t, err)
	require.Equal(t, KindReal, tok.Kind)
	assert.Equal(t, 0.0, tok.Real)
}

func TestLexer_Strings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "(Hello)", "Hello"},
		{"with spaces", "(Hello World)", "Hello World"},
		{"empty", "()", ""},
		{"newline escape", `(Line1\nLine2)`, "Line1\nLine2"},
		{"return escape", `(Line1\rLine2)`, "Line1\rLine2"},
		{"tab escape", `(Col1\tCol2)`, "Col1\tCol2"},
		{"backspace escape", `(Text\b)`, "Text\b"},
		{"formfeed escape", `(Text\f)`, "Text\f"},
		{"backslash escape", `(C:\\Path)`, `C:\Path`},
		{"paren escapes", `(\(nested\))`, "(nested)"},
		{"nested parens", "(outer (inner) text)", "outer (inner) text"},
		{"octal escape", `(\101\102\103)`, "ABC"},
		{"single digit octal", `(\1)`, "\001"},
		{"two digit octal", `(\12)`, "\012"},
		{"mixed", `(Hello\nWorld\t\101)`, "Hello\nWorld\tA"},
		{"LF continuation", "(Line1\\\nLine2)", "Line1Line2"},
		{"CR continuation", "(Line1\\\rLine2)", "Line1Line2"},
		{"CRLF continuation", "(Line1\\\r\nLine2)", "Line1Line2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := newTestLexer(tt.input)
			tok, err := lex.GetObject()
			require.NoError(t, err)
			require.Equal(t, KindLiteralString, tok.Kind)
			assert.Equal(t, tt.expected, string(tok.Bytes))
		})
	}
}

func TestLexer_Strings_UnterminatedIsLexicalError(t *testing.T) {
	tests := []string{"(Hello", "(outer (inner)"}
	for _, input := range tests {
		lex := newTestLexer(input)
		_, err := lex.GetObject()
		require.Error(t, err)
		var lexErr *LexicalError
		assert.ErrorAs(t, err, &lexErr)
	}
}

func TestLexer_HexStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "<48656C6C6F>", "Hello"},
		{"lowercase", "<48656c6c6f>", "Hello"},
		{"with whitespace", "<48 65 6C 6C 6F>", "Hello"},
		{"with tabs", "<48\t65\t6C\t6C\t6F>", "Hello"},
		{"with newlines", "<48\n65\n6C\n6C\n6F>", "Hello"},
		{"empty", "<>", ""},
		{"odd digits padded", "<123>", "\x12\x30"},
		{"single digit", "<4>", "\x40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := newTestLexer(tt.input)
			tok, err := lex.GetObject()
			require.NoError(t, err)
			require.Equal(t, KindHexString, tok.Kind)
			assert.Equal(t, tt.expected, string(tok.Bytes))
		})
	}
}

// Invalid hex digits are tolerated: skipped with a capped diagnostic rather
// than failing the whole token.
func TestLexer_HexStrings_InvalidCharsTolerated(t *testing.T) {
	var diags []string
	src := NewByteSourceFromBytes([]byte("<48G5>"))
	lex := NewLexer(src, func(msg string) { diags = append(diags, msg) })

	tok, err := lex.GetObject()
	require.NoError(t, err)
	require.Equal(t, KindHexString, tok.Kind)
	assert.NotEmpty(t, diags)
}

func TestLexer_HexStrings_UnterminatedIsLexicalError(t *testing.T) {
	lex := newTestLexer("<48656C")
	_, err := lex.GetObject()
	require.Error(t, err)
}

func TestLexer_Names(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "/Type", "Type"},
		{"lowercase", "/page", "page"},
		{"with numbers", "/Page1", "Page1"},
		{"with special chars", "/Name.With-Special_Chars", "Name.With-Special_Chars"},
		{"hash escape space", "/Name#20With#20Spaces", "Name With Spaces"},
		{"hash escape special", "/A#42B", "ABB"},
		{"multiple escapes", "/A#20B#20C", "A B C"},
		{"empty", "/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := newTestLexer(tt.input)
			tok, err := lex.GetObject()
			require.NoError(t, err)
			require.Equal(t, KindName, tok.Kind)
			assert.Equal(t, tt.expected, string(tok.Bytes))
		})
	}
}

// A '#' not followed by two hex digits is tolerated: preserved literally
// with a diagnostic, not a lexical error.
func TestLexer_Names_BadEscapeTolerated(t *testing.T) {
	var diags []string
	src := NewByteSourceFromBytes([]byte("/Name#2 rest"))
	lex := NewLexer(src, func(msg string) { diags = append(diags, msg) })

	tok, err := lex.GetObject()
	require.NoError(t, err)
	require.Equal(t, KindName, tok.Kind)
	assert.NotEmpty(t, diags)
}

func TestLexer_CommandsFoldBooleansAndKeywords(t *testing.T) {
	tests := []string{"true", "false", "null", "obj", "endobj", "stream",
		"endstream", "xref", "trailer", "startxref", "R", "n", "f"}

	for _, word := range tests {
		t.Run(word, func(t *testing.T) {
			lex := newTestLexer(word)
			tok, err := lex.GetObject()
			require.NoError(t, err)
			require.Equal(t, KindCommand, tok.Kind)
			assert.True(t, tok.IsCommand(word))
		})
	}
}

func TestLexer_Delimiters(t *testing.T) {
	tests := []string{"[", "]", "<<", ">>", "{", "}"}
	for _, d := range tests {
		t.Run(d, func(t *testing.T) {
			lex := newTestLexer(d)
			tok, err := lex.GetObject()
			require.NoError(t, err)
			require.Equal(t, KindCommand, tok.Kind)
			assert.True(t, tok.IsCommand(d))
		})
	}
}

func TestLexer_Whitespace(t *testing.T) {
	tests := []string{
		"123 456",
		"123\t456",
		"123\n456",
		"123\r456",
		"123\r\n456",
		"123\x00456",
		"123\f456",
		"123 \t\r\n 456",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			lex := newTestLexer(input)
			tok1, err := lex.GetObject()
			require.NoError(t, err)
			assert.Equal(t, KindInteger, tok1.Kind)
			tok2, err := lex.GetObject()
			require.NoError(t, err)
			assert.Equal(t, KindInteger, tok2.Kind)
			tok3, err := lex.GetObject()
			require.NoError(t, err)
			assert.Equal(t, KindEOF, tok3.Kind)
		})
	}
}

func TestLexer_Comments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		count int // number of non-EOF tokens expected
	}{
		{"single line", "123 % comment\n456", 2},
		{"at start", "% comment\n123", 1},
		{"at end", "123 % comment", 1},
		{"multiple", "123 % comment1\n456 % comment2\n789", 3},
		{"empty comment", "123 %\n456", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := newTestLexer(tt.input)
			for i := 0; i < tt.count; i++ {
				tok, err := lex.GetObject()
				require.NoError(t, err)
				assert.Equal(t, KindInteger, tok.Kind)
			}
			eof, err := lex.GetObject()
			require.NoError(t, err)
			assert.Equal(t, KindEOF, eof.Kind)
		})
	}
}

func TestLexer_EOF(t *testing.T) {
	tests := []string{"", "   \t\n", "% just a comment"}
	for _, input := range tests {
		lex := newTestLexer(input)
		tok, err := lex.GetObject()
		require.NoError(t, err)
		assert.Equal(t, KindEOF, tok.Kind)
	}
}

//nolint:funlen // Comprehensive token-stream fixture.
func TestLexer_Complex(t *testing.T) {
	input := `
		1 0 obj
		<<
			/Type /Catalog
			/Pages 2 0 R
			/Name /Test#20Document
		>>
		endobj

		2 0 obj
		<<
			/Type /Pages
			/Kids [3 0 R]
			/Count 1
		>>
		endobj
	`

	expected := []struct {
		kind  Kind
		value string
	}{
		{KindInteger, "1"},
		{KindInteger, "0"},
		{KindCommand, "obj"},
		{KindCommand, "<<"},
		{KindName, "Type"},
		{KindName, "Catalog"},
		{KindName, "Pages"},
		{KindInteger, "2"},
		{KindInteger, "0"},
		{KindCommand, "R"},
		{KindName, "Name"},
		{KindName, "Test Document"},
		{KindCommand, ">>"},
		{KindCommand, "endobj"},
		{KindInteger, "2"},
		{KindInteger, "0"},
		{KindCommand, "obj"},
		{KindCommand, "<<"},
		{KindName, "Type"},
		{KindName, "Pages"},
		{KindName, "Kids"},
		{KindCommand, "["},
		{KindInteger, "3"},
		{KindInteger, "0"},
		{KindCommand, "R"},
		{KindCommand, "]"},
		{KindName, "Count"},
		{KindInteger, "1"},
		{KindCommand, ">>"},
		{KindCommand, "endobj"},
		{KindEOF, ""},
	}

	lex := newTestLexer(input)
	for i, exp := range expected {
		tok, err := lex.GetObject()
		require.NoError(t, err, "token %d", i)
		require.Equal(t, exp.kind, tok.Kind, "token %d kind", i)
		switch exp.kind {
		case KindInteger:
			assert.Equal(t, exp.value, strconv.FormatInt(tok.Int, 10), "token %d value", i)
		case KindName, KindCommand:
			assert.Equal(t, exp.value, string(tok.Bytes), "token %d value", i)
		}
	}
}

func TestLexer_PeekObject(t *testing.T) {
	lex := newTestLexer("123 456")

	peeked, err := lex.PeekObject()
	require.NoError(t, err)
	assert.Equal(t, int64(123), peeked.Int)

	// Peeking did not consume: GetObject sees the same token again.
	tok, err := lex.GetObject()
	require.NoError(t, err)
	assert.Equal(t, int64(123), tok.Int)

	tok2, err := lex.GetObject()
	require.NoError(t, err)
	assert.Equal(t, int64(456), tok2.Int)
}

func TestLexer_StrayCloseParen(t *testing.T) {
	lex := newTestLexer(")")
	_, err := lex.GetObject()
	require.Error(t, err)
	var lexErr *LexicalError
	assert.ErrorAs(t, err, &lexErr)
}

func TestLexer_UnmatchedCloseAngleBracketTolerated(t *testing.T) {
	lex := newTestLexer(">")
	tok, err := lex.GetObject()
	require.NoError(t, err)
	require.Equal(t, KindCommand, tok.Kind)
	assert.True(t, tok.IsCommand(">"))
}

func TestLexer_BeginInlineImagePos(t *testing.T) {
	lex := newTestLexer("q BI /W 1 ID")

	_, pos := lex.BeginInlineImagePos()
	assert.False(t, pos)

	for {
		tok, err := lex.GetObject()
		require.NoError(t, err)
		if tok.Kind == KindEOF {
			break
		}
	}

	biPos, have := lex.BeginInlineImagePos()
	require.True(t, have)
	assert.Equal(t, int64(2), biPos)
}

func TestLexer_SkipToNextLine(t *testing.T) {
	lex := newTestLexer("garbage here\n123")
	lex.SkipToNextLine()

	tok, err := lex.GetObject()
	require.NoError(t, err)
	require.Equal(t, KindInteger, tok.Kind)
	assert.Equal(t, int64(123), tok.Int)
}

func TestLexer_MultipleTokens(t *testing.T) {
	input := "123 /Name (string) true [1 2] << /Key /Value >>"

	expected := []Kind{
		KindInteger, KindName, KindLiteralString, KindCommand,
		KindCommand, KindInteger, KindInteger, KindCommand,
		KindCommand, KindName, KindName, KindCommand, KindEOF,
	}

	lex := newTestLexer(input)
	for i, exp := range expected {
		tok, err := lex.GetObject()
		require.NoError(t, err, "token %d", i)
		assert.Equal(t, exp, tok.Kind, "token %d kind", i)
	}
}

func TestIsContentStreamOperator(t *testing.T) {
	tests := []struct {
		op       string
		expected bool
	}{
		{"BT", true},
		{"ET", true},
		{"Tj", true},
		{"re", true},
		{"Do", true},
		{"BI", true},
		{"NotAnOperator", false},
		{"obj", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsContentStreamOperator(tt.op), tt.op)
	}
}

func BenchmarkLexer_SimpleTokens(b *testing.B) {
	input := []byte("123 456 789 true false null /Name")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lex := NewLexer(NewByteSourceFromBytes(input), nil)
		for {
			tok, err := lex.GetObject()
			if err != nil || tok.Kind == KindEOF {
				break
			}
		}
	}
}

func BenchmarkLexer_ComplexPDF(b *testing.B) {
	input := []byte(`
		1 0 obj
		<< /Type /Catalog /Pages 2 0 R >>
		endobj
		2 0 obj
		<< /Type /Pages /Kids [3 0 R] /Count 1 >>
		endobj
		3 0 obj
		<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>
		endobj
	`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lex := NewLexer(NewByteSourceFromBytes(input), nil)
		for {
			tok, err := lex.GetObject()
			if err != nil || tok.Kind == KindEOF {
				break
			}
		}
	}
}
