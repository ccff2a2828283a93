package parser

import "fmt"

// Kind discriminates a Token's payload. A Token is a tagged value; the
// lexer dispatches purely on the byte stream, never on a known-keyword
// table, so Kind has no separate case for "true"/"false"/"null"/"obj" — the
// general Command kind carries those byte runs and the caller above the
// lexer (ObjectParser, XRefResolver) assigns them meaning.
type Kind int

const (
	KindInteger Kind = iota
	KindReal
	KindLiteralString
	KindHexString
	KindName
	KindCommand
	KindEOF
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindReal:
		return "Real"
	case KindLiteralString:
		return "LiteralString"
	case KindHexString:
		return "HexString"
	case KindName:
		return "Name"
	case KindCommand:
		return "Command"
	case KindEOF:
		return "EOF"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Token is the Lexer's transient output. Token values do not outlive the
// call that produced them except for the byte payload, which is always a
// fresh copy owned by the caller (never a window into the source buffer).
type Token struct {
	Kind    Kind
	Int     int64
	Real    float64
	Bytes   []byte // LiteralString, HexString, Name, Command payload
	Pos     int64  // stream position at which this token started
}

func intToken(pos int64, v int64) Token  { return Token{Kind: KindInteger, Int: v, Pos: pos} }
func realToken(pos int64, v float64) Token { return Token{Kind: KindReal, Real: v, Pos: pos} }
func literalStringToken(pos int64, b []byte) Token {
	return Token{Kind: KindLiteralString, Bytes: b, Pos: pos}
}
func hexStringToken(pos int64, b []byte) Token { return Token{Kind: KindHexString, Bytes: b, Pos: pos} }
func nameToken(pos int64, b []byte) Token      { return Token{Kind: KindName, Bytes: b, Pos: pos} }
func commandToken(pos int64, s string) Token {
	return Token{Kind: KindCommand, Bytes: []byte(s), Pos: pos}
}
func eofToken(pos int64) Token { return Token{Kind: KindEOF, Pos: pos} }

// IsCommand reports whether t is a Command token equal to s.
func (t Token) IsCommand(s string) bool {
	return t.Kind == KindCommand && string(t.Bytes) == s
}

func (t Token) String() string {
	switch t.Kind {
	case KindInteger:
		return fmt.Sprintf("Integer(%d)", t.Int)
	case KindReal:
		return fmt.Sprintf("Real(%g)", t.Real)
	case KindLiteralString:
		return fmt.Sprintf("LiteralString(%q)", t.Bytes)
	case KindHexString:
		return fmt.Sprintf("HexString(% x)", t.Bytes)
	case KindName:
		return fmt.Sprintf("Name(/%s)", t.Bytes)
	case KindCommand:
		return fmt.Sprintf("Command(%s)", t.Bytes)
	case KindEOF:
		return "EOF"
	default:
		return "Token(?)"
	}
}

// PDF keyword string constants, used by ObjectParser and XRefResolver when
// interpreting Command tokens.
const (
	KeywordObj       = "obj"
	KeywordEndobj    = "endobj"
	KeywordStream    = "stream"
	KeywordEndstream = "endstream"
	KeywordXref      = "xref"
	KeywordTrailer   = "trailer"
	KeywordStartxref = "startxref"
)

// IsContentStreamOperator reports whether s is one of the fixed PDF
// content-stream operator keywords. This is an ambient classification table
// the lexer's Command output may be checked against by callers above the
// core (e.g. an inline-image-aware scanner); the lexer itself never
// dispatches on it.
//
// Reference: PDF 1.7 specification, Appendix A (Operator Summary).
//
//nolint:cyclop // Simple membership switch.
func IsContentStreamOperator(s string) bool {
	switch s {
	case "BT", "ET":
		return true
	case "Tc", "Tw", "Tz", "TL", "Tf", "Tr", "Ts":
		return true
	case "Td", "TD", "Tm", "T*":
		return true
	case "Tj", "TJ", "'", "\"":
		return true
	case "q", "Q", "cm", "w", "J", "j", "M", "d", "ri", "i", "gs":
		return true
	case "m", "l", "c", "v", "y", "h", "re":
		return true
	case "S", "s", "f", "F", "f*", "B", "B*", "b", "b*", "n":
		return true
	case "W", "W*":
		return true
	case "CS", "cs", "SC", "SCN", "sc", "scn", "G", "g", "RG", "rg", "K", "k":
		return true
	case "sh":
		return true
	case "BI", "ID", "EI":
		return true
	case "Do":
		return true
	case "MP", "DP", "BMC", "BDC", "EMC":
		return true
	case "BX", "EX":
		return true
	default:
		return false
	}
}
