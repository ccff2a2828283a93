package parser

// ObjectParser wraps a Lexer with a two-element lookahead (buf1, buf2),
// refilled at construction. It assembles the Lexer's flat Token stream into
// durable Primitive values (PdfObject): Array, Dictionary, and
// IndirectReference are synthesized here; everything else is a direct
// Token-to-PdfObject conversion.
type ObjectParser struct {
	lexer        *Lexer
	buf1, buf2   Token
	allowStreams bool
	sink         DiagnosticSink
}

// NewObjectParser creates an ObjectParser over lexer, filling both lookahead
// slots immediately. allowStreams controls whether a Dictionary immediately
// followed by the "stream" keyword is assembled into a Stream primitive —
// callers parsing inside an already-open stream body (content streams,
// object streams) pass false to forbid nested stream objects.
func NewObjectParser(lexer *Lexer, allowStreams bool, sink DiagnosticSink) *ObjectParser {
	p := &ObjectParser{lexer: lexer, allowStreams: allowStreams, sink: sink}
	p.buf1, _ = p.lexer.GetObject()
	p.buf2, _ = p.lexer.GetObject()
	return p
}

// Buf1 returns the next unconsumed token without advancing.
func (p *ObjectParser) Buf1() Token { return p.buf1 }

// Buf2 returns the token after Buf1 without advancing.
func (p *ObjectParser) Buf2() Token { return p.buf2 }

// Source exposes the underlying ByteSource, needed by callers that read a
// stream body's raw bytes once the dictionary preceding "stream" has been
// parsed.
func (p *ObjectParser) Source() *ByteSource { return p.lexer.src }

// Pos reports the lexer's current stream position.
func (p *ObjectParser) Pos() int64 { return p.lexer.Pos() }

// shift returns buf1, moves buf2 into buf1, and refills buf2 from the
// lexer — except when buf2 is Command("ID"), in which case buf2 is promoted
// into buf1 and buf2 is set to EOF. This prevents the parser from consuming
// inline-image binary bytes as tokens: the caller assembling an inline image
// takes over reading raw bytes right after "ID".
func (p *ObjectParser) shift() Token {
	gone := p.buf1
	if p.buf2.IsCommand("ID") {
		p.buf1 = p.buf2
		p.buf2 = eofToken(p.buf2.Pos)
	} else {
		p.buf1 = p.buf2
		p.buf2, _ = p.lexer.GetObject()
	}
	return gone
}

// GetObject consumes buf1 (via shift) and assembles the next Primitive.
//
//nolint:cyclop,funlen // Central parse dispatch, mirrors the spec's single get_object rule table.
func (p *ObjectParser) GetObject() (PdfObject, error) {
	tok := p.shift()

	switch tok.Kind {
	case KindCommand:
		switch {
		case string(tok.Bytes) == "[":
			return p.readArray()
		case string(tok.Bytes) == "<<":
			return p.readDictionaryOrStream()
		default:
			return NewCommand(string(tok.Bytes)), nil
		}
	case KindInteger:
		if p.buf1.Kind == KindInteger && p.buf2.IsCommand("R") {
			genTok := p.shift() // consumes the generation integer
			p.shift()           // consumes "R"
			gen := genTok.Int
			if gen < 0 || gen > 65535 {
				return nil, newParserError("indirect reference generation %d out of range", gen)
			}
			return NewIndirectReference(int(tok.Int), int(gen)), nil
		}
		return NewInteger(tok.Int), nil
	case KindReal:
		return NewReal(tok.Real), nil
	case KindLiteralString:
		return NewStringBytes(tok.Bytes), nil
	case KindHexString:
		return NewHexString(string(tok.Bytes)), nil
	case KindName:
		return NewName(string(tok.Bytes)), nil
	case KindEOF:
		return eofMarker, nil
	default:
		return NewCommand(string(tok.Bytes)), nil
	}
}

// readArray reads objects into an Array until buf1 is Command("]") or EOF.
// On EOF it returns the partial array with a diagnostic, rather than
// erroring — this mirrors real-world PDF tolerance.
func (p *ObjectParser) readArray() (PdfObject, error) {
	arr := NewArray()
	for !p.buf1.IsCommand("]") && p.buf1.Kind != KindEOF {
		obj, err := p.GetObject()
		if err != nil {
			return nil, err
		}
		arr.Append(obj)
	}
	if p.buf1.Kind == KindEOF {
		emit(p.sink, "parser: end of file inside array at %d", p.buf1.Pos)
		return arr, nil
	}
	p.shift() // consume "]"
	return arr, nil
}

// readDictionaryOrStream reads a Dictionary. Keys must be Names; a
// non-Name key emits a diagnostic, is skipped, and parsing continues at the
// next token — it does not abort the whole dictionary. On EOF the partial
// dictionary is returned with a diagnostic. If, once the closing ">>" is
// consumed, the next token is Command("stream") and streams are allowed at
// this parser site, the dictionary and the following raw bytes are
// assembled into a Stream primitive instead.
func (p *ObjectParser) readDictionaryOrStream() (PdfObject, error) {
	dict := NewDictionary()
	for !p.buf1.IsCommand(">>") && p.buf1.Kind != KindEOF {
		if p.buf1.Kind != KindName {
			emit(p.sink, "parser: malformed dictionary: key must be a name object at %d", p.buf1.Pos)
			p.shift()
			continue
		}
		keyTok := p.shift()
		if p.buf1.Kind == KindEOF {
			break
		}
		val, err := p.GetObject()
		if err != nil {
			return nil, err
		}
		key := string(keyTok.Bytes)
		if dict.Has(key) {
			emit(p.sink, "parser: duplicate dictionary key /%s at %d, last value wins", key, keyTok.Pos)
		}
		dict.Set(key, val)
	}
	if p.buf1.Kind == KindEOF {
		emit(p.sink, "parser: end of file inside dictionary at %d", p.buf1.Pos)
		return dict, nil
	}
	p.shift() // consume ">>"

	if p.allowStreams && p.buf1.IsCommand(KeywordStream) {
		return p.readStreamBody(dict)
	}
	return dict, nil
}

// readStreamBody consumes the "stream" keyword, the single EOL that must
// follow it, and the raw (still-encoded) bytes the dictionary's /Length
// entry describes, falling back to scanning for "endstream" when /Length is
// absent, unresolved, or wrong.
func (p *ObjectParser) readStreamBody(dict *Dictionary) (PdfObject, error) {
	streamTok := p.shift() // consume "stream"
	src := p.Source()
	// The lexer has already read the lookahead token past "stream"; rewind
	// to the byte right after the keyword.
	src.SetPos(streamTok.Pos + int64(len(KeywordStream)))

	// The "stream" keyword must be followed by CRLF or LF (tolerate a bare
	// CR too) before the raw data begins.
	if b, ok := src.PeekByte(); ok && b == '\r' {
		src.Skip(1)
	}
	if b, ok := src.PeekByte(); ok && b == '\n' {
		src.Skip(1)
	}

	start := src.Pos()
	length, haveLength := streamLength(dict)

	var raw []byte
	if haveLength {
		raw = src.GetBytes(int(length))
		// Validate: "endstream" should follow shortly; if it doesn't,
		// fall back to scanning (tolerates a wrong /Length).
		if !expectKeywordSoon(src, KeywordEndstream) {
			src.SetPos(start)
			raw = scanUntilEndstream(src)
		}
	} else {
		raw = scanUntilEndstream(src)
	}

	consumeKeyword(src, KeywordEndstream)

	// Resynchronize the parser's lookahead with the lexer, which is now
	// positioned after "endstream".
	p.lexer = NewLexer(src, p.sink)
	p.buf1, _ = p.lexer.GetObject()
	p.buf2, _ = p.lexer.GetObject()

	return NewStream(dict, raw), nil
}

func streamLength(dict *Dictionary) (int64, bool) {
	v := dict.Get("Length")
	if iv, ok := v.(*Integer); ok {
		return iv.Value(), true
	}
	return 0, false
}

func expectKeywordSoon(src *ByteSource, keyword string) bool {
	save := src.Pos()
	defer src.SetPos(save)
	for i := 0; i < 4; i++ {
		for {
			b, ok := src.PeekByte()
			if !ok {
				return false
			}
			if !isWhitespace(b) {
				break
			}
			src.Skip(1)
		}
		window := src.PeekBytes(len(keyword))
		if string(window) == keyword {
			return true
		}
		break
	}
	return false
}

func scanUntilEndstream(src *ByteSource) []byte {
	start := src.Pos()
	needle := []byte(KeywordEndstream)
	window := src.PeekBytes(int(src.End() - src.Pos()))
	idx := indexOf(window, needle)
	if idx < 0 {
		src.SetPos(src.End())
		return window
	}
	src.SetPos(start + int64(idx))
	// The EOL that precedes "endstream" is not part of the stream data.
	data := window[:idx]
	if n := len(data); n > 0 && data[n-1] == '\n' {
		data = data[:n-1]
	}
	if n := len(data); n > 0 && data[n-1] == '\r' {
		data = data[:n-1]
	}
	return data
}

func consumeKeyword(src *ByteSource, keyword string) {
	for {
		b, ok := src.PeekByte()
		if !ok || !isWhitespace(b) {
			break
		}
		src.Skip(1)
	}
	window := src.PeekBytes(len(keyword))
	if string(window) == keyword {
		src.Skip(int64(len(keyword)))
	}
}

func indexOf(haystack, needle []byte) int {
	if len(needle) == 0 || len(haystack) < len(needle) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if string(haystack[i:i+len(needle)]) == string(needle) {
			return i
		}
	}
	return -1
}
