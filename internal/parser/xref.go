package parser

import (
	"github.com/coregx/pdfcore/internal/encoding"
)

// XRefEntryType discriminates an XRefEntry's meaning.
type XRefEntryType int

const (
	// XRefEntryFree marks an object number as available for reuse.
	XRefEntryFree XRefEntryType = iota
	// XRefEntryInUse marks an object as live at a given byte offset.
	XRefEntryInUse
	// XRefEntryCompressed marks an object as living inside an /ObjStm
	// (object stream) rather than at a top-level byte offset. Decoding the
	// containing object stream is out of core scope; this kind is recorded
	// so callers can recognize it.
	XRefEntryCompressed
	// XRefEntryUnknown is used when an entry's kind byte/token was neither
	// "f" nor "n" (classical) nor 0/1/2 (stream); default rather than abort.
	XRefEntryUnknown
)

// XRefEntry is one row of the cross-reference table: { offset, generation,
// kind }. For XRefEntryCompressed, Offset holds the containing object
// stream's object number and Generation holds the index within it.
type XRefEntry struct {
	Offset     int64
	Generation int
	Type       XRefEntryType
}

// XRefTable is a dense, object-number-indexed table of XRefEntry built by
// XRefResolver. Index 0 must be Free whenever any entries exist.
type XRefTable struct {
	entries []XRefEntry
	present []bool
}

func newXRefTable() *XRefTable {
	return &XRefTable{}
}

// Size returns the number of object-number slots the table currently spans.
func (t *XRefTable) Size() int { return len(t.entries) }

// GetEntry returns the entry for objNum and whether it has ever been set.
func (t *XRefTable) GetEntry(objNum int) (XRefEntry, bool) {
	if objNum < 0 || objNum >= len(t.entries) || !t.present[objNum] {
		return XRefEntry{}, false
	}
	return t.entries[objNum], true
}

// set writes entry at objNum, growing the table with default (unset) slots
// as needed. The first call for an objNum wins and later calls for it are
// ignored; since the most recent revision is processed first, its entries
// win over an older one reached later via /Prev chaining.
func (t *XRefTable) set(objNum int, e XRefEntry) {
	if objNum < 0 {
		return
	}
	for objNum >= len(t.entries) {
		t.entries = append(t.entries, XRefEntry{Type: XRefEntryFree})
		t.present = append(t.present, false)
	}
	if t.present[objNum] {
		return // a later (more recent) revision already claimed this slot
	}
	t.entries[objNum] = e
	t.present[objNum] = true
}

// TableState is a transient parser snapshot captured before each
// inner-loop iteration of classical xref subsection parsing, so that a
// parse error may in principle be re-attempted after repair. This core
// exposes the snapshot but does not implement automatic repair.
type TableState struct {
	EntryIndex      int
	StreamPos       int64
	LookaheadBuf1   Token
	LookaheadBuf2   Token
	SubsectionFirst int
	SubsectionCount int
}

// XRefResolver locates the trailer dictionary and builds a dense table of
// object entries starting from a bootstrap startxref offset.
type XRefResolver struct {
	src   *ByteSource
	sink  DiagnosticSink
	table *XRefTable

	queue []int64
	seen  map[int64]bool

	trailer *Dictionary
}

// NewXRefResolver creates a resolver over src (spanning the whole document)
// with bootstrapStartxref as the initial worklist entry.
func NewXRefResolver(src *ByteSource, bootstrapStartxref int64, sink DiagnosticSink) *XRefResolver {
	return &XRefResolver{
		src:   src,
		sink:  sink,
		table: newXRefTable(),
		queue: []int64{bootstrapStartxref},
		seen:  make(map[int64]bool),
	}
}

// Table returns the entry table built so far.
func (r *XRefResolver) Table() *XRefTable { return r.table }

// Trailer returns the trailer dictionary of the most recent revision
// processed (the first one reached from the worklist).
func (r *XRefResolver) Trailer() *Dictionary { return r.trailer }

// Resolve drains the worklist of startxref offsets (most recent revision
// first, following /Prev chains), parsing each classical xref section (or,
// if the object found there is a dictionary-headed indirect object rather
// than the "xref" keyword, the xref-stream variant) and merging entries into
// the table.
func (r *XRefResolver) Resolve() error {
	for len(r.queue) > 0 {
		offset := r.queue[0]
		r.queue = r.queue[1:]
		if r.seen[offset] {
			continue
		}
		r.seen[offset] = true

		if err := r.resolveOne(offset); err != nil {
			return err
		}
	}

	if r.table.Size() > 0 {
		entry0, ok := r.table.GetEntry(0)
		if ok && entry0.Type != XRefEntryFree {
			return newParserError("xref entry 0 must be free")
		}
	}
	if r.trailer == nil {
		return newInvalidFile("no trailer found")
	}
	return nil
}

func (r *XRefResolver) resolveOne(offset int64) error {
	if offset < r.src.Start() || offset >= r.src.End() {
		emit(r.sink, "xref: offset %d out of range, skipping", offset)
		return nil
	}
	sub := r.src.Substream(offset)
	lexer := NewLexer(sub, r.sink)
	first, err := lexer.PeekObject()
	if err != nil {
		return newParserError("xref: %v", err)
	}

	if first.IsCommand(KeywordXref) {
		lexer.GetObject() // consume "xref"
		return r.parseClassicalSection(lexer)
	}

	// Candidate xref stream: an indirect object "n g obj << /Type /XRef ... >> stream ... endstream".
	if first.Kind == KindInteger {
		return r.parseXRefStreamSection(sub)
	}

	return newParserError("xref: expected 'xref' keyword or indirect object at offset %d", offset)
}

// parseClassicalSection parses subsection headers of form
// "first count" until "trailer" is seen, then reads the trailer dictionary.
func (r *XRefResolver) parseClassicalSection(lexer *Lexer) error {
	p := NewObjectParser(lexer, false, r.sink)

	for {
		if p.Buf1().IsCommand(KeywordTrailer) {
			p.shiftPublic()
			break
		}
		if p.Buf1().Kind == KindEOF {
			return newParserError("xref: unexpected EOF before trailer")
		}

		firstTok, err := p.nextInteger()
		if err != nil {
			return err
		}
		countTok, err := p.nextInteger()
		if err != nil {
			return err
		}
		first := int(firstTok)
		count := int(countTok)

		for i := 0; i < count; i++ {
			_ = TableState{
				EntryIndex:      i,
				StreamPos:       p.Pos(),
				LookaheadBuf1:   p.Buf1(),
				LookaheadBuf2:   p.Buf2(),
				SubsectionFirst: first,
				SubsectionCount: count,
			}

			offTok, err := p.nextInteger()
			if err != nil {
				return err
			}
			genTok, err := p.nextInteger()
			if err != nil {
				return err
			}
			kindTok := p.shiftPublic()

			var kind XRefEntryType
			switch {
			case kindTok.IsCommand("f"):
				kind = XRefEntryFree
			case kindTok.IsCommand("n"):
				kind = XRefEntryInUse
			default:
				kind = XRefEntryUnknown
			}

			if i == 0 && kind == XRefEntryFree && first == 1 {
				first = 0
			}

			r.table.set(first+i, XRefEntry{Offset: offTok, Generation: int(genTok), Type: kind})
		}
	}

	trailer, err := p.GetObject()
	if err != nil {
		return err
	}
	dict, ok := trailer.(*Dictionary)
	if !ok {
		return newParserError("xref: trailer is not a dictionary")
	}
	if r.trailer == nil {
		r.trailer = dict
	}
	if prev := dict.Get("Prev"); prev != nil {
		if iv, ok := prev.(*Integer); ok {
			r.queue = append(r.queue, iv.Value())
		}
	}
	return nil
}

// parseXRefStreamSection handles the "n g obj << ... /Type /XRef ... >>
// stream ... endstream" variant: an acknowledged extension point, gated on
// the heuristic that the object at this offset starts with a digit rather
// than the "xref" keyword.
func (r *XRefResolver) parseXRefStreamSection(sub *ByteSource) error {
	lexer := NewLexer(sub, r.sink)
	p := NewObjectParser(lexer, true, r.sink)

	if p.Buf1().Kind != KindInteger {
		return newParserError("xref stream: expected object number")
	}
	p.shiftPublic() // object number
	if p.Buf1().Kind != KindInteger {
		return newParserError("xref stream: expected generation number")
	}
	p.shiftPublic() // generation number
	if !p.Buf1().IsCommand(KeywordObj) {
		return newParserError("xref stream: expected 'obj' keyword")
	}
	p.shiftPublic()

	obj, err := p.GetObject()
	if err != nil {
		return err
	}
	stream, ok := obj.(*Stream)
	if !ok {
		return newParserError("xref stream: object is not a stream")
	}
	dict := stream.Dictionary()

	decoded, err := encoding.NewFlateDecoder().Decode(stream.Content())
	if err != nil {
		decoded = stream.Content()
	}

	table, err := r.parseXRefStreamEntries(dict, decoded)
	if err != nil {
		return err
	}
	for objNum := 0; objNum < table.Size(); objNum++ {
		if e, ok := table.GetEntry(objNum); ok {
			r.table.set(objNum, e)
		}
	}

	if r.trailer == nil {
		r.trailer = dict
	}
	if prev := dict.Get("Prev"); prev != nil {
		if iv, ok := prev.(*Integer); ok {
			r.queue = append(r.queue, iv.Value())
		}
	}
	return nil
}

// parseXRefStreamEntries decodes the binary entries of a cross-reference
// stream given its dictionary (/W field widths, /Index subsection ranges,
// default [0 Size]) and already-decompressed content bytes.
func (r *XRefResolver) parseXRefStreamEntries(dict *Dictionary, data []byte) (*XRefTable, error) {
	wArr := dict.GetArray("W")
	if wArr == nil || wArr.Len() != 3 {
		return nil, newParserError("xref stream: missing or malformed /W")
	}
	widths := make([]int, 3)
	for i := 0; i < 3; i++ {
		iv, ok := wArr.Get(i).(*Integer)
		if !ok {
			return nil, newParserError("xref stream: /W entries must be integers")
		}
		widths[i] = int(iv.Value())
	}
	rowWidth := widths[0] + widths[1] + widths[2]

	var index []int
	if idxArr := dict.GetArray("Index"); idxArr != nil {
		for i := 0; i < idxArr.Len(); i++ {
			iv, ok := idxArr.Get(i).(*Integer)
			if !ok {
				return nil, newParserError("xref stream: /Index entries must be integers")
			}
			index = append(index, int(iv.Value()))
		}
	} else {
		size := int(dict.GetInteger("Size"))
		index = []int{0, size}
	}

	table := newXRefTable()
	pos := 0
	for s := 0; s+1 < len(index); s += 2 {
		first := index[s]
		count := index[s+1]
		for i := 0; i < count; i++ {
			if pos+rowWidth > len(data) {
				return table, nil
			}
			row := data[pos : pos+rowWidth]
			pos += rowWidth

			typeField := int64(1) // default type is 1 (in-use) when width[0]==0
			off := 0
			if widths[0] > 0 {
				typeField = readBigEndianInt(row[:widths[0]])
			}
			off += widths[0]
			field2 := readBigEndianInt(row[off : off+widths[1]])
			off += widths[1]
			field3 := readBigEndianInt(row[off : off+widths[2]])

			var kind XRefEntryType
			switch typeField {
			case 0:
				kind = XRefEntryFree
			case 1:
				kind = XRefEntryInUse
			case 2:
				kind = XRefEntryCompressed
			default:
				kind = XRefEntryUnknown
			}

			table.set(first+i, XRefEntry{Offset: field2, Generation: int(field3), Type: kind})
		}
	}
	return table, nil
}

// readBigEndianInt interprets data as a big-endian unsigned integer.
func readBigEndianInt(data []byte) int64 {
	var v int64
	for _, b := range data {
		v = v<<8 | int64(b)
	}
	return v
}

// shiftPublic exposes ObjectParser.shift to this package's other files
// (xref.go needs direct token-level control that GetObject's Primitive
// assembly doesn't offer).
func (p *ObjectParser) shiftPublic() Token { return p.shift() }

// nextInteger shifts buf1 and requires it to have been an Integer token.
func (p *ObjectParser) nextInteger() (int64, error) {
	tok := p.shift()
	if tok.Kind != KindInteger {
		return 0, newParserError("expected integer, got %s", tok)
	}
	return tok.Int, nil
}
