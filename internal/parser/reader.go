package parser

import (
	"fmt"
	"os"
	"sync"
)

const startxrefKeyword = "startxref"

// Reader bootstraps a whole-document ByteSource into a resolved xref table
// and trailer: validate the "%PDF-X.Y" header, scan backward for
// "startxref", and hand the discovered offset to an XRefResolver.
//
// Reader additionally offers a cached, mutex-guarded GetObject so that
// repeated lookups of the same object number return the same PdfObject
// instance and concurrent callers (see SPEC_FULL §5) are safe.
type Reader struct {
	filename string
	file     *os.File
	src      *ByteSource
	sink     DiagnosticSink

	version string
	xref    *XRefTable
	trailer *Dictionary

	mu          sync.Mutex
	objectCache map[int]PdfObject
}

// NewReader creates a Reader for the file at filename. Open must be called
// before any other method.
func NewReader(filename string) *Reader {
	return &Reader{filename: filename, objectCache: make(map[int]PdfObject)}
}

// NewReaderFromBytes creates a Reader over an in-memory buffer; useful for
// tests and for callers that already hold the whole document in memory.
func NewReaderFromBytes(data []byte) *Reader {
	return &Reader{src: NewByteSourceFromBytes(data), objectCache: make(map[int]PdfObject)}
}

// SetDiagnosticSink installs the sink used for all non-fatal diagnostics
// produced while parsing. Must be called before Open to take effect there.
func (r *Reader) SetDiagnosticSink(sink DiagnosticSink) { r.sink = sink }

// Open validates the PDF header, locates startxref, and resolves the xref
// chain and trailer. It returns InvalidFile if no header or no startxref is
// found, ParserError for structural xref violations, and ErrEncrypted if the
// trailer carries a non-null /Encrypt entry.
func (r *Reader) Open() error {
	if r.src == nil {
		f, err := os.Open(r.filename)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		r.file = f
		r.src = NewByteSourceFromFile(f)
	}

	if r.src.Len() == 0 {
		return newInvalidFile("empty file")
	}

	if err := r.readHeader(); err != nil {
		return err
	}

	startxref := r.parseStartxref()
	if startxref == 0 {
		// Offset 0 holds the header, so 0 means startxref was not found or unreadable.
		return newInvalidFile("startxref not found")
	}

	resolver := NewXRefResolver(r.src, startxref, r.sink)
	if err := resolver.Resolve(); err != nil {
		return err
	}
	r.xref = resolver.Table()
	r.trailer = resolver.Trailer()

	if enc := r.trailer.Get("Encrypt"); enc != nil {
		if _, isNull := enc.(*Null); !isNull {
			filter := ""
			if encDict, ok := enc.(*Dictionary); ok {
				if name := encDict.GetName("Filter"); name != nil {
					filter = name.Value()
				}
			}
			return &ErrEncrypted{Filter: filter}
		}
	}

	return nil
}

// readHeader validates the leading "%PDF-X.Y" comment and records the
// version string.
func (r *Reader) readHeader() error {
	r.src.Reset()
	header := r.src.PeekBytes(8)
	if len(header) < 8 || string(header[:5]) != "%PDF-" {
		return newInvalidFile("invalid PDF header")
	}
	major, minor := header[5], header[7]
	if !isDigit(major) || header[6] != '.' || !isDigit(minor) {
		return newInvalidFile("invalid PDF version")
	}
	r.version = string(header[5:8])
	return nil
}

// parseStartxref scans backward from end of file in overlapping 1024-byte
// windows (overlap = len("startxref")) for the literal "startxref", then
// reads contiguous bytes with ASCII values in [0x20, 0x39] as decimal
// digits, tolerating stray spaces below '0'. On parse failure it returns 0.
func (r *Reader) parseStartxref() int64 {
	const step = 1024
	sigLen := int64(len(startxrefKeyword))

	pos := r.src.End()
	found := false
	for !found && pos > r.src.Start() {
		pos -= step - sigLen
		if pos < r.src.Start() {
			pos = r.src.Start()
		}
		r.src.SetPos(pos)
		found = r.find([]byte(startxrefKeyword), step)
	}
	if !found {
		return 0
	}
	r.src.Skip(sigLen)

	for {
		b, ok := r.src.GetByte()
		if !ok {
			return 0
		}
		if !isWhitespace(b) {
			r.src.Skip(-1)
			break
		}
	}

	var digits []byte
	for {
		b, ok := r.src.GetByte()
		if !ok {
			break
		}
		if b < 0x20 || b > 0x39 {
			break
		}
		digits = append(digits, b)
	}

	var value int64
	for _, d := range digits {
		if d < '0' || d > '9' {
			continue
		}
		value = value*10 + int64(d-'0')
	}
	if len(digits) == 0 {
		return 0
	}
	return value
}

// find searches the next `limit` bytes from the source's current position
// for signature; on a match it seeks to the match position and returns
// true, leaving pos unchanged on failure.
func (r *Reader) find(signature []byte, limit int64) bool {
	scan := r.src.PeekBytes(int(limit))
	if len(scan) < len(signature) {
		return false
	}
	scanLen := len(scan) - len(signature)
	for pos := 0; pos <= scanLen; pos++ {
		match := true
		for j := range signature {
			if scan[pos+j] != signature[j] {
				match = false
				break
			}
		}
		if match {
			r.src.Skip(int64(pos))
			return true
		}
	}
	return false
}

// Close releases the underlying file handle, if any. It is safe to call
// more than once.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// Version returns the "X.Y" PDF version string recorded from the header.
func (r *Reader) Version() string { return r.version }

// Trailer returns the resolved trailer dictionary.
func (r *Reader) Trailer() *Dictionary { return r.trailer }

// XRefTable returns the resolved cross-reference table.
func (r *Reader) XRefTable() *XRefTable { return r.xref }

// GetObject parses and caches the indirect object with the given number,
// consulting the xref table for its byte offset. Safe for concurrent use.
func (r *Reader) GetObject(num int) (PdfObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.objectCache[num]; ok {
		return cached, nil
	}

	entry, ok := r.xref.GetEntry(num)
	if !ok || entry.Type == XRefEntryFree {
		return nil, newParserError("object %d not found", num)
	}
	if entry.Type == XRefEntryCompressed {
		return nil, newParserError("object %d lives in an object stream (/ObjStm), which is out of scope", num)
	}

	sub := r.src.Substream(entry.Offset)
	lexer := NewLexer(sub, r.sink)
	p := NewObjectParser(lexer, true, r.sink)

	if p.Buf1().Kind != KindInteger {
		return nil, newParserError("object %d: expected object number at offset %d", num, entry.Offset)
	}
	p.shiftPublic()
	if p.Buf1().Kind != KindInteger {
		return nil, newParserError("object %d: expected generation number", num)
	}
	p.shiftPublic()
	if !p.Buf1().IsCommand(KeywordObj) {
		return nil, newParserError("object %d: expected 'obj' keyword", num)
	}
	p.shiftPublic()

	obj, err := p.GetObject()
	if err != nil {
		return nil, err
	}

	r.objectCache[num] = obj
	return obj, nil
}

// ResolveReferences resolves IndirectReference values that are obj itself or
// obj's direct Array elements / Dictionary values into their target objects.
// It does not descend into nested arrays or dictionaries, nor into the
// targets' own children; the core never resolves transitively beyond this
// single caller-invoked pass.
func (r *Reader) ResolveReferences(obj PdfObject) PdfObject {
	switch o := obj.(type) {
	case *IndirectReference:
		resolved, err := r.GetObject(o.Number)
		if err != nil {
			return obj
		}
		return resolved
	case *Array:
		out := NewArrayWithCapacity(o.Len())
		for i := 0; i < o.Len(); i++ {
			out.Append(r.resolveShallow(o.Get(i)))
		}
		return out
	case *Dictionary:
		out := NewDictionary()
		for _, k := range o.Keys() {
			out.Set(k, r.resolveShallow(o.Get(k)))
		}
		return out
	default:
		return obj
	}
}

func (r *Reader) resolveShallow(obj PdfObject) PdfObject {
	if ref, ok := obj.(*IndirectReference); ok {
		resolved, err := r.GetObject(ref.Number)
		if err != nil {
			return obj
		}
		return resolved
	}
	return obj
}

// String renders a short human-readable summary, e.g.
// `PDFReader{file="doc.pdf" version="1.7"}`.
func (r *Reader) String() string {
	return fmt.Sprintf("PDFReader{file=%q version=%q}", r.filename, r.version)
}

// OpenPDF is a convenience constructor: NewReader(path) followed by Open().
func OpenPDF(path string) (*Reader, error) {
	r := NewReader(path)
	if err := r.Open(); err != nil {
		return nil, err
	}
	return r, nil
}

// ReadPDFInfo opens path just long enough to report its version and the
// size of its resolved xref table, then closes it.
func ReadPDFInfo(path string) (version string, xrefSize int, err error) {
	r, err := OpenPDF(path)
	if err != nil {
		return "", 0, err
	}
	defer r.Close()
	return r.Version(), r.XRefTable().Size(), nil
}
