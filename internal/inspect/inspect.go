// Package inspect is a convenience layer built atop internal/parser's core
// Reader. It walks /Root -> /Pages -> /Kids to answer the catalog/page-tree
// questions the core itself deliberately does not: page count, a given
// page's dictionary, and the catalog dictionary. None of this package is
// imported by internal/parser.
package inspect

import (
	"fmt"

	"github.com/coregx/pdfcore/internal/parser"
	"github.com/tiendc/go-deepcopy"
)

// Document wraps a parser.Reader with catalog/page-tree navigation.
type Document struct {
	reader *parser.Reader
}

// Open opens the PDF at path and resolves its xref table and trailer.
func Open(path string) (*Document, error) {
	r, err := parser.OpenPDF(path)
	if err != nil {
		return nil, err
	}
	return &Document{reader: r}, nil
}

// Close releases the underlying file handle.
func (d *Document) Close() error { return d.reader.Close() }

// Reader returns the underlying core Reader for callers that need direct
// access to GetObject/ResolveReferences.
func (d *Document) Reader() *parser.Reader { return d.reader }

// Version returns the PDF version string recorded from the header.
func (d *Document) Version() string { return d.reader.Version() }

// Catalog resolves and returns the document catalog (the trailer's /Root).
func (d *Document) Catalog() (*parser.Dictionary, error) {
	root := d.reader.Trailer().Get("Root")
	if root == nil {
		return nil, fmt.Errorf("inspect: trailer has no /Root entry")
	}
	resolved := d.reader.ResolveReferences(root)
	dict, ok := resolved.(*parser.Dictionary)
	if !ok {
		return nil, fmt.Errorf("inspect: /Root does not resolve to a dictionary")
	}
	return dict, nil
}

// pageList flattens the /Pages tree into an ordered slice of page
// dictionaries by walking /Kids depth-first. Only one level of indirect
// reference is resolved per node, matching the core's own single-pass
// ResolveReferences contract — each /Kids entry is resolved explicitly as
// this walk descends, rather than relying on any transitive resolution.
func (d *Document) pageList() ([]*parser.Dictionary, error) {
	catalog, err := d.Catalog()
	if err != nil {
		return nil, err
	}
	pagesObj := d.reader.ResolveReferences(catalog.Get("Pages"))
	pagesDict, ok := pagesObj.(*parser.Dictionary)
	if !ok {
		return nil, fmt.Errorf("inspect: /Pages does not resolve to a dictionary")
	}

	var pages []*parser.Dictionary
	var walk func(node *parser.Dictionary) error
	walk = func(node *parser.Dictionary) error {
		kidsObj := d.reader.ResolveReferences(node.Get("Kids"))
		kids, ok := kidsObj.(*parser.Array)
		if !ok {
			// No /Kids: treat this node itself as a leaf page.
			pages = append(pages, node)
			return nil
		}
		for i := 0; i < kids.Len(); i++ {
			child := d.reader.ResolveReferences(kids.Get(i))
			childDict, ok := child.(*parser.Dictionary)
			if !ok {
				continue
			}
			if name := childDict.GetName("Type"); name != nil && name.Value() == "Pages" {
				if err := walk(childDict); err != nil {
					return err
				}
				continue
			}
			pages = append(pages, childDict)
		}
		return nil
	}
	if err := walk(pagesDict); err != nil {
		return nil, err
	}
	return pages, nil
}

// PageCount returns the number of leaf pages reachable from the catalog.
func (d *Document) PageCount() (int, error) {
	pages, err := d.pageList()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// Page returns the page dictionary at the given 0-based index.
func (d *Document) Page(index int) (*parser.Dictionary, error) {
	pages, err := d.pageList()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(pages) {
		return nil, fmt.Errorf("inspect: page index %d out of range (have %d pages)", index, len(pages))
	}
	return pages[index], nil
}

// Snapshot is a plain, caller-owned summary of a document's structure: the
// shape the CLI (cmd/gxpdfcore) prints and the only type in this repository
// deep-cloned via go-deepcopy rather than the core's own hand-written
// Clone() methods (see DESIGN.md's dependency ledger for why those stay
// separate).
type Snapshot struct {
	Version    string
	XRefSize   int
	TrailerKey []string
	PageCount  int
}

// Describe builds a Snapshot of the document's current state.
func (d *Document) Describe() (*Snapshot, error) {
	count, err := d.PageCount()
	if err != nil {
		count = 0
	}
	return &Snapshot{
		Version:    d.reader.Version(),
		XRefSize:   d.reader.XRefTable().Size(),
		TrailerKey: d.reader.Trailer().KeysSorted(),
		PageCount:  count,
	}, nil
}

// Clone returns a deep copy of a Snapshot, independent of the original.
func Clone(s *Snapshot) (*Snapshot, error) {
	var out Snapshot
	if err := deepcopy.Copy(&out, s); err != nil {
		return nil, fmt.Errorf("inspect: clone snapshot: %w", err)
	}
	return &out, nil
}
