// Package main provides the gxpdfcore command-line interface.
//
// gxpdfcore is a thin inspection tool built atop the parsing core: it
// reports a PDF's version, xref table, and resolved objects, without
// interpreting content streams, decoding fonts, or writing PDFs.
//
// Usage:
//
//	gxpdfcore [command] [flags]
//
// Available Commands:
//
//	inspect     Print version, xref size, trailer keys, and page count
//	dump-xref   Print (or export) the cross-reference table
//	dump-object Pretty-print a single resolved object
//
// Use "gxpdfcore [command] --help" for more information about a command.
package main

import (
	"os"

	"github.com/coregx/pdfcore/cmd/gxpdfcore/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
