// Package commands implements the gxpdfcore CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// outputFormat controls text/json/xlsx rendering where a command supports it.
	outputFormat string
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "gxpdfcore",
	Short: "Inspect a PDF's structure without interpreting its content",
	Long: `gxpdfcore is a thin inspection tool over the PDF parsing core.

It reports a document's version, cross-reference table, and resolved
objects. It does not decode content streams, fonts, or images, and it
never writes PDFs.

Examples:
  gxpdfcore inspect document.pdf
  gxpdfcore dump-xref document.pdf
  gxpdfcore dump-xref document.pdf --format=xlsx -o xref.xlsx
  gxpdfcore dump-object document.pdf 5 0`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text, json, xlsx (dump-xref only)")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(dumpXrefCmd)
	rootCmd.AddCommand(dumpObjectCmd)
}
