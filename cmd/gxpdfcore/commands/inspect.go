package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/coregx/pdfcore/internal/inspect"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Print version, xref entry count, trailer keys, and page count",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(_ *cobra.Command, args []string) error {
	doc, err := inspect.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = doc.Close() }()

	snap, err := doc.Describe()
	if err != nil {
		return fmt.Errorf("failed to describe document: %w", err)
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(snap)
	}

	fmt.Printf("Version:      %s\n", snap.Version)
	fmt.Printf("XRef entries: %d\n", snap.XRefSize)
	fmt.Printf("Pages:        %d\n", snap.PageCount)
	fmt.Printf("Trailer keys: %v\n", snap.TrailerKey)
	return nil
}
