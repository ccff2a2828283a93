package commands

import (
	"fmt"

	"github.com/coregx/pdfcore/internal/parser"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

var xrefOutputPath string

var dumpXrefCmd = &cobra.Command{
	Use:   "dump-xref FILE",
	Short: "Print the cross-reference table",
	Long: `Print the cross-reference table (object number, offset, generation, kind).

With --format=xlsx, writes the table to a spreadsheet instead (-o sets the
destination path, defaulting to <file>.xlsx).`,
	Args: cobra.ExactArgs(1),
	RunE: runDumpXref,
}

func init() {
	dumpXrefCmd.Flags().StringVarP(&xrefOutputPath, "output", "o", "", "Output path (xlsx format only)")
}

func runDumpXref(_ *cobra.Command, args []string) error {
	path := args[0]
	reader := parser.NewReader(path)
	if err := reader.Open(); err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = reader.Close() }()

	table := reader.XRefTable()

	if outputFormat == "xlsx" {
		return writeXrefXLSX(table, xrefOutputPath, path)
	}

	fmt.Printf("%-8s %-12s %-6s %s\n", "Object", "Offset", "Gen", "Kind")
	for num := 0; num < table.Size(); num++ {
		entry, ok := table.GetEntry(num)
		if !ok {
			continue
		}
		fmt.Printf("%-8d %-12d %-6d %s\n", num, entry.Offset, entry.Generation, kindName(entry.Type))
	}
	return nil
}

func kindName(t parser.XRefEntryType) string {
	switch t {
	case parser.XRefEntryFree:
		return "free"
	case parser.XRefEntryInUse:
		return "in-use"
	case parser.XRefEntryCompressed:
		return "compressed"
	default:
		return "unknown"
	}
}

func writeXrefXLSX(table *parser.XRefTable, outPath, sourcePath string) error {
	if outPath == "" {
		outPath = sourcePath + ".xlsx"
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "XRef"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := []string{"Object", "Offset", "Generation", "Kind"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	row := 2
	for num := 0; num < table.Size(); num++ {
		entry, ok := table.GetEntry(num)
		if !ok {
			continue
		}
		values := []interface{}{num, entry.Offset, entry.Generation, kindName(entry.Type)}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		row++
	}

	return f.SaveAs(outPath)
}
