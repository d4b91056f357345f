// Command probe prints the shape of a workbook without touching any
// store: sheet names, headers, row counts, and how the leading Naming
// values would split into make, model, and year. Useful before pointing
// the ingester at a new export.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"carcatalog/internal/ingest"
	"carcatalog/internal/normalize"
	"carcatalog/internal/workbook"
)

func main() {
	var (
		path   string
		sample int
	)
	flag.StringVar(&path, "workbook", "", "workbook .xlsx path")
	flag.IntVar(&sample, "sample", 5, "naming values to preview per sheet")
	flag.Parse()

	if path == "" {
		log.Fatal("probe: -workbook is required")
	}

	wb, err := workbook.Open(path)
	if err != nil {
		log.Fatalf("probe: %v", err)
	}

	for _, name := range wb.SheetNames() {
		sheet, ok := wb.Sheet(name)
		if !ok {
			continue
		}
		fmt.Printf("sheet %q: %d rows\n", name, len(sheet.Rows))
		fmt.Printf("  columns: %s\n", strings.Join(sheet.Columns, ", "))
		if !sheet.HasColumn(ingest.NamingColumn) {
			continue
		}
		shown := 0
		for _, row := range sheet.Rows {
			if shown >= sample {
				break
			}
			naming := normalize.Clean(row[ingest.NamingColumn])
			if naming == "" {
				continue
			}
			mk, model, year := normalize.ParseNaming(naming)
			fmt.Printf("  %q -> make=%q model=%q year=%s\n", naming, mk, model, yearString(year))
			shown++
		}
	}
}

func yearString(y *int) string {
	if y == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *y)
}
