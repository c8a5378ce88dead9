package main

import (
	"flag"
	"github.com/burenotti/go_energy_balance/internal/adapter/catalog"
	"log/slog"
	"os"
)

// Writes an exercise workbook seeded with the built-in table, or prints the
// exercises a workbook yields when -check is set.
func main() {
	var (
		out   string
		sheet string
		check bool
	)
	flag.StringVar(&out, "out", "config/exercises.xlsx", "path of the workbook")
	flag.StringVar(&sheet, "sheet", catalog.DefaultSheet, "sheet holding the exercise table")
	flag.BoolVar(&check, "check", false, "read the workbook instead of writing it")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if check {
		refs, err := catalog.ReadWorkbook(out, sheet, logger)
		if err != nil {
			logger.Error("failed to read workbook", "path", out, "error", err)
			os.Exit(1)
		}
		for _, r := range refs {
			logger.Info("exercise",
				"name", r.Name,
				"calories_57kg", r.CaloriesPerHour57kg,
				"calories_80kg", r.CaloriesPerHour80kg,
				"category", r.Category,
			)
		}
		return
	}

	if err := catalog.WriteWorkbook(out, sheet, catalog.Fallback()); err != nil {
		logger.Error("failed to write workbook", "path", out, "error", err)
		os.Exit(1)
	}
	logger.Info("workbook written", "path", out, "sheet", sheet)
}
