package catalog

import (
	"errors"
	"fmt"
	"github.com/burenotti/go_energy_balance/internal/domain/exercise"
	"github.com/xuri/excelize/v2"
	"log/slog"
	"strconv"
	"strings"
)

const DefaultSheet = "Exercises"

var (
	ErrNoExercises = errors.New("workbook contains no valid exercises")
)

const (
	colName     = "name"
	colCal57    = "calories_57kg"
	colCal80    = "calories_80kg"
	colCategory = "category"
	colDuration = "default_duration"
)

var header = []string{colName, colCal57, colCal80, colCategory, colDuration}

// Load reads the exercise reference table from an .xlsx workbook. Any
// failure is logged and answered with the fallback table, so callers always
// get a usable catalog.
func Load(path, sheet string, logger *slog.Logger) *exercise.Catalog {
	refs, err := ReadWorkbook(path, sheet, logger)
	if err != nil {
		logger.Warn("using fallback exercise table", "path", path, "error", err)
		refs = Fallback()
	}
	return exercise.NewCatalog(refs)
}

func ReadWorkbook(path, sheet string, logger *slog.Logger) ([]exercise.Reference, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no workbook configured", ErrNoExercises)
	}
	if sheet == "" {
		sheet = DefaultSheet
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("failed to close workbook", "path", path, "error", err)
		}
	}()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, ErrNoExercises
	}

	cols := columnIndex(rows[0])
	refs := make([]exercise.Reference, 0, len(rows)-1)
	for i, row := range rows[1:] {
		ref, err := parseRow(row, cols)
		if err != nil {
			logger.Warn("skipping exercise row", "sheet", sheet, "row", i+2, "error", err)
			continue
		}
		refs = append(refs, ref)
	}

	if len(refs) == 0 {
		return nil, ErrNoExercises
	}
	return refs, nil
}

// WriteWorkbook stores refs in the layout ReadWorkbook expects.
func WriteWorkbook(path, sheet string, refs []exercise.Reference) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	_ = f.SetCellStyle(sheet, "A1", "E1", headerStyle)

	for i, ref := range refs {
		row := i + 2
		values := []any{ref.Name, ref.CaloriesPerHour57kg, ref.CaloriesPerHour80kg, string(ref.Category), ref.DefaultDurationMinutes}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func columnIndex(headerRow []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}
	for i, cell := range headerRow {
		key := strings.ToLower(strings.TrimSpace(cell))
		if _, ok := cols[key]; ok {
			cols[key] = i
		}
	}
	return cols
}

func parseRow(row []string, cols map[string]int) (exercise.Reference, error) {
	cell := func(col string) string {
		idx := cols[col]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	name := cell(colName)
	if name == "" {
		return exercise.Reference{}, errors.New("empty name")
	}

	cal57, err := parseNumber(cell(colCal57))
	if err != nil {
		return exercise.Reference{}, fmt.Errorf("%s: %w", colCal57, err)
	}
	cal80, err := parseNumber(cell(colCal80))
	if err != nil {
		return exercise.Reference{}, fmt.Errorf("%s: %w", colCal80, err)
	}

	duration := 0
	if raw := cell(colDuration); raw != "" {
		d, err := parseNumber(raw)
		if err != nil {
			return exercise.Reference{}, fmt.Errorf("%s: %w", colDuration, err)
		}
		duration = int(d)
	}

	return exercise.Reference{
		Name:                   name,
		CaloriesPerHour57kg:    cal57,
		CaloriesPerHour80kg:    cal80,
		Category:               exercise.ParseCategory(cell(colCategory)),
		DefaultDurationMinutes: duration,
	}, nil
}

// parseNumber accepts both "453.5" and the decimal comma some locales export.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %v", v)
	}
	return v, nil
}
