package catalog

import (
	"github.com/burenotti/go_energy_balance/internal/domain/exercise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"log/slog"
	"path/filepath"
	"testing"
)

func TestLoad_FallsBackWithoutWorkbook(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.xlsx")} {
		c := Load(path, "", slog.Default())
		require.Equal(t, 5, c.Len())

		ref, ok := c.Lookup("Ciclismo")
		require.True(t, ok)
		assert.Equal(t, 453.0, ref.CaloriesPerHour57kg)
		assert.Equal(t, 635.0, ref.CaloriesPerHour80kg)
	}
}

func TestWorkbook_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exercises.xlsx")
	refs := []exercise.Reference{
		{Name: "Remo", CaloriesPerHour57kg: 340, CaloriesPerHour80kg: 476.5, Category: exercise.Strength, DefaultDurationMinutes: 40},
		{Name: "Yoga", CaloriesPerHour57kg: 170, CaloriesPerHour80kg: 238, Category: exercise.Flexibility},
	}
	require.NoError(t, WriteWorkbook(path, "", refs))

	got, err := ReadWorkbook(path, DefaultSheet, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, refs, got)

	c := Load(path, DefaultSheet, slog.Default())
	assert.Equal(t, 2, c.Len())
}

func TestReadWorkbook_SkipsBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.xlsx")

	f := excelize.NewFile()
	rows := [][]any{
		{"Calories_80kg", "Name", "Calories_57kg"},
		{635, "Ciclismo", 453},
		{"n/a", "Broken", 100},
		{100, "", 50},
		{"556,5", "Natación", "396,5"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := ReadWorkbook(path, "Sheet1", slog.Default())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Ciclismo", got[0].Name)
	assert.Equal(t, 453.0, got[0].CaloriesPerHour57kg)
	assert.Equal(t, 635.0, got[0].CaloriesPerHour80kg)
	assert.Equal(t, exercise.General, got[0].Category)

	assert.Equal(t, 396.5, got[1].CaloriesPerHour57kg)
	assert.Equal(t, 556.5, got[1].CaloriesPerHour80kg)
}

func TestReadWorkbook_MissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exercises.xlsx")
	require.NoError(t, WriteWorkbook(path, "", Fallback()))

	_, err := ReadWorkbook(path, "Other", slog.Default())
	assert.Error(t, err)

	c := Load(path, "Other", slog.Default())
	assert.Equal(t, len(Fallback()), c.Len())
}

func TestParseNumber(t *testing.T) {
	v, err := parseNumber("12,5")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	_, err = parseNumber("-1")
	assert.Error(t, err)

	_, err = parseNumber("abc")
	assert.Error(t, err)
}
