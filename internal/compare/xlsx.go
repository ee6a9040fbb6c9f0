package compare

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Comparison"

// ExportXLSX writes the comparison table to a spreadsheet, one row per benchmark.
// Regression rows are shaded red and improvement rows green.
func ExportXLSX(path string, comparisons []Comparison) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []any{"Benchmark", "Unit", "Current", "Baseline", "Change %", "Classification"}
	if err := f.SetSheetRow(xlsxSheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	regressionStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8D7DA"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	improvementStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D4EDDA"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, c := range comparisons {
		row := i + 2
		var change any = math.Round(c.ChangePercent*10) / 10
		if math.IsInf(c.ChangePercent, 0) || math.IsNaN(c.ChangePercent) {
			change = fmt.Sprintf("%v", c.ChangePercent)
		}
		values := []any{c.Name, c.Unit, c.Current, c.Baseline, change, c.Classification().String()}

		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(values), row)
		if err := f.SetSheetRow(xlsxSheet, first, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}

		switch c.Classification() {
		case Regression:
			err = f.SetCellStyle(xlsxSheet, first, last, regressionStyle)
		case Improvement:
			err = f.SetCellStyle(xlsxSheet, first, last, improvementStyle)
		}
		if err != nil {
			return fmt.Errorf("failed to style row %d: %w", row, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save spreadsheet: %w", err)
	}
	return nil
}
