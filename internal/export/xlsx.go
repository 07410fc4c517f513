package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"aviancal/internal/model"
)

const firstDataRow = 3

// WriteXLSX writes a single-sheet workbook: a merged title row, an empty
// separator row, then one bordered row per day with bold rows for days
// that carry a fixed time.
func WriteXLSX(w io.Writer, title string, year int, entries []model.ScheduleEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	for col, width := range map[string]float64{"A": 15, "B": 20, "C": 40} {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("xlsx: column width: %w", err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("xlsx: title style: %w", err)
	}
	plain, err := f.NewStyle(&excelize.Style{Border: thinBorder()})
	if err != nil {
		return fmt.Errorf("xlsx: cell style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Border: thinBorder(), Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: bold style: %w", err)
	}

	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - Ano %d", title, year)); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", "C1"); err != nil {
		return fmt.Errorf("xlsx: merge title: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", titleStyle); err != nil {
		return err
	}

	for i, e := range entries {
		row := firstDataRow + i
		values := []any{e.DateFormatted, e.Location, e.Schedule}
		start, _ := excelize.CoordinatesToCellName(1, row)
		end, _ := excelize.CoordinatesToCellName(len(values), row)

		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", row, err)
		}
		style := plain
		if e.IsBold {
			style = bold
		}
		if err := f.SetCellStyle(sheet, start, end, style); err != nil {
			return fmt.Errorf("xlsx: row %d style: %w", row, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func thinBorder() []excelize.Border {
	sides := []string{"left", "top", "right", "bottom"}
	out := make([]excelize.Border, 0, len(sides))
	for _, s := range sides {
		out = append(out, excelize.Border{Type: s, Color: "000000", Style: 1})
	}
	return out
}

// sheetName trims title to Excel's 31-character limit and drops the
// characters Excel refuses in sheet names.
func sheetName(title string) string {
	name := []rune(unsafeSheetChars.Replace(title))
	if len(name) == 0 {
		return "Agenda"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return string(name)
}
