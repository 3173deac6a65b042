// Package xlsxexport writes a finished schedule.Schedule to a workbook, one
// row per date and one column per (post, shift-time) band. It is an
// external collaborator of the core, never imported back by it: it only
// consumes the core's exported Schedule type.
package xlsxexport

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/thewbear/doembang-roster/pkg/core/model"
	"github.com/thewbear/doembang-roster/pkg/core/schedule"
)

const sheetName = "Roster"

// columns is the fixed left-to-right band order every row follows.
var columns = []struct {
	Post model.Post
	Time model.ShiftTime
}{
	{model.ER, model.DAY},
	{model.ER, model.EVENING},
	{model.ER, model.NIGHT},
	{model.Ward, model.DAY},
	{model.Ward, model.EVENING},
	{model.Ward, model.NIGHT},
}

// Write renders sched into a new workbook covering every date between
// monthStart and monthEnd inclusive, with weekend-equivalent rows
// highlighted, and returns the serialized .xlsx bytes.
func Write(sched *schedule.Schedule, monthStart, monthEnd model.Date, periods map[model.Date]model.PeriodKind) ([]byte, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("renaming default sheet: %w", err)
	}

	weekendStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F2F2F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("creating weekend row style: %w", err)
	}

	f.SetCellValue(sheetName, "A1", "Date")
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		f.SetCellValue(sheetName, cell, fmt.Sprintf("%s %s", col.Post, col.Time))
	}

	row := 2
	for d := monthStart; !d.After(monthEnd); d = d.Add(1) {
		dateCell := fmt.Sprintf("A%d", row)
		f.SetCellValue(sheetName, dateCell, d.String())

		for i, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(i+2, row)
			if doc, ok := sched.DoctorAt(d, col.Post, col.Time); ok {
				f.SetCellValue(sheetName, cell, string(doc))
			}
		}

		if periods[d] == model.Weekend {
			rowRange := fmt.Sprintf("A%d:G%d", row, row)
			if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), weekendStyle); err != nil {
				return nil, fmt.Errorf("styling weekend row %s: %w", rowRange, err)
			}
		}

		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook to buffer: %w", err)
	}
	return buf.Bytes(), nil
}
