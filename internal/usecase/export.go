package usecase

import (
	"bytes"
	"fmt"

	"resume-review-backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

var pendingExportHeaders = []string{"SUBMITTED AT", "CANDIDATE NAME", "CANDIDATE EMAIL", "FILE NAME", "STATUS", "RESUME ID"}

func exportPendingExcel(resumes []domain.Resume) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Pending Review"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, header := range pendingExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	// Dark blue header with white text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(pendingExportHeaders), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, r := range resumes {
		var name, email string
		if r.Owner != nil {
			email = r.Owner.Email
			if r.Owner.Name != nil {
				name = *r.Owner.Name
			}
		}
		row := []interface{}{
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
			name,
			email,
			r.FileName,
			string(r.Status),
			r.ID,
		}
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range pendingExportHeaders {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 24)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
