package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// excelSheetName - единственный лист книги
const excelSheetName = "Incidents"

// Excel строит книгу с тем же табличным содержимым, что и CSV,
// но как структурированный лист, а не текст с разделителями.
func Excel(b Bundle) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", excelSheetName); err != nil {
		return nil, fmt.Errorf("failed to rename worksheet: %w", err)
	}

	header := []any{"ID", "Date", "Type", "Status", "Latitude", "Longitude", "Description", "Response Time (hours)"}
	if err := f.SetSheetRow(excelSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write worksheet header: %w", err)
	}

	for i, inc := range b.Incidents {
		row := []any{
			inc.ID.String(),
			inc.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			inc.IncidentType,
			inc.Status,
			inc.Latitude,
			inc.Longitude,
			inc.Description,
			responseTimeHours(inc),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(excelSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write worksheet row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
