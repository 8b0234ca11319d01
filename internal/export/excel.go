package export

import (
	"fmt"
	"os"
	"path/filepath"

	"salonik/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter renders a salon's day schedule into an .xlsx grid: staff in
// columns, appointments in rows under their column, for the operator panel.
type Exporter struct {
	path   string
	logger *zerolog.Logger
}

func NewExporter(path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

// DaySchedule writes the grid for one salon/date and returns the file path.
func (e *Exporter) DaySchedule(date string, staff []*models.Staff, appointments []*models.Appointment) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Grafik"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", "Grafik dnia: "+date)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	// колонка на каждого мастера + колонка для записей без мастера
	staffCols := make(map[int64]int)
	col := 2
	for _, s := range staff {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, s.Name)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		staffCols[s.ID] = col
		col++
	}
	anyCell, _ := excelize.CoordinatesToCellName(col, 2)
	_ = f.SetCellValue(sheetName, anyCell, "Bez przypisania")
	_ = f.SetCellStyle(sheetName, anyCell, anyCell, headerStyle)
	anyCol := col

	timeCell, _ := excelize.CoordinatesToCellName(1, 2)
	_ = f.SetCellValue(sheetName, timeCell, "Godzina")
	_ = f.SetCellStyle(sheetName, timeCell, timeCell, headerStyle)

	row := 3
	for _, appt := range appointments {
		targetCol := anyCol
		if appt.StaffID != nil {
			if c, ok := staffCols[*appt.StaffID]; ok {
				targetCol = c
			}
		}

		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, appt.Time)

		cell, _ = excelize.CoordinatesToCellName(targetCol, row)
		_ = f.SetCellValue(sheetName, cell, fmt.Sprintf("%s %s — %s (%d min)",
			statusIcon(appt.Status), appt.ClientName, appt.ServiceName, appt.DurationMinutes))

		row++
	}

	_ = f.SetColWidth(sheetName, "A", "A", 10)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 30)
	}
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("grafik_%s.xlsx", date)
	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("day schedule exported")
	return filePath, nil
}

func statusIcon(status string) string {
	switch status {
	case models.StatusConfirmed:
		return "✅"
	case models.StatusPending:
		return "🕐"
	case models.StatusCompleted:
		return "✔"
	case models.StatusCancelled:
		return "❌"
	case models.StatusNoShow:
		return "🚫"
	default:
		return "•"
	}
}
