package services

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const logsSheet = "Logs"

var logsHeader = []interface{}{"Date", "Product", "SKU", "Action", "Quantity", "From", "To", "Reason", "User"}

// WriteLogsWorkbook renders log entries as an xlsx workbook with a single Logs sheet
func WriteLogsWorkbook(w io.Writer, entries []LogEntryView) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", logsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(logsSheet, "A1", &logsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range entries {
		row := []interface{}{
			e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			e.ProductName,
			e.ProductSKU,
			e.ActionType,
			e.Quantity,
			deref(e.LocationFrom),
			deref(e.LocationTo),
			deref(e.Reason),
			e.UserName,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(logsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
