package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"menu-admin-go/logger"
	"menu-admin-go/models"
)

const exportSheet = "MenuItems"

var exportHeader = []interface{}{"id", "name", "diningCommonsCode", "station"}

// ImportMenuItemsFromExcel reads a spreadsheet stream and creates one menu
// item per data row. The first row is a header. Columns are
// name, diningCommonsCode, station; a leading "id" column is tolerated and
// ignored so exported sheets can be re-imported.
func ImportMenuItemsFromExcel(ctx context.Context, store MenuItemStore, file io.Reader) (int, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return 0, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.GetLogger().Warnw("error closing excel file", "error", err)
		}
	}()

	// Data is in the first sheet
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return 0, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	offset := 0
	if len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "id") {
		offset = 1
	}

	toAdd := []models.MenuItemFields{}
	for i, row := range rows {
		if i == 0 {
			continue // Skip header row
		}
		cell := func(col int) string {
			if len(row) > col+offset {
				return strings.TrimSpace(row[col+offset])
			}
			return ""
		}
		fields := models.MenuItemFields{
			Name:              cell(0),
			DiningCommonsCode: cell(1),
			Station:           cell(2),
		}
		if fields.Name == "" || fields.DiningCommonsCode == "" || fields.Station == "" {
			logger.GetLogger().Warnw("skipping incomplete spreadsheet row", "row", i+1)
			continue
		}
		toAdd = append(toAdd, fields)
	}

	imported := 0
	for _, fields := range toAdd {
		if _, err := store.CreateMenuItem(ctx, fields); err != nil {
			logger.GetLogger().Errorw("error adding menu item during import", "name", fields.Name, "error", err)
			continue
		}
		imported++
	}

	logger.GetLogger().Infow("imported menu items from spreadsheet", "count", imported)
	return imported, nil
}

// ExportMenuItemsToExcel writes items as an xlsx workbook with a header row.
func ExportMenuItemsToExcel(items []models.MenuItem, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, it := range items {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{it.ID, it.Name, it.DiningCommonsCode, it.Station}
		if err := f.SetSheetRow(exportSheet, cellRef, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
