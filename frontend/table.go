package frontend

import (
	"fmt"

	"menu-admin-go/models"
)

// Table is the render-ready form of a menu item table.
type Table struct {
	TestID  string
	Headers []HeaderCell
	Rows    [][]Cell
}

type HeaderCell struct {
	TestID string
	Label  string
}

// Cell is either text, an Edit link (Href) or a Delete form (FormAction).
type Cell struct {
	TestID       string
	Text         string
	Href         string
	FormAction   string
	ButtonLabel  string
	ButtonTestID string
	Variant      string
}

// BuildTable lays items out under columns.
func BuildTable(testID string, columns []Column, items []models.MenuItem) Table {
	t := Table{TestID: testID}
	for _, col := range columns {
		t.Headers = append(t.Headers, HeaderCell{
			TestID: fmt.Sprintf("%s-header-%s", testID, col.ID()),
			Label:  col.Header,
		})
	}
	for i, item := range items {
		row := make([]Cell, 0, len(columns))
		for _, col := range columns {
			cell := Cell{TestID: fmt.Sprintf("%s-cell-row-%d-col-%s", testID, i, col.ID())}
			switch col.Action {
			case ActionEdit:
				cell.Href = EditPath(item.ID)
			case ActionDelete:
				cell.FormAction = DeletePath(item.ID)
			default:
				cell.Text = col.Value(item)
			}
			if col.IsButton() {
				cell.ButtonLabel = col.Header
				cell.ButtonTestID = cell.TestID + "-button"
				cell.Variant = col.Variant
			}
			row = append(row, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
