package frontend

import (
	"fmt"
	"strconv"

	"menu-admin-go/models"
)

// Client-side routes.
const (
	IndexPath  = "/ucsb-dining-commons-menu-items"
	CreatePath = IndexPath + "/create"
)

func EditPath(id int64) string   { return fmt.Sprintf("%s/edit/%d", IndexPath, id) }
func DeletePath(id int64) string { return fmt.Sprintf("%s/delete/%d", IndexPath, id) }

// TableTestID prefixes every data-testid in the menu item table.
const TableTestID = "UCSBDiningCommonsMenuItemTable"

// Action identifies what a button column does.
type Action string

const (
	ActionNone   Action = ""
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Column describes one table column. Data columns read AccessorKey from
// the item; button columns carry an Action.
type Column struct {
	Header      string
	AccessorKey string
	Action      Action
	Variant     string
}

// ID is the column's identity in test ids: the accessor for data
// columns, the header for button columns.
func (c Column) ID() string {
	if c.AccessorKey != "" {
		return c.AccessorKey
	}
	return c.Header
}

// IsButton reports whether the column renders an action button.
func (c Column) IsButton() bool { return c.Action != ActionNone }

// Value returns the cell text of a data column.
func (c Column) Value(item models.MenuItem) string {
	switch c.AccessorKey {
	case "id":
		return strconv.FormatInt(item.ID, 10)
	case "name":
		return item.Name
	case "diningCommonsCode":
		return item.DiningCommonsCode
	case "station":
		return item.Station
	}
	return ""
}

var dataColumns = []Column{
	{Header: "id", AccessorKey: "id"},
	{Header: "Name", AccessorKey: "name"},
	{Header: "Dining Commons Code", AccessorKey: "diningCommonsCode"},
	{Header: "Station", AccessorKey: "station"},
}

// VisibleColumns returns the ordered columns user may see: the four data
// columns, plus Edit and Delete for admins.
func VisibleColumns(user *models.User) []Column {
	cols := append([]Column(nil), dataColumns...)
	if models.HasRole(user, models.RoleAdmin) {
		cols = append(cols,
			Column{Header: "Edit", Action: ActionEdit, Variant: "primary"},
			Column{Header: "Delete", Action: ActionDelete, Variant: "danger"},
		)
	}
	return cols
}
