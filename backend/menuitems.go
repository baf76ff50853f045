package backend

import (
	"fmt"
	"net/http"
	"strconv"

	"menu-admin-go/models"
)

const menuItemsPath = "/api/ucsb-dining-commons-menu-items"

// ListMenuItemsKey is the query key of the full list.
const ListMenuItemsKey = menuItemsPath + "/all"

// MenuItemKey is the query key of a single item.
func MenuItemKey(id int64) string {
	return fmt.Sprintf("%s?id=%d", menuItemsPath, id)
}

func ListMenuItemsQuery() Query {
	return Query{
		Key:     ListMenuItemsKey,
		Request: Request{Method: http.MethodGet, URL: ListMenuItemsKey},
	}
}

func MenuItemQuery(id int64) Query {
	return Query{
		Key: MenuItemKey(id),
		Request: Request{
			Method: http.MethodGet,
			URL:    menuItemsPath,
			Params: map[string]string{"id": strconv.FormatInt(id, 10)},
		},
	}
}

func idParam(m models.MenuItem) map[string]string {
	return map[string]string{"id": strconv.FormatInt(m.ID, 10)}
}

// CreateMenuItem posts the form fields as query parameters.
var CreateMenuItem = Mutation[models.MenuItem]{
	Kind:   MutationCreate,
	Method: http.MethodPost,
	Path:   menuItemsPath + "/post",
	Params: func(m models.MenuItem) map[string]string {
		return map[string]string{
			"name":              m.Name,
			"diningCommonsCode": m.DiningCommonsCode,
			"station":           m.Station,
		}
	},
	StaleKeys: func(models.MenuItem) []string { return []string{ListMenuItemsKey} },
}

// UpdateMenuItem sends the id as a parameter and the remaining fields as
// the JSON body.
var UpdateMenuItem = Mutation[models.MenuItem]{
	Kind:   MutationUpdate,
	Method: http.MethodPut,
	Path:   menuItemsPath,
	Params: idParam,
	Body:   func(m models.MenuItem) any { return m.Fields() },
	StaleKeys: func(m models.MenuItem) []string {
		return []string{MenuItemKey(m.ID), ListMenuItemsKey}
	},
}

var DeleteMenuItem = Mutation[models.MenuItem]{
	Kind:   MutationDelete,
	Method: http.MethodDelete,
	Path:   menuItemsPath,
	Params: idParam,
	StaleKeys: func(m models.MenuItem) []string {
		return []string{ListMenuItemsKey, MenuItemKey(m.ID)}
	},
}

// ExportMenuItemsRequest fetches the spreadsheet of all items.
func ExportMenuItemsRequest() Request {
	return Request{Method: http.MethodGet, URL: menuItemsPath + "/export"}
}
