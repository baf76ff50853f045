package backend

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"menu-admin-go/models"
)

func TestCreateMenuItemRequest(t *testing.T) {
	req := CreateMenuItem.ToRequest(models.MenuItem{
		Name:              "Buffalo Wings",
		DiningCommonsCode: "ortega",
		Station:           "Grill",
	})

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/ucsb-dining-commons-menu-items/post", req.URL)
	assert.Equal(t, map[string]string{
		"name":              "Buffalo Wings",
		"diningCommonsCode": "ortega",
		"station":           "Grill",
	}, req.Params)
	assert.Nil(t, req.Data)
}

func TestUpdateMenuItemRequest(t *testing.T) {
	item := models.MenuItem{ID: 17, Name: "Chicken Caesar Salad", DiningCommonsCode: "portola", Station: "Salads"}
	req := UpdateMenuItem.ToRequest(item)

	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/api/ucsb-dining-commons-menu-items", req.URL)
	assert.Equal(t, map[string]string{"id": "17"}, req.Params)
	assert.Equal(t, models.MenuItemFields{Name: "Chicken Caesar Salad", DiningCommonsCode: "portola", Station: "Salads"}, req.Data)

	ev := UpdateMenuItem.Event(item)
	assert.Equal(t, MutationUpdate, ev.Kind)
	assert.Equal(t, []string{"/api/ucsb-dining-commons-menu-items?id=17", ListMenuItemsKey}, ev.AffectedKeys)
}

func TestDeleteMenuItemRequest(t *testing.T) {
	req := DeleteMenuItem.ToRequest(models.MenuItem{ID: 3})

	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/api/ucsb-dining-commons-menu-items", req.URL)
	assert.Equal(t, map[string]string{"id": "3"}, req.Params)
	assert.Nil(t, req.Data)
	assert.Contains(t, DeleteMenuItem.Event(models.MenuItem{ID: 3}).AffectedKeys, ListMenuItemsKey)
}

func TestQueries(t *testing.T) {
	list := ListMenuItemsQuery()
	assert.Equal(t, "/api/ucsb-dining-commons-menu-items/all", list.Key)
	assert.Equal(t, http.MethodGet, list.Request.Method)

	one := MenuItemQuery(17)
	assert.Equal(t, "/api/ucsb-dining-commons-menu-items?id=17", one.Key)
	assert.Equal(t, "/api/ucsb-dining-commons-menu-items", one.Request.URL)
	assert.Equal(t, map[string]string{"id": "17"}, one.Request.Params)
}
