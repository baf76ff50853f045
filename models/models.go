package models

import (
	"encoding/json"
	"strings"
)

// MenuItem represents a dining commons menu item
type MenuItem struct {
	ID                int64  `json:"id"`                // Server-assigned, immutable once persisted
	Name              string `json:"name"`              // Item name
	Station           string `json:"station"`           // Station serving the item
	DiningCommonsCode string `json:"diningCommonsCode"` // Dining commons code (e.g. "ortega")
}

// MenuItemFields is the mutable part of a menu item, used as PUT request body
type MenuItemFields struct {
	Name              string `json:"name"`
	DiningCommonsCode string `json:"diningCommonsCode"`
	Station           string `json:"station"`
}

// Fields returns the mutable fields of the item
func (m MenuItem) Fields() MenuItemFields {
	return MenuItemFields{
		Name:              m.Name,
		DiningCommonsCode: m.DiningCommonsCode,
		Station:           m.Station,
	}
}

// Roles carried by a User
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User is the currently logged-in user
type User struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the user holds role. A nil user holds no roles.
func HasRole(u *User, role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GenericMessage is the confirmation body returned by DELETE
type GenericMessage struct {
	Message string `json:"message"`
}

// UnmarshalJSON accepts either {"message": "..."} or a bare JSON string.
func (g *GenericMessage) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		return json.Unmarshal(data, &g.Message)
	}
	type plain GenericMessage
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*g = GenericMessage(p)
	return nil
}
