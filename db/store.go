package db

import (
	"context"
	"fmt"

	"menu-admin-go/models"
)

// MenuItemStore is the persistence contract behind the REST API.
// Implementations return *EntityNotFoundError when an id is unknown.
type MenuItemStore interface {
	// ListMenuItems returns every menu item ordered by id.
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)
	// CreateMenuItem assigns a fresh id and stores the item.
	CreateMenuItem(ctx context.Context, fields models.MenuItemFields) (*models.MenuItem, error)
	// UpdateMenuItem replaces every mutable field of an existing item.
	UpdateMenuItem(ctx context.Context, id int64, fields models.MenuItemFields) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error
	// Count is used to decide whether seed data is needed.
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// EntityType is the entity name used in not-found messages.
const EntityType = "UCSBDiningCommonsMenuItems"

// EntityNotFoundError reports a lookup of an id that does not exist.
type EntityNotFoundError struct {
	Entity string
	ID     int64
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

func notFound(id int64) error {
	return &EntityNotFoundError{Entity: EntityType, ID: id}
}
