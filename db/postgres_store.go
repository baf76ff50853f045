package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"menu-admin-go/logger"
	"menu-admin-go/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore stores menu items in PostgreSQL through a pgx pool
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPostgresStore connects to connStr and verifies the connection.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	logger.GetLogger().Infow("connected to the database")
	return &PostgresStore{Pool: pool}, nil
}

// ApplyMigrations runs every embedded migration in name order.
// Migrations are idempotent (CREATE ... IF NOT EXISTS).
func (s *PostgresStore) ApplyMigrations(ctx context.Context) error {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		sqlBytes, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.Pool.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		logger.GetLogger().Infow("migration applied", "name", name)
	}
	return nil
}

func (s *PostgresStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, station, dining_commons_code FROM ucsb_dining_commons_menu_items
		ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var it models.MenuItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Station, &it.DiningCommonsCode); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *PostgresStore) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	it := models.MenuItem{ID: id}
	err := s.Pool.QueryRow(ctx, `
		SELECT name, station, dining_commons_code FROM ucsb_dining_commons_menu_items
		WHERE id = $1`, id,
	).Scan(&it.Name, &it.Station, &it.DiningCommonsCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to get menu item %d: %w", id, err)
	}
	return &it, nil
}

func (s *PostgresStore) CreateMenuItem(ctx context.Context, fields models.MenuItemFields) (*models.MenuItem, error) {
	it := models.MenuItem{
		Name:              fields.Name,
		Station:           fields.Station,
		DiningCommonsCode: fields.DiningCommonsCode,
	}
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO ucsb_dining_commons_menu_items (dining_commons_code, name, station)
		VALUES ($1, $2, $3)
		RETURNING id`,
		fields.DiningCommonsCode, fields.Name, fields.Station,
	).Scan(&it.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert menu item: %w", err)
	}
	return &it, nil
}

func (s *PostgresStore) UpdateMenuItem(ctx context.Context, id int64, fields models.MenuItemFields) (*models.MenuItem, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE ucsb_dining_commons_menu_items
		SET dining_commons_code = $2, name = $3, station = $4
		WHERE id = $1`,
		id, fields.DiningCommonsCode, fields.Name, fields.Station,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update menu item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, notFound(id)
	}
	return &models.MenuItem{
		ID:                id,
		Name:              fields.Name,
		Station:           fields.Station,
		DiningCommonsCode: fields.DiningCommonsCode,
	}, nil
}

func (s *PostgresStore) DeleteMenuItem(ctx context.Context, id int64) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM ucsb_dining_commons_menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM ucsb_dining_commons_menu_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count menu items: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.Pool.Close()
	return nil
}
