package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-redis/redis/v8"

	"menu-admin-go/config"
	"menu-admin-go/logger"
	"menu-admin-go/models"
)

const (
	menuItemsKey     = "menuitems"        // Set: stores all menu item IDs
	menuItemSeqKey   = "menuitems:nextid" // String counter: last assigned ID
	menuItemInfoPfx  = "menuitem:"        // Hash prefix: menuitem:{id} -> item fields
	fieldID          = "id"
	fieldName        = "name"
	fieldStation     = "station"
	fieldDiningCommo = "diningCommonsCode"
)

// RedisService stores menu items in Redis
type RedisService struct {
	Client *redis.Client
}

// NewRedisService creates a new RedisService instance
func NewRedisService(client *redis.Client) *RedisService {
	return &RedisService{Client: client}
}

// Helper to generate menu item info key
func getMenuItemKey(id int64) string {
	return menuItemInfoPfx + strconv.FormatInt(id, 10)
}

// ListMenuItems retrieves all menu items, ordered by id
func (s *RedisService) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	ids, err := s.Client.SMembers(ctx, menuItemsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.MenuItem{}, nil
		}
		return nil, fmt.Errorf("failed to get menu item IDs from Redis: %w", err)
	}

	items := make([]models.MenuItem, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			logger.GetLogger().Warnw("skipping malformed menu item id", "id", raw)
			continue
		}
		item, err := s.GetMenuItem(ctx, id)
		if err != nil {
			var nf *EntityNotFoundError
			if errors.As(err, &nf) {
				continue
			}
			// Log the error but continue trying to fetch others
			logger.GetLogger().Errorw("error fetching menu item details", "id", id, "error", err)
			continue
		}
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// GetMenuItem retrieves a menu item by its ID
func (s *RedisService) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	data, err := s.Client.HGetAll(ctx, getMenuItemKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to get menu item from Redis: %w", err)
	}
	if len(data) == 0 {
		return nil, notFound(id)
	}

	return &models.MenuItem{
		ID:                id,
		Name:              data[fieldName],
		Station:           data[fieldStation],
		DiningCommonsCode: data[fieldDiningCommo],
	}, nil
}

// CreateMenuItem allocates the next ID and stores the item
func (s *RedisService) CreateMenuItem(ctx context.Context, fields models.MenuItemFields) (*models.MenuItem, error) {
	id, err := s.Client.Incr(ctx, menuItemSeqKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate menu item id: %w", err)
	}

	item := models.MenuItem{
		ID:                id,
		Name:              fields.Name,
		Station:           fields.Station,
		DiningCommonsCode: fields.DiningCommonsCode,
	}
	if err := s.write(ctx, item); err != nil {
		return nil, err
	}
	logger.GetLogger().Infow("added menu item", "id", item.ID, "name", item.Name)
	return &item, nil
}

// maxUpdateAttempts bounds retries when a concurrent write touches the id set.
const maxUpdateAttempts = 3

// UpdateMenuItem replaces the fields of an existing item. The existence
// check runs under WATCH so a concurrent delete aborts the write instead
// of being undone by it.
func (s *RedisService) UpdateMenuItem(ctx context.Context, id int64, fields models.MenuItemFields) (*models.MenuItem, error) {
	item := models.MenuItem{
		ID:                id,
		Name:              fields.Name,
		Station:           fields.Station,
		DiningCommonsCode: fields.DiningCommonsCode,
	}

	update := func(tx *redis.Tx) error {
		exists, err := tx.SIsMember(ctx, menuItemsKey, strconv.FormatInt(id, 10)).Result()
		if err != nil {
			return fmt.Errorf("failed to check menu item existence: %w", err)
		}
		if !exists {
			return notFound(id)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			writeItem(ctx, pipe, item)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.Client.Watch(ctx, update, menuItemsKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			var nf *EntityNotFoundError
			if errors.As(err, &nf) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to write menu item %d to Redis: %w", id, err)
		}
		return &item, nil
	}
	return nil, fmt.Errorf("failed to update menu item %d: concurrent modification", id)
}

func (s *RedisService) write(ctx context.Context, item models.MenuItem) error {
	pipe := s.Client.TxPipeline()
	writeItem(ctx, pipe, item)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write menu item %d to Redis: %w", item.ID, err)
	}
	return nil
}

func writeItem(ctx context.Context, pipe redis.Pipeliner, item models.MenuItem) {
	// Add ID to the global set of menu items
	pipe.SAdd(ctx, menuItemsKey, item.ID)
	// Store details in a Hash
	pipe.HSet(ctx, getMenuItemKey(item.ID), map[string]interface{}{
		fieldID:          item.ID,
		fieldName:        item.Name,
		fieldStation:     item.Station,
		fieldDiningCommo: item.DiningCommonsCode,
	})
}

// DeleteMenuItem removes the item and its ID from the index set
func (s *RedisService) DeleteMenuItem(ctx context.Context, id int64) error {
	pipe := s.Client.TxPipeline()
	removed := pipe.SRem(ctx, menuItemsKey, strconv.FormatInt(id, 10))
	pipe.Del(ctx, getMenuItemKey(id))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete menu item %d from Redis: %w", id, err)
	}
	if removed.Val() == 0 {
		return notFound(id)
	}
	return nil
}

// Count returns the number of stored menu items
func (s *RedisService) Count(ctx context.Context) (int64, error) {
	n, err := s.Client.SCard(ctx, menuItemsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to count menu items: %w", err)
	}
	return n, nil
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *RedisService) Close() error {
	return s.Client.Close()
}

// NewRedisClient creates and tests a Redis client connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", cfg.Addr, err)
	}

	logger.GetLogger().Infow("connected to Redis", "addr", cfg.Addr, "db", cfg.DB)
	return rdb, nil
}
