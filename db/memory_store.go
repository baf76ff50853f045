package db

import (
	"context"
	"sort"
	"sync"

	"menu-admin-go/models"
)

// MemoryStore keeps menu items in process memory. Used for STORE=memory
// and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]models.MenuItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[int64]models.MenuItem)}
}

func (s *MemoryStore) ListMenuItems(_ context.Context) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.MenuItem, 0, len(s.items))
	for _, it := range s.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryStore) GetMenuItem(_ context.Context, id int64) (*models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return nil, notFound(id)
	}
	return &it, nil
}

func (s *MemoryStore) CreateMenuItem(_ context.Context, fields models.MenuItemFields) (*models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	it := models.MenuItem{
		ID:                s.nextID,
		Name:              fields.Name,
		Station:           fields.Station,
		DiningCommonsCode: fields.DiningCommonsCode,
	}
	s.items[it.ID] = it
	return &it, nil
}

func (s *MemoryStore) UpdateMenuItem(_ context.Context, id int64, fields models.MenuItemFields) (*models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return nil, notFound(id)
	}
	it := models.MenuItem{
		ID:                id,
		Name:              fields.Name,
		Station:           fields.Station,
		DiningCommonsCode: fields.DiningCommonsCode,
	}
	s.items[id] = it
	return &it, nil
}

func (s *MemoryStore) DeleteMenuItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return notFound(id)
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
