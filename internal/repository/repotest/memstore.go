// Package repotest provides an in-memory store for tests of code built on
// the repository.
package repotest

import (
	"context"
	"sync"

	"github.com/astromusic/astromusic/internal/model"
	"github.com/astromusic/astromusic/internal/repository"
)

// MemStore is an in-memory stand-in for the repository's user and chart
// methods. Deleting a user deletes its chart, like the foreign key does.
type MemStore struct {
	mu      sync.Mutex
	users   map[string]*model.User
	charts  map[string]*model.BirthChart
	upserts int
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		users:  make(map[string]*model.User),
		charts: make(map[string]*model.BirthChart),
	}
}

// PutUser stores a copy of user without uniqueness checks.
func (m *MemStore) PutUser(user *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
}

// PutChart stores a copy of chart without touching the upsert count.
func (m *MemStore) PutChart(chart *model.BirthChart) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *chart
	m.charts[chart.UserID] = &cp
}

// Upserts reports how many UpsertChart calls succeeded.
func (m *MemStore) Upserts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}

// ChartCount reports how many charts are stored.
func (m *MemStore) ChartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.charts)
}

func (m *MemStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MemStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MemStore) UpdateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, u := range m.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MemStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	delete(m.charts, id)
	return nil
}

// UpsertChart keeps the ID and creation time of an existing chart, as the
// ON CONFLICT upsert does.
func (m *MemStore) UpsertChart(_ context.Context, chart *model.BirthChart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[chart.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	m.upserts++
	if prev, ok := m.charts[chart.UserID]; ok {
		chart.ID = prev.ID
		chart.CreatedAt = prev.CreatedAt
	}
	cp := *chart
	m.charts[chart.UserID] = &cp
	return nil
}

func (m *MemStore) GetChartByUserID(_ context.Context, userID string) (*model.BirthChart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.charts[userID]
	if !ok {
		return nil, repository.ErrChartNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MemStore) ChartExists(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.charts[userID]
	return ok, nil
}

func (m *MemStore) DeleteChartByUserID(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.charts[userID]; !ok {
		return repository.ErrChartNotFound
	}
	delete(m.charts, userID)
	return nil
}
