package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dan9191/finance-tracker/internal/models"
)

// Memory keeps users and obligations in process memory. It backs STORAGE=memory and tests.
type Memory struct {
	mu          sync.RWMutex
	users       map[int64]models.User
	obligations map[int64]models.Obligation
	lastUser    int64
	lastObl     int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:       make(map[int64]models.User),
		obligations: make(map[int64]models.Obligation),
	}
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	m.lastUser++
	now := time.Now().UTC()
	user.ID, user.CreatedAt, user.UpdatedAt = m.lastUser, now, now
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) list(keep func(models.Obligation) bool) []models.Obligation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Obligation{}
	for _, o := range m.obligations {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) ListObligations(_ context.Context, userID int64) ([]models.Obligation, error) {
	return m.list(func(o models.Obligation) bool { return o.UserID == userID }), nil
}

func (m *Memory) ListAllObligations(_ context.Context) ([]models.Obligation, error) {
	return m.list(func(models.Obligation) bool { return true }), nil
}

func (m *Memory) GetObligation(_ context.Context, userID, id int64) (*models.Obligation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.obligations[id]
	if !ok || o.UserID != userID {
		return nil, ErrNotFound
	}
	o = o.Clone()
	return &o, nil
}

func (m *Memory) CreateObligation(_ context.Context, o *models.Obligation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastObl++
	o.ID = m.lastObl
	if o.Payments == nil {
		o.Payments = []models.Payment{}
	}
	m.obligations[o.ID] = o.Clone()
	return nil
}

func (m *Memory) ReplaceObligation(_ context.Context, o *models.Obligation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.obligations[o.ID]
	if !ok || cur.UserID != o.UserID {
		return ErrNotFound
	}
	m.obligations[o.ID] = o.Clone()
	return nil
}

func (m *Memory) DeleteObligation(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.obligations[id]
	if !ok || cur.UserID != userID {
		return ErrNotFound
	}
	delete(m.obligations, id)
	return nil
}
