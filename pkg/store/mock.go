package store

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/ritzau/finance-assistant/pkg/model"
)

// MockStore is an in-memory RecordStore and LinkService for testing
type MockStore struct {
	mu       sync.Mutex
	records  map[string][]model.Record
	links    map[model.ID]Link
	nextID   int
	Unlinked []model.PluginRecord

	// ListFunc overrides List when set
	ListFunc func(ctx context.Context, res model.Resource) ([]model.Record, error)
	// Err is returned by every call when set
	Err error

	ListCalls int
}

// NewMockStore creates a mock holding the given records per resource name
func NewMockStore(records map[string][]model.Record) *MockStore {
	m := &MockStore{
		records: make(map[string][]model.Record),
		links:   make(map[model.ID]Link),
		nextID:  1000,
	}
	for name, rs := range records {
		m.records[name] = slices.Clone(rs)
	}
	return m
}

// SetRecords replaces the records of a resource
func (m *MockStore) SetRecords(resource string, records []model.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[resource] = slices.Clone(records)
}

// Links returns the links created so far
func (m *MockStore) Links() map[model.ID]Link {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[model.ID]Link, len(m.links))
	for k, v := range m.links {
		out[k] = v
	}
	return out
}

func (m *MockStore) List(ctx context.Context, res model.Resource) ([]model.Record, error) {
	m.mu.Lock()
	m.ListCalls++
	fn := m.ListFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, res)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.records[res.Name]), nil
}

func (m *MockStore) Create(ctx context.Context, res model.Resource, in RecordInput) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return model.Record{}, m.Err
	}
	if err := in.Validate(); err != nil {
		return model.Record{}, err
	}

	m.nextID++
	r := model.Record{ID: model.ID(strconv.Itoa(m.nextID)), Name: in.Name, Parent: in.Parent}
	m.records[res.Name] = append(m.records[res.Name], r)
	return r, nil
}

func (m *MockStore) Update(ctx context.Context, res model.Resource, id model.ID, in RecordInput) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return model.Record{}, m.Err
	}

	rs := m.records[res.Name]
	for i := range rs {
		if rs[i].ID == id {
			rs[i].Name = in.Name
			rs[i].Parent = in.Parent
			return rs[i], nil
		}
	}
	return model.Record{}, fmt.Errorf("%s %s: %w", res.Name, id, ErrNotFound)
}

func (m *MockStore) Delete(ctx context.Context, res model.Resource, id model.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	rs := m.records[res.Name]
	for i := range rs {
		if rs[i].ID == id {
			m.records[res.Name] = slices.Delete(rs, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%s %s: %w", res.Name, id, ErrNotFound)
}

func (m *MockStore) CreateLink(ctx context.Context, link Link) (model.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}

	m.nextID++
	id := model.ID(strconv.Itoa(m.nextID))
	m.links[id] = link
	return id, nil
}

func (m *MockStore) DeleteLink(ctx context.Context, linkID model.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.links[linkID]; !ok {
		return fmt.Errorf("link %s: %w", linkID, ErrNotFound)
	}
	delete(m.links, linkID)
	return nil
}

func (m *MockStore) ListUnlinked(ctx context.Context, plugin, recordType string) ([]model.PluginRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.Unlinked), nil
}
