// Package store is the Local Durable Store: a small key-value layer that
// keeps the last catalog and the publish settings between sessions.
package store

import (
	"context"
	"sync"
)

// Fixed keys. The publish keys keep the names the web admin used.
const (
	KeyCatalog     = "academy_catalog"
	KeyGitHubToken = "cm_gh_token"
	KeyGitHubRepo  = "cm_gh_repo"
	KeyGitHubPath  = "cm_gh_path"
)

// KV is the durable key-value API every backend implements.
type KV interface {
	// Get reports ok=false when the key was never set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// MemoryKV keeps values for the life of the process only.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[string]string{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Snapshot copies the current contents; handy for asserting "unchanged".
func (m *MemoryKV) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}
