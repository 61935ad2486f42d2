package testhelpers

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
)

// MemoryImageStore is an in-memory storage.ImageStore.
type MemoryImageStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	// FailSave makes every Save return an error.
	FailSave bool
}

func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{objects: map[string][]byte{}}
}

func (m *MemoryImageStore) Save(ctx context.Context, filename string, r io.Reader, contentType string) (string, error) {
	if m.FailSave {
		return "", errors.New("save failed")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	ref := "/uploads/" + filename
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[ref] = data
	return ref, nil
}

func (m *MemoryImageStore) Delete(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, ref)
	return nil
}

// Refs returns the stored references, sorted.
func (m *MemoryImageStore) Refs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := make([]string, 0, len(m.objects))
	for ref := range m.objects {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
