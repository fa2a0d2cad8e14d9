// Package memory provides an in-memory blob store for tests and ephemeral
// runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"feedstockcore/internal/blob/core"
)

// Store implements core.Store over a process-local map.
type Store struct {
	mu      sync.RWMutex
	objects map[string]entry
}

type entry struct {
	data    []byte
	written time.Time
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{objects: make(map[string]entry)}
}

func (s *Store) Driver() core.Driver { return core.DriverMemory }

func (s *Store) Put(_ context.Context, key string, data []byte) (core.Object, error) {
	if strings.TrimSpace(key) == "" {
		return core.Object{}, fmt.Errorf("empty key")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; ok {
		return core.Object{}, fmt.Errorf("%w: %s", core.ErrExists, key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	now := time.Now().UTC()
	s.objects[key] = entry{data: cp, written: now}
	return core.Object{Key: key, Size: int64(len(cp)), LastModified: now}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, key)
	}
	cp := make([]byte, len(e.data))
	copy(cp, e.data)
	return cp, nil
}

func (s *Store) List(_ context.Context, prefix string) ([]core.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var objects []core.Object
	for key, e := range s.objects {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		objects = append(objects, core.Object{Key: key, Size: int64(len(e.data)), LastModified: e.written})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return false, nil
	}
	delete(s.objects, key)
	return true, nil
}
