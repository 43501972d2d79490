// Package memory is an in-process store.Store.
package memory

import (
	"context"
	"sync"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/store"
)

// Store keeps projects in memory. It is safe for concurrent use.
// Projects are copied on the way in and out, so callers never share
// state with the store.
type Store struct {
	mu           sync.RWMutex
	projects     map[string]*artboard.Project
	byGeneration map[string]string
}

var _ store.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		projects:     make(map[string]*artboard.Project),
		byGeneration: make(map[string]string),
	}
}

// Get implements store.Store.
func (s *Store) Get(_ context.Context, id string) (*artboard.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.lookup(id)
	if !ok {
		return nil, store.NotFound(id)
	}
	return p.Clone(), nil
}

func (s *Store) lookup(id string) (*artboard.Project, bool) {
	if p, ok := s.projects[id]; ok {
		return p, true
	}
	if pid, ok := s.byGeneration[id]; ok {
		p, ok := s.projects[pid]
		return p, ok
	}
	return nil, false
}

// Create implements store.Store.
func (s *Store) Create(_ context.Context, generationID string, initial *artboard.Project) (*artboard.Project, error) {
	p, err := store.Prepare(generationID, initial)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if pid, ok := s.byGeneration[generationID]; ok {
		return s.projects[pid].Clone(), nil
	}
	for {
		if _, taken := s.projects[p.ID]; !taken {
			break
		}
		p.ID = ""
		if p, err = store.Prepare(generationID, p); err != nil {
			return nil, err
		}
	}
	s.projects[p.ID] = p
	s.byGeneration[generationID] = p.ID
	artboard.Logger().Info("store: project created", "project", p.ID, "generation", generationID)
	return p.Clone(), nil
}

// Update implements store.Store.
func (s *Store) Update(_ context.Context, id string, patch artboard.Patch) (*artboard.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.projects[id]
	if !ok {
		return nil, store.NotFound(id)
	}
	next, err := cur.WithPatch(patch)
	if err != nil {
		return nil, err
	}
	s.projects[id] = next
	return next.Clone(), nil
}

// Len returns the number of stored projects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}
