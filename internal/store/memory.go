package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/gridtile/internal/board"
)

// MemoryStore keeps boards in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	boards map[string]board.Board
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{boards: make(map[string]board.Board)}
}

func (s *MemoryStore) Load(ctx context.Context, name string) (*board.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boards[name]
	if !ok {
		return nil, fmt.Errorf("board %q: %w", name, ErrNotFound)
	}
	out := b.Clone()
	return &out, nil
}

func (s *MemoryStore) Save(ctx context.Context, b *board.Board) error {
	if b == nil {
		return fmt.Errorf("board is nil")
	}
	if err := board.ValidateName(b.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[b.Name] = b.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boards[name]; !ok {
		return fmt.Errorf("board %q: %w", name, ErrNotFound)
	}
	delete(s.boards, name)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.boards))
	for name := range s.boards {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
