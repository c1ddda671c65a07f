package board

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/gridtile/internal/geometry"
)

// RegistryOptions configure the surfaces a Registry opens and the grid used
// for boards that do not exist yet.
type RegistryOptions struct {
	Surface          Options
	Grid             geometry.GridConfig
	ContainerWidthPx int
}

// Registry hands out one shared Surface per board name, loading boards from
// the store on first use.
type Registry struct {
	mu       sync.Mutex
	store    Store
	opts     RegistryOptions
	surfaces map[string]*Surface
}

func NewRegistry(store Store, opts RegistryOptions) *Registry {
	opts.Surface.Store = store
	return &Registry{
		store:    store,
		opts:     opts,
		surfaces: make(map[string]*Surface),
	}
}

// Get returns the surface for an existing board, or ErrNotFound.
func (r *Registry) Get(ctx context.Context, name string) (*Surface, error) {
	return r.open(ctx, name, false)
}

// Open returns the surface for name, creating an empty board when the store
// does not have one.
func (r *Registry) Open(ctx context.Context, name string) (*Surface, error) {
	return r.open(ctx, name, true)
}

func (r *Registry) open(ctx context.Context, name string, create bool) (*Surface, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.surfaces[name]; ok {
		return s, nil
	}

	b, err := r.store.Load(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound) && create:
		b = New(name, r.opts.Grid, r.opts.ContainerWidthPx)
	case err != nil:
		return nil, err
	}

	s, err := NewSurface(b, r.opts.Surface)
	if err != nil {
		return nil, fmt.Errorf("failed to open board %q: %w", name, err)
	}
	r.surfaces[name] = s
	return s, nil
}

// List returns the names of stored boards plus any opened but unsaved ones.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	names, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[n] = struct{}{}
	}

	r.mu.Lock()
	for n := range r.surfaces {
		if _, ok := seen[n]; !ok {
			names = append(names, n)
		}
	}
	r.mu.Unlock()

	sort.Strings(names)
	return names, nil
}

// Delete forgets the board and removes it from the store.
func (r *Registry) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	r.mu.Lock()
	_, open := r.surfaces[name]
	delete(r.surfaces, name)
	r.mu.Unlock()

	err := r.store.Delete(ctx, name)
	if errors.Is(err, ErrNotFound) && open {
		return nil
	}
	return err
}

// SaveAll saves every open surface with unsaved changes.
func (r *Registry) SaveAll(ctx context.Context) error {
	r.mu.Lock()
	surfaces := make([]*Surface, 0, len(r.surfaces))
	for _, s := range r.surfaces {
		surfaces = append(surfaces, s)
	}
	r.mu.Unlock()

	var errs []error
	for _, s := range surfaces {
		if !s.Dirty() {
			continue
		}
		if err := s.Save(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Store returns the backing store.
func (r *Registry) Store() Store { return r.store }
