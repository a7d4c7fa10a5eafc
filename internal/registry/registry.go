// Package registry maps job type names to behaviour constructors.
//
// A Registry is the factory a job.Tree uses to build children by name.
// Registration happens once at startup; names are compared in NFC form, so
// "café" written precomposed or decomposed is the same type.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/jobtree/internal/assoc"
	"github.com/roach88/jobtree/internal/job"
)

var (
	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("type already registered")

	// ErrUnknownType is returned by Construct for names that were never
	// registered. It wraps job.ErrUnknownType.
	ErrUnknownType = fmt.Errorf("registry: %w", job.ErrUnknownType)

	// ErrInvalid is returned for an empty name or a nil constructor.
	ErrInvalid = errors.New("invalid registration")
)

// Constructor builds a fresh behaviour for one job.
type Constructor func() job.Behavior

// Registry is a name to constructor table. It implements job.Factory.
//
// Not safe for concurrent registration; register everything before the tree
// starts cycling.
type Registry struct {
	ctors *assoc.Store[string, Constructor]
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{ctors: assoc.NewString[Constructor]()}
}

// Register adds ctor under name. Registering a name that already exists
// fails with ErrDuplicate and leaves the first registration in place.
func (r *Registry) Register(name string, ctor Constructor) error {
	if name == "" || ctor == nil {
		return fmt.Errorf("register %q: %w", name, ErrInvalid)
	}
	key := assoc.Normalize(name)
	if r.ctors.Has(key) {
		return fmt.Errorf("register %q: %w", name, ErrDuplicate)
	}
	r.ctors.Add(key, ctor)
	return nil
}

// MustRegister is Register for startup wiring. It panics on error.
func (r *Registry) MustRegister(name string, ctor Constructor) {
	if err := r.Register(name, ctor); err != nil {
		panic(err)
	}
}

// Construct builds a behaviour for name.
func (r *Registry) Construct(name string) (job.Behavior, error) {
	ctor, ok := r.ctors.Get(assoc.Normalize(name))
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownType)
	}
	return ctor(), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	return r.ctors.Has(assoc.Normalize(name))
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.ctors.Len())
	r.ctors.Each(func(name string, _ Constructor) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return r.ctors.Len()
}

var _ job.Factory = (*Registry)(nil)
