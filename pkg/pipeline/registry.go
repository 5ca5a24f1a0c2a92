package pipeline

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/askiada/go-reduction/pkg/pipeline/model"
)

// Registry resolves stable runner names to runners. Steps reference runners
// by name so a checkpoint stores only the name and the kwargs, never code; a
// loaded pipeline resolves its steps against the registry it is given.
type Registry struct {
	mu      sync.RWMutex
	runners map[string]Runner
}

// NewRegistry creates an empty runner registry.
func NewRegistry() *Registry {
	return &Registry{runners: make(map[string]Runner)}
}

// Register adds a runner under a stable name. Registering the same name twice
// is an error: a silent replacement would change the meaning of checkpoints
// already on disk.
func (r *Registry) Register(name string, runner Runner) error {
	if name == "" {
		return errors.New("runner name must not be empty")
	}
	if runner == nil {
		return errors.Errorf("runner %q must not be nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runners[name]; ok {
		return errors.Errorf("runner %q is already registered", name)
	}
	r.runners[name] = runner

	return nil
}

// RegisterFunc adds a function as a runner under a stable name.
func (r *Registry) RegisterFunc(name string, fn func(ctx context.Context, pipe *Pipeline, kwargs Kwargs) (*model.Result, error)) error {
	return r.Register(name, RunnerFunc(fn))
}

// Resolve returns the runner registered under name.
func (r *Registry) Resolve(name string) (Runner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runner, ok := r.runners[name]
	if !ok {
		return nil, errors.Errorf("unknown runner %q", name)
	}

	return runner, nil
}

// Names returns the registered runner names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
