package agents

import "fmt"

// Behavior is one named agent action. Extra activation arguments are passed
// through unchanged. A returned error aborts the activation pass that invoked
// it and propagates to the caller.
type Behavior func(a *Agent, args ...any) error

// UnknownBehaviorError reports activation of a name nothing registered.
type UnknownBehaviorError struct {
	Name string
}

func (e *UnknownBehaviorError) Error() string {
	return fmt.Sprintf("agents: unknown behavior %q", e.Name)
}

// Registry maps behavior names to their implementations. Models register
// behaviors once at construction; re-registering a name replaces it.
type Registry struct {
	behaviors map[string]Behavior
}

// NewRegistry creates an empty behavior registry.
func NewRegistry() *Registry {
	return &Registry{behaviors: make(map[string]Behavior)}
}

// Register binds a name to a behavior.
func (r *Registry) Register(name string, b Behavior) {
	r.behaviors[name] = b
}

// Lookup resolves a behavior by name.
func (r *Registry) Lookup(name string) (Behavior, error) {
	b, ok := r.behaviors[name]
	if !ok {
		return nil, &UnknownBehaviorError{Name: name}
	}
	return b, nil
}

// Len returns the number of registered behaviors.
func (r *Registry) Len() int { return len(r.behaviors) }
