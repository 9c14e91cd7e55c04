package beankit

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

// AutowireMode selects how a bean definition's dependencies not covered by
// explicit Dependencies are resolved by the façade's autowiring pass.
type AutowireMode int

const (
	// AutowireNone performs no implicit autowiring; only struct fields
	// tagged with the internal/fieldpath injection tag are filled.
	AutowireNone AutowireMode = iota
	// AutowireByType resolves untagged pointer/interface fields by the
	// unique bean definition, of any scope, matching their type (fails with
	// NoUniqueBeanError on ambiguity).
	AutowireByType
)

// BeanDefinition captures everything the façade needs to construct and wire
// one bean. Once the owning DefinitionRegistry is frozen, definitions
// are immutable; RegisterDefinition/RemoveDefinition both reject calls made
// after Freeze.
type BeanDefinition struct {
	Name string
	// Scope selects the lifecycle: ScopeSingleton, ScopePrototype, or a
	// custom scope name registered on the factory's configuration.
	Scope ScopeName
	// Type is the concrete pointer type the façade will allocate via
	// reflect.New when Factory is nil.
	Type reflect.Type
	// Factory, if set, is used instead of reflect-allocating Type.
	Factory func(f *BeanFactory) (interface{}, error)
	// Dependencies names beans that must be resolved (and the dependency
	// edge recorded) before this bean is considered constructed, beyond
	// whatever the autowire pass discovers from struct tags.
	Dependencies []string
	// Autowire selects the implicit-wiring strategy applied on top of
	// explicit struct tags.
	Autowire AutowireMode
	// Lazy defers creation of a singleton bean until first lookup instead
	// of pre-warming it during Freeze.
	Lazy bool
	// InitMethod and DestroyMethod name hook functions to run in addition
	// to (not instead of) the InitializingBean/DisposableBean interfaces.
	InitMethod    func(interface{}) error
	DestroyMethod func(interface{}) error
}

// definitionRegistry is a minimal bean-definition store: no markup parsing,
// just the CRUD surface the façade needs to be runnable end-to-end.
type definitionRegistry struct {
	mu      sync.RWMutex
	defs    map[string]*BeanDefinition
	order   []string
	frozen  bool
}

func newDefinitionRegistry() *definitionRegistry {
	return &definitionRegistry{defs: make(map[string]*BeanDefinition)}
}

func (d *definitionRegistry) RegisterDefinition(def *BeanDefinition) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frozen {
		return &IllegalStateError{Reason: "definition registry is frozen: can't register new bean definition"}
	}
	if def.Name == "" {
		return &DefinitionStoreError{Name: def.Name, Reason: "name must not be empty"}
	}
	if def.Factory == nil && def.Type == nil {
		return &DefinitionStoreError{Name: def.Name, Reason: "either Type or Factory must be set"}
	}
	if def.Factory == nil && def.Type.Kind() != reflect.Ptr {
		return &DefinitionStoreError{Name: def.Name, Reason: "Type must be a pointer type"}
	}
	if def.Scope == "" {
		def.Scope = ScopeSingleton
	}
	if _, exists := d.defs[def.Name]; !exists {
		d.order = append(d.order, def.Name)
	}
	d.defs[def.Name] = def
	return nil
}

func (d *definitionRegistry) RemoveDefinition(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frozen {
		return &IllegalStateError{Reason: "definition registry is frozen: can't remove bean definition"}
	}
	if _, ok := d.defs[name]; !ok {
		return errors.Errorf("no bean definition registered for %q", name)
	}
	delete(d.defs, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

func (d *definitionRegistry) GetDefinition(name string) (*BeanDefinition, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	def, ok := d.defs[name]
	return def, ok
}

func (d *definitionRegistry) ContainsDefinition(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.defs[name]
	return ok
}

func (d *definitionRegistry) DefinitionNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

func (d *definitionRegistry) DefinitionCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.defs)
}

// IsNameInUse reports whether name is already taken by a bean definition -
// used by RegisterAlias-style callers that must not shadow an existing name.
// Registered singletons and aliases are not checked.
func (d *definitionRegistry) IsNameInUse(name string) bool {
	return d.ContainsDefinition(name)
}

func (d *definitionRegistry) Freeze() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frozen = true
}

func (d *definitionRegistry) Frozen() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frozen
}
