package beankit

import (
	"sync"

	"github.com/pkg/errors"
)

// aliasRegistry is a bidirectional mapping between alternate names and
// canonical names. Aliases form a DAG: the transitive chain
// alias -> ... -> canonical always terminates, and no alias is reachable
// from itself.
type aliasRegistry struct {
	mu sync.RWMutex
	// aliasToName maps an alias to the name it is bound to. The bound name
	// may itself be another alias, forming a chain that CanonicalName walks.
	aliasToName map[string]string
}

func newAliasRegistry() *aliasRegistry {
	return &aliasRegistry{
		aliasToName: make(map[string]string),
	}
}

// RegisterAlias binds alias -> name. A no-op (and success) if alias == name,
// in which case any existing binding for alias is removed instead. Fails if
// the binding would create a cycle, i.e. name is already reachable from
// alias through the existing chains.
func (r *aliasRegistry) RegisterAlias(name, alias string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if alias == name {
		delete(r.aliasToName, alias)
		return nil
	}

	if existing, ok := r.aliasToName[alias]; ok && existing == name {
		return nil
	}

	// Cycle check: would following name's own alias chain eventually reach
	// alias? If so, binding alias -> name would close a loop.
	for cursor, seen := name, map[string]bool{}; ; {
		if cursor == alias {
			return errors.Errorf("cannot register alias %q for name %q: circular reference", alias, name)
		}
		next, ok := r.aliasToName[cursor]
		if !ok || seen[cursor] {
			break
		}
		seen[cursor] = true
		cursor = next
	}

	r.aliasToName[alias] = name
	return nil
}

// RemoveAlias unbinds alias. Fails if not present.
func (r *aliasRegistry) RemoveAlias(alias string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.aliasToName[alias]; !ok {
		return errors.Errorf("no alias registered for %q", alias)
	}
	delete(r.aliasToName, alias)
	return nil
}

// IsAlias reports whether name appears as a key in the alias map.
func (r *aliasRegistry) IsAlias(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.aliasToName[name]
	return ok
}

// CanonicalName follows the alias chain starting at name until a non-alias
// is reached. Deterministic because of the acyclicity invariant.
func (r *aliasRegistry) CanonicalName(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.canonicalNameLocked(name)
}

func (r *aliasRegistry) canonicalNameLocked(name string) string {
	seen := map[string]bool{}
	cursor := name
	for {
		next, ok := r.aliasToName[cursor]
		if !ok || seen[cursor] {
			return cursor
		}
		seen[cursor] = true
		cursor = next
	}
}

// Aliases returns every string whose transitive resolution ends at name, in
// no particular order.
func (r *aliasRegistry) Aliases(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []string
	for alias := range r.aliasToName {
		if r.canonicalNameLocked(alias) == name {
			result = append(result, alias)
		}
	}
	return result
}

// ResolveAliases applies resolver to every key and value in the alias map.
// If a transformed key equals its transformed value, the entry is dropped.
// If two distinct aliases would transform to the same new string, the call
// fails and the registry is left untouched.
func (r *aliasRegistry) ResolveAliases(resolver func(string) string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]string, len(r.aliasToName))
	seenNewKeys := make(map[string]string, len(r.aliasToName))
	for alias, name := range r.aliasToName {
		newAlias := resolver(alias)
		newName := resolver(name)
		if newAlias == newName {
			continue
		}
		if prevAlias, ok := seenNewKeys[newAlias]; ok {
			return errors.Errorf("alias resolution collision: %q and %q both resolve to alias %q", alias, prevAlias, newAlias)
		}
		seenNewKeys[newAlias] = alias
		next[newAlias] = newName
	}
	r.aliasToName = next
	return nil
}
