package beankit

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// singletonRegistry is the three-tier singleton cache and lifecycle tracker.
// One singletonMutex serializes creation, cache
// mutation, and the in-creation set; the auxiliary bookkeeping maps
// (dependents-of, depends-on, contained-of, disposables) share one separate
// mutex, auxMu, so callers can take the narrower lock they need, with
// singletonMutex always acquired outermost when more than one lock is
// needed.
type singletonRegistry struct {
	// singletonMutex is exposed (via Mutex()) so collaborators needing
	// atomic compound operations across tiers can share it, rather than
	// reaching for a raw primitive of their own.
	singletonMutex sync.Mutex

	primary  map[string]interface{} // canonical name -> finished instance
	early    map[string]interface{} // canonical name -> partially-initialized instance
	producer map[string]func() (interface{}, error)

	registeredNames []string        // insertion order, for reverse-order teardown
	inCreation      map[string]bool // names currently being created
	inExclusion     map[string]bool // names exempted from the inCreation check
	waiters         map[string]chan struct{} // closed when the in-progress creation of a name finishes
	earlyConsumed   map[string]bool          // names whose producer was consumed during the current creation

	suppressed map[string]*suppressedExceptions // owner of the suppressed-exception buffer per in-flight name

	destructionInProgress bool

	auxMu        sync.Mutex
	disposables  map[string]func() error // insertion-ordered via disposeOrder
	disposeOrder []string
	containedOf  map[string][]string // outer -> inner beans
	dependentsOf map[string]map[string]bool
	dependsOn    map[string]map[string]bool
}

func newSingletonRegistry() *singletonRegistry {
	return &singletonRegistry{
		primary:      make(map[string]interface{}),
		early:        make(map[string]interface{}),
		producer:     make(map[string]func() (interface{}, error)),
		inCreation:   make(map[string]bool),
		inExclusion:  make(map[string]bool),
		waiters:      make(map[string]chan struct{}),
		earlyConsumed: make(map[string]bool),
		suppressed:   make(map[string]*suppressedExceptions),
		disposables:  make(map[string]func() error),
		containedOf:  make(map[string][]string),
		dependentsOf: make(map[string]map[string]bool),
		dependsOn:    make(map[string]map[string]bool),
	}
}

// Mutex exposes the singleton lock so collaborators (e.g. the factory-bean
// registry) can perform atomic compound operations against the same lock
// the engine uses internally.
func (r *singletonRegistry) Mutex() *sync.Mutex { return &r.singletonMutex }

// RegisterSingleton publishes an already-created instance directly, without
// going through the creation protocol. Fails if name is already present in
// the primary cache: registering an existing name must fail, not silently
// replace it.
func (r *singletonRegistry) RegisterSingleton(name string, instance interface{}) error {
	r.singletonMutex.Lock()
	defer r.singletonMutex.Unlock()
	if _, ok := r.primary[name]; ok {
		return errors.Errorf("cannot register singleton %q: an instance is already registered under that name", name)
	}
	r.addSingletonLocked(name, instance)
	return nil
}

func (r *singletonRegistry) addSingletonLocked(name string, instance interface{}) {
	r.primary[name] = instance
	delete(r.early, name)
	delete(r.producer, name)
	r.registeredNames = append(r.registeredNames, name)
	logrus.WithField("name", name).Trace("Singleton published to primary cache")
}

// GetSingleton implements the three-tier lookup. allowEarly controls
// whether a partially-initialized reference may be handed out to break a
// creation cycle.
func (r *singletonRegistry) GetSingleton(name string, allowEarly bool) (interface{}, bool) {
	r.singletonMutex.Lock()
	defer r.singletonMutex.Unlock()
	return r.getSingletonLocked(name, allowEarly)
}

func (r *singletonRegistry) getSingletonLocked(name string, allowEarly bool) (interface{}, bool) {
	if instance, ok := r.primary[name]; ok {
		return instance, true
	}
	if !r.inCreation[name] {
		return nil, false
	}
	if !allowEarly {
		return nil, false
	}
	if instance, ok := r.early[name]; ok {
		return instance, true
	}
	if produce, ok := r.producer[name]; ok {
		instance, err := produce()
		delete(r.producer, name)
		if err != nil {
			logrus.WithField("name", name).WithError(err).Warn("Early-reference producer failed")
			return nil, false
		}
		r.early[name] = instance
		r.earlyConsumed[name] = true
		logrus.WithField("name", name).Trace("Early reference materialized from producer")
		return instance, true
	}
	return nil, false
}

// WasEarlyReferenceConsumed reports whether name's early-reference producer
// was ever consumed during the creation attempt currently in progress for
// name. The façade uses this to detect the "unresolvable" half of
// the cycle-breaking contract: if a post-processor wraps the final instance
// into something other than what was already handed out as an early
// reference, the cycle cannot be honored.
func (r *singletonRegistry) WasEarlyReferenceConsumed(name string) bool {
	r.singletonMutex.Lock()
	defer r.singletonMutex.Unlock()
	return r.earlyConsumed[name]
}

// ContainsSingleton reports whether name has a fully-initialized singleton.
func (r *singletonRegistry) ContainsSingleton(name string) bool {
	r.singletonMutex.Lock()
	defer r.singletonMutex.Unlock()
	_, ok := r.primary[name]
	return ok
}

// SingletonNames returns the canonical names of every registered singleton,
// in registration order.
func (r *singletonRegistry) SingletonNames() []string {
	r.singletonMutex.Lock()
	defer r.singletonMutex.Unlock()
	out := make([]string, len(r.registeredNames))
	copy(out, r.registeredNames)
	return out
}

// SingletonCount returns the number of registered singleton names.
func (r *singletonRegistry) SingletonCount() int {
	r.singletonMutex.Lock()
	defer r.singletonMutex.Unlock()
	return len(r.registeredNames)
}

// AddProducer registers a deferred producer of the early reference for name
// while it is in creation. It is the factory's job to call this at
// the earliest point the raw, not-yet-populated instance exists.
func (r *singletonRegistry) AddProducer(name string, produce func() (interface{}, error)) {
	r.singletonMutex.Lock()
	defer r.singletonMutex.Unlock()
	if _, ok := r.primary[name]; ok {
		return
	}
	if _, ok := r.early[name]; ok {
		return
	}
	r.producer[name] = produce
}

// RemoveSingleton removes name from all three cache tiers and from the
// registered-name order. Used on the creation-failure cleanup path so no
// half-created entry survives.
func (r *singletonRegistry) RemoveSingleton(name string) {
	r.singletonMutex.Lock()
	defer r.singletonMutex.Unlock()
	r.removeSingletonLocked(name)
}

// removeSingletonLocked is the unlocked body of RemoveSingleton, callable by
// code that already holds singletonMutex (GetOrCreateSingleton's
// creation-failure path, DestroySingleton).
func (r *singletonRegistry) removeSingletonLocked(name string) {
	delete(r.primary, name)
	delete(r.early, name)
	delete(r.producer, name)
	for i, n := range r.registeredNames {
		if n == name {
			r.registeredNames = append(r.registeredNames[:i], r.registeredNames[i+1:]...)
			break
		}
	}
}

// GetOrCreateSingleton implements the create-or-get protocol.
//
// ownChain identifies the set of names the calling goroutine's own logical
// GetBean call stack is already in the middle of resolving; the façade
// threads this map through recursive dependency resolution. Go's
// sync.Mutex is not reentrant, so this distinction is how the registry
// tells a genuine circular reference
// (ownChain[name] is true: the same call stack is already creating name,
// so it must not block on itself) apart from two unrelated goroutines
// racing to create the same brand-new singleton (ownChain[name] is false:
// the second caller blocks until the first finishes, then adopts the
// result).
func (r *singletonRegistry) GetOrCreateSingleton(name string, ownChain map[string]bool, create func() (interface{}, error)) (interface{}, error) {
	for {
		r.singletonMutex.Lock()

		if instance, ok := r.primary[name]; ok {
			r.singletonMutex.Unlock()
			return instance, nil
		}

		if r.destructionInProgress {
			r.singletonMutex.Unlock()
			return nil, &CreationNotAllowedError{Name: name}
		}

		if !r.inExclusion[name] && r.inCreation[name] {
			if ownChain[name] {
				r.singletonMutex.Unlock()
				return nil, &CurrentlyInCreationError{Name: name}
			}
			wait := r.waiters[name]
			if wait == nil {
				wait = make(chan struct{})
				r.waiters[name] = wait
			}
			r.singletonMutex.Unlock()
			<-wait
			continue
		}

		r.inCreation[name] = true
		r.suppressed[name] = &suppressedExceptions{}
		r.singletonMutex.Unlock()
		break
	}

	logrus.WithField("name", name).Trace("Entering singleton creation")

	instance, createErr := create()

	r.singletonMutex.Lock()
	delete(r.inCreation, name)
	delete(r.earlyConsumed, name)
	bucket := r.suppressed[name]
	delete(r.suppressed, name)
	if wait, ok := r.waiters[name]; ok {
		delete(r.waiters, name)
		close(wait)
	}

	defer r.singletonMutex.Unlock()

	if createErr != nil {
		if cached, ok := r.primary[name]; ok {
			// Reentrant creation landed an instance already; swallow this
			// frame's failure and adopt it.
			logrus.WithField("name", name).Debug("Factory failed but a reentrant creation already published the singleton; adopting it")
			return cached, nil
		}
		// No reentrant creation rescued this name: drop any early reference
		// or producer the failed attempt registered, so no half-created
		// object graph remains reachable through the cache.
		r.removeSingletonLocked(name)
		var causes []error
		if bucket != nil {
			causes = bucket.causes
		}
		return nil, newCreationError(name, createErr, causes)
	}

	if _, alreadyPublished := r.primary[name]; !alreadyPublished {
		r.addSingletonLocked(name, instance)
	}
	return instance, nil
}

// registerCreationFailure records err into the suppressed-exception bucket
// owned by the outermost frame currently creating name, if one exists.
func (r *singletonRegistry) registerCreationFailure(name string, err error) {
	r.singletonMutex.Lock()
	defer r.singletonMutex.Unlock()
	if bucket, ok := r.suppressed[name]; ok {
		bucket.add(err)
	}
}

// RegisterDependent records that dependent depends on name.
// Duplicate edges are no-ops.
func (r *singletonRegistry) RegisterDependent(name, dependent string) {
	r.auxMu.Lock()
	defer r.auxMu.Unlock()
	if r.dependentsOf[name] == nil {
		r.dependentsOf[name] = make(map[string]bool)
	}
	r.dependentsOf[name][dependent] = true
	if r.dependsOn[dependent] == nil {
		r.dependsOn[dependent] = make(map[string]bool)
	}
	r.dependsOn[dependent][name] = true
}

// RegisterContained records that outer contains inner, implying the
// dependency edge inner -> outer in teardown order.
func (r *singletonRegistry) RegisterContained(inner, outer string) {
	r.auxMu.Lock()
	r.containedOf[outer] = append(r.containedOf[outer], inner)
	r.auxMu.Unlock()
	r.RegisterDependent(inner, outer)
}

// IsDependent asks whether dependent is transitively reachable in the
// dependents-of graph starting at name. The visited set prevents
// infinite recursion on re-entrant paths; re-entrancy is not itself an
// error, it simply yields false for that path.
func (r *singletonRegistry) IsDependent(name, dependent string) bool {
	r.auxMu.Lock()
	defer r.auxMu.Unlock()
	return r.isDependentLocked(name, dependent, make(map[string]bool))
}

func (r *singletonRegistry) isDependentLocked(name, dependent string, visited map[string]bool) bool {
	if visited[name] {
		return false
	}
	visited[name] = true
	dependents := r.dependentsOf[name]
	if dependents[dependent] {
		return true
	}
	for d := range dependents {
		if r.isDependentLocked(d, dependent, visited) {
			return true
		}
	}
	return false
}

// RegisterDisposable records a teardown callback for name, in insertion
// order.
func (r *singletonRegistry) RegisterDisposable(name string, destroy func() error) {
	r.auxMu.Lock()
	defer r.auxMu.Unlock()
	if _, exists := r.disposables[name]; !exists {
		r.disposeOrder = append(r.disposeOrder, name)
	}
	r.disposables[name] = destroy
}

// DestroySingletons tears down every disposable bean in reverse insertion
// order.
func (r *singletonRegistry) DestroySingletons() {
	r.singletonMutex.Lock()
	r.destructionInProgress = true
	r.singletonMutex.Unlock()

	r.auxMu.Lock()
	order := make([]string, len(r.disposeOrder))
	copy(order, r.disposeOrder)
	r.auxMu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		r.destroySingletonInternal(order[i])
	}

	r.singletonMutex.Lock()
	r.primary = make(map[string]interface{})
	r.early = make(map[string]interface{})
	r.producer = make(map[string]func() (interface{}, error))
	r.registeredNames = nil
	r.singletonMutex.Unlock()

	r.auxMu.Lock()
	r.disposables = make(map[string]func() error)
	r.disposeOrder = nil
	r.containedOf = make(map[string][]string)
	r.dependentsOf = make(map[string]map[string]bool)
	r.dependsOn = make(map[string]map[string]bool)
	r.auxMu.Unlock()

	logrus.Trace("Singleton registry destroyed")
}

// DestroySingleton tears down a single bean: its dependents first, then its
// own teardown callback, then its contained beans, then it scrubs itself out
// of every bookkeeping map.
func (r *singletonRegistry) DestroySingleton(name string) {
	r.singletonMutex.Lock()
	r.removeSingletonLocked(name)
	r.singletonMutex.Unlock()

	r.destroySingletonInternal(name)
}

// destroySingletonInternal performs the recursive teardown, without
// touching the three caches (DestroySingleton removes the top-level name
// from them before calling this; DestroySingletons clears every cache after
// its loop; recursive calls only do the bookkeeping cleanup).
func (r *singletonRegistry) destroySingletonInternal(name string) {
	r.auxMu.Lock()
	dependents := make([]string, 0, len(r.dependentsOf[name]))
	for d := range r.dependentsOf[name] {
		dependents = append(dependents, d)
	}
	r.auxMu.Unlock()

	for _, dependent := range dependents {
		r.destroySingletonInternal(dependent)
	}

	r.auxMu.Lock()
	destroy, hasDestroy := r.disposables[name]
	delete(r.disposables, name)
	for i, n := range r.disposeOrder {
		if n == name {
			r.disposeOrder = append(r.disposeOrder[:i], r.disposeOrder[i+1:]...)
			break
		}
	}
	r.auxMu.Unlock()

	if hasDestroy {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					logrus.WithFields(logrus.Fields{"name": name, "panic": rec}).Error("Panic while destroying bean; continuing best-effort teardown")
				}
			}()
			if err := destroy(); err != nil {
				logrus.WithField("name", name).WithError(err).Error("Error destroying bean; continuing best-effort teardown")
			}
		}()
	}

	r.auxMu.Lock()
	contained := make([]string, len(r.containedOf[name]))
	copy(contained, r.containedOf[name])
	delete(r.containedOf, name)
	r.auxMu.Unlock()

	for _, inner := range contained {
		r.destroySingletonInternal(inner)
	}

	r.auxMu.Lock()
	for depended, dependentsSet := range r.dependentsOf {
		delete(dependentsSet, name)
		if len(dependentsSet) == 0 {
			delete(r.dependentsOf, depended)
		}
	}
	delete(r.dependsOn, name)
	r.auxMu.Unlock()
}
