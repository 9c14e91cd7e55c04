/*
 * Copyright (c) 2020 Go IoC
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 */

package beankit

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ioccore/beankit/internal/fieldpath"
)

// factoryDereferencePrefix marks a lookup name as "give me the factory-bean
// itself, not its product".
const factoryDereferencePrefix = "&"

// TypeConverter is the minimal type-conversion service collaborator treated
// as external; it is only consulted by IsTypeMatch/GetBean(type) for
// non-interface target types that aren't directly assignable.
type TypeConverter interface {
	ConvertibleTo(value interface{}, target reflect.Type) bool
}

// ValueResolver resolves a value-expression (e.g. "${some.property}") to a
// literal string; an out-of-scope property-binding collaborator. A nil
// resolver means expressions are returned unresolved.
type ValueResolver func(expression string) (string, error)

// FactoryConfig is the configuration surface: parent factory, a
// value-expression resolver, a type-conversion service, ordered
// post-processors, a scope-name -> implementation map, and an access-control
// token. The frozen flag is kept on BeanFactory itself. It is built through functional Options rather
// than setter methods, since Go favors construction-time wiring over later
// mutation.
type FactoryConfig struct {
	parent         *BeanFactory
	valueResolver  ValueResolver
	typeConverter  TypeConverter
	postProcessors []BeanPostProcessor
	scopes         map[ScopeName]CustomScope
	accessControl  interface{}
}

// Option configures a BeanFactory at construction time.
type Option func(*FactoryConfig)

// WithParent sets the parent factory consulted when a name is not found
// locally.
func WithParent(parent *BeanFactory) Option {
	return func(c *FactoryConfig) { c.parent = parent }
}

// WithPostProcessor appends a post-processor to the pipeline.
func WithPostProcessor(p BeanPostProcessor) Option {
	return func(c *FactoryConfig) { c.postProcessors = append(c.postProcessors, p) }
}

// WithCustomScope registers a CustomScope implementation under name in the
// configuration's scope-name -> implementation map.
func WithCustomScope(name ScopeName, scope CustomScope) Option {
	return func(c *FactoryConfig) {
		if c.scopes == nil {
			c.scopes = make(map[ScopeName]CustomScope)
		}
		c.scopes[name] = scope
	}
}

// WithValueResolver installs the value-expression resolver.
func WithValueResolver(resolver ValueResolver) Option {
	return func(c *FactoryConfig) { c.valueResolver = resolver }
}

// WithTypeConverter installs the type-conversion service.
func WithTypeConverter(converter TypeConverter) Option {
	return func(c *FactoryConfig) { c.typeConverter = converter }
}

// WithAccessControl installs an opaque capability token propagated through
// creation frames; absence means "unrestricted".
func WithAccessControl(token interface{}) Option {
	return func(c *FactoryConfig) { c.accessControl = token }
}

// AccessController is the capability-check surface an access-control token
// may optionally implement. When the configured token implements it,
// CheckAccess is consulted once per creation attempt, before any allocation
// happens; a non-nil error aborts creation with that error.
type AccessController interface {
	CheckAccess(name string) error
}

// BeanFactory is the façade: it resolves a requested name to a canonical
// name, consults the singleton registry's three-tier cache, delegates to a
// parent factory, or enters the creation protocol, wiring dependency
// resolution, property population (left to struct-tag autowiring only),
// the post-processor pipeline, and disposable registration.
type BeanFactory struct {
	config       FactoryConfig
	aliases      *aliasRegistry
	definitions  *definitionRegistry
	singletons   *singletonRegistry
	factoryBeans *factoryBeanRegistry
	processors   *postProcessorChain
	frozen       int32
}

// NewBeanFactory constructs an empty, unfrozen BeanFactory.
func NewBeanFactory(opts ...Option) *BeanFactory {
	var cfg FactoryConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	singletons := newSingletonRegistry()
	return &BeanFactory{
		config:       cfg,
		aliases:      newAliasRegistry(),
		definitions:  newDefinitionRegistry(),
		singletons:   singletons,
		factoryBeans: newFactoryBeanRegistry(singletons),
		processors:   &postProcessorChain{processors: cfg.postProcessors},
	}
}

// RegisterDefinition adds a bean definition. Fails once the factory is
// frozen.
func (f *BeanFactory) RegisterDefinition(def *BeanDefinition) error {
	return f.definitions.RegisterDefinition(def)
}

// RegisterSingleton publishes an already-created singleton instance
// directly, bypassing the creation protocol.
func (f *BeanFactory) RegisterSingleton(name string, instance interface{}) error {
	return f.singletons.RegisterSingleton(name, instance)
}

// RegisterAlias binds alias -> name, rejecting a collision with any
// existing bean definition name.
func (f *BeanFactory) RegisterAlias(name, alias string) error {
	if f.definitions.IsNameInUse(alias) && alias != name {
		return &IllegalStateError{Reason: "cannot alias " + alias + ": name already in use by a bean definition"}
	}
	return f.aliases.RegisterAlias(name, alias)
}

func (f *BeanFactory) RemoveAlias(alias string) error  { return f.aliases.RemoveAlias(alias) }
func (f *BeanFactory) IsAlias(name string) bool        { return f.aliases.IsAlias(name) }
func (f *BeanFactory) GetAliases(name string) []string { return f.aliases.Aliases(f.aliases.CanonicalName(name)) }

// RegisterBeanPostProcessor appends a post-processor. Fails once frozen.
func (f *BeanFactory) RegisterBeanPostProcessor(p BeanPostProcessor) error {
	if atomic.LoadInt32(&f.frozen) == 1 {
		return &IllegalStateError{Reason: "factory is frozen: can't register new post-processor"}
	}
	f.config.postProcessors = append(f.config.postProcessors, p)
	f.processors.processors = f.config.postProcessors
	return nil
}

// Freeze closes configuration and eagerly instantiates every non-lazy
// singleton definition.
func (f *BeanFactory) Freeze() error {
	if !atomic.CompareAndSwapInt32(&f.frozen, 0, 1) {
		return &IllegalStateError{Reason: "factory is already frozen"}
	}
	f.definitions.Freeze()
	for _, name := range f.definitions.DefinitionNames() {
		def, _ := f.definitions.GetDefinition(name)
		if def.Scope != ScopeSingleton || def.Lazy {
			continue
		}
		if _, err := f.GetBean(name); err != nil {
			return err
		}
	}
	return nil
}

// ParentBeanFactory returns the configured parent factory, if any.
func (f *BeanFactory) ParentBeanFactory() (*BeanFactory, bool) {
	return f.config.parent, f.config.parent != nil
}

// ContainsLocalBean reports whether name is known locally (definition or
// registered singleton), without consulting the parent factory.
func (f *BeanFactory) ContainsLocalBean(name string) bool {
	canonical := f.aliases.CanonicalName(strings.TrimPrefix(name, factoryDereferencePrefix))
	return f.definitions.ContainsDefinition(canonical) || f.singletons.ContainsSingleton(canonical)
}

// ContainsBean reports whether name is known locally or through a parent
// factory.
func (f *BeanFactory) ContainsBean(name string) bool {
	if f.ContainsLocalBean(name) {
		return true
	}
	if f.config.parent != nil {
		return f.config.parent.ContainsBean(name)
	}
	return false
}

// IsSingleton reports whether name resolves to a singleton-scoped bean.
func (f *BeanFactory) IsSingleton(name string) (bool, error) {
	canonical := f.aliases.CanonicalName(strings.TrimPrefix(name, factoryDereferencePrefix))
	if f.singletons.ContainsSingleton(canonical) {
		return true, nil
	}
	def, ok := f.definitions.GetDefinition(canonical)
	if !ok {
		if f.config.parent != nil {
			return f.config.parent.IsSingleton(name)
		}
		return false, &NoSuchBeanError{Name: canonical}
	}
	return def.Scope == ScopeSingleton, nil
}

// IsPrototype reports whether name resolves to a prototype-scoped bean.
func (f *BeanFactory) IsPrototype(name string) (bool, error) {
	singleton, err := f.IsSingleton(name)
	if err != nil {
		return false, err
	}
	if singleton {
		return false, nil
	}
	canonical := f.aliases.CanonicalName(strings.TrimPrefix(name, factoryDereferencePrefix))
	def, ok := f.definitions.GetDefinition(canonical)
	return ok && def.Scope == ScopePrototype, nil
}

// GetType returns the declared type of name's bean definition, without
// instantiating it.
func (f *BeanFactory) GetType(name string) (reflect.Type, error) {
	canonical := f.aliases.CanonicalName(strings.TrimPrefix(name, factoryDereferencePrefix))
	def, ok := f.definitions.GetDefinition(canonical)
	if !ok {
		if f.config.parent != nil {
			return f.config.parent.GetType(name)
		}
		return nil, &NoSuchBeanError{Name: canonical}
	}
	return def.Type, nil
}

// IsTypeMatch reports whether name's bean is assignable to requiredType. When
// the declared type is not directly assignable and requiredType is not an
// interface, a configured TypeConverter is consulted as a last resort,
// instantiating name to give the converter an actual value to judge.
func (f *BeanFactory) IsTypeMatch(name string, requiredType reflect.Type) (bool, error) {
	t, err := f.GetType(name)
	if err != nil {
		return false, err
	}
	if t == nil {
		return true, nil // factory-produced type unknown ahead of creation
	}
	if t.AssignableTo(requiredType) || (requiredType.Kind() == reflect.Interface && t.Implements(requiredType)) {
		return true, nil
	}
	if f.config.typeConverter == nil || requiredType.Kind() == reflect.Interface {
		return false, nil
	}
	instance, err := f.GetBean(name)
	if err != nil {
		return false, err
	}
	return f.config.typeConverter.ConvertibleTo(instance, requiredType), nil
}

// GetBean resolves name to an instance.
func (f *BeanFactory) GetBean(name string) (interface{}, error) {
	return f.getBean(name, nil, make(map[string]bool))
}

// GetBeanOfType resolves name and asserts the result is assignable to
// requiredType, failing with NotOfRequiredTypeError otherwise.
func (f *BeanFactory) GetBeanOfType(name string, requiredType reflect.Type) (interface{}, error) {
	return f.getBean(name, requiredType, make(map[string]bool))
}

// GetBeanAs is a generic convenience wrapper over GetBean, grounded on
// Station-Manager/iocdi's ResolveAs[T] helper.
func GetBeanAs[T any](f *BeanFactory, name string) (T, error) {
	var zero T
	instance, err := f.GetBean(name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &NotOfRequiredTypeError{Name: name, RequiredType: reflect.TypeOf(zero).String(), ActualType: reflect.TypeOf(instance).String()}
	}
	return typed, nil
}

// GetBeanByType resolves the unique bean assignable to requiredType,
// failing with NoUniqueBeanError on ambiguity and NoSuchBeanError if none
// match.
func (f *BeanFactory) GetBeanByType(requiredType reflect.Type) (interface{}, error) {
	name, err := f.findUniqueDefinitionNameByType(requiredType)
	if err != nil {
		return nil, err
	}
	return f.GetBean(name)
}

// findUniqueDefinitionNameByType scans local definitions for the unique one
// assignable to requiredType, falling back to the parent factory if none are
// found locally. Shared by GetBeanByType and AutowireByType field resolution.
func (f *BeanFactory) findUniqueDefinitionNameByType(requiredType reflect.Type) (string, error) {
	var matches []string
	for _, name := range f.definitions.DefinitionNames() {
		def, _ := f.definitions.GetDefinition(name)
		if def.Type != nil && (def.Type.AssignableTo(requiredType) || (requiredType.Kind() == reflect.Interface && def.Type.Implements(requiredType))) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		if f.config.parent != nil {
			return f.config.parent.findUniqueDefinitionNameByType(requiredType)
		}
		return "", &NoSuchBeanError{Name: requiredType.String()}
	case 1:
		return matches[0], nil
	default:
		return "", &NoUniqueBeanError{TypeName: requiredType.String(), Matches: matches}
	}
}

// getBean is the core algorithm. chain tracks the names this calling
// goroutine's own logical GetBean call is already in the middle of
// resolving, threaded through recursive dependency resolution so the
// engine can tell a genuine circular reference apart from two goroutines
// racing on the same brand-new singleton (see singletonRegistry.GetOrCreateSingleton).
func (f *BeanFactory) getBean(requestedName string, requiredType reflect.Type, chain map[string]bool) (interface{}, error) {
	dereference := strings.HasPrefix(requestedName, factoryDereferencePrefix)
	trimmed := strings.TrimPrefix(requestedName, factoryDereferencePrefix)
	canonical := f.aliases.CanonicalName(trimmed)

	if instance, ok := f.singletons.GetSingleton(canonical, true); ok {
		resolved, err := f.resolveFactoryBeanIndirection(canonical, instance, dereference, chain)
		if err != nil {
			return nil, err
		}
		return f.assertType(canonical, resolved, requiredType)
	}

	if chain[canonical] {
		return nil, &CurrentlyInCreationError{Name: canonical}
	}

	def, ok := f.definitions.GetDefinition(canonical)
	if !ok {
		if f.config.parent != nil {
			return f.config.parent.getBean(requestedName, requiredType, chain)
		}
		return nil, &NoSuchBeanError{Name: canonical}
	}

	var instance interface{}
	var err error

	switch def.Scope {
	case ScopeSingleton:
		instance, err = f.singletons.GetOrCreateSingleton(canonical, chain, func() (interface{}, error) {
			return f.createBeanInstance(canonical, def, chain)
		})
	case ScopePrototype:
		instance, err = f.createBeanInstance(canonical, def, chain)
	default:
		scopeImpl, ok := f.config.scopes[def.Scope]
		if !ok {
			return nil, &DefinitionStoreError{Name: canonical, Reason: "no scope implementation registered for scope " + string(def.Scope)}
		}
		instance, err = scopeImpl.Get(canonical, func() (interface{}, error) {
			return f.createBeanInstance(canonical, def, chain)
		})
	}
	if err != nil {
		return nil, err
	}

	resolved, err := f.resolveFactoryBeanIndirection(canonical, instance, dereference, chain)
	if err != nil {
		return nil, err
	}
	return f.assertType(canonical, resolved, requiredType)
}

func (f *BeanFactory) assertType(name string, instance interface{}, requiredType reflect.Type) (interface{}, error) {
	if requiredType == nil || instance == nil {
		return instance, nil
	}
	actual := reflect.TypeOf(instance)
	if actual.AssignableTo(requiredType) {
		return instance, nil
	}
	if requiredType.Kind() == reflect.Interface && actual.Implements(requiredType) {
		return instance, nil
	}
	if requiredType.Kind() != reflect.Interface && f.config.typeConverter != nil && f.config.typeConverter.ConvertibleTo(instance, requiredType) {
		return instance, nil
	}
	return nil, &NotOfRequiredTypeError{Name: name, RequiredType: requiredType.String(), ActualType: actual.String()}
}

// resolveFactoryBeanIndirection implements the factory-bean routing rule:
// if the resolved singleton is itself a FactoryBean and the caller did not
// request it via "&", route through the factory-bean registry; otherwise
// (or if "&" was used) return it directly.
func (f *BeanFactory) resolveFactoryBeanIndirection(name string, instance interface{}, dereference bool, chain map[string]bool) (interface{}, error) {
	factory, ok := instance.(FactoryBean)
	if !ok || dereference {
		return instance, nil
	}
	shouldPostProcess := !chain[name]
	return f.factoryBeans.GetObjectFromFactory(factory, name, shouldPostProcess, func(product interface{}) (interface{}, error) {
		return f.processors.applyAfterInitialization(product, name)
	})
}

// createBeanInstance builds, autowires, and initializes one bean. It is
// called exactly once per creation attempt for name (singleton-scope reentrancy
// is intercepted earlier by GetOrCreateSingleton; this function's own
// chain guard covers prototype and custom scopes, which never go through
// that gate).
func (f *BeanFactory) createBeanInstance(name string, def *BeanDefinition, chain map[string]bool) (interface{}, error) {
	if chain[name] {
		return nil, &CurrentlyInCreationError{Name: name}
	}
	chain[name] = true
	defer delete(chain, name)

	if checker, ok := f.config.accessControl.(AccessController); ok {
		if err := checker.CheckAccess(name); err != nil {
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{"name": name, "scope": def.Scope}).Trace("Creating bean instance")

	var raw interface{}
	var err error
	if def.Factory != nil {
		raw, err = def.Factory(f)
	} else {
		raw = reflect.New(def.Type.Elem()).Interface()
	}
	if err != nil {
		f.singletons.registerCreationFailure(name, err)
		return nil, err
	}

	if def.Scope == ScopeSingleton {
		f.singletons.AddProducer(name, func() (interface{}, error) {
			return f.processors.applyEarlyBeanReference(raw, name)
		})
	}

	if def.Factory == nil {
		if err := f.autowireFields(name, def, raw, chain); err != nil {
			f.singletons.registerCreationFailure(name, err)
			return nil, err
		}
	}

	final, err := f.processors.applyBeforeInitialization(raw, name)
	if err != nil {
		return nil, err
	}

	if initializing, ok := final.(InitializingBean); ok {
		if err := initializing.PostConstruct(); err != nil {
			return nil, errors.WithMessage(err, "PostConstruct")
		}
	}
	if def.InitMethod != nil {
		if err := def.InitMethod(final); err != nil {
			return nil, errors.WithMessage(err, "init method")
		}
	}

	final, err = f.processors.applyAfterInitialization(final, name)
	if err != nil {
		return nil, err
	}

	if def.Scope == ScopeSingleton && f.singletons.WasEarlyReferenceConsumed(name) {
		if final != raw {
			logrus.WithField("name", name).Warn("Bean was early-exposed but a post-processor produced a different final instance: cycle unresolvable")
			return nil, &CurrentlyInCreationError{Name: name}
		}
		// Publish the object already handed out as the early reference, so
		// an EarlyBeanPostProcessor wrap stays the one identity of the bean.
		if early, ok := f.singletons.GetSingleton(name, true); ok {
			final = early
		}
	}

	f.registerDisposableIfApplicable(name, def, final)

	return final, nil
}

func (f *BeanFactory) registerDisposableIfApplicable(name string, def *BeanDefinition, instance interface{}) {
	if def.Scope != ScopeSingleton {
		// Prototype (and custom-scope) beans are not tracked for
		// destruction: the caller owns teardown.
		return
	}
	disposable, isDisposable := instance.(DisposableBean)
	if !isDisposable && def.DestroyMethod == nil {
		return
	}
	f.singletons.RegisterDisposable(name, func() error {
		if isDisposable {
			if err := disposable.Destroy(); err != nil {
				return err
			}
		}
		if def.DestroyMethod != nil {
			return def.DestroyMethod(instance)
		}
		return nil
	})
}

// autowireFields injects every beankit-tagged field of raw, recursively
// resolving each dependency through getBean and recording the dependency
// edge for singleton-to-singleton wiring so destruction can be ordered.
// Fields of a bean not implementing the tag are left untouched. If def.Autowire
// is AutowireByType, remaining untagged pointer/interface fields are then
// resolved by unique type match. Finally, beankit.value-tagged string fields
// are populated through the configured ValueResolver.
func (f *BeanFactory) autowireFields(name string, def *BeanDefinition, raw interface{}, chain map[string]bool) error {
	elem := reflect.TypeOf(raw).Elem()
	injections, err := fieldpath.Injections(elem)
	if err != nil {
		return err
	}
	tagged := make(map[int]bool, len(injections))
	for _, injection := range injections {
		tagged[injection.FieldIndex] = true
		depInstance, err := f.getBean(injection.BeanName, nil, chain)
		if err != nil {
			if injection.Optional {
				if _, isNoSuch := err.(*NoSuchBeanError); isNoSuch {
					logrus.WithFields(logrus.Fields{"name": name, "dependency": injection.BeanName}).Trace("Optional dependency missing, leaving field nil")
					continue
				}
			}
			return err
		}
		if err := fieldpath.Set(raw, injection.FieldIndex, depInstance); err != nil {
			return err
		}
		depCanonical := f.aliases.CanonicalName(strings.TrimPrefix(injection.BeanName, factoryDereferencePrefix))
		if def.Scope == ScopeSingleton {
			if depDef, ok := f.definitions.GetDefinition(depCanonical); ok && depDef.Scope == ScopeSingleton {
				f.singletons.RegisterDependent(depCanonical, name)
			} else if f.singletons.ContainsSingleton(depCanonical) {
				f.singletons.RegisterDependent(depCanonical, name)
			}
		}
	}
	for _, dep := range def.Dependencies {
		depCanonical := f.aliases.CanonicalName(dep)
		if _, err := f.getBean(dep, nil, chain); err != nil {
			return err
		}
		if def.Scope == ScopeSingleton {
			f.singletons.RegisterDependent(depCanonical, name)
		}
	}
	if def.Autowire == AutowireByType {
		if err := f.autowireByType(name, def, raw, elem, tagged, chain); err != nil {
			return err
		}
	}
	for _, value := range fieldpath.ValueInjections(elem) {
		resolved := value.Expression
		if f.config.valueResolver != nil {
			r, err := f.config.valueResolver(value.Expression)
			if err != nil {
				return err
			}
			resolved = r
		}
		if err := fieldpath.SetString(raw, value.FieldIndex, resolved); err != nil {
			return err
		}
	}
	return nil
}

// autowireByType fills remaining untagged pointer/interface fields with the
// bean of the unique definition (of any scope) matching their declared type,
// skipping a field with no
// match (by-type wiring is opportunistic) but propagating NoUniqueBeanError
// when more than one definition matches.
func (f *BeanFactory) autowireByType(name string, def *BeanDefinition, raw interface{}, elem reflect.Type, tagged map[int]bool, chain map[string]bool) error {
	for i := 0; i < elem.NumField(); i++ {
		if tagged[i] {
			continue
		}
		field := elem.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		if field.Type.Kind() != reflect.Ptr && field.Type.Kind() != reflect.Interface {
			continue
		}
		depName, err := f.findUniqueDefinitionNameByType(field.Type)
		if err != nil {
			if _, isNoSuch := err.(*NoSuchBeanError); isNoSuch {
				continue
			}
			return err
		}
		depInstance, err := f.getBean(depName, nil, chain)
		if err != nil {
			return err
		}
		if err := fieldpath.Set(raw, i, depInstance); err != nil {
			return err
		}
		if def.Scope == ScopeSingleton {
			if depDef, ok := f.definitions.GetDefinition(depName); ok && depDef.Scope == ScopeSingleton {
				f.singletons.RegisterDependent(depName, name)
			}
		}
	}
	return nil
}

// requestScopeName is the scope name the HTTP middleware treats specially:
// beans bound to it are created fresh per request and never touch the
// singleton registry, mirroring prototype scope but with a web-request
// lifetime instead of a per-call one.
const requestScopeName ScopeName = "request"

// newRequestScopedBean creates a fresh instance of name's definition without
// any registry caching, for use by Middleware.
func (f *BeanFactory) newRequestScopedBean(name string) (interface{}, error) {
	def, ok := f.definitions.GetDefinition(name)
	if !ok {
		return nil, &NoSuchBeanError{Name: name}
	}
	return f.createBeanInstance(name, def, make(map[string]bool))
}

// requestScopedBeanNames returns the canonical names of every definition
// bound to requestScopeName.
func (f *BeanFactory) requestScopedBeanNames() []string {
	var names []string
	for _, name := range f.definitions.DefinitionNames() {
		if def, ok := f.definitions.GetDefinition(name); ok && def.Scope == requestScopeName {
			names = append(names, name)
		}
	}
	return names
}

// Close destroys every singleton owned by this factory (not its parent's),
// in reverse dependency/registration order.
func (f *BeanFactory) Close() error {
	f.singletons.DestroySingletons()
	return nil
}

// SingletonNames, SingletonCount and GetSingletonMutex expose the raw
// singleton-registry surface for collaborators that need it directly (e.g.
// diagnostics, or an extension acquiring the same lock the engine uses
// internally).
func (f *BeanFactory) SingletonNames() []string        { return f.singletons.SingletonNames() }
func (f *BeanFactory) SingletonCount() int             { return f.singletons.SingletonCount() }
func (f *BeanFactory) GetSingletonMutex() *sync.Mutex  { return f.singletons.Mutex() }
