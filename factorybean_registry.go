package beankit

import (
	"github.com/sirupsen/logrus"
)

// nullBean is the sentinel substituted for a nil product returned by a
// FactoryBean outside of creation, preserving identity semantics for
// downstream null checks.
type nullBean struct{}

// NullBean is the shared sentinel instance.
var NullBean = &nullBean{}

// factoryBeanRegistry caches the products of FactoryBean indirection and
// routes them through the
// post-processing pipeline, delegating all singleton bookkeeping to the
// wrapped singletonRegistry.
type factoryBeanRegistry struct {
	singletons *singletonRegistry
	products   map[string]interface{}
}

func newFactoryBeanRegistry(singletons *singletonRegistry) *factoryBeanRegistry {
	return &factoryBeanRegistry{
		singletons: singletons,
		products:   make(map[string]interface{}),
	}
}

// GetObjectFromFactory resolves the product of a FactoryBean, caching it
// when the owning name is a registered singleton. postProcess is the
// post-processing step applied to a freshly produced, not-yet-cached product
// (the façade passes the after-initialization pass of its pipeline); it is
// called only when appropriate per the state machine below.
func (r *factoryBeanRegistry) GetObjectFromFactory(
	factory FactoryBean,
	name string,
	shouldPostProcess bool,
	postProcess func(interface{}) (interface{}, error),
) (interface{}, error) {
	mutex := r.singletons.Mutex()

	isCachedSingleton := factory.Singleton() && r.singletons.ContainsSingleton(name)

	if isCachedSingleton {
		mutex.Lock()
		if cached, ok := r.products[name]; ok {
			mutex.Unlock()
			return cached, nil
		}
		mutex.Unlock()

		product, err := factory.Object()
		if err != nil {
			return nil, err
		}
		if product == nil {
			substituted, err := r.resolveNilProduct(name)
			if err != nil {
				return nil, err
			}
			product = substituted
		}

		mutex.Lock()
		if cached, ok := r.products[name]; ok {
			// Reentrant call already populated the cache; discard ours.
			mutex.Unlock()
			return cached, nil
		}
		currentlyInCreation := r.singletons.inCreation[name]
		if shouldPostProcess && !currentlyInCreation {
			r.singletons.inCreation[name] = true
			mutex.Unlock()

			processed, ppErr := postProcess(product)

			mutex.Lock()
			delete(r.singletons.inCreation, name)
			if ppErr != nil {
				mutex.Unlock()
				return nil, ppErr
			}
			product = processed
		} else if shouldPostProcess {
			// Already in creation: hand back the non-post-processed object
			// temporarily and do not cache it.
			logrus.WithField("name", name).Debug("Factory bean product requested while target is in creation; returning un-post-processed object uncached")
			mutex.Unlock()
			return product, nil
		}

		// mutex is already held here, so read the primary cache directly
		// instead of calling ContainsSingleton, which would lock it again.
		if _, ok := r.singletons.primary[name]; ok {
			r.products[name] = product
		}
		mutex.Unlock()
		return product, nil
	}

	// Prototype scope, or not yet a registered singleton: never cache.
	product, err := factory.Object()
	if err != nil {
		return nil, err
	}
	if product == nil {
		substituted, err := r.resolveNilProduct(name)
		if err != nil {
			return nil, err
		}
		product = substituted
	}
	if shouldPostProcess {
		return postProcess(product)
	}
	return product, nil
}

// resolveNilProduct implements the nil-product rule shared by both the
// cached-singleton and uncached branches of GetObjectFromFactory: a nil
// product while name is currently in creation is an unresolvable cycle, not
// a legitimate null value, so it fails loudly instead of being masked by
// NullBean.
func (r *factoryBeanRegistry) resolveNilProduct(name string) (interface{}, error) {
	mutex := r.singletons.Mutex()
	mutex.Lock()
	currentlyInCreation := r.singletons.inCreation[name]
	mutex.Unlock()
	if currentlyInCreation {
		return nil, &CurrentlyInCreationError{Name: name}
	}
	return NullBean, nil
}
