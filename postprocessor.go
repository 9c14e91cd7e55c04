package beankit

// BeanPostProcessor is a component that may transform a bean between
// instantiation and publication. BeforeInitialization runs prior to the
// InitializingBean.PostConstruct hook (if any); AfterInitialization runs
// after it. Either may return a replacement object (e.g. a proxy) - the
// replacement is what gets published to the primary cache, so a wrap
// applied here is visible to early-reference consumers only if it happened
// before the early reference was exposed.
type BeanPostProcessor interface {
	BeforeInitialization(bean interface{}, name string) (interface{}, error)
	AfterInitialization(bean interface{}, name string) (interface{}, error)
}

// EarlyBeanPostProcessor is an optional capability a BeanPostProcessor may
// additionally implement to participate in cycle-breaking early exposure.
// GetEarlyBeanReference runs at most once per creation, when a circular
// lookup first consumes the early reference of a raw instance - before any
// other processor sees it - so that the object handed out to a circular
// dependency is already in its final wrapped form; that same object is what
// the façade publishes. If no lookup consumes the early reference, it does
// not run at all. Ordinary BeforeInitialization /
// AfterInitialization processors that do NOT implement this interface never
// run before early exposure; if they would have wrapped the bean, the
// cycle is unresolvable (the façade detects this via
// singletonRegistry.WasEarlyReferenceConsumed and fails with
// CurrentlyInCreationError).
type EarlyBeanPostProcessor interface {
	BeanPostProcessor
	GetEarlyBeanReference(bean interface{}, name string) (interface{}, error)
}

// postProcessorChain runs an ordered list of BeanPostProcessor through both
// initialization passes.
type postProcessorChain struct {
	processors []BeanPostProcessor
}

func (c *postProcessorChain) applyBeforeInitialization(bean interface{}, name string) (interface{}, error) {
	current := bean
	for _, p := range c.processors {
		next, err := p.BeforeInitialization(current, name)
		if err != nil {
			return nil, err
		}
		if next != nil {
			current = next
		}
	}
	return current, nil
}

// applyEarlyBeanReference runs every EarlyBeanPostProcessor over bean, in
// order, when the early-exposure producer registered for bean is consumed.
func (c *postProcessorChain) applyEarlyBeanReference(bean interface{}, name string) (interface{}, error) {
	current := bean
	for _, p := range c.processors {
		early, ok := p.(EarlyBeanPostProcessor)
		if !ok {
			continue
		}
		next, err := early.GetEarlyBeanReference(current, name)
		if err != nil {
			return nil, err
		}
		if next != nil {
			current = next
		}
	}
	return current, nil
}

func (c *postProcessorChain) applyAfterInitialization(bean interface{}, name string) (interface{}, error) {
	current := bean
	for _, p := range c.processors {
		next, err := p.AfterInitialization(current, name)
		if err != nil {
			return nil, err
		}
		if next != nil {
			current = next
		}
	}
	return current, nil
}
