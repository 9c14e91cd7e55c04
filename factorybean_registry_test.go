package beankit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFactoryBean struct {
	singleton bool
	produce   func() (interface{}, error)
	calls     int
}

func (s *stubFactoryBean) Object() (interface{}, error) {
	s.calls++
	return s.produce()
}

func (s *stubFactoryBean) Singleton() bool { return s.singleton }

func TestFactoryBeanRegistryCachesSingletonProduct(t *testing.T) {
	singletons := newSingletonRegistry()
	require.NoError(t, singletons.RegisterSingleton("myFactory", &stubFactoryBean{}))
	registry := newFactoryBeanRegistry(singletons)

	factory := &stubFactoryBean{singleton: true, produce: func() (interface{}, error) { return "product", nil }}
	noopPostProcess := func(v interface{}) (interface{}, error) { return v, nil }

	first, err := registry.GetObjectFromFactory(factory, "myFactory", true, noopPostProcess)
	require.NoError(t, err)
	second, err := registry.GetObjectFromFactory(factory, "myFactory", true, noopPostProcess)
	require.NoError(t, err)

	assert.Equal(t, "product", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, factory.calls)
}

func TestFactoryBeanRegistryNeverCachesPrototypeProduct(t *testing.T) {
	singletons := newSingletonRegistry()
	registry := newFactoryBeanRegistry(singletons)

	calls := 0
	factory := &stubFactoryBean{singleton: false, produce: func() (interface{}, error) {
		calls++
		return calls, nil
	}}
	noopPostProcess := func(v interface{}) (interface{}, error) { return v, nil }

	first, err := registry.GetObjectFromFactory(factory, "protoFactory", true, noopPostProcess)
	require.NoError(t, err)
	second, err := registry.GetObjectFromFactory(factory, "protoFactory", true, noopPostProcess)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, calls)
}

func TestFactoryBeanRegistrySubstitutesNullBeanForNilProduct(t *testing.T) {
	singletons := newSingletonRegistry()
	registry := newFactoryBeanRegistry(singletons)

	factory := &stubFactoryBean{singleton: false, produce: func() (interface{}, error) { return nil, nil }}
	noopPostProcess := func(v interface{}) (interface{}, error) { return v, nil }

	product, err := registry.GetObjectFromFactory(factory, "nilFactory", true, noopPostProcess)
	require.NoError(t, err)
	assert.Same(t, NullBean, product)
}

func TestFactoryBeanRegistryNilProductWhileInCreationFails(t *testing.T) {
	singletons := newSingletonRegistry()
	singletons.singletonMutex.Lock()
	singletons.inCreation["nilFactory"] = true
	singletons.singletonMutex.Unlock()
	registry := newFactoryBeanRegistry(singletons)

	factory := &stubFactoryBean{singleton: false, produce: func() (interface{}, error) { return nil, nil }}
	noopPostProcess := func(v interface{}) (interface{}, error) { return v, nil }

	_, err := registry.GetObjectFromFactory(factory, "nilFactory", true, noopPostProcess)
	assert.IsType(t, &CurrentlyInCreationError{}, err)
}

func TestFactoryBeanRegistryCachedSingletonNilProductWhileInCreationFails(t *testing.T) {
	singletons := newSingletonRegistry()
	require.NoError(t, singletons.RegisterSingleton("nilFactory", &stubFactoryBean{}))
	singletons.singletonMutex.Lock()
	singletons.inCreation["nilFactory"] = true
	singletons.singletonMutex.Unlock()
	registry := newFactoryBeanRegistry(singletons)

	factory := &stubFactoryBean{singleton: true, produce: func() (interface{}, error) { return nil, nil }}
	noopPostProcess := func(v interface{}) (interface{}, error) { return v, nil }

	_, err := registry.GetObjectFromFactory(factory, "nilFactory", true, noopPostProcess)
	assert.IsType(t, &CurrentlyInCreationError{}, err)
}

func TestFactoryBeanRegistryCachedSingletonNilProductSubstitutesNullBeanWhenNotInCreation(t *testing.T) {
	singletons := newSingletonRegistry()
	require.NoError(t, singletons.RegisterSingleton("nilFactory", &stubFactoryBean{}))
	registry := newFactoryBeanRegistry(singletons)

	factory := &stubFactoryBean{singleton: true, produce: func() (interface{}, error) { return nil, nil }}
	noopPostProcess := func(v interface{}) (interface{}, error) { return v, nil }

	product, err := registry.GetObjectFromFactory(factory, "nilFactory", true, noopPostProcess)
	require.NoError(t, err)
	assert.Same(t, NullBean, product)
}
