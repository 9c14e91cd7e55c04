package beankit

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type circularA struct {
	B *circularB `beankit:"b"`
}

type circularB struct {
	A *circularA `beankit:"a"`
}

func TestBeanFactoryResolvesCircularSingletonDependency(t *testing.T) {
	f := NewBeanFactory()
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{Name: "a", Type: reflect.TypeOf((*circularA)(nil))}))
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{Name: "b", Type: reflect.TypeOf((*circularB)(nil))}))

	instance, err := f.GetBean("a")
	require.NoError(t, err)

	a := instance.(*circularA)
	require.NotNil(t, a.B)
	require.NotNil(t, a.B.A)
	assert.Same(t, a, a.B.A)
}

func TestBeanFactoryAliasResolvesToSameSingleton(t *testing.T) {
	f := NewBeanFactory()
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{Name: "real", Type: reflect.TypeOf((*definitionTestBean)(nil))}))
	require.NoError(t, f.RegisterAlias("real", "virtual"))

	direct, err := f.GetBean("real")
	require.NoError(t, err)
	aliased, err := f.GetBean("virtual")
	require.NoError(t, err)

	assert.Same(t, direct, aliased)
}

type stringFactoryBean struct{}

func (s *stringFactoryBean) Object() (interface{}, error) { return "produced value", nil }
func (s *stringFactoryBean) Singleton() bool              { return true }

func TestBeanFactoryFactoryBeanIndirection(t *testing.T) {
	f := NewBeanFactory()
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{
		Name: "producer",
		Factory: func(*BeanFactory) (interface{}, error) {
			return &stringFactoryBean{}, nil
		},
	}))

	product, err := f.GetBean("producer")
	require.NoError(t, err)
	assert.Equal(t, "produced value", product)

	raw, err := f.GetBean("&producer")
	require.NoError(t, err)
	_, ok := raw.(*stringFactoryBean)
	assert.True(t, ok)
}

type optionalDependencyBean struct {
	Missing *circularA `beankit:"doesNotExist" beankit.optional:"true"`
}

func TestBeanFactoryOptionalDependencyMissingLeavesFieldNil(t *testing.T) {
	f := NewBeanFactory()
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{Name: "optionalBean", Type: reflect.TypeOf((*optionalDependencyBean)(nil))}))

	instance, err := f.GetBean("optionalBean")
	require.NoError(t, err)
	assert.Nil(t, instance.(*optionalDependencyBean).Missing)
}

// prototypeTestBean has a field so that distinct allocations have distinct
// addresses (pointers to zero-size values may all compare equal).
type prototypeTestBean struct {
	id int
}

func TestBeanFactoryPrototypeScopeCreatesFreshInstanceEachCall(t *testing.T) {
	f := NewBeanFactory()
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{
		Name:  "protoBean",
		Scope: ScopePrototype,
		Type:  reflect.TypeOf((*prototypeTestBean)(nil)),
	}))

	first, err := f.GetBean("protoBean")
	require.NoError(t, err)
	second, err := f.GetBean("protoBean")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
}

type lifecycleBean struct {
	initialized bool
	destroyed   bool
}

func (l *lifecycleBean) PostConstruct() error {
	l.initialized = true
	return nil
}

func (l *lifecycleBean) Destroy() error {
	l.destroyed = true
	return nil
}

func TestBeanFactoryRunsPostConstructAndDestroy(t *testing.T) {
	var bean *lifecycleBean
	f := NewBeanFactory()
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{
		Name: "lifecycleBean",
		Factory: func(*BeanFactory) (interface{}, error) {
			bean = &lifecycleBean{}
			return bean, nil
		},
	}))

	_, err := f.GetBean("lifecycleBean")
	require.NoError(t, err)
	assert.True(t, bean.initialized)

	require.NoError(t, f.Close())
	assert.True(t, bean.destroyed)
}

func TestBeanFactoryNoSuchBeanError(t *testing.T) {
	f := NewBeanFactory()
	_, err := f.GetBean("missing")
	assert.IsType(t, &NoSuchBeanError{}, err)
}

func TestBeanFactoryParentFallback(t *testing.T) {
	parent := NewBeanFactory()
	require.NoError(t, parent.RegisterDefinition(&BeanDefinition{Name: "shared", Type: reflect.TypeOf((*definitionTestBean)(nil))}))

	child := NewBeanFactory(WithParent(parent))
	instance, err := child.GetBean("shared")
	require.NoError(t, err)
	assert.NotNil(t, instance)
	assert.False(t, child.ContainsLocalBean("shared"))
	assert.True(t, child.ContainsBean("shared"))
}

func TestBeanFactoryGetBeanAsTypedAccessor(t *testing.T) {
	f := NewBeanFactory()
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{Name: "typed", Type: reflect.TypeOf((*definitionTestBean)(nil))}))

	typed, err := GetBeanAs[*definitionTestBean](f, "typed")
	require.NoError(t, err)
	assert.NotNil(t, typed)
}

func TestBeanFactoryGetBeanByTypeFailsOnAmbiguity(t *testing.T) {
	f := NewBeanFactory()
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{Name: "one", Type: reflect.TypeOf((*definitionTestBean)(nil))}))
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{Name: "two", Type: reflect.TypeOf((*definitionTestBean)(nil))}))

	_, err := f.GetBeanByType(reflect.TypeOf((*definitionTestBean)(nil)))
	require.Error(t, err)
	uniqueErr, ok := err.(*NoUniqueBeanError)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"one", "two"}, uniqueErr.Matches)
}

type unmatchedByTypeTarget struct{}

func TestBeanFactoryGetBeanByTypeNoMatchFallsThroughParentToNoSuchBean(t *testing.T) {
	parent := NewBeanFactory()
	child := NewBeanFactory(WithParent(parent))

	_, err := child.GetBeanByType(reflect.TypeOf((*unmatchedByTypeTarget)(nil)))
	assert.IsType(t, &NoSuchBeanError{}, err)
}

type byTypeDependency struct{}

type byTypeConsumer struct {
	Dep *byTypeDependency
}

func TestBeanFactoryAutowireByTypeFillsUntaggedField(t *testing.T) {
	f := NewBeanFactory()
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{Name: "dep", Type: reflect.TypeOf((*byTypeDependency)(nil))}))
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{
		Name:     "consumer",
		Type:     reflect.TypeOf((*byTypeConsumer)(nil)),
		Autowire: AutowireByType,
	}))

	instance, err := f.GetBean("consumer")
	require.NoError(t, err)

	dep, err := f.GetBean("dep")
	require.NoError(t, err)

	consumer := instance.(*byTypeConsumer)
	require.NotNil(t, consumer.Dep)
	assert.Same(t, dep, consumer.Dep)
}

type stubTypeConverter struct{ convertible bool }

func (s *stubTypeConverter) ConvertibleTo(interface{}, reflect.Type) bool { return s.convertible }

func TestBeanFactoryIsTypeMatchConsultsTypeConverterAsLastResort(t *testing.T) {
	f := NewBeanFactory(WithTypeConverter(&stubTypeConverter{convertible: true}))
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{Name: "typed", Type: reflect.TypeOf((*definitionTestBean)(nil))}))

	match, err := f.IsTypeMatch("typed", reflect.TypeOf(""))
	require.NoError(t, err)
	assert.True(t, match)

	plain := NewBeanFactory()
	require.NoError(t, plain.RegisterDefinition(&BeanDefinition{Name: "typed", Type: reflect.TypeOf((*definitionTestBean)(nil))}))
	match, err = plain.IsTypeMatch("typed", reflect.TypeOf(""))
	require.NoError(t, err)
	assert.False(t, match)
}

type accessControlledBean struct{}

type stubAccessController struct{ denyName string }

func (s *stubAccessController) CheckAccess(name string) error {
	if name == s.denyName {
		return &IllegalStateError{Reason: "access denied for " + name}
	}
	return nil
}

func TestBeanFactoryAccessControllerAbortsCreation(t *testing.T) {
	f := NewBeanFactory(WithAccessControl(&stubAccessController{denyName: "guarded"}))
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{Name: "guarded", Type: reflect.TypeOf((*accessControlledBean)(nil))}))

	_, err := f.GetBean("guarded")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

type valueInjectedBean struct {
	Greeting string `beankit.value:"${greeting}"`
}

func TestBeanFactoryValueResolverExpandsTaggedField(t *testing.T) {
	f := NewBeanFactory(WithValueResolver(func(expression string) (string, error) {
		if expression == "${greeting}" {
			return "hello", nil
		}
		return expression, nil
	}))
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{Name: "valueBean", Type: reflect.TypeOf((*valueInjectedBean)(nil))}))

	instance, err := f.GetBean("valueBean")
	require.NoError(t, err)
	assert.Equal(t, "hello", instance.(*valueInjectedBean).Greeting)
}

func TestBeanFactoryValueFieldLeftUnresolvedWithoutResolver(t *testing.T) {
	f := NewBeanFactory()
	require.NoError(t, f.RegisterDefinition(&BeanDefinition{Name: "valueBean", Type: reflect.TypeOf((*valueInjectedBean)(nil))}))

	instance, err := f.GetBean("valueBean")
	require.NoError(t, err)
	assert.Equal(t, "${greeting}", instance.(*valueInjectedBean).Greeting)
}
