package beankit

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type definitionTestBean struct{}

func TestDefinitionRegistryRegisterDefaultsToSingletonScope(t *testing.T) {
	d := newDefinitionRegistry()
	err := d.RegisterDefinition(&BeanDefinition{
		Name: "myBean",
		Type: reflect.TypeOf((*definitionTestBean)(nil)),
	})
	require.NoError(t, err)

	def, ok := d.GetDefinition("myBean")
	require.True(t, ok)
	assert.Equal(t, ScopeSingleton, def.Scope)
}

func TestDefinitionRegistryRejectsMissingTypeAndFactory(t *testing.T) {
	d := newDefinitionRegistry()
	err := d.RegisterDefinition(&BeanDefinition{Name: "myBean"})
	assert.Error(t, err)
}

func TestDefinitionRegistryRejectsNonPointerType(t *testing.T) {
	d := newDefinitionRegistry()
	err := d.RegisterDefinition(&BeanDefinition{
		Name: "myBean",
		Type: reflect.TypeOf(definitionTestBean{}),
	})
	assert.Error(t, err)
}

func TestDefinitionRegistryFreezeRejectsFurtherRegistration(t *testing.T) {
	d := newDefinitionRegistry()
	d.Freeze()

	err := d.RegisterDefinition(&BeanDefinition{
		Name: "myBean",
		Type: reflect.TypeOf((*definitionTestBean)(nil)),
	})
	assert.Error(t, err)
}

func TestDefinitionRegistryDefinitionNamesPreservesRegistrationOrder(t *testing.T) {
	d := newDefinitionRegistry()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, d.RegisterDefinition(&BeanDefinition{
			Name: name,
			Type: reflect.TypeOf((*definitionTestBean)(nil)),
		}))
	}
	assert.Equal(t, []string{"c", "a", "b"}, d.DefinitionNames())
}
