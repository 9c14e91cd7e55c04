package beankit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingletonRegistryGetOrCreateSingletonCachesResult(t *testing.T) {
	r := newSingletonRegistry()
	calls := 0
	create := func() (interface{}, error) {
		calls++
		return "instance", nil
	}

	first, err := r.GetOrCreateSingleton("bean", map[string]bool{}, create)
	require.NoError(t, err)
	second, err := r.GetOrCreateSingleton("bean", map[string]bool{}, create)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestSingletonRegistrySameChainDetectsCycle(t *testing.T) {
	r := newSingletonRegistry()
	chain := map[string]bool{"bean": true}
	r.singletonMutex.Lock()
	r.inCreation["bean"] = true
	r.singletonMutex.Unlock()

	_, err := r.GetOrCreateSingleton("bean", chain, func() (interface{}, error) {
		t.Fatal("create should not run when the calling chain already holds this name")
		return nil, nil
	})
	require.Error(t, err)
	assert.IsType(t, &CurrentlyInCreationError{}, err)
}

func TestSingletonRegistryConcurrentCreationBlocksAndShares(t *testing.T) {
	r := newSingletonRegistry()
	var calls int
	var mu sync.Mutex
	release := make(chan struct{})

	create := func() (interface{}, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]interface{}, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = r.GetOrCreateSingleton("bean", map[string]bool{}, create)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, 1, calls)
}

func TestSingletonRegistryEarlyReferenceBreaksCycle(t *testing.T) {
	r := newSingletonRegistry()

	type beanA struct{ b interface{} }
	type beanB struct{ a interface{} }

	a := &beanA{}
	b := &beanB{}

	chain := map[string]bool{}
	instance, err := r.GetOrCreateSingleton("a", chain, func() (interface{}, error) {
		r.AddProducer("a", func() (interface{}, error) { return a, nil })
		early, ok := r.GetSingleton("a", true)
		require.True(t, ok)
		b.a = early

		bInstance, err := r.GetOrCreateSingleton("b", chain, func() (interface{}, error) {
			r.AddProducer("b", func() (interface{}, error) { return b, nil })
			earlyB, ok := r.GetSingleton("b", true)
			require.True(t, ok)
			a.b = earlyB
			return b, nil
		})
		require.NoError(t, err)
		_ = bInstance
		return a, nil
	})

	require.NoError(t, err)
	assert.Same(t, a, instance)
	assert.Same(t, b, a.b)
	assert.Same(t, a, b.a)
}

func TestSingletonRegistryDestroySingletonsRunsDependentsFirst(t *testing.T) {
	r := newSingletonRegistry()
	var order []string

	r.RegisterSingleton("base", "base-instance")
	r.RegisterDisposable("base", func() error { order = append(order, "base"); return nil })
	r.RegisterSingleton("dependent", "dependent-instance")
	r.RegisterDisposable("dependent", func() error { order = append(order, "dependent"); return nil })
	r.RegisterDependent("base", "dependent")

	r.DestroySingletons()

	require.Len(t, order, 2)
	assert.Equal(t, "dependent", order[0])
	assert.Equal(t, "base", order[1])
}

func TestSingletonRegistryRegisterSingletonFailsOnDuplicate(t *testing.T) {
	r := newSingletonRegistry()
	require.NoError(t, r.RegisterSingleton("bean", "instance"))
	err := r.RegisterSingleton("bean", "other")
	assert.Error(t, err)
}

func TestSuppressedExceptionsBoundedAt100(t *testing.T) {
	s := &suppressedExceptions{}
	for i := 0; i < 150; i++ {
		s.add(assert.AnError)
	}
	assert.Len(t, s.causes, maxSuppressedCauses)
}

func TestSingletonRegistryCreationFailureClearsEarlyAndProducerTiers(t *testing.T) {
	r := newSingletonRegistry()

	_, err := r.GetOrCreateSingleton("bean", map[string]bool{}, func() (interface{}, error) {
		r.AddProducer("bean", func() (interface{}, error) { return "early", nil })
		_, ok := r.GetSingleton("bean", true)
		require.True(t, ok)
		return nil, assert.AnError
	})
	require.Error(t, err)

	r.singletonMutex.Lock()
	_, earlyPresent := r.early["bean"]
	_, producerPresent := r.producer["bean"]
	_, inCreation := r.inCreation["bean"]
	r.singletonMutex.Unlock()

	assert.False(t, earlyPresent, "failed creation must not leave an early reference behind")
	assert.False(t, producerPresent, "failed creation must not leave a producer behind")
	assert.False(t, inCreation)

	_, ok := r.GetSingleton("bean", true)
	assert.False(t, ok, "no trace of the failed creation should remain reachable")
}
