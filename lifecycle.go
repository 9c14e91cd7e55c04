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

// InitializingBean marks beans that need additional initialization once all
// of their dependencies have been injected. PostConstruct runs once, between
// the pre-initialization and post-initialization post-processor passes.
type InitializingBean interface {
	PostConstruct() error
}

// DisposableBean marks beans with an explicit teardown callback. Destroy runs
// during the destruction phase; any error it returns is logged and
// never propagated, since teardown must make best-effort progress.
type DisposableBean interface {
	Destroy() error
}

// NamedBean lets a bean report a name of its own. The factory does not
// consult it: a bean keeps the name it was registered under. Mirrors
// arpabet-glue's NamedBean.
type NamedBean interface {
	BeanName() string
}

// FactoryBean marks a bean whose role is to produce another object on
// demand rather than to be used directly. Callers receive the product
// unless they use the "&" dereference prefix.
type FactoryBean interface {
	// Object returns the object produced by this factory bean.
	Object() (interface{}, error)
	// Singleton reports whether the object produced by this factory bean is a
	// singleton - produced once and cached - or built fresh on every call.
	Singleton() bool
}
