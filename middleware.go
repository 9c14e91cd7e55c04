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
	"context"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// BeanKey is used as a Context key, because usage of string keys is
// discouraged.
type BeanKey string

// Middleware returns an http middleware that injects every bean bound to
// the "request" scope into the request's context. If such a bean
// implements io.Closer, Close is invoked on request cancellation in a
// background goroutine; if Close returns an error, that goroutine panics
// with it. This differs from singleton teardown, which logs destroy errors
// and keeps going.
func (f *BeanFactory) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		for _, name := range f.requestScopedBeanNames() {
			instance, err := f.newRequestScopedBean(name)
			if err != nil {
				logrus.WithField("name", name).WithError(err).Error("Failed to create request-scoped bean")
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			ctx = context.WithValue(ctx, BeanKey(name), instance)
			if closer, ok := instance.(io.Closer); ok {
				go func(ctx context.Context, closer io.Closer) {
					<-ctx.Done()
					if err := closer.Close(); err != nil {
						panic(err)
					}
				}(r.Context(), closer)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
