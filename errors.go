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
	"fmt"

	"github.com/pkg/errors"
)

// maxSuppressedCauses bounds the suppressed-exception collection accumulated
// during one creation attempt. The 101st suppressed cause is dropped silently.
const maxSuppressedCauses = 100

// NoSuchBeanError is raised when a name has no definition and no registered
// singleton.
type NoSuchBeanError struct {
	Name string
}

func (e *NoSuchBeanError) Error() string {
	return fmt.Sprintf("no bean named %q is defined", e.Name)
}

// NoUniqueBeanError is raised when a type-based query matches more than one
// candidate.
type NoUniqueBeanError struct {
	TypeName string
	Matches  []string
}

func (e *NoUniqueBeanError) Error() string {
	return fmt.Sprintf("no unique bean of type %s: %d candidates found %v", e.TypeName, len(e.Matches), e.Matches)
}

// NotOfRequiredTypeError is raised when a resolved instance is not assignable
// to the requested type.
type NotOfRequiredTypeError struct {
	Name         string
	RequiredType string
	ActualType   string
}

func (e *NotOfRequiredTypeError) Error() string {
	return fmt.Sprintf("bean %q is of type %s, not assignable to required type %s", e.Name, e.ActualType, e.RequiredType)
}

// CurrentlyInCreationError is raised when a cycle is detected that cannot be
// broken by an early reference.
type CurrentlyInCreationError struct {
	Name string
}

func (e *CurrentlyInCreationError) Error() string {
	return fmt.Sprintf("bean %q is currently in creation: unresolvable circular reference", e.Name)
}

// ErrCreationNotAllowed is returned by a lookup performed while destruction is
// in progress.
var ErrCreationNotAllowed = errors.New("singleton creation not allowed while destruction is in progress")

// CreationNotAllowedError carries the offending bean name alongside
// ErrCreationNotAllowed.
type CreationNotAllowedError struct {
	Name string
}

func (e *CreationNotAllowedError) Error() string {
	return fmt.Sprintf("bean %q: %s", e.Name, ErrCreationNotAllowed)
}

func (e *CreationNotAllowedError) Unwrap() error { return ErrCreationNotAllowed }

// CreationError wraps a failure from a user factory, init hook, or
// post-processor, with every suppressed exception accumulated during the same
// creation attempt attached as related causes.
type CreationError struct {
	Name       string
	Cause      error
	Suppressed []error
}

func (e *CreationError) Error() string {
	if len(e.Suppressed) == 0 {
		return fmt.Sprintf("error creating bean %q: %s", e.Name, e.Cause)
	}
	return fmt.Sprintf("error creating bean %q: %s (%d suppressed cause(s))", e.Name, e.Cause, len(e.Suppressed))
}

func (e *CreationError) Unwrap() error { return e.Cause }

// newCreationError builds a CreationError, truncating nothing from the
// suppressed list (accumulation already bounds it at maxSuppressedCauses).
func newCreationError(name string, cause error, suppressed []error) *CreationError {
	return &CreationError{
		Name:       name,
		Cause:      errors.WithMessage(cause, fmt.Sprintf("creating bean %q", name)),
		Suppressed: suppressed,
	}
}

// DefinitionStoreError signals a structural problem with a bean definition:
// a missing required field or an illegal override.
type DefinitionStoreError struct {
	Name   string
	Reason string
}

func (e *DefinitionStoreError) Error() string {
	return fmt.Sprintf("definition store error for bean %q: %s", e.Name, e.Reason)
}

// IllegalStateError signals an invariant violation, e.g. freezing a factory
// twice or mutating a frozen registry.
type IllegalStateError struct {
	Reason string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("illegal state: %s", e.Reason)
}

// suppressedExceptions accumulates errors observed during one creation
// attempt, bounded at maxSuppressedCauses. Ownership of the buffer is
// per-creation-frame: the outermost frame to touch a given name owns it and
// transfers it onto the raised CreationError on failure.
type suppressedExceptions struct {
	causes []error
}

func (s *suppressedExceptions) add(err error) {
	if s == nil || err == nil {
		return
	}
	if len(s.causes) >= maxSuppressedCauses {
		return
	}
	s.causes = append(s.causes, err)
}
