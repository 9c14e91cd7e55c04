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

// Package fieldpath factors the struct-tag reflection walk used by the
// façade's autowiring into its own place, as the one piece of code that
// knows about this project's tag namespace:
//
//	beankit:"<name>"          name of the dependency bean to inject
//	beankit.optional:"true"   tolerate a missing dependency, leave it nil
//	beankit.value:"<expr>"    literal or resolver-expanded string value
package fieldpath

import (
	"reflect"
	"strconv"
)

const (
	injectTag   = "beankit"
	optionalTag = "beankit.optional"
	valueTag    = "beankit.value"
)

// Injection describes one struct field slated for dependency injection.
type Injection struct {
	FieldIndex int
	BeanName   string
	Optional   bool
}

// Injections walks every field of elemType (a struct type, not a pointer)
// and returns the ones tagged for injection.
func Injections(elemType reflect.Type) ([]Injection, error) {
	var result []Injection
	for i := 0; i < elemType.NumField(); i++ {
		field := elemType.Field(i)
		beanName := field.Tag.Get(injectTag)
		if beanName == "" {
			continue
		}
		if field.Type.Kind() != reflect.Ptr && field.Type.Kind() != reflect.Interface {
			return nil, &UnsupportedFieldError{Field: field.Name}
		}
		optional := false
		if raw := field.Tag.Get(optionalTag); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, &InvalidOptionalTagError{Field: field.Name, Value: raw}
			}
			optional = v
		}
		result = append(result, Injection{FieldIndex: i, BeanName: beanName, Optional: optional})
	}
	return result, nil
}

// ValueField describes one struct field slated for value-expression
// injection rather than bean-reference injection.
type ValueField struct {
	FieldIndex int
	Expression string
}

// ValueInjections walks every exported string field of elemType tagged with
// beankit.value.
func ValueInjections(elemType reflect.Type) []ValueField {
	var result []ValueField
	for i := 0; i < elemType.NumField(); i++ {
		field := elemType.Field(i)
		expr := field.Tag.Get(valueTag)
		if expr == "" {
			continue
		}
		if field.Type.Kind() != reflect.String || field.PkgPath != "" {
			continue
		}
		result = append(result, ValueField{FieldIndex: i, Expression: expr})
	}
	return result
}

// SetString assigns a resolved string value into the field at fieldIndex.
func SetString(instance interface{}, fieldIndex int, value string) error {
	v := reflect.ValueOf(instance).Elem().Field(fieldIndex)
	if !v.CanSet() {
		return &UnexportedFieldError{}
	}
	v.SetString(value)
	return nil
}

// Set assigns value into the field at fieldIndex of the struct pointed to by
// instance. The field must be addressable and assignable (pointer or
// interface kind, enforced by Injections).
func Set(instance interface{}, fieldIndex int, value interface{}) error {
	v := reflect.ValueOf(instance).Elem().Field(fieldIndex)
	if !v.CanSet() {
		return &UnexportedFieldError{}
	}
	v.Set(reflect.ValueOf(value))
	return nil
}

// UnsupportedFieldError reports a tagged field whose kind cannot hold an
// injected dependency (dependencies must be pointers or interfaces).
type UnsupportedFieldError struct {
	Field string
}

func (e *UnsupportedFieldError) Error() string {
	return "field " + e.Field + ": unsupported dependency type, injections must be done by reference"
}

// InvalidOptionalTagError reports a beankit.optional tag that doesn't parse
// as a bool.
type InvalidOptionalTagError struct {
	Field string
	Value string
}

func (e *InvalidOptionalTagError) Error() string {
	return "field " + e.Field + ": invalid beankit.optional value " + strconv.Quote(e.Value)
}

// UnexportedFieldError reports an attempt to set a field that reflect
// refuses to let us assign (unexported, non-addressable).
type UnexportedFieldError struct{}

func (e *UnexportedFieldError) Error() string {
	return "field is not settable: must be exported and addressable"
}
