package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrScope              = errors.New("outside of caller scope")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStoreInactive      = errors.New("store is not active")
)

// ValidationError lists every rejected field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type validator struct {
	fields map[string]string
}

func (v *validator) check(ok bool, field, reason string) {
	if ok {
		return
	}
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, seen := v.fields[field]; !seen {
		v.fields[field] = reason
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func invalid(field, reason string) error {
	return &ValidationError{Fields: map[string]string{field: reason}}
}
