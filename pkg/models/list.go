package models

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// List is an ordered collection whose elements all share the type T.
// The zero value is an empty list ready to use.
type List[T any] struct {
	items []T
}

// NewList creates a list holding the given items
func NewList[T any](items ...T) List[T] {
	l := List[T]{items: make([]T, 0, len(items))}
	l.items = append(l.items, items...)
	return l
}

// Add appends items to the list
func (l *List[T]) Add(items ...T) {
	l.items = append(l.items, items...)
}

// AddValue appends v if it holds a T. Any other value is rejected with
// ErrTypeMismatch and the list is left unchanged.
func (l *List[T]) AddValue(v any) error {
	item, ok := v.(T)
	if !ok {
		return fmt.Errorf("%w: expected %s, got %T", ErrTypeMismatch, reflect.TypeFor[T](), v)
	}
	l.items = append(l.items, item)
	return nil
}

// Len returns the number of items
func (l List[T]) Len() int {
	return len(l.items)
}

// At returns the item at index i
func (l List[T]) At(i int) T {
	return l.items[i]
}

// Items returns a copy of the underlying items
func (l List[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// MarshalJSON encodes the list as a JSON array, never as null
func (l List[T]) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return marshalValue([]T{})
	}
	return marshalValue(l.items)
}

// UnmarshalJSON decodes a JSON array into the list
func (l *List[T]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	l.items = items
	return nil
}
