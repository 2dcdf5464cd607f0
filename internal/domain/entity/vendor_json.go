package entity

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// vendorJSON keeps numbers as their literal text so balances and prices pass through untouched.
var vendorJSON = jsoniter.Config{
	EscapeHTML: true,
	UseNumber:  true,
}.Froze()

// readObject walks the top level keys of body in document order. Non-object values are
// skipped; fn receives an iterator positioned on each object value and must consume it.
func readObject(body []byte, fn func(iter *jsoniter.Iterator, key string)) error {
	iter := vendorJSON.BorrowIterator(body)
	defer vendorJSON.ReturnIterator(iter)

	if next := iter.WhatIsNext(); next != jsoniter.ObjectValue {
		return fmt.Errorf("expected a JSON object, got value type %d", next)
	}
	iter.ReadMapCB(func(it *jsoniter.Iterator, key string) bool {
		if it.WhatIsNext() != jsoniter.ObjectValue {
			it.Skip()
			return true
		}
		fn(it, key)
		return it.Error == nil
	})
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return fmt.Errorf("failed to decode vendor response: %w", iter.Error)
	}
	return nil
}

// readNestedObject is readObject for an iterator already positioned on an object.
func readNestedObject(iter *jsoniter.Iterator, fn func(iter *jsoniter.Iterator, key string)) {
	iter.ReadMapCB(func(it *jsoniter.Iterator, key string) bool {
		if it.WhatIsNext() != jsoniter.ObjectValue {
			it.Skip()
			return true
		}
		fn(it, key)
		return it.Error == nil
	})
}

// stringField returns m[key] as text. Absent and null values map to "".
func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// objectField returns m[key] when it is a non-empty object.
func objectField(m map[string]any, key string) (map[string]any, bool) {
	obj, ok := m[key].(map[string]any)
	if !ok || len(obj) == 0 {
		return nil, false
	}
	return obj, true
}
