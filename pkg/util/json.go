// pkg/util/json.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// UnmarshalJSON unmarshals the bytes into the given type but goes through
// some efforts to return useful error messages when the JSON is invalid.
func UnmarshalJSON[T any](b []byte, out *T) error {
	err := json.Unmarshal(b, out)
	if err == nil {
		return nil
	}

	decodeOffset := func(offset int64) (line, char int) {
		line, char = 1, 1
		for i := 0; i < int(offset) && i < len(b); i++ {
			if b[i] == '\n' {
				line++
				char = 1
			} else {
				char++
			}
		}
		return
	}

	var serr *json.SyntaxError
	var terr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &serr):
		line, char := decodeOffset(serr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %w", line, char, err)

	case errors.As(err, &terr):
		line, char := decodeOffset(terr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %s value for %s.%s invalid for type %s: %w",
			line, char, terr.Value, terr.Struct, terr.Field, terr.Type.String(), err)

	default:
		return err
	}
}

// CheckJSON checks whether the provided JSON is syntactically valid and
// then typechecks it with respect to the provided type T, reporting any
// problems to e.
func CheckJSON[T any](contents []byte, e *ErrorLogger) {
	defer e.CheckDepth(e.CurrentDepth())

	var items any
	if err := UnmarshalJSON(contents, &items); err != nil {
		e.Error(err)
		return
	}

	typeCheckJSON(items, reflect.TypeOf((*T)(nil)).Elem(), e)
}

// TypeCheckJSON returns a Boolean indicating whether the provided raw
// unmarshaled JSON values are type-compatible with the given type T.
func TypeCheckJSON[T any](json any) bool {
	var e ErrorLogger
	typeCheckJSON(json, reflect.TypeOf((*T)(nil)).Elem(), &e)
	return !e.HaveErrors()
}

// JSONChecker is an interface that allows types that implement custom JSON
// unmarshalers to check whether raw unmarshaled JSON values are compatible
// with their underlying type.
type JSONChecker interface {
	CheckJSON(json any) bool
}

var jsonCheckerType = reflect.TypeOf((*JSONChecker)(nil)).Elem()

func typeCheckJSON(json any, ty reflect.Type, e *ErrorLogger) {
	for ty.Kind() == reflect.Pointer {
		ty = ty.Elem()
	}

	badFormat := func() {
		e.ErrorString("unexpected data format provided for %s: %s", ty, reflect.TypeOf(json))
	}

	// Use the type's JSONChecker, if there is one.
	if ty.Implements(jsonCheckerType) || reflect.PointerTo(ty).Implements(jsonCheckerType) {
		checker := reflect.New(ty).Interface().(JSONChecker)
		if !checker.CheckJSON(json) {
			badFormat()
		}
		return
	}

	switch ty.Kind() {
	case reflect.Bool:
		if _, ok := json.(bool); !ok {
			badFormat()
		}

	case reflect.String:
		if _, ok := json.(string); !ok {
			badFormat()
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if _, ok := json.(float64); !ok {
			badFormat()
		}

	case reflect.Array, reflect.Slice:
		if array, ok := json.([]any); ok {
			for i, item := range array {
				e.Push(fmt.Sprintf("[%d]", i))
				typeCheckJSON(item, ty.Elem(), e)
				e.Pop()
			}
		} else {
			badFormat()
		}

	case reflect.Map:
		if m, ok := json.(map[string]any); ok {
			for k, v := range m {
				e.Push(k)
				typeCheckJSON(v, ty.Elem(), e)
				e.Pop()
			}
		} else {
			badFormat()
		}

	case reflect.Struct:
		items, ok := json.(map[string]any)
		if !ok {
			badFormat()
			return
		}
		for item, value := range items {
			field, found := jsonField(ty, item)
			if !found {
				e.ErrorString("The entry %q is not an expected JSON object. Is it misspelled?", item)
				continue
			}
			e.Push(item)
			typeCheckJSON(value, field.Type, e)
			e.Pop()
		}
	}
}

// jsonField returns the struct field that the given JSON key would be
// unmarshaled into.
func jsonField(ty reflect.Type, key string) (reflect.StructField, bool) {
	for _, field := range reflect.VisibleFields(ty) {
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		if strings.EqualFold(name, key) {
			return field, true
		}
	}
	return reflect.StructField{}, false
}
