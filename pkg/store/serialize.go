package store

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// SerializationError reports a value that cannot be embedded in a document.
type SerializationError struct {
	Path   string // "$.list[2].author"
	Reason string
	Err    error
}

func (e *SerializationError) Error() string {
	msg := fmt.Sprintf("store: state at %s is not serializable: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Validate walks v and reports the first value JSON cannot represent
// faithfully: functions, channels, complex numbers, unsafe pointers,
// non-finite floats, unsupported map keys and cyclic references.
func Validate(v any) error {
	w := walker{seen: make(map[uintptr]bool)}
	return w.walk("$", reflect.ValueOf(v))
}

type walker struct {
	seen map[uintptr]bool
}

func (w *walker) walk(path string, v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}

	// Types with their own encoding are trusted.
	if v.Kind() != reflect.Interface && v.Type().Implements(jsonMarshalerType) {
		return nil
	}

	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		if v.IsNil() {
			return nil
		}
		return &SerializationError{Path: path, Reason: v.Kind().String() + " value"}

	case reflect.Complex64, reflect.Complex128:
		return &SerializationError{Path: path, Reason: "complex number"}

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &SerializationError{Path: path, Reason: "non-finite number " + strconv.FormatFloat(f, 'g', -1, 64)}
		}

	case reflect.Interface:
		return w.walk(path, v.Elem())

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return w.enter(path, v, func() error { return w.walk(path, v.Elem()) })

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		if !validMapKey(v.Type().Key()) {
			return &SerializationError{Path: path, Reason: "map key type " + v.Type().Key().String()}
		}
		return w.enter(path, v, func() error {
			iter := v.MapRange()
			for iter.Next() {
				if err := w.walk(path+"."+fmt.Sprint(iter.Key().Interface()), iter.Value()); err != nil {
					return err
				}
			}
			return nil
		})

	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil // []byte encodes as base64
		}
		return w.enter(path, v, func() error { return w.walkElems(path, v) })

	case reflect.Array:
		return w.walkElems(path, v)

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := f.Name
			if tag, ok := f.Tag.Lookup("json"); ok {
				tagName, _, _ := strings.Cut(tag, ",")
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			if err := w.walk(path+"."+name, v.Field(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) walkElems(path string, v reflect.Value) error {
	for i := 0; i < v.Len(); i++ {
		if err := w.walk(path+"["+strconv.Itoa(i)+"]", v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// enter tracks reference values on the current path so cycles are reported
// instead of recursing forever. Shared (non-cyclic) references are fine.
func (w *walker) enter(path string, v reflect.Value, fn func() error) error {
	ptr := v.Pointer()
	if v.Kind() == reflect.Slice {
		if v.Len() == 0 {
			return fn()
		}
		ptr = v.Index(0).Addr().Pointer()
	}
	if w.seen[ptr] {
		return &SerializationError{Path: path, Reason: "cyclic reference"}
	}
	w.seen[ptr] = true
	defer delete(w.seen, ptr)
	return fn()
}

func validMapKey(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return t.Implements(textMarshalerType)
}

// Marshal validates state and encodes it as JSON. encoding/json escapes <, >,
// &, U+2028 and U+2029, so the result is safe inside a script element.
func Marshal(state State) ([]byte, error) {
	if err := Validate(state); err != nil {
		return nil, err
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, &SerializationError{Path: "$", Reason: "json encoding failed", Err: err}
	}
	return data, nil
}

// Unmarshal decodes a serialized state.
func Unmarshal(data []byte) (State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("store: serialized state is null")
	}
	return st, nil
}

// Normalize deep-copies state through JSON.
func Normalize(state State) (State, error) {
	data, err := Marshal(state)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Select decodes the slice stored under key into T. A missing key yields the
// zero value.
func Select[T any](state State, key string) (T, error) {
	var out T
	v, ok := state[key]
	if !ok || v == nil {
		return out, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("store: select %q: %w", key, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("store: select %q: %w", key, err)
	}
	return out, nil
}
