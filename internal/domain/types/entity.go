package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Field is one named value of an Entity.
type Field struct {
	Name  string
	Value any
}

// Entity is one remote resource record: an ordered set of named fields with
// one designated identifier field. The zero value is not usable; build with
// NewEntity or NewEntityFromFields.
type Entity struct {
	idField string
	fields  []Field
	index   map[string]int
}

// NewEntity builds an Entity from a decoded JSON object. Fields are ordered by
// name. idField must name a non-empty string value.
func NewEntity(idField string, values map[string]any) (Entity, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, Field{Name: name, Value: values[name]})
	}
	return NewEntityFromFields(idField, fields...)
}

// NewEntityFromFields builds an Entity keeping the given field order.
func NewEntityFromFields(idField string, fields ...Field) (Entity, error) {
	e := Entity{
		idField: idField,
		fields:  make([]Field, 0, len(fields)),
		index:   make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if _, dup := e.index[f.Name]; dup {
			return Entity{}, fmt.Errorf("duplicate field %q", f.Name)
		}
		e.index[f.Name] = len(e.fields)
		e.fields = append(e.fields, f)
	}

	id, err := e.String(idField)
	if err != nil {
		return Entity{}, fmt.Errorf("identifier: %w", err)
	}
	if id == "" {
		return Entity{}, fmt.Errorf("identifier field %q is empty", idField)
	}
	return e, nil
}

// ID returns the stable identifier.
func (e Entity) ID() string {
	id, _ := e.String(e.idField)
	return id
}

// IDField returns the name of the identifier field.
func (e Entity) IDField() string { return e.idField }

// Fields returns a copy of the fields in order.
func (e Entity) Fields() []Field {
	out := make([]Field, len(e.fields))
	copy(out, e.fields)
	return out
}

// Map returns the fields as a plain map, for encoders.
func (e Entity) Map() map[string]any {
	out := make(map[string]any, len(e.fields))
	for _, f := range e.fields {
		out[f.Name] = f.Value
	}
	return out
}

// Get returns the raw value of a field.
func (e Entity) Get(name string) (any, bool) {
	i, ok := e.index[name]
	if !ok {
		return nil, false
	}
	return e.fields[i].Value, true
}

func (e Entity) lookup(name string) (any, error) {
	v, ok := e.Get(name)
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	return v, nil
}

// String returns a string field.
func (e Entity) String(name string) (string, error) {
	v, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, want string", ErrFieldType, name, v)
	}
	return s, nil
}

// Int returns an integer field. JSON numbers (float64 and json.Number) are
// accepted when they hold a whole value.
func (e Entity) Int(name string) (int64, error) {
	v, err := e.lookup(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("%w: %q is %v, want integer", ErrFieldType, name, n)
		}
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrFieldType, name, err)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%w: %q is %T, want integer", ErrFieldType, name, v)
}

// Float returns a numeric field.
func (e Entity) Float(name string) (float64, error) {
	v, err := e.lookup(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrFieldType, name, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q is %T, want number", ErrFieldType, name, v)
}

// Bool returns a boolean field.
func (e Entity) Bool(name string) (bool, error) {
	v, err := e.lookup(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q is %T, want bool", ErrFieldType, name, v)
	}
	return b, nil
}

// Time returns a timestamp field. Accepts time.Time, RFC 3339 strings and
// numbers holding epoch milliseconds (the platform's list endpoints use both).
func (e Entity) Time(name string) (time.Time, error) {
	v, err := e.lookup(name)
	if err != nil {
		return time.Time{}, err
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %v", ErrFieldType, name, err)
		}
		return parsed, nil
	}
	ms, err := e.Int(name)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is %T, want timestamp", ErrFieldType, name, v)
	}
	return time.UnixMilli(ms).UTC(), nil
}

// Display renders a field for humans. Missing fields render as "-".
func (e Entity) Display(name string) string {
	v, ok := e.Get(name)
	if !ok || v == nil {
		return "-"
	}
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
