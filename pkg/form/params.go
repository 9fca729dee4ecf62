package form

import "reflect"

// Entry is a typed parameter value as found in construction input.
type Entry struct {
	Type  string
	Value any
}

// Params maps parameter names to typed values. Nested Params model records.
type Params map[string]Entry

// TimeNow is the sentinel a time field keeps when the user enters "now".
const TimeNow = "now"

// Time is a time or duration value split into whole seconds and nanoseconds.
type Time struct {
	Secs  int64 `json:"secs" yaml:"secs" msgpack:"secs"`
	Nsecs int64 `json:"nsecs" yaml:"nsecs" msgpack:"nsecs"`
}

func asParams(value any) (Params, bool) {
	switch v := value.(type) {
	case Params:
		return v, true
	case map[string]Entry:
		return Params(v), true
	default:
		return nil, false
	}
}

func isStructured(value any) bool {
	switch value.(type) {
	case nil, string:
		return false
	case Params, map[string]Entry, []Params, Time:
		return true
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		return true
	default:
		return false
	}
}

// sequence returns the elements of any slice value.
func sequence(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case nil, string:
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
