package paramtype

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Infer picks a type tag for a value received from the parameter server by
// inspecting its native kind: bool before int before float, falling back to
// string. Unsigned values beyond the int64 range keep their uint64 value
// under the "uint64" tag. Composite values (sequences, mappings) are
// stringified rather than preserved structurally.
func Infer(value any) (string, any) {
	switch v := value.(type) {
	case nil:
		return TagString, ""
	case bool:
		return TagBool, v
	case string:
		return TagString, v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return TagInt, i
		}
		if u, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return TagUint64, u
		}
		if f, err := v.Float64(); err == nil {
			return TagFloat, f
		}
		return TagString, v.String()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return TagInt, rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := rv.Uint(); u > math.MaxInt64 {
			return TagUint64, u
		}
		return TagInt, int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return TagFloat, rv.Float()
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		return TagString, stringify(value)
	default:
		return TagString, fmt.Sprint(value)
	}
}

func stringify(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}
