package form

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-paramform/pkg/paramtype"
)

func coerce(desc paramtype.Descriptor, text string) (any, error) {
	if text == "" {
		return zeroValue(desc), nil
	}
	if desc.Array {
		return coerceArray(desc, text)
	}
	switch desc.Family() {
	case paramtype.FamilyInt:
		if desc.Unsigned() {
			return strconv.ParseUint(strings.TrimSpace(text), 10, 64)
		}
		return strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	case paramtype.FamilyFloat:
		return strconv.ParseFloat(strings.TrimSpace(text), 64)
	case paramtype.FamilyBool:
		return strconv.ParseBool(strings.TrimSpace(text))
	case paramtype.FamilyTime:
		if text == TimeNow {
			return TimeNow, nil
		}
		return parseSeconds(text)
	default:
		return text, nil
	}
}

func coerceArray(desc paramtype.Descriptor, text string) (any, error) {
	parts := strings.Split(text, ",")
	family := desc.Family()
	switch {
	case family == paramtype.FamilyInt && desc.Unsigned():
		out := make([]uint64, len(parts))
		for i, part := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case family == paramtype.FamilyInt:
		out := make([]int64, len(parts))
		for i, part := range parts {
			v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case family == paramtype.FamilyFloat:
		out := make([]float64, len(parts))
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case family == paramtype.FamilyBool:
		out := make([]bool, len(parts))
		for i, part := range parts {
			v, err := strconv.ParseBool(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return parts, nil
	}
}

func zeroValue(desc paramtype.Descriptor) any {
	unsigned := desc.Family() == paramtype.FamilyInt && desc.Unsigned()
	if desc.Array {
		switch desc.Family() {
		case paramtype.FamilyInt:
			if unsigned {
				return []uint64{}
			}
			return []int64{}
		case paramtype.FamilyFloat:
			return []float64{}
		case paramtype.FamilyBool:
			return []bool{}
		default:
			return []string{}
		}
	}
	switch desc.Family() {
	case paramtype.FamilyInt:
		if unsigned {
			return uint64(0)
		}
		return int64(0)
	case paramtype.FamilyFloat:
		return 0.0
	case paramtype.FamilyBool:
		return false
	case paramtype.FamilyTime:
		return Time{}
	default:
		return ""
	}
}

var decimalSeconds = regexp.MustCompile(`^([+-]?)(\d*)(?:\.(\d*))?$`)

// parseSeconds splits a seconds value into whole seconds and nanoseconds.
// Plain decimals are split exactly; anything else goes through float parsing.
func parseSeconds(text string) (Time, error) {
	trimmed := strings.TrimSpace(text)
	m := decimalSeconds.FindStringSubmatch(trimmed)
	if m == nil || m[2]+m[3] == "" {
		return parseFloatSeconds(trimmed)
	}

	var secs int64
	if m[2] != "" {
		v, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return parseFloatSeconds(trimmed)
		}
		secs = v
	}

	frac := m[3]
	roundUp := len(frac) > 9 && frac[9] >= '5'
	if len(frac) > 9 {
		frac = frac[:9]
	}
	frac += strings.Repeat("0", 9-len(frac))
	nsecs, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return Time{}, err
	}
	if roundUp {
		nsecs++
		if nsecs == 1e9 {
			secs++
			nsecs = 0
		}
	}
	if m[1] == "-" {
		secs, nsecs = -secs, -nsecs
	}
	return Time{Secs: secs, Nsecs: nsecs}, nil
}

func parseFloatSeconds(text string) (Time, error) {
	val, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Time{}, err
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return Time{}, fmt.Errorf("invalid seconds value %q", text)
	}
	if val >= math.MaxInt64 || val < math.MinInt64 {
		return Time{}, fmt.Errorf("seconds value %q out of range", text)
	}
	secs := int64(val)
	nsecs := int64(math.Round((val - float64(secs)) * 1e9))
	return Time{Secs: secs, Nsecs: nsecs}, nil
}

// FormatValue renders a value as the text a field shows for it. Sequences
// are joined with commas so the text can be entered again unchanged.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case Time:
		return formatSeconds(v)
	case Params, map[string]Entry:
		return ""
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Slice, reflect.Array:
		items, _ := sequence(value)
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(value)
	}
}

func formatSeconds(t Time) string {
	secs, nsecs := t.Secs, t.Nsecs
	negative := secs < 0 || nsecs < 0
	if secs < 0 {
		secs = -secs
	}
	if nsecs < 0 {
		nsecs = -nsecs
	}
	out := strconv.FormatInt(secs, 10)
	if nsecs != 0 {
		out += "." + strings.TrimRight(fmt.Sprintf("%09d", nsecs), "0")
	}
	if negative {
		out = "-" + out
	}
	return out
}

// isEmptyValue mirrors the falsiness the history cache ignores.
func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case Time:
		return v == Time{}
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	default:
		return false
	}
}

// truthy decides the initial state of a checkbox.
func truthy(value any) bool {
	if s, ok := value.(string); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
		return s != ""
	}
	return !isEmptyValue(value)
}
