package paramtype

import (
	"strconv"
	"strings"
)

// Nested-structure markers.
const (
	TagDict = "dict"
	TagList = "list"
)

// Well-known tags emitted by Infer and understood by the coercion rules.
const (
	TagBool     = "bool"
	TagInt      = "int"
	TagUint64   = "uint64"
	TagFloat    = "float"
	TagString   = "string"
	TagTime     = "time"
	TagDuration = "duration"
)

var primitives = map[string]struct{}{
	"bool": {}, "char": {}, "byte": {},
	"int8": {}, "uint8": {}, "int16": {}, "uint16": {},
	"int32": {}, "uint32": {}, "int64": {}, "uint64": {},
	"float32": {}, "float64": {},
	"string": {}, "time": {}, "duration": {},
	"int": {}, "float": {},
}

// Family groups base types by the coercion rule applied to their text.
type Family int

const (
	FamilyString Family = iota
	FamilyInt
	FamilyFloat
	FamilyBool
	FamilyTime
)

func (f Family) String() string {
	switch f {
	case FamilyInt:
		return "int"
	case FamilyFloat:
		return "float"
	case FamilyBool:
		return "bool"
	case FamilyTime:
		return "time"
	default:
		return "string"
	}
}

// Descriptor is the decomposition of a type tag.
type Descriptor struct {
	Tag       string
	Base      string
	Array     bool
	ArrayLen  int // fixed length for T[N]; 0 when unbounded or scalar
	Primitive bool
	Time      bool
}

// Classify decomposes tag. Malformed tags degrade to a non-primitive scalar
// whose base type is the tag itself.
func Classify(tag string) Descriptor {
	d := Descriptor{Tag: tag, Base: tag}
	if tag == TagDict || tag == TagList {
		return d
	}

	if open := strings.IndexByte(tag, '['); open >= 0 {
		if !strings.HasSuffix(tag, "]") || open == 0 {
			return d
		}
		length := tag[open+1 : len(tag)-1]
		if length != "" {
			n, err := strconv.Atoi(length)
			if err != nil || n < 0 {
				return d
			}
			d.ArrayLen = n
		}
		d.Base = tag[:open]
		d.Array = true
	}

	_, d.Primitive = primitives[d.Base]
	d.Time = d.Base == TagTime || d.Base == TagDuration
	return d
}

// Unsigned reports whether an int family base type is unsigned ("uint8",
// "uint64", ...). Unsigned values are parsed and stored as uint64.
func (d Descriptor) Unsigned() bool {
	return strings.HasPrefix(d.Base, "uint")
}

// Family reports how text entered for this type is coerced. The rules match
// on substrings of the base type, so "uint8" coerces as an int and "float64"
// as a float.
func (d Descriptor) Family() Family {
	switch {
	case strings.Contains(d.Base, "int"):
		return FamilyInt
	case strings.Contains(d.Base, "float"):
		return FamilyFloat
	case strings.Contains(d.Base, "bool"):
		return FamilyBool
	case d.Time:
		return FamilyTime
	default:
		return FamilyString
	}
}

// Nested reports whether the type is rendered as a group of child fields.
func (d Descriptor) Nested() bool {
	return !d.Primitive
}
