package smc

import (
	"fmt"
	"strconv"
)

// ValueKind identifies which field of a Value is populated.
type ValueKind int

const (
	KindSigned ValueKind = iota
	KindUnsigned
	KindFloat
	KindFixedPoint
	KindBool
	KindText
)

func (k ValueKind) String() string {
	switch k {
	case KindSigned:
		return "signed"
	case KindUnsigned:
		return "unsigned"
	case KindFloat:
		return "float"
	case KindFixedPoint:
		return "fixed"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Value is a decoded key payload.
type Value struct {
	Kind  ValueKind
	Int   int64
	Uint  uint64
	Float float64
	Bool  bool
	Text  string
}

// Real returns the value as a float for the floating and fixed-point
// encodings. Integer, flag and text keys are counters and identifiers,
// not measurements, and report false.
func (v Value) Real() (float64, bool) {
	switch v.Kind {
	case KindFloat, KindFixedPoint:
		return v.Float, true
	default:
		return 0, false
	}
}

// Float64 converts any numeric kind to float64.
func (v Value) Float64() (float64, bool) {
	switch v.Kind {
	case KindSigned:
		return float64(v.Int), true
	case KindUnsigned:
		return float64(v.Uint), true
	case KindFloat, KindFixedPoint:
		return v.Float, true
	default:
		return 0, false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindSigned:
		return strconv.FormatInt(v.Int, 10)
	case KindUnsigned:
		return strconv.FormatUint(v.Uint, 10)
	case KindFloat, KindFixedPoint:
		return strconv.FormatFloat(v.Float, 'f', 2, 64)
	case KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case KindText:
		return v.Text
	default:
		return fmt.Sprintf("<%s>", v.Kind)
	}
}
