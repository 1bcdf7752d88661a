package smc

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Type tags understood by Decode.
var (
	TypeSI8  = MustFourCC("si8 ")
	TypeUI8  = MustFourCC("ui8 ")
	TypeSI16 = MustFourCC("si16")
	TypeUI16 = MustFourCC("ui16")
	TypeSI32 = MustFourCC("si32")
	TypeUI32 = MustFourCC("ui32")
	TypeSI64 = MustFourCC("si64")
	TypeUI64 = MustFourCC("ui64")
	TypeFLT  = MustFourCC("flt ")
	TypeIOFT = MustFourCC("ioft")
	TypeSP78 = MustFourCC("sp78")
	TypeFlag = MustFourCC("flag")
	TypeCH8  = MustFourCC("ch8*")
)

// Decode converts a raw payload according to its type tag. Unknown tags and
// payloads of the wrong length for a fixed-width tag yield ok == false.
//
// Integer fields arrive pre-swapped: the value is the little-endian reading
// of the payload. Floats are likewise byte-reversed, while the ioft and sp78
// fixed-point layouts are read as documented in IOFloat and SP78.
func Decode(tag FourCC, payload []byte) (Value, bool) {
	switch tag {
	case TypeSI8:
		if len(payload) != 1 {
			return Value{}, false
		}
		return Value{Kind: KindSigned, Int: int64(int8(payload[0]))}, true
	case TypeUI8:
		if len(payload) != 1 {
			return Value{}, false
		}
		return Value{Kind: KindUnsigned, Uint: uint64(payload[0])}, true
	case TypeSI16:
		if len(payload) != 2 {
			return Value{}, false
		}
		return Value{Kind: KindSigned, Int: int64(int16(binary.LittleEndian.Uint16(payload)))}, true
	case TypeUI16:
		if len(payload) != 2 {
			return Value{}, false
		}
		return Value{Kind: KindUnsigned, Uint: uint64(binary.LittleEndian.Uint16(payload))}, true
	case TypeSI32:
		if len(payload) != 4 {
			return Value{}, false
		}
		return Value{Kind: KindSigned, Int: int64(int32(binary.LittleEndian.Uint32(payload)))}, true
	case TypeUI32:
		if len(payload) != 4 {
			return Value{}, false
		}
		return Value{Kind: KindUnsigned, Uint: uint64(binary.LittleEndian.Uint32(payload))}, true
	case TypeSI64:
		if len(payload) != 8 {
			return Value{}, false
		}
		return Value{Kind: KindSigned, Int: int64(binary.LittleEndian.Uint64(payload))}, true
	case TypeUI64:
		if len(payload) != 8 {
			return Value{}, false
		}
		return Value{Kind: KindUnsigned, Uint: binary.LittleEndian.Uint64(payload)}, true
	case TypeFLT:
		if len(payload) != 4 {
			return Value{}, false
		}
		f := math.Float32frombits(binary.LittleEndian.Uint32(payload))
		return Value{Kind: KindFloat, Float: float64(f)}, true
	case TypeIOFT:
		if len(payload) != 8 {
			return Value{}, false
		}
		return Value{Kind: KindFixedPoint, Float: IOFloat(payload)}, true
	case TypeSP78:
		if len(payload) != 2 {
			return Value{}, false
		}
		return Value{Kind: KindFixedPoint, Float: SP78(payload)}, true
	case TypeFlag:
		if len(payload) != 1 {
			return Value{}, false
		}
		return Value{Kind: KindBool, Bool: payload[0] != 0}, true
	case TypeCH8:
		return decodeText(payload)
	default:
		return Value{}, false
	}
}

// IOFloat decodes the 8-byte big-endian ioft layout: the high 48 bits are the
// integral part and the low 16 bits the fraction over 65536. Any other
// payload length decodes to 0.
func IOFloat(payload []byte) float64 {
	if len(payload) != 8 {
		return 0
	}

	u := binary.BigEndian.Uint64(payload)
	integral := float64(u >> 16)
	fractional := float64(u&0xFFFF) / 65536

	return integral + fractional
}

// SP78 decodes the 2-byte signed fixed-point layout: byte 1 carries seven
// integer bits, byte 0 the fraction over 256. Any other payload length
// decodes to 0.
func SP78(payload []byte) float64 {
	if len(payload) != 2 {
		return 0
	}

	return float64(payload[1]&0x7F) + float64(payload[0])/256
}

func decodeText(payload []byte) (Value, bool) {
	reversed := make([]byte, len(payload))
	for i, b := range payload {
		reversed[len(payload)-1-i] = b
	}

	start, end := 0, len(reversed)
	for start < end && reversed[start] == 0 {
		start++
	}
	for end > start && reversed[end-1] == 0 {
		end--
	}

	text := reversed[start:end]
	if !utf8.Valid(text) {
		return Value{}, false
	}

	return Value{Kind: KindText, Text: string(text)}, true
}
