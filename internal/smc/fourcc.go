package smc

// FourCC is a four-character code packed big-endian into 32 bits. The
// management controller uses it both for key names and for type tags.
type FourCC uint32

// ParseFourCC packs a four byte string. ok is false for any other length.
func ParseFourCC(s string) (FourCC, bool) {
	if len(s) != 4 {
		return 0, false
	}

	return FourCC(uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3])), true
}

// MustFourCC is ParseFourCC for compile-time constants.
func MustFourCC(s string) FourCC {
	c, ok := ParseFourCC(s)
	if !ok {
		panic("smc: four-character code must be 4 bytes: " + s)
	}

	return c
}

// String splits the code into its four characters, most significant first.
func (c FourCC) String() string {
	b := [4]byte{
		byte(c >> 24),
		byte(c >> 16),
		byte(c >> 8),
		byte(c),
	}

	return string(b[:])
}

// Prefix returns the first character of the code.
func (c FourCC) Prefix() byte {
	return byte(c >> 24)
}
