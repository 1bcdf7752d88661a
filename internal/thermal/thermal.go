// Package thermal reports the operating system's thermal pressure level.
package thermal

// Level is the coarse throttling severity reported by the OS.
type Level int

const (
	Nominal Level = iota
	Fair
	Serious
	Critical
)

var levelNames = [...]string{"Nominal", "Fair", "Serious", "Critical"}

func (l Level) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}

	return "Unknown"
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	return l >= Nominal && l <= Critical
}

// Reader returns the current pressure level. ok is false when the platform
// does not expose one.
type Reader interface {
	Pressure() (level Level, ok bool)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func() (Level, bool)

func (f ReaderFunc) Pressure() (Level, bool) {
	return f()
}
