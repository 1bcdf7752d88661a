//go:build !darwin || !cgo

package thermal

// NewReader returns a reader for platforms without a thermal state
// indicator. It never reports a level.
func NewReader() Reader {
	return ReaderFunc(func() (Level, bool) { return 0, false })
}
