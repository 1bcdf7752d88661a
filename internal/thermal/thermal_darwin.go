//go:build darwin && cgo

package thermal

/*
#cgo CFLAGS: -fobjc-arc
#cgo LDFLAGS: -framework Foundation -lobjc
#include <objc/runtime.h>
#include <objc/message.h>

static long thermal_state(void) {
	Class cls = objc_getClass("NSProcessInfo");
	if (!cls) {
		return -1;
	}
	SEL selPI = sel_registerName("processInfo");
	SEL selTS = sel_registerName("thermalState");
	id pi = ((id (*)(id, SEL))objc_msgSend)((id)cls, selPI);
	if (!pi) {
		return -1;
	}
	return ((long (*)(id, SEL))objc_msgSend)(pi, selTS);
}
*/
import "C"

type processInfo struct{}

// NewReader returns a reader backed by NSProcessInfo.thermalState.
func NewReader() Reader {
	return processInfo{}
}

func (processInfo) Pressure() (Level, bool) {
	level := Level(C.thermal_state())
	if !level.Valid() {
		return 0, false
	}

	return level, true
}
