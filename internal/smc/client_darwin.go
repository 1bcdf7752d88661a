//go:build darwin && cgo

package smc

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation
#include <IOKit/IOKitLib.h>
#include <string.h>

enum {
	kSMCKeyNotFound     = 0x84,
	kSMCSuccess         = 0,
	kSMCUserClientOpen  = 0,
	kSMCUserClientClose = 1,
	kSMCHandleYPCEvent  = 2,
	kSMCReadKey         = 5,
	kSMCGetKeyFromIndex = 8,
	kSMCGetKeyInfo      = 9
};

typedef struct {
	unsigned char  major;
	unsigned char  minor;
	unsigned char  build;
	unsigned char  reserved;
	unsigned short release;
} SMCVersion;

typedef struct {
	uint16_t version;
	uint16_t length;
	uint32_t cpuPLimit;
	uint32_t gpuPLimit;
	uint32_t memPLimit;
} SMCPLimitData;

typedef struct {
	uint32_t dataSize;
	uint32_t dataType;
	uint8_t  dataAttributes;
} SMCKeyInfoData;

typedef struct {
	uint32_t       key;
	SMCVersion     vers;
	SMCPLimitData  pLimitData;
	SMCKeyInfoData keyInfo;
	uint8_t        result;
	uint8_t        status;
	uint8_t        data8;
	uint32_t       data32;
	uint8_t        bytes[32];
} SMCParamStruct;

static kern_return_t smc_open(io_connect_t *conn) {
	io_service_t service = IOServiceGetMatchingService(kIOMainPortDefault, IOServiceMatching("AppleSMC"));
	if (service == IO_OBJECT_NULL) {
		return kIOReturnNotFound;
	}

	kern_return_t kr = IOServiceOpen(service, mach_task_self(), 1, conn);
	IOObjectRelease(service);
	if (kr != kIOReturnSuccess) {
		return kr;
	}

	kr = IOConnectCallMethod(*conn, kSMCUserClientOpen, NULL, 0, NULL, 0, NULL, NULL, NULL, NULL);
	if (kr != kIOReturnSuccess) {
		IOServiceClose(*conn);
	}
	return kr;
}

static void smc_close(io_connect_t conn) {
	IOConnectCallMethod(conn, kSMCUserClientClose, NULL, 0, NULL, 0, NULL, NULL, NULL, NULL);
	IOServiceClose(conn);
}

static kern_return_t smc_call(io_connect_t conn, SMCParamStruct *in, SMCParamStruct *out) {
	size_t size = sizeof(SMCParamStruct);
	memset(out, 0, sizeof(SMCParamStruct));
	return IOConnectCallStructMethod(conn, kSMCHandleYPCEvent, in, sizeof(SMCParamStruct), out, &size);
}

static kern_return_t smc_key_at(io_connect_t conn, uint32_t index, uint32_t *key, uint8_t *result) {
	SMCParamStruct in, out;
	memset(&in, 0, sizeof(in));
	in.data8 = kSMCGetKeyFromIndex;
	in.data32 = index;
	kern_return_t kr = smc_call(conn, &in, &out);
	*result = out.result;
	*key = out.key;
	return kr;
}

static kern_return_t smc_key_info(io_connect_t conn, uint32_t key, uint32_t *size, uint32_t *type, uint8_t *result) {
	SMCParamStruct in, out;
	memset(&in, 0, sizeof(in));
	in.data8 = kSMCGetKeyInfo;
	in.key = key;
	kern_return_t kr = smc_call(conn, &in, &out);
	*result = out.result;
	*size = out.keyInfo.dataSize;
	*type = out.keyInfo.dataType;
	return kr;
}

static kern_return_t smc_read(io_connect_t conn, uint32_t key, uint32_t size, uint8_t *buf, uint8_t *result) {
	SMCParamStruct in, out;
	memset(&in, 0, sizeof(in));
	in.data8 = kSMCReadKey;
	in.key = key;
	in.keyInfo.dataSize = size;
	kern_return_t kr = smc_call(conn, &in, &out);
	*result = out.result;
	if (size > sizeof(out.bytes)) {
		size = sizeof(out.bytes);
	}
	memcpy(buf, out.bytes, size);
	return kr;
}
*/
import "C"

import (
	"encoding/binary"
	"fmt"
	"sync"
	"unsafe"

	"codeberg.org/mutker/hotctl/internal/errors"
)

const (
	maxPayload    = 32
	openSupported = true
)

type conn struct {
	mu     sync.Mutex
	handle C.io_connect_t
	closed bool
}

// Open connects to the AppleSMC user client. The connection is kept open
// until Close.
func Open() (KeyReader, error) {
	var handle C.io_connect_t
	if kr := C.smc_open(&handle); kr != C.kIOReturnSuccess {
		return nil, errors.New().Wrap(ErrOpenFailed, kernError(kr))
	}

	return &conn{handle: handle}, nil
}

func (c *conn) KeyCount() (int, error) {
	info, err := c.KeyInfo(KeyCountKey)
	if err != nil {
		return 0, err
	}

	payload, err := c.ReadKey(KeyCountKey, info)
	if err != nil {
		return 0, err
	}
	if len(payload) != 4 {
		return 0, errors.New().WithData(ErrKeyCountFailed, len(payload))
	}

	return int(binary.BigEndian.Uint32(payload)), nil
}

func (c *conn) KeyAt(index int) (FourCC, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, errors.New().New(ErrClosed)
	}

	var key C.uint32_t
	var result C.uint8_t
	kr := C.smc_key_at(c.handle, C.uint32_t(index), &key, &result)
	if err := check(kr, result); err != nil {
		return 0, err
	}

	return FourCC(key), nil
}

func (c *conn) KeyInfo(key FourCC) (KeyInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return KeyInfo{}, errors.New().New(ErrClosed)
	}

	var size, typ C.uint32_t
	var result C.uint8_t
	kr := C.smc_key_info(c.handle, C.uint32_t(key), &size, &typ, &result)
	if err := check(kr, result); err != nil {
		return KeyInfo{}, err
	}

	return KeyInfo{Size: int(size), Type: FourCC(typ)}, nil
}

func (c *conn) ReadKey(key FourCC, info KeyInfo) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New().New(ErrClosed)
	}

	size := min(info.Size, maxPayload)
	buf := make([]byte, maxPayload)
	var result C.uint8_t
	kr := C.smc_read(c.handle, C.uint32_t(key), C.uint32_t(size), (*C.uint8_t)(unsafe.Pointer(&buf[0])), &result)
	if err := check(kr, result); err != nil {
		return nil, err
	}

	return buf[:size], nil
}

func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	C.smc_close(c.handle)
	c.closed = true

	return nil
}

func check(kr C.kern_return_t, result C.uint8_t) error {
	errFactory := errors.New()
	if kr != C.kIOReturnSuccess {
		return errFactory.Wrap(ErrCallFailed, kernError(kr))
	}

	switch result {
	case C.kSMCSuccess:
		return nil
	case C.kSMCKeyNotFound:
		return errFactory.New(ErrKeyNotFound)
	default:
		return errFactory.WithData(ErrCallFailed, fmt.Sprintf("result 0x%02x", uint8(result)))
	}
}

func kernError(kr C.kern_return_t) error {
	return fmt.Errorf("kern_return 0x%08x", uint32(kr))
}
