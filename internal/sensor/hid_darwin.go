//go:build darwin && cgo

package sensor

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework Foundation -framework IOKit

#import <Foundation/Foundation.h>
#import <IOKit/IOKitLib.h>
#include <stdlib.h>
#include <string.h>

typedef double IOHIDFloat;
typedef struct __IOHIDEventSystemClient *IOHIDEventSystemClientRef;
typedef struct __IOHIDServiceClient *IOHIDServiceClientRef;
typedef struct __IOHIDEvent *IOHIDEventRef;

extern IOHIDEventSystemClientRef IOHIDEventSystemClientCreate(CFAllocatorRef allocator);
extern int IOHIDEventSystemClientSetMatching(IOHIDEventSystemClientRef client, CFDictionaryRef match);
extern CFArrayRef IOHIDEventSystemClientCopyServices(IOHIDEventSystemClientRef client);
extern IOHIDEventRef IOHIDServiceClientCopyEvent(IOHIDServiceClientRef service, int64_t type, int32_t options, int64_t depth);
extern IOHIDFloat IOHIDEventGetFloatValue(IOHIDEventRef event, int32_t field);
extern CFTypeRef IOHIDServiceClientCopyProperty(IOHIDServiceClientRef service, CFStringRef key);

#define HID_NAME_MAX 128
#define IOHIDEventFieldBase(type) (type << 16)

typedef struct {
	char   name[HID_NAME_MAX];
	double value;
} hid_reading;

// hid_read copies up to max readings for services matching page/usage.
static int hid_read(int page, int usage, int64_t eventType, hid_reading *out, int max) {
	int n = 0;
	@autoreleasepool {
		IOHIDEventSystemClientRef system = IOHIDEventSystemClientCreate(kCFAllocatorDefault);
		if (!system) {
			return -1;
		}

		NSDictionary *matching = @{
			@"PrimaryUsagePage" : @(page),
			@"PrimaryUsage" : @(usage)
		};
		IOHIDEventSystemClientSetMatching(system, (__bridge CFDictionaryRef)matching);

		CFArrayRef servicesRef = IOHIDEventSystemClientCopyServices(system);
		if (!servicesRef) {
			CFRelease(system);
			return 0;
		}

		NSArray *services = (__bridge NSArray *)servicesRef;
		for (id service in services) {
			if (n >= max) {
				break;
			}

			IOHIDServiceClientRef serviceRef = (__bridge IOHIDServiceClientRef)service;
			NSString *product = (__bridge_transfer NSString *)IOHIDServiceClientCopyProperty(serviceRef, CFSTR("Product"));
			if (!product) {
				continue;
			}

			IOHIDEventRef event = IOHIDServiceClientCopyEvent(serviceRef, eventType, 0, 0);
			if (!event) {
				continue;
			}

			out[n].value = IOHIDEventGetFloatValue(event, IOHIDEventFieldBase(eventType));
			strlcpy(out[n].name, [product UTF8String], HID_NAME_MAX);
			CFRelease(event);
			n++;
		}

		CFRelease(servicesRef);
		CFRelease(system);
	}
	return n;
}
*/
import "C"

import (
	"context"
	"sync"
	"unsafe"

	"codeberg.org/mutker/hotctl/internal/errors"
	"codeberg.org/mutker/hotctl/internal/logger"
)

const (
	hidMaxServices = 256

	pageAppleVendor  = 0xFF00
	pagePowerSensor  = 0xFF08
	usageTemperature = 5
	usageCurrent     = 2
	usageVoltage     = 3

	eventTemperature = 15
	eventPower       = 0x19
)

type hidQuery struct {
	page  int
	usage int
	event int64
	kind  Kind
	scale float64
}

var hidQueries = []hidQuery{
	{pageAppleVendor, usageTemperature, eventTemperature, KindThermal, 1},
	{pagePowerSensor, usageVoltage, eventPower, KindVoltage, 1000},
	{pagePowerSensor, usageCurrent, eventPower, KindCurrent, 1000},
}

// HIDProvider reads the IOHID event system sensors.
type HIDProvider struct {
	mu  sync.Mutex
	log logger.Logger
}

// NewHID returns the IOHID sensor provider.
func NewHID(log logger.Logger) *HIDProvider {
	return &HIDProvider{log: log.With("hid")}
}

func (p *HIDProvider) Name() string   { return "hid" }
func (p *HIDProvider) Source() Source { return SourceHID }

func (p *HIDProvider) Readings(ctx context.Context) ([]Reading, error) {
	errFactory := errors.New()

	p.mu.Lock()
	defer p.mu.Unlock()

	buf := make([]C.hid_reading, hidMaxServices)
	var readings []Reading

	for _, q := range hidQueries {
		if err := ctx.Err(); err != nil {
			return nil, errFactory.Wrap(ErrReadFailed, err)
		}

		n := C.hid_read(C.int(q.page), C.int(q.usage), C.int64_t(q.event), &buf[0], C.int(len(buf)))
		if n < 0 {
			return nil, errFactory.New(ErrUnavailable)
		}

		for i := range int(n) {
			name := C.GoString((*C.char)(unsafe.Pointer(&buf[i].name[0])))
			readings = append(readings, Reading{
				Name:   name,
				Value:  float64(buf[i].value) / q.scale,
				Kind:   q.kind,
				Source: SourceHID,
				CPU:    q.kind == KindThermal && IsCPUName(name),
			})
		}
	}

	p.log.Debug().Int("readings", len(readings)).Msg("Read HID sensors")

	return dedupe(readings), nil
}

func (p *HIDProvider) Close() error { return nil }
