package gpu

import (
	"codeberg.org/mutker/hotctl/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

type nvmlWrapper struct {
	initialized bool
}

// NewLibrary returns the NVML-backed library.
func NewLibrary() Library {
	return &nvmlWrapper{}
}

func (w *nvmlWrapper) Initialize() error {
	errFactory := errors.New()
	if w.initialized {
		return nil
	}

	ret := nvml.Init()
	if !IsNVMLSuccess(ret) {
		return errFactory.Wrap(ErrInitFailed, newNVMLError(ret))
	}

	w.initialized = true

	return nil
}

func (w *nvmlWrapper) Shutdown() error {
	errFactory := errors.New()
	if !w.initialized {
		return nil
	}

	ret := nvml.Shutdown()
	if !IsNVMLSuccess(ret) {
		return errFactory.Wrap(ErrShutdownFailed, newNVMLError(ret))
	}

	w.initialized = false

	return nil
}

func (w *nvmlWrapper) GetDeviceCount() (int, error) {
	errFactory := errors.New()
	if !w.initialized {
		return 0, errFactory.New(ErrNotInitialized)
	}

	count, ret := nvml.DeviceGetCount()
	if !IsNVMLSuccess(ret) {
		return 0, errFactory.Wrap(ErrDeviceCountFailed, newNVMLError(ret))
	}

	return count, nil
}

func (w *nvmlWrapper) GetDevice(index int) (Device, error) {
	errFactory := errors.New()
	if !w.initialized {
		return nil, errFactory.New(ErrNotInitialized)
	}

	device, ret := nvml.DeviceGetHandleByIndex(index)
	if !IsNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrDeviceNotFound, newNVMLError(ret))
	}

	return &nvmlDevice{device: device}, nil
}

type nvmlDevice struct {
	device nvml.Device
}

func (d *nvmlDevice) Name() (string, error) {
	name, ret := d.device.GetName()
	if !IsNVMLSuccess(ret) {
		return "", errors.New().Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	return name, nil
}

func (d *nvmlDevice) Temperature() (int, error) {
	temp, ret := d.device.GetTemperature(nvml.TEMPERATURE_GPU)
	if !IsNVMLSuccess(ret) {
		return 0, errors.New().Wrap(ErrTemperatureReadFailed, newNVMLError(ret))
	}

	return int(temp), nil
}

func (d *nvmlDevice) FanSpeeds() ([]int, error) {
	errFactory := errors.New()

	count, ret := d.device.GetNumFans()
	if !IsNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrFanCountFailed, newNVMLError(ret))
	}

	speeds := make([]int, count)
	for i := range count {
		speed, ret := d.device.GetFanSpeed_v2(i)
		if !IsNVMLSuccess(ret) {
			return nil, errFactory.Wrap(ErrGetFanSpeedFailed, newNVMLError(ret))
		}
		speeds[i] = int(speed)
	}

	return speeds, nil
}
