// Package gpu reads NVIDIA GPU sensors through NVML.
package gpu

// Library is the subset of NVML lifecycle and discovery used by Source.
type Library interface {
	Initialize() error
	Shutdown() error
	GetDeviceCount() (int, error)
	GetDevice(index int) (Device, error)
}

// Device reads the sensors of one GPU.
type Device interface {
	Name() (string, error)
	Temperature() (int, error)
	FanSpeeds() ([]int, error) // duty cycle percent per fan
}
