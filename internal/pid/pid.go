// Package pid guards against running more than one monitor at a time.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/hotctl/internal/errors"
)

const (
	pidFile = "hotctl.pid"
)

// File is a PID file at a fixed path.
type File struct {
	path string
}

// Default returns the PID file in the system temp directory.
func Default() *File {
	return New(filepath.Join(os.TempDir(), pidFile))
}

// New returns a PID file at path.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

// Write writes the current process ID to the PID file. A file naming a live
// process other than this one is an ErrAlreadyRunning; a stale one is replaced.
func (f *File) Write() error {
	errFactory := errors.New()
	self := os.Getpid()

	if _, err := os.Stat(f.path); err == nil {
		// PID file exists, check if the process is running
		bytes, err := os.ReadFile(f.path)
		if err != nil {
			return errFactory.Wrap(errors.ErrInternal, err)
		}

		pid, err := strconv.Atoi(strings.TrimSpace(string(bytes)))
		if err == nil && pid > 0 && pid != self && alive(pid) {
			return errFactory.WithData(errors.ErrAlreadyRunning, pid)
		}
	}

	err := os.WriteFile(f.path, []byte(strconv.Itoa(self)), 0o600)
	if err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the PID file.
func (f *File) Remove() error {
	errFactory := errors.New()

	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(f.path); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	return process.Signal(syscall.Signal(0)) == nil
}
