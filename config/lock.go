package config

import (
	"fmt"
	"os"
	"syscall"
)

// fileLock wraps an exclusive advisory lock (flock(2)) on the credential
// file's lock sidecar, held for the duration of a read-modify-write cycle.
// No library in this module's dependency set offers file locking, and none
// of the corpus's example repos implement a credential store with
// concurrent-access protection to learn a pattern from; flock via the
// stdlib syscall package is the minimal correct primitive for this single
// concern (see DESIGN.md).
type fileLock struct {
	file *os.File
}

func acquireFileLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("acquiring exclusive lock: %w", err)
	}
	return &fileLock{file: f}, nil
}

func (l *fileLock) release() error {
	defer l.file.Close()
	return syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
}
