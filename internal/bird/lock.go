package bird

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// locksDirName is the subdirectory for lock files. Keeping them out of the
// bird directory means a listing never sees them.
const locksDirName = ".locks"

// LockTimeout is the timeout for acquiring a file lock.
const LockTimeout = 2 * time.Second

// Lock errors.
var (
	errLockTimeout  = errors.New("lock timeout")
	errLockFileOpen = errors.New("failed to open lock file")
)

// WithLock executes handler while holding an exclusive lock on path.
func WithLock(path string, handler func() error) error {
	lock, lockErr := acquireLockWithTimeout(path, LockTimeout)
	if lockErr != nil {
		return fmt.Errorf("acquiring lock: %w", lockErr)
	}

	defer lock.release()

	return handler()
}

// WithFileLock reads path under an exclusive lock and hands the content to
// handler. A nil result from handler skips the write; an error aborts it.
func WithFileLock(path string, handler func(content []byte) ([]byte, error)) error {
	return WithLock(path, func() error {
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("reading bird: %w", readErr)
		}

		newContent, handleErr := handler(content)
		if handleErr != nil {
			return handleErr
		}

		if newContent == nil {
			return nil
		}

		writeErr := atomic.WriteFile(path, bytes.NewReader(newContent))
		if writeErr != nil {
			return fmt.Errorf("writing bird: %w", writeErr)
		}

		return nil
	})
}

type fileLock struct {
	path string
	file *os.File
}

// release removes the lock file while still holding the lock, then unlocks.
func (l *fileLock) release() {
	if l.file != nil {
		_ = os.Remove(l.path)
		_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
		_ = l.file.Close()
		l.file = nil
	}
}

// acquireLockWithTimeout takes an exclusive flock on <dir>/.locks/<base>.lock.
// The lock file is removed on release, so after acquiring the lock the inode
// is compared with the path to detect a file that was unlinked while we
// waited.
func acquireLockWithTimeout(path string, timeout time.Duration) (*fileLock, error) {
	locksDir := filepath.Join(filepath.Dir(path), locksDirName)
	lockPath := filepath.Join(locksDir, filepath.Base(path)+".lock")

	deadline := time.Now().Add(timeout)

	for {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", errLockTimeout, path)
		}

		mkdirErr := os.MkdirAll(locksDir, dirPerms)
		if mkdirErr != nil {
			return nil, fmt.Errorf("creating locks dir: %w", mkdirErr)
		}

		file, openErr := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerms)
		if openErr != nil {
			return nil, fmt.Errorf("%w: %w", errLockFileOpen, openErr)
		}

		fd := int(file.Fd())

		var openStat unix.Stat_t

		statErr := unix.Fstat(fd, &openStat)
		if statErr != nil {
			_ = file.Close()

			return nil, fmt.Errorf("fstat lock file: %w", statErr)
		}

		locked, lockErr := pollFlock(fd, deadline)
		if lockErr != nil || !locked {
			_ = file.Close()

			if lockErr != nil {
				return nil, fmt.Errorf("flock: %w", lockErr)
			}

			return nil, fmt.Errorf("%w: %s", errLockTimeout, path)
		}

		var pathStat unix.Stat_t

		pathErr := unix.Stat(lockPath, &pathStat)
		if pathErr != nil || pathStat.Ino != openStat.Ino {
			_ = unix.Flock(fd, unix.LOCK_UN)
			_ = file.Close()

			continue
		}

		return &fileLock{path: lockPath, file: file}, nil
	}
}

const lockPollInterval = 2 * time.Millisecond

// pollFlock tries a non-blocking exclusive flock until deadline.
func pollFlock(fd int, deadline time.Time) (bool, error) {
	for {
		err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return true, nil
		}

		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			return false, err
		}

		if time.Now().After(deadline) {
			return false, nil
		}

		time.Sleep(lockPollInterval)
	}
}
