package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

// acquirePIDFile writes the process id to path. With lock set the file is
// held under an exclusive flock so a second daemon refuses to start, and a
// file left behind by a dead process is reclaimed. The returned func
// releases the lock and removes the file.
func acquirePIDFile(path string, lock bool, log *zap.Logger) (func(), error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("cannot create PID file: %w", err)
		}
		if lock {
			if err := checkExistingPID(path); err != nil {
				return nil, err
			}
			log.Warn("reclaiming stale PID file", zap.String("path", path))
		}
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, fmt.Errorf("cannot open PID file: %w", err)
		}
	}

	if lock {
		if err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
			file.Close()
			if errors.Is(err, syscall.EWOULDBLOCK) {
				return nil, fmt.Errorf("cannot acquire lock on %s: another instance is running", path)
			}
			return nil, fmt.Errorf("lock failed: %w", err)
		}
	}

	if _, err = fmt.Fprintf(file, "%d\n", os.Getpid()); err == nil {
		err = file.Sync()
	}
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("cannot write PID file: %w", err)
	}
	log.Info("PID file written", zap.String("path", path), zap.Bool("lock", lock))

	return func() {
		if lock {
			syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		}
		file.Close()
		os.Remove(path)
	}, nil
}

// checkExistingPID returns nil when the PID file at path names a process
// that no longer exists.
func checkExistingPID(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read existing PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("corrupted PID file (contains: %q)", data)
	}

	// FindProcess never fails on Unix; signal 0 checks for existence.
	proc, _ := os.FindProcess(pid)
	if err = proc.Signal(syscall.Signal(0)); err != nil {
		if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return fmt.Errorf("process %d exists but cannot be signalled: %v", pid, err)
	}
	return fmt.Errorf("process %d from %s is still running", pid, path)
}
