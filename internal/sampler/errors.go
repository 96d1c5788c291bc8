package sampler

import (
	"errors"
	"os"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v4/process"
)

var (
	// ErrProcessNotFound reports a termination target that no longer exists.
	// Callers treat it as success-equivalent: the process is already gone.
	ErrProcessNotFound = errors.New("process not found")

	// ErrPermissionDenied reports a termination the caller lacks rights for.
	ErrPermissionDenied = errors.New("permission denied")
)

// classifyTerminationError maps OS and gopsutil failures onto the sampler's
// error taxonomy. Unrecognized errors pass through unchanged.
func classifyTerminationError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, process.ErrorProcessNotRunning),
		errors.Is(err, syscall.ESRCH),
		errors.Is(err, os.ErrProcessDone):
		return ErrProcessNotFound
	case errors.Is(err, syscall.EPERM),
		errors.Is(err, syscall.EACCES),
		errors.Is(err, os.ErrPermission):
		return ErrPermissionDenied
	}
	// Windows wraps access failures without a stable sentinel.
	if strings.Contains(strings.ToLower(err.Error()), "access is denied") {
		return ErrPermissionDenied
	}
	return err
}
