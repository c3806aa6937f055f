// Package preflight runs the fail-fast checks that must pass before any
// file is touched: the target directory is usable and every required
// external binary resolves.
package preflight

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"dovimux/internal/deps"
	"dovimux/internal/services"
)

// CheckTargetDirectory verifies that path exists, is a directory, and is
// readable and writable.
func CheckTargetDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return services.Wrap(services.ErrPreflight, "target", "", fmt.Sprintf("directory %s does not exist", path), nil)
		}
		return services.Wrap(services.ErrPreflight, "target", "stat", path, err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrPreflight, "target", "", fmt.Sprintf("%s is not a directory", path), nil)
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return services.Wrap(services.ErrPreflight, "target", "", fmt.Sprintf("insufficient permissions on %s", path), err)
	}
	return nil
}

// VerifyTools confirms every required binary is resolvable, returning a
// single error naming all missing tools.
func VerifyTools(tools deps.Toolset) error {
	var missing []string
	for _, status := range deps.CheckBinaries(tools.Requirements()) {
		if !status.Available && !status.Optional {
			missing = append(missing, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
		}
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrDependency, "tools", "", strings.Join(missing, "; "), nil)
	}
	return nil
}
