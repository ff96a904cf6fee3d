package updater

import (
	"github.com/hashicorp/go-multierror"

	"github.com/chenjicheng/upmc/internal/platform"
)

// CleanupStale removes files left beside exe by a previous swap. Missing
// files are fine; every other failure is collected.
func CleanupStale(exe string) error {
	var result *multierror.Error
	for _, p := range []string{StagedPath(exe), OldPath(exe), HelperPath(exe), SwapPath(exe)} {
		if err := platform.RemoveIfExists(p); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
