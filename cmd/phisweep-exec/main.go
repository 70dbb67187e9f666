// Command phisweep-exec is the EXEC callback named in the GPFS discovery
// policy. mmapplypolicy invokes it as "phisweep-exec LIST <filelist>" for
// every batch of matched files and "phisweep-exec TEST <dir>" to check the
// work directory. The policy cannot pass flags, so the configuration path
// comes from PHISWEEP_CONFIG when --config is absent.
package main

import (
	"errors"
	"fmt"
	"os"
)

// errTestFailed makes TEST exit 1 without printing an error.
var errTestFailed = errors.New("not a directory")

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errTestFailed) {
			fmt.Fprintln(os.Stderr, "phisweep-exec:", err)
		}
		os.Exit(1)
	}
}
