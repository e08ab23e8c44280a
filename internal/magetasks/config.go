package magetasks

import (
	"os"
	"path/filepath"
)

var (
	// ModulePath is the Go module path.
	ModulePath = "github.com/dkoosis/tcr"

	// BinPath is the output path for the built binary.
	BinPath = "./bin/tcr"

	// ProjectRoot is the root directory of the project.
	ProjectRoot string
)

// Initialize records the project root and makes sure bin/ exists.
// Call this from the Magefile init() function.
func Initialize() error {
	var err error
	ProjectRoot, err = os.Getwd()
	if err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(ProjectRoot, "bin"), 0o750)
}
