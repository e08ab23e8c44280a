package magetasks

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/magefile/mage/sh"
)

// BuildAll builds the tcr binary with version information stamped in.
func BuildAll() error {
	PrintH2Header("Build")

	if err := sh.RunV("go", "build", "-ldflags", LDFlags(gitVersion(), gitCommit(), time.Now().UTC()), "-o", BinPath, "./cmd/tcr"); err != nil {
		PrintError("Build failed")
		return err
	}
	PrintSuccess(fmt.Sprintf("Built: %s", BinPath))
	return nil
}

// LDFlags returns the linker flags that set the internal/version vars.
func LDFlags(version, commit string, built time.Time) string {
	pkg := ModulePath + "/internal/version"
	return fmt.Sprintf("-s -w -X '%s.Version=%s' -X '%s.CommitHash=%s' -X '%s.BuildDate=%s'",
		pkg, version, pkg, commit, pkg, built.Format(time.RFC3339))
}

// Clean removes build artifacts and generated result files.
func Clean() error {
	PrintH2Header("Clean")

	for _, p := range []string{"./bin", "coverage.out", "result_test_auto.json", "result_test_selenium.json", "test_report.json"} {
		if err := sh.Rm(p); err != nil {
			return err
		}
	}
	if err := os.MkdirAll("./bin", 0o750); err != nil {
		return err
	}
	PrintSuccess("Cleaned build artifacts")
	return nil
}

func gitVersion() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty", "--match=v*")
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(out)
}

func gitCommit() string {
	out, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(out)
}
